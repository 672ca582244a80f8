package http

import (
	"github.com/samirrijal/skyglass/internal/core/usecases"
)

// UpstreamStatus reports the provider circuit breaker state.
type UpstreamStatus interface {
	BreakerState() string
}

// AlertStatus reports whether the alert publisher is connected.
type AlertStatus interface {
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Flights  *usecases.FlightService
	Upstream UpstreamStatus // optional
	Alerts   AlertStatus    // optional, nil when alerts are disabled
	Cache    CacheDirective
	Version  string
}
