package ports

import (
	"context"

	"github.com/samirrijal/skyglass/internal/core/domain"
)

// FlightProvider fetches live state vectors for a bounding box. Each call is
// a single bounded attempt; implementations do not retry.
type FlightProvider interface {
	FetchStates(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error)
}

// AlertPublisher announces live aircraft squawking an emergency code.
// Publish must not block on the network.
type AlertPublisher interface {
	PublishEmergency(ctx context.Context, flight domain.FlightState, observedAtMillis int64) error
}
