package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/skyglass/internal/core/domain"
	"github.com/samirrijal/skyglass/internal/core/ports"
	"github.com/samirrijal/skyglass/internal/pkg/logging"
	"github.com/samirrijal/skyglass/internal/pkg/metrics"
)

// FlightService answers nearby-flight requests: one bounded live attempt,
// then synthetic data if the provider cannot deliver.
type FlightService struct {
	resolver       *RegionResolver
	provider       ports.FlightProvider
	fallback       *FallbackGenerator
	alerts         ports.AlertPublisher
	alwaysFallback bool
	now            func() time.Time
}

// Option configures a FlightService.
type Option func(*FlightService)

// WithAlerts publishes live emergency squawks to p.
func WithAlerts(p ports.AlertPublisher) Option {
	return func(s *FlightService) { s.alerts = p }
}

// WithAlwaysFallback controls whether upstream failures are hidden behind
// synthetic data (true, the default) or returned to the caller. Empty
// results fall back either way.
func WithAlwaysFallback(always bool) Option {
	return func(s *FlightService) { s.alwaysFallback = always }
}

// WithClock overrides the time source used to stamp synthetic data.
func WithClock(now func() time.Time) Option {
	return func(s *FlightService) { s.now = now }
}

// NewFlightService creates a new FlightService.
func NewFlightService(
	resolver *RegionResolver,
	provider ports.FlightProvider,
	fallback *FallbackGenerator,
	opts ...Option,
) *FlightService {
	s := &FlightService{
		resolver:       resolver,
		provider:       provider,
		fallback:       fallback,
		alwaysFallback: true,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Nearby resolves q, fetches live flights for the region and falls back to
// synthetic flights when the provider fails or has nothing to report.
//
// Errors returned are a *domain.ValidationError (strict resolver), the
// caller's context error, or, with fallback disabled, the upstream failure.
func (s *FlightService) Nearby(ctx context.Context, q domain.RegionQuery) (*domain.FlightResult, error) {
	region, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	live, err := s.provider.FetchStates(ctx, region.Box)
	if err == nil && (live == nil || len(live.Flights) == 0) {
		err = domain.ErrEmptyResult
	}
	if err == nil {
		s.announceEmergencies(ctx, live)
		metrics.ObserveFlights(string(domain.SourceLive), len(live.Flights))
		return &domain.FlightResult{
			Collection: *live,
			Source:     domain.SourceLive,
			Region:     region,
		}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("fetch flights: %w", ctxErr)
	}

	if !domain.IsUpstreamFailure(err) {
		err = &domain.UpstreamUnavailableError{Reason: domain.ReasonTransport, Err: err}
	}
	kind := domain.UpstreamFailureKind(err)

	if !s.alwaysFallback && kind != domain.FailureEmpty {
		return nil, fmt.Errorf("fetch flights: %w", err)
	}

	logging.FromContext(ctx).Warn("serving synthetic flights",
		"reason", kind,
		"error", err,
		"region_source", region.Source,
	)
	metrics.FallbacksServed.WithLabelValues(kind).Inc()

	synthetic := s.fallback.Generate(region.Center, s.now())
	metrics.ObserveFlights(string(domain.SourceFallback), len(synthetic.Flights))

	return &domain.FlightResult{
		Collection: synthetic,
		Source:     domain.SourceFallback,
		Region:     region,
		Cause:      err,
	}, nil
}

// announceEmergencies hands live emergency squawks to the alert publisher.
// Failures are logged and never affect the response.
func (s *FlightService) announceEmergencies(ctx context.Context, c *domain.FlightStateCollection) {
	for _, f := range c.Emergencies() {
		metrics.EmergencySquawks.WithLabelValues(f.SquawkCode()).Inc()
		if s.alerts == nil {
			continue
		}
		if err := s.alerts.PublishEmergency(ctx, f, c.ObservedAtEpochMillis); err != nil {
			metrics.AlertPublishErrors.Inc()
			logging.FromContext(ctx).Debug("emergency alert not published",
				"icao24", f.ICAO24,
				"squawk", f.SquawkCode(),
				"error", err,
			)
		}
	}
}
