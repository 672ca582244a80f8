package usecases_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/samirrijal/skyglass/internal/core/domain"
	"github.com/samirrijal/skyglass/internal/core/usecases"
)

// --- Mock FlightProvider ---

type mockProvider struct {
	fetchFn func(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error)
	calls   int
	lastBox domain.BoundingBox
}

func (m *mockProvider) FetchStates(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
	m.calls++
	m.lastBox = box
	if m.fetchFn != nil {
		return m.fetchFn(ctx, box)
	}
	return nil, domain.ErrEmptyResult
}

// --- Mock AlertPublisher ---

type mockAlerts struct {
	published []domain.FlightState
	err       error
}

func (m *mockAlerts) PublishEmergency(ctx context.Context, f domain.FlightState, observedAt int64) error {
	m.published = append(m.published, f)
	return m.err
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func sp(s string) *string { return &s }

func fp(v float64) *float64 { return &v }

func fixedClock() time.Time { return seed }

func newService(p *mockProvider, opts ...usecases.Option) *usecases.FlightService {
	opts = append([]usecases.Option{usecases.WithClock(fixedClock)}, opts...)
	return usecases.NewFlightService(
		lenientResolver(),
		p,
		usecases.NewFallbackGenerator(),
		opts...,
	)
}

// --- Tests ---

func TestFlightService_ParisUnreachable(t *testing.T) {
	p := &mockProvider{
		fetchFn: func(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
			return nil, &domain.UpstreamTimeoutError{Budget: 8 * time.Second}
		},
	}
	svc := newService(p)

	res, err := svc.Nearby(context.Background(), domain.RegionQuery{Lat: "48.85", Lon: "2.35"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Source != domain.SourceFallback {
		t.Errorf("expected fallback source, got %s", res.Source)
	}
	if domain.UpstreamFailureKind(res.Cause) != domain.FailureTimeout {
		t.Errorf("expected timeout cause, got %v", res.Cause)
	}
	if len(res.Collection.Flights) == 0 {
		t.Fatal("expected synthetic flights")
	}
	var mayday bool
	for _, f := range res.Collection.Flights {
		if f.SquawkCode() == domain.SquawkEmergency {
			mayday = true
		}
	}
	if !mayday {
		t.Error("expected a 7700 squawk near Paris")
	}
	if res.Collection.ObservedAtEpochMillis != seed.UnixMilli() {
		t.Errorf("expected synthetic data stamped by the clock, got %d", res.Collection.ObservedAtEpochMillis)
	}
}

func TestFlightService_LivePassthrough(t *testing.T) {
	live := &domain.FlightStateCollection{
		ObservedAtEpochMillis: 1_760_000_000_000,
		Flights: []domain.FlightState{
			{ICAO24: "4b1815", Callsign: sp("SWR8  "), OriginCountry: "Switzerland", Latitude: fp(46.9), Longitude: fp(7.4)},
			{ICAO24: "4b1a2b", OriginCountry: "Switzerland"},
			{ICAO24: "3c6444", Callsign: sp("DLH4AB"), OriginCountry: "Germany", Squawk: sp("1000")},
		},
	}
	p := &mockProvider{
		fetchFn: func(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
			return live, nil
		},
	}
	svc := newService(p)

	q := domain.RegionQuery{LatMin: "45.8389", LonMin: "5.9962", LatMax: "47.8229", LonMax: "10.5226"}
	res, err := svc.Nearby(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Source != domain.SourceLive || res.Cause != nil {
		t.Errorf("expected clean live result, got source=%s cause=%v", res.Source, res.Cause)
	}
	if len(res.Collection.Flights) != 3 {
		t.Fatalf("expected 3 flights, got %d", len(res.Collection.Flights))
	}
	if res.Collection.ObservedAtEpochMillis != live.ObservedAtEpochMillis {
		t.Errorf("expected provider timestamp to pass through")
	}
	want := domain.BoundingBox{LatMin: 45.8389, LonMin: 5.9962, LatMax: 47.8229, LonMax: 10.5226}
	if p.lastBox != want {
		t.Errorf("expected provider called with %+v, got %+v", want, p.lastBox)
	}
	if p.calls != 1 {
		t.Errorf("expected exactly one provider call, got %d", p.calls)
	}
}

func TestFlightService_FallsBackOnEveryUpstreamKind(t *testing.T) {
	failures := []error{
		&domain.UpstreamTimeoutError{Budget: time.Second},
		&domain.UpstreamHTTPError{Status: 429, RetryAfter: 10 * time.Second},
		domain.ErrEmptyResult,
		&domain.UpstreamUnavailableError{Reason: domain.ReasonCircuitOpen},
		errors.New("unclassified"),
	}

	for _, failure := range failures {
		p := &mockProvider{
			fetchFn: func(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
				return nil, failure
			},
		}
		res, err := newService(p).Nearby(context.Background(), domain.RegionQuery{})
		if err != nil {
			t.Fatalf("%v: expected fallback, got error %v", failure, err)
		}
		if res.Source != domain.SourceFallback {
			t.Errorf("%v: expected fallback source, got %s", failure, res.Source)
		}
		if !domain.IsUpstreamFailure(res.Cause) {
			t.Errorf("%v: cause should be classified, got %v", failure, res.Cause)
		}
	}
}

func TestFlightService_EmptyCollectionFallsBack(t *testing.T) {
	p := &mockProvider{
		fetchFn: func(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
			return &domain.FlightStateCollection{ObservedAtEpochMillis: 1}, nil
		},
	}
	res, err := newService(p, usecases.WithAlwaysFallback(false)).Nearby(context.Background(), domain.RegionQuery{})
	if err != nil {
		t.Fatalf("empty airspace must not be an error: %v", err)
	}
	if res.Source != domain.SourceFallback {
		t.Errorf("expected fallback source, got %s", res.Source)
	}
}

func TestFlightService_FallbackDisabled(t *testing.T) {
	p := &mockProvider{
		fetchFn: func(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
			return nil, &domain.UpstreamHTTPError{Status: 503}
		},
	}
	_, err := newService(p, usecases.WithAlwaysFallback(false)).Nearby(context.Background(), domain.RegionQuery{})

	var httpErr *domain.UpstreamHTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != 503 {
		t.Fatalf("expected wrapped UpstreamHTTPError, got %v", err)
	}
}

func TestFlightService_CallerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &mockProvider{
		fetchFn: func(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
			cancel()
			return nil, &domain.UpstreamUnavailableError{Reason: domain.ReasonTransport, Err: ctx.Err()}
		},
	}

	_, err := newService(p).Nearby(ctx, domain.RegionQuery{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFlightService_StrictValidation(t *testing.T) {
	p := &mockProvider{}
	svc := usecases.NewFlightService(strictResolver(), p, usecases.NewFallbackGenerator())

	_, err := svc.Nearby(context.Background(), domain.RegionQuery{Lat: "abc", Lon: "2"})
	assertValidationField(t, err, "lat")
	if p.calls != 0 {
		t.Errorf("provider must not be called for invalid input")
	}
}

func TestFlightService_PublishesLiveEmergenciesOnly(t *testing.T) {
	alerts := &mockAlerts{err: errors.New("nats down")}
	live := &domain.FlightStateCollection{
		ObservedAtEpochMillis: 1_760_000_000_000,
		Flights: []domain.FlightState{
			{ICAO24: "aaa001", Squawk: sp("7600")},
			{ICAO24: "aaa002", Squawk: sp("4321")},
		},
	}
	p := &mockProvider{
		fetchFn: func(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
			return live, nil
		},
	}

	res, err := newService(p, usecases.WithAlerts(alerts)).Nearby(context.Background(), domain.RegionQuery{})
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if res.Source != domain.SourceLive {
		t.Errorf("expected live source, got %s", res.Source)
	}
	if len(alerts.published) != 1 || alerts.published[0].ICAO24 != "aaa001" {
		t.Errorf("expected only aaa001 published, got %+v", alerts.published)
	}

	// Synthetic 7700 must never be announced.
	alerts.published = nil
	p.fetchFn = nil
	if _, err := newService(p, usecases.WithAlerts(alerts)).Nearby(context.Background(), domain.RegionQuery{}); err != nil {
		t.Fatal(err)
	}
	if len(alerts.published) != 0 {
		t.Errorf("synthetic flights were published: %+v", alerts.published)
	}
}
