// Package opensky fetches live state vectors from the OpenSky Network REST API.
package opensky

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/samirrijal/skyglass/internal/core/domain"
	"github.com/samirrijal/skyglass/internal/pkg/metrics"
	"github.com/samirrijal/skyglass/internal/pkg/telemetry"
)

const (
	// DefaultBaseURL is the public OpenSky REST endpoint.
	DefaultBaseURL = "https://opensky-network.org/api"

	maxBodyBytes  = 16 << 20
	maxDrainBytes = 64 << 10
	userAgent     = "skyglass/1.0"
	breakerName   = "opensky"
)

// Config holds the client settings.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Username string
	Password string
	// Extended requests the aircraft category field.
	Extended bool

	// RatePerSecond and Burst size the local outbound throttle.
	// RatePerSecond <= 0 disables it.
	RatePerSecond float64
	Burst         int

	// BreakerFailures consecutive failures open the circuit for BreakerOpen.
	BreakerFailures uint32
	BreakerOpen     time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Timeout:         8 * time.Second,
		Extended:        true,
		RatePerSecond:   1,
		Burst:           5,
		BreakerFailures: 5,
		BreakerOpen:     30 * time.Second,
	}
}

// Client implements ports.FlightProvider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*domain.FlightStateCollection]
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an OpenSky client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = DefaultConfig().BreakerFailures
	}
	if cfg.BreakerOpen <= 0 {
		cfg.BreakerOpen = DefaultConfig().BreakerOpen
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	metrics.BreakerState.Set(0)
	c.breaker = gobreaker.NewCircuitBreaker[*domain.FlightStateCollection](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.BreakerState.Set(float64(to))
		},
		// Quiet airspace and callers hanging up say nothing about the
		// provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrEmptyResult) ||
				errors.Is(err, context.Canceled)
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BreakerState reports "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// FetchStates makes one bounded request for the state vectors inside box.
func (c *Client) FetchStates(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanFetchStates,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			telemetry.AttrLatMin.Float64(box.LatMin),
			telemetry.AttrLonMin.Float64(box.LonMin),
			telemetry.AttrLatMax.Float64(box.LatMax),
			telemetry.AttrLonMax.Float64(box.LonMax),
		),
	)
	defer span.End()

	if c.limiter != nil && !c.limiter.Allow() {
		return nil, c.reject(span, domain.ReasonThrottled)
	}

	start := time.Now()
	coll, err := c.breaker.Execute(func() (*domain.FlightStateCollection, error) {
		return c.fetch(ctx, box)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, c.reject(span, domain.ReasonCircuitOpen)
	}

	if err != nil {
		kind := domain.UpstreamFailureKind(err)
		if kind != "" {
			metrics.ObserveUpstream(kind, time.Since(start))
			span.SetAttributes(telemetry.AttrFailureKind.String(kind))
		}
		var httpErr *domain.UpstreamHTTPError
		if errors.As(err, &httpErr) {
			span.SetAttributes(telemetry.AttrStatus.Int(httpErr.Status))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.ObserveUpstream("ok", time.Since(start))
	span.SetAttributes(telemetry.AttrFlights.Int(len(coll.Flights)))
	return coll, nil
}

func (c *Client) reject(span trace.Span, reason string) error {
	metrics.UpstreamRejected.WithLabelValues(reason).Inc()
	err := &domain.UpstreamUnavailableError{Reason: reason}
	span.SetAttributes(telemetry.AttrFailureKind.String(domain.FailureUnavailable))
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (c *Client) fetch(ctx context.Context, box domain.BoundingBox) (*domain.FlightStateCollection, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statesURL(box), nil)
	if err != nil {
		return nil, &domain.UpstreamUnavailableError{Reason: domain.ReasonTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		return nil, &domain.UpstreamHTTPError{
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	if len(body) > maxBodyBytes {
		return nil, &domain.UpstreamUnavailableError{
			Reason: domain.ReasonMalformed,
			Err:    fmt.Errorf("response body exceeds %d bytes", maxBodyBytes),
		}
	}

	return decodeStates(body)
}

// classify maps a transport error to the domain taxonomy. ctx is the
// budgeted request context.
func (c *Client) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &domain.UpstreamTimeoutError{Budget: c.cfg.Timeout}
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("opensky request: %w", context.Canceled)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &domain.UpstreamTimeoutError{Budget: c.cfg.Timeout}
	}
	return &domain.UpstreamUnavailableError{Reason: domain.ReasonTransport, Err: err}
}

func (c *Client) statesURL(box domain.BoundingBox) string {
	q := url.Values{}
	q.Set("lamin", formatCoord(box.LatMin))
	q.Set("lomin", formatCoord(box.LonMin))
	q.Set("lamax", formatCoord(box.LatMax))
	q.Set("lomax", formatCoord(box.LonMax))
	if c.cfg.Extended {
		q.Set("extended", "1")
	}
	return c.cfg.BaseURL + "/states/all?" + q.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseRetryAfter reads a Retry-After value given either as delay-seconds
// or as an HTTP date. It returns 0 when the header is absent or unusable.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
