package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglass",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyglass",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyglass",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Upstream provider metrics
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglass",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "OpenSky state requests by outcome (ok, timeout, http_error, empty, unavailable)",
	}, []string{"outcome"})

	UpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skyglass",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Duration of OpenSky state requests, including failed ones",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	})

	UpstreamRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglass",
		Subsystem: "upstream",
		Name:      "rejected_total",
		Help:      "Calls suppressed locally before reaching OpenSky",
	}, []string{"reason"})

	UpstreamRecordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skyglass",
		Subsystem: "upstream",
		Name:      "records_skipped_total",
		Help:      "State vectors dropped for being too short or lacking an icao24",
	})

	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skyglass",
		Subsystem: "upstream",
		Name:      "breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	})

	// Pipeline metrics
	FallbacksServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglass",
		Subsystem: "flights",
		Name:      "fallbacks_total",
		Help:      "Responses served from synthetic data, by upstream failure kind",
	}, []string{"reason"})

	FlightsPerResponse = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyglass",
		Subsystem: "flights",
		Name:      "per_response",
		Help:      "Number of flights returned per response",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"source"})

	EmergencySquawks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglass",
		Subsystem: "flights",
		Name:      "emergency_squawks_total",
		Help:      "Live aircraft observed squawking an emergency code",
	}, []string{"squawk"})

	AlertPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skyglass",
		Subsystem: "alerts",
		Name:      "publish_errors_total",
		Help:      "Emergency alerts that could not be handed to NATS",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveUpstream records one finished provider call.
func ObserveUpstream(outcome string, elapsed time.Duration) {
	UpstreamRequests.WithLabelValues(outcome).Inc()
	UpstreamDuration.Observe(elapsed.Seconds())
}

// ObserveFlights records the size of a response by data source.
func ObserveFlights(source string, n int) {
	FlightsPerResponse.WithLabelValues(source).Observe(float64(n))
}
