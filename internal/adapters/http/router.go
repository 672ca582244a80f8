package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"

	"github.com/samirrijal/skyglass/internal/pkg/metrics"
)

// LegacyFlightsPath is the path the original map client calls.
const LegacyFlightsPath = "/api/glass"

// RouteOptions tunes per-deployment HTTP behaviour.
type RouteOptions struct {
	// RequestTimeout bounds each flight request; it must exceed the
	// upstream budget so the fallback can still be served.
	RequestTimeout time.Duration
	// RateLimit is the per-IP requests per minute. Zero disables it.
	RateLimit int
	// LegacySunset is announced on the deprecated legacy route.
	LegacySunset time.Time
}

// DefaultRouteOptions returns the production defaults.
func DefaultRouteOptions() RouteOptions {
	return RouteOptions{
		RequestTimeout: 10 * time.Second,
		RateLimit:      120,
		LegacySunset:   time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
}

// SetupRoutes registers all REST, GraphQL, and documentation routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, opts RouteOptions) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per IP
	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				c.Set(fiber.HeaderCacheControl, "no-store")
				return newError(c, fiber.StatusTooManyRequests, "rate_limited",
					"rate limit exceeded", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Legacy path of the original client
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: LegacyFlightsPath, SunsetDate: opts.LegacySunset, Alternative: "/v1/flights"},
	}))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	reqTimeout := opts.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = DefaultRouteOptions().RequestTimeout
	}
	flights := timeout.NewWithContext(FlightsHandler(deps), reqTimeout)

	v1 := app.Group("/v1")
	v1.Get("/flights", flights)
	app.Get(LegacyFlightsPath, flights)

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), reqTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app)
}
