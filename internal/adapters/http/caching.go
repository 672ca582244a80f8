package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CacheDirective describes how long shared caches may serve a flight
// response and for how long a stale copy may be served while refreshing.
type CacheDirective struct {
	SMaxAge              int // seconds
	StaleWhileRevalidate int // seconds
}

// String renders the Cache-Control value, e.g.
// "public, s-maxage=10, stale-while-revalidate=30".
func (d CacheDirective) String() string {
	v := fmt.Sprintf("public, s-maxage=%d", d.SMaxAge)
	if d.StaleWhileRevalidate > 0 {
		v += fmt.Sprintf(", stale-while-revalidate=%d", d.StaleWhileRevalidate)
	}
	return v
}

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}

		// Don't override if already set
		if existing := string(c.Response().Header.Peek(fiber.HeaderCacheControl)); existing != "" {
			return err
		}

		// Error responses must not be cached by shared caches.
		if c.Response().StatusCode() >= 400 {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "no-cache" // Probes must see live state

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600" // Static documentation
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
