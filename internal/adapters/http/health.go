package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
		})
	}
}

// ReadyHandler reports the upstream circuit and NATS connectivity. An open
// circuit or a lost NATS connection is "degraded" but still ready: requests
// keep being answered from synthetic data.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		checks := make(map[string]string)
		status := "ready"

		if deps.Flights == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"checks": fiber.Map{"flights": "not configured"},
			})
		}
		checks["flights"] = "ok"

		// Upstream circuit breaker
		if deps.Upstream != nil {
			switch state := deps.Upstream.BreakerState(); state {
			case "closed":
				checks["upstream"] = "ok"
			case "open":
				checks["upstream"] = "circuit open"
				status = "degraded"
			default:
				checks["upstream"] = state
			}
		} else {
			checks["upstream"] = "not configured"
		}

		// NATS
		if deps.Alerts != nil {
			if deps.Alerts.Connected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
				status = "degraded"
			}
		} else {
			checks["nats"] = "not configured"
		}

		return c.JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
