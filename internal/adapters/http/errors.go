package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/skyglass/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`              // bad_request, bad_gateway, internal_error, ...
	Message   string `json:"error"`             // Human-readable summary
	Details   string `json:"details,omitempty"` // Underlying cause, if any
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code, message, details string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg, "")
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg, "")
}

// errBadGateway returns a 502 error carrying the upstream cause.
func errBadGateway(c *fiber.Ctx, msg, details string) error {
	return newError(c, fiber.StatusBadGateway, "bad_gateway", msg, details)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg, "")
}

// statusClientClosedRequest is the de facto code for a caller that hung up.
const statusClientClosedRequest = 499

// writeFlightError maps a FlightService error to a response.
func writeFlightError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.ErrRequestTimeout
	case errors.Is(err, context.Canceled):
		return newError(c, statusClientClosedRequest, "canceled", "request canceled", "")
	case errors.As(err, &verr):
		return errBadRequest(c, verr.Error())
	case domain.IsUpstreamFailure(err):
		return errBadGateway(c, "flight data provider unavailable", err.Error())
	default:
		return errInternal(c, err.Error())
	}
}

// ErrorHandler renders errors escaping the handlers, including Fiber's own
// (404, 408, 429), as APIError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	// Runs after CachingMiddleware has returned, so apply its error rule here.
	c.Set(fiber.HeaderCacheControl, "no-store")

	switch code {
	case fiber.StatusNotFound:
		return errNotFound(c, "route not found")
	case fiber.StatusRequestTimeout:
		return newError(c, code, "timeout", "request timed out", "")
	case fiber.StatusInternalServerError:
		return errInternal(c, err.Error())
	default:
		return newError(c, code, "error", err.Error(), "")
	}
}
