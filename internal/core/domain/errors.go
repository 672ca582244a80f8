package domain

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports unusable coordinate input. It is only produced
// when the resolver runs in strict mode.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ErrEmptyResult means the provider answered but had no flight states for
// the box: quiet airspace or anti-abuse throttling on its side.
var ErrEmptyResult = errors.New("upstream returned no flight states")

// UpstreamTimeoutError means the provider did not answer within the budget.
type UpstreamTimeoutError struct {
	Budget time.Duration
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("upstream did not respond within %s", e.Budget)
}

// UpstreamHTTPError is a non-2xx answer from the provider.
type UpstreamHTTPError struct {
	Status     int
	RetryAfter time.Duration
}

func (e *UpstreamHTTPError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("upstream returned status %d (retry after %s)", e.Status, e.RetryAfter)
	}
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// Reasons for UpstreamUnavailableError.
const (
	ReasonTransport   = "transport"
	ReasonMalformed   = "malformed"
	ReasonThrottled   = "throttled"
	ReasonCircuitOpen = "circuit_open"
)

// UpstreamUnavailableError covers failures where no usable answer was
// obtained: connection errors, undecodable bodies, or a call suppressed
// locally by the throttle or circuit breaker.
type UpstreamUnavailableError struct {
	Reason string
	Err    error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Err == nil {
		return "upstream unavailable: " + e.Reason
	}
	return fmt.Sprintf("upstream unavailable (%s): %v", e.Reason, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// Upstream failure kinds, used as metric labels.
const (
	FailureTimeout     = "timeout"
	FailureHTTP        = "http_error"
	FailureEmpty       = "empty"
	FailureUnavailable = "unavailable"
)

// UpstreamFailureKind classifies err. It returns "" for errors that are not
// upstream failures.
func UpstreamFailureKind(err error) string {
	var (
		timeoutErr     *UpstreamTimeoutError
		httpErr        *UpstreamHTTPError
		unavailableErr *UpstreamUnavailableError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &timeoutErr):
		return FailureTimeout
	case errors.As(err, &httpErr):
		return FailureHTTP
	case errors.Is(err, ErrEmptyResult):
		return FailureEmpty
	case errors.As(err, &unavailableErr):
		return FailureUnavailable
	}
	return ""
}

// IsUpstreamFailure reports whether err is one of the upstream kinds.
func IsUpstreamFailure(err error) bool {
	return UpstreamFailureKind(err) != ""
}
