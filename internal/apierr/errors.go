// Package apierr provides shared error sentinels and retry infrastructure
// for the model API clients. Provider-specific errors are classified into
// these sentinels at the adapter boundary.
//
// Adapters wrap with fmt.Errorf("%s: %w", msg, sentinel).
// Callers check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import (
	"context"
	"errors"
)

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out or the server failed transiently.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrSizeLimit indicates the submitted text exceeds the model's input capacity.
	// It is structural: retrying the same input cannot succeed, splitting it can.
	ErrSizeLimit = errors.New("input exceeds model context size")
)

// IsRetryable reports whether err is worth another attempt with the same input.
// Rate limits, timeouts and unclassified failures are retried; size limits,
// auth, quota, bad requests and cancellation are not.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, ErrSizeLimit),
		errors.Is(err, ErrAuthFailed),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrBadRequest):
		return false
	}
	return true
}
