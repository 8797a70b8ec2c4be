// Package errs defines the error taxonomy shared by the feeds, the backend client and the
// trading forms. Every error that reaches a user goes through UserMessage.
package errs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultRetryAfter is used when a 429 response carries no usable Retry-After header.
const DefaultRetryAfter = 5 * time.Second

// NetworkError covers transport failures, non-2xx responses and malformed bodies.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedMessage is the user-facing text for a response body that could not be decoded
const MalformedMessage = "Unexpected response from server."

// Malformed wraps a decode or invariant failure of a 2xx response body
func Malformed(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Message: MalformedMessage, Err: err}
}

// RateLimitError is returned for HTTP 429 so callers can show the wait time.
type RateLimitError struct {
	Op         string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %s", e.Op, e.RetryAfter)
}

// Seconds returns the wait time rounded up to whole seconds.
func (e *RateLimitError) Seconds() int {
	if e.RetryAfter <= 0 {
		return int(DefaultRetryAfter / time.Second)
	}
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// AuthError means the bearer token is missing, expired or rejected.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication token not found"
	}
	return e.Message
}

// ErrTokenNotFound is the AuthError raised when no bearer token is available.
var ErrTokenNotFound = &AuthError{Message: "authentication token not found"}

// ValidationError is a client-side input failure. It is never sent to a server.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation is a shorthand constructor.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UserMessage converts any error into the string shown to a user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rl *RateLimitError
	if errors.As(err, &rl) {
		return fmt.Sprintf("Too many requests. Please try again in %d seconds.", rl.Seconds())
	}

	var ae *AuthError
	if errors.As(err, &ae) {
		return "Authentication token not found. Please sign in again."
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}

	var ne *NetworkError
	if errors.As(err, &ne) {
		if ne.Message != "" {
			return ne.Message
		}
		return "Network error. Please check your connection and try again."
	}

	return err.Error()
}
