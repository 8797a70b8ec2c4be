package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
		{
			name:     "rate limit with header",
			err:      &RateLimitError{Op: "swap quote", RetryAfter: 12 * time.Second},
			expected: "Too many requests. Please try again in 12 seconds.",
		},
		{
			name:     "rate limit without header",
			err:      &RateLimitError{Op: "swap quote"},
			expected: "Too many requests. Please try again in 5 seconds.",
		},
		{
			name:     "wrapped rate limit",
			err:      fmt.Errorf("quote: %w", &RateLimitError{RetryAfter: 1500 * time.Millisecond}),
			expected: "Too many requests. Please try again in 2 seconds.",
		},
		{
			name:     "auth",
			err:      ErrTokenNotFound,
			expected: "Authentication token not found. Please sign in again.",
		},
		{
			name:     "validation",
			err:      Validation("amount", "Amount exceeds balance"),
			expected: "Amount exceeds balance",
		},
		{
			name:     "timeout",
			err:      fmt.Errorf("list launches: %w", context.DeadlineExceeded),
			expected: "The request timed out. Please try again.",
		},
		{
			name:     "network with server message",
			err:      &NetworkError{Op: "swap", StatusCode: 400, Message: "Insufficient liquidity"},
			expected: "Insufficient liquidity",
		},
		{
			name:     "network transport failure",
			err:      &NetworkError{Op: "swap", Err: errors.New("connection refused")},
			expected: "Network error. Please check your connection and try again.",
		},
		{
			name:     "malformed body",
			err:      Malformed("list geneses", errors.New("unexpected EOF")),
			expected: "Unexpected response from server.",
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			expected: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err))
		})
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := &NetworkError{Op: "get balance", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "get balance: dial tcp: refused", err.Error())
}
