package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const maxMessageLen = 200

// FromResponse maps a non-2xx HTTP response to the error taxonomy. 429 becomes a
// RateLimitError, 401 and 403 an AuthError, anything else a NetworkError carrying the
// server's message when one can be extracted from the body.
func FromResponse(op string, status int, header http.Header, body []byte, now time.Time) error {
	switch status {
	case http.StatusTooManyRequests:
		return &RateLimitError{Op: op, RetryAfter: ParseRetryAfter(header.Get("Retry-After"), now)}
	case http.StatusUnauthorized, http.StatusForbidden:
		msg := extractMessage(body)
		if msg == "" {
			msg = "authentication token not found"
		}
		return &AuthError{Message: msg}
	}
	return &NetworkError{Op: op, StatusCode: status, Message: extractMessage(body)}
}

// ParseRetryAfter accepts delta-seconds or an HTTP date and falls back to DefaultRetryAfter
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRetryAfter
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return DefaultRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return DefaultRetryAfter
}

func extractMessage(body []byte) string {
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return truncate(payload.Message)
		}
		if s, ok := payload.Error.(string); ok && s != "" {
			return truncate(s)
		}
		return ""
	}
	return truncate(string(body))
}

// truncate cuts s to at most maxMessageLen bytes on a rune boundary
func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	end := maxMessageLen
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}

// HTTPStatus picks the status code an API handler responds with for err
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ae *AuthError
		rl *RateLimitError
		ne *NetworkError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ae):
		return http.StatusUnauthorized
	case errors.As(err, &rl):
		return http.StatusTooManyRequests
	case errors.As(err, &ne):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
