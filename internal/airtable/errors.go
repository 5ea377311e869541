package airtable

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a failed Airtable API operation. StatusCode is zero
// for errors that never produced an HTTP response (network failures,
// encoding problems).
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("airtable error for %s: HTTP %d: %s", e.URL, e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("airtable error for %s: %s: %v", e.URL, e.Message, e.Cause)
	default:
		return fmt.Sprintf("airtable error for %s: %s", e.URL, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is an HTTP 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsTransient reports whether err is worth classifying as a transport
// failure: no HTTP response at all, a 5xx, or a 429 rate limit.
func IsTransient(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == 0 {
		return true
	}
	return apiErr.StatusCode >= http.StatusInternalServerError ||
		apiErr.StatusCode == http.StatusTooManyRequests
}
