package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps failures to reach the server at all.
	ErrNetwork = errors.New("network error")
	// ErrUnauthorized matches 401/403 answers and protected calls made
	// without a token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrCredentialsRejected wraps 4xx answers from login and register.
	ErrCredentialsRejected = errors.New("credentials rejected")
	// ErrMissingToken is returned when a login succeeds without a token.
	ErrMissingToken = errors.New("login response has no token")
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match auth failures.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// UserMessage returns the text a form should show for err: the server's
// message for rejected credentials, a fixed line for network failures,
// and fallback for anything else.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.Is(err, ErrCredentialsRejected) && errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	if errors.Is(err, ErrNetwork) {
		return "could not reach the server"
	}
	return fallback
}
