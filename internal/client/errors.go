package client

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned without contacting the API while the breaker is open
var ErrCircuitOpen = errors.New("search API circuit open")

// NetworkError is a transport-level failure: DNS, connect, TLS, timeout, reset.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a response with a non-2xx status code
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("search API returned %s", e.Status)
	}
	return fmt.Sprintf("search API returned %s: %s", e.Status, e.Message)
}

// IsNetworkError reports whether err is or wraps a *NetworkError
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
