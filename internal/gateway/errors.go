package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotJSON is returned when a JSON body is expected but the response declared another type.
var ErrNotJSON = errors.New("response is not json")

// HTTPError is a completed request answered with a non-2xx status.
type HTTPError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.StatusText, e.Body)
}

// NetworkError is a request that could not be completed at all.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AsHTTPError extracts an HTTPError from an error chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsUnauthorized reports a 401 or 403 answer. The gateway never acts on it;
// callers decide whether to end the session.
func IsUnauthorized(err error) bool {
	httpErr, ok := AsHTTPError(err)
	if !ok {
		return false
	}
	return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr.StatusCode
	}
	return 0
}
