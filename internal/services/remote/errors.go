package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"mangatl/internal/services"
)

// Parse-failure prefixes. translate_text historically used a different wording
// from the other proxies and the front end still matches on both.
const (
	ParsePrefixDefault  = "Failed to parse JSON response"
	ParsePrefixResponse = "Failed to parse JSON from response"
)

// APIError reports a non-2xx response from a remote service.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: Status %s, Body: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return services.ErrExternalTool }

// StatusError reports a non-2xx response from a raw byte fetch.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string { return "HTTP " + e.Status }

func (e *StatusError) Unwrap() error { return services.ErrExternalTool }

// ParseError reports a 2xx response whose body is not JSON.
type ParseError struct {
	Prefix string
	Err    error
}

func (e *ParseError) Error() string { return e.Prefix + ": " + e.Err.Error() }

func (e *ParseError) Unwrap() []error { return []error{services.ErrExternalTool, e.Err} }

// TransportError wraps a failure to reach the service. Its text is the
// underlying error's text.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() []error {
	marker := services.ErrTransient
	if isTimeout(e.Err) {
		marker = services.ErrTimeout
	}
	return []error{marker, e.Err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
