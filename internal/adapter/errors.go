package adapter

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrUnexpectedStatus    = errors.New("unexpected status")
	ErrMalformedResponse   = errors.New("malformed response")
)

// HTTPError is a non-2xx platform response. It unwraps to one of the status
// sentinels above so callers can match with [errors.Is] and still read the
// platform's message.
type HTTPError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%v (http %d): %s", e.kind, e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.kind
}

// NewHTTPError builds the error for a response with statusCode. An empty
// message is replaced by the status text.
func NewHTTPError(statusCode int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	e := &HTTPError{StatusCode: statusCode, Message: message}
	switch statusCode {
	case http.StatusBadRequest:
		e.kind = ErrBadRequest
	case http.StatusUnauthorized:
		e.kind = ErrUnauthorized
	case http.StatusForbidden:
		e.kind = ErrForbidden
	case http.StatusNotFound:
		e.kind = ErrNotFound
	case http.StatusTooManyRequests:
		e.kind = ErrTooManyRequests
	case http.StatusBadGateway:
		e.kind = ErrBadGateway
	case http.StatusInternalServerError:
		e.kind = ErrInternalServerError
	default:
		e.kind = ErrUnexpectedStatus
	}
	return e
}
