package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed remote call.
type ErrorKind string

const (
	KindInvalidURL  ErrorKind = "invalid_url"
	KindHTTPStatus  ErrorKind = "http_status"
	KindEncoding    ErrorKind = "encoding"
	KindDecoding    ErrorKind = "decoding"
	KindTransport   ErrorKind = "transport"
	KindMissingData ErrorKind = "missing_data"
)

// Error is the typed failure surfaced by the client. Callers treat every kind
// as "remote unavailable" except where they need to distinguish a 404.
type Error struct {
	Kind   ErrorKind
	Status int    // set for KindHTTPStatus
	Body   string // response body for KindHTTPStatus, best effort
	cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("remote: http %d: %s", e.Status, e.Body)
	default:
		if e.cause != nil {
			return fmt.Sprintf("remote: %s: %v", e.Kind, e.cause)
		}
		return fmt.Sprintf("remote: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func statusError(status int, body string) *Error {
	return &Error{Kind: KindHTTPStatus, Status: status, Body: body}
}

// IsNotFound reports whether err is a remote 404, the one HTTP status the
// routing logic cares to distinguish from generic failure.
func IsNotFound(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == KindHTTPStatus && re.Status == http.StatusNotFound
	}
	return false
}
