package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP edge.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindValidation
	KindPayloadTooLarge
	KindNotFound
	KindUpstream
	KindUnavailable
)

// Error is a classified error. Packages declare their sentinels as *Error
// values and wrap causes with fmt.Errorf("%w").
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and code so that wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New declares a classified error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a classified error without mutating it.
func Wrap(base *Error, cause error) *Error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: base.Message, Err: cause}
}

// Wrapf is Wrap with a formatted message suffix.
func Wrapf(base *Error, format string, args ...any) *Error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: base.Message, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps a kind to its HTTP status.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Common sentinels shared across packages.
var (
	ErrUnauthenticated = New(KindUnauthenticated, "unauthorized", "Invalid authentication token")
	ErrValidation      = New(KindValidation, "validation_error", "Invalid request")
	ErrTooLarge        = New(KindPayloadTooLarge, "payload_too_large", "File too large")
	ErrNotFound        = New(KindNotFound, "not_found", "Not found")
	ErrUpstream        = New(KindUpstream, "upstream_error", "Upstream request failed")
	ErrUnavailable     = New(KindUnavailable, "unavailable", "Service unavailable")
	ErrInternal        = New(KindInternal, "internal_error", "Internal server error")
)
