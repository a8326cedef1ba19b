package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of domain error categories. Every error that
// crosses the service boundary is one of these; the HTTP responder
// matches on the kind, never on the message.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthenticated
	KindInvalidCredentials
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Status returns the HTTP status code associated with the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a domain error carrying a kind and a caller-facing message.
// An optional wrapped cause is kept for logging but never serialized.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a domain error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation returns a 400 validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Unauthenticated returns a 401 error for missing or invalid credentials.
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// InvalidCredentials returns the single 401 used for every login
// failure, so unknown email and wrong password are indistinguishable.
func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "invalid credentials")
}

// Forbidden returns a 403 error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound returns a 404 error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Conflict returns a 409 error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

// From extracts a domain error from err, or wraps it as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
