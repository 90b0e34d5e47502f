// Package apperr defines the error kinds returned by the services and the
// HTTP status each one maps to
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindExpired
	KindInvalidState
)

var kindNames = map[Kind]string{
	KindInternal:        "internal",
	KindValidation:      "validation",
	KindConflict:        "conflict",
	KindUnauthorized:    "unauthorized",
	KindUnauthenticated: "unauthenticated",
	KindForbidden:       "forbidden",
	KindNotFound:        "not_found",
	KindExpired:         "expired",
	KindInvalidState:    "invalid_state",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "unknown"
}

// Status returns the default HTTP status code for a kind
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindExpired, KindInvalidState:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type every service returns. Message is safe to show to
// the client, Err is the cause and is only ever logged.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}

	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two *Error values by kind and message so package level
// values can be used with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind && e.Message == t.Message
}

// WithStatus returns a copy of e that maps to a different HTTP status
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Status: k.Status(), Message: msg}
}

func Validation(msg string) *Error   { return New(KindValidation, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Expired(msg string) *Error      { return New(KindExpired, msg) }
func InvalidState(msg string) *Error { return New(KindInvalidState, msg) }

func Unauthenticated(msg string) *Error {
	return New(KindUnauthenticated, msg)
}

// Internal wraps a store or mailer failure behind a generic message
func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     err,
	}
}

// KindOf reports the kind of err. Anything that isn't an *Error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// From converts any error into an *Error
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return Internal(err)
}
