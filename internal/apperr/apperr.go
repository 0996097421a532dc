package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so handlers can map it to an HTTP
// status without string matching.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindAuth          Kind = "auth"
	KindForbidden     Kind = "forbidden"
	KindApplicability Kind = "applicability"
	KindThreshold     Kind = "threshold"
	KindExpired       Kind = "expired"
	KindExhausted     Kind = "exhausted"
	KindUpstream      Kind = "upstream"
	KindInternal      Kind = "internal"
)

// Error is an application error with a kind and a message safe to show to
// the end user. Coupon rejections carry human-readable reasons because they
// are displayed directly to the shopper.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to an HTTP status code
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindApplicability, KindThreshold, KindExpired, KindExhausted:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new Error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new Error wrapping an underlying cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validationf(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...interface{}) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

func Internalf(format string, args ...interface{}) *Error {
	return New(KindInternal, fmt.Sprintf(format, args...))
}

// As extracts an *Error from err, if any
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an application error of the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
