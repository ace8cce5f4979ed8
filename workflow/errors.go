// Package workflow defines the shared vocabulary of the Transflow translation
// pipeline: the status enums of every workflow entity, the error kinds surfaced
// to callers, and the pure transition rules the domain stores apply inside
// their transactions.
package workflow

import (
	"errors"
	"net/http"
)

// Error kinds. Every domain error wraps exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NewError creates a domain error with the given message that satisfies
// errors.Is against kind.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// MapHTTPStatus maps an error to the HTTP status class of its kind.
// Errors that carry no kind are internal failures.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
