package service

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a user-facing failure. Kinds are errors themselves so callers can test
// with errors.Is(err, service.ErrNotFound).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrNotFound           Kind = "NotFound"
	ErrConflict           Kind = "Conflict"
	ErrUnitTypeMismatch   Kind = "UnitTypeMismatch"
	ErrInvariantViolation Kind = "InvariantViolation"
	ErrValidation         Kind = "ValidationError"
	ErrBadRequest         Kind = "BadRequest"
	ErrTenantRequired     Kind = "TenantRequired"
)

// Error carries a Kind plus a message key and positional args for localization.
type Error struct {
	Kind Kind
	Key  string
	Args []string
}

func (e *Error) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Key, strings.Join(e.Args, ", "))
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind Kind, key string, args ...string) *Error {
	return &Error{Kind: kind, Key: key, Args: args}
}

// KindOf returns the Kind of err, or "" for infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}

// AsError finds the *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KeyOf returns the message key of err, if it is an *Error.
func KeyOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Key
	}
	return ""
}

func notFound(entity string) error {
	return newError(ErrNotFound, "EntityNotFound", entity)
}

func conflict(key, value string) error {
	return newError(ErrConflict, key, value)
}

func invariant(key string, args ...string) error {
	return newError(ErrInvariantViolation, key, args...)
}

func badRequest(key string, args ...string) error {
	return newError(ErrBadRequest, key, args...)
}

func validationFailed(key string, args ...string) error {
	return newError(ErrValidation, key, args...)
}
