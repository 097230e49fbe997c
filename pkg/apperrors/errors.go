// Package apperrors defines the error taxonomy shared by services and
// handlers. Repositories translate store-level "no rows" conditions into
// NotFound errors; every other store error passes through wrapped but
// otherwise unmodified.
package apperrors

import (
	"errors"
	"fmt"
)

// Entity kinds carried by NotFound and InvalidReference errors.
const (
	KindProject        = "project"
	KindClient         = "client"
	KindEmployee       = "employee"
	KindPM             = "pm"
	KindDeveloper      = "developer"
	KindUnderSelection = "under_selection_developer"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvariantViolation = errors.New("invariant violation")
)

// NotFoundError reports that a referenced id does not exist.
type NotFoundError struct {
	Kind string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found" }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound returns a NotFoundError for the given entity kind.
func NotFound(kind string) error { return &NotFoundError{Kind: kind} }

// InvalidReferenceError reports that a supplied id set did not fully
// resolve. A partial match is rejected wholesale; Requested and Resolved
// record the count mismatch.
type InvalidReferenceError struct {
	Kind      string
	Requested int
	Resolved  int
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid %s references: %d requested, %d resolved", e.Kind, e.Requested, e.Resolved)
}

func (e *InvalidReferenceError) Unwrap() error { return ErrInvalidReference }

// InvalidReference returns an InvalidReferenceError for the given kind.
func InvalidReference(kind string, requested, resolved int) error {
	return &InvalidReferenceError{Kind: kind, Requested: requested, Resolved: resolved}
}

// InvariantViolation wraps ErrInvariantViolation with a description of the
// violated rule.
func InvariantViolation(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, msg)
}
