package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")

	// Block errors are distinct so the handler can tell the sender which
	// direction the block runs.
	ErrBlockedByYou  = errors.New("you have blocked this user")
	ErrBlockedByThem = errors.New("this user is not accepting messages from you")
)

// ValidationError carries field-level detail for 422 responses.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
