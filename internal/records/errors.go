package records

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id lookup misses.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint,
// in practice the one-record-per-(session, student) rule.
var ErrDuplicate = errors.New("duplicate record")

// ValidationError reports a missing or malformed input field. Callers reject
// the request before anything reaches storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func required(field string) error {
	return ValidationError{Field: field, Reason: "is required"}
}

func invalid(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}
