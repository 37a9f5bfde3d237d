package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means no task row exists for the given id.
	ErrNotFound = errors.New("task not found")
	// ErrDuplicateID means an insert collided on the primary key.
	ErrDuplicateID = errors.New("task id already exists")
	// ErrStorageUnavailable wraps connection and I/O failures of the store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// InvalidInputError reports malformed or out-of-range caller data. It keeps
// the offending value and, when the field is an enumeration, the allowed set.
type InvalidInputError struct {
	Field   string
	Value   string
	Allowed []string
	Reason  string
}

func (e *InvalidInputError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("invalid %s %q, valid values: [%s]", e.Field, e.Value, strings.Join(e.Allowed, ", "))
	}
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// NewInvalidInput builds an InvalidInputError for an enumerated field.
func NewInvalidInput(field, value string, allowed []string) error {
	return &InvalidInputError{Field: field, Value: value, Allowed: allowed}
}

// NewInvalidInputReason builds an InvalidInputError with a free-form reason.
func NewInvalidInputReason(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// IsInvalidInput reports whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var iie *InvalidInputError
	return errors.As(err, &iie)
}
