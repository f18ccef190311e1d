package encoder

import (
	"errors"
	"fmt"
)

var (
	// ErrConflictingDomain is returned when a field's category list is reassigned differently.
	ErrConflictingDomain = errors.New("conflicting categorical domain")

	// ErrFrozenField is returned when a committed field type would change.
	ErrFrozenField = errors.New("field is frozen for type information updates")

	// ErrDuplicateField is returned when a name is already taken by a different field.
	ErrDuplicateField = errors.New("field is already defined")

	// ErrUndefinedField is returned when a feature or label names no catalogued field.
	ErrUndefinedField = errors.New("field is undefined")

	// ErrTypeMismatch is returned when a feature disagrees with its catalogue entry.
	ErrTypeMismatch = errors.New("feature type disagrees with field")

	// ErrNotContinuous is returned when a feature has no continuous interpretation.
	ErrNotContinuous = errors.New("feature cannot be converted to continuous")

	// ErrInputRename is returned when an input data field would be renamed.
	ErrInputRename = errors.New("user input field cannot be renamed")
)

// ConsistencyError reports a field catalogue invariant violation.
type ConsistencyError struct {
	Field  string
	Detail string
	Err    error
}

func (e *ConsistencyError) Error() string {
	msg := fmt.Sprintf("field '%s': %v", e.Field, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

func consistencyError(field string, err error, format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Field: field, Err: err, Detail: fmt.Sprintf(format, args...)}
}
