package translator

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is returned when a formula is not a single well-formed expression.
	ErrSyntax = errors.New("invalid formula syntax")

	// ErrUnsupported is wrapped by UnsupportedError.
	ErrUnsupported = errors.New("unsupported construct")

	// ErrUnknownField is returned when a column name or variable does not resolve.
	ErrUnknownField = errors.New("unknown field")

	// ErrIndexOutOfRange is returned when a positional column index has no feature.
	ErrIndexOutOfRange = errors.New("column index out of range")

	// ErrInvalidPredicate is returned for constructs that are valid expressions
	// but cannot appear in predicate position.
	ErrInvalidPredicate = errors.New("invalid predicate")
)

// UnsupportedError names the syntax node kind that has no translation.
type UnsupportedError struct {
	Kind    string
	Formula string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%v: %s in formula %q", ErrUnsupported, e.Kind, e.Formula)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// ResolveError names the token that failed to resolve against the scope.
type ResolveError struct {
	Token   string
	Formula string
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%v: %s in formula %q", e.Err, e.Token, e.Formula)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
