// Package errkind maps conversion error chains onto the failure taxonomy the
// CLI and the catalog report: shape, arity, consistency and unsupported.
package errkind

import (
	"errors"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/step"
	"skl2pmml/internal/translator"
)

// Kind is a failure category.
type Kind int

const (
	Other Kind = iota
	Shape
	Arity
	Consistency
	Unsupported
)

var kindNames = map[Kind]string{
	Other:       "other",
	Shape:       "shape",
	Arity:       "arity",
	Consistency: "consistency",
	Unsupported: "unsupported",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "other"
}

// ExitCode is the process status the CLI exits with for a failure of this kind.
func (k Kind) ExitCode() int {
	switch k {
	case Shape:
		return 2
	case Arity:
		return 3
	case Consistency:
		return 4
	case Unsupported:
		return 5
	}
	return 1
}

var (
	shapeErrors = []error{
		node.ErrMissingAttribute,
		node.ErrAttributeType,
		node.ErrUnsupportedValue,
		node.ErrMalformedDocument,
		step.ErrUnknownClass,
		step.ErrEndsWithEstimator,
		step.ErrNoFinalEstimator,
		step.ErrWrongRole,
		step.ErrUnknownColumn,
		translator.ErrSyntax,
		translator.ErrUnknownField,
		translator.ErrIndexOutOfRange,
	}
	consistencyErrors = []error{
		step.ErrMissingLabel,
		step.ErrUnexpectedLabel,
	}
	unsupportedErrors = []error{
		translator.ErrUnsupported,
		translator.ErrInvalidPredicate,
		step.ErrUnsupported,
	}
)

// Classify returns the kind of the first recognized error in the chain.
// Arity and consistency are checked first: they are the most specific.
func Classify(err error) Kind {
	if err == nil {
		return Other
	}
	if errors.Is(err, step.ErrArity) {
		return Arity
	}
	var ce *encoder.ConsistencyError
	if errors.As(err, &ce) || isAny(err, consistencyErrors) {
		return Consistency
	}
	if isAny(err, unsupportedErrors) {
		return Unsupported
	}
	if isAny(err, shapeErrors) {
		return Shape
	}
	return Other
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
