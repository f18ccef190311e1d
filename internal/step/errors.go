package step

import (
	"errors"
	"fmt"
)

// Step dispatch errors.
var (
	// ErrUnknownClass is returned when no constructor is registered for a class.
	ErrUnknownClass = errors.New("unknown step class")

	// ErrAlreadyRegistered is returned when registering a duplicate class.
	ErrAlreadyRegistered = errors.New("step class already registered")

	// ErrArity is wrapped by ArityError.
	ErrArity = errors.New("wrong number of features")

	// ErrMissingLabel is returned when a supervised estimator gets no label.
	ErrMissingLabel = errors.New("expected a label, got none")

	// ErrUnexpectedLabel is returned when an unsupervised estimator gets a label.
	ErrUnexpectedLabel = errors.New("expected no label")

	// ErrUnsupported is returned for step configurations outside the supported subset.
	ErrUnsupported = errors.New("unsupported step configuration")

	// ErrUnsupportedType is returned by steps that do not advertise an input type.
	ErrUnsupportedType = errors.New("step does not specify type information")

	// ErrEndsWithEstimator is returned when a composite ending in an estimator is used as a transformer.
	ErrEndsWithEstimator = errors.New("composite ends with an estimator")

	// ErrNoFinalEstimator is returned when a composite without an estimator is used as one.
	ErrNoFinalEstimator = errors.New("composite has no final estimator")

	// ErrWrongRole is returned when a step cannot be used in the requested role.
	ErrWrongRole = errors.New("step cannot be used in this role")

	// ErrUnknownColumn is returned when a column selector matches no feature.
	ErrUnknownColumn = errors.New("unknown column")
)

// StepError tags a failure with the class identity of the step that raised it.
type StepError struct {
	Class string
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Class, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type classNamer interface {
	ClassName() string
}

// wrap tags err with the step, keeping the innermost step when err is already tagged.
func wrap(s classNamer, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StepError
	if errors.As(err, &se) {
		return err
	}
	return &StepError{Class: s.ClassName(), Op: op, Err: err}
}

// ArityError reports a count that disagrees with a step's declared expectation.
type ArityError struct {
	Class    string
	What     string
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s expects %d %s, got %d", e.Class, e.Expected, e.What, e.Actual)
}

func (e *ArityError) Unwrap() error {
	return ErrArity
}
