package sklearn

import (
	"fmt"
	"math"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// Missing value treatments.
const (
	MissingAsMean   = "asMean"
	MissingAsMedian = "asMedian"
	MissingAsMode   = "asMode"
	MissingAsValue  = "asValue"
)

// SimpleImputer replaces missing values with a fitted statistic.
// Input data fields are decorated with the replacement; derived fields get an
// explicit "imputer(x)" field.
type SimpleImputer struct {
	step.Base
}

func newSimpleImputer(_ *step.Registry, n *node.Node) (step.Step, error) {
	if _, err := n.GetOptionalEnum("strategy", "mean", "mean", "median", "most_frequent", "constant"); err != nil {
		return nil, err
	}
	addIndicator, err := n.GetOptionalBool("add_indicator", false)
	if err != nil {
		return nil, err
	}
	if addIndicator {
		return nil, fmt.Errorf("%w: missing value indicators", step.ErrUnsupported)
	}
	return &SimpleImputer{Base: step.NewBase(n)}, nil
}

func (s *SimpleImputer) strategy() string {
	strategy, _ := s.GetOptionalEnum("strategy", "mean", "mean", "median", "most_frequent", "constant")
	return strategy
}

func (s *SimpleImputer) NumberOfFeatures() int {
	stats, err := s.GetList("statistics_")
	if err != nil {
		return s.Base.NumberOfFeatures()
	}
	return len(stats)
}

func (s *SimpleImputer) OpType() (pmml.OpType, error) {
	switch s.strategy() {
	case "mean", "median":
		return pmml.Continuous, nil
	case "most_frequent":
		return pmml.Categorical, nil
	}
	dataType, err := s.DataType()
	if err != nil {
		return "", err
	}
	if dataType.IsNumeric() {
		return pmml.Continuous, nil
	}
	return pmml.Categorical, nil
}

func (s *SimpleImputer) DataType() (pmml.DataType, error) {
	switch s.strategy() {
	case "mean", "median":
		return pmml.Double, nil
	}
	stats, err := s.GetList("statistics_")
	if err != nil {
		return "", err
	}
	_, dataType := step.ClassValues(stats)
	return dataType, nil
}

func (s *SimpleImputer) treatment() string {
	switch s.strategy() {
	case "mean":
		return MissingAsMean
	case "median":
		return MissingAsMedian
	case "most_frequent":
		return MissingAsMode
	}
	return MissingAsValue
}

// missingValue returns the missing value placeholder, or nil when it is None or NaN.
func (s *SimpleImputer) missingValue() any {
	v, ok := s.Get("missing_values")
	if !ok {
		return nil
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nil
	}
	return v
}

func (s *SimpleImputer) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	stats, err := s.GetList("statistics_")
	if err != nil {
		return nil, err
	}
	if len(stats) != len(features) {
		return nil, &step.ArityError{Class: s.ClassName(), What: "statistic(s)", Expected: len(features), Actual: len(stats)}
	}
	values, dataType := step.ClassValues(stats)
	missing := s.missingValue()

	out := make([]encoder.Feature, len(features))
	for i, f := range features {
		field, ok := enc.Field(f.Name())
		if !ok {
			return nil, fmt.Errorf("%w: %s", encoder.ErrUndefinedField, f.Name())
		}

		if !field.IsDerived() {
			d := encoder.Decoration{
				MissingValueTreatment:   s.treatment(),
				MissingValueReplacement: values[i],
			}
			if missing != nil {
				d.MissingValues = []string{node.FormatValue(missing)}
			}
			if err := enc.Decorate(f.Name(), d); err != nil {
				return nil, err
			}
			out[i] = f
			continue
		}

		var test pmml.Expression = pmml.NewApply(pmml.FuncIsMissing, f.Ref())
		if missing != nil {
			test = pmml.NewApply(pmml.FuncEqual, f.Ref(), pmml.NewConstant(node.FormatValue(missing), constantType(missing)))
		}
		expr := pmml.NewApply(pmml.FuncIf, test, pmml.NewConstant(values[i], dataType), f.Ref())

		opType := pmml.Categorical
		if dataType.IsNumeric() {
			opType = pmml.Continuous
		}
		derived, err := enc.CreateDerivedField(step.FieldName("imputer", f.Name()), opType, dataType, expr)
		if err != nil {
			return nil, err
		}
		out[i] = featureLike(f, derived)
	}
	return out, nil
}

func constantType(v any) pmml.DataType {
	_, dataType := step.ClassValues([]any{v})
	return dataType
}
