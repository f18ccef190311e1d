package sklearn

import (
	"math"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// Invalid value treatments.
const (
	InvalidReturnInvalid = "returnInvalid"
	InvalidAsIs          = "asIs"
	InvalidAsMissing     = "asMissing"
)

// attributes is the node accessor surface the helpers below read from.
type attributes interface {
	ClassName() string
	Get(name string) (any, bool)
	Has(name string) bool
	GetNumberList(name string) ([]float64, error)
}

func number(v float64) *pmml.Constant {
	return pmml.NewConstant(step.FormatNumber(v), pmml.Double)
}

// vectorLength returns the length of the first present vector attribute,
// falling back to n_features_in_.
func vectorLength(b step.Base, names ...string) int {
	for _, name := range names {
		if !b.Has(name) {
			continue
		}
		if values, err := b.GetNumberList(name); err == nil {
			return len(values)
		}
	}
	return b.NumberOfFeatures()
}

// vector reads a numeric attribute that is either a scalar or a one-dimensional array.
func vector(a attributes, name string) ([]float64, error) {
	if v, ok := a.Get(name); ok {
		if x, ok := node.AsNumber(v); ok {
			return []float64{x}, nil
		}
	}
	return a.GetNumberList(name)
}

// requiredVector reads a numeric array whose length must equal size.
func requiredVector(a attributes, name string, size int) ([]float64, error) {
	values, err := a.GetNumberList(name)
	if err != nil {
		return nil, err
	}
	if len(values) != size {
		return nil, &step.ArityError{Class: a.ClassName(), What: name + " value(s)", Expected: size, Actual: len(values)}
	}
	return values, nil
}

// optionalVector is requiredVector for attributes that may be None.
func optionalVector(a attributes, name string, size int) ([]float64, error) {
	if !a.Has(name) {
		return nil, nil
	}
	return requiredVector(a, name, size)
}

// withoutNaN drops NaN placeholders from a fitted category list.
func withoutNaN(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// featureLike re-creates a feature of the same variant over a derived field.
func featureLike(f encoder.Feature, field encoder.Field) encoder.Feature {
	switch x := f.(type) {
	case encoder.CategoricalFeature:
		return encoder.NewCategoricalFeature(field.Name, field.DataType, x.Values())
	case encoder.ContinuousFeature:
		return encoder.ContinuousOf(field)
	}
	return encoder.FeatureOf(field)
}
