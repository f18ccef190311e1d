package sklearn

import (
	"fmt"
	"math"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// =============================================================================
// STANDARD SCALER
// =============================================================================

// StandardScaler derives (x - mean) / std for every feature.
// Features whose mean is 0 and whose std is 1 pass through unchanged.
type StandardScaler struct {
	step.Base
}

func newStandardScaler(_ *step.Registry, n *node.Node) (step.Step, error) {
	return &StandardScaler{Base: step.NewBase(n)}, nil
}

func (s *StandardScaler) NumberOfFeatures() int {
	return vectorLength(s.Base, "mean_", "scale_")
}

func (s *StandardScaler) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	means, err := optionalVector(s, "mean_", len(features))
	if err != nil {
		return nil, err
	}
	stds, err := optionalVector(s, "scale_", len(features))
	if err != nil {
		return nil, err
	}

	out := make([]encoder.Feature, len(features))
	for i, f := range features {
		mean, std := 0.0, 1.0
		if means != nil {
			mean = means[i]
		}
		if stds != nil {
			std = stds[i]
		}
		if mean == 0 && std == 1 {
			out[i] = f
			continue
		}

		cf, err := f.ToContinuous(enc)
		if err != nil {
			return nil, err
		}
		var expr pmml.Expression = cf.Ref()
		if mean != 0 {
			expr = pmml.NewApply(pmml.FuncSubtract, expr, number(mean))
		}
		if std != 1 {
			expr = pmml.NewApply(pmml.FuncDivide, expr, number(std))
		}
		field, err := enc.CreateDerivedField(step.FieldName("standardScaler", cf.Name()), pmml.Continuous, pmml.Double, expr)
		if err != nil {
			return nil, err
		}
		out[i] = encoder.ContinuousOf(field)
	}
	return out, nil
}

// =============================================================================
// MIN-MAX SCALER
// =============================================================================

// MinMaxScaler derives x * scale + min for every feature.
type MinMaxScaler struct {
	step.Base
}

func newMinMaxScaler(_ *step.Registry, n *node.Node) (step.Step, error) {
	return &MinMaxScaler{Base: step.NewBase(n)}, nil
}

func (s *MinMaxScaler) NumberOfFeatures() int {
	return vectorLength(s.Base, "scale_", "min_")
}

func (s *MinMaxScaler) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	scales, err := requiredVector(s, "scale_", len(features))
	if err != nil {
		return nil, err
	}
	mins, err := requiredVector(s, "min_", len(features))
	if err != nil {
		return nil, err
	}

	out := make([]encoder.Feature, len(features))
	for i, f := range features {
		if scales[i] == 1 && mins[i] == 0 {
			out[i] = f
			continue
		}

		cf, err := f.ToContinuous(enc)
		if err != nil {
			return nil, err
		}
		var expr pmml.Expression = cf.Ref()
		if scales[i] != 1 {
			expr = pmml.NewApply(pmml.FuncMultiply, expr, number(scales[i]))
		}
		if mins[i] != 0 {
			expr = pmml.NewApply(pmml.FuncAdd, expr, number(mins[i]))
		}
		field, err := enc.CreateDerivedField(step.FieldName("minMaxScaler", cf.Name()), pmml.Continuous, pmml.Double, expr)
		if err != nil {
			return nil, err
		}
		out[i] = encoder.ContinuousOf(field)
	}
	return out, nil
}

// =============================================================================
// CATEGORY ENCODERS
// =============================================================================

// categoryEncoder holds the fitted categories_ shared by the one-hot and ordinal encoders.
type categoryEncoder struct {
	step.Base
}

func (c categoryEncoder) NumberOfFeatures() int {
	cats, err := c.GetListOfLists("categories_")
	if err != nil {
		return c.Base.NumberOfFeatures()
	}
	return len(cats)
}

func (c categoryEncoder) OpType() (pmml.OpType, error) {
	return pmml.Categorical, nil
}

// DataType is the common type of all fitted categories.
func (c categoryEncoder) DataType() (pmml.DataType, error) {
	cats, err := c.GetListOfLists("categories_")
	if err != nil {
		return "", err
	}
	var all []any
	for _, values := range cats {
		all = append(all, withoutNaN(values)...)
	}
	_, dataType := step.ClassValues(all)
	return dataType, nil
}

// assignDomain closes the category domain of every input field and decorates
// input data fields with the treatment of unseen values.
func (c categoryEncoder) assignDomain(features []encoder.Feature, invalidTreatment string, enc *encoder.Encoder) ([][]string, error) {
	cats, err := c.GetListOfLists("categories_")
	if err != nil {
		return nil, err
	}
	if len(cats) != len(features) {
		return nil, &step.ArityError{Class: c.ClassName(), What: "category list(s)", Expected: len(features), Actual: len(cats)}
	}

	domains := make([][]string, len(features))
	for i, f := range features {
		values, _ := step.ClassValues(withoutNaN(cats[i]))
		if err := enc.ToCategorical(f.Name(), values); err != nil {
			return nil, err
		}
		if field, ok := enc.Field(f.Name()); ok && !field.IsDerived() && field.Decoration.InvalidValueTreatment == "" {
			if err := enc.Decorate(f.Name(), encoder.Decoration{InvalidValueTreatment: invalidTreatment}); err != nil {
				return nil, err
			}
		}
		domains[i] = values
	}
	return domains, nil
}

// OneHotEncoder replaces every feature with one binary indicator per category.
type OneHotEncoder struct {
	categoryEncoder
}

func newOneHotEncoder(_ *step.Registry, n *node.Node) (step.Step, error) {
	if _, err := n.GetOptionalEnum("handle_unknown", "error", "error", "ignore", "infrequent_if_exist"); err != nil {
		return nil, err
	}
	if n.Has("infrequent_categories_") {
		return nil, fmt.Errorf("%w: infrequent category grouping", step.ErrUnsupported)
	}
	return &OneHotEncoder{categoryEncoder{Base: step.NewBase(n)}}, nil
}

func (o *OneHotEncoder) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	handleUnknown, err := o.GetOptionalEnum("handle_unknown", "error", "error", "ignore", "infrequent_if_exist")
	if err != nil {
		return nil, err
	}
	treatment := InvalidReturnInvalid
	if handleUnknown != "error" {
		treatment = InvalidAsIs
	}
	domains, err := o.assignDomain(features, treatment, enc)
	if err != nil {
		return nil, err
	}
	dropIdx, err := o.GetOptionalList("drop_idx_")
	if err != nil {
		return nil, err
	}
	if dropIdx != nil && len(dropIdx) != len(features) {
		return nil, &step.ArityError{Class: o.ClassName(), What: "drop index(es)", Expected: len(features), Actual: len(dropIdx)}
	}

	var out []encoder.Feature
	for i, f := range features {
		drop := -1
		if dropIdx != nil {
			if d, ok := node.AsInt(dropIdx[i]); ok {
				drop = d
			}
		}
		for j, value := range domains[i] {
			if j == drop {
				continue
			}
			out = append(out, encoder.NewBinaryFeature(f.Name(), f.DataType(), value))
		}
	}
	return out, nil
}

// OrdinalEncoder replaces every feature with the integer code of its category.
type OrdinalEncoder struct {
	categoryEncoder
}

func newOrdinalEncoder(_ *step.Registry, n *node.Node) (step.Step, error) {
	if _, err := n.GetOptionalEnum("handle_unknown", "error", "error", "use_encoded_value"); err != nil {
		return nil, err
	}
	return &OrdinalEncoder{categoryEncoder{Base: step.NewBase(n)}}, nil
}

func (o *OrdinalEncoder) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	handleUnknown, err := o.GetOptionalEnum("handle_unknown", "error", "error", "use_encoded_value")
	if err != nil {
		return nil, err
	}
	treatment := InvalidReturnInvalid
	defaultValue := ""
	if handleUnknown == "use_encoded_value" {
		treatment = InvalidAsIs
		if code, ok, err := o.code("unknown_value"); err != nil {
			return nil, err
		} else if ok {
			defaultValue = code
		}
	}
	mapMissingTo, _, err := o.code("encoded_missing_value")
	if err != nil {
		return nil, err
	}
	domains, err := o.assignDomain(features, treatment, enc)
	if err != nil {
		return nil, err
	}

	out := make([]encoder.Feature, len(features))
	for i, f := range features {
		mv := &pmml.MapValues{
			OutputColumn:     "output",
			DataType:         pmml.Integer,
			MapMissingTo:     mapMissingTo,
			DefaultValue:     defaultValue,
			FieldColumnPairs: []pmml.FieldColumnPair{{Field: f.Name(), Column: "input"}},
		}
		for j, value := range domains[i] {
			mv.InlineTable.Rows = append(mv.InlineTable.Rows, pmml.Row{Input: value, Output: fmt.Sprint(j)})
		}
		field, err := enc.CreateDerivedField(step.FieldName("ordinalEncoder", f.Name()), pmml.Categorical, pmml.Integer, mv)
		if err != nil {
			return nil, err
		}
		out[i] = encoder.NewIndexFeature(field.Name, field.DataType, domains[i])
	}
	return out, nil
}

// code reads an optional integer code attribute. NaN means no code.
func (o *OrdinalEncoder) code(name string) (string, bool, error) {
	v, ok, err := o.GetOptionalNumber(name)
	if err != nil || !ok || math.IsNaN(v) {
		return "", false, err
	}
	if v != math.Trunc(v) {
		return "", false, &node.AttributeError{Class: o.ClassName(), Attribute: name, Err: node.ErrUnsupportedValue, Detail: fmt.Sprintf("non-integer code %v", v)}
	}
	return fmt.Sprint(int64(v)), true, nil
}

// =============================================================================
// FUNCTION TRANSFORMER
// =============================================================================

// FunctionTransformer is supported as the identity transformation only.
type FunctionTransformer struct {
	step.Base
}

func newFunctionTransformer(_ *step.Registry, n *node.Node) (step.Step, error) {
	if v, ok := n.Get("func"); ok && v != nil {
		return nil, fmt.Errorf("%w: function %s", step.ErrUnsupported, node.TypeName(v))
	}
	return &FunctionTransformer{Base: step.NewBase(n)}, nil
}

func (t *FunctionTransformer) OpType() (pmml.OpType, error)     { return "", step.ErrUnsupportedType }
func (t *FunctionTransformer) DataType() (pmml.DataType, error) { return "", step.ErrUnsupportedType }

func (t *FunctionTransformer) EncodeFeatures(features []encoder.Feature, _ *encoder.Encoder) ([]encoder.Feature, error) {
	return features, nil
}
