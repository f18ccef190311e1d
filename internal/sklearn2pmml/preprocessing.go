package sklearn2pmml

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
	"skl2pmml/internal/translator"
)

// =============================================================================
// EXPRESSION TRANSFORMER
// =============================================================================

// ExpressionTransformer derives one field from a formula over the row variable X.
type ExpressionTransformer struct {
	step.Base
	formula          string
	mapMissingTo     any
	defaultValue     any
	invalidTreatment string
}

func newExpressionTransformer(_ *step.Registry, n *node.Node) (step.Step, error) {
	formula, err := formulaAttribute(n)
	if err != nil {
		return nil, err
	}
	t := &ExpressionTransformer{Base: step.NewBase(n), formula: formula}
	if v, ok := n.Get("map_missing_to"); ok && v != nil && !isNaN(v) {
		t.mapMissingTo = v
	}
	if v, ok := n.Get("default_value"); ok && v != nil && !isNaN(v) {
		t.defaultValue = v
	}
	if n.Has("invalid_value_treatment") {
		s, err := n.GetEnum("invalid_value_treatment", "as_is", "as_missing", "return_invalid")
		if err != nil {
			return nil, err
		}
		t.invalidTreatment = invalidTreatments[s]
	}
	return t, nil
}

// formulaAttribute reads expr as a plain string or as an expression object
// wrapping one. expr_ is the attribute name of older pickles.
func formulaAttribute(n *node.Node) (string, error) {
	if n.Has("expr_") {
		return n.GetString("expr_")
	}
	v, ok := n.Get("expr")
	if !ok || v == nil {
		return "", &node.AttributeError{Class: n.ClassName(), Attribute: "expr", Err: node.ErrMissingAttribute}
	}
	if s, ok := node.AsString(v); ok {
		return s, nil
	}
	inner, ok := v.(*node.Node)
	if !ok {
		return "", &node.AttributeError{Class: n.ClassName(), Attribute: "expr", Err: node.ErrAttributeType, Detail: "expected str or expression, got " + node.TypeName(v)}
	}
	return inner.GetString("expr")
}

func (t *ExpressionTransformer) OpType() (pmml.OpType, error)     { return "", step.ErrUnsupportedType }
func (t *ExpressionTransformer) DataType() (pmml.DataType, error) { return "", step.ErrUnsupportedType }
func (t *ExpressionTransformer) NumberOfFeatures() int            { return step.Unknown }

func (t *ExpressionTransformer) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	tr := translator.New(translator.NewScope(features), translator.WithNegateComparisons(enc.Options().NegateComparisons))
	translation, err := tr.TranslateExpression(enc.Context(), t.formula)
	if err != nil {
		return nil, err
	}

	dataType := translation.DataType
	declared, hasDType, err := dtypeAttribute(t.Node, "dtype_", "dtype")
	if err != nil {
		return nil, err
	}
	if hasDType {
		dataType = declared
	}
	opType := pmml.Categorical
	if dataType.IsNumeric() {
		opType = pmml.Continuous
	}

	expr := translation.Expression
	hasOptions := t.mapMissingTo != nil || t.defaultValue != nil || t.invalidTreatment != ""

	// A bare column reference reuses the referenced feature
	if ref, ok := expr.(*pmml.FieldRef); ok && !hasOptions {
		for _, f := range features {
			if f.Name() == ref.Field && f.DataType() == dataType {
				return []encoder.Feature{f}, nil
			}
		}
	}

	if hasOptions {
		apply, ok := expr.(*pmml.Apply)
		if !ok {
			return nil, fmt.Errorf("%w: map_missing_to, default_value and invalid_value_treatment need a function call at the top of %q", step.ErrUnsupported, t.formula)
		}
		if t.mapMissingTo != nil {
			apply.MapMissingTo = formatValue(t.mapMissingTo, dataType)
		}
		if t.defaultValue != nil {
			apply.DefaultValue = formatValue(t.defaultValue, dataType)
		}
		apply.InvalidValueTreatment = t.invalidTreatment
	}

	field, err := enc.CreateDerivedField(step.FieldName("eval", t.formula), opType, dataType, expr)
	if err != nil {
		return nil, err
	}
	return []encoder.Feature{encoder.FeatureOf(field)}, nil
}
