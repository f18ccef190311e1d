package sklearn2pmml

import (
	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
	"skl2pmml/internal/translator"
)

// ExpressionRegressor predicts the value of a formula over the row variable X,
// optionally exponentiated.
type ExpressionRegressor struct {
	step.Base
	formula       string
	normalization string
}

func newExpressionRegressor(_ *step.Registry, n *node.Node) (step.Step, error) {
	formula, err := formulaAttribute(n)
	if err != nil {
		return nil, err
	}
	normalization, err := n.GetOptionalEnum("normalization_method", "none", "none", "exp")
	if err != nil {
		return nil, err
	}
	return &ExpressionRegressor{Base: step.NewBase(n), formula: formula, normalization: normalization}, nil
}

func (r *ExpressionRegressor) OpType() (pmml.OpType, error)        { return "", step.ErrUnsupportedType }
func (r *ExpressionRegressor) DataType() (pmml.DataType, error)    { return "", step.ErrUnsupportedType }
func (r *ExpressionRegressor) MiningFunction() pmml.MiningFunction { return pmml.Regression }
func (r *ExpressionRegressor) IsSupervised() bool                  { return true }

func (r *ExpressionRegressor) EncodeModel(schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error) {
	tr := translator.New(translator.NewScope(schema.Features()), translator.WithNegateComparisons(enc.Options().NegateComparisons))
	translation, err := tr.TranslateExpression(enc.Context(), r.formula)
	if err != nil {
		return nil, err
	}

	name := step.FieldName("eval", r.formula)
	if ref, ok := translation.Expression.(*pmml.FieldRef); ok {
		name = ref.Field
	} else {
		field, err := enc.CreateDerivedField(name, pmml.Continuous, pmml.Double, translation.Expression)
		if err != nil {
			return nil, err
		}
		name = field.Name
	}

	model := &pmml.RegressionModel{
		Tables: []pmml.RegressionTable{{
			NumericPredictors: []pmml.NumericPredictor{{Name: name, Coefficient: 1}},
		}},
	}
	if r.normalization != "none" {
		model.NormalizationMethod = r.normalization
	}
	return model, nil
}
