// Package sklearn registers the scikit-learn step classes: pipelines, column
// composition, preprocessing, imputation, linear models, clustering and dummy
// estimators.
package sklearn

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

func init() {
	step.MustRegister("sklearn.pipeline", "Pipeline", newPipeline)
	step.MustRegister("sklearn.pipeline", "FeatureUnion", newFeatureUnion)
	step.MustRegister("sklearn.compose", "ColumnTransformer", newColumnTransformer)
	step.MustRegister("sklearn.preprocessing", "StandardScaler", newStandardScaler)
	step.MustRegister("sklearn.preprocessing", "MinMaxScaler", newMinMaxScaler)
	step.MustRegister("sklearn.preprocessing", "OneHotEncoder", newOneHotEncoder)
	step.MustRegister("sklearn.preprocessing", "OrdinalEncoder", newOrdinalEncoder)
	step.MustRegister("sklearn.preprocessing", "FunctionTransformer", newFunctionTransformer)
	step.MustRegister("sklearn.impute", "SimpleImputer", newSimpleImputer)
	step.MustRegister("sklearn.linear_model", "LinearRegression", newLinearRegressor)
	step.MustRegister("sklearn.linear_model", "Ridge", newLinearRegressor)
	step.MustRegister("sklearn.linear_model", "LogisticRegression", newLogisticRegression)
	step.MustRegister("sklearn.cluster", "KMeans", newKMeans)
	step.MustRegister("sklearn.dummy", "DummyRegressor", newDummyRegressor)
	step.MustRegister("sklearn.dummy", "DummyClassifier", newDummyClassifier)
}

// =============================================================================
// PIPELINE
// =============================================================================

func newPipeline(r *step.Registry, n *node.Node) (step.Step, error) {
	steps, err := n.GetTupleList("steps", 2)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "steps", Err: node.ErrAttributeType, Detail: "empty pipeline"}
	}
	values := make([]any, len(steps))
	for i, s := range steps {
		values[i] = s[1]
	}
	p, err := r.Chain(n.ClassName(), values)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// =============================================================================
// FEATURE UNION
// =============================================================================

// FeatureUnion concatenates the outputs of transformers applied to the same input.
type FeatureUnion struct {
	step.Base
	transformers []step.Transformer
}

func newFeatureUnion(r *step.Registry, n *node.Node) (step.Step, error) {
	list, err := n.GetTupleList("transformer_list", 2)
	if err != nil {
		return nil, err
	}
	weights, err := n.GetOptionalDict("transformer_weights")
	if err != nil {
		return nil, err
	}
	for name, w := range weights {
		if v, ok := node.AsNumber(w); !ok || v != 1 {
			return nil, fmt.Errorf("%w: transformer weight %v of '%s'", step.ErrUnsupported, w, name)
		}
	}

	u := &FeatureUnion{Base: step.NewBase(n)}
	for _, t := range list {
		tr, err := r.Transformer(t[1])
		if err != nil {
			return nil, err
		}
		u.transformers = append(u.transformers, tr)
	}
	return u, nil
}

func (u *FeatureUnion) OpType() (pmml.OpType, error)     { return "", step.ErrUnsupportedType }
func (u *FeatureUnion) DataType() (pmml.DataType, error) { return "", step.ErrUnsupportedType }

func (u *FeatureUnion) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	var out []encoder.Feature
	for _, t := range u.transformers {
		part, err := step.EncodeTransformer(t, features, enc)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}
