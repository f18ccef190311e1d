// Package step defines the pipeline step model: role interfaces, narrow
// capability interfaces, the dispatch functions that lower steps into the
// Encoder, and the class registry that builds steps from attributed nodes.
//
// Steps are stateless. Every piece of evolving conversion state lives in the
// *encoder.Encoder passed through the dispatch functions.
package step

import (
	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
)

// Unknown is the arity of a step that does not declare its input width.
const Unknown = -1

// Step is one fitted pipeline stage.
type Step interface {
	// ClassName is the qualified class identity, used to tag errors.
	ClassName() string

	// OpType and DataType describe the inputs the step expects.
	// ErrUnsupportedType means the step accepts inputs of any kind unchanged.
	OpType() (pmml.OpType, error)
	DataType() (pmml.DataType, error)

	// NumberOfFeatures is the expected input arity, or Unknown.
	NumberOfFeatures() int
}

// Transformer maps features to features.
type Transformer interface {
	Step
	EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error)
}

// Initializer is a transformer that can originate the pipeline's input columns.
type Initializer interface {
	Transformer
	InitializeFeatures(enc *encoder.Encoder) ([]encoder.Feature, error)
}

// Estimator turns a schema into a model.
type Estimator interface {
	Step
	MiningFunction() pmml.MiningFunction
	IsSupervised() bool
	EncodeModel(schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error)
}

// Composite is a container of transformers with an optional final estimator.
type Composite interface {
	Step
	Transformers() []Transformer

	// FinalEstimator returns nil when the composite ends with a transformer.
	FinalEstimator() Estimator
}

// =============================================================================
// CAPABILITIES
// =============================================================================

// HasClasses is implemented by classifiers.
type HasClasses interface {
	Classes() ([]any, error)
}

// HasFeatureNamesIn is implemented by steps that recorded their input column names.
type HasFeatureNamesIn interface {
	FeatureNamesIn() ([]string, error)
}

// HasFeatureImportances is implemented by estimators that carry importance values.
type HasFeatureImportances interface {
	FeatureImportances() ([]float64, bool, error)
}

// HasPMMLName is implemented by steps that carry a user-assigned model name.
type HasPMMLName interface {
	PMMLName() (string, bool, error)
}

// HasAlgorithmName overrides the default algorithm name (the short class name).
type HasAlgorithmName interface {
	AlgorithmName() string
}

// HasNumberOfOutputs is implemented by estimators that may predict several targets.
type HasNumberOfOutputs interface {
	NumberOfOutputs() int
}

// LabelEncoder is implemented by estimators that build their own label.
type LabelEncoder interface {
	EncodeLabel(names []string, enc *encoder.Encoder) (encoder.Label, error)
}

// =============================================================================
// BASE
// =============================================================================

// Base is embedded by node-backed steps. It promotes the typed accessors of the
// underlying node and provides the common defaults: continuous double inputs,
// arity from n_features_in_.
type Base struct {
	*node.Node
}

// NewBase wraps a node.
func NewBase(n *node.Node) Base {
	return Base{Node: n}
}

func (b Base) OpType() (pmml.OpType, error) {
	return pmml.Continuous, nil
}

func (b Base) DataType() (pmml.DataType, error) {
	return pmml.Double, nil
}

func (b Base) NumberOfFeatures() int {
	n, ok, err := b.GetOptionalInt("n_features_in_")
	if err != nil || !ok {
		return Unknown
	}
	return n
}

func (b Base) FeatureNamesIn() ([]string, error) {
	return b.GetOptionalStringList("feature_names_in_")
}

func (b Base) NumberOfOutputs() int {
	n, ok, err := b.GetOptionalInt("n_outputs_")
	if err != nil || !ok {
		return Unknown
	}
	return n
}

func (b Base) PMMLName() (string, bool, error) {
	return b.GetOptionalString("pmml_name_")
}

func (b Base) AlgorithmName() string {
	return b.Class
}

// FeatureImportances reads pmml_feature_importances_, then feature_importances_.
func (b Base) FeatureImportances() ([]float64, bool, error) {
	for _, name := range []string{"pmml_feature_importances_", "feature_importances_"} {
		if !b.Has(name) {
			continue
		}
		values, err := b.GetNumberList(name)
		if err != nil {
			return nil, false, err
		}
		return values, true, nil
	}
	return nil, false, nil
}
