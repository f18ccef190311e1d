package step

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/pmml"
)

// Pipeline is a chain of transformers with an optional final estimator.
// Its types and arity are those of its head, computed on every call.
type Pipeline struct {
	Class string
	Steps []Transformer
	Final Estimator
}

// NewPipeline creates a composite.
func NewPipeline(class string, steps []Transformer, final Estimator) *Pipeline {
	return &Pipeline{Class: class, Steps: steps, Final: final}
}

func (p *Pipeline) ClassName() string                { return p.Class }
func (p *Pipeline) Transformers() []Transformer      { return p.Steps }
func (p *Pipeline) FinalEstimator() Estimator        { return p.Final }
func (p *Pipeline) OpType() (pmml.OpType, error)     { return headOpType(p) }
func (p *Pipeline) DataType() (pmml.DataType, error) { return headDataType(p) }
func (p *Pipeline) NumberOfFeatures() int            { return headNumberOfFeatures(p) }

// Head returns the first transformer, else the final estimator, else nil.
func Head(c Composite) Step {
	if ts := c.Transformers(); len(ts) > 0 {
		return ts[0]
	}
	if e := c.FinalEstimator(); e != nil {
		return e
	}
	return nil
}

func headOpType(c Composite) (pmml.OpType, error) {
	if h := Head(c); h != nil {
		return h.OpType()
	}
	return "", ErrUnsupportedType
}

func headDataType(c Composite) (pmml.DataType, error) {
	if h := Head(c); h != nil {
		return h.DataType()
	}
	return "", ErrUnsupportedType
}

func headNumberOfFeatures(c Composite) int {
	if h := Head(c); h != nil {
		return h.NumberOfFeatures()
	}
	return Unknown
}

// EncodeCompositeFeatures folds the composite's transformers over the features.
func EncodeCompositeFeatures(c Composite, features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	for _, t := range c.Transformers() {
		var err error
		features, err = EncodeTransformer(t, features, enc)
		if err != nil {
			return nil, err
		}
	}
	return features, nil
}

// EncodeCompositeModel folds the transformers over the schema's features, refreshes
// the label from the catalogue, and delegates to the final estimator.
func EncodeCompositeModel(c Composite, schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error) {
	model, _, err := encodeCompositeModel(c, schema, enc)
	return model, err
}

func encodeCompositeModel(c Composite, schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, *encoder.Schema, error) {
	final := c.FinalEstimator()
	if final == nil {
		return nil, nil, wrap(c, "encode", ErrNoFinalEstimator)
	}
	features, err := EncodeCompositeFeatures(c, schema.Features(), enc)
	if err != nil {
		return nil, nil, err
	}
	label, err := enc.RefreshLabel(schema.Label())
	if err != nil {
		return nil, nil, wrap(c, "encode", err)
	}
	schema = encoder.NewSchema(label, features)
	model, err := EncodeEstimator(final, schema, enc)
	if err != nil {
		return nil, nil, err
	}
	return model, schema, nil
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// AsTransformer projects a composite onto the transformer role.
func AsTransformer(c Composite) (Transformer, error) {
	if c.FinalEstimator() != nil {
		return nil, wrap(c, "cast", ErrEndsWithEstimator)
	}
	if t, ok := c.(Transformer); ok {
		return t, nil
	}
	return compositeTransformer{c}, nil
}

// AsEstimator projects a composite onto the estimator role.
func AsEstimator(c Composite) (Estimator, error) {
	if c.FinalEstimator() == nil {
		return nil, wrap(c, "cast", ErrNoFinalEstimator)
	}
	if e, ok := c.(Estimator); ok {
		return e, nil
	}
	return compositeEstimator{c}, nil
}

// AsClassifier projects a composite onto the estimator role, requiring a classifier.
func AsClassifier(c Composite) (Estimator, error) {
	return asFunction(c, pmml.Classification)
}

// AsRegressor projects a composite onto the estimator role, requiring a regressor.
func AsRegressor(c Composite) (Estimator, error) {
	return asFunction(c, pmml.Regression)
}

// AsClusterer projects a composite onto the estimator role, requiring a clusterer.
func AsClusterer(c Composite) (Estimator, error) {
	return asFunction(c, pmml.Clustering)
}

func asFunction(c Composite, function pmml.MiningFunction) (Estimator, error) {
	e, err := AsEstimator(c)
	if err != nil {
		return nil, err
	}
	if got := e.MiningFunction(); got != function {
		return nil, wrap(c, "cast", fmt.Errorf("%w: expected a %s estimator, got %s", ErrWrongRole, function, got))
	}
	return e, nil
}

// compositeTransformer is a composite without a final estimator seen as a transformer.
type compositeTransformer struct {
	Composite
}

func (t compositeTransformer) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	return EncodeCompositeFeatures(t.Composite, features, enc)
}

// compositeEstimator is a composite with a final estimator seen as an estimator.
// Label-related capabilities delegate to the final estimator.
type compositeEstimator struct {
	Composite
}

func (e compositeEstimator) MiningFunction() pmml.MiningFunction {
	return e.FinalEstimator().MiningFunction()
}

func (e compositeEstimator) IsSupervised() bool {
	return e.FinalEstimator().IsSupervised()
}

func (e compositeEstimator) Classes() ([]any, error) {
	if hc, ok := e.FinalEstimator().(HasClasses); ok {
		return hc.Classes()
	}
	return nil, ErrUnsupported
}

func (e compositeEstimator) EncodeLabel(names []string, enc *encoder.Encoder) (encoder.Label, error) {
	return EncodeLabel(e.FinalEstimator(), names, enc)
}

func (e compositeEstimator) EncodeModel(schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error) {
	return EncodeCompositeModel(e.Composite, schema, enc)
}
