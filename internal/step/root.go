package step

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/pmml"
)

// RootFields names the pipeline's input and target columns.
// Empty lists fall back to feature_names_in_ / x1..xn and DefaultTarget.
type RootFields struct {
	Active []string
	Target []string
}

// Encodable is implemented by root composites that know their own field names,
// such as a PMMLPipeline carrying active_fields and target_fields.
type Encodable interface {
	Composite
	Encode(enc *encoder.Encoder) (*Encoding, error)
}

// HasHeader is implemented by roots that carry document header annotations.
type HasHeader interface {
	Header() (pmml.Header, bool, error)
}

// Encoding is the result of lowering a root step.
type Encoding struct {
	// Schema is the root schema: the label and the input features.
	Schema *encoder.Schema
	Model  pmml.Model
}

// EncodeRoot lowers the outermost step of a fitted pipeline. A bare estimator is
// treated as a pipeline of one step.
func EncodeRoot(s Step, fields RootFields, enc *encoder.Encoder) (*Encoding, error) {
	c, ok := s.(Composite)
	if !ok {
		e, ok := s.(Estimator)
		if !ok {
			return nil, wrap(s, "encode", fmt.Errorf("%w: the root must be a pipeline or an estimator", ErrWrongRole))
		}
		c = NewPipeline(e.ClassName(), nil, e)
	}

	final := c.FinalEstimator()
	if final == nil {
		return nil, wrap(c, "encode", ErrNoFinalEstimator)
	}

	targets := fields.Target
	if len(targets) == 0 {
		targets = []string{DefaultTarget}
	}
	label, err := EncodeLabel(final, targets, enc)
	if err != nil {
		return nil, err
	}

	features, err := InitFeatures(c, fields.Active, enc)
	if err != nil {
		return nil, err
	}

	schema := encoder.NewSchema(label, features)
	model, finalSchema, err := encodeCompositeModel(c, schema, enc)
	if err != nil {
		return nil, err
	}
	return &Encoding{Schema: encoder.NewSchema(finalSchema.Label(), features), Model: model}, nil
}

// InitFeatures creates the input data fields of a composite. An initializer head
// originates its own columns, so no features are created for it.
func InitFeatures(c Composite, active []string, enc *encoder.Encoder) ([]encoder.Feature, error) {
	head := Head(c)
	if head == nil {
		return nil, nil
	}
	if _, ok := head.(Initializer); ok {
		return nil, nil
	}

	names := active
	if len(names) == 0 {
		if fn, ok := head.(HasFeatureNamesIn); ok {
			var err error
			if names, err = fn.FeatureNamesIn(); err != nil {
				return nil, wrap(head, "initialize", err)
			}
		}
	}
	if len(names) == 0 {
		n := head.NumberOfFeatures()
		if n == Unknown {
			return nil, wrap(head, "initialize", fmt.Errorf("%w: the number of input features is unknown", ErrUnsupported))
		}
		names = DefaultNames(n)
	}

	opType, err := head.OpType()
	if err != nil {
		opType = pmml.Continuous
	}
	dataType, err := head.DataType()
	if err != nil {
		dataType = pmml.Double
	}

	features := make([]encoder.Feature, len(names))
	for i, name := range names {
		field, err := enc.CreateDataField(name, opType, dataType)
		if err != nil {
			return nil, wrap(head, "initialize", err)
		}
		features[i] = encoder.WildcardOf(field)
	}
	return features, nil
}

// DefaultNames returns x1..xn.
func DefaultNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i+1)
	}
	return names
}
