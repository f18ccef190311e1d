package step

import (
	"errors"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/logging"
	"skl2pmml/internal/pmml"
)

// DefaultTarget names the label field when the pipeline does not name one.
const DefaultTarget = "y"

// =============================================================================
// TRANSFORMERS
// =============================================================================

// EncodeTransformer checks the input arity, re-types wildcard inputs to the
// transformer's declared types, then encodes the features.
func EncodeTransformer(t Transformer, features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	if init, ok := t.(Initializer); ok {
		return EncodeInitializer(init, features, enc)
	}
	return encodeTransformer(t, features, enc)
}

func encodeTransformer(t Transformer, features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	if err := CheckNumberOfFeatures(t, len(features)); err != nil {
		return nil, wrap(t, "encode", err)
	}
	features, err := UpdateFeatures(t, features, enc)
	if err != nil {
		return nil, wrap(t, "encode", err)
	}
	logging.StepDebug("Encoding %s over %d feature(s)", t.ClassName(), len(features))
	out, err := t.EncodeFeatures(features, enc)
	if err != nil {
		return nil, wrap(t, "encode", err)
	}
	return out, nil
}

// EncodeInitializer originates the input columns when no features flow in.
// With incoming features the initializer is encoded like any other transformer.
func EncodeInitializer(t Initializer, features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	if len(features) == 0 {
		logging.StepDebug("Initializing features with %s", t.ClassName())
		out, err := t.InitializeFeatures(enc)
		if err != nil {
			return nil, wrap(t, "initialize", err)
		}
		return out, nil
	}
	logging.StepWarn("%s received %d upstream feature(s); its column selection is applied to them instead of the input data", t.ClassName(), len(features))
	return encodeTransformer(t, features, enc)
}

// CheckNumberOfFeatures compares a step's declared arity with the actual input count.
func CheckNumberOfFeatures(s Step, actual int) error {
	expected := s.NumberOfFeatures()
	if expected == Unknown || expected == actual {
		return nil
	}
	// A composite headed by an initializer originates its own columns
	if c, ok := s.(Composite); ok && actual == 0 {
		if _, ok := Head(c).(Initializer); ok {
			return nil
		}
	}
	return &ArityError{Class: s.ClassName(), What: "feature(s)", Expected: expected, Actual: actual}
}

// UpdateFeatures re-types the data fields behind wildcard features to the step's declared types.
// Steps without type information leave the features unchanged.
func UpdateFeatures(s Step, features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	opType, err := s.OpType()
	if errors.Is(err, ErrUnsupportedType) {
		return features, nil
	} else if err != nil {
		return nil, err
	}
	dataType, err := s.DataType()
	if errors.Is(err, ErrUnsupportedType) {
		return features, nil
	} else if err != nil {
		return nil, err
	}

	out := make([]encoder.Feature, len(features))
	for i, f := range features {
		out[i] = f
		if _, ok := f.(encoder.WildcardFeature); !ok {
			continue
		}
		field, ok := enc.Field(f.Name())
		if !ok || (field.OpType == opType && field.DataType == dataType) {
			continue
		}
		field, err := enc.RetypeField(field.Name, opType, dataType)
		if err != nil {
			return nil, err
		}
		out[i] = encoder.WildcardOf(field)
	}
	return out, nil
}

// =============================================================================
// ESTIMATORS
// =============================================================================

// EncodeEstimator validates the schema against the estimator and encodes its model,
// filling in the model name, algorithm name and feature importances.
func EncodeEstimator(e Estimator, schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error) {
	label := schema.Label()
	if e.IsSupervised() && label == nil {
		return nil, wrap(e, "encode", ErrMissingLabel)
	}
	if !e.IsSupervised() && label != nil {
		return nil, wrap(e, "encode", ErrUnexpectedLabel)
	}
	if err := CheckNumberOfFeatures(e, schema.NumberOfFeatures()); err != nil {
		return nil, wrap(e, "encode", err)
	}
	for _, f := range schema.Features() {
		if err := enc.CheckFeature(f); err != nil {
			return nil, wrap(e, "encode", err)
		}
	}

	logging.StepDebug("Encoding %s model over %d feature(s)", e.ClassName(), schema.NumberOfFeatures())
	model, err := e.EncodeModel(schema, enc)
	if err != nil {
		return nil, wrap(e, "encode", err)
	}

	base := model.Base()
	if base.FunctionName == "" {
		base.FunctionName = e.MiningFunction()
	}
	if label != nil && base.Targets == nil {
		base.Targets = label.Names()
	}
	if base.ModelName == "" {
		if named, ok := e.(HasPMMLName); ok {
			name, ok, err := named.PMMLName()
			if err != nil {
				return nil, wrap(e, "encode", err)
			}
			if ok {
				base.ModelName = name
			}
		}
	}
	if base.AlgorithmName == "" {
		if an, ok := e.(HasAlgorithmName); ok {
			base.AlgorithmName = an.AlgorithmName()
		}
	}
	if err := addFeatureImportances(e, schema, base); err != nil {
		return nil, wrap(e, "encode", err)
	}
	return model, nil
}

func addFeatureImportances(e Estimator, schema *encoder.Schema, base *pmml.ModelBase) error {
	fi, ok := e.(HasFeatureImportances)
	if !ok {
		return nil
	}
	values, ok, err := fi.FeatureImportances()
	if err != nil || !ok {
		return err
	}
	features := schema.Features()
	if len(values) != len(features) {
		return &ArityError{Class: e.ClassName(), What: "feature importance(s)", Expected: len(features), Actual: len(values)}
	}
	for i, f := range features {
		base.SetImportance(f.Name(), values[i])
	}
	return nil
}

// EncodeLabel creates the label an estimator predicts, registering its target fields.
// Unsupervised estimators have no label.
func EncodeLabel(e Estimator, names []string, enc *encoder.Encoder) (encoder.Label, error) {
	if !e.IsSupervised() {
		return nil, nil
	}
	if le, ok := e.(LabelEncoder); ok {
		label, err := le.EncodeLabel(names, enc)
		return label, wrap(e, "label", err)
	}

	switch e.MiningFunction() {
	case pmml.Regression:
		if len(names) == 1 {
			label, err := enc.CreateContinuousLabel(names[0], pmml.Double)
			return label, wrap(e, "label", err)
		}
		labels := make([]encoder.ScalarLabel, len(names))
		for i, name := range names {
			label, err := enc.CreateContinuousLabel(name, pmml.Double)
			if err != nil {
				return nil, wrap(e, "label", err)
			}
			labels[i] = label
		}
		return encoder.NewMultiLabel(labels...), nil

	case pmml.Classification:
		if len(names) != 1 {
			return nil, wrap(e, "label", &ArityError{Class: e.ClassName(), What: "target field(s)", Expected: 1, Actual: len(names)})
		}
		hc, ok := e.(HasClasses)
		if !ok {
			return nil, wrap(e, "label", ErrUnsupported)
		}
		classes, err := hc.Classes()
		if err != nil {
			return nil, wrap(e, "label", err)
		}
		values, dataType := ClassValues(classes)
		label, err := enc.CreateCategoricalLabel(names[0], dataType, values)
		return label, wrap(e, "label", err)
	}
	return nil, nil
}
