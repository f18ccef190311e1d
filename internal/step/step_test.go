package step

import (
	"errors"
	"testing"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeTransformer struct {
	class    string
	n        int
	opType   pmml.OpType
	dataType pmml.DataType
	encode   func([]encoder.Feature, *encoder.Encoder) ([]encoder.Feature, error)
	calls    int
}

func (t *fakeTransformer) ClassName() string     { return t.class }
func (t *fakeTransformer) NumberOfFeatures() int { return t.n }

func (t *fakeTransformer) OpType() (pmml.OpType, error) {
	if t.opType == "" {
		return "", ErrUnsupportedType
	}
	return t.opType, nil
}

func (t *fakeTransformer) DataType() (pmml.DataType, error) {
	if t.dataType == "" {
		return "", ErrUnsupportedType
	}
	return t.dataType, nil
}

func (t *fakeTransformer) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	t.calls++
	if t.encode != nil {
		return t.encode(features, enc)
	}
	return features, nil
}

type fakeInitializer struct {
	*fakeTransformer
	initialized int
}

func (i *fakeInitializer) InitializeFeatures(enc *encoder.Encoder) ([]encoder.Feature, error) {
	i.initialized++
	f, err := enc.CreateDataField("origin", pmml.Categorical, pmml.String)
	if err != nil {
		return nil, err
	}
	return []encoder.Feature{encoder.WildcardOf(f)}, nil
}

type fakeEstimator struct {
	Base
	function   pmml.MiningFunction
	supervised bool
	got        *encoder.Schema
	err        error
}

func newEstimator(class string, function pmml.MiningFunction, attrs map[string]any) *fakeEstimator {
	return &fakeEstimator{
		Base:       NewBase(node.New("test", class, attrs)),
		function:   function,
		supervised: function != pmml.Clustering,
	}
}

func (e *fakeEstimator) MiningFunction() pmml.MiningFunction { return e.function }
func (e *fakeEstimator) IsSupervised() bool                  { return e.supervised }
func (e *fakeEstimator) Classes() ([]any, error)             { return e.GetList("classes_") }

func (e *fakeEstimator) EncodeModel(schema *encoder.Schema, _ *encoder.Encoder) (pmml.Model, error) {
	e.got = schema
	if e.err != nil {
		return nil, e.err
	}
	return &pmml.RegressionModel{}, nil
}

func dataFeatures(t *testing.T, enc *encoder.Encoder, names ...string) []encoder.Feature {
	t.Helper()
	features := make([]encoder.Feature, len(names))
	for i, name := range names {
		f, err := enc.CreateDataField(name, pmml.Continuous, pmml.Double)
		require.NoError(t, err)
		features[i] = encoder.WildcardOf(f)
	}
	return features
}

// =============================================================================
// TRANSFORMERS
// =============================================================================

func TestEncodeTransformer_Arity(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a", "b")
	tr := &fakeTransformer{class: "test.Scaler", n: 1}

	_, err := EncodeTransformer(tr, features, enc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArity))

	var ae *ArityError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 1, ae.Expected)
	assert.Equal(t, 2, ae.Actual)

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "test.Scaler", se.Class)
	assert.Zero(t, tr.calls)

	tr.n = Unknown
	out, err := EncodeTransformer(tr, features, enc)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestUpdateFeatures(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a", "b")

	t.Run("retypes wildcard fields", func(t *testing.T) {
		tr := &fakeTransformer{opType: pmml.Categorical, dataType: pmml.String}
		out, err := UpdateFeatures(tr, features[:1], enc)
		require.NoError(t, err)
		assert.Equal(t, pmml.String, out[0].DataType())

		f, _ := enc.Field("a")
		assert.Equal(t, pmml.Categorical, f.OpType)
		assert.Equal(t, pmml.String, f.DataType)
	})

	t.Run("untyped step leaves features alone", func(t *testing.T) {
		tr := &fakeTransformer{}
		out, err := UpdateFeatures(tr, features[1:], enc)
		require.NoError(t, err)
		assert.Equal(t, features[1:], out)
	})

	t.Run("frozen field keeps committed type", func(t *testing.T) {
		_, err := enc.CommitFieldType("b", pmml.Continuous, pmml.Integer)
		require.NoError(t, err)
		in := []encoder.Feature{encoder.NewWildcardFeature("b", pmml.Integer)}

		tr := &fakeTransformer{opType: pmml.Categorical, dataType: pmml.String}
		out, err := UpdateFeatures(tr, in, enc)
		require.NoError(t, err)
		assert.Equal(t, pmml.Integer, out[0].DataType())
	})

	t.Run("non-wildcard features are not retyped", func(t *testing.T) {
		in := []encoder.Feature{encoder.NewContinuousFeature("a", pmml.String)}
		tr := &fakeTransformer{opType: pmml.Continuous, dataType: pmml.Double}
		out, err := UpdateFeatures(tr, in, enc)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestEncodeInitializer(t *testing.T) {
	enc := encoder.New()
	init := &fakeInitializer{fakeTransformer: &fakeTransformer{class: "test.Mapper", n: Unknown}}

	out, err := EncodeTransformer(init, nil, enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"origin"}, encoder.Names(out))
	assert.Equal(t, 1, init.initialized)
	assert.Zero(t, init.calls)

	// With upstream features the initializer runs as a plain transformer
	out, err = EncodeTransformer(init, out, enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"origin"}, encoder.Names(out))
	assert.Equal(t, 1, init.initialized)
	assert.Equal(t, 1, init.calls)
}

// =============================================================================
// ESTIMATORS
// =============================================================================

func TestEncodeEstimator_Supervision(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a")
	label, err := enc.CreateContinuousLabel("y", pmml.Double)
	require.NoError(t, err)

	reg := newEstimator("Regressor", pmml.Regression, nil)
	_, err = EncodeEstimator(reg, encoder.NewSchema(nil, features), enc)
	assert.True(t, errors.Is(err, ErrMissingLabel))
	assert.Nil(t, reg.got)

	km := newEstimator("Clusterer", pmml.Clustering, nil)
	_, err = EncodeEstimator(km, encoder.NewSchema(label, features), enc)
	assert.True(t, errors.Is(err, ErrUnexpectedLabel))

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "test.Clusterer", se.Class)

	_, err = EncodeEstimator(km, encoder.NewSchema(nil, features), enc)
	assert.NoError(t, err)
}

func TestEncodeEstimator_Defaults(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a", "b")
	label, err := enc.CreateContinuousLabel("y", pmml.Double)
	require.NoError(t, err)

	reg := newEstimator("LinearRegression", pmml.Regression, map[string]any{
		"n_features_in_":            int64(2),
		"pmml_name_":                "price",
		"pmml_feature_importances_": []any{0.25, 0.75},
	})
	model, err := EncodeEstimator(reg, encoder.NewSchema(label, features), enc)
	require.NoError(t, err)

	base := model.Base()
	assert.Equal(t, "price", base.ModelName)
	assert.Equal(t, "LinearRegression", base.AlgorithmName)
	assert.Equal(t, pmml.Regression, base.FunctionName)
	assert.Equal(t, []string{"y"}, base.Targets)
	assert.Equal(t, map[string]float64{"a": 0.25, "b": 0.75}, base.Importances)
}

func TestEncodeEstimator_Arity(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a", "b")
	label, err := enc.CreateContinuousLabel("y", pmml.Double)
	require.NoError(t, err)

	reg := newEstimator("Regressor", pmml.Regression, map[string]any{"n_features_in_": int64(3)})
	_, err = EncodeEstimator(reg, encoder.NewSchema(label, features), enc)
	var ae *ArityError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 3, ae.Expected)
	assert.Equal(t, 2, ae.Actual)

	reg = newEstimator("Regressor", pmml.Regression, map[string]any{"feature_importances_": []any{1.0}})
	_, err = EncodeEstimator(reg, encoder.NewSchema(label, features), enc)
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "feature importance(s)", ae.What)
	assert.Equal(t, 2, ae.Expected)
	assert.Equal(t, 1, ae.Actual)
}

func TestEncodeEstimator_UncataloguedFeature(t *testing.T) {
	enc := encoder.New()
	label, err := enc.CreateContinuousLabel("y", pmml.Double)
	require.NoError(t, err)

	reg := newEstimator("Regressor", pmml.Regression, nil)
	schema := encoder.NewSchema(label, []encoder.Feature{encoder.NewContinuousFeature("ghost", pmml.Double)})
	_, err = EncodeEstimator(reg, schema, enc)
	assert.True(t, errors.Is(err, encoder.ErrUndefinedField))
}

func TestEncodeLabel(t *testing.T) {
	enc := encoder.New()

	clf := newEstimator("Classifier", pmml.Classification, map[string]any{"classes_": []any{int64(0), int64(1)}})
	label, err := EncodeLabel(clf, []string{"y"}, enc)
	require.NoError(t, err)
	cat, ok := label.(encoder.CategoricalLabel)
	require.True(t, ok)
	assert.Equal(t, pmml.Integer, cat.DataType())
	assert.Equal(t, []string{"0", "1"}, cat.Values())

	_, err = EncodeLabel(clf, []string{"y1", "y2"}, enc)
	assert.True(t, errors.Is(err, ErrArity))

	reg := newEstimator("Regressor", pmml.Regression, nil)
	label, err = EncodeLabel(reg, []string{"u", "v"}, enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"u", "v"}, label.Names())

	km := newEstimator("Clusterer", pmml.Clustering, nil)
	label, err = EncodeLabel(km, []string{"y"}, enc)
	require.NoError(t, err)
	assert.Nil(t, label)
}

func TestClassValues(t *testing.T) {
	tests := []struct {
		name     string
		classes  []any
		values   []string
		dataType pmml.DataType
	}{
		{"integers", []any{int64(0), int64(1), int64(2)}, []string{"0", "1", "2"}, pmml.Integer},
		{"floats", []any{0.0, 1.5}, []string{"0.0", "1.5"}, pmml.Double},
		{"mixed numbers", []any{int64(1), 2.5}, []string{"1.0", "2.5"}, pmml.Double},
		{"booleans", []any{false, true}, []string{"false", "true"}, pmml.Boolean},
		{"strings", []any{"no", "yes"}, []string{"no", "yes"}, pmml.String},
		{"mixed", []any{"a", int64(1)}, []string{"a", "1"}, pmml.String},
		{"empty", nil, []string{}, pmml.String},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, dataType := ClassValues(tt.classes)
			assert.Equal(t, tt.values, values)
			assert.Equal(t, tt.dataType, dataType)
		})
	}
}

func TestStepError_KeepsInnermost(t *testing.T) {
	inner := wrap(&fakeTransformer{class: "inner"}, "encode", ErrUnsupported)
	outer := wrap(&fakeTransformer{class: "outer"}, "encode", inner)

	var se *StepError
	require.True(t, errors.As(outer, &se))
	assert.Equal(t, "inner", se.Class)
	assert.True(t, errors.Is(outer, ErrUnsupported))
	assert.Nil(t, wrap(&fakeTransformer{}, "encode", nil))
}
