package step

import (
	"errors"
	"testing"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/pmml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doubler derives "double(x)" for every input feature.
func doubler(class string) *fakeTransformer {
	return &fakeTransformer{
		class:    class,
		n:        Unknown,
		opType:   pmml.Continuous,
		dataType: pmml.Double,
		encode: func(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
			out := make([]encoder.Feature, len(features))
			for i, f := range features {
				expr := pmml.NewApply(pmml.FuncMultiply, f.Ref(), pmml.NewConstant("2", pmml.Integer))
				field, err := enc.CreateDerivedField("double("+f.Name()+")", pmml.Continuous, pmml.Double, expr)
				if err != nil {
					return nil, err
				}
				out[i] = encoder.ContinuousOf(field)
			}
			return out, nil
		},
	}
}

func TestHead(t *testing.T) {
	first := doubler("first")
	est := newEstimator("Regressor", pmml.Regression, map[string]any{"n_features_in_": int64(4)})

	p := NewPipeline("test.Pipeline", []Transformer{first, doubler("second")}, est)
	assert.Same(t, first, Head(p))

	p = NewPipeline("test.Pipeline", nil, est)
	assert.Same(t, est, Head(p))
	assert.Equal(t, 4, p.NumberOfFeatures())

	p = NewPipeline("test.Pipeline", nil, nil)
	assert.Nil(t, Head(p))
	assert.Equal(t, Unknown, p.NumberOfFeatures())
	_, err := p.OpType()
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestEncodeCompositeModel(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a", "b")
	label, err := enc.CreateContinuousLabel("y", pmml.Double)
	require.NoError(t, err)

	// The transformer refines the label field; the estimator must see the refined label
	refine := &fakeTransformer{
		class: "test.Refine",
		n:     Unknown,
		encode: func(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
			return features, enc.ToCategorical("y", []string{"lo", "hi"})
		},
	}
	est := newEstimator("Regressor", pmml.Regression, nil)
	p := NewPipeline("test.Pipeline", []Transformer{doubler("double"), refine}, est)

	model, err := EncodeCompositeModel(p, encoder.NewSchema(label, features), enc)
	require.NoError(t, err)
	require.NotNil(t, model)

	require.NotNil(t, est.got)
	assert.Equal(t, []string{"double(a)", "double(b)"}, encoder.Names(est.got.Features()))
	_, ok := est.got.Label().(encoder.CategoricalLabel)
	assert.True(t, ok, "label should be refreshed from the catalogue")
}

func TestEncodeCompositeModel_ErrorCarriesFailingStep(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a", "b")
	label, err := enc.CreateContinuousLabel("y", pmml.Double)
	require.NoError(t, err)

	narrow := &fakeTransformer{class: "test.Narrow", n: 1}
	p := NewPipeline("test.Pipeline", []Transformer{doubler("double"), narrow}, newEstimator("Regressor", pmml.Regression, nil))

	_, err = EncodeCompositeModel(p, encoder.NewSchema(label, features), enc)
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "test.Narrow", se.Class)
	assert.True(t, errors.Is(err, ErrArity))
}

func TestProjections(t *testing.T) {
	clf := newEstimator("Classifier", pmml.Classification, map[string]any{"classes_": []any{"a", "b"}})
	withEstimator := NewPipeline("test.Pipeline", []Transformer{doubler("double")}, clf)
	transformersOnly := NewPipeline("test.Pipeline", []Transformer{doubler("double")}, nil)

	_, err := AsTransformer(withEstimator)
	assert.True(t, errors.Is(err, ErrEndsWithEstimator))

	_, err = AsEstimator(transformersOnly)
	assert.True(t, errors.Is(err, ErrNoFinalEstimator))

	e, err := AsClassifier(withEstimator)
	require.NoError(t, err)
	assert.Equal(t, pmml.Classification, e.MiningFunction())
	assert.True(t, e.IsSupervised())
	assert.Equal(t, "test.Pipeline", e.ClassName())

	_, err = AsRegressor(withEstimator)
	assert.True(t, errors.Is(err, ErrWrongRole))
	_, err = AsClusterer(withEstimator)
	assert.True(t, errors.Is(err, ErrWrongRole))

	tr, err := AsTransformer(transformersOnly)
	require.NoError(t, err)

	enc := encoder.New()
	out, err := EncodeTransformer(tr, dataFeatures(t, enc, "a"), enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"double(a)"}, encoder.Names(out))
}

func TestCompositeEstimator_NestedModel(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a")

	clf := newEstimator("Classifier", pmml.Classification, map[string]any{"classes_": []any{false, true}})
	inner, err := AsEstimator(NewPipeline("test.Pipeline", []Transformer{doubler("double")}, clf))
	require.NoError(t, err)

	label, err := EncodeLabel(inner, []string{"flag"}, enc)
	require.NoError(t, err)
	cat := label.(encoder.CategoricalLabel)
	assert.Equal(t, pmml.Boolean, cat.DataType())

	model, err := EncodeEstimator(inner, encoder.NewSchema(label, features), enc)
	require.NoError(t, err)
	assert.Equal(t, "Classifier", model.Base().AlgorithmName)
	assert.Equal(t, []string{"double(a)"}, encoder.Names(clf.got.Features()))
}

func TestEncodeRoot(t *testing.T) {
	t.Run("default names", func(t *testing.T) {
		enc := encoder.New()
		est := newEstimator("Regressor", pmml.Regression, map[string]any{"n_features_in_": int64(2)})

		out, err := EncodeRoot(NewPipeline("test.Pipeline", nil, est), RootFields{}, enc)
		require.NoError(t, err)
		assert.Equal(t, []string{"x1", "x2"}, encoder.Names(out.Schema.Features()))
		assert.Equal(t, []string{DefaultTarget}, out.Schema.Label().Names())
		assert.Equal(t, []string{"y", "x1", "x2"}, fieldNames(enc.DataFields()))
	})

	t.Run("feature_names_in_ and targets", func(t *testing.T) {
		enc := encoder.New()
		est := newEstimator("Regressor", pmml.Regression, map[string]any{
			"n_features_in_":    int64(2),
			"feature_names_in_": []any{"width", "height"},
		})

		out, err := EncodeRoot(est, RootFields{Target: []string{"area"}}, enc)
		require.NoError(t, err)
		assert.Equal(t, []string{"width", "height"}, encoder.Names(out.Schema.Features()))
		assert.Equal(t, []string{"area"}, out.Model.Base().Targets)
	})

	t.Run("active fields win", func(t *testing.T) {
		enc := encoder.New()
		est := newEstimator("Clusterer", pmml.Clustering, map[string]any{"feature_names_in_": []any{"a"}})

		out, err := EncodeRoot(est, RootFields{Active: []string{"z"}}, enc)
		require.NoError(t, err)
		assert.Equal(t, []string{"z"}, encoder.Names(out.Schema.Features()))
		assert.Nil(t, out.Schema.Label())
	})

	t.Run("initializer head originates fields", func(t *testing.T) {
		enc := encoder.New()
		init := &fakeInitializer{fakeTransformer: &fakeTransformer{class: "test.Mapper", n: 3}}
		est := newEstimator("Clusterer", pmml.Clustering, nil)

		out, err := EncodeRoot(NewPipeline("test.Pipeline", []Transformer{init}, est), RootFields{}, enc)
		require.NoError(t, err)
		assert.Empty(t, out.Schema.Features())
		assert.Equal(t, []string{"origin"}, encoder.Names(est.got.Features()))
	})

	t.Run("unknown arity", func(t *testing.T) {
		enc := encoder.New()
		est := newEstimator("Clusterer", pmml.Clustering, nil)
		_, err := EncodeRoot(est, RootFields{}, enc)
		assert.True(t, errors.Is(err, ErrUnsupported))
	})

	t.Run("not an estimator", func(t *testing.T) {
		_, err := EncodeRoot(doubler("double"), RootFields{}, encoder.New())
		assert.True(t, errors.Is(err, ErrWrongRole))
	})
}

func fieldNames(fields []encoder.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
