package sklearn

import (
	"testing"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"

	"github.com/stretchr/testify/require"
)

// build constructs a step through the default registry.
func build(t *testing.T, module, class string, attrs map[string]any) step.Step {
	t.Helper()
	s, err := step.Default().Build(node.New(module, class, attrs))
	require.NoError(t, err)
	return s
}

func transformer(t *testing.T, module, class string, attrs map[string]any) step.Transformer {
	t.Helper()
	tr, ok := build(t, module, class, attrs).(step.Transformer)
	require.True(t, ok, "%s.%s is not a transformer", module, class)
	return tr
}

func estimator(t *testing.T, module, class string, attrs map[string]any) step.Estimator {
	t.Helper()
	e, ok := build(t, module, class, attrs).(step.Estimator)
	require.True(t, ok, "%s.%s is not an estimator", module, class)
	return e
}

// inputs creates continuous double data fields.
func inputs(t *testing.T, enc *encoder.Encoder, names ...string) []encoder.Feature {
	t.Helper()
	features := make([]encoder.Feature, len(names))
	for i, name := range names {
		f, err := step.WildcardFeature(name, enc)
		require.NoError(t, err)
		features[i] = f
	}
	return features
}

func derivedFormula(t *testing.T, enc *encoder.Encoder, name string) string {
	t.Helper()
	f, ok := enc.Field(name)
	require.True(t, ok, "field %s is not catalogued", name)
	require.True(t, f.IsDerived(), "field %s is not derived", name)
	return pmml.Format(f.Expression)
}

func list(values ...any) []any {
	return values
}
