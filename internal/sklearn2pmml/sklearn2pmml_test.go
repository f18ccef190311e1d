package sklearn2pmml

import (
	"testing"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"

	_ "skl2pmml/internal/sklearn"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

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

func linearRegression(coefs ...any) *node.Node {
	return node.New("sklearn.linear_model", "LinearRegression", map[string]any{
		"coef_":      node.NewArray(coefs...),
		"intercept_": 0.5,
	})
}

func list(values ...any) []any {
	return values
}
