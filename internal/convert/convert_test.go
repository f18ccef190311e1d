package convert

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"skl2pmml/internal/config"
	"skl2pmml/internal/errkind"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func load(t *testing.T, name string) *node.Node {
	t.Helper()
	root, err := node.DecodeFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return root
}

func parse(t *testing.T, doc string) *node.Node {
	t.Helper()
	root, err := node.DecodeNode(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func convert(t *testing.T, cfg *config.Config, root *node.Node) *Result {
	t.Helper()
	res, err := New(cfg, nil, nil).Convert(context.Background(), root)
	require.NoError(t, err)
	return res
}

func dataNames(doc *pmml.Document) []string {
	var out []string
	for _, f := range doc.DataDictionary.Fields {
		out = append(out, f.Name)
	}
	return out
}

func derivedNames(doc *pmml.Document) []string {
	if doc.TransformationDictionary == nil {
		return nil
	}
	var out []string
	for _, f := range doc.TransformationDictionary.DerivedFields {
		out = append(out, f.Name)
	}
	return out
}

func miningNames(m pmml.Model) []string {
	var out []string
	for _, f := range m.Base().MiningSchema.Fields {
		out = append(out, f.Name)
	}
	return out
}

func TestConvert_PrunesUnusedFields(t *testing.T) {
	t.Parallel()

	res := convert(t, nil, load(t, "house.yaml"))
	doc := res.Document

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"price", "width", "height"}, dataNames(doc))
	assert.Equal(t, 3, doc.DataDictionary.NumberOfFields)
	assert.Equal(t, []string{"standardScaler(width)", "standardScaler(height)"}, derivedNames(doc))
	assert.Equal(t, []string{"price", "width", "height"}, miningNames(doc.Model))

	require.NotNil(t, res.Usage)
	assert.False(t, res.Usage.Used("depth"))
	assert.False(t, res.Usage.Used("standardScaler(depth)"))

	// The catalogue still knows the pruned fields.
	var all []string
	for _, f := range res.Fields {
		all = append(all, f.Name)
	}
	assert.Contains(t, all, "depth")
	assert.Contains(t, all, "standardScaler(depth)")
}

func TestConvert_DecoratedMiningFields(t *testing.T) {
	t.Parallel()

	doc := convert(t, nil, load(t, "house.yaml")).Document
	schema := doc.Model.Base().MiningSchema.Fields
	require.Len(t, schema, 3)

	assert.Equal(t, pmml.Target, schema[0].UsageType)
	width := schema[1]
	assert.Equal(t, "asMean", width.MissingValueTreatment)
	assert.Equal(t, "asMissing", width.InvalidValueTreatment)

	field := doc.DataDictionary.Fields[1]
	require.Len(t, field.Intervals, 1)
	assert.Equal(t, "closedClosed", field.Intervals[0].Closure)
	assert.Equal(t, 0.0, *field.Intervals[0].LeftMargin)
	assert.Equal(t, 10.0, *field.Intervals[0].RightMargin)
}

func TestConvert_KeepsEveryFieldWithoutPruning(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Conversion.PruneUnusedFields = false
	res := convert(t, cfg, load(t, "house.yaml"))

	assert.Nil(t, res.Usage)
	assert.Equal(t, []string{"price", "width", "height", "depth"}, dataNames(res.Document))
	assert.Equal(t,
		[]string{"standardScaler(width)", "standardScaler(height)", "standardScaler(depth)"},
		derivedNames(res.Document))
}

func TestConvert_Header(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Header.Copyright = "Configured"
	cfg.Header.Description = "Configured description"

	got := convert(t, cfg, load(t, "house.yaml")).Document.Header
	want := pmml.Header{
		Copyright:    "ACME Realty",
		Description:  "House price regression",
		ModelVersion: "3",
		Application:  pmml.Application{Name: "skl2pmml", Version: "0.9.0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	plain := convert(t, cfg, parse(t, linearPipeline)).Document.Header
	assert.Equal(t, "Configured", plain.Copyright)
	assert.Equal(t, "Configured description", plain.Description)
	assert.Empty(t, plain.ModelVersion)
}

func TestConvert_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := pmml.Marshal(convert(t, nil, load(t, "house.yaml")).Document)
	require.NoError(t, err)
	second, err := pmml.Marshal(convert(t, nil, load(t, "house.yaml")).Document)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

const linearPipeline = `
__class__: sklearn2pmml.pipeline.PMMLPipeline
active_fields: [a, b]
target_fields: [y]
pmml_feature_importances_: [0.75, 0.25]
steps:
  - __tuple__:
      - regressor
      - __class__: sklearn.linear_model.LinearRegression
        coef_: [1.0, 2.0]
        intercept_: 0.0
`

func TestConvert_FeatureImportances(t *testing.T) {
	t.Parallel()

	importances := func(cfg *config.Config) map[string]*float64 {
		out := make(map[string]*float64)
		doc := convert(t, cfg, parse(t, linearPipeline)).Document
		for _, f := range doc.Model.Base().MiningSchema.Fields {
			out[f.Name] = f.Importance
		}
		return out
	}

	on := importances(nil)
	require.NotNil(t, on["a"])
	require.NotNil(t, on["b"])
	assert.Equal(t, 0.75, *on["a"])
	assert.Equal(t, 0.25, *on["b"])
	assert.Nil(t, on["y"])

	cfg := config.DefaultConfig()
	cfg.Conversion.FeatureImportances = false
	for name, v := range importances(cfg) {
		assert.Nil(t, v, name)
	}
}

func TestConvert_SegmentMiningSchemas(t *testing.T) {
	t.Parallel()

	doc := convert(t, nil, load(t, "segments.yaml")).Document
	mm, ok := doc.Model.(*pmml.MiningModel)
	require.True(t, ok, "expected a mining model, got %T", doc.Model)

	assert.Equal(t, []string{"y", "x1", "x2"}, dataNames(doc))
	assert.Equal(t, []string{"y", "x1", "x2"}, miningNames(mm))

	segments := mm.Segmentation.Segments
	require.Len(t, segments, 2)
	assert.Equal(t, []string{"y", "x1"}, miningNames(segments[0].Model))
	assert.Equal(t, []string{"y", "x1", "x2"}, miningNames(segments[1].Model))
	assert.Equal(t, []string{"eval(X[0] * X[1])"}, derivedNames(doc))
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		kind errkind.Kind
	}{
		{
			name: "unknown class",
			doc:  "__class__: sklearn.svm.SVC\n",
			kind: errkind.Shape,
		},
		{
			name: "coefficient arity",
			doc: `
__class__: sklearn2pmml.pipeline.PMMLPipeline
active_fields: [a, b]
steps:
  - __tuple__:
      - regressor
      - __class__: sklearn.linear_model.LinearRegression
        coef_: [1.0, 2.0, 3.0]
        intercept_: 0.0
`,
			kind: errkind.Arity,
		},
		{
			name: "continuous domain then one-hot",
			doc: `
__class__: sklearn2pmml.pipeline.PMMLPipeline
active_fields: [x]
steps:
  - __tuple__:
      - domain
      - __class__: sklearn2pmml.decoration.ContinuousDomain
        data_min_: [0.0]
        data_max_: [2.0]
  - __tuple__:
      - ohe
      - __class__: sklearn.preprocessing.OneHotEncoder
        categories_: [[0, 1, 2]]
  - __tuple__:
      - regressor
      - __class__: sklearn.linear_model.LinearRegression
        coef_: [1.0, 2.0, 3.0]
        intercept_: 0.0
`,
			kind: errkind.Consistency,
		},
		{
			name: "transformer root",
			doc: `
__class__: sklearn.preprocessing.StandardScaler
mean_: [0.0]
scale_: [2.0]
`,
			kind: errkind.Shape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(nil, nil, nil).Convert(context.Background(), parse(t, tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.kind, errkind.Classify(err), "error: %v", err)
		})
	}
}

func TestConvert_NilRoot(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil, nil).Convert(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNoRoot))
}

func TestConvert_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, nil, nil).Convert(ctx, load(t, "house.yaml"))
	assert.True(t, errors.Is(err, context.Canceled))
}
