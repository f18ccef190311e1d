package node

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFile_Pipeline(t *testing.T) {
	root, err := DecodeFile(filepath.Join("testdata", "pipeline.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sklearn2pmml.pipeline", root.Module)
	assert.Equal(t, "PMMLPipeline", root.Class)
	assert.False(t, root.Has("header"))

	active, err := root.GetStringList("active_fields")
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2"}, active)

	steps, err := root.GetTupleList("steps", 2)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	scaler, ok := steps[0][1].(*Node)
	require.True(t, ok)
	assert.Equal(t, "sklearn.preprocessing._data", scaler.Module)

	scale, err := scaler.GetNumberList("scale_")
	require.NoError(t, err)
	assert.Equal(t, 0.5, scale[0])
	assert.True(t, math.IsNaN(scale[1]))

	shared, err := root.GetNode("shared")
	require.NoError(t, err)
	assert.Same(t, scaler, shared, "aliases must resolve to the same object")

	reg := steps[1][1].(*Node)
	coef, err := reg.GetMatrix("coef_")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3, -1.5}}, coef)

	n, err := reg.GetInt("n_features_in_")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDecode_JSON(t *testing.T) {
	v, err := Decode(strings.NewReader(`{"__class__": "sklearn.dummy.DummyRegressor", "constant_": [[1.5]], "strategy": "mean"}`))
	require.NoError(t, err)

	n, ok := v.(*Node)
	require.True(t, ok)
	assert.Equal(t, "DummyRegressor", n.Class)
	assert.Equal(t, []string{"constant_", "strategy"}, n.Keys())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"shape mismatch", "__ndarray__: {shape: [3], data: [1, 2]}"},
		{"tuple of scalar", "__tuple__: 5"},
		{"unknown reserved", "a: {__class__: x.Y, __dict__: {}}"},
		{"empty class", "__class__: ''"},
		{"syntax", "a: [1, 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDocument), "got %v", err)
		})
	}
}

func TestDecodeNode_RejectsScalarRoot(t *testing.T) {
	_, err := DecodeNode(strings.NewReader("42"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root is int")
}

func TestParse(t *testing.T) {
	module, class := Parse("sklearn.preprocessing._data.StandardScaler")
	assert.Equal(t, "sklearn.preprocessing._data", module)
	assert.Equal(t, "StandardScaler", class)

	module, class = Parse("Bare")
	assert.Empty(t, module)
	assert.Equal(t, "Bare", class)
}
