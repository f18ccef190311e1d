package step

import (
	"errors"
	"testing"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/pmml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFeatures(t *testing.T) {
	enc := encoder.New()
	features := dataFeatures(t, enc, "a", "b", "c")

	tests := []struct {
		name    string
		columns []any
		want    []string
	}{
		{"by name", []any{"c", "a"}, []string{"c", "a"}},
		{"by index", []any{int64(1), 2}, []string{"b", "c"}},
		{"mask", []any{true, false, true}, []string{"a", "c"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := SelectFeatures(tt.columns, features, enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, encoder.Names(out))
		})
	}

	for _, columns := range [][]any{{"z"}, {int64(3)}, {-1}, {1.5}} {
		_, err := SelectFeatures(columns, features, enc)
		assert.True(t, errors.Is(err, ErrUnknownColumn), "columns %v: %v", columns, err)
	}
}

func TestSelectFeatures_Originates(t *testing.T) {
	enc := encoder.New()

	out, err := SelectFeatures([]any{"age", int64(2)}, nil, enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "x3"}, encoder.Names(out))

	f, ok := enc.Field("x3")
	require.True(t, ok)
	assert.Equal(t, pmml.Continuous, f.OpType)
	assert.Equal(t, pmml.Double, f.DataType)

	// Selecting the same column again reuses the data field
	again, err := SelectFeatures([]any{"age"}, nil, enc)
	require.NoError(t, err)
	assert.Equal(t, out[:1], again)
	assert.Len(t, enc.DataFields(), 2)
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "standardScaler(x1)", FieldName("standardScaler", "x1"))
	assert.Equal(t, "eval(X[0] + X[1])", FieldName("eval", "X[0] + X[1]"))
	assert.Equal(t, "f(a, b)", FieldName("f", "a", "b"))
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []any{"a"}, Columns("a"))
	assert.Equal(t, []any{"a", "b"}, Columns([]any{"a", "b"}))
}
