package sklearn

import (
	"errors"
	"math"
	"testing"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScaler(t *testing.T) {
	enc := encoder.New()
	scaler := transformer(t, "sklearn.preprocessing._data", "StandardScaler", map[string]any{
		"mean_":  node.NewArray(1.0, 0.0),
		"scale_": node.NewArray(2.0, 1.0),
	})
	assert.Equal(t, 2, scaler.NumberOfFeatures())

	out, err := step.EncodeTransformer(scaler, inputs(t, enc, "a", "b"), enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"standardScaler(a)", "b"}, encoder.Names(out))
	assert.Equal(t, `/(-(a, "1.0":double), "2.0":double)`, derivedFormula(t, enc, "standardScaler(a)"))
	assert.Equal(t, pmml.Continuous, out[0].OpType())

	_, err = step.EncodeTransformer(scaler, inputs(t, enc, "c", "d", "e"), enc)
	assert.True(t, errors.Is(err, step.ErrArity))
}

func TestStandardScaler_WithoutMean(t *testing.T) {
	enc := encoder.New()
	scaler := transformer(t, "sklearn.preprocessing", "StandardScaler", map[string]any{
		"with_mean": false,
		"mean_":     nil,
		"scale_":    list(4.0),
	})

	out, err := step.EncodeTransformer(scaler, inputs(t, enc, "a"), enc)
	require.NoError(t, err)
	assert.Equal(t, `/(a, "4.0":double)`, derivedFormula(t, enc, out[0].Name()))
}

func TestMinMaxScaler(t *testing.T) {
	enc := encoder.New()
	scaler := transformer(t, "sklearn.preprocessing", "MinMaxScaler", map[string]any{
		"scale_": list(0.5, 1.0),
		"min_":   list(-1.0, 0.0),
	})

	out, err := step.EncodeTransformer(scaler, inputs(t, enc, "a", "b"), enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"minMaxScaler(a)", "b"}, encoder.Names(out))
	assert.Equal(t, `+(*(a, "0.5":double), "-1.0":double)`, derivedFormula(t, enc, "minMaxScaler(a)"))
}

func TestOneHotEncoder(t *testing.T) {
	tests := []struct {
		name       string
		attrs      map[string]any
		wantValues []string
		wantType   pmml.DataType
		wantDomain []string
		treatment  string
	}{
		{
			name:       "strings",
			attrs:      map[string]any{"categories_": list(node.NewArray("green", "red"))},
			wantValues: []string{"green", "red"},
			wantType:   pmml.String,
			wantDomain: []string{"green", "red"},
			treatment:  InvalidReturnInvalid,
		},
		{
			name: "integers with ignore",
			attrs: map[string]any{
				"categories_":    list(node.NewArray(int64(1), int64(2), int64(3))),
				"handle_unknown": "ignore",
			},
			wantValues: []string{"1", "2", "3"},
			wantType:   pmml.Integer,
			wantDomain: []string{"1", "2", "3"},
			treatment:  InvalidAsIs,
		},
		{
			name: "dropped first category",
			attrs: map[string]any{
				"categories_": list(list("a", "b", "c")),
				"drop_idx_":   list(int64(0)),
			},
			wantValues: []string{"b", "c"},
			wantType:   pmml.String,
			wantDomain: []string{"a", "b", "c"},
			treatment:  InvalidReturnInvalid,
		},
		{
			name:       "missing value category",
			attrs:      map[string]any{"categories_": list(list("a", "b", math.NaN()))},
			wantValues: []string{"a", "b"},
			wantType:   pmml.String,
			wantDomain: []string{"a", "b"},
			treatment:  InvalidReturnInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := encoder.New()
			ohe := transformer(t, "sklearn.preprocessing._encoders", "OneHotEncoder", tt.attrs)

			out, err := step.EncodeTransformer(ohe, inputs(t, enc, "color"), enc)
			require.NoError(t, err)

			var values []string
			for _, f := range out {
				bf, ok := f.(encoder.BinaryFeature)
				require.True(t, ok)
				assert.Equal(t, "color", bf.Name())
				assert.Equal(t, tt.wantType, bf.DataType())
				values = append(values, bf.Value())
			}
			assert.Equal(t, tt.wantValues, values)

			field, ok := enc.Field("color")
			require.True(t, ok)
			assert.Equal(t, pmml.Categorical, field.OpType)
			assert.Equal(t, tt.wantType, field.DataType)
			assert.Equal(t, tt.wantDomain, field.Values)
			assert.Equal(t, tt.treatment, field.Decoration.InvalidValueTreatment)
		})
	}
}

func TestOneHotEncoder_ConflictingDomain(t *testing.T) {
	enc := encoder.New()
	features := inputs(t, enc, "color")
	require.NoError(t, enc.ToCategorical("color", []string{"blue"}))

	ohe := transformer(t, "sklearn.preprocessing", "OneHotEncoder", map[string]any{
		"categories_": list(list("green", "red")),
	})
	_, err := step.EncodeTransformer(ohe, features, enc)
	assert.True(t, errors.Is(err, encoder.ErrConflictingDomain))
}

func TestOrdinalEncoder(t *testing.T) {
	enc := encoder.New()
	ord := transformer(t, "sklearn.preprocessing", "OrdinalEncoder", map[string]any{
		"categories_":    list(list("lo", "hi")),
		"handle_unknown": "use_encoded_value",
		"unknown_value":  int64(-1),
	})

	out, err := step.EncodeTransformer(ord, inputs(t, enc, "level"), enc)
	require.NoError(t, err)
	require.Len(t, out, 1)

	idx, ok := out[0].(encoder.IndexFeature)
	require.True(t, ok)
	assert.Equal(t, "ordinalEncoder(level)", idx.Name())
	assert.Equal(t, pmml.Integer, idx.DataType())
	assert.Equal(t, []string{"lo", "hi"}, idx.Values())

	field, ok := enc.Field("ordinalEncoder(level)")
	require.True(t, ok)
	mv, ok := field.Expression.(*pmml.MapValues)
	require.True(t, ok)
	assert.Equal(t, "-1", mv.DefaultValue)
	assert.Equal(t, `mapValues(level; "lo"->"0", "hi"->"1"):integer`, pmml.Format(mv))

	level, _ := enc.Field("level")
	assert.Equal(t, InvalidAsIs, level.Decoration.InvalidValueTreatment)
}

func TestOrdinalEncoder_NaNUnknownValue(t *testing.T) {
	enc := encoder.New()
	ord := transformer(t, "sklearn.preprocessing", "OrdinalEncoder", map[string]any{
		"categories_":    list(list(1.5, 2.5)),
		"handle_unknown": "use_encoded_value",
		"unknown_value":  math.NaN(),
	})

	out, err := step.EncodeTransformer(ord, inputs(t, enc, "x"), enc)
	require.NoError(t, err)

	field, _ := enc.Field(out[0].Name())
	mv := field.Expression.(*pmml.MapValues)
	assert.Empty(t, mv.DefaultValue)
	assert.Equal(t, `mapValues(x; "1.5"->"0", "2.5"->"1"):integer`, pmml.Format(mv))
}

func TestFunctionTransformer(t *testing.T) {
	enc := encoder.New()
	identity := transformer(t, "sklearn.preprocessing", "FunctionTransformer", map[string]any{"func": nil})

	features := inputs(t, enc, "a", "b")
	out, err := step.EncodeTransformer(identity, features, enc)
	require.NoError(t, err)
	assert.Equal(t, features, out)

	_, err = step.Default().Build(node.New("sklearn.preprocessing", "FunctionTransformer", map[string]any{
		"func": node.New("numpy", "log", nil),
	}))
	assert.True(t, errors.Is(err, step.ErrUnsupported))
}
