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

func TestSimpleImputer_DecoratesDataFields(t *testing.T) {
	tests := []struct {
		name          string
		attrs         map[string]any
		wantTreatment string
		wantValue     string
		wantMissing   []string
		wantOpType    pmml.OpType
		wantDataType  pmml.DataType
	}{
		{
			name: "mean",
			attrs: map[string]any{
				"statistics_":    list(2.5),
				"missing_values": math.NaN(),
			},
			wantTreatment: MissingAsMean,
			wantValue:     "2.5",
			wantOpType:    pmml.Continuous,
			wantDataType:  pmml.Double,
		},
		{
			name: "most frequent",
			attrs: map[string]any{
				"strategy":       "most_frequent",
				"statistics_":    list("blue"),
				"missing_values": nil,
			},
			wantTreatment: MissingAsMode,
			wantValue:     "blue",
			wantOpType:    pmml.Categorical,
			wantDataType:  pmml.String,
		},
		{
			name: "constant placeholder",
			attrs: map[string]any{
				"strategy":       "constant",
				"statistics_":    list(int64(0)),
				"missing_values": int64(-1),
			},
			wantTreatment: MissingAsValue,
			wantValue:     "0",
			wantMissing:   []string{"-1"},
			wantOpType:    pmml.Continuous,
			wantDataType:  pmml.Integer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := encoder.New()
			imputer := transformer(t, "sklearn.impute._base", "SimpleImputer", tt.attrs)

			features := inputs(t, enc, "x")
			out, err := step.EncodeTransformer(imputer, features, enc)
			require.NoError(t, err)
			assert.Equal(t, []string{"x"}, encoder.Names(out))
			assert.Empty(t, enc.DerivedFields())

			field, _ := enc.Field("x")
			assert.Equal(t, tt.wantTreatment, field.Decoration.MissingValueTreatment)
			assert.Equal(t, tt.wantValue, field.Decoration.MissingValueReplacement)
			assert.Equal(t, tt.wantMissing, field.Decoration.MissingValues)
			assert.Equal(t, tt.wantOpType, field.OpType)
			assert.Equal(t, tt.wantDataType, field.DataType)
		})
	}
}

func TestSimpleImputer_DerivesOverDerivedFields(t *testing.T) {
	enc := encoder.New()
	scaler := transformer(t, "sklearn.preprocessing", "StandardScaler", map[string]any{
		"mean_":  list(1.0),
		"scale_": list(1.0),
	})
	imputer := transformer(t, "sklearn.impute", "SimpleImputer", map[string]any{
		"statistics_": list(0.5),
	})

	scaled, err := step.EncodeTransformer(scaler, inputs(t, enc, "a"), enc)
	require.NoError(t, err)
	out, err := step.EncodeTransformer(imputer, scaled, enc)
	require.NoError(t, err)

	assert.Equal(t, []string{"imputer(standardScaler(a))"}, encoder.Names(out))
	assert.Equal(t, pmml.Continuous, out[0].OpType())
	assert.Equal(t,
		`if(isMissing(standardScaler(a)), "0.5":double, standardScaler(a))`,
		derivedFormula(t, enc, "imputer(standardScaler(a))"))
}

func TestSimpleImputer_PlaceholderOverDerivedField(t *testing.T) {
	enc := encoder.New()
	scaler := transformer(t, "sklearn.preprocessing", "MinMaxScaler", map[string]any{
		"scale_": list(2.0),
		"min_":   list(0.0),
	})
	imputer := transformer(t, "sklearn.impute", "SimpleImputer", map[string]any{
		"strategy":       "constant",
		"statistics_":    list(0.0),
		"missing_values": -999.0,
	})

	scaled, err := step.EncodeTransformer(scaler, inputs(t, enc, "a"), enc)
	require.NoError(t, err)
	out, err := step.EncodeTransformer(imputer, scaled, enc)
	require.NoError(t, err)
	assert.Equal(t,
		`if(equal(minMaxScaler(a), "-999.0":double), "0.0":double, minMaxScaler(a))`,
		derivedFormula(t, enc, out[0].Name()))
}

func TestSimpleImputer_Unsupported(t *testing.T) {
	_, err := step.Default().Build(node.New("sklearn.impute", "SimpleImputer", map[string]any{
		"statistics_":   list(1.0),
		"add_indicator": true,
	}))
	assert.True(t, errors.Is(err, step.ErrUnsupported))

	_, err = step.Default().Build(node.New("sklearn.impute", "SimpleImputer", map[string]any{
		"strategy": "knn",
	}))
	assert.True(t, errors.Is(err, node.ErrUnsupportedValue))
}
