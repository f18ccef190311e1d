package lineage

import (
	"context"
	"errors"
	"testing"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/pmml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// catalogue builds a, b, c, y plus d1 = a + b, d2 = c * 2 and d3 = ln(d1).
func catalogue(t *testing.T) *encoder.Encoder {
	t.Helper()
	enc := encoder.New()
	for _, name := range []string{"a", "b", "c", "y"} {
		_, err := enc.CreateDataField(name, pmml.Continuous, pmml.Double)
		require.NoError(t, err)
	}
	derived := []struct {
		name string
		expr pmml.Expression
	}{
		{"d1", pmml.NewApply(pmml.FuncAdd, pmml.NewFieldRef("a"), pmml.NewFieldRef("b"))},
		{"d2", pmml.NewApply(pmml.FuncMultiply, pmml.NewFieldRef("c"), pmml.NewConstant("2", pmml.Integer))},
		{"d3", pmml.NewApply("ln", pmml.NewFieldRef("d1"))},
	}
	for _, d := range derived {
		_, err := enc.CreateDerivedField(d.name, pmml.Continuous, pmml.Double, d.expr)
		require.NoError(t, err)
	}
	return enc
}

func regression(predictors ...string) *pmml.RegressionModel {
	table := pmml.RegressionTable{}
	for _, p := range predictors {
		table.NumericPredictors = append(table.NumericPredictors, pmml.NumericPredictor{Name: p, Coefficient: 1})
	}
	return &pmml.RegressionModel{
		ModelBase: pmml.ModelBase{FunctionName: pmml.Regression, Targets: []string{"y"}},
		Tables:    []pmml.RegressionTable{table},
	}
}

func TestAnalyze(t *testing.T) {
	enc := catalogue(t)

	usage, err := Analyze(context.Background(), regression("d3"), enc.Fields())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "d1", "d3", "y"}, usage.Fields())
	assert.True(t, usage.Used("a"))
	assert.False(t, usage.Used("c"))
	assert.False(t, usage.Used("d2"))
}

func TestAnalyze_Segmentation(t *testing.T) {
	enc := catalogue(t)
	model := &pmml.MiningModel{
		ModelBase: pmml.ModelBase{FunctionName: pmml.Regression, Targets: []string{"y"}},
		Segmentation: pmml.Segmentation{
			MultipleModelMethod: "selectFirst",
			Segments: []pmml.Segment{
				{ID: "1", Predicate: pmml.NewSimplePredicate("c", "lessThan", "0"), Model: regression("d2")},
				{ID: "2", Predicate: &pmml.True{}, Model: regression("a")},
			},
		},
	}

	usage, err := Analyze(context.Background(), model, enc.Fields())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d2", "y"}, usage.Fields())
}

func TestFacts(t *testing.T) {
	enc := catalogue(t)
	facts := Facts(regression("d1"), enc.Fields())

	var rendered []string
	for _, f := range facts {
		rendered = append(rendered, f.String())
	}
	assert.Equal(t, []string{
		`model_ref("d1").`,
		`model_ref("y").`,
		`field_ref("d1", "a").`,
		`field_ref("d1", "b").`,
		`field_ref("d2", "c").`,
		`field_ref("d3", "d1").`,
	}, rendered)
}

func TestEngine(t *testing.T) {
	t.Run("undeclared predicate", func(t *testing.T) {
		e, err := NewEngine(DefaultConfig())
		require.NoError(t, err)
		err = e.AddFacts([]Fact{{Predicate: "unknown", Args: []string{"x"}}})
		assert.True(t, errors.Is(err, ErrUndeclared))

		_, err = e.Values("unknown")
		assert.True(t, errors.Is(err, ErrUndeclared))
	})

	t.Run("arity", func(t *testing.T) {
		e, err := NewEngine(DefaultConfig())
		require.NoError(t, err)
		err = e.AddFacts([]Fact{{Predicate: PredFieldRef, Args: []string{"x"}}})
		assert.Error(t, err)
	})

	t.Run("fact limit", func(t *testing.T) {
		e, err := NewEngine(Config{FactLimit: 1})
		require.NoError(t, err)
		err = e.AddFacts([]Fact{
			{Predicate: PredModelRef, Args: []string{"a"}},
			{Predicate: PredModelRef, Args: []string{"b"}},
		})
		assert.True(t, errors.Is(err, ErrFactLimit))
	})

	t.Run("cancelled", func(t *testing.T) {
		e, err := NewEngine(DefaultConfig())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.True(t, errors.Is(e.Evaluate(ctx), context.Canceled))
	})

	t.Run("cycle", func(t *testing.T) {
		e, err := NewEngine(DefaultConfig())
		require.NoError(t, err)
		require.NoError(t, e.AddFacts([]Fact{
			{Predicate: PredModelRef, Args: []string{"p"}},
			{Predicate: PredFieldRef, Args: []string{"p", "q"}},
			{Predicate: PredFieldRef, Args: []string{"q", "p"}},
		}))
		require.NoError(t, e.Evaluate(context.Background()))
		used, err := e.Values(PredUsed)
		require.NoError(t, err)
		assert.Equal(t, []string{"p", "q"}, used)
	})
}
