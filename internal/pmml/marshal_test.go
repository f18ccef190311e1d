package pmml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	lo, hi := 0.0, 10.0
	imp := 0.75
	doc := NewDocument()
	doc.Header = Header{Copyright: "ACME", Application: Application{Name: "skl2pmml", Version: "1.0"}}
	doc.DataDictionary = DataDictionary{
		NumberOfFields: 2,
		Fields: []DataField{
			{Name: "y", OpType: Continuous, DataType: Double},
			{Name: "x1", OpType: Continuous, DataType: Double, Intervals: []Interval{{Closure: "closedClosed", LeftMargin: &lo, RightMargin: &hi}}},
		},
	}
	doc.TransformationDictionary = &TransformationDictionary{DerivedFields: []DerivedField{{
		Name:       "eval(X[0] + 1)",
		OpType:     Continuous,
		DataType:   Double,
		Expression: NewApply(FuncAdd, NewFieldRef("x1"), NewConstant("1", Integer)),
	}}}
	model := &RegressionModel{
		ModelBase: ModelBase{
			FunctionName: Regression,
			MiningSchema: MiningSchema{Fields: []MiningField{
				{Name: "y", UsageType: Target},
				{Name: "x1", Importance: &imp},
			}},
		},
		Tables: []RegressionTable{{Intercept: 0.5, NumericPredictors: []NumericPredictor{{Name: "eval(X[0] + 1)", Coefficient: 2}}}},
	}
	doc.Model = model
	return doc
}

func TestMarshal(t *testing.T) {
	out, err := Marshal(sampleDocument())
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s, `<PMML xmlns="http://www.dmg.org/PMML-4_4" version="4.4">`)
	assert.Contains(t, s, `<Header copyright="ACME">`)
	assert.Contains(t, s, `<Interval closure="closedClosed" leftMargin="0" rightMargin="10">`)
	assert.Contains(t, s, `<DerivedField name="eval(X[0] + 1)" optype="continuous" dataType="double">`)
	assert.Contains(t, s, `<Apply function="+">`)
	assert.Contains(t, s, `<FieldRef field="x1">`)
	assert.Contains(t, s, `<Constant dataType="integer">1</Constant>`)
	assert.Contains(t, s, `<RegressionModel functionName="regression">`)
	assert.Contains(t, s, `<MiningField name="y" usageType="target">`)
	assert.Contains(t, s, `<MiningField name="x1" importance="0.75">`)
	assert.Contains(t, s, `<NumericPredictor name="eval(X[0] + 1)" coefficient="2">`)
	assert.NotContains(t, s, "Targets")
}

func TestMarshal_Deterministic(t *testing.T) {
	a, err := Marshal(sampleDocument())
	require.NoError(t, err)
	b, err := Marshal(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestMarshal_RequiresModel(t *testing.T) {
	_, err := Marshal(NewDocument())
	assert.Error(t, err)
}

func TestMarshal_SegmentationAndSets(t *testing.T) {
	doc := sampleDocument()
	inner := doc.Model.(*RegressionModel)
	doc.Model = &MiningModel{
		ModelBase: ModelBase{FunctionName: Regression},
		Segmentation: Segmentation{
			MultipleModelMethod: "selectFirst",
			Segments: []Segment{
				{ID: "1", Predicate: NewSimpleSetPredicate("x1", SetIsIn, []string{"1", "2"}, ArrayInt), Model: inner},
				{ID: "2", Predicate: &True{}, Model: inner},
			},
		},
	}
	out, err := Marshal(doc)
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, `<Segmentation multipleModelMethod="selectFirst">`)
	assert.Contains(t, s, `<SimpleSetPredicate field="x1" booleanOperator="isIn">`)
	assert.Contains(t, s, `<Array n="2" type="int">1 2</Array>`)
	assert.Contains(t, s, `<True></True>`)
	assert.Equal(t, 2, strings.Count(s, "<RegressionModel"))
}

func TestArrayContent(t *testing.T) {
	a := Array{N: 3, Type: ArrayString, Values: []string{"a", "b c", `d"e`}}
	assert.Equal(t, `a "b c" "d\"e"`, a.Content())
}
