package pmml

import (
	"encoding/xml"
)

// Expression is the right-hand side of a DerivedField.
type Expression interface {
	isExpression()
}

// Constant is a typed literal. Value holds the literal's text.
type Constant struct {
	XMLName  xml.Name `xml:"Constant"`
	DataType DataType `xml:"dataType,attr,omitempty"`
	Missing  bool     `xml:"missing,attr,omitempty"`
	Value    string   `xml:",chardata"`
}

// FieldRef references a data or derived field.
type FieldRef struct {
	XMLName xml.Name `xml:"FieldRef"`
	Field   string   `xml:"field,attr"`
}

// Apply applies a built-in function to its operands.
type Apply struct {
	XMLName               xml.Name     `xml:"Apply"`
	Function              string       `xml:"function,attr"`
	MapMissingTo          string       `xml:"mapMissingTo,attr,omitempty"`
	DefaultValue          string       `xml:"defaultValue,attr,omitempty"`
	InvalidValueTreatment string       `xml:"invalidValueTreatment,attr,omitempty"`
	Operands              []Expression
}

// NormDiscrete is the 0/1 indicator of one category of a field.
type NormDiscrete struct {
	XMLName xml.Name `xml:"NormDiscrete"`
	Field   string   `xml:"field,attr"`
	Value   string   `xml:"value,attr"`
}

// MapValues looks a field's value up in an inline two-column table.
type MapValues struct {
	XMLName          xml.Name          `xml:"MapValues"`
	OutputColumn     string            `xml:"outputColumn,attr"`
	DataType         DataType          `xml:"dataType,attr,omitempty"`
	MapMissingTo     string            `xml:"mapMissingTo,attr,omitempty"`
	DefaultValue     string            `xml:"defaultValue,attr,omitempty"`
	FieldColumnPairs []FieldColumnPair `xml:"FieldColumnPair"`
	InlineTable      InlineTable       `xml:"InlineTable"`
}

// FieldColumnPair binds a field to a table column.
type FieldColumnPair struct {
	Field  string `xml:"field,attr"`
	Column string `xml:"column,attr"`
}

// InlineTable is the lookup table of a MapValues.
type InlineTable struct {
	Rows []Row `xml:"row"`
}

// Row is one input/output pair of an InlineTable.
type Row struct {
	Input  string `xml:"input"`
	Output string `xml:"output"`
}

func (*Constant) isExpression()     {}
func (*FieldRef) isExpression()     {}
func (*Apply) isExpression()        {}
func (*NormDiscrete) isExpression() {}
func (*MapValues) isExpression()    {}

// NewConstant creates a typed constant.
func NewConstant(value string, dataType DataType) *Constant {
	return &Constant{Value: value, DataType: dataType}
}

// NewFieldRef creates a field reference.
func NewFieldRef(field string) *FieldRef {
	return &FieldRef{Field: field}
}

// NewApply creates an Apply of function over operands.
func NewApply(function string, operands ...Expression) *Apply {
	return &Apply{Function: function, Operands: operands}
}
