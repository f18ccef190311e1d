package pmml

import (
	"encoding/xml"
)

// Namespace and version of emitted documents.
const (
	Namespace = "http://www.dmg.org/PMML-4_4"
	Version   = "4.4"
)

// Document is a complete PMML document.
type Document struct {
	XMLName                  xml.Name                  `xml:"PMML"`
	Xmlns                    string                    `xml:"xmlns,attr"`
	Version                  string                    `xml:"version,attr"`
	Header                   Header                    `xml:"Header"`
	DataDictionary           DataDictionary            `xml:"DataDictionary"`
	TransformationDictionary *TransformationDictionary `xml:"TransformationDictionary,omitempty"`
	Model                    Model
}

// Header identifies the producing application.
type Header struct {
	Copyright    string      `xml:"copyright,attr,omitempty"`
	Description  string      `xml:"description,attr,omitempty"`
	ModelVersion string      `xml:"modelVersion,attr,omitempty"`
	Application  Application `xml:"Application"`
}

// Application names the producer.
type Application struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr,omitempty"`
}

// DataDictionary declares the input and target fields.
type DataDictionary struct {
	NumberOfFields int         `xml:"numberOfFields,attr"`
	Fields         []DataField `xml:"DataField"`
}

// DataField is one input or target column.
type DataField struct {
	Name        string     `xml:"name,attr"`
	DisplayName string     `xml:"displayName,attr,omitempty"`
	OpType      OpType     `xml:"optype,attr"`
	DataType    DataType   `xml:"dataType,attr"`
	Intervals   []Interval `xml:"Interval"`
	Values      []Value    `xml:"Value"`
}

// Interval bounds a continuous field's valid range.
type Interval struct {
	Closure     string   `xml:"closure,attr"`
	LeftMargin  *float64 `xml:"leftMargin,attr,omitempty"`
	RightMargin *float64 `xml:"rightMargin,attr,omitempty"`
}

// Value is one valid, invalid or missing value of a field.
type Value struct {
	Value    string `xml:"value,attr"`
	Property string `xml:"property,attr,omitempty"`
}

// TransformationDictionary holds the derived fields shared by all models.
type TransformationDictionary struct {
	DerivedFields []DerivedField `xml:"DerivedField"`
}

// DerivedField is a field computed by an expression.
type DerivedField struct {
	Name       string   `xml:"name,attr"`
	OpType     OpType   `xml:"optype,attr"`
	DataType   DataType `xml:"dataType,attr"`
	Values     []Value  `xml:"Value"`
	Expression Expression
}

// NewDocument creates an empty document with the current namespace and version.
func NewDocument() *Document {
	return &Document{Xmlns: Namespace, Version: Version}
}
