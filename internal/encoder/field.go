package encoder

import (
	"slices"

	"skl2pmml/internal/pmml"
)

// Kind tells input data fields from derived fields.
type Kind int

const (
	DataKind Kind = iota
	DerivedKind
)

func (k Kind) String() string {
	if k == DerivedKind {
		return "derived"
	}
	return "data"
}

// Field is a catalogue entry. Values returned by the Encoder are copies.
type Field struct {
	Name     string
	Kind     Kind
	OpType   pmml.OpType
	DataType pmml.DataType

	// Values is the closed category domain; nil means open.
	Values []string

	// Frozen is set once a step commits the field's type.
	Frozen bool

	// Expression defines a derived field.
	Expression pmml.Expression

	// Decoration holds domain annotations of a data field.
	Decoration Decoration
}

// Decoration carries the value-space annotations a domain step attaches to a data field.
type Decoration struct {
	DisplayName             string
	Intervals               []pmml.Interval
	InvalidValues           []string
	MissingValues           []string
	MissingValueTreatment   string
	MissingValueReplacement string
	InvalidValueTreatment   string
	InvalidValueReplacement string

	// OutlierTreatment applies to values outside [LowValue, HighValue].
	OutlierTreatment string
	LowValue         string
	HighValue        string
}

// IsDerived reports whether the field is defined by an expression.
func (f Field) IsDerived() bool {
	return f.Kind == DerivedKind
}

func (f *Field) clone() Field {
	c := *f
	c.Values = slices.Clone(f.Values)
	c.Decoration.Intervals = slices.Clone(f.Decoration.Intervals)
	c.Decoration.InvalidValues = slices.Clone(f.Decoration.InvalidValues)
	c.Decoration.MissingValues = slices.Clone(f.Decoration.MissingValues)
	return c
}
