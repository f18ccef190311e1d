package pmml

import (
	"encoding/xml"
)

// Predicate is a boolean guard over fields.
type Predicate interface {
	isPredicate()
}

// SimplePredicate compares a field against a constant value.
type SimplePredicate struct {
	XMLName  xml.Name `xml:"SimplePredicate"`
	Field    string   `xml:"field,attr"`
	Operator string   `xml:"operator,attr"`
	Value    string   `xml:"value,attr,omitempty"`
}

// CompoundPredicate combines predicates with a boolean operator.
type CompoundPredicate struct {
	XMLName         xml.Name    `xml:"CompoundPredicate"`
	BooleanOperator string      `xml:"booleanOperator,attr"`
	Predicates      []Predicate
}

// SimpleSetPredicate tests membership of a field value in a set.
type SimpleSetPredicate struct {
	XMLName         xml.Name `xml:"SimpleSetPredicate"`
	Field           string   `xml:"field,attr"`
	BooleanOperator string   `xml:"booleanOperator,attr"`
	Array           Array    `xml:"Array"`
}

// True always matches.
type True struct {
	XMLName xml.Name `xml:"True"`
}

// False never matches.
type False struct {
	XMLName xml.Name `xml:"False"`
}

func (*SimplePredicate) isPredicate()    {}
func (*CompoundPredicate) isPredicate()  {}
func (*SimpleSetPredicate) isPredicate() {}
func (*True) isPredicate()               {}
func (*False) isPredicate()              {}

// NewSimplePredicate creates a field-vs-constant predicate.
func NewSimplePredicate(field, operator, value string) *SimplePredicate {
	return &SimplePredicate{Field: field, Operator: operator, Value: value}
}

// NewCompoundPredicate creates a compound predicate.
func NewCompoundPredicate(op string, predicates ...Predicate) *CompoundPredicate {
	return &CompoundPredicate{BooleanOperator: op, Predicates: predicates}
}

// NewSimpleSetPredicate creates a set-membership predicate.
func NewSimpleSetPredicate(field, op string, values []string, arrayType string) *SimpleSetPredicate {
	return &SimpleSetPredicate{
		Field:           field,
		BooleanOperator: op,
		Array:           Array{N: len(values), Type: arrayType, Values: values},
	}
}
