package encoder

import (
	"fmt"
	"slices"

	"skl2pmml/internal/pmml"
)

// Feature describes one column flowing between steps: the field backing it and its type.
// Features are immutable values; steps create new ones instead of editing them.
type Feature interface {
	// Name is the backing field name.
	Name() string

	DataType() pmml.DataType
	OpType() pmml.OpType

	// Ref references the backing field.
	Ref() *pmml.FieldRef

	// ToContinuous returns the continuous interpretation of the feature,
	// deriving an indicator field where one is needed.
	ToContinuous(e *Encoder) (ContinuousFeature, error)

	withName(name string) Feature
}

type base struct {
	name     string
	dataType pmml.DataType
}

func (b base) Name() string             { return b.name }
func (b base) DataType() pmml.DataType  { return b.dataType }
func (b base) Ref() *pmml.FieldRef      { return pmml.NewFieldRef(b.name) }
func (b base) renamed(name string) base { return base{name: name, dataType: b.dataType} }

// =============================================================================
// WILDCARD
// =============================================================================

// WildcardFeature is an input column whose operational type is not decided yet.
type WildcardFeature struct {
	base
}

// NewWildcardFeature creates a wildcard feature over a data field.
func NewWildcardFeature(name string, dataType pmml.DataType) WildcardFeature {
	return WildcardFeature{base{name, dataType}}
}

// WildcardOf creates a wildcard feature matching a catalogue entry.
func WildcardOf(f Field) WildcardFeature {
	return NewWildcardFeature(f.Name, f.DataType)
}

func (f WildcardFeature) OpType() pmml.OpType { return "" }

func (f WildcardFeature) ToContinuous(e *Encoder) (ContinuousFeature, error) {
	field, err := e.toContinuousField(f.name)
	if err != nil {
		return ContinuousFeature{}, err
	}
	return NewContinuousFeature(field.Name, field.DataType), nil
}

func (f WildcardFeature) withName(name string) Feature { return WildcardFeature{f.renamed(name)} }

// =============================================================================
// CONTINUOUS
// =============================================================================

// ContinuousFeature is a numeric column.
type ContinuousFeature struct {
	base
}

// NewContinuousFeature creates a continuous feature.
func NewContinuousFeature(name string, dataType pmml.DataType) ContinuousFeature {
	return ContinuousFeature{base{name, dataType}}
}

// ContinuousOf creates a continuous feature over a catalogue entry.
func ContinuousOf(f Field) ContinuousFeature {
	return NewContinuousFeature(f.Name, f.DataType)
}

func (f ContinuousFeature) OpType() pmml.OpType { return pmml.Continuous }

func (f ContinuousFeature) ToContinuous(*Encoder) (ContinuousFeature, error) { return f, nil }

func (f ContinuousFeature) withName(name string) Feature { return ContinuousFeature{f.renamed(name)} }

// =============================================================================
// CATEGORICAL
// =============================================================================

// CategoricalFeature is a column with a closed category domain.
type CategoricalFeature struct {
	base
	values []string
}

// NewCategoricalFeature creates a categorical feature.
func NewCategoricalFeature(name string, dataType pmml.DataType, values []string) CategoricalFeature {
	return CategoricalFeature{base{name, dataType}, slices.Clone(values)}
}

// Values returns the category domain.
func (f CategoricalFeature) Values() []string { return slices.Clone(f.values) }

func (f CategoricalFeature) OpType() pmml.OpType { return pmml.Categorical }

// ToContinuous reinterprets numeric categories as continuous values.
func (f CategoricalFeature) ToContinuous(*Encoder) (ContinuousFeature, error) {
	if !f.dataType.IsNumeric() {
		return ContinuousFeature{}, consistencyError(f.name, ErrNotContinuous, "categorical %s feature", f.dataType)
	}
	return NewContinuousFeature(f.name, f.dataType), nil
}

func (f CategoricalFeature) withName(name string) Feature {
	return CategoricalFeature{f.renamed(name), f.values}
}

// =============================================================================
// INDEX
// =============================================================================

// IndexFeature is an integer code column; code i stands for category Values()[i].
type IndexFeature struct {
	base
	values []string
}

// NewIndexFeature creates an index feature over a derived code field.
func NewIndexFeature(name string, dataType pmml.DataType, values []string) IndexFeature {
	return IndexFeature{base{name, dataType}, slices.Clone(values)}
}

// Values returns the categories in code order.
func (f IndexFeature) Values() []string { return slices.Clone(f.values) }

func (f IndexFeature) OpType() pmml.OpType { return pmml.Categorical }

func (f IndexFeature) ToContinuous(*Encoder) (ContinuousFeature, error) {
	return NewContinuousFeature(f.name, f.dataType), nil
}

func (f IndexFeature) withName(name string) Feature { return IndexFeature{f.renamed(name), f.values} }

// =============================================================================
// BINARY
// =============================================================================

// BinaryFeature is the 0/1 indicator of one category of a parent field.
type BinaryFeature struct {
	base
	value string
}

// NewBinaryFeature creates an indicator feature over a parent field.
func NewBinaryFeature(name string, dataType pmml.DataType, value string) BinaryFeature {
	return BinaryFeature{base{name, dataType}, value}
}

// Value returns the category the indicator tests for.
func (f BinaryFeature) Value() string { return f.value }

func (f BinaryFeature) OpType() pmml.OpType { return pmml.Categorical }

// ToContinuous derives (once) a "name=value" field holding the indicator.
func (f BinaryFeature) ToContinuous(e *Encoder) (ContinuousFeature, error) {
	derived, err := e.EnsureDerivedField(fmt.Sprintf("%s=%s", f.name, f.value), pmml.Continuous, pmml.Double, func() (pmml.Expression, error) {
		return &pmml.NormDiscrete{Field: f.name, Value: f.value}, nil
	})
	if err != nil {
		return ContinuousFeature{}, err
	}
	return ContinuousOf(derived), nil
}

func (f BinaryFeature) withName(name string) Feature { return BinaryFeature{f.renamed(name), f.value} }

// =============================================================================
// OBJECT / STRING
// =============================================================================

// ObjectFeature is an opaque column with no arithmetic interpretation.
type ObjectFeature struct {
	base
}

// NewObjectFeature creates an opaque feature.
func NewObjectFeature(name string, dataType pmml.DataType) ObjectFeature {
	return ObjectFeature{base{name, dataType}}
}

func (f ObjectFeature) OpType() pmml.OpType { return pmml.Categorical }

func (f ObjectFeature) ToContinuous(*Encoder) (ContinuousFeature, error) {
	return ContinuousFeature{}, consistencyError(f.name, ErrNotContinuous, "object feature")
}

func (f ObjectFeature) withName(name string) Feature { return ObjectFeature{f.renamed(name)} }

// StringFeature is a text column.
type StringFeature struct {
	base
}

// NewStringFeature creates a text feature.
func NewStringFeature(name string) StringFeature {
	return StringFeature{base{name, pmml.String}}
}

func (f StringFeature) OpType() pmml.OpType { return pmml.Categorical }

func (f StringFeature) ToContinuous(*Encoder) (ContinuousFeature, error) {
	return ContinuousFeature{}, consistencyError(f.name, ErrNotContinuous, "string feature")
}

func (f StringFeature) withName(name string) Feature { return StringFeature{f.renamed(name)} }

// FeatureOf creates the feature variant that matches a catalogue entry.
func FeatureOf(f Field) Feature {
	switch {
	case f.OpType == pmml.Continuous:
		return ContinuousOf(f)
	case f.Values != nil:
		return NewCategoricalFeature(f.Name, f.DataType, f.Values)
	case f.DataType == pmml.String:
		return NewStringFeature(f.Name)
	default:
		return NewObjectFeature(f.Name, f.DataType)
	}
}

// Names lists feature names.
func Names(features []Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.Name()
	}
	return out
}
