package encoder

import (
	"slices"

	"skl2pmml/internal/pmml"
)

// Label describes the target column(s) of a supervised estimator.
type Label interface {
	// Names lists the target field names.
	Names() []string

	isLabel()
}

// ScalarLabel is a single target column.
type ScalarLabel interface {
	Label
	Name() string
	DataType() pmml.DataType
}

// ContinuousLabel is a regression target.
type ContinuousLabel struct {
	name     string
	dataType pmml.DataType
}

func NewContinuousLabel(name string, dataType pmml.DataType) ContinuousLabel {
	return ContinuousLabel{name, dataType}
}

func (l ContinuousLabel) Name() string            { return l.name }
func (l ContinuousLabel) DataType() pmml.DataType { return l.dataType }
func (l ContinuousLabel) Names() []string         { return []string{l.name} }
func (ContinuousLabel) isLabel()                  {}

// CategoricalLabel is a classification target with its class values.
type CategoricalLabel struct {
	name     string
	dataType pmml.DataType
	values   []string
}

func NewCategoricalLabel(name string, dataType pmml.DataType, values []string) CategoricalLabel {
	return CategoricalLabel{name, dataType, slices.Clone(values)}
}

func (l CategoricalLabel) Name() string            { return l.name }
func (l CategoricalLabel) DataType() pmml.DataType { return l.dataType }
func (l CategoricalLabel) Names() []string         { return []string{l.name} }
func (l CategoricalLabel) Values() []string        { return slices.Clone(l.values) }
func (CategoricalLabel) isLabel()                  {}

// MultiLabel groups the targets of a multi-output estimator.
type MultiLabel struct {
	labels []ScalarLabel
}

func NewMultiLabel(labels ...ScalarLabel) MultiLabel {
	return MultiLabel{slices.Clone(labels)}
}

func (l MultiLabel) Labels() []ScalarLabel { return slices.Clone(l.labels) }

func (l MultiLabel) Names() []string {
	out := make([]string, len(l.labels))
	for i, s := range l.labels {
		out[i] = s.Name()
	}
	return out
}

func (MultiLabel) isLabel() {}

// CreateContinuousLabel registers a continuous target data field.
func (e *Encoder) CreateContinuousLabel(name string, dataType pmml.DataType) (ContinuousLabel, error) {
	f, err := e.EnsureDataField(name, pmml.Continuous, dataType)
	if err != nil {
		return ContinuousLabel{}, err
	}
	return NewContinuousLabel(f.Name, f.DataType), nil
}

// CreateCategoricalLabel registers a categorical target data field with its class domain.
func (e *Encoder) CreateCategoricalLabel(name string, dataType pmml.DataType, values []string) (CategoricalLabel, error) {
	f, err := e.EnsureDataField(name, pmml.Categorical, dataType)
	if err != nil {
		return CategoricalLabel{}, err
	}
	if f.OpType != pmml.Categorical {
		if _, err := e.RetypeField(name, pmml.Categorical, dataType); err != nil {
			return CategoricalLabel{}, err
		}
	}
	if err := e.ToCategorical(name, values); err != nil {
		return CategoricalLabel{}, err
	}
	// The catalogue entry may keep a more specific data type than requested
	f, err = e.require(name)
	if err != nil {
		return CategoricalLabel{}, err
	}
	return NewCategoricalLabel(f.Name, f.DataType, f.Values), nil
}

// RefreshLabel re-reads a label from the catalogue, picking up type or domain
// refinements made to the label-backing field after the label was created.
func (e *Encoder) RefreshLabel(label Label) (Label, error) {
	switch l := label.(type) {
	case nil:
		return nil, nil
	case ContinuousLabel:
		f, err := e.require(l.name)
		if err != nil {
			return nil, err
		}
		if f.Values != nil {
			return NewCategoricalLabel(f.Name, f.DataType, f.Values), nil
		}
		return NewContinuousLabel(f.Name, f.DataType), nil
	case CategoricalLabel:
		f, err := e.require(l.name)
		if err != nil {
			return nil, err
		}
		values := l.values
		if f.Values != nil {
			values = f.Values
		}
		return NewCategoricalLabel(f.Name, f.DataType, values), nil
	case MultiLabel:
		out := make([]ScalarLabel, len(l.labels))
		for i, s := range l.labels {
			r, err := e.RefreshLabel(s)
			if err != nil {
				return nil, err
			}
			out[i] = r.(ScalarLabel)
		}
		return NewMultiLabel(out...), nil
	default:
		return label, nil
	}
}
