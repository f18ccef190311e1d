package encoder

import (
	"slices"
)

// Schema is the label and ordered feature list an estimator consumes.
type Schema struct {
	label    Label
	features []Feature
}

// NewSchema creates a schema. A nil label means unsupervised.
func NewSchema(label Label, features []Feature) *Schema {
	return &Schema{label: label, features: slices.Clone(features)}
}

func (s *Schema) Label() Label {
	return s.label
}

// Features returns a copy of the feature list.
func (s *Schema) Features() []Feature {
	return slices.Clone(s.features)
}

func (s *Schema) Feature(i int) Feature {
	return s.features[i]
}

func (s *Schema) NumberOfFeatures() int {
	return len(s.features)
}

// WithLabel returns a schema with the same features and another label.
func (s *Schema) WithLabel(label Label) *Schema {
	return &Schema{label: label, features: s.features}
}

// WithFeatures returns a schema with the same label and other features.
func (s *Schema) WithFeatures(features []Feature) *Schema {
	return &Schema{label: s.label, features: slices.Clone(features)}
}
