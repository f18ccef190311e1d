package step

import (
	"skl2pmml/internal/encoder"
	"skl2pmml/internal/pmml"
)

// PassThrough forwards its features unchanged.
type PassThrough struct{}

func (PassThrough) ClassName() string                { return "passthrough" }
func (PassThrough) OpType() (pmml.OpType, error)     { return "", ErrUnsupportedType }
func (PassThrough) DataType() (pmml.DataType, error) { return "", ErrUnsupportedType }
func (PassThrough) NumberOfFeatures() int            { return Unknown }

func (PassThrough) EncodeFeatures(features []encoder.Feature, _ *encoder.Encoder) ([]encoder.Feature, error) {
	return features, nil
}

// Drop discards its features.
type Drop struct{}

func (Drop) ClassName() string                { return "drop" }
func (Drop) OpType() (pmml.OpType, error)     { return "", ErrUnsupportedType }
func (Drop) DataType() (pmml.DataType, error) { return "", ErrUnsupportedType }
func (Drop) NumberOfFeatures() int            { return Unknown }

func (Drop) EncodeFeatures([]encoder.Feature, *encoder.Encoder) ([]encoder.Feature, error) {
	return nil, nil
}
