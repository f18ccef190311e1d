package step

import (
	"fmt"
	"strings"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
)

// WildcardFeature returns a feature over the named input field, creating a
// continuous double data field when the name is new.
func WildcardFeature(name string, enc *encoder.Encoder) (encoder.Feature, error) {
	field, err := enc.EnsureDataField(name, pmml.Continuous, pmml.Double)
	if err != nil {
		return nil, err
	}
	return encoder.WildcardOf(field), nil
}

// SelectFeatures resolves column selectors against the incoming features.
// A str selector matches a feature by name and an int selector by position.
// A boolean mask selects the positions holding true. Without incoming features
// the selectors originate input fields: by name, or x1..xn by position.
func SelectFeatures(columns []any, features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	columns = maskToIndices(columns)

	out := make([]encoder.Feature, 0, len(columns))
	for _, column := range columns {
		f, err := selectFeature(column, features, enc)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func selectFeature(column any, features []encoder.Feature, enc *encoder.Encoder) (encoder.Feature, error) {
	if name, ok := node.AsString(column); ok {
		if len(features) == 0 {
			return WildcardFeature(name, enc)
		}
		for _, f := range features {
			if f.Name() == name {
				return f, nil
			}
		}
		return nil, fmt.Errorf("%w: '%s' not found in [%s]", ErrUnknownColumn, name, strings.Join(encoder.Names(features), ", "))
	}

	if index, ok := node.AsInt(column); ok {
		if len(features) == 0 {
			if index < 0 {
				return nil, fmt.Errorf("%w: negative index %d", ErrUnknownColumn, index)
			}
			return WildcardFeature(fmt.Sprintf("x%d", index+1), enc)
		}
		if index < 0 || index >= len(features) {
			return nil, fmt.Errorf("%w: index %d out of range for %d feature(s)", ErrUnknownColumn, index, len(features))
		}
		return features[index], nil
	}

	return nil, fmt.Errorf("%w: the column selector (%s) is neither a str nor an int", ErrUnknownColumn, node.TypeName(column))
}

// maskToIndices converts a boolean mask into the indices of its true positions.
// Other selectors are returned unchanged.
func maskToIndices(columns []any) []any {
	if len(columns) == 0 {
		return columns
	}
	for _, c := range columns {
		if _, ok := c.(bool); !ok {
			return columns
		}
	}
	var out []any
	for i, c := range columns {
		if c.(bool) {
			out = append(out, i)
		}
	}
	return out
}

// Columns normalizes a column selector attribute value into a list.
func Columns(v any) []any {
	if l, ok := node.AsList(v); ok {
		return l
	}
	return []any{v}
}
