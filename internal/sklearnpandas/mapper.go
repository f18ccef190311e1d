// Package sklearnpandas registers the sklearn_pandas DataFrameMapper, a column
// router that originates the input fields of the pipeline it heads.
package sklearnpandas

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/logging"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

func init() {
	step.MustRegister("sklearn_pandas", "DataFrameMapper", newDataFrameMapper)
	step.MustRegister("sklearn_pandas.dataframe_mapper", "DataFrameMapper", newDataFrameMapper)
}

// DataFrameMapper applies a transformer chain to each selected column group
// and concatenates the results.
type DataFrameMapper struct {
	step.Base
	rows []mapping
}

// mapping is one row of the features list.
type mapping struct {
	columns      []any
	transformers []step.Transformer
	alias        string
}

func newDataFrameMapper(r *step.Registry, n *node.Node) (step.Step, error) {
	l, err := n.GetList("features")
	if err != nil {
		return nil, err
	}
	if v, ok := n.Get("default"); ok && v != nil {
		if b, isBool := v.(bool); !isBool || b {
			return nil, fmt.Errorf("%w: default=%s (unselected columns must be dropped)", step.ErrUnsupported, node.FormatValue(v))
		}
	}

	m := &DataFrameMapper{Base: step.NewBase(n)}
	for i, v := range l {
		row, ok := v.(node.Tuple)
		if !ok {
			if list, isList := v.([]any); isList {
				row = node.Tuple(list)
			}
		}
		if len(row) < 2 || len(row) > 3 {
			return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "features", Err: node.ErrAttributeType, Detail: fmt.Sprintf("element %d: expected a 2- or 3-tuple, got %s", i, node.TypeName(v))}
		}

		mp, err := parseMapping(r, n, i, row)
		if err != nil {
			return nil, err
		}
		m.rows = append(m.rows, mp)
	}
	return m, nil
}

func parseMapping(r *step.Registry, n *node.Node, i int, row node.Tuple) (mapping, error) {
	var mp mapping
	for _, c := range step.Columns(row[0]) {
		if _, ok := node.AsString(c); !ok {
			return mp, &node.AttributeError{Class: n.ClassName(), Attribute: "features", Err: node.ErrAttributeType, Detail: fmt.Sprintf("element %d: column selector must be str, got %s", i, node.TypeName(c))}
		}
		mp.columns = append(mp.columns, c)
	}

	// A row holds None, one transformer or a list of transformers applied in order
	values := []any{row[1]}
	if l, ok := row[1].([]any); ok {
		values = l
	}
	for _, v := range values {
		t, err := r.Transformer(v)
		if err != nil {
			return mp, err
		}
		mp.transformers = append(mp.transformers, t)
	}

	if len(row) == 3 && row[2] != nil {
		options, ok := row[2].(map[string]any)
		if !ok {
			return mp, &node.AttributeError{Class: n.ClassName(), Attribute: "features", Err: node.ErrAttributeType, Detail: fmt.Sprintf("element %d: options must be a dict, got %s", i, node.TypeName(row[2]))}
		}
		if v, ok := options["alias"]; ok && v != nil {
			alias, ok := node.AsString(v)
			if !ok {
				return mp, &node.AttributeError{Class: n.ClassName(), Attribute: "features", Err: node.ErrAttributeType, Detail: fmt.Sprintf("element %d: alias must be str, got %s", i, node.TypeName(v))}
			}
			mp.alias = alias
		}
	}
	return mp, nil
}

func (m *DataFrameMapper) OpType() (pmml.OpType, error)     { return "", step.ErrUnsupportedType }
func (m *DataFrameMapper) DataType() (pmml.DataType, error) { return "", step.ErrUnsupportedType }
func (m *DataFrameMapper) NumberOfFeatures() int            { return step.Unknown }

// FeatureNamesIn lists the selected columns in first-use order.
func (m *DataFrameMapper) FeatureNamesIn() ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, mp := range m.rows {
		for _, c := range mp.columns {
			name, _ := node.AsString(c)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (m *DataFrameMapper) InitializeFeatures(enc *encoder.Encoder) ([]encoder.Feature, error) {
	return m.EncodeFeatures(nil, enc)
}

func (m *DataFrameMapper) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	var out []encoder.Feature
	for i, mp := range m.rows {
		selected, err := step.SelectFeatures(mp.columns, features, enc)
		if err != nil {
			return nil, err
		}
		for _, t := range mp.transformers {
			if selected, err = step.EncodeTransformer(t, selected, enc); err != nil {
				return nil, err
			}
		}
		if mp.alias != "" {
			if selected, err = m.rename(selected, mp.alias, enc); err != nil {
				return nil, err
			}
		}
		logging.StepDebug("%s row %d: %v -> %v", m.ClassName(), i, mp.columns, encoder.Names(selected))
		out = append(out, selected...)
	}
	return out, nil
}

// rename applies a row alias. Several outputs are suffixed with their position.
func (m *DataFrameMapper) rename(features []encoder.Feature, alias string, enc *encoder.Encoder) ([]encoder.Feature, error) {
	out := make([]encoder.Feature, len(features))
	for i, f := range features {
		name := alias
		if len(features) > 1 {
			name = fmt.Sprintf("%s_%d", alias, i)
		}
		renamed, err := enc.RenameFeature(f, name)
		if err != nil {
			return nil, err
		}
		out[i] = renamed
	}
	return out, nil
}
