package sklearn

import (
	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// ColumnTransformer applies transformers to column subsets and concatenates the results.
// As the head of a pipeline it originates the input fields from its column selectors.
type ColumnTransformer struct {
	step.Base
	fitted []fittedTransformer
}

type fittedTransformer struct {
	name        string
	transformer step.Transformer
	columns     []any
}

func newColumnTransformer(r *step.Registry, n *node.Node) (step.Step, error) {
	rows, err := n.GetTupleList("transformers_", 3)
	if err != nil {
		return nil, err
	}
	c := &ColumnTransformer{Base: step.NewBase(n)}
	for _, row := range rows {
		name, _ := node.AsString(row[0])
		tr, err := r.Transformer(row[1])
		if err != nil {
			return nil, err
		}
		c.fitted = append(c.fitted, fittedTransformer{name: name, transformer: tr, columns: step.Columns(row[2])})
	}
	return c, nil
}

func (c *ColumnTransformer) OpType() (pmml.OpType, error)     { return "", step.ErrUnsupportedType }
func (c *ColumnTransformer) DataType() (pmml.DataType, error) { return "", step.ErrUnsupportedType }

func (c *ColumnTransformer) InitializeFeatures(enc *encoder.Encoder) ([]encoder.Feature, error) {
	names, err := c.FeatureNamesIn()
	if err != nil {
		return nil, err
	}
	var features []encoder.Feature
	for _, name := range names {
		f, err := step.WildcardFeature(name, enc)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return c.EncodeFeatures(features, enc)
}

func (c *ColumnTransformer) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	var out []encoder.Feature
	for _, ft := range c.fitted {
		if _, ok := ft.transformer.(step.Drop); ok {
			continue
		}
		selected, err := step.SelectFeatures(ft.columns, features, enc)
		if err != nil {
			return nil, err
		}
		part, err := step.EncodeTransformer(ft.transformer, selected, enc)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}
