// Package sklearn2pmml registers the sklearn2pmml extension classes: the
// PMMLPipeline root, domain decorators, formula-backed transformers and
// estimators, and predicate-guarded ensembles.
package sklearn2pmml

import (
	"skl2pmml/internal/encoder"
	"skl2pmml/internal/logging"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

func init() {
	step.MustRegister("sklearn2pmml.pipeline", "PMMLPipeline", newPMMLPipeline)
	step.MustRegister("sklearn2pmml.decoration", "ContinuousDomain", newContinuousDomain)
	step.MustRegister("sklearn2pmml.decoration", "CategoricalDomain", newCategoricalDomain)
	step.MustRegister("sklearn2pmml.decoration", "Alias", newAlias)
	step.MustRegister("sklearn2pmml.preprocessing", "ExpressionTransformer", newExpressionTransformer)
	step.MustRegister("sklearn2pmml.expression", "ExpressionRegressor", newExpressionRegressor)
	step.MustRegister("sklearn2pmml.ensemble", "SelectFirstRegressor", newSelectFirstRegressor)
	step.MustRegister("sklearn2pmml.ensemble", "SelectFirstClassifier", newSelectFirstClassifier)
}

// =============================================================================
// PMML PIPELINE
// =============================================================================

// PMMLPipeline is a Pipeline that names its own input and target columns
// and carries document header annotations.
type PMMLPipeline struct {
	*step.Pipeline
	node *node.Node
}

func newPMMLPipeline(r *step.Registry, n *node.Node) (step.Step, error) {
	steps, err := n.GetTupleList("steps", 2)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "steps", Err: node.ErrAttributeType, Detail: "empty pipeline"}
	}
	values := make([]any, len(steps))
	for i, s := range steps {
		values[i] = s[1]
	}
	p, err := r.Chain(n.ClassName(), values)
	if err != nil {
		return nil, err
	}
	return &PMMLPipeline{Pipeline: p, node: n}, nil
}

// RootFields reads active_fields and target_fields. The single-valued
// target_field of older pickles is accepted as well.
func (p *PMMLPipeline) RootFields() (step.RootFields, error) {
	active, err := p.node.GetOptionalStringList("active_fields")
	if err != nil {
		return step.RootFields{}, err
	}
	if p.node.Has("target_field") {
		target, err := p.node.GetString("target_field")
		if err != nil {
			return step.RootFields{}, err
		}
		return step.RootFields{Active: active, Target: []string{target}}, nil
	}
	targets, err := p.node.GetOptionalStringList("target_fields")
	if err != nil {
		return step.RootFields{}, err
	}
	return step.RootFields{Active: active, Target: targets}, nil
}

// Encode lowers the pipeline as the conversion root. Feature importances given
// on the pipeline annotate the input fields when the final estimator has none.
func (p *PMMLPipeline) Encode(enc *encoder.Encoder) (*step.Encoding, error) {
	fields, err := p.RootFields()
	if err != nil {
		return nil, err
	}
	if len(fields.Active) == 0 {
		logging.StepWarn("Attribute %s.active_fields is not set; input field names are inferred", p.ClassName())
	}
	if final := p.FinalEstimator(); final != nil && final.IsSupervised() && len(fields.Target) == 0 {
		logging.StepWarn("Attribute %s.target_fields is not set; assuming [%s]", p.ClassName(), step.DefaultTarget)
	}

	out, err := step.EncodeRoot(p, fields, enc)
	if err != nil {
		return nil, err
	}
	if err := p.annotateImportances(out, enc); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PMMLPipeline) annotateImportances(out *step.Encoding, enc *encoder.Encoder) error {
	base := out.Model.Base()
	if len(base.Importances) > 0 || !p.node.Has("pmml_feature_importances_") {
		return nil
	}
	values, err := p.node.GetNumberList("pmml_feature_importances_")
	if err != nil {
		return err
	}

	names := encoder.Names(out.Schema.Features())
	if len(names) == 0 {
		targets := map[string]bool{}
		if label := out.Schema.Label(); label != nil {
			for _, name := range label.Names() {
				targets[name] = true
			}
		}
		for _, f := range enc.DataFields() {
			if !targets[f.Name] {
				names = append(names, f.Name)
			}
		}
	}
	if len(values) != len(names) {
		return &step.ArityError{Class: p.ClassName(), What: "feature importance(s)", Expected: len(names), Actual: len(values)}
	}
	for i, name := range names {
		base.SetImportance(name, values[i])
	}
	return nil
}

// Header reads the copyright, description and modelVersion entries of the header dict.
func (p *PMMLPipeline) Header() (pmml.Header, bool, error) {
	d, err := p.node.GetOptionalDict("header")
	if err != nil || d == nil {
		return pmml.Header{}, false, err
	}
	var h pmml.Header
	entries := []struct {
		key string
		dst *string
	}{
		{"copyright", &h.Copyright},
		{"description", &h.Description},
		{"modelVersion", &h.ModelVersion},
	}
	for _, e := range entries {
		v, ok := d[e.key]
		if !ok || v == nil {
			continue
		}
		s, ok := node.AsString(v)
		if !ok {
			return pmml.Header{}, false, &node.AttributeError{
				Class:     p.ClassName(),
				Attribute: "header",
				Err:       node.ErrAttributeType,
				Detail:    e.key + ": expected str, got " + node.TypeName(v),
			}
		}
		*e.dst = s
	}
	return h, true, nil
}
