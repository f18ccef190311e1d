package sklearn2pmml

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
	"skl2pmml/internal/translator"
)

// SelectFirst is the segmentation method that scores the first matching segment.
const SelectFirst = "selectFirst"

// member is one guarded estimator of a SelectFirst ensemble.
type member struct {
	name      string
	estimator step.Estimator
	predicate string
}

// SelectFirstEstimator routes each row to the first member whose predicate holds.
type SelectFirstEstimator struct {
	step.Base
	function pmml.MiningFunction
	members  []member
}

func newSelectFirstRegressor(r *step.Registry, n *node.Node) (step.Step, error) {
	return newSelectFirst(r, n, pmml.Regression)
}

func newSelectFirstClassifier(r *step.Registry, n *node.Node) (step.Step, error) {
	return newSelectFirst(r, n, pmml.Classification)
}

func newSelectFirst(r *step.Registry, n *node.Node, function pmml.MiningFunction) (step.Step, error) {
	steps, err := n.GetTupleList("steps", 3)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "steps", Err: node.ErrAttributeType, Detail: "no members"}
	}

	s := &SelectFirstEstimator{Base: step.NewBase(n), function: function}
	for i, t := range steps {
		name, ok := node.AsString(t[0])
		if !ok {
			return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "steps", Err: node.ErrAttributeType, Detail: fmt.Sprintf("element %d: expected str name, got %s", i, node.TypeName(t[0]))}
		}
		predicate, ok := node.AsString(t[2])
		if !ok {
			return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "steps", Err: node.ErrAttributeType, Detail: fmt.Sprintf("element %d: expected str predicate, got %s", i, node.TypeName(t[2]))}
		}
		e, err := r.Estimator(t[1])
		if err != nil {
			return nil, err
		}
		if e.MiningFunction() != function {
			return nil, fmt.Errorf("%w: member '%s' is a %s estimator, expected %s", step.ErrWrongRole, name, e.MiningFunction(), function)
		}
		s.members = append(s.members, member{name: name, estimator: e, predicate: predicate})
	}
	return s, nil
}

func (s *SelectFirstEstimator) OpType() (pmml.OpType, error)        { return "", step.ErrUnsupportedType }
func (s *SelectFirstEstimator) DataType() (pmml.DataType, error)    { return "", step.ErrUnsupportedType }
func (s *SelectFirstEstimator) MiningFunction() pmml.MiningFunction { return s.function }
func (s *SelectFirstEstimator) IsSupervised() bool                  { return true }

// Classes reads classes_, falling back to the classes of the first member.
func (s *SelectFirstEstimator) Classes() ([]any, error) {
	if s.Has("classes_") {
		return s.GetList("classes_")
	}
	if hc, ok := s.members[0].estimator.(step.HasClasses); ok {
		return hc.Classes()
	}
	return nil, fmt.Errorf("%w: no class labels", step.ErrUnsupported)
}

func (s *SelectFirstEstimator) EncodeModel(schema *encoder.Schema, enc *encoder.Encoder) (pmml.Model, error) {
	tr := translator.New(translator.NewScope(schema.Features()), translator.WithNegateComparisons(enc.Options().NegateComparisons))

	model := &pmml.MiningModel{
		ModelBase:    pmml.ModelBase{FunctionName: s.function},
		Segmentation: pmml.Segmentation{MultipleModelMethod: SelectFirst},
	}
	for _, m := range s.members {
		predicate, err := tr.TranslatePredicate(enc.Context(), m.predicate)
		if err != nil {
			return nil, err
		}
		// Every member sees its own copy of the schema
		segment, err := step.EncodeEstimator(m.estimator, encoder.NewSchema(schema.Label(), schema.Features()), enc)
		if err != nil {
			return nil, err
		}
		model.Segmentation.Segments = append(model.Segmentation.Segments, pmml.Segment{ID: m.name, Predicate: predicate, Model: segment})
	}
	hoistCommonOutputs(model)
	return model, nil
}

// hoistCommonOutputs moves the probability and affinity outputs that every
// segment declares identically up to the mining model.
func hoistCommonOutputs(model *pmml.MiningModel) {
	segments := model.Segmentation.Segments
	var common []pmml.OutputField
	for i, seg := range segments {
		out := seg.Model.Base().Output
		if out == nil {
			return
		}
		if i == 0 {
			for _, f := range out.Fields {
				if f.Feature == "probability" || f.Feature == "affinity" {
					common = append(common, f)
				}
			}
			continue
		}
		kept := common[:0]
		for _, f := range common {
			if containsOutput(out.Fields, f) {
				kept = append(kept, f)
			}
		}
		common = kept
	}
	if len(common) == 0 {
		return
	}

	for _, seg := range segments {
		out := seg.Model.Base().Output
		fields := out.Fields[:0]
		for _, f := range out.Fields {
			if !containsOutput(common, f) {
				fields = append(fields, f)
			}
		}
		out.Fields = fields
		if len(out.Fields) == 0 {
			seg.Model.Base().Output = nil
		}
	}
	model.Output = &pmml.Output{Fields: common}
}

func containsOutput(fields []pmml.OutputField, f pmml.OutputField) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
