package lineage

import (
	"context"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/pmml"
)

// Usage is the set of catalogue fields reachable from a model.
type Usage struct {
	used []string
	set  map[string]bool
}

// Used reports whether the model reads the field, directly or through derived fields.
func (u *Usage) Used(name string) bool {
	return u.set[name]
}

// Fields lists the used fields, sorted.
func (u *Usage) Fields() []string {
	return append([]string(nil), u.used...)
}

// Facts renders the reference facts of a model over a field catalogue: one
// model_ref per field the model reads and one field_ref per derived field input.
func Facts(model pmml.Model, fields []encoder.Field) []Fact {
	var facts []Fact
	for _, name := range ModelRefs(model) {
		facts = append(facts, Fact{Predicate: PredModelRef, Args: []string{name}})
	}
	for _, f := range fields {
		if !f.IsDerived() {
			continue
		}
		for _, src := range pmml.ExpressionFields(f.Expression) {
			facts = append(facts, Fact{Predicate: PredFieldRef, Args: []string{f.Name, src}})
		}
	}
	return facts
}

// ModelRefs lists the fields a model reads: the body references and the targets.
func ModelRefs(model pmml.Model) []string {
	refs := model.FieldRefs()
	return append(refs, model.Base().Targets...)
}

// Analyze computes the fields a model depends on.
func Analyze(ctx context.Context, model pmml.Model, fields []encoder.Field) (*Usage, error) {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := e.AddFacts(Facts(model, fields)); err != nil {
		return nil, err
	}
	if err := e.Evaluate(ctx); err != nil {
		return nil, err
	}
	used, err := e.Values(PredUsed)
	if err != nil {
		return nil, err
	}

	u := &Usage{used: used, set: make(map[string]bool, len(used))}
	for _, name := range used {
		u.set[name] = true
	}
	return u, nil
}
