package convert

import (
	"context"
	"fmt"
	"slices"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/lineage"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// Value properties of DataField values.
const (
	propertyInvalid = "invalid"
	propertyMissing = "missing"
)

// Assembly holds everything Assemble needs.
type Assembly struct {
	Header   pmml.Header
	Encoding *step.Encoding
	Fields   []encoder.Field

	// Usage restricts the document to the fields the model reads; nil keeps every field.
	Usage *lineage.Usage

	// Importances copies the model's feature importances onto its mining fields.
	Importances bool
}

// Assemble builds the document: data dictionary with the targets first,
// transformation dictionary, and the model with its mining schema.
func Assemble(ctx context.Context, a Assembly) (*pmml.Document, error) {
	if a.Encoding == nil || a.Encoding.Model == nil {
		return nil, fmt.Errorf("convert: nothing to assemble")
	}
	model := a.Encoding.Model
	targets := model.Base().Targets

	doc := pmml.NewDocument()
	doc.Header = a.Header
	doc.Model = model

	data := dataFields(a.Fields, targets, a.Usage)
	for _, f := range data {
		doc.DataDictionary.Fields = append(doc.DataDictionary.Fields, dataField(f))
	}
	doc.DataDictionary.NumberOfFields = len(doc.DataDictionary.Fields)

	var derived []pmml.DerivedField
	for _, f := range a.Fields {
		if !f.IsDerived() || (a.Usage != nil && !a.Usage.Used(f.Name)) {
			continue
		}
		derived = append(derived, pmml.DerivedField{
			Name:       f.Name,
			OpType:     f.OpType,
			DataType:   f.DataType,
			Values:     values(f.Values, ""),
			Expression: f.Expression,
		})
	}
	if len(derived) > 0 {
		doc.TransformationDictionary = &pmml.TransformationDictionary{DerivedFields: derived}
	}

	model.Base().MiningSchema = miningSchema(model.Base(), data, a.Importances)
	if mm, ok := model.(*pmml.MiningModel); ok {
		if err := segmentSchemas(ctx, mm, a.Fields, data); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// dataFields selects the data fields of the document: targets in label order,
// then the used input fields in catalogue order.
func dataFields(fields []encoder.Field, targets []string, usage *lineage.Usage) []encoder.Field {
	var out []encoder.Field
	byName := make(map[string]encoder.Field)
	for _, f := range fields {
		if !f.IsDerived() {
			byName[f.Name] = f
		}
	}
	for _, name := range targets {
		if f, ok := byName[name]; ok {
			out = append(out, f)
		}
	}
	for _, f := range fields {
		if f.IsDerived() || slices.Contains(targets, f.Name) {
			continue
		}
		if usage != nil && !usage.Used(f.Name) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func dataField(f encoder.Field) pmml.DataField {
	dec := f.Decoration
	df := pmml.DataField{
		Name:        f.Name,
		DisplayName: dec.DisplayName,
		OpType:      f.OpType,
		DataType:    f.DataType,
		Intervals:   dec.Intervals,
		Values:      values(f.Values, ""),
	}
	df.Values = append(df.Values, values(dec.InvalidValues, propertyInvalid)...)
	df.Values = append(df.Values, values(dec.MissingValues, propertyMissing)...)
	return df
}

func values(vs []string, property string) []pmml.Value {
	if len(vs) == 0 {
		return nil
	}
	out := make([]pmml.Value, len(vs))
	for i, v := range vs {
		out[i] = pmml.Value{Value: v, Property: property}
	}
	return out
}

// miningSchema lists the targets, then the active fields with their value treatments.
func miningSchema(base *pmml.ModelBase, data []encoder.Field, importances bool) pmml.MiningSchema {
	var schema pmml.MiningSchema
	for _, f := range data {
		if slices.Contains(base.Targets, f.Name) {
			schema.Fields = append(schema.Fields, pmml.MiningField{Name: f.Name, UsageType: pmml.Target})
		}
	}
	for _, f := range data {
		if slices.Contains(base.Targets, f.Name) {
			continue
		}
		dec := f.Decoration
		mf := pmml.MiningField{
			Name:                    f.Name,
			Outliers:                dec.OutlierTreatment,
			LowValue:                dec.LowValue,
			HighValue:               dec.HighValue,
			MissingValueReplacement: dec.MissingValueReplacement,
			MissingValueTreatment:   dec.MissingValueTreatment,
			InvalidValueTreatment:   dec.InvalidValueTreatment,
			InvalidValueReplacement: dec.InvalidValueReplacement,
		}
		if v, ok := base.Importances[f.Name]; ok && importances {
			mf.Importance = &v
		}
		schema.Fields = append(schema.Fields, mf)
	}
	return schema
}

// segmentSchemas gives every segment model the mining schema of the data fields it reads.
// Segment predicates are evaluated by the parent, so their fields stay in the parent schema.
func segmentSchemas(ctx context.Context, mm *pmml.MiningModel, fields, data []encoder.Field) error {
	for _, seg := range mm.Segmentation.Segments {
		usage, err := lineage.Analyze(ctx, seg.Model, fields)
		if err != nil {
			return err
		}
		var used []encoder.Field
		for _, f := range data {
			if usage.Used(f.Name) {
				used = append(used, f)
			}
		}
		seg.Model.Base().MiningSchema = miningSchema(seg.Model.Base(), used, false)
		if inner, ok := seg.Model.(*pmml.MiningModel); ok {
			if err := segmentSchemas(ctx, inner, fields, data); err != nil {
				return err
			}
		}
	}
	return nil
}
