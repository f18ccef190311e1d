package sklearn2pmml

import (
	"fmt"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// Missing value treatments.
const (
	MissingAsIs          = "asIs"
	MissingAsMean        = "asMean"
	MissingAsMedian      = "asMedian"
	MissingAsMode        = "asMode"
	MissingAsValue       = "asValue"
	MissingReturnInvalid = "returnInvalid"
)

// Invalid value treatments.
const (
	InvalidAsIs          = "asIs"
	InvalidAsMissing     = "asMissing"
	InvalidAsValue       = "asValue"
	InvalidReturnInvalid = "returnInvalid"
)

// Outlier treatments.
const (
	OutliersAsIs            = "asIs"
	OutliersAsMissingValues = "asMissingValues"
	OutliersAsExtremeValues = "asExtremeValues"
)

var missingTreatments = map[string]string{
	"as_is":          MissingAsIs,
	"as_mean":        MissingAsMean,
	"as_median":      MissingAsMedian,
	"as_mode":        MissingAsMode,
	"as_value":       MissingAsValue,
	"return_invalid": MissingReturnInvalid,
}

var invalidTreatments = map[string]string{
	"as_is":          InvalidAsIs,
	"as_missing":     InvalidAsMissing,
	"as_value":       InvalidAsValue,
	"return_invalid": InvalidReturnInvalid,
}

var outlierTreatments = map[string]string{
	"as_is":             OutliersAsIs,
	"as_missing_values": OutliersAsMissingValues,
	"as_extreme_values": OutliersAsExtremeValues,
}

// =============================================================================
// DOMAIN
// =============================================================================

// domain holds the value-space settings shared by all domain decorators.
// A domain commits the type of every input field it sees, so a field can be
// decorated by one domain only.
type domain struct {
	step.Base

	missingTreatment   string
	missingReplacement any
	missingValues      []any
	invalidTreatment   string
	invalidReplacement any
	displayNames       []string
	withData           bool
}

func parseDomain(n *node.Node) (domain, error) {
	d := domain{Base: step.NewBase(n)}

	var err error
	if d.missingTreatment, err = treatment(n, "missing_value_treatment", "missing_value_replacement", missingTreatments, MissingAsValue); err != nil {
		return d, err
	}
	d.missingReplacement, _ = n.Get("missing_value_replacement")
	if v, ok := n.Get("missing_values"); ok {
		for _, mv := range scalarOrList(v) {
			if mv != nil && !isNaN(mv) {
				d.missingValues = append(d.missingValues, mv)
			}
		}
	}

	if d.invalidTreatment, err = treatment(n, "invalid_value_treatment", "invalid_value_replacement", invalidTreatments, InvalidAsValue); err != nil {
		return d, err
	}
	d.invalidReplacement, _ = n.Get("invalid_value_replacement")

	if n.Has("display_name") {
		v, _ := n.Get("display_name")
		if s, ok := node.AsString(v); ok {
			d.displayNames = []string{s}
		} else if d.displayNames, err = n.GetStringList("display_name"); err != nil {
			return d, err
		}
	}

	if d.withData, err = n.GetOptionalBool("with_data", true); err != nil {
		return d, err
	}
	return d, nil
}

// treatment reads a treatment enum. A replacement value without an explicit
// treatment implies the replacing treatment; the replacing treatment without a
// replacement value is a shape error.
func treatment(n *node.Node, name, replacement string, allowed map[string]string, replacing string) (string, error) {
	var out string
	switch {
	case n.Has(name):
		s, err := n.GetEnum(name, sortedKeys(allowed)...)
		if err != nil {
			return "", err
		}
		out = allowed[s]
	case n.Has(replacement):
		out = replacing
	}

	if out == replacing && !n.Has(replacement) {
		return "", &node.AttributeError{Class: n.ClassName(), Attribute: replacement, Err: node.ErrMissingAttribute, Detail: "required by " + name}
	}
	return out, nil
}

// commit freezes the input fields behind features to the given types.
func (d *domain) commit(features []encoder.Feature, opType pmml.OpType, dataType pmml.DataType, enc *encoder.Encoder) ([]encoder.Field, error) {
	if d.displayNames != nil && len(d.displayNames) != len(features) {
		return nil, &step.ArityError{Class: d.ClassName(), What: "display name(s)", Expected: len(features), Actual: len(d.displayNames)}
	}
	fields := make([]encoder.Field, len(features))
	for i, f := range features {
		if _, ok := f.(encoder.WildcardFeature); !ok {
			return nil, &encoder.ConsistencyError{Field: f.Name(), Detail: "decorate input fields, not transformed fields", Err: encoder.ErrTypeMismatch}
		}
		field, err := enc.CommitFieldType(f.Name(), opType, dataType)
		if err != nil {
			return nil, err
		}
		fields[i] = field
	}
	return fields, nil
}

// decoration renders the shared settings for the i-th field.
func (d *domain) decoration(i int, dataType pmml.DataType) encoder.Decoration {
	dec := encoder.Decoration{
		MissingValueTreatment: d.missingTreatment,
		InvalidValueTreatment: d.invalidTreatment,
	}
	if d.missingReplacement != nil {
		dec.MissingValueReplacement = formatValue(d.missingReplacement, dataType)
	}
	if d.invalidReplacement != nil {
		dec.InvalidValueReplacement = formatValue(d.invalidReplacement, dataType)
	}
	for _, mv := range d.missingValues {
		dec.MissingValues = append(dec.MissingValues, formatValue(mv, dataType))
	}
	if d.displayNames != nil {
		dec.DisplayName = d.displayNames[i]
	}
	return dec
}

// =============================================================================
// CONTINUOUS DOMAIN
// =============================================================================

// ContinuousDomain declares continuous input fields, optionally bounded by the
// fitted [data_min_, data_max_] interval.
type ContinuousDomain struct {
	domain
	outlierTreatment string
	lowValue         float64
	highValue        float64
}

func newContinuousDomain(_ *step.Registry, n *node.Node) (step.Step, error) {
	d, err := parseDomain(n)
	if err != nil {
		return nil, err
	}
	c := &ContinuousDomain{domain: d, outlierTreatment: OutliersAsIs}
	if n.Has("outlier_treatment") {
		s, err := n.GetEnum("outlier_treatment", sortedKeys(outlierTreatments)...)
		if err != nil {
			return nil, err
		}
		c.outlierTreatment = outlierTreatments[s]
	}
	if c.outlierTreatment != OutliersAsIs {
		if c.lowValue, err = n.GetNumber("low_value"); err != nil {
			return nil, err
		}
		if c.highValue, err = n.GetNumber("high_value"); err != nil {
			return nil, err
		}
		if c.lowValue > c.highValue {
			return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "low_value", Err: node.ErrUnsupportedValue, Detail: fmt.Sprintf("%v exceeds high_value %v", c.lowValue, c.highValue)}
		}
	}
	return c, nil
}

func (c *ContinuousDomain) OpType() (pmml.OpType, error) {
	return pmml.Continuous, nil
}

func (c *ContinuousDomain) DataType() (pmml.DataType, error) {
	dataType, ok, err := dtypeAttribute(c.Node, "dtype_", "dtype")
	if err != nil || ok {
		return dataType, err
	}
	return pmml.Double, nil
}

func (c *ContinuousDomain) NumberOfFeatures() int {
	if c.withData && c.Has("data_min_") && c.Has("data_max_") {
		mins, err1 := c.GetNumberList("data_min_")
		maxs, err2 := c.GetNumberList("data_max_")
		if err1 == nil && err2 == nil && len(mins) == len(maxs) {
			return len(mins)
		}
	}
	return c.Base.NumberOfFeatures()
}

func (c *ContinuousDomain) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	dataType, err := c.DataType()
	if err != nil {
		return nil, err
	}

	var mins, maxs []float64
	if c.withData && c.Has("data_min_") {
		if mins, err = c.GetNumberList("data_min_"); err != nil {
			return nil, err
		}
		if maxs, err = c.GetNumberList("data_max_"); err != nil {
			return nil, err
		}
		if len(mins) != len(features) {
			return nil, &step.ArityError{Class: c.ClassName(), What: "data_min_ value(s)", Expected: len(features), Actual: len(mins)}
		}
		if len(maxs) != len(features) {
			return nil, &step.ArityError{Class: c.ClassName(), What: "data_max_ value(s)", Expected: len(features), Actual: len(maxs)}
		}
	}

	fields, err := c.commit(features, pmml.Continuous, dataType, enc)
	if err != nil {
		return nil, err
	}

	out := make([]encoder.Feature, len(fields))
	for i, field := range fields {
		dec := c.decoration(i, dataType)
		if mins != nil {
			lo, hi := mins[i], maxs[i]
			dec.Intervals = []pmml.Interval{{Closure: "closedClosed", LeftMargin: &lo, RightMargin: &hi}}
		}
		if c.outlierTreatment != OutliersAsIs {
			dec.OutlierTreatment = c.outlierTreatment
			dec.LowValue = step.FormatNumber(c.lowValue)
			dec.HighValue = step.FormatNumber(c.highValue)
		}
		if err := enc.Decorate(field.Name, dec); err != nil {
			return nil, err
		}
		out[i] = encoder.ContinuousOf(field)
	}
	return out, nil
}

// =============================================================================
// CATEGORICAL DOMAIN
// =============================================================================

// CategoricalDomain declares categorical input fields, optionally closing
// their value space to the fitted categories.
type CategoricalDomain struct {
	domain
	data [][]any
}

func newCategoricalDomain(_ *step.Registry, n *node.Node) (step.Step, error) {
	d, err := parseDomain(n)
	if err != nil {
		return nil, err
	}
	c := &CategoricalDomain{domain: d}
	if !d.withData {
		return c, nil
	}

	switch {
	case n.Has("data_values_"):
		if c.data, err = n.GetListOfLists("data_values_"); err != nil {
			return nil, err
		}
	case n.Has("data_"):
		values, err := n.GetList("data_")
		if err != nil {
			return nil, err
		}
		c.data = [][]any{values}
	default:
		return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "data_values_", Err: node.ErrMissingAttribute, Detail: "required when with_data is set"}
	}
	for i := range c.data {
		c.data[i] = withoutMissing(c.data[i])
	}
	return c, nil
}

func (c *CategoricalDomain) OpType() (pmml.OpType, error) {
	return pmml.Categorical, nil
}

// DataType is the declared dtype, else the type inferred from the fitted categories.
func (c *CategoricalDomain) DataType() (pmml.DataType, error) {
	dataType, ok, err := dtypeAttribute(c.Node, "dtype_", "dtype")
	if err != nil || ok {
		return dataType, err
	}
	var all []any
	for _, values := range c.data {
		all = append(all, values...)
	}
	if len(all) == 0 {
		return pmml.String, nil
	}
	_, dataType = step.ClassValues(all)
	return dataType, nil
}

func (c *CategoricalDomain) NumberOfFeatures() int {
	if c.data != nil {
		return len(c.data)
	}
	return c.Base.NumberOfFeatures()
}

func (c *CategoricalDomain) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	dataType, err := c.DataType()
	if err != nil {
		return nil, err
	}
	fields, err := c.commit(features, pmml.Categorical, dataType, enc)
	if err != nil {
		return nil, err
	}

	out := make([]encoder.Feature, len(fields))
	for i, field := range fields {
		if err := enc.Decorate(field.Name, c.decoration(i, dataType)); err != nil {
			return nil, err
		}
		if c.data == nil {
			out[i] = encoder.FeatureOf(field)
			continue
		}

		values := make([]string, len(c.data[i]))
		for j, v := range c.data[i] {
			values[j] = formatValue(v, dataType)
		}
		if err := enc.ToCategorical(field.Name, values); err != nil {
			return nil, err
		}
		out[i] = encoder.NewCategoricalFeature(field.Name, dataType, values)
	}
	return out, nil
}

// withoutMissing drops None and NaN entries from a fitted category list.
func withoutMissing(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v == nil || isNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// =============================================================================
// ALIAS
// =============================================================================

// Alias renames the features produced by a wrapped transformer.
type Alias struct {
	step.Base
	transformer step.Transformer
	names       []string
}

func newAlias(r *step.Registry, n *node.Node) (step.Step, error) {
	inner, err := n.GetNode("transformer")
	if err != nil {
		return nil, err
	}
	t, err := r.Transformer(inner)
	if err != nil {
		return nil, err
	}

	a := &Alias{Base: step.NewBase(n), transformer: t}
	v, ok := n.Get("name")
	if !ok || v == nil {
		return nil, &node.AttributeError{Class: n.ClassName(), Attribute: "name", Err: node.ErrMissingAttribute}
	}
	if s, ok := node.AsString(v); ok {
		a.names = []string{s}
	} else if a.names, err = n.GetStringList("name"); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Alias) OpType() (pmml.OpType, error)     { return a.transformer.OpType() }
func (a *Alias) DataType() (pmml.DataType, error) { return a.transformer.DataType() }
func (a *Alias) NumberOfFeatures() int            { return a.transformer.NumberOfFeatures() }

func (a *Alias) EncodeFeatures(features []encoder.Feature, enc *encoder.Encoder) ([]encoder.Feature, error) {
	out, err := step.EncodeTransformer(a.transformer, features, enc)
	if err != nil {
		return nil, err
	}
	if len(out) != len(a.names) {
		return nil, &step.ArityError{Class: a.ClassName(), What: "output feature(s)", Expected: len(a.names), Actual: len(out)}
	}
	for i, f := range out {
		if out[i], err = enc.RenameFeature(f, a.names[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
