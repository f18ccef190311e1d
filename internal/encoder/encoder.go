// Package encoder owns the per-conversion field catalogue and the feature,
// label and schema values that steps pass between each other.
package encoder

import (
	"context"
	"reflect"
	"slices"

	"skl2pmml/internal/logging"
	"skl2pmml/internal/pmml"
)

// Encoder is the mutable field catalogue of one conversion.
// It is not safe for concurrent use; each conversion owns its own Encoder.
type Encoder struct {
	fields  map[string]*Field
	order   []string
	options Options
	ctx     context.Context
}

// Options tune how steps lower into the catalogue.
type Options struct {
	// NegateComparisons folds `not` over a comparison into the inverse comparison
	// when steps translate formulas.
	NegateComparisons bool
}

// New creates an empty Encoder.
func New() *Encoder {
	return &Encoder{fields: make(map[string]*Field), ctx: context.Background()}
}

// WithContext returns e bound to ctx. Steps that parse formulas honor its cancellation.
func (e *Encoder) WithContext(ctx context.Context) *Encoder {
	e.ctx = ctx
	return e
}

// Context returns the context of the running conversion.
func (e *Encoder) Context() context.Context {
	return e.ctx
}

// Options returns the lowering options.
func (e *Encoder) Options() Options {
	return e.options
}

// SetOptions replaces the lowering options.
func (e *Encoder) SetOptions(o Options) {
	e.options = o
}

func (e *Encoder) add(f *Field) {
	e.fields[f.Name] = f
	e.order = append(e.order, f.Name)
}

func (e *Encoder) remove(name string) {
	delete(e.fields, name)
	if i := slices.Index(e.order, name); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
}

func (e *Encoder) require(name string) (*Field, error) {
	f, ok := e.fields[name]
	if !ok {
		return nil, consistencyError(name, ErrUndefinedField, "")
	}
	return f, nil
}

// Field returns a copy of the named catalogue entry.
func (e *Encoder) Field(name string) (Field, bool) {
	f, ok := e.fields[name]
	if !ok {
		return Field{}, false
	}
	return f.clone(), true
}

// Has reports whether the name is catalogued.
func (e *Encoder) Has(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// IsFrozen reports whether the field's type has been committed.
func (e *Encoder) IsFrozen(name string) bool {
	f, ok := e.fields[name]
	return ok && f.Frozen
}

// Fields returns all entries in creation order.
func (e *Encoder) Fields() []Field {
	out := make([]Field, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.fields[name].clone())
	}
	return out
}

// DataFields returns the input data fields in creation order.
func (e *Encoder) DataFields() []Field {
	return e.filter(DataKind)
}

// DerivedFields returns the derived fields in creation order.
func (e *Encoder) DerivedFields() []Field {
	return e.filter(DerivedKind)
}

func (e *Encoder) filter(kind Kind) []Field {
	var out []Field
	for _, name := range e.order {
		if f := e.fields[name]; f.Kind == kind {
			out = append(out, f.clone())
		}
	}
	return out
}

// =============================================================================
// DATA FIELDS
// =============================================================================

// CreateDataField registers a new input field.
func (e *Encoder) CreateDataField(name string, opType pmml.OpType, dataType pmml.DataType) (Field, error) {
	if _, ok := e.fields[name]; ok {
		return Field{}, consistencyError(name, ErrDuplicateField, "")
	}
	f := &Field{Name: name, Kind: DataKind, OpType: opType, DataType: dataType}
	e.add(f)
	logging.EncoderDebug("Created data field %s (%s, %s)", name, opType, dataType)
	return f.clone(), nil
}

// EnsureDataField returns the named input field, creating it when absent.
func (e *Encoder) EnsureDataField(name string, opType pmml.OpType, dataType pmml.DataType) (Field, error) {
	if f, ok := e.fields[name]; ok {
		if f.Kind != DataKind {
			return Field{}, consistencyError(name, ErrDuplicateField, "defined as a derived field")
		}
		return f.clone(), nil
	}
	return e.CreateDataField(name, opType, dataType)
}

// RetypeField updates an unfrozen field's types and leaves a frozen field unchanged.
// A requested double type does not override a more specific data type already in place.
func (e *Encoder) RetypeField(name string, opType pmml.OpType, dataType pmml.DataType) (Field, error) {
	f, err := e.require(name)
	if err != nil {
		return Field{}, err
	}
	if f.Frozen {
		return f.clone(), nil
	}
	if dataType == pmml.Double && f.DataType != pmml.Double {
		dataType = f.DataType
	}
	if f.OpType != opType || f.DataType != dataType {
		logging.EncoderDebug("Retyped field %s (%s, %s) -> (%s, %s)", name, f.OpType, f.DataType, opType, dataType)
	}
	f.OpType = opType
	f.DataType = dataType
	return f.clone(), nil
}

// CommitFieldType sets a field's types and freezes it.
// Committing an already frozen field fails; the caller must derive a new field instead.
func (e *Encoder) CommitFieldType(name string, opType pmml.OpType, dataType pmml.DataType) (Field, error) {
	f, err := e.require(name)
	if err != nil {
		return Field{}, err
	}
	if f.Frozen {
		return Field{}, consistencyError(name, ErrFrozenField, "decorate a field in one step, not in multiple steps")
	}
	f.OpType = opType
	f.DataType = dataType
	f.Frozen = true
	logging.EncoderDebug("Committed field %s (%s, %s)", name, opType, dataType)
	return f.clone(), nil
}

// Decorate merges domain annotations into a data field.
func (e *Encoder) Decorate(name string, d Decoration) error {
	f, err := e.require(name)
	if err != nil {
		return err
	}
	if f.Kind != DataKind {
		return consistencyError(name, ErrTypeMismatch, "only data fields carry domain decorations")
	}
	dst := &f.Decoration
	if d.DisplayName != "" {
		dst.DisplayName = d.DisplayName
	}
	dst.Intervals = append(dst.Intervals, d.Intervals...)
	dst.InvalidValues = append(dst.InvalidValues, d.InvalidValues...)
	dst.MissingValues = append(dst.MissingValues, d.MissingValues...)
	if d.MissingValueTreatment != "" {
		dst.MissingValueTreatment = d.MissingValueTreatment
	}
	if d.MissingValueReplacement != "" {
		dst.MissingValueReplacement = d.MissingValueReplacement
	}
	if d.InvalidValueTreatment != "" {
		dst.InvalidValueTreatment = d.InvalidValueTreatment
	}
	if d.InvalidValueReplacement != "" {
		dst.InvalidValueReplacement = d.InvalidValueReplacement
	}
	if d.OutlierTreatment != "" {
		dst.OutlierTreatment = d.OutlierTreatment
		dst.LowValue = d.LowValue
		dst.HighValue = d.HighValue
	}
	return nil
}

// ToCategorical assigns a field's closed category domain.
// Reassigning an identical domain is a no-op; a different one is a consistency error.
// A field committed as continuous cannot take a domain.
func (e *Encoder) ToCategorical(name string, values []string) error {
	f, err := e.require(name)
	if err != nil {
		return err
	}
	if f.Frozen && f.OpType == pmml.Continuous {
		return consistencyError(name, ErrFrozenField, "committed as %s", f.OpType)
	}
	if f.Values != nil {
		if slices.Equal(f.Values, values) {
			return nil
		}
		return consistencyError(name, ErrConflictingDomain, "%v vs %v", f.Values, values)
	}
	f.Values = slices.Clone(values)
	if f.Values == nil {
		f.Values = []string{}
	}
	if f.OpType == pmml.Continuous {
		f.OpType = pmml.Categorical
	}
	logging.EncoderDebug("Assigned domain of %s: %v", name, values)
	return nil
}

// =============================================================================
// DERIVED FIELDS
// =============================================================================

// CreateDerivedField registers a field defined by expr.
// A field with the same name and a structurally equal expression is returned as is,
// without growing the catalogue.
func (e *Encoder) CreateDerivedField(name string, opType pmml.OpType, dataType pmml.DataType, expr pmml.Expression) (Field, error) {
	if f, ok := e.fields[name]; ok {
		if f.Kind != DerivedKind {
			return Field{}, consistencyError(name, ErrDuplicateField, "defined as a data field")
		}
		if !reflect.DeepEqual(f.Expression, expr) {
			return Field{}, consistencyError(name, ErrDuplicateField, "defined by a different expression")
		}
		if f.OpType != opType || f.DataType != dataType {
			return Field{}, consistencyError(name, ErrTypeMismatch, "(%s, %s) vs (%s, %s)", f.OpType, f.DataType, opType, dataType)
		}
		logging.EncoderDebug("Reused derived field %s", name)
		return f.clone(), nil
	}

	f := &Field{Name: name, Kind: DerivedKind, OpType: opType, DataType: dataType, Expression: expr}
	e.add(f)
	logging.EncoderDebug("Created derived field %s = %s", name, pmml.Format(expr))
	return f.clone(), nil
}

// EnsureDerivedField returns the named derived field, calling supplier only when it is absent.
func (e *Encoder) EnsureDerivedField(name string, opType pmml.OpType, dataType pmml.DataType, supplier func() (pmml.Expression, error)) (Field, error) {
	if f, ok := e.fields[name]; ok {
		if f.Kind != DerivedKind {
			return Field{}, consistencyError(name, ErrDuplicateField, "defined as a data field")
		}
		return f.clone(), nil
	}
	expr, err := supplier()
	if err != nil {
		return Field{}, err
	}
	return e.CreateDerivedField(name, opType, dataType, expr)
}

// RenameFeature moves the derived field behind f to a new name and returns the renamed feature.
// No new derived field is created. Input data fields cannot be renamed.
func (e *Encoder) RenameFeature(f Feature, name string) (Feature, error) {
	old := f.Name()
	if old == name {
		return f, nil
	}
	field, err := e.require(old)
	if err != nil {
		return nil, err
	}
	if field.Kind == DataKind {
		return nil, consistencyError(old, ErrInputRename, "")
	}
	if _, ok := e.fields[name]; ok {
		return nil, consistencyError(name, ErrDuplicateField, "rename target of '%s'", old)
	}
	for _, n := range e.order {
		other := e.fields[n]
		if other.Kind == DerivedKind && slices.Contains(pmml.ExpressionFields(other.Expression), old) {
			return nil, consistencyError(old, ErrDuplicateField, "still referenced by '%s'", other.Name)
		}
	}

	e.remove(old)
	field.Name = name
	e.add(field)
	logging.EncoderDebug("Renamed derived field %s -> %s", old, name)
	return f.withName(name), nil
}

// =============================================================================
// FEATURE CHECKS
// =============================================================================

// CheckFeature verifies that a feature agrees with its catalogue entry.
func (e *Encoder) CheckFeature(f Feature) error {
	field, err := e.require(f.Name())
	if err != nil {
		return err
	}
	if field.DataType != f.DataType() {
		return consistencyError(f.Name(), ErrTypeMismatch, "feature is %s, field is %s", f.DataType(), field.DataType)
	}
	return nil
}

// toContinuousField switches an unfrozen field's operational type to continuous.
func (e *Encoder) toContinuousField(name string) (*Field, error) {
	f, err := e.require(name)
	if err != nil {
		return nil, err
	}
	if f.OpType == pmml.Continuous {
		return f, nil
	}
	if f.Frozen || f.Values != nil {
		return nil, consistencyError(name, ErrNotContinuous, "field is %s", f.OpType)
	}
	f.OpType = pmml.Continuous
	return f, nil
}
