package node

import (
	"strings"
)

// =============================================================================
// TYPED ACCESSORS
// =============================================================================
//
// Required accessors fail with ErrMissingAttribute when the attribute is absent
// or None. Optional accessors return a zero value (or the given default) instead.
// Every failure is an *AttributeError naming the attribute and the owning class.

func (n *Node) required(name string) (any, error) {
	v, ok := n.Attrs[name]
	if !ok || v == nil {
		return nil, n.attrError(name, ErrMissingAttribute, "")
	}
	return v, nil
}

func (n *Node) typeError(name, want string, v any) error {
	return n.attrError(name, ErrAttributeType, "expected %s, got %s", want, TypeName(v))
}

// GetString returns a required str attribute.
func (n *Node) GetString(name string) (string, error) {
	v, err := n.required(name)
	if err != nil {
		return "", err
	}
	s, ok := AsString(v)
	if !ok {
		return "", n.typeError(name, "str", v)
	}
	return s, nil
}

// GetOptionalString returns a str attribute and whether it was set.
func (n *Node) GetOptionalString(name string) (string, bool, error) {
	if !n.Has(name) {
		return "", false, nil
	}
	s, err := n.GetString(name)
	return s, err == nil, err
}

// GetInt returns a required int attribute.
func (n *Node) GetInt(name string) (int, error) {
	v, err := n.required(name)
	if err != nil {
		return 0, err
	}
	i, ok := AsInt(v)
	if !ok {
		return 0, n.typeError(name, "int", v)
	}
	return i, nil
}

// GetOptionalInt returns an int attribute and whether it was set.
func (n *Node) GetOptionalInt(name string) (int, bool, error) {
	if !n.Has(name) {
		return 0, false, nil
	}
	i, err := n.GetInt(name)
	return i, err == nil, err
}

// GetNumber returns a required numeric attribute.
func (n *Node) GetNumber(name string) (float64, error) {
	v, err := n.required(name)
	if err != nil {
		return 0, err
	}
	f, ok := AsNumber(v)
	if !ok {
		return 0, n.typeError(name, "number", v)
	}
	return f, nil
}

// GetOptionalNumber returns a numeric attribute and whether it was set.
func (n *Node) GetOptionalNumber(name string) (float64, bool, error) {
	if !n.Has(name) {
		return 0, false, nil
	}
	f, err := n.GetNumber(name)
	return f, err == nil, err
}

// GetBool returns a required bool attribute.
func (n *Node) GetBool(name string) (bool, error) {
	v, err := n.required(name)
	if err != nil {
		return false, err
	}
	b, ok := AsBool(v)
	if !ok {
		return false, n.typeError(name, "bool", v)
	}
	return b, nil
}

// GetOptionalBool returns a bool attribute, or def when it is absent or None.
func (n *Node) GetOptionalBool(name string, def bool) (bool, error) {
	if !n.Has(name) {
		return def, nil
	}
	return n.GetBool(name)
}

// GetEnum returns a required str attribute restricted to the allowed values.
func (n *Node) GetEnum(name string, allowed ...string) (string, error) {
	s, err := n.GetString(name)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", n.attrError(name, ErrUnsupportedValue, "'%s' not in [%s]", s, strings.Join(allowed, ", "))
}

// GetOptionalEnum returns an enum attribute, or def when it is absent or None.
func (n *Node) GetOptionalEnum(name, def string, allowed ...string) (string, error) {
	if !n.Has(name) {
		return def, nil
	}
	return n.GetEnum(name, allowed...)
}

// GetList returns the elements of a required list, tuple or 1-D array attribute.
func (n *Node) GetList(name string) ([]any, error) {
	v, err := n.required(name)
	if err != nil {
		return nil, err
	}
	l, ok := AsList(v)
	if !ok {
		return nil, n.typeError(name, "list", v)
	}
	return l, nil
}

// GetOptionalList returns a list attribute, or nil when it is absent or None.
func (n *Node) GetOptionalList(name string) ([]any, error) {
	if !n.Has(name) {
		return nil, nil
	}
	return n.GetList(name)
}

// GetStringList returns a required list of str.
func (n *Node) GetStringList(name string) ([]string, error) {
	l, err := n.GetList(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(l))
	for i, v := range l {
		s, ok := AsString(v)
		if !ok {
			return nil, n.attrError(name, ErrAttributeType, "element %d: expected str, got %s", i, TypeName(v))
		}
		out[i] = s
	}
	return out, nil
}

// GetOptionalStringList returns a list of str, or nil when it is absent or None.
func (n *Node) GetOptionalStringList(name string) ([]string, error) {
	if !n.Has(name) {
		return nil, nil
	}
	return n.GetStringList(name)
}

// GetNumberList returns a required list of numbers.
func (n *Node) GetNumberList(name string) ([]float64, error) {
	l, err := n.GetList(name)
	if err != nil {
		return nil, err
	}
	return n.numbers(name, l)
}

// GetOptionalNumberList returns a list of numbers, or nil when it is absent or None.
func (n *Node) GetOptionalNumberList(name string) ([]float64, error) {
	if !n.Has(name) {
		return nil, nil
	}
	return n.GetNumberList(name)
}

func (n *Node) numbers(name string, l []any) ([]float64, error) {
	out := make([]float64, len(l))
	for i, v := range l {
		f, ok := AsNumber(v)
		if !ok {
			return nil, n.attrError(name, ErrAttributeType, "element %d: expected number, got %s", i, TypeName(v))
		}
		out[i] = f
	}
	return out, nil
}

// GetArray returns a required ndarray attribute. Plain lists are accepted as 1-D arrays.
func (n *Node) GetArray(name string) (*Array, error) {
	v, err := n.required(name)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *Array:
		return x, nil
	case []any:
		return NewArray(x...), nil
	case Tuple:
		return NewArray(x...), nil
	default:
		return nil, n.typeError(name, "ndarray", v)
	}
}

// GetMatrix returns a required numeric ndarray as rows.
// A 1-D array becomes a single row; a list of lists is accepted as well.
func (n *Node) GetMatrix(name string) ([][]float64, error) {
	v, err := n.required(name)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	switch x := v.(type) {
	case *Array:
		if x.Ndim() > 2 {
			return nil, n.attrError(name, ErrAttributeType, "expected at most 2 dimensions, got %d", x.Ndim())
		}
		rows = x.Rows()
	case []any:
		if len(x) > 0 {
			if _, nested := AsList(x[0]); nested {
				for _, r := range x {
					row, ok := AsList(r)
					if !ok {
						return nil, n.typeError(name, "list of lists", v)
					}
					rows = append(rows, row)
				}
				break
			}
		}
		rows = [][]any{x}
	default:
		return nil, n.typeError(name, "ndarray", v)
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		f, err := n.numbers(name, row)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// GetListOfLists returns a required list whose elements are lists or arrays,
// such as the fitted categories_ of an encoder.
func (n *Node) GetListOfLists(name string) ([][]any, error) {
	l, err := n.GetList(name)
	if err != nil {
		return nil, err
	}
	out := make([][]any, len(l))
	for i, v := range l {
		inner, ok := AsList(v)
		if !ok {
			return nil, n.attrError(name, ErrAttributeType, "element %d: expected list, got %s", i, TypeName(v))
		}
		out[i] = inner
	}
	return out, nil
}

// GetTupleList returns a required list of tuples, such as Pipeline.steps.
// Each tuple must have exactly size elements. Lists are accepted in place of tuples.
func (n *Node) GetTupleList(name string, size int) ([]Tuple, error) {
	l, err := n.GetList(name)
	if err != nil {
		return nil, err
	}
	out := make([]Tuple, len(l))
	for i, v := range l {
		var t Tuple
		switch x := v.(type) {
		case Tuple:
			t = x
		case []any:
			t = Tuple(x)
		default:
			return nil, n.attrError(name, ErrAttributeType, "element %d: expected tuple, got %s", i, TypeName(v))
		}
		if len(t) != size {
			return nil, n.attrError(name, ErrAttributeType, "element %d: expected %d-tuple, got %d elements", i, size, len(t))
		}
		out[i] = t
	}
	return out, nil
}

// GetNode returns a required nested object.
func (n *Node) GetNode(name string) (*Node, error) {
	v, err := n.required(name)
	if err != nil {
		return nil, err
	}
	child, ok := v.(*Node)
	if !ok {
		return nil, n.typeError(name, "object", v)
	}
	return child, nil
}

// GetDict returns a required dict attribute.
func (n *Node) GetDict(name string) (map[string]any, error) {
	v, err := n.required(name)
	if err != nil {
		return nil, err
	}
	d, ok := v.(map[string]any)
	if !ok {
		return nil, n.typeError(name, "dict", v)
	}
	return d, nil
}

// GetOptionalDict returns a dict attribute, or nil when it is absent or None.
func (n *Node) GetOptionalDict(name string) (map[string]any, error) {
	if !n.Has(name) {
		return nil, nil
	}
	return n.GetDict(name)
}
