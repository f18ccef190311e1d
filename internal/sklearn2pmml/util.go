package sklearn2pmml

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
	"skl2pmml/internal/step"
)

// parseDType maps a numpy or pandas dtype name onto a PMML data type.
func parseDType(dtype string) (pmml.DataType, bool) {
	switch dtype = strings.TrimPrefix(dtype, "numpy."); {
	case dtype == "int", strings.HasPrefix(dtype, "int"), strings.HasPrefix(dtype, "uint"), strings.HasPrefix(dtype, "Int"), strings.HasPrefix(dtype, "UInt"):
		return pmml.Integer, true
	case dtype == "float32", dtype == "Float32":
		return pmml.Float, true
	case dtype == "float", dtype == "float64", dtype == "Float64":
		return pmml.Double, true
	case dtype == "str", dtype == "string", dtype == "object", dtype == "O", dtype == "category":
		return pmml.String, true
	case dtype == "bool", dtype == "boolean":
		return pmml.Boolean, true
	case dtype == "datetime64[D]":
		return pmml.Date, true
	case strings.HasPrefix(dtype, "datetime64"):
		return pmml.DateTime, true
	}
	return "", false
}

// dtypeAttribute reads the first present dtype attribute. The value is either a
// dtype name or a dtype object carrying its name.
func dtypeAttribute(n *node.Node, names ...string) (pmml.DataType, bool, error) {
	for _, name := range names {
		v, ok := n.Get(name)
		if !ok || v == nil {
			continue
		}
		s, ok := node.AsString(v)
		if !ok {
			inner, isNode := v.(*node.Node)
			if !isNode {
				return "", false, &node.AttributeError{Class: n.ClassName(), Attribute: name, Err: node.ErrAttributeType, Detail: "expected dtype, got " + node.TypeName(v)}
			}
			if s, ok = node.AsString(inner.Attrs["name"]); !ok {
				s = inner.Class
			}
		}
		dataType, ok := parseDType(s)
		if !ok {
			return "", false, &node.AttributeError{Class: n.ClassName(), Attribute: name, Err: node.ErrUnsupportedValue, Detail: "dtype '" + s + "'"}
		}
		return dataType, true, nil
	}
	return "", false, nil
}

// formatValue renders a raw value as a literal of the given data type.
func formatValue(v any, dataType pmml.DataType) string {
	if x, ok := node.AsNumber(v); ok {
		switch dataType {
		case pmml.Integer:
			if i, ok := node.AsInt(v); ok {
				return strconv.Itoa(i)
			}
		case pmml.Double, pmml.Float:
			return step.FormatNumber(x)
		}
	}
	return node.FormatValue(v)
}

func isNaN(v any) bool {
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

// scalarOrList normalizes an attribute that holds either one value or a list of them.
func scalarOrList(v any) []any {
	if v == nil {
		return nil
	}
	if l, ok := node.AsList(v); ok {
		return l
	}
	return []any{v}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
