package node

import (
	"fmt"
	"math"
	"strconv"
)

// =============================================================================
// VALUE EXTRACTION UTILITIES
// =============================================================================
//
// These functions provide safe, type-aware conversion of raw attribute values.
// Attribute values can be any of these Go types (see Decode):
//   - nil:            Python None
//   - bool:           Python bool, numpy.bool_
//   - int64:          Python int, numpy integer scalars
//   - float64:        Python float, numpy floating scalars
//   - string:         Python str
//   - []any, Tuple:   Python list / tuple
//   - *Array:         numpy.ndarray
//   - map[string]any: Python dict
//   - *Node:          any other object

// AsString extracts a string value.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsInt extracts an integer value. Floats are accepted when integral.
func AsInt(v any) (int, bool) {
	switch x := v.(type) {
	case int64:
		return int(x), true
	case int:
		return x, true
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return int(x), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsNumber extracts a numeric value.
func AsNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

// AsBool extracts a boolean value.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsList extracts the elements of a list, tuple or one-dimensional array.
func AsList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case Tuple:
		return []any(x), true
	case *Array:
		if x.Ndim() > 1 {
			return nil, false
		}
		return x.Values, true
	default:
		return nil, false
	}
}

// FormatValue renders a scalar the way it appears in a category domain.
// Integral floats keep a trailing ".0" so float and integer categories stay distinct.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		if x == math.Trunc(x) && !math.IsInf(x, 0) && math.Abs(x) < 1e15 {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// TypeName describes a raw value for error messages.
func TypeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		return "bool"
	case int64, int:
		return "int"
	case float64, float32:
		return "float"
	case string:
		return "str"
	case []any:
		return "list"
	case Tuple:
		return "tuple"
	case *Array:
		return "ndarray"
	case map[string]any:
		return "dict"
	case *Node:
		return x.ClassName()
	default:
		return fmt.Sprintf("%T", v)
	}
}
