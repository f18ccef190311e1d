package step

import (
	"strings"

	"skl2pmml/internal/node"
	"skl2pmml/internal/pmml"
)

// ClassValues renders class labels and infers their common data type.
// Mixed or non-scalar labels fall back to strings.
func ClassValues(classes []any) ([]string, pmml.DataType) {
	dataType := pmml.DataType("")
	for _, c := range classes {
		var t pmml.DataType
		switch c.(type) {
		case bool:
			t = pmml.Boolean
		case int, int64:
			t = pmml.Integer
		case float64, float32:
			t = pmml.Double
		default:
			t = pmml.String
		}
		switch {
		case dataType == "":
			dataType = t
		case dataType == t:
		case dataType.IsNumeric() && t.IsNumeric():
			dataType = pmml.Double
		default:
			dataType = pmml.String
		}
	}
	if dataType == "" {
		dataType = pmml.String
	}

	values := make([]string, len(classes))
	for i, c := range classes {
		if dataType == pmml.Double {
			if n, ok := node.AsNumber(c); ok {
				values[i] = FormatNumber(n)
				continue
			}
		}
		values[i] = node.FormatValue(c)
	}
	return values, dataType
}

// FormatNumber renders a number for a PMML attribute or constant.
func FormatNumber(v float64) string {
	return node.FormatValue(v)
}

// FieldName renders the name of a derived field, such as "standardScaler(x)".
func FieldName(function string, args ...string) string {
	return function + "(" + strings.Join(args, ", ") + ")"
}
