// Package pmml holds the output document model: fields, expressions, predicates,
// model elements, and their XML encoding.
package pmml

// OpType is the operational type of a field.
type OpType string

const (
	Continuous  OpType = "continuous"
	Categorical OpType = "categorical"
	Ordinal     OpType = "ordinal"
)

// DataType is the value type of a field or constant.
type DataType string

const (
	String   DataType = "string"
	Integer  DataType = "integer"
	Float    DataType = "float"
	Double   DataType = "double"
	Boolean  DataType = "boolean"
	Date     DataType = "date"
	DateTime DataType = "dateTime"
)

// IsNumeric reports whether values of the type support arithmetic.
func (d DataType) IsNumeric() bool {
	switch d {
	case Integer, Float, Double:
		return true
	}
	return false
}

// MiningFunction is the kind of prediction a model makes.
type MiningFunction string

const (
	Regression     MiningFunction = "regression"
	Classification MiningFunction = "classification"
	Clustering     MiningFunction = "clustering"
)

// UsageType is the role of a MiningField.
type UsageType string

const (
	Active UsageType = "active"
	Target UsageType = "target"
)

// Function names used by Apply elements.
const (
	FuncAnd            = "and"
	FuncOr             = "or"
	FuncNot            = "not"
	FuncEqual          = "equal"
	FuncNotEqual       = "notEqual"
	FuncLessThan       = "lessThan"
	FuncLessOrEqual    = "lessOrEqual"
	FuncGreaterThan    = "greaterThan"
	FuncGreaterOrEqual = "greaterOrEqual"
	FuncIsIn           = "isIn"
	FuncIsNotIn        = "isNotIn"
	FuncIsMissing      = "isMissing"
	FuncIsNotMissing   = "isNotMissing"
	FuncIf             = "if"
	FuncAdd            = "+"
	FuncSubtract       = "-"
	FuncMultiply       = "*"
	FuncDivide         = "/"
	FuncModulo         = "modulo"
	FuncPow            = "pow"
	FuncFloor          = "floor"
	FuncCeil           = "ceil"
	FuncRound          = "round"
	FuncAbs            = "abs"
	FuncExp            = "exp"
	FuncLn             = "ln"
	FuncLog10          = "log10"
	FuncSqrt           = "sqrt"
	FuncMin            = "min"
	FuncMax            = "max"
	FuncConcat         = "concat"
	FuncLowercase      = "lowercase"
	FuncUppercase      = "uppercase"
	FuncTrimBlanks     = "trimBlanks"
	FuncStringLength   = "stringLength"
)

// Simple predicate operators.
const (
	OpEqual          = "equal"
	OpNotEqual       = "notEqual"
	OpLessThan       = "lessThan"
	OpLessOrEqual    = "lessOrEqual"
	OpGreaterThan    = "greaterThan"
	OpGreaterOrEqual = "greaterOrEqual"
	OpIsMissing      = "isMissing"
	OpIsNotMissing   = "isNotMissing"
)

// Compound and set predicate operators.
const (
	BoolAnd  = "and"
	BoolOr   = "or"
	BoolXor  = "xor"
	SetIsIn  = "isIn"
	SetNotIn = "isNotIn"
)
