package translator

import (
	"strconv"

	"skl2pmml/internal/pmml"

	sitter "github.com/smacker/go-tree-sitter"
)

var comparisonFunctions = map[string]string{
	"==": pmml.FuncEqual,
	"!=": pmml.FuncNotEqual,
	"<":  pmml.FuncLessThan,
	"<=": pmml.FuncLessOrEqual,
	">":  pmml.FuncGreaterThan,
	">=": pmml.FuncGreaterOrEqual,
}

// inverseFunctions maps a boolean function to its negation.
var inverseFunctions = map[string]string{
	pmml.FuncEqual:          pmml.FuncNotEqual,
	pmml.FuncNotEqual:       pmml.FuncEqual,
	pmml.FuncLessThan:       pmml.FuncGreaterOrEqual,
	pmml.FuncLessOrEqual:    pmml.FuncGreaterThan,
	pmml.FuncGreaterThan:    pmml.FuncLessOrEqual,
	pmml.FuncGreaterOrEqual: pmml.FuncLessThan,
	pmml.FuncIsIn:           pmml.FuncIsNotIn,
	pmml.FuncIsNotIn:        pmml.FuncIsIn,
	pmml.FuncIsMissing:      pmml.FuncIsNotMissing,
	pmml.FuncIsNotMissing:   pmml.FuncIsMissing,
}

// expression lowers n into an expression operand.
func (v *visitor) expression(n *sitter.Node) (operand, error) {
	n = unwrap(n)

	if op, ok, err := v.literal(n); ok || err != nil {
		return op, err
	}

	switch n.Type() {
	case "subscript":
		return v.column(n)

	case "boolean_operator":
		left, err := v.expression(n.ChildByFieldName("left"))
		if err != nil {
			return operand{}, err
		}
		right, err := v.expression(n.ChildByFieldName("right"))
		if err != nil {
			return operand{}, err
		}
		function := pmml.FuncAnd
		if n.ChildByFieldName("operator").Type() == "or" {
			function = pmml.FuncOr
		}
		return apply(pmml.Boolean, function, left, right), nil

	case "not_operator":
		arg, err := v.expression(n.ChildByFieldName("argument"))
		if err != nil {
			return operand{}, err
		}
		if v.negateComparisons {
			if a, ok := arg.expr.(*pmml.Apply); ok {
				if inverse, ok := inverseFunctions[a.Function]; ok {
					return operand{expr: pmml.NewApply(inverse, a.Operands...), dataType: pmml.Boolean}, nil
				}
			}
		}
		return apply(pmml.Boolean, pmml.FuncNot, arg), nil

	case "comparison_operator":
		return v.comparison(n)

	case "binary_operator":
		return v.arithmetic(n)

	case "unary_operator":
		arg, err := v.expression(n.ChildByFieldName("argument"))
		if err != nil {
			return operand{}, err
		}
		switch n.ChildByFieldName("operator").Type() {
		case "+":
			return arg, nil
		case "-":
			return apply(arg.dataType, pmml.FuncMultiply, constant("-1", pmml.Integer), arg), nil
		}
		return operand{}, v.unsupportedKind("unary " + n.ChildByFieldName("operator").Type())

	case "conditional_expression":
		if n.NamedChildCount() != 3 {
			return operand{}, v.unsupported(n)
		}
		body, err := v.expression(n.NamedChild(0))
		if err != nil {
			return operand{}, err
		}
		cond, err := v.expression(n.NamedChild(1))
		if err != nil {
			return operand{}, err
		}
		alt, err := v.expression(n.NamedChild(2))
		if err != nil {
			return operand{}, err
		}
		return apply(common(body.dataType, alt.dataType), pmml.FuncIf, cond, body, alt), nil

	case "call":
		return v.call(n)
	}

	return operand{}, v.unsupported(n)
}

func apply(dataType pmml.DataType, function string, args ...operand) operand {
	exprs := make([]pmml.Expression, len(args))
	for i, a := range args {
		exprs[i] = a.expr
	}
	return operand{expr: pmml.NewApply(function, exprs...), dataType: dataType}
}

// comparison lowers a two-operand comparison, identity test or membership test.
func (v *visitor) comparison(n *sitter.Node) (operand, error) {
	left, operator, right, err := v.splitComparison(n)
	if err != nil {
		return operand{}, err
	}

	lhs, err := v.expression(left)
	if err != nil {
		return operand{}, err
	}

	switch operator {
	case "is", "is not":
		if unwrap(right).Type() != "none" {
			return operand{}, v.unsupportedKind("identity test against " + unwrap(right).Type())
		}
		function := pmml.FuncIsMissing
		if operator == "is not" {
			function = pmml.FuncIsNotMissing
		}
		return apply(pmml.Boolean, function, lhs), nil

	case "in", "not in":
		items, ok, err := v.listLiteral(right)
		if err != nil {
			return operand{}, err
		}
		if !ok {
			return operand{}, v.unsupportedKind("membership test against " + unwrap(right).Type())
		}
		function := pmml.FuncIsIn
		if operator == "not in" {
			function = pmml.FuncIsNotIn
		}
		return apply(pmml.Boolean, function, append([]operand{lhs}, items...)...), nil
	}

	function, ok := comparisonFunctions[operator]
	if !ok {
		return operand{}, v.unsupportedKind("comparison " + operator)
	}

	// Equality against a singleton list is a membership test
	if operator == "==" || operator == "!=" {
		if items, ok, err := v.listLiteral(right); ok {
			if err != nil {
				return operand{}, err
			}
			if len(items) != 1 {
				return operand{}, v.unsupportedKind("equality against a list of " + strconv.Itoa(len(items)))
			}
			function = pmml.FuncIsIn
			if operator == "!=" {
				function = pmml.FuncIsNotIn
			}
			return apply(pmml.Boolean, function, lhs, items[0]), nil
		}
	}

	rhs, err := v.expression(right)
	if err != nil {
		return operand{}, err
	}
	return apply(pmml.Boolean, function, lhs, rhs), nil
}

// splitComparison returns the operands and operator of a non-chained comparison.
func (v *visitor) splitComparison(n *sitter.Node) (left *sitter.Node, operator string, right *sitter.Node, err error) {
	var operands []*sitter.Node
	var operators []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch {
		case child.Type() == "comment":
		case child.IsNamed():
			operands = append(operands, child)
		default:
			operators = append(operators, child.Type())
		}
	}
	if len(operands) != 2 || len(operators) != 1 {
		return nil, "", nil, v.unsupportedKind("chained comparison")
	}
	return operands[0], operators[0], operands[1], nil
}

// arithmetic lowers binary operators, including string concatenation.
func (v *visitor) arithmetic(n *sitter.Node) (operand, error) {
	left, err := v.expression(n.ChildByFieldName("left"))
	if err != nil {
		return operand{}, err
	}
	right, err := v.expression(n.ChildByFieldName("right"))
	if err != nil {
		return operand{}, err
	}

	operator := n.ChildByFieldName("operator").Type()
	switch operator {
	case "+":
		if left.dataType == pmml.String || right.dataType == pmml.String {
			return apply(pmml.String, pmml.FuncConcat, left, right), nil
		}
		return apply(common(left.dataType, right.dataType), pmml.FuncAdd, left, right), nil
	case "-":
		return apply(common(left.dataType, right.dataType), pmml.FuncSubtract, left, right), nil
	case "*":
		return apply(common(left.dataType, right.dataType), pmml.FuncMultiply, left, right), nil
	case "/":
		return apply(pmml.Double, pmml.FuncDivide, left, right), nil
	case "//":
		quotient := apply(pmml.Double, pmml.FuncDivide, left, right)
		return apply(pmml.Integer, pmml.FuncFloor, quotient), nil
	case "%":
		return apply(common(left.dataType, right.dataType), pmml.FuncModulo, left, right), nil
	case "**":
		return apply(pmml.Double, pmml.FuncPow, left, right), nil
	}
	return operand{}, v.unsupportedKind("operator " + operator)
}

// common returns the type both operands can be widened to.
func common(a, b pmml.DataType) pmml.DataType {
	switch {
	case a == "":
		return b
	case b == "" || a == b:
		return a
	case a == pmml.Double || b == pmml.Double:
		return pmml.Double
	case a == pmml.Float || b == pmml.Float:
		return pmml.Float
	case a.IsNumeric() && b.IsNumeric():
		return pmml.Integer
	case a == pmml.String || b == pmml.String:
		return pmml.String
	}
	return a
}
