package translator

import (
	"skl2pmml/internal/pmml"

	sitter "github.com/smacker/go-tree-sitter"
)

var comparisonOperators = map[string]string{
	"==": pmml.OpEqual,
	"!=": pmml.OpNotEqual,
	"<":  pmml.OpLessThan,
	"<=": pmml.OpLessOrEqual,
	">":  pmml.OpGreaterThan,
	">=": pmml.OpGreaterOrEqual,
}

// flippedOperators rewrites `c op x` as `x flipped(op) c`.
var flippedOperators = map[string]string{
	pmml.OpEqual:          pmml.OpEqual,
	pmml.OpNotEqual:       pmml.OpNotEqual,
	pmml.OpLessThan:       pmml.OpGreaterThan,
	pmml.OpLessOrEqual:    pmml.OpGreaterOrEqual,
	pmml.OpGreaterThan:    pmml.OpLessThan,
	pmml.OpGreaterOrEqual: pmml.OpLessOrEqual,
}

var negatedOperators = map[string]string{
	pmml.OpEqual:          pmml.OpNotEqual,
	pmml.OpNotEqual:       pmml.OpEqual,
	pmml.OpLessThan:       pmml.OpGreaterOrEqual,
	pmml.OpLessOrEqual:    pmml.OpGreaterThan,
	pmml.OpGreaterThan:    pmml.OpLessOrEqual,
	pmml.OpGreaterOrEqual: pmml.OpLessThan,
	pmml.OpIsMissing:      pmml.OpIsNotMissing,
	pmml.OpIsNotMissing:   pmml.OpIsMissing,
}

// predicate lowers n into a predicate tree.
func (v *visitor) predicate(n *sitter.Node) (pmml.Predicate, error) {
	n = unwrap(n)

	switch n.Type() {
	case "true":
		return &pmml.True{}, nil
	case "false":
		return &pmml.False{}, nil

	case "boolean_operator":
		left, err := v.predicate(n.ChildByFieldName("left"))
		if err != nil {
			return nil, err
		}
		right, err := v.predicate(n.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		op := pmml.BoolAnd
		if n.ChildByFieldName("operator").Type() == "or" {
			op = pmml.BoolOr
		}
		return compound(op, left, right), nil

	case "not_operator":
		arg, err := v.predicate(n.ChildByFieldName("argument"))
		if err != nil {
			return nil, err
		}
		return negate(arg), nil

	case "comparison_operator":
		return v.comparisonPredicate(n)

	case "subscript":
		// A bare boolean column reads as `X[i] == True`
		op, err := v.column(n)
		if err != nil {
			return nil, err
		}
		if op.dataType != pmml.Boolean {
			return nil, v.invalidPredicate(string(op.dataType) + " column " + v.text(n))
		}
		return pmml.NewSimplePredicate(op.field, pmml.OpEqual, "true"), nil
	}

	switch n.Type() {
	case "binary_operator", "unary_operator", "conditional_expression", "call",
		"integer", "float", "string", "none", "list", "tuple":
		return nil, v.invalidPredicate(n.Type())
	}
	return nil, v.unsupported(n)
}

// compound joins two predicates, flattening children that use the same operator.
func compound(op string, left, right pmml.Predicate) pmml.Predicate {
	var children []pmml.Predicate
	for _, p := range []pmml.Predicate{left, right} {
		if c, ok := p.(*pmml.CompoundPredicate); ok && c.BooleanOperator == op {
			children = append(children, c.Predicates...)
			continue
		}
		children = append(children, p)
	}
	return pmml.NewCompoundPredicate(op, children...)
}

// negate pushes a logical negation down to the leaves.
func negate(p pmml.Predicate) pmml.Predicate {
	switch x := p.(type) {
	case *pmml.True:
		return &pmml.False{}
	case *pmml.False:
		return &pmml.True{}
	case *pmml.SimplePredicate:
		return pmml.NewSimplePredicate(x.Field, negatedOperators[x.Operator], x.Value)
	case *pmml.SimpleSetPredicate:
		op := pmml.SetNotIn
		if x.BooleanOperator == pmml.SetNotIn {
			op = pmml.SetIsIn
		}
		return &pmml.SimpleSetPredicate{Field: x.Field, BooleanOperator: op, Array: x.Array}
	case *pmml.CompoundPredicate:
		op := pmml.BoolOr
		if x.BooleanOperator == pmml.BoolOr {
			op = pmml.BoolAnd
		}
		children := make([]pmml.Predicate, len(x.Predicates))
		for i, c := range x.Predicates {
			children[i] = negate(c)
		}
		return pmml.NewCompoundPredicate(op, children...)
	}
	return p
}

// comparisonPredicate lowers a field-vs-constant comparison.
func (v *visitor) comparisonPredicate(n *sitter.Node) (pmml.Predicate, error) {
	left, operator, right, err := v.splitComparison(n)
	if err != nil {
		return nil, err
	}

	switch operator {
	case "is", "is not":
		field, err := v.fieldOperand(left)
		if err != nil {
			return nil, err
		}
		if unwrap(right).Type() != "none" {
			return nil, v.unsupportedKind("identity test against " + unwrap(right).Type())
		}
		op := pmml.OpIsMissing
		if operator == "is not" {
			op = pmml.OpIsNotMissing
		}
		return pmml.NewSimplePredicate(field.field, op, ""), nil

	case "in", "not in":
		field, err := v.fieldOperand(left)
		if err != nil {
			return nil, err
		}
		items, ok, err := v.listLiteral(right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, v.unsupportedKind("membership test against " + unwrap(right).Type())
		}
		op := pmml.SetIsIn
		if operator == "not in" {
			op = pmml.SetNotIn
		}
		return setPredicate(field.field, op, items), nil
	}

	op, ok := comparisonOperators[operator]
	if !ok {
		return nil, v.unsupportedKind("comparison " + operator)
	}

	// Whichever side is the literal becomes the value; the other must be a column
	if _, isLiteral, _ := v.literal(left); isLiteral {
		left, right = right, left
		op = flippedOperators[op]
	}
	field, err := v.fieldOperand(left)
	if err != nil {
		return nil, err
	}

	if operator == "==" || operator == "!=" {
		if items, ok, err := v.listLiteral(right); ok {
			if err != nil {
				return nil, err
			}
			if len(items) != 1 {
				return nil, v.unsupportedKind("equality against a list")
			}
			setOp := pmml.SetIsIn
			if operator == "!=" {
				setOp = pmml.SetNotIn
			}
			return setPredicate(field.field, setOp, items), nil
		}
	}

	value, isLiteral, err := v.literal(right)
	if err != nil {
		return nil, err
	}
	if !isLiteral {
		return nil, v.invalidPredicate("comparison between " + v.text(left) + " and " + v.text(right))
	}
	if value.isMissing() {
		return nil, v.invalidPredicate("comparison against None")
	}
	return pmml.NewSimplePredicate(field.field, op, value.value), nil
}

// fieldOperand requires n to be a column reference.
func (v *visitor) fieldOperand(n *sitter.Node) (operand, error) {
	n = unwrap(n)
	if n.Type() != "subscript" {
		return operand{}, v.invalidPredicate(n.Type() + " in field position")
	}
	return v.column(n)
}

// setPredicate builds a SimpleSetPredicate, typing the array by its elements.
func setPredicate(field, op string, items []operand) pmml.Predicate {
	values := make([]string, len(items))
	arrayType := pmml.ArrayInt
	for i, item := range items {
		values[i] = item.value
		switch item.dataType {
		case pmml.Integer:
		case pmml.Float, pmml.Double:
			if arrayType == pmml.ArrayInt {
				arrayType = pmml.ArrayReal
			}
		default:
			arrayType = pmml.ArrayString
		}
	}
	return pmml.NewSimpleSetPredicate(field, op, values, arrayType)
}
