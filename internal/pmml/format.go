package pmml

import (
	"fmt"
	"strings"
)

// Format renders an expression as a canonical one-line string.
// Structurally equal expressions format identically.
func Format(e Expression) string {
	var sb strings.Builder
	formatExpression(&sb, e)
	return sb.String()
}

// FormatPredicate renders a predicate as a canonical one-line string.
func FormatPredicate(p Predicate) string {
	var sb strings.Builder
	formatPredicate(&sb, p)
	return sb.String()
}

func formatExpression(sb *strings.Builder, e Expression) {
	switch x := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Constant:
		if x.Missing {
			sb.WriteString("missing")
			return
		}
		fmt.Fprintf(sb, "%q", x.Value)
		if x.DataType != "" {
			sb.WriteString(":" + string(x.DataType))
		}
	case *FieldRef:
		sb.WriteString(x.Field)
	case *Apply:
		sb.WriteString(x.Function)
		sb.WriteByte('(')
		for i, op := range x.Operands {
			if i > 0 {
				sb.WriteString(", ")
			}
			formatExpression(sb, op)
		}
		sb.WriteByte(')')
		if x.MapMissingTo != "" {
			fmt.Fprintf(sb, "[mapMissingTo=%q]", x.MapMissingTo)
		}
		if x.DefaultValue != "" {
			fmt.Fprintf(sb, "[defaultValue=%q]", x.DefaultValue)
		}
		if x.InvalidValueTreatment != "" {
			fmt.Fprintf(sb, "[invalidValueTreatment=%s]", x.InvalidValueTreatment)
		}
	case *NormDiscrete:
		fmt.Fprintf(sb, "normDiscrete(%s, %q)", x.Field, x.Value)
	case *MapValues:
		sb.WriteString("mapValues(")
		for i, p := range x.FieldColumnPairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Field)
		}
		sb.WriteString("; ")
		for i, r := range x.InlineTable.Rows {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q->%q", r.Input, r.Output)
		}
		sb.WriteByte(')')
		if x.DataType != "" {
			sb.WriteString(":" + string(x.DataType))
		}
	default:
		fmt.Fprintf(sb, "%T", e)
	}
}

func formatPredicate(sb *strings.Builder, p Predicate) {
	switch x := p.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *SimplePredicate:
		if x.Operator == OpIsMissing || x.Operator == OpIsNotMissing {
			fmt.Fprintf(sb, "%s(%s)", x.Operator, x.Field)
			return
		}
		fmt.Fprintf(sb, "%s(%s, %q)", x.Operator, x.Field, x.Value)
	case *CompoundPredicate:
		sb.WriteString(strings.ToUpper(x.BooleanOperator))
		sb.WriteByte('(')
		for i, c := range x.Predicates {
			if i > 0 {
				sb.WriteString(", ")
			}
			formatPredicate(sb, c)
		}
		sb.WriteByte(')')
	case *SimpleSetPredicate:
		fmt.Fprintf(sb, "%s(%s, [%s])", x.BooleanOperator, x.Field, x.Array.Content())
	case *True:
		sb.WriteString("TRUE")
	case *False:
		sb.WriteString("FALSE")
	default:
		fmt.Fprintf(sb, "%T", p)
	}
}

// ExpressionFields lists the fields an expression references, in visiting order.
func ExpressionFields(e Expression) []string {
	var refs []string
	var walk func(Expression)
	walk = func(e Expression) {
		switch x := e.(type) {
		case *FieldRef:
			refs = append(refs, x.Field)
		case *NormDiscrete:
			refs = append(refs, x.Field)
		case *MapValues:
			for _, p := range x.FieldColumnPairs {
				refs = append(refs, p.Field)
			}
		case *Apply:
			for _, op := range x.Operands {
				walk(op)
			}
		}
	}
	walk(e)
	return refs
}

// PredicateFields lists the fields a predicate references, in visiting order.
func PredicateFields(p Predicate) []string {
	var refs []string
	var walk func(Predicate)
	walk = func(p Predicate) {
		switch x := p.(type) {
		case *SimplePredicate:
			refs = append(refs, x.Field)
		case *SimpleSetPredicate:
			refs = append(refs, x.Field)
		case *CompoundPredicate:
			for _, c := range x.Predicates {
				walk(c)
			}
		}
	}
	walk(p)
	return refs
}
