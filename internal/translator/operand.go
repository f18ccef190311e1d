package translator

import (
	"fmt"
	"strconv"
	"strings"

	"skl2pmml/internal/pmml"

	sitter "github.com/smacker/go-tree-sitter"
)

// operand is a lowered sub-expression with the facts later lowering needs.
type operand struct {
	expr     pmml.Expression
	dataType pmml.DataType

	// field is set when the operand is a plain reference to a scope feature.
	field string

	// literal is set for constants; value holds the rendered text.
	literal bool
	value   string
}

func (o operand) isMissing() bool {
	c, ok := o.expr.(*pmml.Constant)
	return ok && c.Missing
}

func constant(value string, dataType pmml.DataType) operand {
	return operand{expr: pmml.NewConstant(value, dataType), dataType: dataType, literal: true, value: value}
}

func missing() operand {
	return operand{expr: &pmml.Constant{Missing: true}, literal: true}
}

type visitor struct {
	scope             Scope
	formula           string
	src               []byte
	negateComparisons bool
}

func (v *visitor) text(n *sitter.Node) string {
	return n.Content(v.src)
}

func (v *visitor) unsupported(n *sitter.Node) error {
	return &UnsupportedError{Kind: n.Type(), Formula: v.formula}
}

func (v *visitor) unsupportedKind(kind string) error {
	return &UnsupportedError{Kind: kind, Formula: v.formula}
}

func (v *visitor) invalidPredicate(kind string) error {
	return fmt.Errorf("%w: %s in formula %q", ErrInvalidPredicate, kind, v.formula)
}

// unwrap strips redundant parentheses.
func unwrap(n *sitter.Node) *sitter.Node {
	for n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	return n
}

// =============================================================================
// LITERALS
// =============================================================================

// literal lowers a literal node, folding any chain of unary signs into numbers.
// It reports ok=false for nodes that are not literals.
func (v *visitor) literal(n *sitter.Node) (operand, bool, error) {
	n = unwrap(n)
	switch n.Type() {
	case "integer", "float":
		op, err := v.number(n)
		return op, true, err
	case "true":
		return constant("true", pmml.Boolean), true, nil
	case "false":
		return constant("false", pmml.Boolean), true, nil
	case "none":
		return missing(), true, nil
	case "string", "concatenated_string":
		s, err := v.stringLiteral(n)
		if err != nil {
			return operand{}, true, err
		}
		return constant(s, pmml.String), true, nil
	case "unary_operator":
		negative := false
		inner := n
		for inner.Type() == "unary_operator" {
			switch inner.ChildByFieldName("operator").Type() {
			case "-":
				negative = !negative
			case "+":
			default:
				return operand{}, false, nil
			}
			inner = unwrap(inner.ChildByFieldName("argument"))
		}
		if inner.Type() != "integer" && inner.Type() != "float" {
			return operand{}, false, nil
		}
		op, _, err := v.literal(inner)
		if err != nil || !negative {
			return op, true, err
		}
		return constant("-"+op.value, op.dataType), true, nil
	}
	return operand{}, false, nil
}

// number renders a numeric literal in plain decimal form.
// Digit separators and radix prefixes are resolved; imaginary literals are rejected.
func (v *visitor) number(n *sitter.Node) (operand, error) {
	text := strings.ReplaceAll(v.text(n), "_", "")
	if n.Type() == "integer" {
		i, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return operand{}, v.unsupportedKind("integer literal " + v.text(n))
		}
		return constant(strconv.FormatInt(i, 10), pmml.Integer), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return operand{}, v.unsupportedKind("float literal " + v.text(n))
	}
	value := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(value, ".e") {
		value += ".0"
	}
	return constant(value, pmml.Double), nil
}

// stringLiteral returns the unescaped text of a string node.
func (v *visitor) stringLiteral(n *sitter.Node) (string, error) {
	if n.Type() == "concatenated_string" {
		var sb strings.Builder
		for i := 0; i < int(n.NamedChildCount()); i++ {
			part, err := v.stringLiteral(n.NamedChild(i))
			if err != nil {
				return "", err
			}
			sb.WriteString(part)
		}
		return sb.String(), nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == "interpolation" {
			return "", v.unsupportedKind("f-string")
		}
	}
	s, err := unquote(v.text(n))
	if err != nil {
		return "", v.unsupportedKind(err.Error())
	}
	return s, nil
}

// unquote strips the prefix and quotes of a Python string literal and resolves
// simple escape sequences.
func unquote(raw string) (string, error) {
	i := 0
	isRaw := false
	for i < len(raw) && strings.ContainsRune("rRbBuUfF", rune(raw[i])) {
		switch raw[i] {
		case 'r', 'R':
			isRaw = true
		case 'f', 'F':
			return "", fmt.Errorf("f-string")
		case 'b', 'B':
			return "", fmt.Errorf("bytes literal")
		}
		i++
	}
	body := raw[i:]
	var quote string
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			quote = q
			break
		}
	}
	if quote == "" {
		return "", fmt.Errorf("string literal %s", raw)
	}
	body = body[len(quote) : len(body)-len(quote)]
	if isRaw || !strings.Contains(body, `\`) {
		return body, nil
	}

	var sb strings.Builder
	for j := 0; j < len(body); j++ {
		c := body[j]
		if c != '\\' || j+1 == len(body) {
			sb.WriteByte(c)
			continue
		}
		j++
		switch body[j] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '\\', '\'', '"':
			sb.WriteByte(body[j])
		default:
			sb.WriteByte('\\')
			sb.WriteByte(body[j])
		}
	}
	return sb.String(), nil
}

// listLiteral lowers a list or tuple literal of constants.
func (v *visitor) listLiteral(n *sitter.Node) ([]operand, bool, error) {
	n = unwrap(n)
	if n.Type() != "list" && n.Type() != "tuple" {
		return nil, false, nil
	}
	items := make([]operand, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		op, ok, err := v.literal(child)
		if err != nil {
			return nil, true, err
		}
		if !ok || op.isMissing() {
			return nil, true, v.unsupportedKind("non-constant " + n.Type() + " element")
		}
		items = append(items, op)
	}
	return items, true, nil
}

// =============================================================================
// COLUMN REFERENCES
// =============================================================================

// column resolves X[i], X["name"] and X[:, i] to a scope feature.
func (v *visitor) column(n *sitter.Node) (operand, error) {
	value := n.ChildByFieldName("value")
	if value == nil {
		return operand{}, v.unsupported(n)
	}
	if value.Type() != "identifier" || v.text(value) != v.scope.variable() {
		return operand{}, &ResolveError{Token: v.text(value), Formula: v.formula, Err: ErrUnknownField}
	}

	var subscripts []*sitter.Node
	for i := 1; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "comment" {
			subscripts = append(subscripts, child)
		}
	}
	if len(subscripts) == 2 && subscripts[0].Type() == "slice" && subscripts[0].NamedChildCount() == 0 {
		subscripts = subscripts[1:]
	}
	if len(subscripts) != 1 {
		return operand{}, v.unsupportedKind("subscript " + v.text(n))
	}

	index := unwrap(subscripts[0])
	features := v.scope.Features
	switch index.Type() {
	case "integer":
		i, err := strconv.ParseInt(strings.ReplaceAll(v.text(index), "_", ""), 0, 64)
		if err != nil || i < 0 || i >= int64(len(features)) {
			return operand{}, &ResolveError{Token: v.text(n), Formula: v.formula, Err: ErrIndexOutOfRange}
		}
		f := features[i]
		return operand{expr: f.Ref(), dataType: f.DataType(), field: f.Name()}, nil
	case "unary_operator":
		return operand{}, &ResolveError{Token: v.text(n), Formula: v.formula, Err: ErrIndexOutOfRange}
	case "string":
		name, err := v.stringLiteral(index)
		if err != nil {
			return operand{}, err
		}
		for _, f := range features {
			if f.Name() == name {
				return operand{expr: f.Ref(), dataType: f.DataType(), field: f.Name()}, nil
			}
		}
		return operand{}, &ResolveError{Token: v.text(n), Formula: v.formula, Err: ErrUnknownField}
	default:
		return operand{}, v.unsupportedKind("subscript " + v.text(n))
	}
}
