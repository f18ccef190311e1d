package translator

import (
	"strconv"
	"strings"

	"skl2pmml/internal/pmml"

	sitter "github.com/smacker/go-tree-sitter"
)

// resultType picks the data type of a function result from its arguments.
type resultType func(args []operand) pmml.DataType

func fixed(dt pmml.DataType) resultType {
	return func([]operand) pmml.DataType { return dt }
}

func widest(args []operand) pmml.DataType {
	var dt pmml.DataType
	for _, a := range args {
		dt = common(dt, a.dataType)
	}
	return dt
}

// branches types numpy.where by its two value arguments.
func branches(args []operand) pmml.DataType {
	return common(args[1].dataType, args[2].dataType)
}

type function struct {
	name    string
	minArgs int
	maxArgs int // -1 for variadic
	result  resultType
}

// functions is the allow-list of module-level and builtin calls.
var functions = map[string]function{
	"where":    {pmml.FuncIf, 3, 3, branches},
	"isnull":   {pmml.FuncIsMissing, 1, 1, fixed(pmml.Boolean)},
	"isna":     {pmml.FuncIsMissing, 1, 1, fixed(pmml.Boolean)},
	"isnan":    {pmml.FuncIsMissing, 1, 1, fixed(pmml.Boolean)},
	"notnull":  {pmml.FuncIsNotMissing, 1, 1, fixed(pmml.Boolean)},
	"notna":    {pmml.FuncIsNotMissing, 1, 1, fixed(pmml.Boolean)},
	"abs":      {pmml.FuncAbs, 1, 1, widest},
	"absolute": {pmml.FuncAbs, 1, 1, widest},
	"min":      {pmml.FuncMin, 2, -1, widest},
	"max":      {pmml.FuncMax, 2, -1, widest},
	"round":    {pmml.FuncRound, 1, 1, fixed(pmml.Integer)},
	"ceil":     {pmml.FuncCeil, 1, 1, fixed(pmml.Integer)},
	"floor":    {pmml.FuncFloor, 1, 1, fixed(pmml.Integer)},
	"exp":      {pmml.FuncExp, 1, 1, fixed(pmml.Double)},
	"log":      {pmml.FuncLn, 1, 1, fixed(pmml.Double)},
	"log10":    {pmml.FuncLog10, 1, 1, fixed(pmml.Double)},
	"sqrt":     {pmml.FuncSqrt, 1, 1, fixed(pmml.Double)},
	"pow":      {pmml.FuncPow, 2, 2, fixed(pmml.Double)},
	"power":    {pmml.FuncPow, 2, 2, fixed(pmml.Double)},
	"len":      {pmml.FuncStringLength, 1, 1, fixed(pmml.Integer)},
	"lower":    {pmml.FuncLowercase, 1, 1, fixed(pmml.String)},
	"upper":    {pmml.FuncUppercase, 1, 1, fixed(pmml.String)},
	"strip":    {pmml.FuncTrimBlanks, 1, 1, fixed(pmml.String)},
}

// namespaces lists which qualifiers may prefix each allow-listed function.
// The empty qualifier stands for a builtin.
var namespaces = map[string][]string{
	"":       {"abs", "min", "max", "round", "len", "pow"},
	"numpy":  {"where", "isnan", "abs", "absolute", "ceil", "floor", "exp", "log", "log10", "sqrt", "power"},
	"np":     {"where", "isnan", "abs", "absolute", "ceil", "floor", "exp", "log", "log10", "sqrt", "power"},
	"math":   {"ceil", "floor", "exp", "log", "log10", "sqrt", "pow"},
	"pandas": {"isnull", "isna", "notnull", "notna"},
	"pd":     {"isnull", "isna", "notnull", "notna"},
}

// methods are string methods called on an operand, as in X[0].lower().
var methods = map[string]bool{"lower": true, "upper": true, "strip": true}

func lookup(qualifier, name string) (function, bool) {
	for _, allowed := range namespaces[qualifier] {
		if allowed == name {
			return functions[name], true
		}
	}
	return function{}, false
}

// call lowers an allow-listed function or method call.
func (v *visitor) call(n *sitter.Node) (operand, error) {
	callee := n.ChildByFieldName("function")
	argList := n.ChildByFieldName("arguments")
	if callee == nil || argList == nil || argList.Type() != "argument_list" {
		return operand{}, v.unsupported(n)
	}

	var args []operand
	for i := 0; i < int(argList.NamedChildCount()); i++ {
		child := argList.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if child.Type() == "keyword_argument" || strings.HasSuffix(child.Type(), "splat") {
			return operand{}, v.unsupported(child)
		}
		arg, err := v.expression(child)
		if err != nil {
			return operand{}, err
		}
		args = append(args, arg)
	}

	var fn function
	var ok bool
	switch callee.Type() {
	case "identifier":
		fn, ok = lookup("", v.text(callee))
	case "attribute":
		object := callee.ChildByFieldName("object")
		name := v.text(callee.ChildByFieldName("attribute"))
		if object.Type() == "identifier" && object.Content(v.src) != v.scope.variable() {
			fn, ok = lookup(v.text(object), name)
			break
		}
		if !methods[name] {
			break
		}
		receiver, err := v.expression(object)
		if err != nil {
			return operand{}, err
		}
		args = append([]operand{receiver}, args...)
		fn, ok = functions[name]
	}
	if !ok {
		return operand{}, v.unsupportedKind("function " + v.text(callee))
	}

	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return operand{}, v.unsupportedKind("call of " + v.text(callee) + " with " + strconv.Itoa(len(args)) + " argument(s)")
	}
	return apply(fn.result(args), fn.name, args...), nil
}
