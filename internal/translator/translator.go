// Package translator compiles Python-syntax formulas over a row variable into
// PMML expression and predicate trees.
//
// Formulas are parsed with the tree-sitter Python grammar; the translator walks
// the resulting syntax tree and accepts only the subset it can lower. Anything
// else fails with an UnsupportedError naming the node kind.
package translator

import (
	"context"
	"fmt"
	"strings"

	"skl2pmml/internal/encoder"
	"skl2pmml/internal/logging"
	"skl2pmml/internal/pmml"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// DefaultVariable is the row variable name formulas index into.
const DefaultVariable = "X"

// Scope binds the row variable to the features a formula may reference.
type Scope struct {
	Variable string
	Features []encoder.Feature
}

// NewScope creates a scope over features using the default row variable.
func NewScope(features []encoder.Feature) Scope {
	return Scope{Variable: DefaultVariable, Features: features}
}

func (s Scope) variable() string {
	if s.Variable == "" {
		return DefaultVariable
	}
	return s.Variable
}

// Translation is a lowered expression together with its inferred data type.
type Translation struct {
	Expression pmml.Expression
	DataType   pmml.DataType
}

// Option configures a Translator.
type Option func(*Translator)

// WithNegateComparisons folds `not` over a comparison into the inverse comparison.
func WithNegateComparisons(enabled bool) Option {
	return func(t *Translator) {
		t.negateComparisons = enabled
	}
}

// Translator lowers formulas against one scope.
// A Translator holds no parser state and may be reused for several formulas.
type Translator struct {
	scope             Scope
	negateComparisons bool
}

// New creates a translator bound to scope.
func New(scope Scope, opts ...Option) *Translator {
	t := &Translator{scope: scope}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TranslateExpression lowers formula into an expression tree.
func (t *Translator) TranslateExpression(ctx context.Context, formula string) (*Translation, error) {
	var out *Translation
	err := t.withRoot(ctx, formula, func(v *visitor, root *sitter.Node) error {
		op, err := v.expression(root)
		if err != nil {
			return err
		}
		out = &Translation{Expression: op.expr, DataType: op.dataType}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.DataType == "" {
		out.DataType = pmml.Double
	}
	logging.TranslatorDebug("Translated %q -> %s (%s)", formula, pmml.Format(out.Expression), out.DataType)
	return out, nil
}

// TranslatePredicate lowers a boolean formula into a predicate tree.
func (t *Translator) TranslatePredicate(ctx context.Context, formula string) (pmml.Predicate, error) {
	var out pmml.Predicate
	err := t.withRoot(ctx, formula, func(v *visitor, root *sitter.Node) error {
		p, err := v.predicate(root)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.TranslatorDebug("Translated predicate %q -> %s", formula, pmml.FormatPredicate(out))
	return out, nil
}

// withRoot parses formula and hands the single top-level expression node to fn.
// The syntax tree is only valid for the duration of fn.
func (t *Translator) withRoot(ctx context.Context, formula string, fn func(*visitor, *sitter.Node) error) error {
	src := []byte(strings.TrimSpace(formula))
	if len(src) == 0 {
		return fmt.Errorf("%w: empty formula", ErrSyntax)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("failed to parse formula %q: %w", formula, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return fmt.Errorf("%w: %q", ErrSyntax, formula)
	}

	stmt, err := single(root, "module", formula)
	if err != nil {
		return err
	}
	if stmt.Type() != "expression_statement" {
		return &UnsupportedError{Kind: stmt.Type(), Formula: formula}
	}
	expr, err := single(stmt, "statement", formula)
	if err != nil {
		return err
	}

	v := &visitor{
		scope:             t.scope,
		formula:           formula,
		src:               src,
		negateComparisons: t.negateComparisons,
	}
	return fn(v, expr)
}

// single returns the only named non-comment child of n.
func single(n *sitter.Node, what, formula string) (*sitter.Node, error) {
	var found *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %s of %q holds more than one expression", ErrSyntax, what, formula)
		}
		found = child
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s of %q is empty", ErrSyntax, what, formula)
	}
	return found, nil
}
