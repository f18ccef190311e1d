// Package lineage computes which catalogue fields a model depends on. Field
// references are loaded into a Google Mangle fact store and the transitive
// usage closure is derived by a two-rule Datalog program.
package lineage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"skl2pmml/internal/logging"
)

// program declares the reference facts and the usage closure over them.
const program = `
Decl model_ref(Field).
Decl field_ref(Field, Source).
Decl used(Field).

used(F) :- model_ref(F).
used(S) :- used(F), field_ref(F, S).
`

// Predicate names of the program.
const (
	PredModelRef = "model_ref"
	PredFieldRef = "field_ref"
	PredUsed     = "used"
)

var (
	// ErrUndeclared is returned for facts over predicates the program does not declare.
	ErrUndeclared = errors.New("predicate is not declared")

	// ErrFactLimit is returned when a graph exceeds the configured fact limit.
	ErrFactLimit = errors.New("fact limit exceeded")
)

// Config holds engine limits.
type Config struct {
	FactLimit int
}

// DefaultConfig returns the limits used by conversions.
func DefaultConfig() Config {
	return Config{FactLimit: 100000}
}

// Fact is one reference fact.
type Fact struct {
	Predicate string
	Args      []string
}

// String returns the Datalog representation of the fact.
func (f Fact) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = fmt.Sprintf("%q", a)
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// Engine evaluates the usage program over one set of reference facts.
// An Engine is safe for concurrent use; each conversion normally owns one.
type Engine struct {
	config Config

	mu             sync.RWMutex
	store          factstore.FactStore
	programInfo    *analysis.ProgramInfo
	predicateIndex map[string]ast.PredicateSym
	factCount      int
	evaluated      bool
}

// NewEngine parses and analyzes the usage program.
func NewEngine(cfg Config) (*Engine, error) {
	unit, err := parse.Unit(strings.NewReader(program))
	if err != nil {
		return nil, fmt.Errorf("failed to parse lineage program: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze lineage program: %w", err)
	}

	e := &Engine{
		config:         cfg,
		store:          factstore.NewSimpleInMemoryStore(),
		programInfo:    programInfo,
		predicateIndex: make(map[string]ast.PredicateSym, len(programInfo.Decls)),
	}
	for sym := range programInfo.Decls {
		e.predicateIndex[sym.Symbol] = sym
	}
	return e, nil
}

// AddFacts inserts reference facts. Duplicates are ignored.
func (e *Engine) AddFacts(facts []Fact) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, fact := range facts {
		atom, err := e.factToAtomLocked(fact)
		if err != nil {
			return err
		}
		if e.config.FactLimit > 0 && e.factCount >= e.config.FactLimit {
			return fmt.Errorf("%w: %d", ErrFactLimit, e.config.FactLimit)
		}
		if e.store.Add(atom) {
			e.factCount++
			e.evaluated = false
		}
	}
	return nil
}

func (e *Engine) factToAtomLocked(fact Fact) (ast.Atom, error) {
	sym, ok := e.predicateIndex[fact.Predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("%w: %s", ErrUndeclared, fact.Predicate)
	}
	if len(fact.Args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("predicate %s expects %d args, got %d", fact.Predicate, sym.Arity, len(fact.Args))
	}
	args := make([]ast.BaseTerm, len(fact.Args))
	for i, a := range fact.Args {
		args[i] = ast.String(a)
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

// Evaluate derives the usage closure. It is a no-op when no facts changed.
func (e *Engine) Evaluate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evaluated {
		return nil
	}

	timer := logging.StartTimer(logging.CategoryLineage, "evaluate")
	stats, err := mengine.EvalProgramWithStats(e.programInfo, e.store)
	timer.Stop()
	if err != nil {
		return fmt.Errorf("failed to evaluate lineage program: %w", err)
	}
	logging.LineageDebug("Evaluated usage closure over %d fact(s): %+v", e.factCount, stats)
	e.evaluated = true
	return nil
}

// Values lists the first argument of every fact of a predicate, sorted.
func (e *Engine) Values(predicate string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sym, ok := e.predicateIndex[predicate]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndeclared, predicate)
	}
	var out []string
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		if c, ok := atom.Args[0].(ast.Constant); ok {
			out = append(out, c.Symbol)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}
