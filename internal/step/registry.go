package step

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"skl2pmml/internal/logging"
	"skl2pmml/internal/node"
)

// Constructor builds a step from its attributed node. Nested steps are built
// through the registry passed in.
type Constructor func(r *Registry, n *node.Node) (Step, error)

// Registry maps qualified class names to step constructors.
// It is safe for concurrent use; leaf packages populate the default registry at init.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor for module.class.
// Returns an error if the class is already registered.
func (r *Registry) Register(module, class string, c Constructor) error {
	name := module + "." + class

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.constructors[name] = c

	logging.RegistryDebug("Registered step class: %s", name)
	return nil
}

// MustRegister registers a constructor and panics on error.
// Use this for static registration at init time.
func (r *Registry) MustRegister(module, class string, c Constructor) {
	if err := r.Register(module, class, c); err != nil {
		panic(fmt.Sprintf("failed to register step class %s.%s: %v", module, class, err))
	}
}

// Lookup finds the constructor of module.class. Private module segments
// (sklearn.preprocessing._data) fall back to the public module (sklearn.preprocessing).
func (r *Registry) Lookup(module, class string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.constructors[module+"."+class]; ok {
		return c, true
	}
	if public := publicModule(module); public != module {
		if c, ok := r.constructors[public+"."+class]; ok {
			logging.RegistryDebug("Resolved %s.%s via %s", module, class, public)
			return c, true
		}
	}
	return nil, false
}

func publicModule(module string) string {
	parts := strings.Split(module, ".")
	kept := parts[:0]
	for _, p := range parts {
		if !strings.HasPrefix(p, "_") {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// Has returns true if a constructor is registered for module.class.
func (r *Registry) Has(module, class string) bool {
	_, ok := r.Lookup(module, class)
	return ok
}

// Names returns all registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered classes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.constructors)
}

// Build turns an attribute value into a step. nil and "passthrough" build a
// PassThrough, "drop" builds a Drop, and a node is built by its class constructor.
func (r *Registry) Build(v any) (Step, error) {
	switch x := v.(type) {
	case nil:
		return PassThrough{}, nil
	case string:
		switch x {
		case "passthrough":
			return PassThrough{}, nil
		case "drop":
			return Drop{}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, x)
	case *node.Node:
		c, ok := r.Lookup(x.Module, x.Class)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownClass, x.ClassName())
		}
		s, err := c(r, x)
		if err != nil {
			return nil, wrap(x, "build", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: value of type %s is not a step", ErrUnknownClass, node.TypeName(v))
}

// Transformer builds v and projects it onto the transformer role.
func (r *Registry) Transformer(v any) (Transformer, error) {
	s, err := r.Build(v)
	if err != nil {
		return nil, err
	}
	return asTransformer(s)
}

// Estimator builds v and projects it onto the estimator role.
func (r *Registry) Estimator(v any) (Estimator, error) {
	s, err := r.Build(v)
	if err != nil {
		return nil, err
	}
	switch x := s.(type) {
	case Estimator:
		return x, nil
	case Composite:
		return AsEstimator(x)
	}
	return nil, wrap(s, "cast", fmt.Errorf("%w: not an estimator", ErrWrongRole))
}

// Chain builds a composite from step values. Every value but the last must be a
// transformer; the last becomes the final estimator when it is one.
func (r *Registry) Chain(class string, values []any) (*Pipeline, error) {
	p := NewPipeline(class, nil, nil)
	for i, v := range values {
		s, err := r.Build(v)
		if err != nil {
			return nil, err
		}
		last := i == len(values)-1
		if last {
			if e, ok := asEstimator(s); ok {
				p.Final = e
				break
			}
		}
		t, err := asTransformer(s)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, t)
	}
	return p, nil
}

func asEstimator(s Step) (Estimator, bool) {
	switch x := s.(type) {
	case Estimator:
		return x, true
	case Composite:
		if x.FinalEstimator() != nil {
			e, err := AsEstimator(x)
			return e, err == nil
		}
	}
	return nil, false
}

func asTransformer(s Step) (Transformer, error) {
	switch x := s.(type) {
	case Transformer:
		return x, nil
	case Composite:
		return AsTransformer(x)
	}
	return nil, wrap(s, "cast", fmt.Errorf("%w: not a transformer", ErrWrongRole))
}

// =============================================================================
// DEFAULT REGISTRY
// =============================================================================

var defaultRegistry = NewRegistry()

// Default returns the registry populated by the leaf step packages.
func Default() *Registry {
	return defaultRegistry
}

// MustRegister registers a constructor in the default registry, panicking on error.
func MustRegister(module, class string, c Constructor) {
	defaultRegistry.MustRegister(module, class, c)
}
