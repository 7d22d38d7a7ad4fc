package hostlint

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/yaklabco/peggylint/pkg/config"
)

// Factory creates a Linter from configuration.
type Factory func(cfg config.LinterConfig, defaultSeverity config.Severity) (Linter, error)

// Registry maps backend names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry holds the built-in backends.
//
//nolint:gochecknoglobals // Intentional default registry.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(config.LinterESLint, func(cfg config.LinterConfig, severity config.Severity) (Linter, error) {
		return NewESLint(cfg, WithDefaultSeverity(severity)), nil
	})
	return reg
}

// Register adds a factory. An existing factory with the same name is replaced.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the linter named by cfg.Name. An empty name selects eslint.
func (r *Registry) New(cfg config.LinterConfig, defaultSeverity config.Severity) (Linter, error) {
	name := cfg.Name
	if name == "" {
		name = config.LinterESLint
	}

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrLinterNotFound, name, r.Names())
	}

	cfg.Args = slices.Clone(cfg.Args)
	return factory(cfg, defaultSeverity)
}

// New creates a linter from the default registry.
func New(cfg config.LinterConfig, defaultSeverity config.Severity) (Linter, error) {
	return DefaultRegistry.New(cfg, defaultSeverity)
}
