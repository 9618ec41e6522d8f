package spanx

import (
	"slices"
	"sync"
)

// Provider constructs a tracing backend. Providers are registered with a
// [Registry] under a unique name and invoked lazily during resolution; a
// provider returning an error is skipped with a logged warning.
type Provider func() (Tracer, error)

// Registry maps backend names to providers. It replaces classpath-style
// discovery with explicit registration: backend packages register themselves
// (typically from an init function or a setup call) and a [Resolver] picks
// the single unambiguous candidate.
//
// The zero value is not usable; call [NewRegistry].
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under the given name.
// It panics if the name is empty, the provider is nil, or the name is
// already taken; registration mistakes are programming errors, not
// runtime conditions.
func (r *Registry) Register(name string, p Provider) {
	if name == "" {
		panic("spanx: backend name must not be empty")
	}
	if p == nil {
		panic("spanx: backend provider must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.providers[name]; dup {
		panic("spanx: backend already registered: " + name)
	}
	r.providers[name] = p
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered backend names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// defaultRegistry backs the package-level API.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by the package-level functions.
func DefaultRegistry() *Registry { return defaultRegistry }

// RegisterBackend registers a provider with the default registry.
func RegisterBackend(name string, p Provider) {
	defaultRegistry.Register(name, p)
}
