package spanx

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
)

// ErrDefaultProvider is returned by [Resolver.Resolve] when the default
// backend provider itself fails. There is no further fallback, so this
// failure is propagated rather than swallowed.
var ErrDefaultProvider = errors.New("spanx: default backend provider failed")

// Source identifies how a resolver arrived at its current backend.
type Source int

const (
	// SourceUnset means no backend has been resolved yet.
	SourceUnset Source = iota
	// SourceExplicit means the backend was installed via Set.
	SourceExplicit
	// SourcePlugin means the backend came from registry discovery.
	SourcePlugin
	// SourceDefault means the built-in (or configured) default was adopted.
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourcePlugin:
		return "plugin"
	case SourceDefault:
		return "default"
	default:
		return "unset"
	}
}

// holder is the atomically swapped resolution result. Exactly one holder is
// authoritative at any instant; readers always observe it consistently.
type holder struct {
	tracer Tracer
	source Source
}

// Resolver lazily resolves and caches a process-wide tracing backend.
//
// Resolution is one-time-effective under arbitrary concurrency: multiple
// callers may perform redundant discovery work, but only the first install
// wins and every caller observes the identical instance. Discovery never
// runs under a lock; only the final install is atomic.
type Resolver struct {
	registry *Registry
	logger   *slog.Logger
	fallback Provider
	backend  string
	enabled  bool
	current  atomic.Pointer[holder]
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRegistry sets the registry the resolver discovers backends from.
func WithRegistry(reg *Registry) ResolverOption {
	return func(r *Resolver) { r.registry = reg }
}

// WithLogger sets the logger used for discovery diagnostics.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDefaultProvider replaces the built-in no-op default backend.
// If the given provider fails at resolution time, Resolve reports
// [ErrDefaultProvider]; there is nothing left to fall back to.
func WithDefaultProvider(p Provider) ResolverOption {
	return func(r *Resolver) {
		if p != nil {
			r.fallback = p
		}
	}
}

// WithConfig applies a loaded [Config] to the resolver.
func WithConfig(cfg *Config) ResolverOption {
	return func(r *Resolver) {
		if cfg == nil {
			return
		}
		r.enabled = cfg.IsEnabled()
		r.backend = cfg.Backend
	}
}

// NewResolver returns a resolver backed by the default registry unless
// overridden with options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: defaultRegistry,
		logger:   slog.Default(),
		fallback: func() (Tracer, error) { return NoopTracer{}, nil },
		enabled:  true,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the process-wide backend, resolving it on first use.
//
// Discovery rules: an explicitly Set backend always wins; otherwise exactly
// one registered candidate is adopted; zero candidates adopt the default;
// two or more log a warning and adopt the default, because choosing between
// backends is up to the application, not this library. The freshly computed
// result is installed with a compare-and-swap; a caller that loses the race
// discards its own computation and returns the winner's instance.
//
// The only error condition is failure of the default provider itself.
func (r *Resolver) Resolve() (Tracer, error) {
	if h := r.current.Load(); h != nil {
		return h.tracer, nil
	}

	h, err := r.discover()
	if err != nil {
		return nil, err
	}
	if !r.current.CompareAndSwap(nil, h) {
		h = r.current.Load()
	}

	return h.tracer, nil
}

// discover computes a resolution result without touching r.current.
func (r *Resolver) discover() (*holder, error) {
	if !r.enabled {
		return r.defaultHolder()
	}
	if r.backend != "" {
		return r.discoverNamed(r.backend)
	}

	names := r.registry.Names()
	switch len(names) {
	case 0:
		return r.defaultHolder()
	case 1:
		provider, _ := r.registry.Lookup(names[0])
		tracer, err := provider()
		if err != nil {
			r.logger.Warn("spanx: backend provider failed, falling back to default",
				"backend", names[0], "error", err)
			return r.defaultHolder()
		}

		return &holder{tracer: tracer, source: SourcePlugin}, nil
	default:
		r.logger.Warn("spanx: multiple backends registered, falling back to default",
			"backends", names)
		return r.defaultHolder()
	}
}

// discoverNamed resolves a backend pinned by configuration.
func (r *Resolver) discoverNamed(name string) (*holder, error) {
	provider, ok := r.registry.Lookup(name)
	if !ok {
		r.logger.Warn("spanx: configured backend is not registered, falling back to default",
			"backend", name)
		return r.defaultHolder()
	}
	tracer, err := provider()
	if err != nil {
		r.logger.Warn("spanx: configured backend provider failed, falling back to default",
			"backend", name, "error", err)
		return r.defaultHolder()
	}

	return &holder{tracer: tracer, source: SourcePlugin}, nil
}

func (r *Resolver) defaultHolder() (*holder, error) {
	tracer, err := r.fallback()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefaultProvider, err)
	}
	if tracer == nil {
		return nil, fmt.Errorf("%w: provider returned nil tracer", ErrDefaultProvider)
	}

	return &holder{tracer: tracer, source: SourceDefault}, nil
}

// Set unconditionally installs an explicit backend, short-circuiting any
// future discovery, and returns the previously resolved backend (nil if
// none). Last successful Set wins.
//
// Self-registration is a no-op: installing an [ActiveTracer] that delegates
// to this resolver would create a delegation cycle, and re-installing the
// currently resolved instance changes nothing. Both return the current
// backend unchanged.
func (r *Resolver) Set(t Tracer) Tracer {
	cur := r.current.Load()
	if t == nil {
		return tracerOf(cur)
	}
	if at, ok := t.(*ActiveTracer); ok && at.resolver == r {
		r.logger.Warn("spanx: ignoring self-registration of resolver-backed tracer")
		return tracerOf(cur)
	}
	if cur != nil && sameTracer(cur.tracer, t) {
		return cur.tracer
	}

	old := r.current.Swap(&holder{tracer: t, source: SourceExplicit})

	return tracerOf(old)
}

// Register is an alias for Set, matching the registration vocabulary used by
// backend packages.
func (r *Resolver) Register(t Tracer) Tracer { return r.Set(t) }

// Origin reports how the current backend was resolved, or [SourceUnset] if
// resolution has not happened yet.
func (r *Resolver) Origin() Source {
	if h := r.current.Load(); h != nil {
		return h.source
	}
	return SourceUnset
}

func tracerOf(h *holder) Tracer {
	if h == nil {
		return nil
	}
	return h.tracer
}

// sameTracer reports whether a and b are the same backend instance without
// risking a panic on uncomparable dynamic types.
func sameTracer(a, b Tracer) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Pointer && vb.Kind() == reflect.Pointer {
		return va.Pointer() == vb.Pointer()
	}
	if va.Type() != vb.Type() || !va.Type().Comparable() {
		return false
	}

	return a == b
}
