package spanx

import (
	"context"
	"sync/atomic"
)

// std is the process-wide default resolver backing the package-level API.
var std atomic.Pointer[Resolver]

func init() {
	std.Store(NewResolver())
}

// Default returns the default resolver used by the package-level functions.
func Default() *Resolver { return std.Load() }

// SetDefault replaces the default resolver. Intended for application setup
// code that wants a configured or injectable resolver behind the
// package-level API; nil is ignored.
func SetDefault(r *Resolver) {
	if r != nil {
		std.Store(r)
	}
}

// Resolve returns the current backend singleton, resolving it on first use.
func Resolve() (Tracer, error) { return Default().Resolve() }

// Set installs an explicit backend on the default resolver and returns the
// previous one.
func Set(t Tracer) Tracer { return Default().Set(t) }

// BuildSpan returns a builder for the named operation, composing
// implicit-parent injection and span activation over the resolved backend.
// The active-span stack is taken from ctx; a context without a stack
// produces no-op spans unless an explicit parent is supplied.
func BuildSpan(ctx context.Context, operation string) SpanBuilder {
	return NewActiveTracer(Default(), StackFromContext(ctx)).BuildSpan(operation)
}

// ActiveSpan returns the currently active span for ctx, or the no-op span if
// there is none. It never returns nil.
func ActiveSpan(ctx context.Context) Span {
	if span := StackFromContext(ctx).Peek(); span != nil {
		return span
	}
	return NoopSpan()
}

// Activate makes span the active span for ctx's execution context and
// returns the deactivation handle. Task wrappers call this with a captured
// span when restoring it on another goroutine.
func Activate(ctx context.Context, span Span) *Activation {
	return StackFromContext(ctx).Activate(span)
}

// Deactivate releases the given activation. Safe to call with nil and safe
// to call more than once.
func Deactivate(a *Activation) { a.Deactivate() }

// Clear drops every active span for ctx's execution context. Boundary
// filters use it as a failsafe before a worker is returned to a pool.
func Clear(ctx context.Context) bool {
	return StackFromContext(ctx).Clear()
}
