package spanx

import (
	"sync/atomic"
	"time"
)

// ActiveTracer composes active-span bookkeeping over a resolved backend: the
// currently active span is injected as implicit parent when building a new
// span, and spans returned by its builders activate themselves for their
// lifetime. It is the single adapter between application code, the
// [Resolver] and the [Stack]; there is no wrapper hierarchy behind it.
//
// An ActiveTracer is bound to one execution context's stack. It is a
// two-word value; create one per request or task as needed.
type ActiveTracer struct {
	resolver *Resolver
	stack    *Stack
	namer    SpanNamer
}

// TracerOption configures an ActiveTracer.
type TracerOption func(*ActiveTracer)

// WithSpanNamer sets the namer applied to operation names.
func WithSpanNamer(n SpanNamer) TracerOption {
	return func(t *ActiveTracer) {
		if n != nil {
			t.namer = n
		}
	}
}

// NewActiveTracer returns a tracer that resolves its backend through r and
// tracks the active span on stack. A nil resolver uses the package default;
// a nil stack degrades every build to the no-op span unless an explicit
// parent is supplied.
func NewActiveTracer(r *Resolver, stack *Stack, opts ...TracerOption) *ActiveTracer {
	if r == nil {
		r = Default()
	}
	t := &ActiveTracer{resolver: r, stack: stack, namer: DefaultNamer{}}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// BuildSpan returns a builder for the named operation, delegating to the
// resolved backend. Backend resolution failure degrades to the no-op
// backend after logging; building a span must never break the caller.
func (t *ActiveTracer) BuildSpan(operation string) SpanBuilder {
	backend, err := t.resolver.Resolve()
	if err != nil {
		t.resolver.logger.Error("spanx: backend resolution failed, using no-op backend", "error", err)
		backend = NoopTracer{}
	}

	return &activeSpanBuilder{
		delegate: backend.BuildSpan(t.namer.Name(operation)),
		stack:    t.stack,
	}
}

// activeSpanBuilder decorates a backend builder with implicit-parent
// injection and span activation.
type activeSpanBuilder struct {
	delegate SpanBuilder
	stack    *Stack
	explicit bool
}

// AsChildOf honors a valid parent reference as given and suppresses
// implicit-parent injection at Start. A nil or no-op reference defers to the
// active-span check instead.
func (b *activeSpanBuilder) AsChildOf(parent SpanContext) SpanBuilder {
	if parent == nil || !parent.IsValid() {
		return b
	}
	b.explicit = true
	b.delegate.AsChildOf(parent)

	return b
}

func (b *activeSpanBuilder) WithTag(key string, value any) SpanBuilder {
	b.delegate.WithTag(key, value)
	return b
}

func (b *activeSpanBuilder) WithStartTime(t time.Time) SpanBuilder {
	b.delegate.WithStartTime(t)
	return b
}

// Start injects the active span as implicit parent unless an explicit one
// was supplied, starts the delegate span, and activates it. When no parent
// of either kind exists there is nothing meaningful to attach tracing data
// to, so Start short-circuits to the no-op span.
func (b *activeSpanBuilder) Start() Span {
	if !b.explicit {
		active := b.stack.Peek()
		if IsNoop(active) {
			return NoopSpan()
		}
		b.delegate.AsChildOf(active.Context())
	}

	span := b.delegate.Start()
	if span == nil {
		return NoopSpan()
	}

	return &wrappedSpan{delegate: span, activation: b.stack.Activate(span)}
}

// wrappedSpan owns the association between a backend span and the activation
// produced when it was started. Termination is idempotent; deactivation runs
// exactly once, even when the backend's own finish fails.
type wrappedSpan struct {
	delegate   Span
	activation *Activation
	finished   atomic.Bool
}

func (w *wrappedSpan) Context() SpanContext { return w.delegate.Context() }

func (w *wrappedSpan) SetTag(key string, value any) Span {
	w.delegate.SetTag(key, value)
	return w
}

// Finish terminates the span and releases its activation.
func (w *wrappedSpan) Finish() error {
	return w.terminate(w.delegate.Finish)
}

// FinishAt terminates the span with an explicit timestamp.
func (w *wrappedSpan) FinishAt(t time.Time) error {
	return w.terminate(func() error { return w.delegate.FinishAt(t) })
}

// Close implements io.Closer; it is equivalent to Finish.
func (w *wrappedSpan) Close() error { return w.Finish() }

// terminate runs the delegate's termination once. The deferred deactivation
// runs even when the delegate fails or panics, and its own bookkeeping can
// never replace the delegate's error.
func (w *wrappedSpan) terminate(fn func() error) error {
	if !w.finished.CompareAndSwap(false, true) {
		return nil
	}
	defer w.activation.Deactivate()

	return fn()
}
