package spanx

import "time"

// Tracer is the capability exposed by a tracing backend.
//
// Backends are discovered through a [Registry] and resolved by a [Resolver];
// application code normally never holds a backend Tracer directly but goes
// through [BuildSpan] or an [ActiveTracer], which add implicit-parent
// injection and active-span bookkeeping on top.
type Tracer interface {
	// BuildSpan returns a builder for a span with the given operation name.
	BuildSpan(operation string) SpanBuilder
}

// SpanBuilder configures and starts a single span.
// Builders are single-use and not safe for concurrent use.
type SpanBuilder interface {
	// AsChildOf declares parent as the parent reference of the span under
	// construction. Implementations must tolerate repeated calls; the last
	// valid reference wins.
	AsChildOf(parent SpanContext) SpanBuilder

	// WithTag sets a tag on the span under construction.
	WithTag(key string, value any) SpanBuilder

	// WithStartTime overrides the span start timestamp.
	WithStartTime(t time.Time) SpanBuilder

	// Start starts the span.
	Start() Span
}

// Span is a single unit of work produced by a backend.
//
// Finish and Close report the backend's own failure, if any. Spans returned
// by this package's builders are finish-idempotent: any termination call
// after the first is a no-op returning nil.
type Span interface {
	// Context returns the span's context, usable as a parent reference.
	Context() SpanContext

	// SetTag sets a tag on the span.
	SetTag(key string, value any) Span

	// Finish terminates the span with the current timestamp.
	Finish() error

	// FinishAt terminates the span with an explicit timestamp.
	FinishAt(t time.Time) error
}

// SpanContext is an immutable reference to a span, usable as a parent
// reference when building another span.
type SpanContext interface {
	// TraceID returns the trace identifier, or "" if the context is not valid.
	TraceID() string

	// SpanID returns the span identifier, or "" if the context is not valid.
	SpanID() string

	// IsValid reports whether the context refers to a real span. Invalid or
	// no-op contexts never suppress implicit-parent injection.
	IsValid() bool
}
