package spanx

import "time"

// NoopTracer is the built-in side-effect-free backend. It is adopted by a
// [Resolver] when no backend is registered or when discovery is ambiguous.
type NoopTracer struct{}

// BuildSpan returns a builder that produces the shared no-op span.
func (NoopTracer) BuildSpan(string) SpanBuilder { return noopBuilder{} }

type noopBuilder struct{}

func (b noopBuilder) AsChildOf(SpanContext) SpanBuilder   { return b }
func (b noopBuilder) WithTag(string, any) SpanBuilder     { return b }
func (b noopBuilder) WithStartTime(time.Time) SpanBuilder { return b }
func (noopBuilder) Start() Span                           { return noopSpan{} }

type noopSpan struct{}

func (noopSpan) Context() SpanContext      { return noopSpanContext{} }
func (s noopSpan) SetTag(string, any) Span { return s }
func (noopSpan) Finish() error             { return nil }
func (noopSpan) FinishAt(time.Time) error  { return nil }

type noopSpanContext struct{}

func (noopSpanContext) TraceID() string { return "" }
func (noopSpanContext) SpanID() string  { return "" }
func (noopSpanContext) IsValid() bool   { return false }

// NoopSpan returns the shared no-op span. It records nothing and its
// termination calls always succeed.
func NoopSpan() Span { return noopSpan{} }

// IsNoop reports whether span is the no-op span (or nil).
func IsNoop(span Span) bool {
	if span == nil {
		return true
	}
	_, ok := span.(noopSpan)
	return ok
}
