package otelspan

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arloliu/spanx"
)

// Tracer adapts an OpenTelemetry tracer to the spanx backend interface.
type Tracer struct {
	tracer trace.Tracer
}

// New returns a backend over the given OTel tracer.
func New(tracer trace.Tracer) *Tracer {
	return &Tracer{tracer: tracer}
}

// BuildSpan returns a builder for the named operation.
func (t *Tracer) BuildSpan(operation string) spanx.SpanBuilder {
	return &builder{tracer: t.tracer, operation: operation}
}

type builder struct {
	tracer    trace.Tracer
	operation string
	parent    trace.SpanContext
	attrs     []attribute.KeyValue
	startTime time.Time
}

// AsChildOf records the parent reference. Contexts produced by other
// backends carry no OTel identifiers and are ignored.
func (b *builder) AsChildOf(parent spanx.SpanContext) spanx.SpanBuilder {
	if sc, ok := parent.(SpanContext); ok {
		b.parent = sc.sc
	}

	return b
}

func (b *builder) WithTag(key string, value any) spanx.SpanBuilder {
	b.attrs = append(b.attrs, attr(key, value))
	return b
}

func (b *builder) WithStartTime(t time.Time) spanx.SpanBuilder {
	b.startTime = t
	return b
}

// Start starts the OTel span. The parent reference rides in on a detached
// context; the surrounding spanx machinery owns activation, so the context
// returned by the OTel API is discarded.
func (b *builder) Start() spanx.Span {
	ctx := context.Background()
	if b.parent.IsValid() {
		ctx = trace.ContextWithSpanContext(ctx, b.parent)
	}

	opts := []trace.SpanStartOption{}
	if len(b.attrs) > 0 {
		opts = append(opts, trace.WithAttributes(b.attrs...))
	}
	if !b.startTime.IsZero() {
		opts = append(opts, trace.WithTimestamp(b.startTime))
	}

	_, span := b.tracer.Start(ctx, b.operation, opts...)

	return &Span{span: span}
}

// Span adapts an OTel span to the spanx backend interface.
type Span struct {
	span trace.Span
}

// Unwrap exposes the underlying OTel span for callers that need the full
// OTel API (events, status, links).
func (s *Span) Unwrap() trace.Span { return s.span }

// Context returns the span's identifiers.
func (s *Span) Context() spanx.SpanContext {
	return SpanContext{sc: s.span.SpanContext()}
}

// SetTag sets a single attribute on the span.
func (s *Span) SetTag(key string, value any) spanx.Span {
	s.span.SetAttributes(attr(key, value))
	return s
}

// Finish ends the span.
func (s *Span) Finish() error {
	s.span.End()
	return nil
}

// FinishAt ends the span with an explicit timestamp.
func (s *Span) FinishAt(t time.Time) error {
	s.span.End(trace.WithTimestamp(t))
	return nil
}

// SpanContext wraps an OTel span context.
type SpanContext struct {
	sc trace.SpanContext
}

// TraceID returns the hex trace identifier, empty when unset.
func (c SpanContext) TraceID() string {
	if !c.sc.HasTraceID() {
		return ""
	}

	return c.sc.TraceID().String()
}

// SpanID returns the hex span identifier, empty when unset.
func (c SpanContext) SpanID() string {
	if !c.sc.HasSpanID() {
		return ""
	}

	return c.sc.SpanID().String()
}

// IsValid reports whether the context carries usable identifiers.
func (c SpanContext) IsValid() bool { return c.sc.IsValid() }

// attr converts a tag value to an OTel attribute.
func attr(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
