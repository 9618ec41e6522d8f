package spanx

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// recordTracer is an in-memory backend used across the package tests. It
// records every started span together with the parent reference the builder
// received, which is all the decorator semantics need verifying.
type recordTracer struct {
	mu     sync.Mutex
	nextID atomic.Int64
	spans  []*recordSpan
}

func newRecordTracer() *recordTracer { return &recordTracer{} }

func (t *recordTracer) BuildSpan(operation string) SpanBuilder {
	return &recordBuilder{tracer: t, operation: operation}
}

func (t *recordTracer) started() []*recordSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*recordSpan(nil), t.spans...)
}

func (t *recordTracer) lastStarted() *recordSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.spans) == 0 {
		return nil
	}
	return t.spans[len(t.spans)-1]
}

type recordBuilder struct {
	tracer    *recordTracer
	operation string
	parent    SpanContext
	startTime time.Time
	tags      map[string]any
}

func (b *recordBuilder) AsChildOf(parent SpanContext) SpanBuilder {
	b.parent = parent
	return b
}

func (b *recordBuilder) WithTag(key string, value any) SpanBuilder {
	if b.tags == nil {
		b.tags = make(map[string]any)
	}
	b.tags[key] = value

	return b
}

func (b *recordBuilder) WithStartTime(t time.Time) SpanBuilder {
	b.startTime = t
	return b
}

func (b *recordBuilder) Start() Span {
	id := b.tracer.nextID.Add(1)
	span := &recordSpan{
		operation: b.operation,
		parent:    b.parent,
		startTime: b.startTime,
		tags:      b.tags,
		ctx:       recordContext{traceID: "trace", spanID: fmt.Sprintf("span-%d", id)},
	}
	b.tracer.mu.Lock()
	b.tracer.spans = append(b.tracer.spans, span)
	b.tracer.mu.Unlock()

	return span
}

type recordSpan struct {
	operation string
	parent    SpanContext
	startTime time.Time
	tags      map[string]any
	ctx       recordContext

	finishErr   error
	finishCount int
	finishedAt  time.Time
}

func (s *recordSpan) Context() SpanContext { return s.ctx }

func (s *recordSpan) SetTag(key string, value any) Span {
	if s.tags == nil {
		s.tags = make(map[string]any)
	}
	s.tags[key] = value

	return s
}

func (s *recordSpan) Finish() error {
	s.finishCount++
	return s.finishErr
}

func (s *recordSpan) FinishAt(t time.Time) error {
	s.finishCount++
	s.finishedAt = t

	return s.finishErr
}

type recordContext struct {
	traceID string
	spanID  string
}

func (c recordContext) TraceID() string { return c.traceID }
func (c recordContext) SpanID() string  { return c.spanID }
func (c recordContext) IsValid() bool   { return c.spanID != "" }
