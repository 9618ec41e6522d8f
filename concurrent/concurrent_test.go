package concurrent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/spanx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTracer is a minimal recording backend for the wrapper tests.
type stubTracer struct {
	mu    sync.Mutex
	seq   int
	spans []*stubSpan
}

func (t *stubTracer) BuildSpan(operation string) spanx.SpanBuilder {
	return &stubBuilder{tracer: t, operation: operation}
}

func (t *stubTracer) lastStarted() *stubSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.spans) == 0 {
		return nil
	}
	return t.spans[len(t.spans)-1]
}

type stubBuilder struct {
	tracer    *stubTracer
	operation string
	parent    spanx.SpanContext
}

func (b *stubBuilder) AsChildOf(parent spanx.SpanContext) spanx.SpanBuilder {
	b.parent = parent
	return b
}

func (b *stubBuilder) WithTag(string, any) spanx.SpanBuilder     { return b }
func (b *stubBuilder) WithStartTime(time.Time) spanx.SpanBuilder { return b }

func (b *stubBuilder) Start() spanx.Span {
	b.tracer.mu.Lock()
	defer b.tracer.mu.Unlock()
	b.tracer.seq++
	span := &stubSpan{
		operation: b.operation,
		parent:    b.parent,
		id:        fmt.Sprintf("stub-%d", b.tracer.seq),
	}
	b.tracer.spans = append(b.tracer.spans, span)

	return span
}

type stubSpan struct {
	operation string
	parent    spanx.SpanContext
	id        string

	mu        sync.Mutex
	finishes  int
	finishErr error
}

func (s *stubSpan) Context() spanx.SpanContext { return stubContext{spanID: s.id} }

func (s *stubSpan) SetTag(string, any) spanx.Span { return s }

func (s *stubSpan) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishes++

	return s.finishErr
}

func (s *stubSpan) FinishAt(time.Time) error { return s.Finish() }

func (s *stubSpan) finishCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishes
}

type stubContext struct{ spanID string }

func (c stubContext) TraceID() string { return "stub-trace" }
func (c stubContext) SpanID() string  { return c.spanID }
func (c stubContext) IsValid() bool   { return c.spanID != "" }

// setupBackend installs a stub backend on a private default resolver for the
// duration of the test and returns it with a context carrying an active span.
func setupBackend(t *testing.T) (*stubTracer, context.Context, *stubSpan) {
	t.Helper()

	backend := &stubTracer{}
	r := spanx.NewResolver(spanx.WithRegistry(spanx.NewRegistry()))
	r.Set(backend)

	prev := spanx.Default()
	spanx.SetDefault(r)
	t.Cleanup(func() { spanx.SetDefault(prev) })

	ctx, stack := spanx.EnsureStack(context.Background())
	parent := backend.BuildSpan("parent").Start().(*stubSpan)
	stack.Activate(parent)

	return backend, ctx, parent
}

func TestCaptureAndRun(t *testing.T) {
	_, ctx, parent := setupBackend(t)

	snap := Capture(ctx)
	assert.Same(t, parent, snap.Span().(*stubSpan))

	var observed spanx.Span
	done := make(chan struct{})
	go snap.Run(func(taskCtx context.Context) {
		observed = spanx.ActiveSpan(taskCtx)
		close(done)
	})
	<-done

	assert.Same(t, parent, observed.(*stubSpan))
	// The scheduling context keeps its own active span.
	assert.Same(t, parent, spanx.ActiveSpan(ctx).(*stubSpan))
}

func TestCaptureEmpty(t *testing.T) {
	snap := Capture(context.Background())
	assert.Nil(t, snap.Span())

	snap.Run(func(taskCtx context.Context) {
		assert.True(t, spanx.IsNoop(spanx.ActiveSpan(taskCtx)))
	})
}

func TestSnapshotCall(t *testing.T) {
	_, ctx, parent := setupBackend(t)

	wantErr := errors.New("task failed")
	err := Capture(ctx).Call(func(taskCtx context.Context) error {
		assert.Same(t, parent, spanx.ActiveSpan(taskCtx).(*stubSpan))
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestWrapRestoresAcrossGoroutine(t *testing.T) {
	_, ctx, parent := setupBackend(t)

	var observed spanx.Span
	task := Wrap(ctx, func(taskCtx context.Context) error {
		observed = spanx.ActiveSpan(taskCtx)
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- task() }()
	require.NoError(t, <-done)

	assert.Same(t, parent, observed.(*stubSpan))
}

func TestWrapWithOperationName(t *testing.T) {
	backend, ctx, parent := setupBackend(t)

	task := Wrap(ctx, func(taskCtx context.Context) error {
		// The wrapper-started span is active inside the task.
		assert.Equal(t, "task-op", backend.lastStarted().operation)
		return nil
	}, WithOperationName("task-op"))

	require.NoError(t, task())

	started := backend.lastStarted()
	require.NotNil(t, started)
	assert.Equal(t, "task-op", started.operation)
	require.NotNil(t, started.parent, "captured span must become the implicit parent")
	assert.Equal(t, parent.Context().SpanID(), started.parent.SpanID())
	assert.Equal(t, 1, started.finishCount(), "wrapper must finish its span exactly once")
}

func TestWrapWithExplicitParent(t *testing.T) {
	backend, ctx, _ := setupBackend(t)

	remote := backend.BuildSpan("remote").Start()
	task := Wrap(ctx, func(context.Context) error { return nil },
		WithOperationName("task-op"), AsChildOf(remote.Context()))
	require.NoError(t, task())

	started := backend.lastStarted()
	assert.Equal(t, remote.Context().SpanID(), started.parent.SpanID())
}

func TestWrapJoinsFinishError(t *testing.T) {
	backend, ctx, _ := setupBackend(t)

	taskErr := errors.New("task failed")
	finishErr := errors.New("finish failed")

	task := Wrap(ctx, func(context.Context) error {
		backend.lastStarted().finishErr = finishErr
		return taskErr
	}, WithOperationName("task-op"))

	err := task()
	assert.ErrorIs(t, err, taskErr)
	assert.ErrorIs(t, err, finishErr)
}

func TestWrapFinishesSpanOnPanic(t *testing.T) {
	backend, ctx, _ := setupBackend(t)

	task := Wrap(ctx, func(context.Context) error {
		panic("boom")
	}, WithOperationName("task-op"))

	assert.Panics(t, func() { _ = task() })
	assert.Equal(t, 1, backend.lastStarted().finishCount())
}

func TestWrapWithoutActiveSpanShortCircuits(t *testing.T) {
	backend := &stubTracer{}
	r := spanx.NewResolver(spanx.WithRegistry(spanx.NewRegistry()))
	r.Set(backend)
	prev := spanx.Default()
	spanx.SetDefault(r)
	t.Cleanup(func() { spanx.SetDefault(prev) })

	task := Wrap(context.Background(), func(context.Context) error { return nil },
		WithOperationName("task-op"))
	require.NoError(t, task())

	assert.Nil(t, backend.lastStarted(), "no parent anywhere: nothing to trace")
}

func TestTracedExecutor(t *testing.T) {
	_, ctx, parent := setupBackend(t)

	var wg sync.WaitGroup
	pool := ExecutorFunc(func(task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task()
		}()
	})

	exec := NewTracedExecutor(pool)
	var observed spanx.Span
	exec.Execute(ctx, func(taskCtx context.Context) {
		observed = spanx.ActiveSpan(taskCtx)
	})
	wg.Wait()

	assert.Same(t, parent, observed.(*stubSpan))
}

func TestTracedExecutorSynchronousDelegate(t *testing.T) {
	_, ctx, parent := setupBackend(t)

	exec := NewTracedExecutor(ExecutorFunc(func(task func()) { task() }))
	var observed spanx.Span
	exec.Execute(ctx, func(taskCtx context.Context) {
		observed = spanx.ActiveSpan(taskCtx)
	})

	assert.Same(t, parent, observed.(*stubSpan))
}

func TestNewTracedExecutorValidation(t *testing.T) {
	assert.Panics(t, func() { NewTracedExecutor(nil) })
}
