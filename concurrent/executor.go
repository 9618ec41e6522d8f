package concurrent

import "context"

// Executor is the minimal scheduling capability the decorator wraps: any
// worker pool or dispatcher that accepts a task for asynchronous execution.
type Executor interface {
	Execute(task func())
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(task func())

// Execute calls f(task).
func (f ExecutorFunc) Execute(task func()) { f(task) }

// TracedExecutor decorates an Executor so every task runs with the
// submitter's active span restored. The span is captured per submission, on
// the submitting goroutine; the worker goroutine gets a fresh stack that is
// cleared when the task finishes.
type TracedExecutor struct {
	delegate Executor
}

// NewTracedExecutor wraps delegate. It panics on a nil delegate.
func NewTracedExecutor(delegate Executor) *TracedExecutor {
	if delegate == nil {
		panic("concurrent: executor delegate must not be nil")
	}

	return &TracedExecutor{delegate: delegate}
}

// Execute schedules task on the underlying executor with the active span of
// ctx restored around it.
func (e *TracedExecutor) Execute(ctx context.Context, task func(ctx context.Context), opts ...Option) {
	e.delegate.Execute(WrapFunc(ctx, task, opts...))
}
