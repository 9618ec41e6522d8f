package concurrent

import (
	"context"
	"errors"

	"github.com/arloliu/spanx"
)

// Snapshot holds the span captured from a scheduling context. The zero value
// is valid and restores "no active span".
type Snapshot struct {
	span spanx.Span
}

// Capture snapshots the active span of ctx's execution context. Call it on
// the scheduling goroutine, before handing work to another one.
func Capture(ctx context.Context) Snapshot {
	return Snapshot{span: spanx.StackFromContext(ctx).Peek()}
}

// Span returns the captured span, or nil if none was active.
func (s Snapshot) Span() spanx.Span { return s.span }

// restore installs the captured span on a fresh stack attached to ctx and
// returns the release function. The release clears the task stack so the
// goroutine can be reused safely.
func (s Snapshot) restore(ctx context.Context) (context.Context, func()) {
	stack := spanx.NewStack()
	taskCtx := spanx.ContextWithStack(ctx, stack)
	act := stack.Activate(s.span)

	return taskCtx, func() {
		act.Deactivate()
		stack.Clear()
	}
}

// Run executes fn with the captured span restored as the active span.
// Intended to be the body of a goroutine.
func (s Snapshot) Run(fn func(ctx context.Context)) {
	ctx, release := s.restore(context.Background())
	defer release()
	fn(ctx)
}

// Call executes fn with the captured span restored and returns its error.
func (s Snapshot) Call(fn func(ctx context.Context) error) error {
	ctx, release := s.restore(context.Background())
	defer release()

	return fn(ctx)
}

// Option configures a wrapped task.
type Option func(*options)

type options struct {
	operation string
	parent    spanx.SpanContext
}

// WithOperationName makes the wrapper start a new span with the given name
// around the task. Without it the task runs under the captured span only.
func WithOperationName(operation string) Option {
	return func(o *options) { o.operation = operation }
}

// AsChildOf sets an explicit parent for the span started by
// [WithOperationName], instead of the captured active span.
func AsChildOf(parent spanx.SpanContext) Option {
	return func(o *options) { o.parent = parent }
}

// Wrap captures the active span of ctx now and returns a function that runs
// fn with that span restored. The task context derives from ctx, so values
// and cancellation carry over; only the active-span stack is replaced.
//
// The task's own error always comes first in the returned error; a failure
// finishing the wrapper-started span never replaces it.
func Wrap(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) func() error {
	snap := Capture(ctx)
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func() (err error) {
		taskCtx, release := snap.restore(ctx)
		defer release()

		if o.operation == "" {
			return fn(taskCtx)
		}

		builder := spanx.BuildSpan(taskCtx, o.operation)
		if o.parent != nil {
			builder.AsChildOf(o.parent)
		}
		span := builder.Start()
		// Finish in a defer so the span is terminated even when the task
		// panics; a finish failure never replaces the task's own error.
		defer func() {
			if finishErr := span.Finish(); finishErr != nil {
				err = errors.Join(err, finishErr)
			}
		}()

		return fn(taskCtx)
	}
}

// WrapFunc is Wrap for tasks without an error return.
func WrapFunc(ctx context.Context, fn func(ctx context.Context), opts ...Option) func() {
	wrapped := Wrap(ctx, func(c context.Context) error {
		fn(c)
		return nil
	}, opts...)

	return func() { _ = wrapped() }
}

// Go runs fn on a new goroutine with the active span of ctx restored.
func Go(ctx context.Context, fn func(ctx context.Context), opts ...Option) {
	wrapped := WrapFunc(ctx, fn, opts...)
	go wrapped()
}
