// Package concurrent propagates the active span across goroutine and
// executor boundaries.
//
// Propagation is always an explicit capture-then-restore: [Capture] snapshots
// the caller's active span before work is scheduled, and the wrappers restore
// it on a fresh per-task stack inside the new goroutine. The task stack is
// cleared when the task returns, including on the failure path, so an
// unclosed span can never leak into the next task a worker picks up.
//
// Typical usage with a plain goroutine:
//
//	snap := concurrent.Capture(ctx)
//	go snap.Run(func(ctx context.Context) { work(ctx) })
//
// or with any executor-like scheduler:
//
//	exec := concurrent.NewTracedExecutor(pool)
//	exec.Execute(ctx, func(ctx context.Context) { work(ctx) })
//
// Wrappers can optionally start a fresh span around the task with
// [WithOperationName]; without it the task simply runs under the captured
// span.
package concurrent
