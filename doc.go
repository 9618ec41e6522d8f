// Package spanx manages the active span for an execution context and
// resolves a pluggable tracing backend exactly once per process.
//
// # Overview
//
// The spanx package provides:
//   - A per-execution-context [Stack] of span activations with
//     order-tolerant, idempotent unwinding
//   - Lazy, CAS-based one-time resolution of a backend from a [Registry],
//     with explicit override and a safe default on ambiguity
//   - An [ActiveTracer] that injects the active span as implicit parent and
//     auto-(de)activates spans across their lifetime
//
// # Quick Start
//
// Register a backend (or let the built-in no-op default apply) and carry a
// stack in your context:
//
//	cfg := &otelspan.Config{ServiceName: "my-service"}
//	spanx.RegisterBackend("otel", otelspan.Provider(ctx, cfg))
//
//	ctx, _ := spanx.EnsureStack(context.Background())
//	span := spanx.BuildSpan(ctx, "ProcessBatch").Start()
//	defer span.Finish()
//
// Child spans pick up the active span as implicit parent automatically:
//
//	child := spanx.BuildSpan(ctx, "ProcessItem").Start()
//	defer child.Finish()
//
// # Out-of-order finishes
//
// Finishing a span that is not the top of the stack only marks its record
// closed; the visible active span is untouched until the top itself unwinds,
// at which point any run of already-finished ancestors collapses in one
// pass. Finishing twice is a no-op.
//
// # Cross-goroutine propagation
//
// Stacks are never shared between goroutines implicitly. Use the concurrent
// subpackage to capture the active span before scheduling work and restore
// it inside the new goroutine:
//
//	snap := concurrent.Capture(ctx)
//	go snap.Run(func(ctx context.Context) { work(ctx) })
//
// # Backend resolution
//
// spanx never arbitrates between backends. With exactly one registered
// candidate it is adopted; with zero the no-op default applies; with two or
// more a warning is logged and the default applies. [Set] installs an
// explicit backend and wins over discovery.
//
// # Configuration
//
// Configure via YAML or environment variables:
//
//	spanx:
//	  enabled: true
//	  backend: "otel"  # SPANX_BACKEND; empty = auto-discover
package spanx
