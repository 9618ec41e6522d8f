// Package main provides the spanx-demo CLI tool that walks through active
// span management against a console-exporting OpenTelemetry backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/arloliu/spanx"
	"github.com/arloliu/spanx/concurrent"
	"github.com/arloliu/spanx/otelspan"
)

func main() {
	var (
		serviceName = flag.String("service-name", "spanx-demo", "Service name for the trace resource")
		exporter    = flag.String("exporter", "console", "Trace exporter: console, otlp, none")
		endpoint    = flag.String("endpoint", "localhost:4317", "OTLP endpoint (when exporter is otlp)")
	)
	flag.Parse()

	if err := run(*serviceName, *exporter, *endpoint); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(serviceName, exporter, endpoint string) error {
	ctx := context.Background()

	cfg := &otelspan.Config{
		ServiceName: serviceName,
		Exporter:    exporter,
		Endpoint:    endpoint,
	}

	tp, err := otelspan.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	// Register the backend and let first use resolve it.
	spanx.RegisterBackend("otel", func() (spanx.Tracer, error) {
		return otelspan.New(tp.Tracer(serviceName)), nil
	})

	ctx, _ = spanx.EnsureStack(ctx)

	if err := handleRequest(ctx); err != nil {
		return err
	}

	fmt.Printf("Resolved backend origin: %s\n", spanx.Default().Origin())

	return nil
}

// handleRequest simulates one request: a root span, nested children picking
// up their parents implicitly, an out-of-order finish, and work fanned out to
// another goroutine.
func handleRequest(ctx context.Context) error {
	backend, err := spanx.Resolve()
	if err != nil {
		return err
	}

	// The request root is built directly on the backend; everything below
	// it inherits through the active span.
	root := spanx.Activate(ctx, backend.BuildSpan("demo.request").
		WithTag("demo.step", "root").
		Start())
	defer spanx.Deactivate(root)
	defer func() { _ = root.Span().Finish() }()

	// Implicit parenting: no AsChildOf anywhere below.
	auth := spanx.BuildSpan(ctx, "demo.auth").Start()
	if err := checkAuth(); err != nil {
		_ = auth.Finish()
		return err
	}
	if err := auth.Finish(); err != nil {
		return err
	}

	// Out-of-order finishes: the outer query finishes before the retry
	// span it started. The stack stays consistent either way.
	query := spanx.BuildSpan(ctx, "demo.query").Start()
	retry := spanx.BuildSpan(ctx, "demo.query.retry").Start()
	if err := query.Finish(); err != nil {
		return err
	}
	if err := retry.Finish(); err != nil {
		return err
	}

	// Fan out to a worker goroutine; the captured span follows the task.
	var wg sync.WaitGroup
	wg.Add(1)
	concurrent.Go(ctx, func(taskCtx context.Context) {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		fmt.Printf("worker active span trace: %s\n",
			spanx.ActiveSpan(taskCtx).Context().TraceID())
	}, concurrent.WithOperationName("demo.worker"))
	wg.Wait()

	return nil
}

func checkAuth() error {
	time.Sleep(5 * time.Millisecond)
	return nil
}
