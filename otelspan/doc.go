// Package otelspan adapts OpenTelemetry tracing to the spanx backend
// interfaces.
//
// The adapter maps spanx operations onto the OTel trace API: builders become
// span start options, tags become attributes, and finish calls end the
// underlying OTel span. Register it as a named backend so resolution can
// discover it:
//
//	cfg := &otelspan.Config{ServiceName: "checkout", Exporter: "otlp"}
//	spanx.RegisterBackend("otel", otelspan.Provider(context.Background(), cfg))
//
// Bootstrap builds the SDK tracer provider (resource, sampler, exporter) for
// applications that want to manage provider lifecycle themselves:
//
//	tp, err := otelspan.Bootstrap(ctx, cfg)
//	defer tp.Shutdown(ctx)
//	tracer := otelspan.New(tp.Tracer("checkout"))
package otelspan
