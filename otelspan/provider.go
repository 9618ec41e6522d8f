package otelspan

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/arloliu/spanx"
)

// ErrServiceNameRequired is returned when ServiceName is empty.
var ErrServiceNameRequired = errors.New("otelspan: service name is required")

// Bootstrap initializes the OpenTelemetry TracerProvider from cfg: resource,
// sampler and exporter. The provider is also installed as the OTel global so
// other instrumentation in the process picks it up. The caller owns shutdown.
func Bootstrap(ctx context.Context, cfg *Config) (*sdktrace.TracerProvider, error) {
	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := buildTraceExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(buildSampler(cfg)),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}

// Provider returns a backend factory for registration with spanx. The SDK
// provider is built lazily, on first resolution:
//
//	spanx.RegisterBackend("otel", otelspan.Provider(ctx, cfg))
func Provider(ctx context.Context, cfg *Config) spanx.Provider {
	return func() (spanx.Tracer, error) {
		tp, err := Bootstrap(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return New(tp.Tracer(cfg.ServiceName)), nil
	}
}

// buildResource creates the resource describing the instrumented service.
func buildResource(ctx context.Context, cfg *Config) (*resource.Resource, error) {
	if cfg == nil || cfg.ServiceName == "" {
		return nil, ErrServiceNameRequired
	}

	baseAttrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	for key, value := range cfg.ResourceAttributes {
		if key == "" {
			continue
		}
		baseAttrs = append(baseAttrs, attribute.String(key, value))
	}

	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(baseAttrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}

func buildSampler(cfg *Config) sdktrace.Sampler {
	name := "parentbased_always_on"
	arg := 1.0
	if cfg != nil {
		if cfg.Sampler != "" {
			name = cfg.Sampler
		}
		arg = cfg.SamplerArg
	}

	// OTel standard sampler names per specification
	// https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/
	switch name {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(arg)
	case "parentbased_always_on":
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case "parentbased_always_off":
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case "parentbased_traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(arg))
	default:
		// Default to parentbased_always_on per OTel spec
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}
