package otelspan

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// exporterParams holds the effective exporter parameters after defaults.
type exporterParams struct {
	Type        string            // "otlp", "console", "none"
	Protocol    string            // "grpc", "http/protobuf"
	Endpoint    string            // host:port or URL
	Headers     map[string]string // custom headers
	Timeout     time.Duration     // request timeout
	Compression string            // "gzip", "none"
	Insecure    bool              // disable TLS
}

func resolveExporterParams(cfg *Config) exporterParams {
	params := exporterParams{
		Type:     "otlp",
		Protocol: "grpc",
		Endpoint: "localhost:4317",
		Timeout:  10 * time.Second,
		Insecure: true,
	}

	if cfg == nil {
		return params
	}

	if cfg.Exporter != "" {
		params.Type = cfg.Exporter
	}
	if cfg.Protocol != "" {
		params.Protocol = cfg.Protocol
	}
	if cfg.Endpoint != "" {
		params.Endpoint = cfg.Endpoint
	}
	if cfg.Timeout > 0 {
		params.Timeout = cfg.Timeout
	}
	if cfg.Headers != nil {
		params.Headers = cfg.Headers
	}
	params.Compression = cfg.Compression
	params.Insecure = cfg.IsInsecure()

	return params
}

// nopSpanExporter is a no-op span exporter.
type nopSpanExporter struct{}

func (nopSpanExporter) ExportSpans(_ context.Context, _ []sdktrace.ReadOnlySpan) error { return nil }
func (nopSpanExporter) Shutdown(_ context.Context) error                               { return nil }

// buildTraceExporter creates a trace exporter based on configuration.
func buildTraceExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	params := resolveExporterParams(cfg)
	params.Type = normalizeExporterType(params.Type)

	switch params.Type {
	case "console":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "nop":
		return nopSpanExporter{}, nil
	default:
		return buildOTLPTraceExporter(ctx, params)
	}
}

func buildOTLPTraceExporter(ctx context.Context, params exporterParams) (sdktrace.SpanExporter, error) {
	if params.Protocol == "http/protobuf" || params.Protocol == "http" {
		opts := []otlptracehttp.Option{}
		if endpoint, path := splitEndpointURL(params.Endpoint); endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
			if path != "" {
				opts = append(opts, otlptracehttp.WithURLPath(path))
			}
		} else {
			opts = append(opts, otlptracehttp.WithEndpoint(params.Endpoint))
		}

		if len(params.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(params.Headers))
		}
		if params.Timeout > 0 {
			opts = append(opts, otlptracehttp.WithTimeout(params.Timeout))
		}
		if params.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if params.Compression == "gzip" {
			opts = append(opts, otlptracehttp.WithCompression(otlptracehttp.GzipCompression))
		}

		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	}

	// Default to gRPC
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(params.Endpoint),
	}
	if len(params.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(params.Headers))
	}
	if params.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(params.Timeout))
	}
	if params.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if params.Compression == "gzip" {
		opts = append(opts, otlptracegrpc.WithCompressor("gzip"))
	}

	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}

func normalizeExporterType(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "otlp"
	}
	switch v {
	case "stdout":
		return "console"
	case "noop":
		return "nop"
	default:
		return v
	}
}

func splitEndpointURL(raw string) (host string, path string) {
	if raw == "" {
		return "", ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || !isHTTPSScheme(parsed.Scheme) {
		return "", ""
	}

	return parsed.Host, parsed.Path
}

func isHTTPSScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
