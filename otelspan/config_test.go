package otelspan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("serviceName: checkout\n"))
	require.NoError(t, err)

	assert.Equal(t, "checkout", cfg.ServiceName)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "otlp", cfg.Exporter)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, "grpc", cfg.Protocol)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "parentbased_always_on", cfg.Sampler)
	assert.InDelta(t, 1.0, cfg.SamplerArg, 0)
	assert.True(t, cfg.IsInsecure())
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "console")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg, err := ParseConfig([]byte("serviceName: checkout\nexporter: otlp\n"))
	require.NoError(t, err)

	assert.Equal(t, "console", cfg.Exporter)
	assert.Equal(t, "collector:4317", cfg.Endpoint)
}

func TestParseConfigMissingServiceName(t *testing.T) {
	_, err := ParseConfig([]byte("exporter: console\n"))
	assert.Error(t, err)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracing.yaml")
	data := "serviceName: checkout\nexporter: console\nsampler: traceidratio\nsamplerArg: 0.25\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Exporter)
	assert.Equal(t, "traceidratio", cfg.Sampler)
	assert.InDelta(t, 0.25, cfg.SamplerArg, 0)
}
