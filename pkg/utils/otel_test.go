// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var otelEnvVars = []string{
	"OTEL_SERVICE_NAME",
	"OTEL_SERVICE_VERSION",
	"OTEL_EXPORTER_OTLP_PROTOCOL",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_EXPORTER_OTLP_INSECURE",
	"OTEL_TRACES_EXPORTER",
	"OTEL_TRACES_SAMPLE_RATIO",
	"OTEL_METRICS_EXPORTER",
	"OTEL_LOGS_EXPORTER",
}

func clearOTelEnv(t *testing.T) {
	t.Helper()
	for _, env := range otelEnvVars {
		t.Setenv(env, "")
	}
}

func TestOTelConfigFromEnv_Defaults(t *testing.T) {
	clearOTelEnv(t)

	cfg := OTelConfigFromEnv()

	assert.Equal(t, "lfx-v2-zoom-ingest-service", cfg.ServiceName)
	assert.Empty(t, cfg.ServiceVersion)
	assert.Equal(t, OTelProtocolGRPC, cfg.Protocol)
	assert.Empty(t, cfg.Endpoint)
	assert.False(t, cfg.Insecure)
	assert.Equal(t, OTelExporterNone, cfg.TracesExporter)
	assert.Equal(t, 1.0, cfg.TracesSampleRatio)
	assert.Equal(t, OTelExporterNone, cfg.MetricsExporter)
	assert.Equal(t, OTelExporterNone, cfg.LogsExporter)
}

func TestOTelConfigFromEnv_CustomValues(t *testing.T) {
	clearOTelEnv(t)
	t.Setenv("OTEL_SERVICE_NAME", "zoom-ingest-test")
	t.Setenv("OTEL_SERVICE_VERSION", "0.4.0")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_TRACES_EXPORTER", "otlp")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")
	t.Setenv("OTEL_METRICS_EXPORTER", "otlp")
	t.Setenv("OTEL_LOGS_EXPORTER", "otlp")

	cfg := OTelConfigFromEnv()

	assert.Equal(t, "zoom-ingest-test", cfg.ServiceName)
	assert.Equal(t, "0.4.0", cfg.ServiceVersion)
	assert.Equal(t, OTelProtocolHTTP, cfg.Protocol)
	assert.Equal(t, "localhost:4318", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, OTelExporterOTLP, cfg.TracesExporter)
	assert.Equal(t, 0.25, cfg.TracesSampleRatio)
	assert.Equal(t, OTelExporterOTLP, cfg.MetricsExporter)
	assert.Equal(t, OTelExporterOTLP, cfg.LogsExporter)
}

func TestOTelConfigFromEnv_TracesSampleRatio(t *testing.T) {
	tests := []struct {
		name          string
		envValue      string
		expectedRatio float64
	}{
		{"valid zero", "0", 0.0},
		{"valid half", "0.5", 0.5},
		{"negative falls back", "-0.5", 1.0},
		{"above one falls back", "1.5", 1.0},
		{"non-number falls back", "abc", 1.0},
		{"empty falls back", "", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearOTelEnv(t)
			t.Setenv("OTEL_TRACES_SAMPLE_RATIO", tt.envValue)

			assert.Equal(t, tt.expectedRatio, OTelConfigFromEnv().TracesSampleRatio)
		})
	}
}

func TestSetupOTelSDKWithConfig_AllDisabled(t *testing.T) {
	cfg := OTelConfig{
		ServiceName:       "zoom-ingest-test",
		Protocol:          OTelProtocolGRPC,
		TracesExporter:    OTelExporterNone,
		TracesSampleRatio: 1.0,
		MetricsExporter:   OTelExporterNone,
		LogsExporter:      OTelExporterNone,
	}

	ctx := context.Background()
	shutdown, err := SetupOTelSDKWithConfig(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
	// a second shutdown is a no-op
	assert.NoError(t, shutdown(ctx))
}

func TestNewResource(t *testing.T) {
	res, err := newResource(OTelConfig{ServiceName: "zoom-ingest-test", ServiceVersion: "1.0.0"})
	require.NoError(t, err)

	found := map[string]string{}
	for _, attr := range res.Attributes() {
		found[string(attr.Key)] = attr.Value.Emit()
	}
	assert.Equal(t, "zoom-ingest-test", found["service.name"])
	assert.Equal(t, "1.0.0", found["service.version"])
}

func TestNewPropagator(t *testing.T) {
	fields := newPropagator().Fields()

	for _, expected := range []string{"traceparent", "tracestate", "baggage", "uber-trace-id"} {
		assert.Contains(t, fields, expected)
	}
}
