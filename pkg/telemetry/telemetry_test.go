// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNew(t *testing.T) {
	p := New(Config{})

	mfs, err := p.GetRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs, "go and process collectors are registered")
}

func TestProvider_Register(t *testing.T) {
	p := New(Config{})
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "tracelens_test_gauge", Help: "Test gauge."})

	require.NoError(t, p.Register(gauge))
	assert.Error(t, p.Register(gauge), "registering twice must fail")
}

func TestProvider_WriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracelens.prom")
	p := New(Config{MetricsFile: path})
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "tracelens_test_total", Help: "Test counter."})
	require.NoError(t, p.Register(counter))
	counter.Add(3)

	require.NoError(t, p.WriteMetrics(context.Background()))
	b, err := os.ReadFile(path) // #nosec G304
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "tracelens_test_total 3"), "metrics file content: %s", b)
}

func TestProvider_WriteMetrics_Disabled(t *testing.T) {
	assert.NoError(t, New(Config{}).WriteMetrics(context.Background()))
}

func TestProvider_InitTracing(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "success - stdout exporter",
			config: Config{Exporter: STDOUT},
		},
		{
			name:   "success - otlp http exporter",
			config: Config{Exporter: HTTP, Url: "http://localhost:4318"},
		},
		{
			name:   "success - otlp grpc exporter with token",
			config: Config{Exporter: GRPC, Url: "http://localhost:4317", Token: "my-super-secret-token"},
		},
		{
			name:   "success - no exporter",
			config: Config{Exporter: NOOP},
		},
		{
			name:    "failure - unsupported exporter",
			config:  Config{Exporter: "unsupported"},
			wantErr: true,
		},
		{
			name:    "failure - missing certificate",
			config:  Config{Exporter: HTTP, Url: "https://localhost:4318", TLS: TLSConfig{Enabled: true, CertPath: "/does/not/exist.pem"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.config)
			err := p.InitTracing(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
			assert.True(t, ok, "global tracer provider is %T", otel.GetTracerProvider())
			require.NoError(t, p.Shutdown(context.Background()))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "no exporter", config: Config{}},
		{name: "stdout without url", config: Config{Exporter: STDOUT}},
		{name: "http with url", config: Config{Exporter: HTTP, Url: "http://localhost:4318"}},
		{name: "grpc without url", config: Config{Exporter: GRPC}, wantErr: true},
		{name: "unknown exporter", config: Config{Exporter: "kafka"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetTLSConfig(t *testing.T) {
	cfg, err := getTLSConfig(TLSConfig{})
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = getTLSConfig(TLSConfig{Enabled: true})
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	invalid := filepath.Join(t.TempDir(), "invalid.pem")
	require.NoError(t, os.WriteFile(invalid, []byte("not a certificate"), 0o600))
	_, err = getTLSConfig(TLSConfig{Enabled: true, CertPath: invalid})
	assert.Error(t, err)
}
