package telemetry_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lattix/lattice"
	"github.com/katalvlaran/lattix/telemetry"
)

func TestLogLevel(t *testing.T) {
	for env, want := range map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"noisy": slog.LevelInfo,
	} {
		t.Setenv("LOG_LEVEL", env)
		assert.Equal(t, want, telemetry.LogLevel(), env)
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	telemetry.NewLogger(&buf, slog.LevelInfo, "json").Info("built", "nodes", 66)
	assert.Contains(t, buf.String(), `"msg":"built"`)
	assert.Contains(t, buf.String(), `"nodes":66`)

	buf.Reset()
	logger := telemetry.NewLogger(&buf, slog.LevelWarn, "text")
	logger.Info("dropped")
	telemetry.WithModel(logger, "mortgage").Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept model=mortgage")
}

func TestSetupLogger_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "INFO")

	var buf bytes.Buffer
	logger := telemetry.SetupLogger(&buf)
	slog.Info("via default")
	assert.Same(t, logger, slog.Default())
	assert.Contains(t, buf.String(), "msg=\"via default\"")
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, slog.Default(), telemetry.FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := telemetry.WithLogger(context.Background(), logger)
	assert.Same(t, logger, telemetry.FromContext(ctx))
}

func counter(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}

		return sum
	}
	t.Fatalf("metric %s not gathered", name)

	return 0
}

func TestMetrics_ObserveLattice(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.ObserveLattice("mortgage", lattice.Stats{Builds: 1, Traversals: 3, LastVisits: 10, TotalVisits: 30})
	m.ObserveLattice("europeanPut", lattice.Stats{Builds: 1, Traversals: 1, LastVisits: 66, TotalVisits: 66})
	m.ObserveRequest("/health", 200, 0.001)

	assert.Equal(t, 2.0, counter(t, reg, "lattix_lattice_builds_total"))
	assert.Equal(t, 4.0, counter(t, reg, "lattix_lattice_traversals_total"))
	assert.Equal(t, 96.0, counter(t, reg, "lattix_lattice_node_visits_total"))
	assert.Equal(t, 1.0, counter(t, reg, "lattix_http_requests_total"))
}
