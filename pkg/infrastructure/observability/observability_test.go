package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestMetrics_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordSolve("gonum", "optimal", 0.2)
	m.RecordSolve("gonum", "optimal", 0.4)
	m.RecordSolve("highs", "timeout", 120)
	m.RecordModel(120, 80, 49)
	m.RecordWindow()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.solvesTotal.WithLabelValues("gonum", "optimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.solvesTotal.WithLabelValues("highs", "timeout")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.programVariables))
	assert.Equal(t, 49.0, testutil.ToFloat64(m.inventoryCohorts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rollingWindows))

	expected := `
# HELP planner_errors_total Planning runs aborted by phase
# TYPE planner_errors_total counter
planner_errors_total{phase="assemble"} 1
`
	m.RecordError("assemble")
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "planner_errors_total"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSolve("gonum", "optimal", 1)
		m.RecordModel(1, 1, 1)
		m.RecordError("solve")
		m.RecordWindow()
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", true)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "node", "MFG")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"node":"MFG"`)

	_, err = NewLogger(&buf, "verbose", false)
	assert.Error(t, err)

	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestPhaseSpans(t *testing.T) {
	ctx, span := StartPhase(context.Background(), Tracer(), "index")
	require.NotNil(t, ctx)
	assert.NotPanics(t, func() { EndPhase(span, errors.New("boom")) })
}

func TestInstallTracing(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InstallTracing(&buf)
	require.NoError(t, err)
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	_, span := StartPhase(context.Background(), Tracer(), "solve")
	EndPhase(span, errors.New("no plan"))
	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name": "planner.solve"`)
	assert.Contains(t, out, "no plan")
}
