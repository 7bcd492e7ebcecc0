package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/services"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/config"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/repositories/csv"
	"github.com/sverzijl/planning-latest-sub007/pkg/interfaces/cli/output"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

const laneDir = "../../../../testdata/scenarios/lane"

func newTestRuntime(t *testing.T, metrics bool) *Runtime {
	t.Helper()
	cfg := config.Default()
	cfg.Solver.TimeLimit = 30 * time.Second
	cfg.Solver.GapTolerance = 1e-9
	cfg.Metrics.Enabled = metrics
	rt, err := NewRuntime(&cfg, io.Discard)
	require.NoError(t, err)
	return rt
}

func TestRuntime_UnknownBackend(t *testing.T) {
	rt := newTestRuntime(t, false)
	rt.Config.Solver.Backend = "cplex"

	_, err := rt.Planner()
	assert.ErrorContains(t, err, "unknown solver backend")
}

func TestRuntime_RequestOverridesWindow(t *testing.T) {
	rt := newTestRuntime(t, false)
	data, err := csv.NewLoader().LoadDirectory(laneDir)
	require.NoError(t, err)

	req, err := rt.Request(data, "", "2025-06-05")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", req.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-06-05", req.End.Format("2006-01-02"))
	assert.True(t, req.Flags.AllowShortages)

	_, err = rt.Request(data, "June 2", "")
	assert.ErrorContains(t, err, "invalid start date")
}

func TestSolveCommand_Lane(t *testing.T) {
	rt := newTestRuntime(t, true)
	outDir := t.TempDir()
	metricsFile := filepath.Join(outDir, "metrics.prom")

	cmd := NewSolveCommand(rt, SolveConfig{
		ScenarioDir: laneDir,
		MetricsFile: metricsFile,
		Output:      output.Config{Format: "json", OutputDir: outDir},
	})
	require.NoError(t, cmd.Execute(context.Background()))

	data, err := os.ReadFile(filepath.Join(outDir, "plan.json"))
	require.NoError(t, err)
	var result dto.PlanningResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, solver.StatusOptimal, result.Solve.Status)
	assert.InDelta(t, 1000, result.Totals.Production, 1e-6)
	assert.InDelta(t, 0, result.Totals.Shortage, 1e-6)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "planner_solver_solves_total")

	all, err := rt.Events.ReadAllEvents(0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSolveCommand_Text(t *testing.T) {
	rt := newTestRuntime(t, false)
	var buf bytes.Buffer

	cmd := NewSolveCommand(rt, SolveConfig{
		ScenarioDir: laneDir,
		Output:      output.Config{Format: "text", Writer: &buf},
	})
	require.NoError(t, cmd.Execute(context.Background()))
	assert.Contains(t, buf.String(), "optimal")
}

func TestSolveCommand_Errors(t *testing.T) {
	rt := newTestRuntime(t, false)

	err := NewSolveCommand(rt, SolveConfig{}).Execute(context.Background())
	assert.ErrorContains(t, err, "scenario directory is required")

	err = NewSolveCommand(rt, SolveConfig{ScenarioDir: filepath.Join(t.TempDir(), "missing")}).Execute(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRollingCommand_Lane(t *testing.T) {
	rt := newTestRuntime(t, false)
	var buf bytes.Buffer

	cmd := NewRollingCommand(rt, RollingCommandConfig{
		ScenarioDir: laneDir,
		WindowDays:  4,
		CommitDays:  2,
		Output:      output.Config{Writer: &buf},
	})
	require.NoError(t, cmd.Execute(context.Background()))

	text := buf.String()
	assert.Contains(t, text, "Rolling Horizon (3 windows)")
	assert.Contains(t, text, "demand 1000, satisfied 1000, short 0")
}

func TestBatchCommand(t *testing.T) {
	rt := newTestRuntime(t, false)
	generated := filepath.Join(t.TempDir(), "generated")
	require.NoError(t, NewGenerateCommand(GenerateConfig{
		Hubs: 1, Stores: 1, Products: 1, Days: 5, Seed: 7, OutputDir: generated,
	}).Execute(context.Background()))

	var buf bytes.Buffer
	outDir := t.TempDir()
	cmd := NewBatchCommand(rt, BatchConfig{
		ScenarioDirs: []string{laneDir, generated},
		Parallelism:  2,
		Output:       output.Config{OutputDir: outDir, Writer: &buf},
	})
	require.NoError(t, cmd.Execute(context.Background()))

	assert.Contains(t, buf.String(), "SCENARIO")
	assert.Contains(t, buf.String(), "lane")
	assert.Contains(t, buf.String(), "generated")
	assert.FileExists(t, filepath.Join(outDir, "lane", "plan.json"))
	assert.FileExists(t, filepath.Join(outDir, "generated", "plan.json"))
}

func TestBatchCommand_MissingScenario(t *testing.T) {
	rt := newTestRuntime(t, false)
	cmd := NewBatchCommand(rt, BatchConfig{ScenarioDirs: []string{laneDir, "does-not-exist"}})

	err := cmd.Execute(context.Background())
	assert.ErrorContains(t, err, "does-not-exist")

	err = NewBatchCommand(rt, BatchConfig{}).Execute(context.Background())
	assert.Error(t, err)
}

func TestGenerateCommand_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cmd := NewGenerateCommand(GenerateConfig{
		Hubs:        2,
		Stores:      4,
		Products:    2,
		Days:        10,
		Inventory:   1,
		FrozenLanes: 0.5,
		Trucks:      true,
		Seed:        42,
		OutputDir:   dir,
	})
	require.NoError(t, cmd.Execute(context.Background()))

	data, err := csv.NewLoader().LoadDirectory(dir)
	require.NoError(t, err)
	s := data.Scenario

	assert.Len(t, s.Nodes, 7)
	assert.Len(t, s.Routes, 6)
	assert.Len(t, s.Products, 2)
	assert.Len(t, s.Trucks, 2)
	require.NotNil(t, s.Inventory)
	assert.Len(t, s.Inventory.Entries, 4)
	assert.NotEmpty(t, s.Forecast)
	assert.Equal(t, "2025-06-02", data.Manifest.Start)
	assert.Equal(t, "2025-06-11", data.Manifest.End)

	// Sunday is left out of the labor calendar
	assert.Len(t, s.LaborDays, 9)

	assert.NoError(t, services.NewScenarioValidator().Validate(s).Err())
}

func TestGenerateCommand_Deterministic(t *testing.T) {
	read := func() []byte {
		dir := t.TempDir()
		cfg := GenerateConfig{Hubs: 1, Stores: 3, Products: 2, Days: 7, Seed: 99, OutputDir: dir}
		require.NoError(t, NewGenerateCommand(cfg).Execute(context.Background()))
		data, err := os.ReadFile(filepath.Join(dir, csv.ForecastFile))
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, read(), read())
}

func TestGenerateCommand_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  GenerateConfig
		want string
	}{
		{"no output", GenerateConfig{Hubs: 1, Stores: 1, Products: 1, Days: 5}, "output directory"},
		{"no hubs", GenerateConfig{Stores: 1, Products: 1, Days: 5, OutputDir: "x"}, "must be positive"},
		{"short horizon", GenerateConfig{Hubs: 1, Stores: 1, Products: 1, Days: 1, OutputDir: "x"}, "at least 2"},
		{"frozen share", GenerateConfig{Hubs: 1, Stores: 1, Products: 1, Days: 5, FrozenLanes: 2, OutputDir: "x"}, "frozen lane share"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGenerateCommand(tt.cfg).Execute(context.Background())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
