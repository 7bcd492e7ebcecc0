package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "gonum", cfg.Solver.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Solver.TimeLimit)
	assert.Equal(t, 0.01, cfg.Solver.GapTolerance)
	assert.Equal(t, 28, cfg.Rolling.WindowDays)
	assert.Equal(t, 7, cfg.Rolling.CommitDays)
	assert.True(t, cfg.Planning.AllowShortages)
}

func TestLoad_YAMLThenEnvironment(t *testing.T) {
	path := writeFile(t, "planner.yaml", `
solver:
  backend: highs
  time_limit: 30s
  gap_tolerance: 0.005
planning:
  strict_calendar: true
rolling:
  window_days: 14
  commit_days: 7
log:
  level: debug
`)
	t.Setenv("PLANNER_TIME_LIMIT", "45s")
	t.Setenv("PLANNER_ALLOW_SHORTAGES", "false")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "highs", cfg.Solver.Backend)
	assert.Equal(t, 45*time.Second, cfg.Solver.TimeLimit, "environment wins over the file")
	assert.Equal(t, 0.005, cfg.Solver.GapTolerance)
	assert.True(t, cfg.Planning.StrictCalendar)
	assert.False(t, cfg.Planning.AllowShortages)
	assert.Equal(t, 14, cfg.Rolling.WindowDays)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	env := writeFile(t, "test.env", "PLANNER_SOLVER=highs\nPLANNER_WINDOW_DAYS=10\n")
	t.Setenv("PLANNER_SOLVER", "")
	t.Setenv("PLANNER_WINDOW_DAYS", "")
	os.Unsetenv("PLANNER_SOLVER")
	os.Unsetenv("PLANNER_WINDOW_DAYS")

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "highs", cfg.Solver.Backend)
	assert.Equal(t, 10, cfg.Rolling.WindowDays)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"PLANNER_SOLVER": "cplex"}},
		{"bad duration", map[string]string{"PLANNER_TIME_LIMIT": "soon"}},
		{"bad bool", map[string]string{"PLANNER_STRICT_CALENDAR": "maybe"}},
		{"commit beyond window", map[string]string{"PLANNER_WINDOW_DAYS": "5", "PLANNER_COMMIT_DAYS": "6"}},
		{"unknown log level", map[string]string{"PLANNER_LOG_LEVEL": "chatty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
