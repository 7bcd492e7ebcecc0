package commands

import (
	"context"
	"fmt"

	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/repositories/csv"
	"github.com/sverzijl/planning-latest-sub007/pkg/interfaces/cli/output"
)

// SolveConfig holds configuration for a single planning run
type SolveConfig struct {
	ScenarioDir string
	// Start and End override the window in scenario.yaml when set
	Start       string
	End         string
	MetricsFile string
	Output      output.Config
}

// SolveCommand plans one scenario directory in a single solve
type SolveCommand struct {
	config  SolveConfig
	runtime *Runtime
	loader  *csv.Loader
}

// NewSolveCommand creates a new solve command
func NewSolveCommand(rt *Runtime, config SolveConfig) *SolveCommand {
	return &SolveCommand{
		config:  config,
		runtime: rt,
		loader:  csv.NewLoader(),
	}
}

// Execute runs the solve command
func (cmd *SolveCommand) Execute(ctx context.Context) error {
	if cmd.config.ScenarioDir == "" {
		return fmt.Errorf("scenario directory is required")
	}

	data, err := cmd.loader.LoadDirectory(cmd.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	req, err := cmd.runtime.Request(data, cmd.config.Start, cmd.config.End)
	if err != nil {
		return err
	}
	planner, err := cmd.runtime.Planner()
	if err != nil {
		return err
	}

	cmd.runtime.Logger.Info("planning scenario",
		"scenario", data.Manifest.Name,
		"start", req.Start.Format("2006-01-02"),
		"end", req.End.Format("2006-01-02"),
		"backend", cmd.runtime.Config.Solver.Backend)

	result, err := planner.Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	if err := output.Generate(result, cmd.config.Output); err != nil {
		return fmt.Errorf("failed to generate output: %w", err)
	}
	if err := cmd.runtime.WriteMetrics(cmd.config.MetricsFile); err != nil {
		return err
	}
	if !result.HasPlan() {
		return fmt.Errorf("no plan found: solver status %s", result.Solve.Status)
	}
	return nil
}
