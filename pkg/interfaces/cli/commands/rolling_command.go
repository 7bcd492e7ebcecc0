package commands

import (
	"context"
	"fmt"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/orchestration"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/repositories/csv"
	"github.com/sverzijl/planning-latest-sub007/pkg/interfaces/cli/output"
)

// RollingCommandConfig holds configuration for a rolling-horizon run
type RollingCommandConfig struct {
	ScenarioDir string
	Start       string
	End         string
	// WindowDays and CommitDays default to the runtime configuration when zero
	WindowDays  int
	CommitDays  int
	MetricsFile string
	Output      output.Config
}

// RollingCommand plans a long horizon as a sequence of committed windows
type RollingCommand struct {
	config  RollingCommandConfig
	runtime *Runtime
	loader  *csv.Loader
}

// NewRollingCommand creates a new rolling command
func NewRollingCommand(rt *Runtime, config RollingCommandConfig) *RollingCommand {
	return &RollingCommand{
		config:  config,
		runtime: rt,
		loader:  csv.NewLoader(),
	}
}

// Execute runs the rolling command. A window without a plan still renders
// the committed prefix before the error is returned.
func (cmd *RollingCommand) Execute(ctx context.Context) error {
	if cmd.config.ScenarioDir == "" {
		return fmt.Errorf("scenario directory is required")
	}

	rolling := orchestration.RollingConfig{
		WindowDays: cmd.config.WindowDays,
		CommitDays: cmd.config.CommitDays,
	}
	if rolling.WindowDays == 0 {
		rolling.WindowDays = cmd.runtime.Config.Rolling.WindowDays
	}
	if rolling.CommitDays == 0 {
		rolling.CommitDays = min(cmd.runtime.Config.Rolling.CommitDays, rolling.WindowDays)
	}

	data, err := cmd.loader.LoadDirectory(cmd.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	req, err := cmd.runtime.Request(data, cmd.config.Start, cmd.config.End)
	if err != nil {
		return err
	}
	orchestrator, err := cmd.runtime.Orchestrator()
	if err != nil {
		return err
	}

	result, runErr := orchestrator.RunRolling(ctx, req, rolling)
	if result != nil && len(result.Windows) > 0 {
		if err := output.GenerateRolling(result, cmd.config.Output); err != nil {
			return fmt.Errorf("failed to generate output: %w", err)
		}
	}
	if err := cmd.runtime.WriteMetrics(cmd.config.MetricsFile); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("rolling horizon failed: %w", runErr)
	}
	return nil
}
