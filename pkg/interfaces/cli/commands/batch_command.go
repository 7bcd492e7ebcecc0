package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/orchestration"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/repositories/csv"
	"github.com/sverzijl/planning-latest-sub007/pkg/interfaces/cli/output"
)

// BatchConfig holds configuration for solving several scenarios at once
type BatchConfig struct {
	ScenarioDirs []string
	// Parallelism defaults to the runtime configuration when zero
	Parallelism int
	MetricsFile string
	// Output.OutputDir, when set, receives one subdirectory per scenario
	Output output.Config
}

// BatchCommand plans independent scenario directories concurrently
type BatchCommand struct {
	config  BatchConfig
	runtime *Runtime
	loader  *csv.Loader
}

// NewBatchCommand creates a new batch command
func NewBatchCommand(rt *Runtime, config BatchConfig) *BatchCommand {
	return &BatchCommand{
		config:  config,
		runtime: rt,
		loader:  csv.NewLoader(),
	}
}

// Execute runs the batch command. It fails when any scenario fails to load
// or produces no plan, after reporting every outcome.
func (cmd *BatchCommand) Execute(ctx context.Context) error {
	if len(cmd.config.ScenarioDirs) == 0 {
		return fmt.Errorf("at least one scenario directory is required")
	}

	jobs := make([]orchestration.BatchJob, 0, len(cmd.config.ScenarioDirs))
	for _, dir := range cmd.config.ScenarioDirs {
		data, err := cmd.loader.LoadDirectory(dir)
		if err != nil {
			return fmt.Errorf("failed to load scenario %s: %w", dir, err)
		}
		req, err := cmd.runtime.Request(data, "", "")
		if err != nil {
			return fmt.Errorf("scenario %s: %w", dir, err)
		}
		name := data.Manifest.Name
		if name == "" {
			name = filepath.Base(dir)
		}
		jobs = append(jobs, orchestration.BatchJob{Name: name, Request: req})
	}

	orchestrator, err := cmd.runtime.Orchestrator()
	if err != nil {
		return err
	}
	parallelism := cmd.config.Parallelism
	if parallelism <= 0 {
		parallelism = cmd.runtime.Config.Rolling.Parallelism
	}

	outcomes, err := orchestrator.RunBatch(ctx, jobs, parallelism)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil || !o.Result.HasPlan() {
			failed++
			continue
		}
		if cmd.config.Output.OutputDir == "" {
			continue
		}
		scenarioOutput := cmd.config.Output
		scenarioOutput.OutputDir = filepath.Join(cmd.config.Output.OutputDir, o.Name)
		if scenarioOutput.Format == "" || scenarioOutput.Format == "text" {
			scenarioOutput.Format = "json"
		}
		if err := output.Generate(o.Result, scenarioOutput); err != nil {
			return fmt.Errorf("failed to write output for %s: %w", o.Name, err)
		}
	}
	cmd.printSummary(outcomes)

	if err := cmd.runtime.WriteMetrics(cmd.config.MetricsFile); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios produced no plan", failed, len(outcomes))
	}
	return nil
}

func (cmd *BatchCommand) printSummary(outcomes []orchestration.BatchOutcome) {
	w := cmd.config.Output.Writer
	if w == nil {
		w = os.Stdout
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tSTATUS\tTOTAL COST\tFILL RATE")
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			cmd.runtime.Logger.Error("scenario failed", "scenario", o.Name, "error", o.Err)
			fmt.Fprintf(tw, "%s\terror\t-\t-\n", o.Name)
		case !o.Result.HasPlan():
			fmt.Fprintf(tw, "%s\t%s\t-\t-\n", o.Name, o.Result.Solve.Status)
		default:
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\n", o.Name, o.Result.Solve.Status,
				o.Result.Costs.Total.StringFixed(2), o.Result.Totals.FillRate()*100)
		}
	}
	tw.Flush()
}
