package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/config"
	"github.com/sverzijl/planning-latest-sub007/pkg/interfaces/cli/commands"
	"github.com/sverzijl/planning-latest-sub007/pkg/interfaces/cli/output"
)

// --- Global flags ---
var (
	configFile     string
	envFile        string
	logLevel       string
	logJSON        bool
	backend        string
	timeLimit      time.Duration
	gap            float64
	strictCalendar bool
	noShortages    bool
	batchTracking  bool
	metricsFile    string
	traceSpans     bool

	format    string
	outputDir string
	verbose   bool

	startDate  string
	endDate    string
	windowDays int
	commitDays int
	parallel   int

	gen commands.GenerateConfig

	runtime *commands.Runtime

	rootCmd = &cobra.Command{
		Use:   "planner",
		Short: "Production and distribution planning for perishable goods",
		Long: `planner builds a cohort-tracking production and distribution model
from a scenario directory and solves it with a MIP backend.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupRuntime,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if runtime == nil {
				return nil
			}
			return runtime.Close(cmd.Context())
		},
	}

	solveCmd = &cobra.Command{
		Use:   "solve <scenario-dir>",
		Short: "Plan a scenario in a single solve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewSolveCommand(runtime, commands.SolveConfig{
				ScenarioDir: args[0],
				Start:       startDate,
				End:         endDate,
				MetricsFile: metricsFile,
				Output:      outputConfig(),
			}).Execute(cmd.Context())
		},
	}

	rollingCmd = &cobra.Command{
		Use:   "rolling <scenario-dir>",
		Short: "Plan a long horizon as a sequence of committed windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewRollingCommand(runtime, commands.RollingCommandConfig{
				ScenarioDir: args[0],
				Start:       startDate,
				End:         endDate,
				WindowDays:  windowDays,
				CommitDays:  commitDays,
				MetricsFile: metricsFile,
				Output:      outputConfig(),
			}).Execute(cmd.Context())
		},
	}

	batchCmd = &cobra.Command{
		Use:   "batch <scenario-dir>...",
		Short: "Plan independent scenarios concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewBatchCommand(runtime, commands.BatchConfig{
				ScenarioDirs: args,
				Parallelism:  parallel,
				MetricsFile:  metricsFile,
				Output:       outputConfig(),
			}).Execute(cmd.Context())
		},
	}

	generateCmd = &cobra.Command{
		Use:   "generate <output-dir>",
		Short: "Write a synthetic scenario directory",
		Args:  cobra.ExactArgs(1),
		// generation needs no solver runtime
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := gen
			cfg.OutputDir = args[0]
			cfg.Verbose = verbose
			if startDate != "" {
				start, err := time.Parse("2006-01-02", startDate)
				if err != nil {
					return fmt.Errorf("invalid start date %q: %w", startDate, err)
				}
				cfg.Start = start
			}
			return commands.NewGenerateCommand(cfg).Execute(cmd.Context())
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "YAML configuration file")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file with PLANNER_* overrides")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&logJSON, "log-json", false, "emit JSON logs")
	pf.StringVar(&backend, "backend", "", "solver backend: gonum or highs")
	pf.DurationVar(&timeLimit, "time-limit", 0, "solver time limit")
	pf.Float64Var(&gap, "gap", 0, "relative MIP gap tolerance")
	pf.BoolVar(&strictCalendar, "strict-calendar", false, "fail on production dates missing from the labor calendar")
	pf.BoolVar(&noShortages, "no-shortages", false, "require demand to be met in full")
	pf.BoolVar(&batchTracking, "batch-tracking", false, "produce in whole mixes")
	pf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	pf.BoolVar(&traceSpans, "trace", false, "print OpenTelemetry spans to stderr")
	pf.StringVarP(&format, "format", "f", "text", "output format: text, json, csv, svg")
	pf.StringVarP(&outputDir, "output", "o", "", "output directory")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&startDate, "start", "", "planning start date (YYYY-MM-DD)")
	pf.StringVar(&endDate, "end", "", "planning end date (YYYY-MM-DD)")

	rollingCmd.Flags().IntVar(&windowDays, "window", 0, "window length in days")
	rollingCmd.Flags().IntVar(&commitDays, "commit", 0, "days committed per window")
	batchCmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "scenarios solved at once")

	gf := generateCmd.Flags()
	gf.IntVar(&gen.Hubs, "hubs", 2, "number of regional hubs")
	gf.IntVar(&gen.Stores, "stores", 6, "number of stores")
	gf.IntVar(&gen.Products, "products", 3, "number of products")
	gf.IntVar(&gen.Days, "days", 14, "horizon length in days")
	gf.Float64Var(&gen.Inventory, "inventory", 1, "opening hub stock in days of demand")
	gf.Float64Var(&gen.FrozenLanes, "frozen-lanes", 0.25, "share of frozen hub-to-store lanes")
	gf.BoolVar(&gen.Trucks, "trucks", false, "schedule Mon/Wed/Fri trucks to hubs")
	gf.Int64Var(&gen.Seed, "seed", 0, "random seed (0 uses the clock)")

	rootCmd.AddCommand(solveCmd, rollingCmd, batchCmd, generateCmd)
}

// setupRuntime loads configuration and applies flag overrides
func setupRuntime(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if flags.Changed("backend") {
		cfg.Solver.Backend = backend
	}
	if flags.Changed("time-limit") {
		cfg.Solver.TimeLimit = timeLimit
	}
	if flags.Changed("gap") {
		cfg.Solver.GapTolerance = gap
	}
	if flags.Changed("strict-calendar") {
		cfg.Planning.StrictCalendar = strictCalendar
	}
	if flags.Changed("no-shortages") {
		cfg.Planning.AllowShortages = !noShortages
	}
	if flags.Changed("batch-tracking") {
		cfg.Planning.BatchTracking = batchTracking
	}
	if metricsFile != "" {
		cfg.Metrics.Enabled = true
	}
	if flags.Changed("trace") {
		cfg.Tracing.Enabled = traceSpans
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runtime, err = commands.NewRuntime(cfg, os.Stderr)
	return err
}

func outputConfig() output.Config {
	return output.Config{
		Format:    format,
		OutputDir: outputDir,
		Verbose:   verbose,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
