package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/orchestration"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/planning"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/events"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/solvers/gonumlp"
	testdata "github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/testing"
	"github.com/sverzijl/planning-latest-sub007/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Load the regional network into in-memory repositories
	store := testdata.BuildRegionalTestData()
	scenario, err := store.Scenario()
	if err != nil {
		fmt.Printf("❌ Failed to assemble scenario: %v\n", err)
		return
	}

	planner := planning.NewPlanner(
		gonumlp.New(gonumlp.WithLogger(logger)),
		planning.WithLogger(logger),
	)

	req := dto.PlanningRequest{
		Scenario: scenario,
		Start:    testdata.RegionalStart,
		End:      testdata.RegionalStart.AddDate(0, 0, testdata.RegionalDays-1),
		Flags: dto.PlanningFlags{
			AllowShortages:   true,
			EnforceShelfLife: true,
		},
		Solver: dto.SolverSettings{TimeLimit: time.Minute, GapTolerance: 0.01},
	}

	fmt.Println("🍞 Planning the regional network in a single solve...")
	result, err := planner.Plan(ctx, req)
	if err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		return
	}
	if err := output.Generate(result, output.Config{Format: "text"}); err != nil {
		fmt.Printf("❌ Output failed: %v\n", err)
		return
	}

	// The same week as overlapping four-day windows committing two days each
	fmt.Println()
	fmt.Println("🔁 Re-planning with a rolling horizon...")
	orchestrator := orchestration.NewPlanningOrchestrator(planner, events.NewInMemoryEventStore(logger), nil, logger)
	rolling, err := orchestrator.RunRolling(ctx, req, orchestration.RollingConfig{WindowDays: 4, CommitDays: 2})
	if err != nil {
		fmt.Printf("❌ Rolling horizon failed: %v\n", err)
		return
	}
	if err := output.GenerateRolling(rolling, output.Config{Format: "text"}); err != nil {
		fmt.Printf("❌ Output failed: %v\n", err)
		return
	}

	fmt.Printf("\nFill rate: single solve %.1f%%, rolling %.1f%%\n",
		result.Totals.FillRate()*100, rolling.Totals.FillRate()*100)
}
