// package main runs the planner as a JSON-in/JSON-out app: the input holds a
// scenario and its planning window, the output is the extracted plan.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nextmv-io/sdk/run"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/planning"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/observability"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/solvers/gonumlp"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/solvers/highs"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

func main() {
	err := run.CLI(solve).Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
}

type input struct {
	Scenario entities.Scenario `json:"scenario"`
	Start    string            `json:"start"`
	End      string            `json:"end"`
	Flags    dto.PlanningFlags `json:"flags"`
}

// Option for the solver.
type Option struct {
	Limits struct {
		Duration time.Duration `json:"duration" default:"30s"`
	} `json:"limits"`
	Solver struct {
		Backend string  `json:"backend" default:"highs"`
		Gap     float64 `json:"gap" default:"0.01"`
	} `json:"solver"`
	Log struct {
		Level string `json:"level" default:"info"`
	} `json:"log"`
}

func solve(in input, opts Option) ([]*dto.PlanningResult, error) {
	logger, err := observability.NewLogger(os.Stderr, opts.Log.Level, true)
	if err != nil {
		return nil, err
	}

	req, err := request(in, opts)
	if err != nil {
		return nil, err
	}

	var backend solver.Backend
	switch opts.Solver.Backend {
	case highs.Name:
		backend = highs.New(logger)
	case gonumlp.Name:
		backend = gonumlp.New(gonumlp.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown solver backend %q", opts.Solver.Backend)
	}

	result, err := planning.NewPlanner(backend, planning.WithLogger(logger)).Plan(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return []*dto.PlanningResult{result}, nil
}

func request(in input, opts Option) (dto.PlanningRequest, error) {
	start, err := entities.ParseDate(in.Start)
	if err != nil {
		return dto.PlanningRequest{}, fmt.Errorf("invalid start date %q: %w", in.Start, err)
	}
	end, err := entities.ParseDate(in.End)
	if err != nil {
		return dto.PlanningRequest{}, fmt.Errorf("invalid end date %q: %w", in.End, err)
	}

	scenario := in.Scenario
	return dto.PlanningRequest{
		Scenario: &scenario,
		Start:    start,
		End:      end,
		Flags:    in.Flags,
		Solver: dto.SolverSettings{
			TimeLimit:    opts.Limits.Duration,
			GapTolerance: opts.Solver.Gap,
		},
	}, nil
}
