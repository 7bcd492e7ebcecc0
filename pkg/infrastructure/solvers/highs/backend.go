// Package highs submits programs to the HiGHS solver through the nextmv SDK.
package highs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/nextmv-io/sdk/mip"
	"github.com/nextmv-io/sdk/model"

	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// Name is the backend identifier used in configuration
const Name = "highs"

// integer columns without an upper bound are capped here
const maxIntBound = math.MaxInt32

// column is a program column used as a MultiMap index
type column struct {
	index int
	def   solver.Variable
}

// ID is implemented to fulfill the model.Identifier interface.
func (c column) ID() string {
	return strconv.Itoa(c.index)
}

// Backend solves programs with HiGHS
type Backend struct {
	logger *slog.Logger
}

// New creates a HiGHS backend
func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// Name returns the backend identifier
func (b *Backend) Name() string { return Name }

// Solve translates the program into a nextmv MIP model and runs HiGHS.
//
// The reported Gap is not measured by HiGHS: mip.Solution carries no gap, so an
// optimal result reports the requested tolerance and a feasible one reports nil.
func (b *Backend) Solve(ctx context.Context, program *solver.Program, opts solver.Options) (*solver.Result, error) {
	m := mip.NewModel()

	columns := make([]column, len(program.Vars))
	for j, v := range program.Vars {
		columns[j] = column{index: j, def: v}
	}

	vars := model.NewMultiMap(
		func(cols ...column) mip.Var {
			return newVar(m, cols[0].def)
		}, columns)

	m.Objective().SetMinimize()
	for _, c := range columns {
		if c.def.Cost != 0 {
			m.Objective().NewTerm(c.def.Cost, vars.Get(c))
		}
	}

	for _, r := range program.Rows {
		constraint := m.NewConstraint(sense(r.Sense), r.RHS)
		for _, t := range r.Terms {
			constraint.NewTerm(t.Coef, vars.Get(columns[t.Var]))
		}
	}

	highs, err := mip.NewSolver(Name, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create highs solver: %w", err)
	}

	solveOptions := mip.NewSolveOptions()
	if limit := timeBudget(ctx, opts.TimeLimit); limit > 0 {
		if err := solveOptions.SetMaximumDuration(limit); err != nil {
			return nil, fmt.Errorf("failed to set time limit: %w", err)
		}
	}
	if err := solveOptions.SetMIPGapRelative(opts.GapTolerance); err != nil {
		return nil, fmt.Errorf("failed to set gap: %w", err)
	}
	solveOptions.SetVerbosity(mip.Off)

	solution, err := highs.Solve(solveOptions)
	if err != nil {
		return nil, fmt.Errorf("highs solve: %w", err)
	}

	result := &solver.Result{Backend: Name, Status: solver.StatusError}
	if solution == nil {
		return result, nil
	}
	result.SolveTime = solution.RunTime()
	result.Status = status(solution)

	if solution.HasValues() {
		result.Objective = solution.ObjectiveValue() + program.Offset
		result.Values = make([]float64, len(columns))
		for _, c := range columns {
			result.Values[c.index] = solution.Value(vars.Get(c))
		}
		if result.Status == solver.StatusOptimal {
			result.Gap = solver.GapPtr(opts.GapTolerance)
		}
	}

	b.logger.Debug("highs solve finished", "status", result.Status, "objective", result.Objective, "elapsed", result.SolveTime)
	return result, nil
}

func newVar(m mip.Model, v solver.Variable) mip.Var {
	switch v.Kind {
	case solver.Binary:
		return m.NewBool()
	case solver.Integer:
		upper := int64(maxIntBound)
		if !math.IsInf(v.Upper, 1) {
			upper = int64(math.Floor(v.Upper + 1e-9))
		}
		return m.NewInt(int64(math.Ceil(v.Lower-1e-9)), upper)
	default:
		return m.NewFloat(v.Lower, v.Upper)
	}
}

func sense(s solver.Sense) mip.Sense {
	switch s {
	case solver.LessEqual:
		return mip.LessThanOrEqual
	case solver.GreaterEqual:
		return mip.GreaterThanOrEqual
	default:
		return mip.Equal
	}
}

func status(solution mip.Solution) solver.Status {
	switch {
	case solution.HasValues() && solution.IsOptimal():
		return solver.StatusOptimal
	case solution.HasValues():
		return solver.StatusFeasible
	case solution.IsInfeasible():
		return solver.StatusInfeasible
	case solution.IsTimeOut():
		return solver.StatusTimeout
	default:
		return solver.StatusError
	}
}

// timeBudget is the smaller of the configured limit and the context deadline
func timeBudget(ctx context.Context, limit time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if limit <= 0 || remaining < limit {
			return remaining
		}
	}
	return limit
}
