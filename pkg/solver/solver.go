package solver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is the termination outcome of a solve
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
	StatusError      Status = "error"
	StatusTimeout    Status = "timeout"
)

// HasSolution reports whether the status carries variable values
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Options bound a single solve
type Options struct {
	TimeLimit    time.Duration
	GapTolerance float64
}

// DefaultOptions returns a two minute budget with a 1% gap
func DefaultOptions() Options {
	return Options{TimeLimit: 2 * time.Minute, GapTolerance: 0.01}
}

// Result is what a backend reports back
type Result struct {
	Status    Status
	Objective float64
	// Gap is the relative optimality gap, nil when the backend cannot report one
	Gap       *float64
	Values    []float64
	SolveTime time.Duration
	Backend   string
	Message   string
}

// Backend is a concrete MIP/LP engine
type Backend interface {
	Name() string
	Solve(ctx context.Context, program *Program, opts Options) (*Result, error)
}

// ErrEmptyProgram is returned when there is nothing to solve
var ErrEmptyProgram = errors.New("program has no variables")

// Solve submits a program to a backend under the time budget. Backend failures
// are folded into StatusError; the call is never retried.
func Solve(ctx context.Context, backend Backend, program *Program, opts Options) (*Result, error) {
	if backend == nil {
		return nil, fmt.Errorf("no solver backend configured")
	}
	if program == nil || len(program.Vars) == 0 {
		return nil, ErrEmptyProgram
	}
	if opts.GapTolerance < 0 {
		return nil, fmt.Errorf("gap tolerance cannot be negative, got %g", opts.GapTolerance)
	}

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	start := time.Now()
	result, err := backend.Solve(ctx, program, opts)
	elapsed := time.Since(start)

	if err != nil {
		return &Result{
			Status:    StatusError,
			SolveTime: elapsed,
			Backend:   backend.Name(),
			Message:   err.Error(),
		}, nil
	}
	if result.Backend == "" {
		result.Backend = backend.Name()
	}
	if result.SolveTime == 0 {
		result.SolveTime = elapsed
	}
	if result.Status.HasSolution() && len(result.Values) != len(program.Vars) {
		return &Result{
			Status:    StatusError,
			SolveTime: result.SolveTime,
			Backend:   result.Backend,
			Message:   fmt.Sprintf("backend returned %d values for %d variables", len(result.Values), len(program.Vars)),
		}, nil
	}
	return result, nil
}

// GapPtr is a helper for backends reporting a known gap
func GapPtr(g float64) *float64 {
	return &g
}
