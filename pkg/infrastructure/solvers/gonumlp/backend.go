// Package gonumlp is a pure-Go solver backend: LP relaxations are solved with
// gonum's simplex and integrality is recovered by branch-and-bound.
package gonumlp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// Name is the backend identifier used in configuration
const Name = "gonum"

// Backend solves programs in-process
type Backend struct {
	logger   *slog.Logger
	maxNodes int
}

// Option configures the backend
type Option func(*Backend)

// WithLogger sets the backend logger
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// WithMaxNodes caps the branch-and-bound tree; zero means no cap
func WithMaxNodes(n int) Option {
	return func(b *Backend) { b.maxNodes = n }
}

// New creates a gonum backend
func New(opts ...Option) *Backend {
	b := &Backend{logger: slog.Default(), maxNodes: 200000}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the backend identifier
func (b *Backend) Name() string { return Name }

// Solve runs branch-and-bound until the tree is exhausted or ctx expires
func (b *Backend) Solve(ctx context.Context, program *solver.Program, opts solver.Options) (*solver.Result, error) {
	start := time.Now()
	out, err := b.branchAndBound(ctx, program, opts.GapTolerance)
	if err != nil {
		return nil, fmt.Errorf("gonum branch-and-bound: %w", err)
	}

	result := &solver.Result{
		Status:    out.status,
		Gap:       out.gap,
		SolveTime: time.Since(start),
		Backend:   Name,
		Message:   fmt.Sprintf("%d nodes", out.nodes),
	}
	if out.status.HasSolution() {
		result.Values = out.values
		result.Objective = program.Objective(out.values)
	}

	b.logger.Debug("gonum solve finished",
		"status", result.Status,
		"objective", result.Objective,
		"nodes", out.nodes,
		"elapsed", result.SolveTime)
	return result, nil
}
