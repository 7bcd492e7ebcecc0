package gonumlp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

const (
	feasTol    = 1e-7
	maxBigMTry = 3
)

type lpOutcome int

const (
	lpOptimal lpOutcome = iota
	lpInfeasible
	lpUnbounded
)

type relaxation struct {
	outcome   lpOutcome
	objective float64
	values    []float64
}

// solveRelaxation solves the LP relaxation of p under the given column bounds
func solveRelaxation(ctx context.Context, p *solver.Program, lower, upper []float64) (*relaxation, error) {
	bigM := initialBigM(p)
	for attempt := 0; attempt < maxBigMTry; attempt++ {
		sf, err := buildStandardForm(p, lower, upper, bigM, false)
		switch {
		case errors.Is(err, errInfeasible):
			return &relaxation{outcome: lpInfeasible}, nil
		case errors.Is(err, errUnbounded):
			return &relaxation{outcome: lpUnbounded}, nil
		case err != nil:
			return nil, err
		}

		z, err := runSimplex(ctx, sf)
		if errors.Is(err, errSimplexUnbounded) {
			return &relaxation{outcome: lpUnbounded}, nil
		}
		if err != nil {
			return nil, err
		}

		if sf.artificialMass(z) <= feasTol {
			x := sf.recover(z)
			return &relaxation{outcome: lpOptimal, objective: p.Objective(x), values: x}, nil
		}

		// Artificials survived: either the problem is infeasible or bigM was
		// too small to push them out.
		feasible, err := phaseOneFeasible(ctx, p, lower, upper)
		if err != nil {
			return nil, err
		}
		if !feasible {
			return &relaxation{outcome: lpInfeasible}, nil
		}
		bigM *= 1e3
	}
	return nil, fmt.Errorf("artificial columns remain basic after %d penalty increases", maxBigMTry)
}

func phaseOneFeasible(ctx context.Context, p *solver.Program, lower, upper []float64) (bool, error) {
	sf, err := buildStandardForm(p, lower, upper, 1, true)
	if errors.Is(err, errInfeasible) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	z, err := runSimplex(ctx, sf)
	if err != nil {
		return false, err
	}
	return sf.artificialMass(z) <= feasTol, nil
}

func runSimplex(ctx context.Context, sf *standardForm) ([]float64, error) {
	if len(sf.b) == 0 {
		// every column is unconstrained and already at its cheaper bound
		return make([]float64, len(sf.c)), nil
	}
	z, err := tableauSimplex(ctx, sf.c, sf.a, sf.b, sf.basic)
	if err != nil {
		return nil, fmt.Errorf("simplex failed: %w", err)
	}
	return z, nil
}

// initialBigM scales the artificial penalty with the objective magnitude
func initialBigM(p *solver.Program) float64 {
	maxCost := 1.0
	for _, v := range p.Vars {
		maxCost = math.Max(maxCost, math.Abs(v.Cost))
	}
	return 1e4 * maxCost
}
