package gonumlp

import (
	"context"
	"errors"
	"math"

	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

const intTol = 1e-6

type bbNode struct {
	lower []float64
	upper []float64
	// bound is the parent's relaxation objective
	bound float64
	depth int
}

type bbOutcome struct {
	status    solver.Status
	objective float64
	values    []float64
	gap       *float64
	nodes     int
}

// branchAndBound explores the tree depth first, branching on the most
// fractional integer column and diving into the closer child first
func (b *Backend) branchAndBound(ctx context.Context, p *solver.Program, gapTol float64) (*bbOutcome, error) {
	n := len(p.Vars)
	rootLower := make([]float64, n)
	rootUpper := make([]float64, n)
	for j, v := range p.Vars {
		rootLower[j], rootUpper[j] = v.Lower, v.Upper
		if v.Kind != solver.Continuous {
			rootLower[j] = math.Ceil(v.Lower - intTol)
			rootUpper[j] = math.Floor(v.Upper + intTol)
		}
	}

	out := &bbOutcome{objective: math.Inf(1)}
	stack := []bbNode{{lower: rootLower, upper: rootUpper, bound: math.Inf(-1)}}
	prunedBound := math.Inf(1)
	timedOut := false

	for len(stack) > 0 {
		if ctx.Err() != nil || (b.maxNodes > 0 && out.nodes >= b.maxNodes) {
			timedOut = true
			break
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.bound >= cutoff(out.objective, gapTol) {
			prunedBound = math.Min(prunedBound, node.bound)
			continue
		}

		out.nodes++
		rel, err := solveRelaxation(ctx, p, node.lower, node.upper)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// the interrupted node still bounds the unexplored tree
			stack = append(stack, node)
			timedOut = true
			break
		}
		if err != nil {
			return nil, err
		}
		switch rel.outcome {
		case lpInfeasible:
			continue
		case lpUnbounded:
			if node.depth == 0 {
				out.status = solver.StatusError
				return out, nil
			}
			continue
		}

		if rel.objective >= cutoff(out.objective, gapTol) {
			prunedBound = math.Min(prunedBound, rel.objective)
			continue
		}

		branchVar, frac := mostFractional(p, rel.values)
		if branchVar < 0 {
			out.objective = rel.objective
			out.values = snapIntegers(p, rel.values)
			b.logger.Debug("incumbent improved", "objective", rel.objective, "depth", node.depth, "nodes", out.nodes)
			continue
		}

		value := rel.values[branchVar]
		down := bbNode{lower: node.lower, upper: clone(node.upper), bound: rel.objective, depth: node.depth + 1}
		down.upper[branchVar] = math.Floor(value)
		up := bbNode{lower: clone(node.lower), upper: node.upper, bound: rel.objective, depth: node.depth + 1}
		up.lower[branchVar] = math.Ceil(value)

		// last pushed is explored first
		if frac < 0.5 {
			stack = append(stack, up, down)
		} else {
			stack = append(stack, down, up)
		}
	}

	if out.values == nil {
		if timedOut {
			out.status = solver.StatusTimeout
		} else {
			out.status = solver.StatusInfeasible
		}
		return out, nil
	}

	bestBound := prunedBound
	if timedOut {
		out.status = solver.StatusFeasible
		for _, node := range stack {
			bestBound = math.Min(bestBound, node.bound)
		}
	} else {
		out.status = solver.StatusOptimal
	}
	out.gap = solver.GapPtr(relativeGap(out.objective, bestBound))
	return out, nil
}

// cutoff is the objective a node must beat to be worth exploring
func cutoff(incumbent, gapTol float64) float64 {
	if math.IsInf(incumbent, 1) {
		return incumbent
	}
	return incumbent - math.Max(gapTol*math.Abs(incumbent), 1e-9)
}

func relativeGap(incumbent, bound float64) float64 {
	if math.IsInf(bound, 1) || bound >= incumbent {
		return 0
	}
	if math.IsInf(bound, -1) {
		return 1
	}
	return (incumbent - bound) / math.Max(math.Abs(incumbent), 1e-10)
}

// mostFractional returns the integer column furthest from integrality and
// its fractional part, or -1 when the point is integral
func mostFractional(p *solver.Program, x []float64) (int, float64) {
	best, bestDist, bestFrac := -1, intTol, 0.0
	for j, v := range p.Vars {
		if v.Kind == solver.Continuous {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			best, bestDist, bestFrac = j, dist, frac
		}
	}
	return best, bestFrac
}

func snapIntegers(p *solver.Program, x []float64) []float64 {
	out := clone(x)
	for j, v := range p.Vars {
		if v.Kind != solver.Continuous {
			out[j] = math.Round(out[j])
		}
	}
	return out
}

func clone(s []float64) []float64 {
	c := make([]float64, len(s))
	copy(c, s)
	return c
}
