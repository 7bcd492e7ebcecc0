package gonumlp

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pivotTol   = 1e-9
	reducedTol = 1e-9
	// degenerate pivots in a row before switching to Bland's rule
	stallLimit = 32
	// pivots between context checks
	ctxEvery = 16
)

var (
	errSimplexUnbounded = errors.New("simplex: unbounded direction")
	errIterationLimit   = errors.New("simplex: iteration limit reached")
)

// tableauSimplex minimises c'z s.t. Az = b, z >= 0 starting from basis, whose
// columns must form an identity in a and b must be non-negative.
//
// Pivoting is Dantzig's rule until the objective stalls on degenerate
// vertices, then Bland's rule until it moves again, so the method cannot
// cycle. ctx is checked every few pivots.
func tableauSimplex(ctx context.Context, c []float64, a *mat.Dense, b []float64, basis []int) ([]float64, error) {
	m, n := a.Dims()
	t := mat.NewDense(m, n+1, nil)
	t.Slice(0, m, 0, n).(*mat.Dense).Copy(a)
	for i, v := range b {
		t.Set(i, n, v)
	}
	basic := make([]int, m)
	copy(basic, basis)

	// reduced costs of the starting basis
	d := make([]float64, n)
	copy(d, c)
	for i, col := range basic {
		if cb := c[col]; cb != 0 {
			floats.AddScaled(d, -cb, t.RawRowView(i)[:n])
		}
	}

	maxIter := 50 * (m + n)
	degenerate := 0
	for iter := 0; ; iter++ {
		if iter%ctxEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if iter > maxIter {
			return nil, fmt.Errorf("%w after %d pivots", errIterationLimit, maxIter)
		}

		enter := enteringColumn(d, degenerate >= stallLimit)
		if enter < 0 {
			break
		}
		leave, step := leavingRow(t, basic, enter, n)
		if leave < 0 {
			return nil, errSimplexUnbounded
		}
		if step <= pivotTol {
			degenerate++
		} else {
			degenerate = 0
		}
		pivot(t, d, leave, enter, n)
		basic[leave] = enter
	}

	z := make([]float64, n)
	for i, col := range basic {
		if v := t.At(i, n); v > 0 {
			z[col] = v
		}
	}
	return z, nil
}

// enteringColumn picks the most negative reduced cost, or the lowest-index
// negative one under Bland's rule. -1 means the basis is optimal.
func enteringColumn(d []float64, bland bool) int {
	best, bestVal := -1, -reducedTol
	for j, v := range d {
		if v >= bestVal {
			continue
		}
		if bland {
			return j
		}
		best, bestVal = j, v
	}
	return best
}

// leavingRow runs the ratio test; ties go to the lowest basic column
func leavingRow(t *mat.Dense, basic []int, enter, n int) (int, float64) {
	m, _ := t.Dims()
	leave, best := -1, 0.0
	for i := 0; i < m; i++ {
		coef := t.At(i, enter)
		if coef <= pivotTol {
			continue
		}
		ratio := t.At(i, n) / coef
		switch {
		case leave < 0, ratio < best-1e-12:
			leave, best = i, ratio
		case ratio <= best+1e-12 && basic[i] < basic[leave]:
			leave = i
		}
	}
	return leave, best
}

func pivot(t *mat.Dense, d []float64, leave, enter, n int) {
	m, _ := t.Dims()
	prow := t.RawRowView(leave)
	floats.Scale(1/prow[enter], prow)
	prow[enter] = 1
	for i := 0; i < m; i++ {
		if i == leave {
			continue
		}
		row := t.RawRowView(i)
		if f := row[enter]; f != 0 {
			floats.AddScaled(row, -f, prow)
			row[enter] = 0
			if row[n] < 0 && row[n] > -pivotTol {
				row[n] = 0
			}
		}
	}
	if f := d[enter]; f != 0 {
		floats.AddScaled(d, -f, prow[:n])
		d[enter] = 0
	}
}
