package gonumlp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

var (
	errInfeasible  = errors.New("infeasible bounds or constant row")
	errUnbounded   = errors.New("problem is unbounded")
	errFreeColumns = errors.New("variables without a finite lower bound are not supported")
)

// standardForm is min c'z s.t. Az = b, z >= 0 with an identity starting basis
type standardForm struct {
	c      []float64
	a      *mat.Dense
	b      []float64
	basic  []int
	offset float64

	// column of each program variable, -1 when fixed or unconstrained
	column []int
	lower  []float64
	upper  []float64
	// artificial columns whose value must be zero in a feasible point
	artificial []int
}

type sparseRow struct {
	cols []int
	vals []float64
	rhs  float64
	// sign of the slack column; 0 for equality rows
	slack float64
}

// buildStandardForm shifts every column to its lower bound, turns upper bounds
// into rows, adds slack columns and an artificial column wherever the slack
// cannot start in the basis. Artificial columns cost bigM; a zero bigM prices
// only the artificials (phase one).
func buildStandardForm(p *solver.Program, lower, upper []float64, bigM float64, phaseOne bool) (*standardForm, error) {
	n := len(p.Vars)
	sf := &standardForm{
		column: make([]int, n),
		lower:  lower,
		upper:  upper,
	}

	free := make([]bool, n)
	for j, v := range p.Vars {
		lo, hi := lower[j], upper[j]
		if math.IsInf(lo, -1) || math.IsNaN(lo) {
			return nil, errFreeColumns
		}
		if lo > hi+feasTol {
			return nil, errInfeasible
		}
		free[j] = hi-lo > feasTol
		if !phaseOne {
			sf.offset += v.Cost * lo
		}
		sf.column[j] = -1
	}

	rows := make([]sparseRow, 0, len(p.Rows))
	used := make([]bool, n)
	for _, r := range p.Rows {
		row := sparseRow{rhs: r.RHS}
		for _, t := range r.Terms {
			row.rhs -= t.Coef * lower[t.Var]
			if free[t.Var] && t.Coef != 0 {
				row.cols = append(row.cols, int(t.Var))
				row.vals = append(row.vals, t.Coef)
			}
		}
		if len(row.cols) == 0 {
			if !constantRowHolds(r.Sense, row.rhs) {
				return nil, errInfeasible
			}
			continue
		}
		switch r.Sense {
		case solver.LessEqual:
			row.slack = 1
		case solver.GreaterEqual:
			row.slack = -1
		}
		for _, j := range row.cols {
			used[j] = true
		}
		rows = append(rows, row)
	}

	// columns that touch no row sit at their cheaper bound
	bounded := make([]bool, n)
	for j := range p.Vars {
		if !free[j] || used[j] {
			continue
		}
		cost := p.Vars[j].Cost
		if phaseOne || cost >= 0 {
			continue
		}
		if math.IsInf(upper[j], 1) {
			return nil, errUnbounded
		}
		used[j] = true
	}

	for j := range p.Vars {
		if free[j] && used[j] && !math.IsInf(upper[j], 1) && !bounded[j] {
			bounded[j] = true
			rows = append(rows, sparseRow{cols: []int{j}, vals: []float64{1}, rhs: upper[j] - lower[j], slack: 1})
		}
	}

	// assign structural columns
	numCols := 0
	for j := range p.Vars {
		if free[j] && used[j] {
			sf.column[j] = numCols
			numCols++
		}
	}

	m := len(rows)
	slackCol := make([]int, m)
	needsArtificial := make([]bool, m)
	for i := range rows {
		if rows[i].rhs < 0 {
			rows[i].rhs = -rows[i].rhs
			for k := range rows[i].vals {
				rows[i].vals[k] = -rows[i].vals[k]
			}
			rows[i].slack = -rows[i].slack
		}
		slackCol[i] = -1
		if rows[i].slack != 0 {
			slackCol[i] = numCols
			numCols++
		}
		needsArtificial[i] = rows[i].slack <= 0
	}
	artCol := make([]int, m)
	for i := range rows {
		artCol[i] = -1
		if needsArtificial[i] {
			artCol[i] = numCols
			numCols++
		}
	}

	sf.c = make([]float64, numCols)
	sf.b = make([]float64, m)
	sf.basic = make([]int, m)
	if m > 0 {
		sf.a = mat.NewDense(m, numCols, nil)
	}
	if !phaseOne {
		for j, v := range p.Vars {
			if col := sf.column[j]; col >= 0 {
				sf.c[col] = v.Cost
			}
		}
	}
	for i, row := range rows {
		for k, j := range row.cols {
			sf.a.Set(i, sf.column[j], sf.a.At(i, sf.column[j])+row.vals[k])
		}
		sf.b[i] = row.rhs
		if slackCol[i] >= 0 {
			sf.a.Set(i, slackCol[i], row.slack)
		}
		if artCol[i] >= 0 {
			sf.a.Set(i, artCol[i], 1)
			sf.c[artCol[i]] = bigM
			sf.basic[i] = artCol[i]
			sf.artificial = append(sf.artificial, artCol[i])
		} else {
			sf.basic[i] = slackCol[i]
		}
	}
	return sf, nil
}

func constantRowHolds(sense solver.Sense, rhs float64) bool {
	switch sense {
	case solver.LessEqual:
		return rhs >= -feasTol
	case solver.GreaterEqual:
		return rhs <= feasTol
	default:
		return math.Abs(rhs) <= feasTol
	}
}

// recover maps a standard-form point back onto the program's columns
func (sf *standardForm) recover(z []float64) []float64 {
	x := make([]float64, len(sf.column))
	for j, col := range sf.column {
		x[j] = sf.lower[j]
		if col >= 0 {
			x[j] += z[col]
		}
		if x[j] > sf.upper[j] {
			x[j] = sf.upper[j]
		}
	}
	return x
}

// artificialMass is the total value left on artificial columns
func (sf *standardForm) artificialMass(z []float64) float64 {
	var total float64
	for _, col := range sf.artificial {
		total += z[col]
	}
	return total
}
