package solver

import (
	"fmt"
	"math"
)

// VarKind is the integrality class of a column
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

// String method for VarKind enum
func (k VarKind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Sense is the comparison of a row against its right-hand side
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

// String method for Sense enum
func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// VarID indexes a column of a Program
type VarID int

// Term is one coefficient of a row
type Term struct {
	Var  VarID
	Coef float64
}

// Variable is a bounded column with its objective coefficient
type Variable struct {
	Name  string
	Lower float64
	Upper float64 // math.Inf(1) when unbounded
	Kind  VarKind
	Cost  float64
}

// Row is a linear constraint
type Row struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Program is a solver-neutral minimization problem
type Program struct {
	Vars []Variable
	Rows []Row
	// Offset is a constant added to the objective
	Offset float64
}

// Stats summarizes the size of a program
type Stats struct {
	Variables   int
	IntegerVars int
	Rows        int
	NonZeros    int
}

// NewProgram creates an empty program
func NewProgram() *Program {
	return &Program{}
}

// AddVar appends a column and returns its id
func (p *Program) AddVar(name string, lower, upper float64, kind VarKind) VarID {
	if kind == Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
	}
	p.Vars = append(p.Vars, Variable{Name: name, Lower: lower, Upper: upper, Kind: kind})
	return VarID(len(p.Vars) - 1)
}

// AddCost adds to the objective coefficient of a column
func (p *Program) AddCost(v VarID, cost float64) {
	p.Vars[v].Cost += cost
}

// Fix pins a column to a value
func (p *Program) Fix(v VarID, value float64) {
	p.Vars[v].Lower = value
	p.Vars[v].Upper = value
}

// AddRow appends a constraint, merging repeated columns, and returns its index
func (p *Program) AddRow(name string, terms []Term, sense Sense, rhs float64) int {
	p.Rows = append(p.Rows, Row{Name: name, Terms: mergeTerms(terms), Sense: sense, RHS: rhs})
	return len(p.Rows) - 1
}

func mergeTerms(terms []Term) []Term {
	if len(terms) < 2 {
		return terms
	}
	pos := make(map[VarID]int, len(terms))
	merged := make([]Term, 0, len(terms))
	for _, t := range terms {
		if i, ok := pos[t.Var]; ok {
			merged[i].Coef += t.Coef
			continue
		}
		pos[t.Var] = len(merged)
		merged = append(merged, t)
	}
	return merged
}

// Objective evaluates the objective at a point
func (p *Program) Objective(values []float64) float64 {
	total := p.Offset
	for j, v := range p.Vars {
		total += v.Cost * values[j]
	}
	return total
}

// RowActivity evaluates the left-hand side of a row at a point
func (p *Program) RowActivity(r Row, values []float64) float64 {
	var lhs float64
	for _, t := range r.Terms {
		lhs += t.Coef * values[t.Var]
	}
	return lhs
}

// Check returns the first row or bound violated by more than tol
func (p *Program) Check(values []float64, tol float64) error {
	if len(values) != len(p.Vars) {
		return fmt.Errorf("expected %d values, got %d", len(p.Vars), len(values))
	}
	for j, v := range p.Vars {
		x := values[j]
		if x < v.Lower-tol || x > v.Upper+tol {
			return fmt.Errorf("variable %s = %g outside [%g, %g]", v.Name, x, v.Lower, v.Upper)
		}
		if v.Kind != Continuous && math.Abs(x-math.Round(x)) > tol {
			return fmt.Errorf("variable %s = %g is not integral", v.Name, x)
		}
	}
	for _, r := range p.Rows {
		lhs := p.RowActivity(r, values)
		var violated bool
		switch r.Sense {
		case LessEqual:
			violated = lhs > r.RHS+tol
		case GreaterEqual:
			violated = lhs < r.RHS-tol
		case Equal:
			violated = math.Abs(lhs-r.RHS) > tol
		}
		if violated {
			return fmt.Errorf("row %s: %g %s %g violated", r.Name, lhs, r.Sense, r.RHS)
		}
	}
	return nil
}

// Stats returns the program size
func (p *Program) Stats() Stats {
	s := Stats{Variables: len(p.Vars), Rows: len(p.Rows)}
	for _, v := range p.Vars {
		if v.Kind != Continuous {
			s.IntegerVars++
		}
	}
	for _, r := range p.Rows {
		s.NonZeros += len(r.Terms)
	}
	return s
}

// Clone returns a deep copy whose bounds can be changed independently
func (p *Program) Clone() *Program {
	c := &Program{
		Vars:   make([]Variable, len(p.Vars)),
		Rows:   p.Rows,
		Offset: p.Offset,
	}
	copy(c.Vars, p.Vars)
	return c
}
