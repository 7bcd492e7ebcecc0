// Package formulation turns a cohort index into a solver-neutral program:
// mass balance, shelf life, state transitions, piecewise labor, truck capacity
// and demand rows plus the cost objective.
package formulation

import (
	"time"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/cohort"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// ErrIndexInconsistent is raised when a flow references data the index lacks
var ErrIndexInconsistent = cohort.ErrIndexInconsistent

// NoVar marks an absent column
const NoVar solver.VarID = -1

// Component names one slice of the cost breakdown
type Component string

const (
	ProductionCost Component = "production"
	LaborCost      Component = "labor"
	TransportCost  Component = "transport"
	HoldingCost    Component = "holding"
	ShortageCost   Component = "shortage"
	WasteCost      Component = "waste"
)

// Components lists every cost component in report order
var Components = []Component{ProductionCost, LaborCost, TransportCost, HoldingCost, ShortageCost, WasteCost}

// Options are the per-run modelling switches
type Options struct {
	AllowShortages   bool
	EnforceShelfLife bool
	BatchTracking    bool
	StrictCalendar   bool
}

// Input is everything the assembler reads
type Input struct {
	Index    *cohort.Index
	Nodes    []*entities.Node
	Routes   []*entities.Route
	Products []*entities.Product
	Costs    entities.CostStructure
	Calendar *entities.LaborCalendar
	Trucks   []*entities.TruckSchedule
	Options  Options
}

// LaborVars are the labor columns of one manufacturing node on one day
type LaborVars struct {
	Node      entities.NodeID
	Day       int
	Date      time.Time
	Fixed     bool
	Defaulted bool
	HoursUsed solver.VarID
	FixedUsed solver.VarID
	Overtime  solver.VarID
	Paid      solver.VarID
	Any       solver.VarID
	Produced  map[entities.ProductID]solver.VarID
}

// TruckLoad is the load of one scheduled truck departure
type TruckLoad struct {
	TruckID string
	Lane    string
	Day     int
	Units   map[entities.ProductID]solver.VarID
	Pallets map[entities.ProductID]solver.VarID
}

// PalletStock counts pallets of inventory at a node in a storage class
type PalletStock struct {
	Node    entities.NodeID
	Product entities.ProductID
	Frozen  bool
	Day     int
	Var     solver.VarID
}

// Model is an assembled program together with the column of every cohort
type Model struct {
	Program *solver.Program
	Index   *cohort.Index

	// each slice runs parallel to the matching Index slice
	Production  []solver.VarID
	Mixes       []solver.VarID
	Inventory   []solver.VarID
	Shipments   []solver.VarID
	Demand      []solver.VarID
	Transitions []solver.VarID
	// Shortage runs parallel to Index.DemandPoints
	Shortage []solver.VarID

	Labor   []LaborVars
	Trucks  []TruckLoad
	Pallets []PalletStock

	// CostTerms holds the objective split by component
	CostTerms map[Component][]solver.Term

	Warnings []string
}

// addCost charges a column and records it under a component
func (m *Model) addCost(c Component, v solver.VarID, coef float64) {
	if coef == 0 || v == NoVar {
		return
	}
	m.Program.AddCost(v, coef)
	m.CostTerms[c] = append(m.CostTerms[c], solver.Term{Var: v, Coef: coef})
}

// ComponentCost evaluates one cost component at a solution
func (m *Model) ComponentCost(c Component, values []float64) float64 {
	var total float64
	for _, t := range m.CostTerms[c] {
		total += t.Coef * values[t.Var]
	}
	return total
}
