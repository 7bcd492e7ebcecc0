package formulation

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/cohort"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// Assembler builds programs from cohort indexes. It keeps no state between calls.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates a new constraint and objective assembler
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

type laborKey struct {
	node entities.NodeID
	day  int
}

// assembly is the working state of one Assemble call
type assembly struct {
	in       Input
	idx      *cohort.Index
	m        *Model
	nodes    map[entities.NodeID]*entities.Node
	products map[entities.ProductID]*entities.Product
	routes   map[string]*entities.Route

	laborDays map[laborKey]*entities.LaborDay
	defaulted map[laborKey]bool
	slotsAt   map[laborKey][]int
}

// Assemble generates every column, row and cost of the planning program
func (a *Assembler) Assemble(in Input) (*Model, error) {
	if in.Index == nil {
		return nil, fmt.Errorf("cohort index is required")
	}

	as := &assembly{
		in:        in,
		idx:       in.Index,
		nodes:     make(map[entities.NodeID]*entities.Node, len(in.Nodes)),
		products:  make(map[entities.ProductID]*entities.Product, len(in.Products)),
		routes:    make(map[string]*entities.Route, len(in.Routes)),
		laborDays: make(map[laborKey]*entities.LaborDay),
		defaulted: make(map[laborKey]bool),
		slotsAt:   make(map[laborKey][]int),
		m: &Model{
			Program:   solver.NewProgram(),
			Index:     in.Index,
			CostTerms: make(map[Component][]solver.Term),
		},
	}
	for _, n := range in.Nodes {
		as.nodes[n.ID] = n
	}
	for _, p := range in.Products {
		as.products[p.ID] = p
	}
	for _, r := range in.Routes {
		if r.TransitDays <= 0 {
			return nil, fmt.Errorf("route %s: transit time must be positive, got %g", r.Lane(), r.TransitDays)
		}
		as.routes[r.Lane()] = r
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"labor calendar", as.resolveLabor},
		{"production", as.addProduction},
		{"inventory", as.addInventory},
		{"shipments", as.addShipments},
		{"transitions", as.addTransitions},
		{"demand", as.addDemand},
		{"mass balance", as.addMassBalance},
		{"labor", as.addLabor},
		{"shelf life", as.addShelfLife},
		{"trucks", as.addTrucks},
		{"holding", as.addHolding},
		{"waste", as.addWaste},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return nil, fmt.Errorf("failed to assemble %s: %w", step.name, err)
		}
	}

	stats := as.m.Program.Stats()
	a.logger.Info("program assembled",
		"variables", stats.Variables,
		"integer_variables", stats.IntegerVars,
		"rows", stats.Rows,
		"nonzeros", stats.NonZeros,
		"warnings", len(as.m.Warnings))
	return as.m, nil
}

func (as *assembly) warn(format string, args ...any) {
	as.m.Warnings = append(as.m.Warnings, fmt.Sprintf(format, args...))
}

// resolveLabor finds the labor day behind every production slot
func (as *assembly) resolveLabor() error {
	for _, slot := range as.idx.Production {
		key := laborKey{node: slot.Node, day: slot.Day}
		if _, done := as.laborDays[key]; done {
			continue
		}
		date := as.idx.Horizon.Date(slot.Day)
		day, ok := as.in.Calendar.Lookup(date)
		if !ok {
			if as.in.Options.StrictCalendar {
				return fmt.Errorf("%w: %s at %s", entities.ErrCalendarGap, date.Format(entities.DateLayout), slot.Node)
			}
			day = as.in.Calendar.GapDefault(date)
			as.defaulted[key] = true
			as.warn("no labor entry for %s at %s; using non-fixed day at %s/h with %g minimum hours",
				date.Format(entities.DateLayout), slot.Node, day.NonFixedRate, day.MinimumHours)
		}
		as.laborDays[key] = day
	}
	return nil
}

func (as *assembly) addProduction() error {
	p := as.m.Program
	costPerUnit := as.in.Costs.ProductionCostPerUnit.InexactFloat64()

	as.m.Production = make([]solver.VarID, len(as.idx.Production))
	as.m.Mixes = make([]solver.VarID, len(as.idx.Production))
	for k, slot := range as.idx.Production {
		node, ok := as.nodes[slot.Node]
		if !ok {
			return fmt.Errorf("%w: production at unknown node %s", ErrIndexInconsistent, slot.Node)
		}
		product, ok := as.products[slot.Product]
		if !ok {
			return fmt.Errorf("%w: production of unknown product %s", ErrIndexInconsistent, slot.Product)
		}
		key := laborKey{node: slot.Node, day: slot.Day}
		capacity := node.ProductionRate * as.laborDays[key].MaxHours()

		prod := p.AddVar(fmt.Sprintf("prod[%s,%s,%d]", slot.Node, slot.Product, slot.Day), 0, capacity, solver.Continuous)
		as.m.Production[k] = prod
		as.m.Mixes[k] = NoVar
		as.m.addCost(ProductionCost, prod, costPerUnit)
		as.slotsAt[key] = append(as.slotsAt[key], k)

		if as.in.Options.BatchTracking && product.HasMixes() {
			mixes := p.AddVar(fmt.Sprintf("mixes[%s,%s,%d]", slot.Node, slot.Product, slot.Day), 0, math.Floor(capacity/product.UnitsPerMix), solver.Integer)
			as.m.Mixes[k] = mixes
			p.AddRow(fmt.Sprintf("batch[%s,%s,%d]", slot.Node, slot.Product, slot.Day), []solver.Term{
				{Var: prod, Coef: 1},
				{Var: mixes, Coef: -product.UnitsPerMix},
			}, solver.Equal, 0)
		}
	}
	return nil
}

func (as *assembly) addInventory() error {
	as.m.Inventory = make([]solver.VarID, len(as.idx.Inventory))
	for i, c := range as.idx.Inventory {
		node, ok := as.nodes[c.Node]
		if !ok {
			return fmt.Errorf("%w: inventory at unknown node %s", ErrIndexInconsistent, c.Node)
		}
		if !node.Supports(c.State) {
			return fmt.Errorf("%w: node %s cannot hold %s stock", ErrIndexInconsistent, c.Node, c.State)
		}
		upper := math.Inf(1)
		if !node.Capabilities.CanStore {
			upper = 0
		}
		as.m.Inventory[i] = as.m.Program.AddVar("inv["+c.String()+"]", 0, upper, solver.Continuous)
	}
	return nil
}

func (as *assembly) addShipments() error {
	as.m.Shipments = make([]solver.VarID, len(as.idx.Shipments))
	for k, s := range as.idx.Shipments {
		route, ok := as.routes[s.Lane()]
		if !ok {
			return fmt.Errorf("%w: shipment on unknown lane %s", ErrIndexInconsistent, s.Lane())
		}
		if s.Delivery-s.Departure != route.TransitDayCount() {
			return fmt.Errorf("%w: shipment %s does not match transit of %d days", ErrIndexInconsistent, s, route.TransitDayCount())
		}
		v := as.m.Program.AddVar("ship["+s.String()+"]", 0, math.Inf(1), solver.Continuous)
		as.m.Shipments[k] = v
		as.m.addCost(TransportCost, v, route.CostPerUnit.InexactFloat64())
	}
	return nil
}

// addTransitions creates freeze and thaw columns; only dual-mode nodes may carry them
func (as *assembly) addTransitions() error {
	as.m.Transitions = make([]solver.VarID, len(as.idx.Transitions))
	for k, t := range as.idx.Transitions {
		node, ok := as.nodes[t.Node]
		if !ok || !node.CanTransition() {
			return fmt.Errorf("%w: %s at %s which does not support both states", ErrIndexInconsistent, t.Kind, t.Node)
		}
		as.m.Transitions[k] = as.m.Program.AddVar(fmt.Sprintf("%s[%s,%s,c%d,d%d]", t.Kind, t.Node, t.Product, t.FromCohort, t.Day), 0, math.Inf(1), solver.Continuous)
	}
	return nil
}

// addDemand creates consumption and shortage columns and the satisfaction rows
func (as *assembly) addDemand() error {
	p := as.m.Program
	penalty := as.in.Costs.ShortagePenaltyPerUnit.InexactFloat64()

	as.m.Demand = make([]solver.VarID, len(as.idx.Demand))
	for k, d := range as.idx.Demand {
		as.m.Demand[k] = p.AddVar(fmt.Sprintf("dem[%s,%s,c%d,d%d,%s]", d.Node, d.Product, d.Cohort, d.Day, d.State), 0, math.Inf(1), solver.Continuous)
	}

	as.m.Shortage = make([]solver.VarID, len(as.idx.DemandPoints))
	for pi, point := range as.idx.DemandPoints {
		qty := as.idx.DemandQuantity[pi]
		upper := 0.0
		if as.in.Options.AllowShortages {
			upper = qty
		}
		short := p.AddVar(fmt.Sprintf("short[%s,%s,%d]", point.Node, point.Product, point.Day), 0, upper, solver.Continuous)
		as.m.Shortage[pi] = short
		as.m.addCost(ShortageCost, short, penalty)

		terms := []solver.Term{{Var: short, Coef: 1}}
		for _, k := range as.idx.PointCohorts[pi] {
			if as.idx.Demand[k].Point() != point {
				return fmt.Errorf("%w: demand cohort %d filed under the wrong point", ErrIndexInconsistent, k)
			}
			terms = append(terms, solver.Term{Var: as.m.Demand[k], Coef: 1})
		}
		p.AddRow(fmt.Sprintf("demand[%s,%s,%d]", point.Node, point.Product, point.Day), terms, solver.Equal, qty)
	}
	return nil
}

// addMassBalance writes, per inventory cohort,
// prior + production + arrivals + thaw/freeze in == ending + departures + freeze/thaw out + demand
func (as *assembly) addMassBalance() error {
	for i, c := range as.idx.Inventory {
		f := as.idx.Flows[i]
		terms := []solver.Term{{Var: as.m.Inventory[i], Coef: 1}}
		if f.Previous >= 0 {
			terms = append(terms, solver.Term{Var: as.m.Inventory[f.Previous], Coef: -1})
		}
		if f.Production >= 0 {
			terms = append(terms, solver.Term{Var: as.m.Production[f.Production], Coef: -1})
		}
		for _, k := range f.Arrivals {
			terms = append(terms, solver.Term{Var: as.m.Shipments[k], Coef: -1})
		}
		for _, k := range f.FreezeIn {
			terms = append(terms, solver.Term{Var: as.m.Transitions[k], Coef: -1})
		}
		for _, k := range f.ThawIn {
			terms = append(terms, solver.Term{Var: as.m.Transitions[k], Coef: -1})
		}
		for _, k := range f.Departures {
			terms = append(terms, solver.Term{Var: as.m.Shipments[k], Coef: 1})
		}
		for _, k := range f.FreezeOut {
			terms = append(terms, solver.Term{Var: as.m.Transitions[k], Coef: 1})
		}
		for _, k := range f.ThawOut {
			terms = append(terms, solver.Term{Var: as.m.Transitions[k], Coef: 1})
		}
		for _, k := range f.Demand {
			terms = append(terms, solver.Term{Var: as.m.Demand[k], Coef: 1})
		}
		as.m.Program.AddRow("balance["+c.String()+"]", terms, solver.Equal, as.idx.Initial[i]+as.idx.Scheduled[i])
	}
	return nil
}

func sortedLaborKeys(m map[laborKey][]int) []laborKey {
	keys := make([]laborKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].node != keys[j].node {
			return keys[i].node < keys[j].node
		}
		return keys[i].day < keys[j].day
	})
	return keys
}
