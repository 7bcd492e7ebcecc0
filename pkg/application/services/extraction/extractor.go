// Package extraction turns solved column values back into a plan by walking
// the same cohort index the program was assembled from.
package extraction

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/formulation"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// ErrSolutionInvalid is returned when solved values break a model invariant
var ErrSolutionInvalid = errors.New("solution violates model invariants")

const (
	// DefaultTolerance is the absolute slack allowed on balance and demand checks
	DefaultTolerance = 1e-4
	// reportThreshold hides quantities that are solver noise
	reportThreshold = 1e-6
)

// Extractor converts solver output into a PlanningResult
type Extractor struct {
	logger    *slog.Logger
	tolerance float64
}

// NewExtractor creates a new solution extractor
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, tolerance: DefaultTolerance}
}

// WithTolerance returns a copy of the extractor using a different check tolerance
func (e *Extractor) WithTolerance(tol float64) *Extractor {
	c := *e
	c.tolerance = tol
	return &c
}

// Extract reads a solved model. When the result carries no values only the
// termination metadata is filled in.
func (e *Extractor) Extract(m *formulation.Model, result *solver.Result, products []*entities.Product) (*dto.PlanningResult, error) {
	if m == nil || result == nil {
		return nil, fmt.Errorf("model and solver result are required")
	}
	idx := m.Index
	plan := &dto.PlanningResult{
		Start: idx.Horizon.Start,
		End:   idx.Horizon.End(),
		Solve: dto.SolveInfo{
			Status:    result.Status,
			Backend:   result.Backend,
			Objective: result.Objective,
			Gap:       result.Gap,
			SolveTime: result.SolveTime,
			Message:   result.Message,
		},
	}
	for _, w := range idx.Warnings {
		plan.Warnings = append(plan.Warnings, dto.Warning{Source: "index", Message: w})
	}
	for _, w := range m.Warnings {
		plan.Warnings = append(plan.Warnings, dto.Warning{Source: "formulation", Message: w})
	}

	if !result.Status.HasSolution() {
		e.logger.Info("no plan to extract", "status", result.Status, "message", result.Message)
		return plan, nil
	}
	if len(result.Values) != len(m.Program.Vars) {
		return nil, fmt.Errorf("%w: %d values for %d columns", ErrSolutionInvalid, len(result.Values), len(m.Program.Vars))
	}

	values := result.Values
	if err := e.Validate(m, values, products); err != nil {
		return nil, err
	}

	e.extractProduction(plan, m, values)
	e.extractShipments(plan, m, values)
	e.extractInventory(plan, m, values)
	e.extractDemand(plan, m, values)
	e.extractLabor(plan, m, values)
	e.extractTrucks(plan, m, values)
	plan.Costs = costBreakdown(m, values)

	e.logger.Info("plan extracted",
		"status", result.Status,
		"production", plan.Totals.Production,
		"shortage", plan.Totals.Shortage,
		"total_cost", plan.Costs.Total.String())
	return plan, nil
}

func (e *Extractor) extractProduction(plan *dto.PlanningResult, m *formulation.Model, values []float64) {
	for k, slot := range m.Index.Production {
		qty := values[m.Production[k]]
		plan.Totals.Production += qty
		if qty <= reportThreshold {
			continue
		}
		entry := dto.ProductionEntry{
			Node:     slot.Node,
			Product:  slot.Product,
			Date:     m.Index.Horizon.Date(slot.Day),
			State:    slot.State,
			Quantity: qty,
		}
		if v := m.Mixes[k]; v != formulation.NoVar {
			entry.Mixes = math.Round(values[v])
		}
		plan.Production = append(plan.Production, entry)
	}
}

func (e *Extractor) extractShipments(plan *dto.PlanningResult, m *formulation.Model, values []float64) {
	type totalKey struct {
		origin, destination entities.NodeID
		product             entities.ProductID
		delivery            int
	}
	totals := make(map[totalKey]float64)
	var order []totalKey

	h := m.Index.Horizon
	for k, s := range m.Index.Shipments {
		qty := values[m.Shipments[k]]
		plan.Totals.Shipped += qty
		if qty <= reportThreshold {
			continue
		}
		plan.Shipments = append(plan.Shipments, dto.ShipmentEntry{
			Origin:            s.Origin,
			Destination:       s.Destination,
			Product:           s.Product,
			CohortDate:        h.Date(s.Cohort),
			DepartureDate:     h.Date(s.Departure),
			DeliveryDate:      h.Date(s.Delivery),
			DepartureState:    s.DepartureState,
			ArrivalState:      s.ArrivalState,
			ArrivalCohortDate: h.Date(s.ArrivalCohort),
			Quantity:          qty,
		})
		key := totalKey{origin: s.Origin, destination: s.Destination, product: s.Product, delivery: s.Delivery}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += qty
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.origin != b.origin {
			return a.origin < b.origin
		}
		if a.destination != b.destination {
			return a.destination < b.destination
		}
		if a.product != b.product {
			return a.product < b.product
		}
		return a.delivery < b.delivery
	})
	for _, key := range order {
		plan.ShipmentTotals = append(plan.ShipmentTotals, dto.ShipmentTotal{
			Origin:       key.origin,
			Destination:  key.destination,
			Product:      key.product,
			DeliveryDate: h.Date(key.delivery),
			Quantity:     totals[key],
		})
	}
}

func (e *Extractor) extractInventory(plan *dto.PlanningResult, m *formulation.Model, values []float64) {
	h := m.Index.Horizon
	for i, c := range m.Index.Inventory {
		qty := values[m.Inventory[i]]
		if c.Day == h.Last() {
			plan.Totals.EndInventory += qty
		}
		if qty <= reportThreshold {
			continue
		}
		plan.Inventory = append(plan.Inventory, dto.CohortInventory{
			Node:       c.Node,
			Product:    c.Product,
			CohortDate: h.Date(c.Cohort),
			Date:       h.Date(c.Day),
			State:      c.State,
			Quantity:   qty,
		})
	}
}

func (e *Extractor) extractDemand(plan *dto.PlanningResult, m *formulation.Model, values []float64) {
	h := m.Index.Horizon
	for pi, point := range m.Index.DemandPoints {
		summary := dto.DemandSummary{
			Node:     point.Node,
			Product:  point.Product,
			Date:     h.Date(point.Day),
			Demand:   m.Index.DemandQuantity[pi],
			Shortage: values[m.Shortage[pi]],
		}
		for _, k := range m.Index.PointCohorts[pi] {
			qty := values[m.Demand[k]]
			summary.Satisfied += qty
			if qty <= reportThreshold {
				continue
			}
			d := m.Index.Demand[k]
			plan.Consumption = append(plan.Consumption, dto.DemandConsumption{
				Node:       d.Node,
				Product:    d.Product,
				Date:       h.Date(d.Day),
				CohortDate: h.Date(d.Cohort),
				State:      d.State,
				Quantity:   qty,
			})
		}
		plan.Demand = append(plan.Demand, summary)
		plan.Totals.Demand += summary.Demand
		plan.Totals.Satisfied += summary.Satisfied
		plan.Totals.Shortage += summary.Shortage
	}
}

func (e *Extractor) extractLabor(plan *dto.PlanningResult, m *formulation.Model, values []float64) {
	value := func(v solver.VarID) float64 {
		if v == formulation.NoVar {
			return 0
		}
		return values[v]
	}
	for _, lv := range m.Labor {
		hours := value(lv.HoursUsed)
		if hours <= reportThreshold && value(lv.Paid) <= reportThreshold {
			continue
		}
		cost := 0.0
		for _, v := range []solver.VarID{lv.FixedUsed, lv.Overtime, lv.Paid} {
			if v != formulation.NoVar {
				cost += m.Program.Vars[v].Cost * values[v]
			}
		}
		plan.Labor = append(plan.Labor, dto.LaborEntry{
			Node:          lv.Node,
			Date:          lv.Date,
			Fixed:         lv.Fixed,
			Defaulted:     lv.Defaulted,
			HoursUsed:     hours,
			FixedHours:    value(lv.FixedUsed),
			OvertimeHours: value(lv.Overtime),
			PaidHours:     value(lv.Paid),
			Cost:          money(cost),
		})
	}
}

func (e *Extractor) extractTrucks(plan *dto.PlanningResult, m *formulation.Model, values []float64) {
	for _, load := range m.Trucks {
		products := make([]entities.ProductID, 0, len(load.Units))
		for p := range load.Units {
			products = append(products, p)
		}
		sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
		for _, p := range products {
			units := values[load.Units[p]]
			if units <= reportThreshold {
				continue
			}
			entry := dto.TruckEntry{
				TruckID: load.TruckID,
				Lane:    load.Lane,
				Date:    m.Index.Horizon.Date(load.Day),
				Product: p,
				Units:   units,
			}
			if v, ok := load.Pallets[p]; ok {
				entry.Pallets = math.Round(values[v])
			}
			plan.Trucks = append(plan.Trucks, entry)
		}
	}
}

func costBreakdown(m *formulation.Model, values []float64) dto.CostBreakdown {
	b := dto.CostBreakdown{
		Production: money(m.ComponentCost(formulation.ProductionCost, values)),
		Labor:      money(m.ComponentCost(formulation.LaborCost, values)),
		Transport:  money(m.ComponentCost(formulation.TransportCost, values)),
		Holding:    money(m.ComponentCost(formulation.HoldingCost, values)),
		Shortage:   money(m.ComponentCost(formulation.ShortageCost, values)),
		Waste:      money(m.ComponentCost(formulation.WasteCost, values)),
	}
	b.Total = decimal.Sum(b.Production, b.Labor, b.Transport, b.Holding, b.Shortage, b.Waste)
	return b
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
