package cohort

import (
	"errors"
	"fmt"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// ErrIndexInconsistent marks an internal disagreement between index sets
var ErrIndexInconsistent = errors.New("cohort index inconsistent")

// Flows lists, for one inventory cohort, every flow touching it. Entries are
// positions in the corresponding Index slices.
type Flows struct {
	Production int
	Previous   int
	Arrivals   []int
	Departures []int
	Demand     []int
	FreezeIn   []int
	FreezeOut  []int
	ThawIn     []int
	ThawOut    []int
}

// Index is the materialized set of cohorts every constraint builder shares
type Index struct {
	Horizon Horizon

	Inventory []InventoryCohort
	// Flows, Initial and Scheduled run parallel to Inventory
	Flows     []Flows
	Initial   []float64
	Scheduled []float64

	Shipments   []ShipmentCohort
	Demand      []DemandCohort
	Transitions []Transition
	Production  []ProductionSlot

	DemandPoints   []DemandPoint
	DemandQuantity []float64
	// PointCohorts runs parallel to DemandPoints
	PointCohorts [][]int

	Warnings []string

	pos map[InventoryCohort]int
}

// Stats summarizes index sizes
type Stats struct {
	Inventory    int
	Shipments    int
	Demand       int
	Transitions  int
	Production   int
	DemandPoints int
}

// Stats returns the index sizes
func (x *Index) Stats() Stats {
	return Stats{
		Inventory:    len(x.Inventory),
		Shipments:    len(x.Shipments),
		Demand:       len(x.Demand),
		Transitions:  len(x.Transitions),
		Production:   len(x.Production),
		DemandPoints: len(x.DemandPoints),
	}
}

// Position returns the slot of an inventory cohort
func (x *Index) Position(c InventoryCohort) (int, bool) {
	i, ok := x.pos[c]
	return i, ok
}

// Has reports whether the inventory cohort exists
func (x *Index) Has(c InventoryCohort) bool {
	_, ok := x.pos[c]
	return ok
}

// LastDay reports whether the inventory cohort has no successor: it either
// expires at the end of the day or the horizon ends
func (x *Index) LastDay(i int) bool {
	c := x.Inventory[i]
	return !x.Has(c.Stream().At(c.Day + 1))
}

// Verify checks that every derived cohort references an existing inventory
// cohort and that flows agree with the cohort lists
func (x *Index) Verify(products map[entities.ProductID]*entities.Product) error {
	life := shelfLife{products: products}

	for i, c := range x.Inventory {
		if !life.alive(c.Product, c.State, c.Cohort, c.Day) {
			return fmt.Errorf("%w: inventory cohort %s is past shelf life", ErrIndexInconsistent, c)
		}
		if !x.Horizon.Contains(c.Day) {
			return fmt.Errorf("%w: inventory cohort %s outside horizon", ErrIndexInconsistent, c)
		}
		if p := x.Flows[i].Previous; p >= 0 && x.Inventory[p] != c.Stream().At(c.Day-1) {
			return fmt.Errorf("%w: inventory cohort %s has wrong predecessor", ErrIndexInconsistent, c)
		}
	}
	for _, s := range x.Shipments {
		if !x.Has(s.Source()) {
			return fmt.Errorf("%w: shipment %s departs from missing cohort %s", ErrIndexInconsistent, s, s.Source())
		}
		if !x.Has(s.Target()) {
			return fmt.Errorf("%w: shipment %s arrives in missing cohort %s", ErrIndexInconsistent, s, s.Target())
		}
		if !x.Horizon.Contains(s.Departure) {
			return fmt.Errorf("%w: shipment %s departs outside horizon", ErrIndexInconsistent, s)
		}
	}
	for _, d := range x.Demand {
		if !x.Has(d.Source()) {
			return fmt.Errorf("%w: demand cohort %s/%s/c%d/d%d has no inventory cohort", ErrIndexInconsistent, d.Node, d.Product, d.Cohort, d.Day)
		}
		if !life.consumable(d.Product, d.State, d.Cohort, d.Day) {
			return fmt.Errorf("%w: demand cohort %s/%s/c%d/d%d is not consumable", ErrIndexInconsistent, d.Node, d.Product, d.Cohort, d.Day)
		}
	}
	for _, t := range x.Transitions {
		if !x.Has(t.Source()) || !x.Has(t.Target()) {
			return fmt.Errorf("%w: %s at %s/%s day %d has a missing end", ErrIndexInconsistent, t.Kind, t.Node, t.Product, t.Day)
		}
	}
	for _, p := range x.Production {
		if !x.Has(p.Target()) {
			return fmt.Errorf("%w: production slot %s/%s/d%d has no inventory cohort", ErrIndexInconsistent, p.Node, p.Product, p.Day)
		}
	}

	counts := make([]int, 4)
	for _, f := range x.Flows {
		counts[0] += len(f.Departures)
		counts[1] += len(f.Arrivals)
		counts[2] += len(f.Demand)
		counts[3] += len(f.FreezeOut) + len(f.ThawOut)
	}
	if counts[0] != len(x.Shipments) || counts[1] != len(x.Shipments) || counts[2] != len(x.Demand) || counts[3] != len(x.Transitions) {
		return fmt.Errorf("%w: flow lists disagree with cohort sets", ErrIndexInconsistent)
	}
	return nil
}
