package extraction

import (
	"fmt"
	"math"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/formulation"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// Validate re-checks a solution against the index it was assembled from: every
// cohort balances, every demand point is served or short, and no stocked
// cohort is past its shelf life.
func (e *Extractor) Validate(m *formulation.Model, values []float64, products []*entities.Product) error {
	idx := m.Index
	life := make(map[entities.ProductID]*entities.Product, len(products))
	for _, p := range products {
		life[p.ID] = p
	}

	for i, c := range idx.Inventory {
		f := idx.Flows[i]
		in := idx.Initial[i] + idx.Scheduled[i]
		if f.Previous >= 0 {
			in += values[m.Inventory[f.Previous]]
		}
		if f.Production >= 0 {
			in += values[m.Production[f.Production]]
		}
		for _, k := range f.Arrivals {
			in += values[m.Shipments[k]]
		}
		for _, k := range f.FreezeIn {
			in += values[m.Transitions[k]]
		}
		for _, k := range f.ThawIn {
			in += values[m.Transitions[k]]
		}

		out := values[m.Inventory[i]]
		for _, k := range f.Departures {
			out += values[m.Shipments[k]]
		}
		for _, k := range f.FreezeOut {
			out += values[m.Transitions[k]]
		}
		for _, k := range f.ThawOut {
			out += values[m.Transitions[k]]
		}
		for _, k := range f.Demand {
			out += values[m.Demand[k]]
		}

		if math.Abs(in-out) > e.tolerance*math.Max(1, math.Abs(in)) {
			return fmt.Errorf("%w: cohort %s does not balance: in %g, out %g", ErrSolutionInvalid, c, in, out)
		}

		if values[m.Inventory[i]] > e.tolerance {
			p, ok := life[c.Product]
			if !ok {
				return fmt.Errorf("%w: cohort %s holds unknown product", ErrSolutionInvalid, c)
			}
			if !p.Alive(c.State, c.Age()) {
				return fmt.Errorf("%w: cohort %s holds stock aged %d days", ErrSolutionInvalid, c, c.Age())
			}
		}
	}

	for pi, point := range idx.DemandPoints {
		served := values[m.Shortage[pi]]
		for _, k := range idx.PointCohorts[pi] {
			served += values[m.Demand[k]]
		}
		want := idx.DemandQuantity[pi]
		if math.Abs(served-want) > e.tolerance*math.Max(1, want) {
			return fmt.Errorf("%w: demand %s/%s on day %d served %g of %g", ErrSolutionInvalid, point.Node, point.Product, point.Day, served, want)
		}
	}
	return nil
}
