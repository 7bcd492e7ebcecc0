package formulation

import (
	"fmt"
	"sort"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

type stockKey struct {
	node    entities.NodeID
	product entities.ProductID
	state   entities.State
}

// dailyFlows collects the inflows and stock of one stock class by day
type dailyFlows struct {
	in       map[int][]solver.Term
	stock    map[int][]solver.Term
	constant map[int]float64
}

func (as *assembly) flowsByStock() map[stockKey]*dailyFlows {
	result := make(map[stockKey]*dailyFlows)
	get := func(n entities.NodeID, p entities.ProductID, s entities.State) *dailyFlows {
		k := stockKey{node: n, product: p, state: s}
		f, ok := result[k]
		if !ok {
			f = &dailyFlows{
				in:       map[int][]solver.Term{},
				stock:    map[int][]solver.Term{},
				constant: map[int]float64{},
			}
			result[k] = f
		}
		return f
	}

	for k, slot := range as.idx.Production {
		f := get(slot.Node, slot.Product, slot.State)
		f.in[slot.Day] = append(f.in[slot.Day], solver.Term{Var: as.m.Production[k], Coef: 1})
	}
	for k, s := range as.idx.Shipments {
		f := get(s.Destination, s.Product, s.ArrivalState)
		f.in[s.Delivery] = append(f.in[s.Delivery], solver.Term{Var: as.m.Shipments[k], Coef: 1})
	}
	for k, t := range as.idx.Transitions {
		f := get(t.Node, t.Product, t.Target().State)
		f.in[t.Day] = append(f.in[t.Day], solver.Term{Var: as.m.Transitions[k], Coef: 1})
	}
	for i, c := range as.idx.Inventory {
		f := get(c.Node, c.Product, c.State)
		f.stock[c.Day] = append(f.stock[c.Day], solver.Term{Var: as.m.Inventory[i], Coef: 1})
		f.constant[c.Day] += as.idx.Initial[i] + as.idx.Scheduled[i]
	}
	return result
}

// addShelfLife adds the aggregate sliding-window guard: stock of a class held
// at the end of day t never exceeds what entered the class during the last
// shelf-life days. Every unit enters on or after its cohort date, so a plan
// that respects cohort ages always satisfies it.
func (as *assembly) addShelfLife() error {
	if !as.in.Options.EnforceShelfLife {
		return nil
	}

	flows := as.flowsByStock()
	keys := make([]stockKey, 0, len(flows))
	for k := range flows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.node != b.node {
			return a.node < b.node
		}
		if a.product != b.product {
			return a.product < b.product
		}
		return a.state < b.state
	})

	for _, k := range keys {
		f := flows[k]
		product, ok := as.products[k.product]
		if !ok {
			return fmt.Errorf("%w: flows of unknown product %s", ErrIndexInconsistent, k.product)
		}
		life := product.ShelfLife.For(k.state)

		for t := 0; t < as.idx.Horizon.Days; t++ {
			held := f.stock[t]
			if len(held) == 0 {
				continue
			}
			terms := append([]solver.Term(nil), held...)
			rhs := 0.0
			for d := max(0, t-life); d <= t; d++ {
				for _, in := range f.in[d] {
					terms = append(terms, solver.Term{Var: in.Var, Coef: -in.Coef})
				}
				rhs += f.constant[d]
			}
			as.m.Program.AddRow(fmt.Sprintf("shelf_life[%s,%s,%s,%d]", k.node, k.product, k.state, t), terms, solver.LessEqual, rhs)
		}
	}
	return nil
}
