package formulation

import (
	"fmt"
	"math"
	"sort"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// addHolding charges end-of-day stock. Thawed stock pays the ambient rate.
// A storage class with a pallet rate is charged on whole pallets per
// (node, product, day) for palletized products.
func (as *assembly) addHolding() error {
	type palletKey struct {
		node    entities.NodeID
		product entities.ProductID
		frozen  bool
		day     int
	}
	grouped := make(map[palletKey][]solver.Term)

	for i, c := range as.idx.Inventory {
		product, ok := as.products[c.Product]
		if !ok {
			return fmt.Errorf("%w: inventory of unknown product %s", ErrIndexInconsistent, c.Product)
		}
		if as.in.Costs.UsesPalletStorage(c.State) && product.Palletized() {
			key := palletKey{node: c.Node, product: c.Product, frozen: c.State == entities.Frozen, day: c.Day}
			grouped[key] = append(grouped[key], solver.Term{Var: as.m.Inventory[i], Coef: 1})
			continue
		}
		as.m.addCost(HoldingCost, as.m.Inventory[i], as.in.Costs.UnitStorageRate(c.State).InexactFloat64())
	}

	keys := make([]palletKey, 0, len(grouped))
	for k := range grouped {
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
		if a.frozen != b.frozen {
			return !a.frozen
		}
		return a.day < b.day
	})

	for _, k := range keys {
		state := entities.Ambient
		class := "ambient"
		if k.frozen {
			state = entities.Frozen
			class = "frozen"
		}
		upp := as.products[k.product].UnitsPerPallet
		v := as.m.Program.AddVar(fmt.Sprintf("pallet_stock[%s,%s,%s,%d]", k.node, k.product, class, k.day), 0, math.Inf(1), solver.Integer)
		terms := []solver.Term{{Var: v, Coef: upp}}
		for _, t := range grouped[k] {
			terms = append(terms, solver.Term{Var: t.Var, Coef: -1})
		}
		as.m.Program.AddRow(fmt.Sprintf("pallet_stock[%s,%s,%s,%d]", k.node, k.product, class, k.day), terms, solver.GreaterEqual, 0)
		as.m.addCost(HoldingCost, v, as.in.Costs.PalletStorageRate(state).InexactFloat64())
		as.m.Pallets = append(as.m.Pallets, PalletStock{Node: k.node, Product: k.product, Frozen: k.frozen, Day: k.day, Var: v})
	}
	return nil
}

// addWaste charges stock left in a cohort on its last day, whether it expires
// or the horizon ends
func (as *assembly) addWaste() error {
	rate := as.in.Costs.WasteCostPerUnit().InexactFloat64()
	if rate == 0 {
		return nil
	}
	for i := range as.idx.Inventory {
		if as.idx.LastDay(i) {
			as.m.addCost(WasteCost, as.m.Inventory[i], rate)
		}
	}
	return nil
}
