package formulation

import (
	"fmt"
	"math"
	"sort"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// addTrucks applies truck schedules to their lanes. Lanes without a schedule
// are uncapacitated. On a scheduled lane nothing departs on a day no truck
// runs, and each running truck carries at most its unit and pallet capacity.
func (as *assembly) addTrucks() error {
	if len(as.in.Trucks) == 0 {
		return nil
	}
	p := as.m.Program

	trucksByLane := make(map[string][]*entities.TruckSchedule)
	for _, t := range as.in.Trucks {
		if _, ok := as.routes[t.Lane()]; !ok {
			as.warn("truck %s serves lane %s which has no route", t.ID, t.Lane())
			continue
		}
		trucksByLane[t.Lane()] = append(trucksByLane[t.Lane()], t)
	}

	type laneDay struct {
		lane string
		day  int
	}
	departing := make(map[laneDay][]int)
	for k, s := range as.idx.Shipments {
		key := laneDay{lane: s.Lane(), day: s.Departure}
		if _, scheduled := trucksByLane[key.lane]; scheduled {
			departing[key] = append(departing[key], k)
		}
	}
	keys := make([]laneDay, 0, len(departing))
	for k := range departing {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lane != keys[j].lane {
			return keys[i].lane < keys[j].lane
		}
		return keys[i].day < keys[j].day
	})

	palletCost := as.in.Costs.TruckPalletCostPerDeparture.InexactFloat64()
	for _, key := range keys {
		date := as.idx.Horizon.Date(key.day)
		var running []*entities.TruckSchedule
		for _, t := range trucksByLane[key.lane] {
			if t.RunsOn(date) {
				running = append(running, t)
			}
		}
		if len(running) == 0 {
			for _, k := range departing[key] {
				p.Fix(as.m.Shipments[k], 0)
			}
			continue
		}

		byProduct := make(map[entities.ProductID][]int)
		var products []entities.ProductID
		for _, k := range departing[key] {
			pid := as.idx.Shipments[k].Product
			if _, seen := byProduct[pid]; !seen {
				products = append(products, pid)
			}
			byProduct[pid] = append(byProduct[pid], k)
		}
		sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })

		loads := make([]TruckLoad, len(running))
		for ti, truck := range running {
			loads[ti] = TruckLoad{
				TruckID: truck.ID,
				Lane:    key.lane,
				Day:     key.day,
				Units:   make(map[entities.ProductID]solver.VarID, len(products)),
				Pallets: make(map[entities.ProductID]solver.VarID),
			}
			capacity := []solver.Term{}
			var pallets []solver.Term
			for _, pid := range products {
				name := fmt.Sprintf("%s,%s,%d,%s", truck.ID, key.lane, key.day, pid)
				units := p.AddVar("load["+name+"]", 0, truck.CapacityUnits, solver.Continuous)
				loads[ti].Units[pid] = units
				capacity = append(capacity, solver.Term{Var: units, Coef: 1})

				product := as.products[pid]
				if product == nil || !product.Palletized() || (truck.PalletCapacity == 0 && palletCost == 0) {
					continue
				}
				upper := math.Inf(1)
				if truck.PalletCapacity > 0 {
					upper = float64(truck.PalletCapacity)
				}
				pv := p.AddVar("pallets["+name+"]", 0, upper, solver.Integer)
				loads[ti].Pallets[pid] = pv
				p.AddRow("pallet_fit["+name+"]", []solver.Term{
					{Var: pv, Coef: product.UnitsPerPallet},
					{Var: units, Coef: -1},
				}, solver.GreaterEqual, 0)
				pallets = append(pallets, solver.Term{Var: pv, Coef: 1})
				as.m.addCost(TransportCost, pv, palletCost)
			}
			p.AddRow(fmt.Sprintf("truck_units[%s,%d]", truck.ID, key.day), capacity, solver.LessEqual, truck.CapacityUnits)
			if truck.PalletCapacity > 0 && len(pallets) > 0 {
				p.AddRow(fmt.Sprintf("truck_pallets[%s,%d]", truck.ID, key.day), pallets, solver.LessEqual, float64(truck.PalletCapacity))
			}
		}

		for _, pid := range products {
			terms := make([]solver.Term, 0, len(running)+len(byProduct[pid]))
			for ti := range loads {
				terms = append(terms, solver.Term{Var: loads[ti].Units[pid], Coef: 1})
			}
			for _, k := range byProduct[pid] {
				terms = append(terms, solver.Term{Var: as.m.Shipments[k], Coef: -1})
			}
			p.AddRow(fmt.Sprintf("truck_assign[%s,%d,%s]", key.lane, key.day, pid), terms, solver.Equal, 0)
		}
		as.m.Trucks = append(as.m.Trucks, loads...)
	}
	return nil
}
