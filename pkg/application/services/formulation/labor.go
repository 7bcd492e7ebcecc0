package formulation

import (
	"fmt"
	"math"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// addLabor prices production hours piecewise. Hours used are production time
// plus startup, shutdown and per-product changeover. A fixed day splits hours
// into regular hours up to the fixed capacity and overtime above it. A
// non-fixed day pays max(hours used, minimum hours) whenever anything is made.
func (as *assembly) addLabor() error {
	p := as.m.Program

	for _, key := range sortedLaborKeys(as.slotsAt) {
		node := as.nodes[key.node]
		day := as.laborDays[key]
		slots := as.slotsAt[key]
		name := fmt.Sprintf("%s,%d", key.node, key.day)

		lv := LaborVars{
			Node:      key.node,
			Day:       key.day,
			Date:      as.idx.Horizon.Date(key.day),
			Fixed:     day.IsFixed,
			Defaulted: as.defaulted[key],
			FixedUsed: NoVar,
			Overtime:  NoVar,
			Paid:      NoVar,
			Any:       NoVar,
		}

		overhead := node.DailyOverheadHours()
		changeover := node.ChangeoverHours
		needAny := overhead > 0 || changeover > 0 || (!day.IsFixed && day.MinimumHours > 0)
		needProduced := changeover > 0

		if needAny {
			lv.Any = p.AddVar("any["+name+"]", 0, 1, solver.Binary)
		}
		if needProduced {
			lv.Produced = make(map[entities.ProductID]solver.VarID, len(slots))
			anyLink := []solver.Term{{Var: lv.Any, Coef: 1}}
			for _, k := range slots {
				slot := as.idx.Production[k]
				produced := p.AddVar(fmt.Sprintf("produced[%s,%s]", name, slot.Product), 0, 1, solver.Binary)
				lv.Produced[slot.Product] = produced
				bigM := p.Vars[as.m.Production[k]].Upper
				p.AddRow(fmt.Sprintf("setup[%s,%s]", name, slot.Product), []solver.Term{
					{Var: as.m.Production[k], Coef: 1},
					{Var: produced, Coef: -bigM},
				}, solver.LessEqual, 0)
				p.AddRow(fmt.Sprintf("any_covers[%s,%s]", name, slot.Product), []solver.Term{
					{Var: produced, Coef: 1},
					{Var: lv.Any, Coef: -1},
				}, solver.LessEqual, 0)
				anyLink = append(anyLink, solver.Term{Var: produced, Coef: -1})
			}
			p.AddRow("any_needs_product["+name+"]", anyLink, solver.LessEqual, 0)
		} else if needAny {
			for _, k := range slots {
				bigM := p.Vars[as.m.Production[k]].Upper
				p.AddRow(fmt.Sprintf("setup[%s,%s]", name, as.idx.Production[k].Product), []solver.Term{
					{Var: as.m.Production[k], Coef: 1},
					{Var: lv.Any, Coef: -bigM},
				}, solver.LessEqual, 0)
			}
		}

		lv.HoursUsed = p.AddVar("hours["+name+"]", 0, day.MaxHours(), solver.Continuous)
		hours := []solver.Term{{Var: lv.HoursUsed, Coef: 1}}
		for _, k := range slots {
			hours = append(hours, solver.Term{Var: as.m.Production[k], Coef: -1 / node.ProductionRate})
		}
		if needAny && overhead-changeover != 0 {
			hours = append(hours, solver.Term{Var: lv.Any, Coef: -(overhead - changeover)})
		}
		if needProduced {
			for _, k := range slots {
				hours = append(hours, solver.Term{Var: lv.Produced[as.idx.Production[k].Product], Coef: -changeover})
			}
		}
		p.AddRow("hours_used["+name+"]", hours, solver.Equal, 0)

		if day.IsFixed {
			lv.FixedUsed = p.AddVar("fixed_hours["+name+"]", 0, day.FixedHours, solver.Continuous)
			lv.Overtime = p.AddVar("overtime["+name+"]", 0, day.OvertimeHours, solver.Continuous)
			p.AddRow("fixed_split["+name+"]", []solver.Term{
				{Var: lv.HoursUsed, Coef: 1},
				{Var: lv.FixedUsed, Coef: -1},
				{Var: lv.Overtime, Coef: -1},
			}, solver.Equal, 0)
			as.m.addCost(LaborCost, lv.FixedUsed, day.RegularRate.InexactFloat64())
			as.m.addCost(LaborCost, lv.Overtime, day.OvertimeRate.InexactFloat64())
		} else {
			lv.Paid = p.AddVar("paid["+name+"]", 0, math.Inf(1), solver.Continuous)
			p.AddRow("paid_covers_used["+name+"]", []solver.Term{
				{Var: lv.Paid, Coef: 1},
				{Var: lv.HoursUsed, Coef: -1},
			}, solver.GreaterEqual, 0)
			if lv.Any != NoVar && day.MinimumHours > 0 {
				p.AddRow("paid_minimum["+name+"]", []solver.Term{
					{Var: lv.Paid, Coef: 1},
					{Var: lv.Any, Coef: -day.MinimumHours},
				}, solver.GreaterEqual, 0)
			}
			as.m.addCost(LaborCost, lv.Paid, day.NonFixedRate.InexactFloat64())
		}

		as.m.Labor = append(as.m.Labor, lv)
	}
	return nil
}
