package cohort

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// Input is everything the index depends on
type Input struct {
	Nodes    []*entities.Node
	Routes   []*entities.Route
	Products []*entities.Product
	Horizon  Horizon
	Initial  *entities.InventorySnapshot
	Forecast []*entities.ForecastEntry
}

// Builder derives inventory, shipment and demand cohorts from one shelf-life
// rule and one reachability pass
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a new cohort index builder
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

type buildState struct {
	in       Input
	life     shelfLife
	nodes    map[entities.NodeID]*entities.Node
	products []*entities.Product
	routes   map[entities.NodeID][]*entities.Route
	entry    map[Stream]int
	initial  map[InventoryCohort]float64
	arrivals map[InventoryCohort]float64
	warnings []string
}

// Build returns the cohort index for the input. Identical inputs produce
// identical indexes.
func (b *Builder) Build(in Input) (*Index, error) {
	if in.Horizon.Days <= 0 {
		return nil, fmt.Errorf("horizon must cover at least one day")
	}

	st := &buildState{
		in:       in,
		life:     shelfLife{products: make(map[entities.ProductID]*entities.Product, len(in.Products))},
		nodes:    make(map[entities.NodeID]*entities.Node, len(in.Nodes)),
		routes:   make(map[entities.NodeID][]*entities.Route),
		entry:    make(map[Stream]int),
		initial:  make(map[InventoryCohort]float64),
		arrivals: make(map[InventoryCohort]float64),
	}
	for _, n := range in.Nodes {
		st.nodes[n.ID] = n
	}
	for _, p := range in.Products {
		st.life.products[p.ID] = p
		st.products = append(st.products, p)
	}
	sort.Slice(st.products, func(i, j int) bool { return st.products[i].ID < st.products[j].ID })
	for _, r := range in.Routes {
		if r.TransitDays <= 0 {
			return nil, fmt.Errorf("route %s: transit time must be positive, got %g", r.Lane(), r.TransitDays)
		}
		if _, ok := st.nodes[r.Origin]; !ok {
			return nil, fmt.Errorf("route %s: unknown origin", r.Lane())
		}
		if _, ok := st.nodes[r.Destination]; !ok {
			return nil, fmt.Errorf("route %s: unknown destination", r.Lane())
		}
		st.routes[r.Origin] = append(st.routes[r.Origin], r)
	}
	for _, rs := range st.routes {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Destination < rs[j].Destination })
	}

	st.reach()

	idx := st.materialize()
	if err := st.deriveShipments(idx); err != nil {
		return nil, err
	}
	st.deriveTransitions(idx)
	st.deriveProduction(idx)
	st.deriveDemand(idx)
	idx.Warnings = st.warnings

	if err := idx.Verify(st.life.products); err != nil {
		return nil, err
	}

	stats := idx.Stats()
	b.logger.Info("cohort index built",
		"days", in.Horizon.Days,
		"inventory", stats.Inventory,
		"shipments", stats.Shipments,
		"demand", stats.Demand,
		"transitions", stats.Transitions,
		"warnings", len(idx.Warnings))
	return idx, nil
}

func (st *buildState) warn(format string, args ...any) {
	st.warnings = append(st.warnings, fmt.Sprintf(format, args...))
}

// reach propagates earliest-arrival days over streams, cheapest day first
func (st *buildState) reach() {
	h := st.in.Horizon
	q := &streamQueue{}

	relax := func(s Stream, day int) {
		if !h.Contains(day) || !st.life.alive(s.Product, s.State, s.Cohort, day) {
			return
		}
		node, ok := st.nodes[s.Node]
		if !ok || !node.Supports(s.State) {
			return
		}
		if cur, seen := st.entry[s]; seen && cur <= day {
			return
		}
		st.entry[s] = day
		heap.Push(q, queued{stream: s, day: day})
	}

	st.seedProduction(relax)
	st.seedInitial(relax)

	for q.Len() > 0 {
		item := heap.Pop(q).(queued)
		if st.entry[item.stream] != item.day {
			continue
		}
		s, e := item.stream, item.day
		last := min(st.life.lastAlive(s.Product, s.State, s.Cohort), h.Last())
		node := st.nodes[s.Node]

		if node.CanTransition() {
			switch s.State {
			case entities.Ambient:
				relax(Stream{Node: s.Node, Product: s.Product, Cohort: s.Cohort, State: entities.Frozen}, e)
			case entities.Frozen:
				for t := e; t <= last; t++ {
					relax(Stream{Node: s.Node, Product: s.Product, Cohort: t, State: entities.Thawed}, t)
				}
			}
		}

		for _, r := range st.routes[s.Node] {
			dest := st.nodes[r.Destination]
			arrival, ok := r.ArrivalState(s.State, *dest)
			if !ok {
				continue
			}
			transit := r.TransitDayCount()
			if s.State == entities.Frozen && arrival == entities.Thawed {
				for t := e; t <= last; t++ {
					relax(Stream{Node: r.Destination, Product: s.Product, Cohort: t + transit, State: arrival}, t+transit)
				}
				continue
			}
			relax(Stream{Node: r.Destination, Product: s.Product, Cohort: s.Cohort, State: arrival}, e+transit)
		}
	}
}

func (st *buildState) seedProduction(relax func(Stream, int)) {
	for _, n := range st.sortedNodes() {
		if !n.Capabilities.CanManufacture {
			continue
		}
		for _, p := range st.products {
			for d := 0; d < st.in.Horizon.Days; d++ {
				relax(Stream{Node: n.ID, Product: p.ID, Cohort: d, State: n.ProductionState()}, d)
			}
		}
	}
}

// seedInitial places on-hand stock on day 0 and in-transit stock on its
// delivery day
func (st *buildState) seedInitial(relax func(Stream, int)) {
	snap := st.in.Initial
	if snap.IsEmpty() {
		return
	}
	h := st.in.Horizon

	for _, e := range snap.Entries {
		if e.Quantity <= 0 {
			continue
		}
		cohort := h.Offset(e.ResolvedCohortDate(snap.SnapshotDate))
		if cohort >= 0 {
			st.warn("initial inventory %s/%s dated on or after the horizon start; treated as produced the day before", e.Node, e.Product)
			cohort = -1
		}
		st.placeInitial(Stream{Node: e.Node, Product: e.Product, Cohort: cohort, State: e.State}, e.Quantity, relax)
	}

	for _, t := range snap.InTransit {
		if t.Quantity <= 0 {
			continue
		}
		s := Stream{Node: t.Destination, Product: t.Product, Cohort: h.Offset(t.CohortDate), State: t.ArrivalState}
		delivery := h.Offset(t.DeliveryDate)
		switch {
		case delivery < 0:
			st.warn("in-transit %s/%s delivered before the horizon start; counted as on-hand", t.Destination, t.Product)
			st.placeInitial(s, t.Quantity, relax)
		case delivery > h.Last():
			st.warn("in-transit %s/%s delivered after the horizon end; ignored", t.Destination, t.Product)
		case !st.life.alive(s.Product, s.State, s.Cohort, delivery):
			st.warn("in-transit %s/%s expires before delivery; dropped %g units", t.Destination, t.Product, t.Quantity)
		case st.nodes[s.Node] == nil || !st.nodes[s.Node].Supports(s.State):
			st.warn("in-transit %s cannot be received at its destination; dropped %g units", s, t.Quantity)
		default:
			relax(s, delivery)
			st.arrivals[s.At(delivery)] += t.Quantity
		}
	}
}

func (st *buildState) placeInitial(s Stream, qty float64, relax func(Stream, int)) {
	node, ok := st.nodes[s.Node]
	if !ok || !node.Supports(s.State) {
		st.warn("initial inventory %s cannot be held at its node; dropped %g units", s, qty)
		return
	}
	if !st.life.alive(s.Product, s.State, s.Cohort, 0) {
		st.warn("initial inventory %s expired before the horizon start; dropped %g units", s, qty)
		return
	}
	relax(s, 0)
	st.initial[s.At(0)] += qty
}

func (st *buildState) sortedNodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(st.nodes))
	for _, n := range st.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// materialize expands every reached stream into one inventory cohort per day
// from its entry day until expiry or the horizon end
func (st *buildState) materialize() *Index {
	h := st.in.Horizon
	streams := make([]Stream, 0, len(st.entry))
	for s := range st.entry {
		streams = append(streams, s)
	}
	sort.Slice(streams, func(i, j int) bool { return lessStream(streams[i], streams[j]) })

	idx := &Index{Horizon: h, pos: make(map[InventoryCohort]int)}
	for _, s := range streams {
		last := min(st.life.lastAlive(s.Product, s.State, s.Cohort), h.Last())
		for d := st.entry[s]; d <= last; d++ {
			c := s.At(d)
			idx.pos[c] = len(idx.Inventory)
			idx.Inventory = append(idx.Inventory, c)
		}
	}

	idx.Flows = make([]Flows, len(idx.Inventory))
	idx.Initial = make([]float64, len(idx.Inventory))
	idx.Scheduled = make([]float64, len(idx.Inventory))
	for i, c := range idx.Inventory {
		idx.Flows[i] = Flows{Production: -1, Previous: -1}
		if prev, ok := idx.pos[c.Stream().At(c.Day-1)]; ok {
			idx.Flows[i].Previous = prev
		}
		idx.Initial[i] = st.initial[c]
		idx.Scheduled[i] = st.arrivals[c]
	}
	return idx
}

// deriveShipments walks every route and delivery day; a shipment exists iff
// its departure cohort exists inside the horizon and the cohort is still alive
// on arrival
func (st *buildState) deriveShipments(idx *Index) error {
	byNodeDay := make(map[entities.NodeID]map[int][]int)
	for i, c := range idx.Inventory {
		if byNodeDay[c.Node] == nil {
			byNodeDay[c.Node] = make(map[int][]int)
		}
		byNodeDay[c.Node][c.Day] = append(byNodeDay[c.Node][c.Day], i)
	}

	for _, origin := range st.sortedNodes() {
		for _, r := range st.routes[origin.ID] {
			dest := st.nodes[r.Destination]
			transit := r.TransitDayCount()
			for delivery := 0; delivery < idx.Horizon.Days; delivery++ {
				departure := delivery - transit
				if departure < 0 {
					// stock that left before the horizon is an in-transit initial condition
					continue
				}
				for _, src := range byNodeDay[r.Origin][departure] {
					c := idx.Inventory[src]
					arrival, ok := r.ArrivalState(c.State, *dest)
					if !ok {
						continue
					}
					arrivalCohort := c.Cohort
					if c.State == entities.Frozen && arrival == entities.Thawed {
						arrivalCohort = delivery
					}
					if !st.life.alive(c.Product, arrival, arrivalCohort, delivery) {
						continue
					}
					s := ShipmentCohort{
						Origin:         r.Origin,
						Destination:    r.Destination,
						Product:        c.Product,
						Cohort:         c.Cohort,
						Departure:      departure,
						Delivery:       delivery,
						DepartureState: c.State,
						ArrivalState:   arrival,
						ArrivalCohort:  arrivalCohort,
					}
					dst, ok := idx.pos[s.Target()]
					if !ok {
						return fmt.Errorf("%w: shipment %s reaches unindexed cohort %s", ErrIndexInconsistent, s, s.Target())
					}
					k := len(idx.Shipments)
					idx.Shipments = append(idx.Shipments, s)
					idx.Flows[src].Departures = append(idx.Flows[src].Departures, k)
					idx.Flows[dst].Arrivals = append(idx.Flows[dst].Arrivals, k)
				}
			}
		}
	}
	return nil
}

// deriveTransitions adds freeze and thaw flows where both cohorts exist
func (st *buildState) deriveTransitions(idx *Index) {
	for i, c := range idx.Inventory {
		if !st.nodes[c.Node].CanTransition() {
			continue
		}
		var t Transition
		switch c.State {
		case entities.Ambient:
			t = Transition{Node: c.Node, Product: c.Product, Kind: Freeze, FromCohort: c.Cohort, ToCohort: c.Cohort, Day: c.Day}
		case entities.Frozen:
			t = Transition{Node: c.Node, Product: c.Product, Kind: Thaw, FromCohort: c.Cohort, ToCohort: c.Day, Day: c.Day}
		default:
			continue
		}
		dst, ok := idx.pos[t.Target()]
		if !ok {
			continue
		}
		k := len(idx.Transitions)
		idx.Transitions = append(idx.Transitions, t)
		if t.Kind == Freeze {
			idx.Flows[i].FreezeOut = append(idx.Flows[i].FreezeOut, k)
			idx.Flows[dst].FreezeIn = append(idx.Flows[dst].FreezeIn, k)
		} else {
			idx.Flows[i].ThawOut = append(idx.Flows[i].ThawOut, k)
			idx.Flows[dst].ThawIn = append(idx.Flows[dst].ThawIn, k)
		}
	}
}

func (st *buildState) deriveProduction(idx *Index) {
	for _, n := range st.sortedNodes() {
		if !n.Capabilities.CanManufacture {
			continue
		}
		for _, p := range st.products {
			for d := 0; d < idx.Horizon.Days; d++ {
				slot := ProductionSlot{Node: n.ID, Product: p.ID, Day: d, State: n.ProductionState()}
				dst, ok := idx.pos[slot.Target()]
				if !ok {
					continue
				}
				idx.Flows[dst].Production = len(idx.Production)
				idx.Production = append(idx.Production, slot)
			}
		}
	}
}

// deriveDemand restricts the inventory index to demand points and states the
// node may sell from
func (st *buildState) deriveDemand(idx *Index) {
	totals := make(map[DemandPoint]float64)
	var outside int
	var outsideQty float64
	for _, f := range st.in.Forecast {
		day := idx.Horizon.Offset(f.Date)
		if f.Quantity <= 0 {
			continue
		}
		if !idx.Horizon.Contains(day) {
			outside++
			outsideQty += f.Quantity
			continue
		}
		totals[DemandPoint{Node: f.Node, Product: f.Product, Day: day}] += f.Quantity
	}
	if outside > 0 {
		st.warn("%d forecast entries outside the horizon ignored (%g units)", outside, outsideQty)
	}
	points := make([]DemandPoint, 0, len(totals))
	for p := range totals {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return lessPoint(points[i], points[j]) })

	byNodeDay := make(map[DemandPoint][]int)
	for i, c := range idx.Inventory {
		k := DemandPoint{Node: c.Node, Product: c.Product, Day: c.Day}
		if _, wanted := totals[k]; wanted {
			byNodeDay[k] = append(byNodeDay[k], i)
		}
	}

	idx.DemandPoints = points
	idx.DemandQuantity = make([]float64, len(points))
	idx.PointCohorts = make([][]int, len(points))
	for pi, p := range points {
		idx.DemandQuantity[pi] = totals[p]
		node, ok := st.nodes[p.Node]
		if !ok {
			st.warn("forecast at unknown node %s ignored", p.Node)
			continue
		}
		consumable := node.ConsumableStates()
		for _, src := range byNodeDay[p] {
			c := idx.Inventory[src]
			if !containsState(consumable, c.State) || !st.life.consumable(c.Product, c.State, c.Cohort, c.Day) {
				continue
			}
			k := len(idx.Demand)
			idx.Demand = append(idx.Demand, DemandCohort{Node: c.Node, Product: c.Product, Cohort: c.Cohort, Day: c.Day, State: c.State})
			idx.Flows[src].Demand = append(idx.Flows[src].Demand, k)
			idx.PointCohorts[pi] = append(idx.PointCohorts[pi], k)
		}
		if len(idx.PointCohorts[pi]) == 0 {
			st.warn("demand %s/%s on %s cannot be served from any cohort", p.Node, p.Product, idx.Horizon.Date(p.Day).Format(entities.DateLayout))
		}
	}
}

func containsState(states []entities.State, s entities.State) bool {
	for _, x := range states {
		if x == s {
			return true
		}
	}
	return false
}

func lessStream(a, b Stream) bool {
	if a.Node != b.Node {
		return a.Node < b.Node
	}
	if a.Product != b.Product {
		return a.Product < b.Product
	}
	if a.State != b.State {
		return a.State < b.State
	}
	return a.Cohort < b.Cohort
}

func lessPoint(a, b DemandPoint) bool {
	if a.Node != b.Node {
		return a.Node < b.Node
	}
	if a.Product != b.Product {
		return a.Product < b.Product
	}
	return a.Day < b.Day
}

type queued struct {
	stream Stream
	day    int
}

// streamQueue orders pending streams by entry day, then by key
type streamQueue []queued

func (q streamQueue) Len() int { return len(q) }
func (q streamQueue) Less(i, j int) bool {
	if q[i].day != q[j].day {
		return q[i].day < q[j].day
	}
	return lessStream(q[i].stream, q[j].stream)
}
func (q streamQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *streamQueue) Push(x any)   { *q = append(*q, x.(queued)) }
func (q *streamQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
