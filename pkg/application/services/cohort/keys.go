package cohort

import (
	"fmt"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// Stream is every day of one cohort sitting at one node in one state. Cohort
// is the production day offset, or the thaw day for thawed stock.
type Stream struct {
	Node    entities.NodeID
	Product entities.ProductID
	Cohort  int
	State   entities.State
}

// At returns the inventory cohort of the stream on a day
func (s Stream) At(day int) InventoryCohort {
	return InventoryCohort{Node: s.Node, Product: s.Product, Cohort: s.Cohort, Day: day, State: s.State}
}

func (s Stream) String() string {
	return fmt.Sprintf("%s/%s/c%d/%s", s.Node, s.Product, s.Cohort, s.State)
}

// InventoryCohort is end-of-day stock of one cohort at a node
type InventoryCohort struct {
	Node    entities.NodeID
	Product entities.ProductID
	Cohort  int
	Day     int
	State   entities.State
}

// Stream drops the day
func (c InventoryCohort) Stream() Stream {
	return Stream{Node: c.Node, Product: c.Product, Cohort: c.Cohort, State: c.State}
}

// Age is the number of days since the cohort date
func (c InventoryCohort) Age() int {
	return c.Day - c.Cohort
}

func (c InventoryCohort) String() string {
	return fmt.Sprintf("%s/%s/c%d/d%d/%s", c.Node, c.Product, c.Cohort, c.Day, c.State)
}

// ShipmentCohort moves one origin cohort along a route, arriving on Delivery
type ShipmentCohort struct {
	Origin         entities.NodeID
	Destination    entities.NodeID
	Product        entities.ProductID
	Cohort         int
	Departure      int
	Delivery       int
	DepartureState entities.State
	ArrivalState   entities.State
	// ArrivalCohort differs from Cohort when frozen stock thaws on arrival
	ArrivalCohort int
}

// Source is the inventory cohort the shipment draws from
func (s ShipmentCohort) Source() InventoryCohort {
	return InventoryCohort{Node: s.Origin, Product: s.Product, Cohort: s.Cohort, Day: s.Departure, State: s.DepartureState}
}

// Target is the inventory cohort the shipment lands in
func (s ShipmentCohort) Target() InventoryCohort {
	return InventoryCohort{Node: s.Destination, Product: s.Product, Cohort: s.ArrivalCohort, Day: s.Delivery, State: s.ArrivalState}
}

// Lane identifies the route
func (s ShipmentCohort) Lane() string {
	return string(s.Origin) + "->" + string(s.Destination)
}

func (s ShipmentCohort) String() string {
	return fmt.Sprintf("%s/%s/c%d/d%d->d%d/%s->%s", s.Lane(), s.Product, s.Cohort, s.Departure, s.Delivery, s.DepartureState, s.ArrivalState)
}

// DemandCohort lets one inventory cohort serve demand on its day
type DemandCohort struct {
	Node    entities.NodeID
	Product entities.ProductID
	Cohort  int
	Day     int
	State   entities.State
}

// Source is the inventory cohort consumed
func (d DemandCohort) Source() InventoryCohort {
	return InventoryCohort{Node: d.Node, Product: d.Product, Cohort: d.Cohort, Day: d.Day, State: d.State}
}

// Point is the demand point served
func (d DemandCohort) Point() DemandPoint {
	return DemandPoint{Node: d.Node, Product: d.Product, Day: d.Day}
}

// DemandPoint is forecast demand at (node, product, day)
type DemandPoint struct {
	Node    entities.NodeID
	Product entities.ProductID
	Day     int
}

// TransitionKind distinguishes freezing from thawing
type TransitionKind int

const (
	Freeze TransitionKind = iota
	Thaw
)

// String method for TransitionKind enum
func (k TransitionKind) String() string {
	if k == Freeze {
		return "freeze"
	}
	return "thaw"
}

// Transition converts stock between states at a dual-mode node. Freezing keeps
// the cohort date; thawing starts a new cohort on the thaw day.
type Transition struct {
	Node       entities.NodeID
	Product    entities.ProductID
	Kind       TransitionKind
	FromCohort int
	ToCohort   int
	Day        int
}

// Source is the inventory cohort drained
func (t Transition) Source() InventoryCohort {
	from := entities.Ambient
	if t.Kind == Thaw {
		from = entities.Frozen
	}
	return InventoryCohort{Node: t.Node, Product: t.Product, Cohort: t.FromCohort, Day: t.Day, State: from}
}

// Target is the inventory cohort filled
func (t Transition) Target() InventoryCohort {
	to := entities.Frozen
	if t.Kind == Thaw {
		to = entities.Thawed
	}
	return InventoryCohort{Node: t.Node, Product: t.Product, Cohort: t.ToCohort, Day: t.Day, State: to}
}

// ProductionSlot is a (node, product, day) on which manufacturing may occur
type ProductionSlot struct {
	Node    entities.NodeID
	Product entities.ProductID
	Day     int
	State   entities.State
}

// Target is the inventory cohort fresh production enters
func (p ProductionSlot) Target() InventoryCohort {
	return InventoryCohort{Node: p.Node, Product: p.Product, Cohort: p.Day, Day: p.Day, State: p.State}
}
