package entities

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Route is a directed transport lane between two nodes
type Route struct {
	Origin         NodeID          `json:"origin" yaml:"origin" validate:"required"`
	Destination    NodeID          `json:"destination" yaml:"destination" validate:"required,nefield=Origin"`
	TransitDays    float64         `json:"transit_days" yaml:"transit_days" validate:"gt=0"`
	TransportState State           `json:"transport_state" yaml:"transport_state"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit" yaml:"cost_per_unit"`
}

// NewRoute creates a validated Route
func NewRoute(origin, destination NodeID, transitDays float64, transport State, costPerUnit decimal.Decimal) (*Route, error) {
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("route endpoints cannot be empty")
	}
	if origin == destination {
		return nil, fmt.Errorf("route %s->%s: origin and destination must differ", origin, destination)
	}
	if transitDays <= 0 || math.IsNaN(transitDays) {
		return nil, fmt.Errorf("route %s->%s: transit time must be positive, got %g", origin, destination, transitDays)
	}
	if transport == Thawed {
		return nil, fmt.Errorf("route %s->%s: transport state must be ambient or frozen", origin, destination)
	}
	if costPerUnit.IsNegative() {
		return nil, fmt.Errorf("route %s->%s: cost per unit cannot be negative, got %s", origin, destination, costPerUnit)
	}

	return &Route{
		Origin:         origin,
		Destination:    destination,
		TransitDays:    transitDays,
		TransportState: transport,
		CostPerUnit:    costPerUnit,
	}, nil
}

// TransitDayCount rounds the transit time up to the daily grid: a half-day
// transit still lands on the next day
func (r Route) TransitDayCount() int {
	return int(math.Ceil(r.TransitDays - 1e-9))
}

// Lane identifies the route by its endpoints
func (r Route) Lane() string {
	return string(r.Origin) + "->" + string(r.Destination)
}

// DepartureState is the state a cohort must be in to board this route for the
// given arrival state; ok is false when the combination cannot occur
func (r Route) DepartureState(arrival State) (State, bool) {
	if r.TransportState == Frozen {
		if arrival == Frozen || arrival == Thawed {
			return Frozen, true
		}
		return Ambient, false
	}
	switch arrival {
	case Ambient, Frozen:
		return Ambient, true
	case Thawed:
		return Thawed, true
	}
	return Ambient, false
}

// ArrivalState is the state a cohort departing in the given state lands in at
// the destination; ok is false when the destination cannot receive it
func (r Route) ArrivalState(departure State, destination Node) (State, bool) {
	if r.TransportState == Frozen {
		if departure != Frozen {
			return departure, false
		}
		if destination.Supports(Frozen) {
			return Frozen, true
		}
		// frozen goods delivered to an ambient-only site thaw on arrival
		return Thawed, destination.Supports(Thawed)
	}
	switch departure {
	case Ambient:
		if destination.Supports(Ambient) {
			return Ambient, true
		}
		return Frozen, destination.Supports(Frozen)
	case Thawed:
		// thawed product is never refrozen
		return Thawed, destination.Supports(Thawed)
	}
	return departure, false
}
