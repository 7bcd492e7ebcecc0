package entities

import (
	"fmt"
	"time"
)

// TruckSchedule is a recurring departure on one lane
type TruckSchedule struct {
	ID             string         `json:"id" yaml:"id" validate:"required"`
	Origin         NodeID         `json:"origin" yaml:"origin" validate:"required"`
	Destination    NodeID         `json:"destination" yaml:"destination" validate:"required"`
	Weekdays       []time.Weekday `json:"weekdays" yaml:"weekdays" validate:"min=1,dive,gte=0,lte=6"`
	CapacityUnits  float64        `json:"capacity_units" yaml:"capacity_units" validate:"gt=0"`
	PalletCapacity int            `json:"pallet_capacity,omitempty" yaml:"pallet_capacity" validate:"gte=0"`
}

// NewTruckSchedule creates a validated TruckSchedule
func NewTruckSchedule(id string, origin, destination NodeID, weekdays []time.Weekday, capacityUnits float64, palletCapacity int) (*TruckSchedule, error) {
	if id == "" {
		return nil, fmt.Errorf("truck id cannot be empty")
	}
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("truck %s: lane endpoints cannot be empty", id)
	}
	if len(weekdays) == 0 {
		return nil, fmt.Errorf("truck %s: at least one weekday is required", id)
	}
	if capacityUnits <= 0 {
		return nil, fmt.Errorf("truck %s: capacity must be positive, got %g", id, capacityUnits)
	}
	if palletCapacity < 0 {
		return nil, fmt.Errorf("truck %s: pallet capacity cannot be negative", id)
	}

	return &TruckSchedule{
		ID:             id,
		Origin:         origin,
		Destination:    destination,
		Weekdays:       weekdays,
		CapacityUnits:  capacityUnits,
		PalletCapacity: palletCapacity,
	}, nil
}

// Lane returns the lane key the truck serves
func (t TruckSchedule) Lane() string {
	return string(t.Origin) + "->" + string(t.Destination)
}

// RunsOn reports whether the truck departs on the date
func (t TruckSchedule) RunsOn(date time.Time) bool {
	wd := date.Weekday()
	for _, d := range t.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}
