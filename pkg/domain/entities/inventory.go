package entities

import (
	"fmt"
	"time"
)

// InventoryEntry is on-hand stock of one cohort at a node at snapshot time
type InventoryEntry struct {
	Node     NodeID    `json:"node" yaml:"node" validate:"required"`
	Product  ProductID `json:"product" yaml:"product" validate:"required"`
	State    State     `json:"state" yaml:"state"`
	Quantity float64   `json:"quantity" yaml:"quantity" validate:"gte=0"`
	// CohortDate is the production date (thaw date for thawed stock); zero means unknown
	CohortDate time.Time `json:"cohort_date,omitempty" yaml:"cohort_date"`
}

// InTransitEntry is a shipment already dispatched before the snapshot
type InTransitEntry struct {
	Destination  NodeID    `json:"destination" yaml:"destination" validate:"required"`
	Product      ProductID `json:"product" yaml:"product" validate:"required"`
	ArrivalState State     `json:"arrival_state" yaml:"arrival_state"`
	CohortDate   time.Time `json:"cohort_date" yaml:"cohort_date"`
	DeliveryDate time.Time `json:"delivery_date" yaml:"delivery_date"`
	Quantity     float64   `json:"quantity" yaml:"quantity" validate:"gte=0"`
}

// InventorySnapshot is the initial condition of a planning run
type InventorySnapshot struct {
	SnapshotDate time.Time        `json:"snapshot_date" yaml:"snapshot_date"`
	Entries      []InventoryEntry `json:"entries" yaml:"entries"`
	InTransit    []InTransitEntry `json:"in_transit,omitempty" yaml:"in_transit"`
}

// NewInventoryEntry creates a validated InventoryEntry
func NewInventoryEntry(node NodeID, product ProductID, state State, quantity float64, cohortDate time.Time) (*InventoryEntry, error) {
	if node == "" {
		return nil, fmt.Errorf("inventory node cannot be empty")
	}
	if product == "" {
		return nil, fmt.Errorf("inventory product cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative, got %g", quantity)
	}
	if !cohortDate.IsZero() {
		cohortDate = Day(cohortDate)
	}

	return &InventoryEntry{
		Node:       node,
		Product:    product,
		State:      state,
		Quantity:   quantity,
		CohortDate: cohortDate,
	}, nil
}

// ResolvedCohortDate returns the cohort date, falling back to the day before the
// snapshot when the source did not record one
func (e InventoryEntry) ResolvedCohortDate(snapshot time.Time) time.Time {
	if e.CohortDate.IsZero() {
		return AddDays(snapshot, -1)
	}
	return Day(e.CohortDate)
}

// IsEmpty reports whether the snapshot carries no stock
func (s *InventorySnapshot) IsEmpty() bool {
	return s == nil || (len(s.Entries) == 0 && len(s.InTransit) == 0)
}

// Total returns the sum of on-hand and in-transit quantities
func (s *InventorySnapshot) Total() float64 {
	if s == nil {
		return 0
	}
	var total float64
	for _, e := range s.Entries {
		total += e.Quantity
	}
	for _, t := range s.InTransit {
		total += t.Quantity
	}
	return total
}
