package entities

import (
	"testing"
	"time"
)

func TestInventoryEntry_Validation(t *testing.T) {
	cohort := time.Date(2025, 3, 2, 15, 30, 0, 0, time.UTC)

	valid, err := NewInventoryEntry("HUB", "BREAD", Ambient, 120, cohort)
	if err != nil {
		t.Fatalf("Expected valid entry creation to succeed: %v", err)
	}
	if !valid.CohortDate.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected cohort date truncated to midnight, got %s", valid.CohortDate)
	}

	testCases := []struct {
		name        string
		node        NodeID
		product     ProductID
		quantity    float64
		expectError string
	}{
		{"empty node", "", "BREAD", 10, "inventory node cannot be empty"},
		{"empty product", "HUB", "", 10, "inventory product cannot be empty"},
		{"negative quantity", "HUB", "BREAD", -5, "quantity cannot be negative, got -5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewInventoryEntry(tc.node, tc.product, Ambient, tc.quantity, cohort)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestInventoryEntry_ResolvedCohortDate(t *testing.T) {
	snapshot := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	unknown := InventoryEntry{Node: "HUB", Product: "BREAD", Quantity: 5}
	if got := unknown.ResolvedCohortDate(snapshot); !got.Equal(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected day before snapshot, got %s", got)
	}

	known := InventoryEntry{Node: "HUB", Product: "BREAD", Quantity: 5, CohortDate: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)}
	if got := known.ResolvedCohortDate(snapshot); !got.Equal(known.CohortDate) {
		t.Errorf("Expected recorded cohort date, got %s", got)
	}
}

func TestInventorySnapshot_Total(t *testing.T) {
	var empty *InventorySnapshot
	if !empty.IsEmpty() {
		t.Error("Expected nil snapshot to be empty")
	}
	if empty.Total() != 0 {
		t.Errorf("Expected zero total, got %g", empty.Total())
	}

	snap := &InventorySnapshot{
		Entries:   []InventoryEntry{{Quantity: 10}, {Quantity: 15}},
		InTransit: []InTransitEntry{{Quantity: 5}},
	}
	if snap.IsEmpty() {
		t.Error("Expected snapshot with entries to be non-empty")
	}
	if snap.Total() != 30 {
		t.Errorf("Expected total 30, got %g", snap.Total())
	}
}
