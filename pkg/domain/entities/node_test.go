package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNode_Validation(t *testing.T) {
	valid, err := NewNode("MFG", Capabilities{CanManufacture: true, CanStore: true}, StorageBoth, 1400)
	if err != nil {
		t.Fatalf("Expected valid node creation to succeed: %v", err)
	}
	if valid.ProductionRate != 1400 {
		t.Errorf("Expected production rate 1400, got %g", valid.ProductionRate)
	}

	testCases := []struct {
		name        string
		id          NodeID
		caps        Capabilities
		rate        float64
		expectError string
	}{
		{"empty id", "", Capabilities{}, 0, "node id cannot be empty"},
		{"negative rate", "MFG", Capabilities{}, -1, "node MFG: production rate cannot be negative, got -1"},
		{"manufacturing without rate", "MFG", Capabilities{CanManufacture: true}, 0, "node MFG: manufacturing node requires a positive production rate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewNode(tc.id, tc.caps, StorageAmbient, tc.rate)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestNode_StateSupport(t *testing.T) {
	testCases := []struct {
		mode       StorageMode
		ambient    bool
		frozen     bool
		thawed     bool
		transition bool
		native     State
	}{
		{StorageAmbient, true, false, true, false, Ambient},
		{StorageFrozen, false, true, false, false, Frozen},
		{StorageBoth, true, true, true, true, Ambient},
	}

	for _, tc := range testCases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			n := Node{ID: "N", StorageMode: tc.mode}
			if n.Supports(Ambient) != tc.ambient {
				t.Errorf("ambient support: expected %v", tc.ambient)
			}
			if n.Supports(Frozen) != tc.frozen {
				t.Errorf("frozen support: expected %v", tc.frozen)
			}
			if n.Supports(Thawed) != tc.thawed {
				t.Errorf("thawed support: expected %v", tc.thawed)
			}
			if n.CanTransition() != tc.transition {
				t.Errorf("transition: expected %v", tc.transition)
			}
			if n.ProductionState() != tc.native {
				t.Errorf("production state: expected %s, got %s", tc.native, n.ProductionState())
			}
		})
	}
}

func TestRoute_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		origin      NodeID
		destination NodeID
		transit     float64
		state       State
		expectError string
	}{
		{"same endpoints", "A", "A", 1, Ambient, "route A->A: origin and destination must differ"},
		{"zero transit", "A", "B", 0, Ambient, "route A->B: transit time must be positive, got 0"},
		{"negative transit", "A", "B", -1, Ambient, "route A->B: transit time must be positive, got -1"},
		{"thawed transport", "A", "B", 1, Thawed, "route A->B: transport state must be ambient or frozen"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRoute(tc.origin, tc.destination, tc.transit, tc.state, decimal.NewFromInt(1))
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestRoute_TransitDayCount(t *testing.T) {
	testCases := []struct {
		transit  float64
		expected int
	}{
		{1, 1},
		{0.5, 1},
		{1.5, 2},
		{3, 3},
	}
	for _, tc := range testCases {
		r := Route{Origin: "A", Destination: "B", TransitDays: tc.transit}
		if got := r.TransitDayCount(); got != tc.expected {
			t.Errorf("transit %g: expected %d days, got %d", tc.transit, tc.expected, got)
		}
	}
}

func TestRoute_ArrivalState(t *testing.T) {
	ambientOnly := Node{ID: "STORE", StorageMode: StorageAmbient}
	frozenOnly := Node{ID: "FREEZER", StorageMode: StorageFrozen}
	both := Node{ID: "HUB", StorageMode: StorageBoth}

	frozenRoute := Route{Origin: "X", Destination: "Y", TransitDays: 1, TransportState: Frozen}
	ambientRoute := Route{Origin: "X", Destination: "Y", TransitDays: 1, TransportState: Ambient}

	testCases := []struct {
		name      string
		route     Route
		departure State
		dest      Node
		expected  State
		ok        bool
	}{
		{"frozen into freezer", frozenRoute, Frozen, frozenOnly, Frozen, true},
		{"frozen into ambient site thaws", frozenRoute, Frozen, ambientOnly, Thawed, true},
		{"frozen into dual site stays frozen", frozenRoute, Frozen, both, Frozen, true},
		{"ambient cannot board frozen truck", frozenRoute, Ambient, both, Ambient, false},
		{"ambient into store", ambientRoute, Ambient, ambientOnly, Ambient, true},
		{"ambient into freezer freezes", ambientRoute, Ambient, frozenOnly, Frozen, true},
		{"thawed stays thawed", ambientRoute, Thawed, both, Thawed, true},
		{"thawed cannot enter freezer", ambientRoute, Thawed, frozenOnly, Thawed, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.route.ArrivalState(tc.departure, tc.dest)
			if ok != tc.ok {
				t.Fatalf("Expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && got != tc.expected {
				t.Errorf("Expected arrival state %s, got %s", tc.expected, got)
			}
		})
	}
}
