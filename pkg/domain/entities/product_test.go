package entities

import "testing"

func TestProduct_Validation(t *testing.T) {
	life := ShelfLife{Ambient: 17, Frozen: 120, Thawed: 14}

	valid, err := NewProduct("BREAD", life, 7)
	if err != nil {
		t.Fatalf("Expected valid product creation to succeed: %v", err)
	}
	if valid.ShelfLife.For(Thawed) != 14 {
		t.Errorf("Expected thawed shelf life 14, got %d", valid.ShelfLife.For(Thawed))
	}

	testCases := []struct {
		name        string
		id          ProductID
		life        ShelfLife
		minDays     int
		expectError string
	}{
		{"empty id", "", life, 7, "product id cannot be empty"},
		{"negative shelf life", "BREAD", ShelfLife{Ambient: -1}, 0, "product BREAD: shelf life cannot be negative"},
		{"negative minimum", "BREAD", life, -1, "product BREAD: minimum acceptable shelf life cannot be negative"},
		{"unreachable minimum", "BREAD", life, 20, "product BREAD: minimum acceptable shelf life 20 exceeds every consumable shelf life"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProduct(tc.id, tc.life, tc.minDays)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestProduct_ShelfLifePredicate(t *testing.T) {
	p := Product{ID: "BREAD", ShelfLife: ShelfLife{Ambient: 17, Frozen: 120, Thawed: 14}, MinAcceptableDays: 7}

	testCases := []struct {
		name       string
		state      State
		age        int
		alive      bool
		consumable bool
	}{
		{"fresh ambient", Ambient, 0, true, true},
		{"last sellable ambient day", Ambient, 10, true, true},
		{"too old to sell", Ambient, 11, true, false},
		{"last alive ambient day", Ambient, 17, true, false},
		{"expired ambient", Ambient, 18, false, false},
		{"negative age", Ambient, -1, false, false},
		{"frozen never sold", Frozen, 5, true, false},
		{"thawed sellable", Thawed, 7, true, true},
		{"thawed too old", Thawed, 8, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Alive(tc.state, tc.age); got != tc.alive {
				t.Errorf("Alive: expected %v, got %v", tc.alive, got)
			}
			if got := p.Consumable(tc.state, tc.age); got != tc.consumable {
				t.Errorf("Consumable: expected %v, got %v", tc.consumable, got)
			}
		})
	}
}
