package entities

import "fmt"

// ProductID represents a unique product identifier
type ProductID string

// ShelfLife holds the number of days a unit stays usable in each state
type ShelfLife struct {
	Ambient int `json:"ambient" yaml:"ambient" validate:"gte=0"`
	Frozen  int `json:"frozen" yaml:"frozen" validate:"gte=0"`
	// Thawed counts from the day the unit thaws
	Thawed int `json:"thawed" yaml:"thawed" validate:"gte=0"`
}

// For returns the shelf life in days for the given state
func (s ShelfLife) For(state State) int {
	switch state {
	case Frozen:
		return s.Frozen
	case Thawed:
		return s.Thawed
	default:
		return s.Ambient
	}
}

// Product represents a perishable product with its shelf-life and batching properties
type Product struct {
	ID                ProductID `json:"id" yaml:"id" validate:"required"`
	Name              string    `json:"name,omitempty" yaml:"name"`
	ShelfLife         ShelfLife `json:"shelf_life" yaml:"shelf_life"`
	MinAcceptableDays int       `json:"min_acceptable_days" yaml:"min_acceptable_days" validate:"gte=0"`
	UnitsPerMix       float64   `json:"units_per_mix,omitempty" yaml:"units_per_mix" validate:"gte=0"`
	UnitsPerPallet    float64   `json:"units_per_pallet,omitempty" yaml:"units_per_pallet" validate:"gte=0"`
}

// NewProduct creates a new product with validation
func NewProduct(id ProductID, shelfLife ShelfLife, minAcceptableDays int) (*Product, error) {
	if id == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if shelfLife.Ambient < 0 || shelfLife.Frozen < 0 || shelfLife.Thawed < 0 {
		return nil, fmt.Errorf("product %s: shelf life cannot be negative", id)
	}
	if minAcceptableDays < 0 {
		return nil, fmt.Errorf("product %s: minimum acceptable shelf life cannot be negative", id)
	}
	if minAcceptableDays > shelfLife.Ambient && minAcceptableDays > shelfLife.Thawed {
		return nil, fmt.Errorf("product %s: minimum acceptable shelf life %d exceeds every consumable shelf life", id, minAcceptableDays)
	}

	return &Product{
		ID:                id,
		ShelfLife:         shelfLife,
		MinAcceptableDays: minAcceptableDays,
	}, nil
}

// Alive reports whether a unit of the given age is still within shelf life
func (p Product) Alive(state State, age int) bool {
	return age >= 0 && age <= p.ShelfLife.For(state)
}

// Consumable reports whether a unit of the given age may still be sold
func (p Product) Consumable(state State, age int) bool {
	if state == Frozen {
		return false
	}
	return p.Alive(state, age) && p.ShelfLife.For(state)-age >= p.MinAcceptableDays
}

// HasMixes reports whether production is batched in whole mixes
func (p Product) HasMixes() bool {
	return p.UnitsPerMix > 0
}

// Palletized reports whether a pallet size is configured
func (p Product) Palletized() bool {
	return p.UnitsPerPallet > 0
}
