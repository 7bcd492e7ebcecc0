package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CostStructure holds the unit economics of the network
type CostStructure struct {
	ProductionCostPerUnit  decimal.Decimal `json:"production_cost_per_unit" yaml:"production_cost_per_unit"`
	ShortagePenaltyPerUnit decimal.Decimal `json:"shortage_penalty_per_unit" yaml:"shortage_penalty_per_unit"`
	// WasteMultiplier scales production cost for expired or stranded units
	WasteMultiplier decimal.Decimal `json:"waste_multiplier" yaml:"waste_multiplier"`

	StorageAmbientPerUnitDay   decimal.Decimal `json:"storage_ambient_per_unit_day" yaml:"storage_ambient_per_unit_day"`
	StorageFrozenPerUnitDay    decimal.Decimal `json:"storage_frozen_per_unit_day" yaml:"storage_frozen_per_unit_day"`
	StorageAmbientPerPalletDay decimal.Decimal `json:"storage_ambient_per_pallet_day" yaml:"storage_ambient_per_pallet_day"`
	StorageFrozenPerPalletDay  decimal.Decimal `json:"storage_frozen_per_pallet_day" yaml:"storage_frozen_per_pallet_day"`

	// TruckPalletCostPerDeparture is charged per pallet loaded on a scheduled truck
	TruckPalletCostPerDeparture decimal.Decimal `json:"truck_pallet_cost,omitempty" yaml:"truck_pallet_cost"`
}

// Validate rejects negative cost parameters
func (c CostStructure) Validate() error {
	fields := map[string]decimal.Decimal{
		"production_cost_per_unit":       c.ProductionCostPerUnit,
		"shortage_penalty_per_unit":      c.ShortagePenaltyPerUnit,
		"waste_multiplier":               c.WasteMultiplier,
		"storage_ambient_per_unit_day":   c.StorageAmbientPerUnitDay,
		"storage_frozen_per_unit_day":    c.StorageFrozenPerUnitDay,
		"storage_ambient_per_pallet_day": c.StorageAmbientPerPalletDay,
		"storage_frozen_per_pallet_day":  c.StorageFrozenPerPalletDay,
		"truck_pallet_cost":              c.TruckPalletCostPerDeparture,
	}
	for name, value := range fields {
		if value.IsNegative() {
			return fmt.Errorf("cost %s cannot be negative, got %s", name, value)
		}
	}
	return nil
}

// UnitStorageRate is the per-unit-day holding rate for a state
func (c CostStructure) UnitStorageRate(s State) decimal.Decimal {
	if s == Frozen {
		return c.StorageFrozenPerUnitDay
	}
	return c.StorageAmbientPerUnitDay
}

// PalletStorageRate is the per-pallet-day holding rate for a state
func (c CostStructure) PalletStorageRate(s State) decimal.Decimal {
	if s == Frozen {
		return c.StorageFrozenPerPalletDay
	}
	return c.StorageAmbientPerPalletDay
}

// UsesPalletStorage reports whether holding cost is charged per pallet in the state
func (c CostStructure) UsesPalletStorage(s State) bool {
	return c.PalletStorageRate(s).IsPositive()
}

// WasteCostPerUnit is the charge for one discarded unit
func (c CostStructure) WasteCostPerUnit() decimal.Decimal {
	return c.WasteMultiplier.Mul(c.ProductionCostPerUnit)
}
