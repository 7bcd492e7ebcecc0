package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

func validScenario() *entities.Scenario {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return &entities.Scenario{
		Nodes: []*entities.Node{
			{ID: "MFG", Capabilities: entities.Capabilities{CanManufacture: true, CanStore: true}, StorageMode: entities.StorageAmbient, ProductionRate: 1400},
			{ID: "STORE", Capabilities: entities.Capabilities{HasDemand: true, CanStore: true}, StorageMode: entities.StorageAmbient},
		},
		Routes: []*entities.Route{
			{Origin: "MFG", Destination: "STORE", TransitDays: 1, TransportState: entities.Ambient, CostPerUnit: decimal.NewFromInt(1)},
		},
		Products: []*entities.Product{
			{ID: "BREAD", ShelfLife: entities.ShelfLife{Ambient: 17, Frozen: 120, Thawed: 14}, MinAcceptableDays: 7},
		},
		Forecast: []*entities.ForecastEntry{
			{Node: "STORE", Product: "BREAD", Date: day.AddDate(0, 0, 6), Quantity: 1000},
		},
		Costs: entities.CostStructure{ProductionCostPerUnit: decimal.NewFromInt(5)},
	}
}

func TestScenarioValidator_ValidScenario(t *testing.T) {
	result := NewScenarioValidator().Validate(validScenario())

	assert.NoError(t, result.Err())
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.UnreachableDemandNodes)
}

func TestScenarioValidator_InputErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(s *entities.Scenario)
		entity string
		id     string
	}{
		{
			name:   "non-positive transit",
			mutate: func(s *entities.Scenario) { s.Routes[0].TransitDays = 0 },
			entity: "route",
			id:     "MFG->STORE",
		},
		{
			name: "unknown route destination",
			mutate: func(s *entities.Scenario) {
				s.Routes = append(s.Routes, &entities.Route{Origin: "MFG", Destination: "NOWHERE", TransitDays: 1})
			},
			entity: "route",
			id:     "MFG->NOWHERE",
		},
		{
			name:   "duplicate node",
			mutate: func(s *entities.Scenario) { s.Nodes = append(s.Nodes, &entities.Node{ID: "STORE"}) },
			entity: "node",
			id:     "STORE",
		},
		{
			name:   "forecast at node without demand",
			mutate: func(s *entities.Scenario) { s.Forecast[0].Node = "MFG" },
			entity: "forecast",
			id:     "MFG/BREAD/2025-06-08",
		},
		{
			name: "inventory in unsupported state",
			mutate: func(s *entities.Scenario) {
				s.Inventory = &entities.InventorySnapshot{
					SnapshotDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
					Entries:      []entities.InventoryEntry{{Node: "STORE", Product: "BREAD", State: entities.Frozen, Quantity: 10}},
				}
			},
			entity: "inventory",
			id:     "STORE/BREAD/frozen",
		},
		{
			name: "truck without route",
			mutate: func(s *entities.Scenario) {
				s.Trucks = []*entities.TruckSchedule{{ID: "T1", Origin: "STORE", Destination: "MFG", Weekdays: []time.Weekday{time.Monday}, CapacityUnits: 100}}
			},
			entity: "truck",
			id:     "T1",
		},
		{
			name:   "negative cost",
			mutate: func(s *entities.Scenario) { s.Costs.ShortagePenaltyPerUnit = decimal.NewFromInt(-1) },
			entity: "costs",
			id:     "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validScenario()
			tc.mutate(s)

			result := NewScenarioValidator().Validate(s)
			err := result.Err()
			require.Error(t, err)

			found := false
			for _, e := range result.Errors {
				if e.Entity == tc.entity && e.ID == tc.id {
					found = true
				}
			}
			assert.True(t, found, "expected %s %q in %v", tc.entity, tc.id, err)

			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestScenarioValidator_UnreachableDemand(t *testing.T) {
	s := validScenario()
	s.Nodes = append(s.Nodes, &entities.Node{ID: "ISLAND", Capabilities: entities.Capabilities{HasDemand: true}, StorageMode: entities.StorageAmbient})

	result := NewScenarioValidator().Validate(s)

	assert.NoError(t, result.Err())
	assert.Equal(t, []entities.NodeID{"ISLAND"}, result.UnreachableDemandNodes)
	assert.Len(t, result.Warnings, 1)
}
