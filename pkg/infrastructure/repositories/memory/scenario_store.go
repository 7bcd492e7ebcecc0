package memory

import (
	"fmt"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// ScenarioStore groups the repositories that together describe one scenario
type ScenarioStore struct {
	Network   *NetworkRepository
	Products  *ProductRepository
	Forecast  *ForecastRepository
	Labor     *LaborRepository
	Costs     *CostRepository
	Inventory *InventoryRepository
	Trucks    *TruckRepository
}

// NewScenarioStore creates an empty store
func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{
		Network:   NewNetworkRepository(16),
		Products:  NewProductRepository(16),
		Forecast:  NewForecastRepository(),
		Labor:     NewLaborRepository(),
		Costs:     NewCostRepository(),
		Inventory: NewInventoryRepository(),
		Trucks:    NewTruckRepository(),
	}
}

// LoadScenario loads every part of a scenario into the store
func (s *ScenarioStore) LoadScenario(scenario *entities.Scenario) error {
	if err := s.Network.LoadNodes(scenario.Nodes); err != nil {
		return fmt.Errorf("failed to load nodes: %w", err)
	}
	if err := s.Network.LoadRoutes(scenario.Routes); err != nil {
		return fmt.Errorf("failed to load routes: %w", err)
	}
	if err := s.Products.LoadProducts(scenario.Products); err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	if err := s.Forecast.LoadForecast(scenario.Forecast); err != nil {
		return fmt.Errorf("failed to load forecast: %w", err)
	}
	if err := s.Labor.LoadLaborDays(scenario.LaborDays); err != nil {
		return fmt.Errorf("failed to load labor calendar: %w", err)
	}
	if err := s.Costs.LoadCostStructure(&scenario.Costs); err != nil {
		return fmt.Errorf("failed to load costs: %w", err)
	}
	if err := s.Inventory.LoadSnapshot(scenario.Inventory); err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	if err := s.Trucks.LoadTruckSchedules(scenario.Trucks); err != nil {
		return fmt.Errorf("failed to load trucks: %w", err)
	}
	return nil
}

// Scenario assembles the stored data into a scenario
func (s *ScenarioStore) Scenario() (*entities.Scenario, error) {
	nodes, err := s.Network.GetAllNodes()
	if err != nil {
		return nil, err
	}
	routes, err := s.Network.GetAllRoutes()
	if err != nil {
		return nil, err
	}
	products, err := s.Products.GetAllProducts()
	if err != nil {
		return nil, err
	}
	forecast, err := s.Forecast.GetForecast()
	if err != nil {
		return nil, err
	}
	calendar, err := s.Labor.GetCalendar()
	if err != nil {
		return nil, fmt.Errorf("failed to build labor calendar: %w", err)
	}
	costs, err := s.Costs.GetCostStructure()
	if err != nil {
		return nil, err
	}
	snapshot, err := s.Inventory.GetSnapshot()
	if err != nil {
		return nil, err
	}
	trucks, err := s.Trucks.GetTruckSchedules()
	if err != nil {
		return nil, err
	}

	return &entities.Scenario{
		Nodes:     nodes,
		Routes:    routes,
		Products:  products,
		Forecast:  forecast,
		LaborDays: calendar.Days(),
		Costs:     *costs,
		Inventory: snapshot,
		Trucks:    trucks,
	}, nil
}
