package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/repositories/memory"
)

// RegionalStart is the first day of the regional scenario (a Monday)
var RegionalStart = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// RegionalDays is the length of the regional planning window
const RegionalDays = 7

// BuildRegionalTestData builds a regional bakery network: one plant feeding
// an ambient hub and a frozen buffer, with the far store supplied frozen and
// thawing on arrival.
func BuildRegionalTestData() *memory.ScenarioStore {
	store := memory.NewScenarioStore()
	day := func(n int) time.Time { return RegionalStart.AddDate(0, 0, n) }

	nodes := []*entities.Node{
		mustNode("MFG", "Plant", entities.Capabilities{CanManufacture: true, CanStore: true}, entities.StorageAmbient, 1400),
		mustNode("HUB", "Metro Hub", entities.Capabilities{CanStore: true}, entities.StorageAmbient, 0),
		mustNode("BUFFER", "Frozen Buffer", entities.Capabilities{CanStore: true}, entities.StorageFrozen, 0),
		mustNode("CITY1", "City Store 1", entities.Capabilities{HasDemand: true, CanStore: true}, entities.StorageAmbient, 0),
		mustNode("CITY2", "City Store 2", entities.Capabilities{HasDemand: true, CanStore: true}, entities.StorageAmbient, 0),
		mustNode("REMOTE", "Remote Store", entities.Capabilities{HasDemand: true, CanStore: true}, entities.StorageAmbient, 0),
	}
	nodes[0].StartupHours = 0.5
	nodes[0].ShutdownHours = 0.25
	nodes[0].ChangeoverHours = 0.5
	if err := store.Network.LoadNodes(nodes); err != nil {
		panic(err)
	}

	routes := []*entities.Route{
		mustRoute("MFG", "HUB", 1, entities.Ambient, "0.20"),
		mustRoute("MFG", "BUFFER", 1, entities.Ambient, "0.25"),
		mustRoute("HUB", "CITY1", 1, entities.Ambient, "0.30"),
		mustRoute("HUB", "CITY2", 1, entities.Ambient, "0.35"),
		mustRoute("BUFFER", "REMOTE", 2, entities.Frozen, "0.60"),
	}
	if err := store.Network.LoadRoutes(routes); err != nil {
		panic(err)
	}

	bread := mustProduct("WHITE", "White Loaf", entities.ShelfLife{Ambient: 17, Frozen: 120, Thawed: 14}, 7)
	bread.UnitsPerPallet = 320
	rolls := mustProduct("ROLLS", "Dinner Rolls", entities.ShelfLife{Ambient: 10, Frozen: 90, Thawed: 7}, 3)
	rolls.UnitsPerPallet = 480
	if err := store.Products.LoadProducts([]*entities.Product{bread, rolls}); err != nil {
		panic(err)
	}

	demand := []struct {
		node    string
		product string
		day     int
		qty     float64
	}{
		{"CITY1", "WHITE", 3, 400},
		{"CITY1", "WHITE", 5, 450},
		{"CITY1", "ROLLS", 4, 200},
		{"CITY2", "WHITE", 4, 300},
		{"CITY2", "ROLLS", 6, 250},
		{"REMOTE", "WHITE", 5, 500},
		{"REMOTE", "ROLLS", 6, 150},
	}
	var forecast []*entities.ForecastEntry
	for _, d := range demand {
		entry, err := entities.NewForecastEntry(entities.NodeID(d.node), entities.ProductID(d.product), day(d.day), d.qty)
		if err != nil {
			panic(err)
		}
		forecast = append(forecast, entry)
	}
	if err := store.Forecast.LoadForecast(forecast); err != nil {
		panic(err)
	}

	// Weekdays staffed, Saturday on demand, Sunday off the calendar
	var labor []*entities.LaborDay
	for i := 0; i < RegionalDays; i++ {
		var (
			ld  *entities.LaborDay
			err error
		)
		switch day(i).Weekday() {
		case time.Sunday:
			continue
		case time.Saturday:
			ld, err = entities.NewNonFixedLaborDay(day(i), decimal.NewFromInt(40), 4, 12)
		default:
			ld, err = entities.NewFixedLaborDay(day(i), 12, 2, decimal.NewFromInt(25), decimal.RequireFromString("37.5"))
		}
		if err != nil {
			panic(err)
		}
		labor = append(labor, ld)
	}
	if err := store.Labor.LoadLaborDays(labor); err != nil {
		panic(err)
	}

	costs := &entities.CostStructure{
		ProductionCostPerUnit:    decimal.RequireFromString("1.20"),
		ShortagePenaltyPerUnit:   decimal.NewFromInt(50),
		WasteMultiplier:          decimal.RequireFromString("1.5"),
		StorageAmbientPerUnitDay: decimal.RequireFromString("0.02"),
		StorageFrozenPerUnitDay:  decimal.RequireFromString("0.01"),
	}
	if err := store.Costs.LoadCostStructure(costs); err != nil {
		panic(err)
	}

	opening, err := entities.NewInventoryEntry("HUB", "WHITE", entities.Ambient, 150, day(-2))
	if err != nil {
		panic(err)
	}
	snapshot := &entities.InventorySnapshot{
		SnapshotDate: RegionalStart,
		Entries:      []entities.InventoryEntry{*opening},
	}
	if err := store.Inventory.LoadSnapshot(snapshot); err != nil {
		panic(err)
	}

	return store
}

func mustNode(id, name string, caps entities.Capabilities, mode entities.StorageMode, rate float64) *entities.Node {
	node, err := entities.NewNode(entities.NodeID(id), caps, mode, rate)
	if err != nil {
		panic(err)
	}
	node.Name = name
	return node
}

func mustRoute(origin, destination string, transit float64, state entities.State, cost string) *entities.Route {
	route, err := entities.NewRoute(entities.NodeID(origin), entities.NodeID(destination), transit, state, decimal.RequireFromString(cost))
	if err != nil {
		panic(err)
	}
	return route
}

func mustProduct(id, name string, life entities.ShelfLife, minDays int) *entities.Product {
	product, err := entities.NewProduct(entities.ProductID(id), life, minDays)
	if err != nil {
		panic(err)
	}
	product.Name = name
	return product
}
