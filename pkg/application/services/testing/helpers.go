package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// Start is the first day of every fixture horizon (a Monday)
var Start = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// Fixture is a scenario together with its planning window
type Fixture struct {
	Scenario *entities.Scenario
	Start    time.Time
	End      time.Time
}

// Option adjusts a fixture after it is built
type Option func(*Fixture)

// mustCreateNode is a helper for tests - panics on validation error
func mustCreateNode(id string, caps entities.Capabilities, mode entities.StorageMode, rate float64) *entities.Node {
	node, err := entities.NewNode(entities.NodeID(id), caps, mode, rate)
	if err != nil {
		panic(err)
	}
	return node
}

// mustCreateRoute is a helper for tests - panics on validation error
func mustCreateRoute(origin, destination string, transit float64, state entities.State, cost int64) *entities.Route {
	route, err := entities.NewRoute(entities.NodeID(origin), entities.NodeID(destination), transit, state, decimal.NewFromInt(cost))
	if err != nil {
		panic(err)
	}
	return route
}

// mustCreateProduct is a helper for tests - panics on validation error
func mustCreateProduct(id string, life entities.ShelfLife, minDays int) *entities.Product {
	product, err := entities.NewProduct(entities.ProductID(id), life, minDays)
	if err != nil {
		panic(err)
	}
	return product
}

// mustCreateForecast is a helper for tests - panics on validation error
func mustCreateForecast(node, product string, date time.Time, qty float64) *entities.ForecastEntry {
	entry, err := entities.NewForecastEntry(entities.NodeID(node), entities.ProductID(product), date, qty)
	if err != nil {
		panic(err)
	}
	return entry
}

// FixedCalendar staffs every day of the window with the same fixed shift
func FixedCalendar(start time.Time, days int, fixedHours, overtimeHours float64, regular, overtime int64) []*entities.LaborDay {
	result := make([]*entities.LaborDay, 0, days)
	for d := 0; d < days; d++ {
		day, err := entities.NewFixedLaborDay(start.AddDate(0, 0, d), fixedHours, overtimeHours, decimal.NewFromInt(regular), decimal.NewFromInt(overtime))
		if err != nil {
			panic(err)
		}
		result = append(result, day)
	}
	return result
}

// StandardProduct is an ambient product with frozen and thawed variants
func StandardProduct() *entities.Product {
	return mustCreateProduct("BREAD", entities.ShelfLife{Ambient: 17, Frozen: 120, Thawed: 14}, 7)
}

// SingleLane builds one manufacturing node shipping to one demand node over a
// one-day ambient route: rate 1,400 units/h, $5/unit production, $1/unit
// transport and 1,000 units of demand on day 7 of a 7-day horizon
func SingleLane(opts ...Option) *Fixture {
	end := Start.AddDate(0, 0, 6)
	f := &Fixture{
		Start: Start,
		End:   end,
		Scenario: &entities.Scenario{
			Nodes: []*entities.Node{
				mustCreateNode("MFG", entities.Capabilities{CanManufacture: true, CanStore: true}, entities.StorageAmbient, 1400),
				mustCreateNode("STORE", entities.Capabilities{HasDemand: true, CanStore: true}, entities.StorageAmbient, 0),
			},
			Routes: []*entities.Route{
				mustCreateRoute("MFG", "STORE", 1, entities.Ambient, 1),
			},
			Products: []*entities.Product{StandardProduct()},
			Forecast: []*entities.ForecastEntry{
				mustCreateForecast("STORE", "BREAD", end, 1000),
			},
			LaborDays: FixedCalendar(Start, 7, 12, 2, 20, 30),
			Costs: entities.CostStructure{
				ProductionCostPerUnit:  decimal.NewFromInt(5),
				ShortagePenaltyPerUnit: decimal.NewFromInt(10000),
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FrozenChain routes ambient production into a frozen-only buffer, then by
// frozen truck into an ambient-only store where it arrives thawed
func FrozenChain(opts ...Option) *Fixture {
	end := Start.AddDate(0, 0, 9)
	f := &Fixture{
		Start: Start,
		End:   end,
		Scenario: &entities.Scenario{
			Nodes: []*entities.Node{
				mustCreateNode("MFG", entities.Capabilities{CanManufacture: true, CanStore: true}, entities.StorageAmbient, 1400),
				mustCreateNode("FREEZER", entities.Capabilities{CanStore: true}, entities.StorageFrozen, 0),
				mustCreateNode("STORE", entities.Capabilities{HasDemand: true, CanStore: true}, entities.StorageAmbient, 0),
			},
			Routes: []*entities.Route{
				mustCreateRoute("MFG", "FREEZER", 1, entities.Ambient, 1),
				mustCreateRoute("FREEZER", "STORE", 2, entities.Frozen, 2),
			},
			Products: []*entities.Product{StandardProduct()},
			Forecast: []*entities.ForecastEntry{
				mustCreateForecast("STORE", "BREAD", end, 500),
			},
			LaborDays: FixedCalendar(Start, 10, 12, 2, 20, 30),
			Costs: entities.CostStructure{
				ProductionCostPerUnit:  decimal.NewFromInt(5),
				ShortagePenaltyPerUnit: decimal.NewFromInt(10000),
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DualModeHub builds a manufacturing site feeding a hub that can freeze and
// thaw, with demand at the hub late in a long horizon
func DualModeHub(opts ...Option) *Fixture {
	end := Start.AddDate(0, 0, 13)
	f := &Fixture{
		Start: Start,
		End:   end,
		Scenario: &entities.Scenario{
			Nodes: []*entities.Node{
				mustCreateNode("MFG", entities.Capabilities{CanManufacture: true, CanStore: true}, entities.StorageAmbient, 1000),
				mustCreateNode("HUB", entities.Capabilities{HasDemand: true, CanStore: true}, entities.StorageBoth, 0),
			},
			Routes: []*entities.Route{
				mustCreateRoute("MFG", "HUB", 1, entities.Ambient, 1),
			},
			Products: []*entities.Product{
				mustCreateProduct("BREAD", entities.ShelfLife{Ambient: 5, Frozen: 60, Thawed: 4}, 1),
			},
			Forecast: []*entities.ForecastEntry{
				mustCreateForecast("HUB", "BREAD", end, 300),
			},
			LaborDays: FixedCalendar(Start, 14, 12, 2, 20, 30),
			Costs: entities.CostStructure{
				ProductionCostPerUnit:  decimal.NewFromInt(5),
				ShortagePenaltyPerUnit: decimal.NewFromInt(10000),
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithAmbientHolding charges a per-unit-day ambient storage rate
func WithAmbientHolding(rate string) Option {
	return func(f *Fixture) {
		f.Scenario.Costs.StorageAmbientPerUnitDay = decimal.RequireFromString(rate)
	}
}

// WithLaborDays replaces the labor calendar
func WithLaborDays(days []*entities.LaborDay) Option {
	return func(f *Fixture) {
		f.Scenario.LaborDays = days
	}
}

// WithDemand replaces the forecast with one entry at the node on a day offset
func WithDemand(node string, day int, qty float64) Option {
	return func(f *Fixture) {
		f.Scenario.Forecast = []*entities.ForecastEntry{mustCreateForecast(node, "BREAD", f.Start.AddDate(0, 0, day), qty)}
	}
}

// WithInitialInventory adds on-hand stock recorded at the horizon start
func WithInitialInventory(node string, state entities.State, qty float64, cohortDaysBeforeStart int) Option {
	return func(f *Fixture) {
		if f.Scenario.Inventory == nil {
			f.Scenario.Inventory = &entities.InventorySnapshot{SnapshotDate: f.Start}
		}
		f.Scenario.Inventory.Entries = append(f.Scenario.Inventory.Entries, entities.InventoryEntry{
			Node:       entities.NodeID(node),
			Product:    "BREAD",
			State:      state,
			Quantity:   qty,
			CohortDate: f.Start.AddDate(0, 0, -cohortDaysBeforeStart),
		})
	}
}

// WithInTransit adds a shipment that left before the horizon
func WithInTransit(destination string, state entities.State, qty float64, deliveryDay, cohortDaysBeforeStart int) Option {
	return func(f *Fixture) {
		if f.Scenario.Inventory == nil {
			f.Scenario.Inventory = &entities.InventorySnapshot{SnapshotDate: f.Start}
		}
		f.Scenario.Inventory.InTransit = append(f.Scenario.Inventory.InTransit, entities.InTransitEntry{
			Destination:  entities.NodeID(destination),
			Product:      "BREAD",
			ArrivalState: state,
			CohortDate:   f.Start.AddDate(0, 0, -cohortDaysBeforeStart),
			DeliveryDate: f.Start.AddDate(0, 0, deliveryDay),
			Quantity:     qty,
		})
	}
}

// WithTransitDays changes the transit time of every route
func WithTransitDays(days float64) Option {
	return func(f *Fixture) {
		for _, r := range f.Scenario.Routes {
			r.TransitDays = days
		}
	}
}

// WithTruck schedules a truck on a lane
func WithTruck(id, origin, destination string, weekdays []time.Weekday, capacity float64, pallets int) Option {
	return func(f *Fixture) {
		truck, err := entities.NewTruckSchedule(id, entities.NodeID(origin), entities.NodeID(destination), weekdays, capacity, pallets)
		if err != nil {
			panic(err)
		}
		f.Scenario.Trucks = append(f.Scenario.Trucks, truck)
	}
}

// WithUnitsPerPallet sets the pallet size of every product
func WithUnitsPerPallet(units float64) Option {
	return func(f *Fixture) {
		for _, p := range f.Scenario.Products {
			p.UnitsPerPallet = units
		}
	}
}

// WithUnitsPerMix sets the batch size of every product
func WithUnitsPerMix(units float64) Option {
	return func(f *Fixture) {
		for _, p := range f.Scenario.Products {
			p.UnitsPerMix = units
		}
	}
}

// WithOverhead sets startup, shutdown and changeover hours at manufacturing nodes
func WithOverhead(startup, shutdown, changeover float64) Option {
	return func(f *Fixture) {
		for _, n := range f.Scenario.Nodes {
			if n.Capabilities.CanManufacture {
				n.StartupHours = startup
				n.ShutdownHours = shutdown
				n.ChangeoverHours = changeover
			}
		}
	}
}

// WithWasteMultiplier charges discarded units at a multiple of production cost
func WithWasteMultiplier(m string) Option {
	return func(f *Fixture) {
		f.Scenario.Costs.WasteMultiplier = decimal.RequireFromString(m)
	}
}

// WithHorizonDays stretches the planning window to n days and staffs every day
func WithHorizonDays(n int) Option {
	return func(f *Fixture) {
		f.End = f.Start.AddDate(0, 0, n-1)
		f.Scenario.LaborDays = FixedCalendar(f.Start, n, 12, 2, 20, 30)
	}
}

// WithDailyDemand replaces the forecast with qty at the node on every day from
// day 1 to the end of the window
func WithDailyDemand(node string, qty float64) Option {
	return func(f *Fixture) {
		f.Scenario.Forecast = nil
		for d := f.Start.AddDate(0, 0, 1); !d.After(f.End); d = d.AddDate(0, 0, 1) {
			f.Scenario.Forecast = append(f.Scenario.Forecast, mustCreateForecast(node, "BREAD", d, qty))
		}
	}
}
