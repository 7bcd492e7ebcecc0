package memory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

var day0 = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func mustNode(t *testing.T, id string, caps entities.Capabilities, rate float64) *entities.Node {
	t.Helper()
	node, err := entities.NewNode(entities.NodeID(id), caps, entities.StorageAmbient, rate)
	require.NoError(t, err)
	return node
}

func mustRoute(t *testing.T, origin, destination string) *entities.Route {
	t.Helper()
	route, err := entities.NewRoute(entities.NodeID(origin), entities.NodeID(destination), 1, entities.Ambient, decimal.NewFromInt(1))
	require.NoError(t, err)
	return route
}

func TestNetworkRepository(t *testing.T) {
	repo := NewNetworkRepository(4)
	require.NoError(t, repo.LoadNodes([]*entities.Node{
		mustNode(t, "MFG", entities.Capabilities{CanManufacture: true, CanStore: true}, 1400),
		mustNode(t, "B", entities.Capabilities{HasDemand: true}, 0),
		mustNode(t, "A", entities.Capabilities{HasDemand: true}, 0),
	}))
	require.NoError(t, repo.LoadRoutes([]*entities.Route{
		mustRoute(t, "MFG", "B"),
		mustRoute(t, "MFG", "A"),
		mustRoute(t, "A", "B"),
	}))

	node, err := repo.GetNode("MFG")
	require.NoError(t, err)
	assert.Equal(t, 1400.0, node.ProductionRate)

	_, err = repo.GetNode("NOWHERE")
	assert.Error(t, err)

	from, err := repo.GetRoutesFrom("MFG")
	require.NoError(t, err)
	require.Len(t, from, 2)
	assert.Equal(t, entities.NodeID("A"), from[0].Destination)
	assert.Equal(t, entities.NodeID("B"), from[1].Destination)

	all, err := repo.GetAllRoutes()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	err = repo.LoadNodes([]*entities.Node{mustNode(t, "A", entities.Capabilities{}, 0)})
	assert.ErrorContains(t, err, "duplicate node: A")
}

func TestProductRepository_Replaces(t *testing.T) {
	repo := NewProductRepository(2)
	first, err := entities.NewProduct("BREAD", entities.ShelfLife{Ambient: 17}, 7)
	require.NoError(t, err)
	second, err := entities.NewProduct("BREAD", entities.ShelfLife{Ambient: 10}, 3)
	require.NoError(t, err)

	require.NoError(t, repo.LoadProducts([]*entities.Product{first, second}))

	all, err := repo.GetAllProducts()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 10, all[0].ShelfLife.Ambient)

	_, err = repo.GetProduct("CAKE")
	assert.Error(t, err)
}

func TestInventoryRepository(t *testing.T) {
	repo := NewInventoryRepository()

	snap, err := repo.GetSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, repo.LoadSnapshot(&entities.InventorySnapshot{
		SnapshotDate: day0,
		Entries:      []entities.InventoryEntry{{Node: "MFG", Product: "BREAD", Quantity: 100}},
	}))
	require.NoError(t, repo.LoadSnapshot(&entities.InventorySnapshot{
		SnapshotDate: day0,
		InTransit:    []entities.InTransitEntry{{Destination: "STORE", Product: "BREAD", Quantity: 50, DeliveryDate: day0.AddDate(0, 0, 1)}},
	}))

	snap, err = repo.GetSnapshot()
	require.NoError(t, err)
	assert.InDelta(t, 150, snap.Total(), 1e-9)

	// the returned snapshot is a copy
	snap.Entries[0].Quantity = 0
	again, err := repo.GetSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.Entries[0].Quantity)

	err = repo.LoadSnapshot(&entities.InventorySnapshot{SnapshotDate: day0.AddDate(0, 0, 1)})
	assert.Error(t, err)
}

func TestLaborRepository_RejectsDuplicateDates(t *testing.T) {
	repo := NewLaborRepository()
	d1, err := entities.NewFixedLaborDay(day0, 12, 2, decimal.NewFromInt(20), decimal.NewFromInt(30))
	require.NoError(t, err)
	d2, err := entities.NewNonFixedLaborDay(day0, decimal.NewFromInt(40), 4, 12)
	require.NoError(t, err)

	require.NoError(t, repo.LoadLaborDays([]*entities.LaborDay{d1}))
	cal, err := repo.GetCalendar()
	require.NoError(t, err)
	assert.Equal(t, 1, cal.Len())

	require.NoError(t, repo.LoadLaborDays([]*entities.LaborDay{d2}))
	_, err = repo.GetCalendar()
	assert.ErrorContains(t, err, "duplicate labor day")
}

func TestCostRepository_RejectsNegative(t *testing.T) {
	repo := NewCostRepository()
	err := repo.LoadCostStructure(&entities.CostStructure{ProductionCostPerUnit: decimal.NewFromInt(-1)})
	assert.Error(t, err)
}

func TestScenarioStore_RoundTrip(t *testing.T) {
	product, err := entities.NewProduct("BREAD", entities.ShelfLife{Ambient: 17, Frozen: 120, Thawed: 14}, 7)
	require.NoError(t, err)
	forecast, err := entities.NewForecastEntry("STORE", "BREAD", day0.AddDate(0, 0, 3), 500)
	require.NoError(t, err)
	labor, err := entities.NewFixedLaborDay(day0, 12, 2, decimal.NewFromInt(20), decimal.NewFromInt(30))
	require.NoError(t, err)
	truck, err := entities.NewTruckSchedule("T1", "MFG", "STORE", []time.Weekday{time.Monday}, 1000, 0)
	require.NoError(t, err)

	in := &entities.Scenario{
		Nodes: []*entities.Node{
			mustNode(t, "MFG", entities.Capabilities{CanManufacture: true, CanStore: true}, 1400),
			mustNode(t, "STORE", entities.Capabilities{HasDemand: true, CanStore: true}, 0),
		},
		Routes:    []*entities.Route{mustRoute(t, "MFG", "STORE")},
		Products:  []*entities.Product{product},
		Forecast:  []*entities.ForecastEntry{forecast},
		LaborDays: []*entities.LaborDay{labor},
		Costs:     entities.CostStructure{ProductionCostPerUnit: decimal.NewFromInt(5)},
		Trucks:    []*entities.TruckSchedule{truck},
	}

	store := NewScenarioStore()
	require.NoError(t, store.LoadScenario(in))

	out, err := store.Scenario()
	require.NoError(t, err)
	assert.Len(t, out.Nodes, 2)
	assert.Len(t, out.Routes, 1)
	assert.Len(t, out.Products, 1)
	assert.Len(t, out.Forecast, 1)
	assert.Len(t, out.LaborDays, 1)
	assert.Len(t, out.Trucks, 1)
	assert.Nil(t, out.Inventory)
	assert.True(t, out.Costs.ProductionCostPerUnit.Equal(decimal.NewFromInt(5)))
}
