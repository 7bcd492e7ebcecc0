package cohort

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	fixtures "github.com/sverzijl/planning-latest-sub007/pkg/application/services/testing"
)

func build(t *testing.T, f *fixtures.Fixture) *Index {
	t.Helper()
	idx, err := NewBuilder(nil).Build(inputFor(t, f))
	require.NoError(t, err)
	return idx
}

func inputFor(t *testing.T, f *fixtures.Fixture) Input {
	t.Helper()
	h, err := NewHorizon(f.Start, f.End)
	require.NoError(t, err)
	return Input{
		Nodes:    f.Scenario.Nodes,
		Routes:   f.Scenario.Routes,
		Products: f.Scenario.Products,
		Horizon:  h,
		Initial:  f.Scenario.Inventory,
		Forecast: f.Scenario.Forecast,
	}
}

func TestBuild_SingleLaneCounts(t *testing.T) {
	idx := build(t, fixtures.SingleLane())

	stats := idx.Stats()
	assert.Equal(t, 7, idx.Horizon.Days)
	assert.Equal(t, 49, stats.Inventory, "28 cohorts at the plant, 21 at the store")
	assert.Equal(t, 21, stats.Shipments)
	assert.Equal(t, 7, stats.Production)
	assert.Equal(t, 1, stats.DemandPoints)
	assert.Equal(t, 6, stats.Demand, "one demand cohort per production day that can arrive by day 7")
	assert.Zero(t, stats.Transitions)
	assert.Empty(t, idx.Warnings)
}

func TestBuild_Idempotent(t *testing.T) {
	f := fixtures.DualModeHub(fixtures.WithInitialInventory("HUB", entities.Frozen, 100, 10))

	first := build(t, f)
	second := build(t, f)

	assert.Equal(t, first, second)
}

func TestBuild_DerivedSetsReferenceInventory(t *testing.T) {
	for name, f := range map[string]*fixtures.Fixture{
		"single lane":   fixtures.SingleLane(),
		"frozen chain":  fixtures.FrozenChain(),
		"dual mode hub": fixtures.DualModeHub(),
	} {
		t.Run(name, func(t *testing.T) {
			idx := build(t, f)
			products := map[entities.ProductID]*entities.Product{}
			for _, p := range f.Scenario.Products {
				products[p.ID] = p
			}

			for _, d := range idx.Demand {
				src := d.Source()
				require.True(t, idx.Has(src), "demand cohort without inventory cohort %s", src)
				assert.NotEqual(t, entities.Frozen, d.State)
			}
			for _, s := range idx.Shipments {
				assert.True(t, idx.Has(s.Source()), "shipment without departure cohort %s", s)
				assert.True(t, idx.Has(s.Target()), "shipment without arrival cohort %s", s)
				assert.GreaterOrEqual(t, s.Departure, 0)
			}
			for _, c := range idx.Inventory {
				p := products[c.Product]
				assert.LessOrEqual(t, c.Age(), p.ShelfLife.For(c.State), "cohort %s past shelf life", c)
			}
			assert.NoError(t, idx.Verify(products))
		})
	}
}

func TestBuild_FrozenIntoAmbientArrivesThawed(t *testing.T) {
	idx := build(t, fixtures.FrozenChain())

	var intoStore int
	for _, s := range idx.Shipments {
		switch s.Destination {
		case "STORE":
			intoStore++
			assert.Equal(t, entities.Frozen, s.DepartureState)
			assert.Equal(t, entities.Thawed, s.ArrivalState)
			assert.Equal(t, s.Delivery, s.ArrivalCohort, "thawed shelf life starts on the arrival date")
		case "FREEZER":
			assert.Equal(t, entities.Ambient, s.DepartureState)
			assert.Equal(t, entities.Frozen, s.ArrivalState)
			assert.Equal(t, s.Cohort, s.ArrivalCohort)
		}
	}
	assert.Positive(t, intoStore)

	for _, c := range idx.Inventory {
		if c.Node == "FREEZER" {
			assert.Equal(t, entities.Frozen, c.State)
		}
		if c.Node == "STORE" {
			assert.Equal(t, entities.Thawed, c.State)
		}
	}
	assert.Empty(t, idx.Transitions, "no node supports both states")
	require.NotEmpty(t, idx.Demand)
	for _, d := range idx.Demand {
		assert.Equal(t, entities.Thawed, d.State)
	}
}

func TestBuild_DualModeTransitions(t *testing.T) {
	idx := build(t, fixtures.DualModeHub())

	var freezes, thaws int
	for _, tr := range idx.Transitions {
		assert.Equal(t, entities.NodeID("HUB"), tr.Node)
		switch tr.Kind {
		case Freeze:
			freezes++
			assert.Equal(t, tr.FromCohort, tr.ToCohort)
		case Thaw:
			thaws++
			assert.Equal(t, tr.Day, tr.ToCohort, "thawing restarts the shelf-life clock")
		}
	}
	assert.Positive(t, freezes)
	assert.Positive(t, thaws)

	var thawedDemand int
	for _, d := range idx.Demand {
		switch d.State {
		case entities.Ambient:
			assert.GreaterOrEqual(t, d.Cohort, 9, "ambient stock older than 4 days is below minimum remaining life")
		case entities.Thawed:
			thawedDemand++
			assert.GreaterOrEqual(t, d.Cohort, 10)
		}
	}
	assert.Positive(t, thawedDemand)
}

func TestBuild_DepartureAttributedInsideHorizon(t *testing.T) {
	f := fixtures.SingleLane(
		fixtures.WithTransitDays(2),
		fixtures.WithDemand("STORE", 1, 100),
		fixtures.WithInTransit("STORE", entities.Ambient, 60, 1, 2),
	)
	idx := build(t, f)

	for _, s := range idx.Shipments {
		assert.GreaterOrEqual(t, s.Departure, 0, "shipment %s departs before the horizon", s)
		assert.GreaterOrEqual(t, s.Delivery, 2)
	}

	require.Len(t, idx.DemandPoints, 1)
	cohorts := idx.PointCohorts[0]
	require.Len(t, cohorts, 1, "only the in-transit delivery can serve day 1")
	d := idx.Demand[cohorts[0]]
	assert.Equal(t, -2, d.Cohort)

	pos, ok := idx.Position(d.Source())
	require.True(t, ok)
	assert.Equal(t, 60.0, idx.Scheduled[pos])
}

func TestBuild_InitialInventory(t *testing.T) {
	f := fixtures.SingleLane(
		fixtures.WithInitialInventory("STORE", entities.Ambient, 50, 3),
		fixtures.WithInitialInventory("STORE", entities.Ambient, 40, 20),
	)
	idx := build(t, f)

	pos, ok := idx.Position(InventoryCohort{Node: "STORE", Product: "BREAD", Cohort: -3, Day: 0, State: entities.Ambient})
	require.True(t, ok)
	assert.Equal(t, 50.0, idx.Initial[pos])
	assert.Equal(t, -1, idx.Flows[pos].Previous)
	assert.True(t, idx.Has(InventoryCohort{Node: "STORE", Product: "BREAD", Cohort: -3, Day: 6, State: entities.Ambient}))

	assert.False(t, idx.Has(InventoryCohort{Node: "STORE", Product: "BREAD", Cohort: -20, Day: 0, State: entities.Ambient}))
	require.Len(t, idx.Warnings, 1)
	assert.True(t, strings.Contains(idx.Warnings[0], "expired"))

	var total float64
	for _, q := range idx.Initial {
		total += q
	}
	assert.Equal(t, 50.0, total)
}

func TestBuild_WarnsOnForecastOutsideHorizon(t *testing.T) {
	f := fixtures.SingleLane()
	in := inputFor(t, f)
	h, err := NewHorizon(f.Start, f.End.AddDate(0, 0, -1))
	require.NoError(t, err)
	in.Horizon = h

	idx, err := NewBuilder(nil).Build(in)
	require.NoError(t, err)

	assert.Empty(t, idx.DemandPoints)
	require.Len(t, idx.Warnings, 1)
	assert.Contains(t, idx.Warnings[0], "1 forecast entries outside the horizon ignored (1000 units)")
}

func TestBuild_NoSupplyMeansNoCohorts(t *testing.T) {
	f := fixtures.SingleLane()
	f.Scenario.Nodes[0].Capabilities.CanManufacture = false
	idx := build(t, f)

	assert.Empty(t, idx.Inventory)
	assert.Empty(t, idx.Demand)
	require.Len(t, idx.DemandPoints, 1)
	assert.Empty(t, idx.PointCohorts[0])
	assert.Len(t, idx.Warnings, 1)
}

func TestBuild_RejectsNonPositiveTransit(t *testing.T) {
	f := fixtures.SingleLane()
	f.Scenario.Routes[0].TransitDays = 0

	_, err := NewBuilder(nil).Build(inputFor(t, f))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "transit time must be positive")
}

func TestHorizon(t *testing.T) {
	h, err := NewHorizon(fixtures.Start, fixtures.Start.AddDate(0, 0, 6))
	require.NoError(t, err)

	assert.Equal(t, 7, h.Days)
	assert.Equal(t, 6, h.Last())
	assert.Equal(t, -1, h.Offset(fixtures.Start.AddDate(0, 0, -1)))
	assert.True(t, h.Date(3).Equal(fixtures.Start.AddDate(0, 0, 3)))
	assert.False(t, h.Contains(7))

	_, err = NewHorizon(fixtures.Start, fixtures.Start.AddDate(0, 0, -1))
	assert.Error(t, err)
}
