package testing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/services"
	testdata "github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/testing"
)

func TestBuildRegionalTestData(t *testing.T) {
	store := testdata.BuildRegionalTestData()

	scenario, err := store.Scenario()
	require.NoError(t, err)
	assert.Len(t, scenario.Nodes, 6)
	assert.Len(t, scenario.Routes, 5)
	assert.Len(t, scenario.Products, 2)
	assert.Len(t, scenario.Forecast, 7)
	// Sunday is not staffed
	assert.Len(t, scenario.LaborDays, testdata.RegionalDays-1)
	require.NotNil(t, scenario.Inventory)
	assert.InDelta(t, 150, scenario.Inventory.Total(), 1e-9)

	fromPlant, err := store.Network.GetRoutesFrom("MFG")
	require.NoError(t, err)
	require.Len(t, fromPlant, 2)
	assert.Equal(t, entities.NodeID("BUFFER"), fromPlant[0].Destination)
	assert.Equal(t, entities.NodeID("HUB"), fromPlant[1].Destination)

	buffer, err := store.Network.GetNode("BUFFER")
	require.NoError(t, err)
	assert.Equal(t, entities.StorageFrozen, buffer.StorageMode)

	assert.NoError(t, services.NewScenarioValidator().Validate(scenario).Err())
}
