package csv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

const networkDir = "../../../../testdata/scenarios/network"

func date(s string) time.Time {
	d, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLoadDirectory_Network(t *testing.T) {
	data, err := NewLoader().LoadDirectory(networkDir)
	require.NoError(t, err)

	assert.Equal(t, "network", data.Manifest.Name)
	start, end, err := data.Manifest.Window()
	require.NoError(t, err)
	assert.Equal(t, date("2025-06-02"), start)
	assert.Equal(t, date("2025-06-11"), end)

	s := data.Scenario
	require.Len(t, s.Nodes, 3)
	mfg, ok := s.NodeByID("MFG")
	require.True(t, ok)
	assert.True(t, mfg.Capabilities.CanManufacture)
	assert.Equal(t, 1400.0, mfg.ProductionRate)
	assert.Equal(t, 0.5, mfg.ChangeoverHours)
	hub, ok := s.NodeByID("HUB")
	require.True(t, ok)
	assert.Equal(t, entities.StorageBoth, hub.StorageMode)

	require.Len(t, s.Routes, 2)
	assert.Equal(t, entities.Frozen, s.Routes[1].TransportState)
	assert.True(t, s.Routes[0].CostPerUnit.Equal(decimal.RequireFromString("0.30")))

	require.Len(t, s.Products, 2)
	bread, ok := s.ProductByID("BREAD")
	require.True(t, ok)
	assert.Equal(t, entities.ShelfLife{Ambient: 17, Frozen: 120, Thawed: 14}, bread.ShelfLife)
	assert.Equal(t, 320.0, bread.UnitsPerPallet)

	assert.Len(t, s.Forecast, 5)

	// labor days come back ordered; the commented Sunday is absent
	require.Len(t, s.LaborDays, 9)
	assert.Equal(t, date("2025-06-02"), s.LaborDays[0].Date)
	saturday := s.LaborDays[5]
	assert.False(t, saturday.IsFixed)
	assert.Equal(t, 4.0, saturday.MinimumHours)
	assert.True(t, saturday.NonFixedRate.Equal(decimal.NewFromInt(40)))

	assert.True(t, s.Costs.ProductionCostPerUnit.Equal(decimal.RequireFromString("1.2")))
	assert.True(t, s.Costs.WasteMultiplier.Equal(decimal.RequireFromString("1.5")))

	require.NotNil(t, s.Inventory)
	assert.Equal(t, date("2025-06-02"), s.Inventory.SnapshotDate)
	require.Len(t, s.Inventory.Entries, 1)
	assert.Equal(t, date("2025-05-30"), s.Inventory.Entries[0].CohortDate)
	require.Len(t, s.Inventory.InTransit, 1)
	assert.Equal(t, date("2025-06-03"), s.Inventory.InTransit[0].DeliveryDate)

	require.Len(t, s.Trucks, 1)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, s.Trucks[0].Weekdays)
	assert.Equal(t, 20, s.Trucks[0].PalletCapacity)
}

func TestLoadDirectory_OptionalTablesMissing(t *testing.T) {
	data, err := NewLoader().LoadDirectory("../../../../testdata/scenarios/lane")
	require.NoError(t, err)
	assert.Nil(t, data.Scenario.Inventory)
	assert.Empty(t, data.Scenario.Trucks)
}

func TestLoadDirectory_Errors(t *testing.T) {
	copyNetwork := func(t *testing.T) string {
		dir := t.TempDir()
		entries, err := os.ReadDir(networkDir)
		require.NoError(t, err)
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(networkDir, e.Name()))
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644))
		}
		return dir
	}

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{
			name:    "header mismatch",
			file:    RoutesFile,
			content: "from,to,days,state,cost\nMFG,HUB,1,ambient,1\n",
			want:    "routes CSV header mismatch",
		},
		{
			name:    "unknown state",
			file:    RoutesFile,
			content: "origin,destination,transit_days,transport_state,cost_per_unit\nMFG,HUB,1,chilled,1\n",
			want:    "routes CSV row 2",
		},
		{
			name:    "bad date",
			file:    ForecastFile,
			content: "node,product,date,quantity\nHUB,BREAD,06/05/2025,10\n",
			want:    "invalid date format",
		},
		{
			name:    "negative demand",
			file:    ForecastFile,
			content: "node,product,date,quantity\nHUB,BREAD,2025-06-05,-10\n",
			want:    "forecast CSV row 2",
		},
		{
			name:    "duplicate labor day",
			file:    LaborFile,
			content: "date,is_fixed,fixed_hours,overtime_hours,regular_rate,overtime_rate,non_fixed_rate,minimum_hours,capacity_hours\n2025-06-02,true,12,2,25,37.5,,,\n2025-06-02,true,12,2,25,37.5,,,\n",
			want:    "duplicate labor day",
		},
		{
			name:    "bad weekday",
			file:    TrucksFile,
			content: "id,origin,destination,weekdays,capacity_units,pallet_capacity\nT1,MFG,HUB,funday,100,\n",
			want:    "invalid weekday",
		},
		{
			name:    "manufacturing without rate",
			file:    NodesFile,
			content: "id,name,can_manufacture,has_demand,can_store,storage_mode,production_rate,startup_hours,shutdown_hours,changeover_hours\nMFG,Bakery,true,false,true,ambient,,,,\n",
			want:    "positive production rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := copyNetwork(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0o644))

			_, err := NewLoader().LoadDirectory(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDirectory_MissingRequiredTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("name: empty\n"), 0o644))

	_, err := NewLoader().LoadDirectory(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManifest_WindowRequired(t *testing.T) {
	_, _, err := Manifest{Name: "x"}.Window()
	assert.Error(t, err)
}
