package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/orchestration"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

var start = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func sampleResult() *dto.PlanningResult {
	d := func(n int) time.Time { return start.AddDate(0, 0, n) }
	return &dto.PlanningResult{
		RunID: "run-1",
		Start: d(0),
		End:   d(6),
		Solve: dto.SolveInfo{Status: solver.StatusOptimal, Backend: "gonum", SolveTime: 120 * time.Millisecond},
		Production: []dto.ProductionEntry{
			{Node: "MFG", Product: "BREAD", Date: d(5), State: entities.Ambient, Quantity: 1000},
		},
		Shipments: []dto.ShipmentEntry{
			{Origin: "MFG", Destination: "STORE", Product: "BREAD", CohortDate: d(5), DepartureDate: d(5), DeliveryDate: d(6),
				DepartureState: entities.Ambient, ArrivalState: entities.Ambient, ArrivalCohortDate: d(5), Quantity: 1000},
		},
		ShipmentTotals: []dto.ShipmentTotal{
			{Origin: "MFG", Destination: "STORE", Product: "BREAD", DeliveryDate: d(6), Quantity: 1000},
		},
		Demand: []dto.DemandSummary{
			{Node: "STORE", Product: "BREAD", Date: d(6), Demand: 1200, Satisfied: 1000, Shortage: 200},
		},
		Labor: []dto.LaborEntry{
			{Node: "MFG", Date: d(5), Fixed: true, HoursUsed: 0.71, FixedHours: 0.71, PaidHours: 12, Cost: decimal.NewFromInt(240)},
		},
		Costs: dto.CostBreakdown{
			Production: decimal.NewFromInt(5000),
			Transport:  decimal.NewFromInt(1000),
			Shortage:   decimal.NewFromInt(2000),
			Total:      decimal.NewFromInt(8000),
		},
		Totals:   dto.Totals{Production: 1000, Shipped: 1000, Demand: 1200, Satisfied: 1000, Shortage: 200},
		Warnings: []dto.Warning{{Source: "formulation", Message: "no labor entry for MFG on 2025-06-08"}},
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(sampleResult(), Config{Format: "text", Writer: &buf}))

	out := buf.String()
	assert.Contains(t, out, "Status:      optimal (gonum)")
	assert.Contains(t, out, "8000.00")
	assert.Contains(t, out, "Fill Rate: 83.3%")
	assert.Contains(t, out, "Shortages:")
	assert.Contains(t, out, "[formulation] no labor entry")
}

func TestGenerate_TextWithoutPlan(t *testing.T) {
	result := &dto.PlanningResult{Start: start, End: start, Solve: dto.SolveInfo{Status: solver.StatusInfeasible, Message: "infeasible"}}
	var buf bytes.Buffer
	require.NoError(t, Generate(result, Config{Writer: &buf}))
	assert.Contains(t, buf.String(), "No plan available")
	assert.NotContains(t, buf.String(), "Costs:")
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(sampleResult(), Config{Format: "json", Writer: &buf}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "8000", decoded["costs"].(map[string]any)["total"])

	dir := t.TempDir()
	require.NoError(t, Generate(sampleResult(), Config{Format: "json", OutputDir: dir}))
	assert.FileExists(t, filepath.Join(dir, "plan.json"))
}

func TestGenerate_CSV(t *testing.T) {
	require.Error(t, Generate(sampleResult(), Config{Format: "csv"}))

	dir := t.TempDir()
	require.NoError(t, Generate(sampleResult(), Config{Format: "csv", OutputDir: dir}))

	for _, name := range []string{"production.csv", "shipments.csv", "inventory.csv", "demand.csv", "labor.csv", "trucks.csv", "costs.csv"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(filepath.Join(dir, "production.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "node,product,date,state,quantity,mixes", lines[0])
	assert.Equal(t, "MFG,BREAD,2025-06-07,ambient,1000,0", lines[1])

	costs, err := os.ReadFile(filepath.Join(dir, "costs.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(costs), "total,8000.00")
}

func TestGenerate_SVG(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(sampleResult(), Config{Format: "svg", OutputDir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, "schedule.svg"))
	require.NoError(t, err)
	svg := string(data)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, "make MFG / BREAD")
	assert.Contains(t, svg, "MFG → STORE / BREAD")
	assert.Equal(t, 2, strings.Count(svg, `class="plan-bar"`))
}

func TestGanttChart_Empty(t *testing.T) {
	result := &dto.PlanningResult{Start: start, End: start.AddDate(0, 0, 3)}
	chart := NewGanttChart(result)
	assert.Contains(t, chart.GenerateSVG(result), "No Production Planned")
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	assert.Error(t, Generate(sampleResult(), Config{Format: "xml"}))
}

func TestGenerateRolling(t *testing.T) {
	plan := sampleResult()
	rolling := &orchestration.RollingResult{
		Windows: []orchestration.Window{
			{Number: 1, Start: plan.Start, End: plan.End, CommitEnd: plan.End, Result: plan},
		},
		Totals: plan.Totals,
		Ending: &entities.InventorySnapshot{SnapshotDate: plan.End.AddDate(0, 0, 1)},
	}

	var buf bytes.Buffer
	require.NoError(t, GenerateRolling(rolling, Config{Writer: &buf}))
	assert.Contains(t, buf.String(), "Rolling Horizon (1 windows)")
	assert.Contains(t, buf.String(), "8000.00")

	dir := t.TempDir()
	require.NoError(t, GenerateRolling(rolling, Config{Format: "csv", OutputDir: dir}))
	assert.FileExists(t, filepath.Join(dir, "window_01", "production.csv"))
}
