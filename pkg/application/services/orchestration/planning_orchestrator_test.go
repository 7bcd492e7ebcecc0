package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/planning"
	fixtures "github.com/sverzijl/planning-latest-sub007/pkg/application/services/testing"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/events"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/observability"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/solvers/gonumlp"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

func request(f *fixtures.Fixture, flags dto.PlanningFlags) dto.PlanningRequest {
	return dto.PlanningRequest{
		Scenario: f.Scenario,
		Start:    f.Start,
		End:      f.End,
		Flags:    flags,
		Solver:   dto.SolverSettings{TimeLimit: 30 * time.Second, GapTolerance: 1e-9},
	}
}

func newOrchestrator(store events.EventStore, metrics *observability.Metrics) *PlanningOrchestrator {
	return NewPlanningOrchestrator(planning.NewPlanner(gonumlp.New()), store, metrics, nil)
}

func dailyLane() *fixtures.Fixture {
	return fixtures.SingleLane(
		fixtures.WithHorizonDays(14),
		fixtures.WithDailyDemand("STORE", 100),
		fixtures.WithAmbientHolding("0.05"),
	)
}

func TestRollingConfig_Validate(t *testing.T) {
	assert.NoError(t, RollingConfig{WindowDays: 7, CommitDays: 7}.Validate())
	assert.Error(t, RollingConfig{WindowDays: 0, CommitDays: 1}.Validate())
	assert.Error(t, RollingConfig{WindowDays: 7, CommitDays: 0}.Validate())
	assert.Error(t, RollingConfig{WindowDays: 3, CommitDays: 4}.Validate())
}

func TestPlan_DailyWeekSolvesWithinTimeLimit(t *testing.T) {
	f := dailyLane()
	req := request(f, dto.PlanningFlags{AllowShortages: true})
	req.End = f.Start.AddDate(0, 0, 6)
	req.Solver.TimeLimit = 2 * time.Second

	started := time.Now()
	result, err := planning.NewPlanner(gonumlp.New()).Plan(context.Background(), req)
	require.NoError(t, err)

	assert.Less(t, time.Since(started), 10*time.Second)
	require.Equal(t, solver.StatusOptimal, result.Solve.Status, result.Solve.Message)
	assert.InDelta(t, 600, result.Totals.Satisfied, 1e-4)
	assert.InDelta(t, 0, result.Totals.Shortage, 1e-4)
}

func TestRunRolling_CommitsEveryDay(t *testing.T) {
	f := dailyLane()
	store := events.NewInMemoryEventStore(nil)
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	result, err := newOrchestrator(store, metrics).RunRolling(context.Background(),
		request(f, dto.PlanningFlags{AllowShortages: true}), RollingConfig{WindowDays: 7, CommitDays: 3})
	require.NoError(t, err)

	// windows start on days 0, 3, 6 and 9; the last reaches the horizon end and commits it all
	require.Len(t, result.Windows, 4)
	for i, want := range []int{0, 3, 6, 9} {
		assert.Equal(t, f.Start.AddDate(0, 0, want), result.Windows[i].Start)
	}
	assert.Equal(t, f.Start.AddDate(0, 0, 2), result.Windows[0].CommitEnd)
	assert.Equal(t, f.Start.AddDate(0, 0, 6), result.Windows[0].End)
	assert.Equal(t, f.End, result.Windows[3].CommitEnd)

	assert.Len(t, result.Demand, 13)
	assert.InDelta(t, 1300, result.Totals.Demand, 1e-6)
	assert.InDelta(t, 1300, result.Totals.Satisfied, 1e-4)
	assert.InDelta(t, 0, result.Totals.Shortage, 1e-4)
	assert.InDelta(t, 1300, result.Totals.Production, 1e-4)

	for _, p := range result.Production {
		assert.True(t, p.Date.Before(f.End), "nothing to ship for after the horizon end")
	}

	require.NotNil(t, result.Ending)
	assert.Equal(t, f.End.AddDate(0, 0, 1), result.Ending.SnapshotDate)

	stream, err := store.ReadEvents(result.StreamID, 0)
	require.NoError(t, err)
	require.Len(t, stream, 5)
	assert.Equal(t, events.WindowCommittedEvent, stream[0].Type())
	assert.Equal(t, events.RollingFinishedEvent, stream[4].Type())
	assert.Equal(t, 4, stream[4].Data().(events.RollingFinished).Windows)

	expected := `
# HELP planner_rolling_windows_total Rolling-horizon windows solved
# TYPE planner_rolling_windows_total counter
planner_rolling_windows_total 4
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "planner_rolling_windows_total"))
}

func TestRunRolling_SecondWindowStartsFromCarriedState(t *testing.T) {
	f := dailyLane()

	result, err := newOrchestrator(nil, nil).RunRolling(context.Background(),
		request(f, dto.PlanningFlags{AllowShortages: true}), RollingConfig{WindowDays: 7, CommitDays: 3})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.Windows), 2)

	// demand on day 3 is served by stock that left on day 2 in the first window
	second := result.Windows[1].Result
	for _, d := range second.Demand {
		if d.Date.Equal(f.Start.AddDate(0, 0, 3)) {
			assert.InDelta(t, 100, d.Satisfied, 1e-4)
		}
	}
	for _, p := range second.Production {
		assert.False(t, p.Date.Before(result.Windows[1].Start))
	}
}

func TestRunRolling_StopsOnUnsolvedWindow(t *testing.T) {
	// day-1 demand far beyond one shift of capacity, with shortages off
	f := fixtures.SingleLane(fixtures.WithHorizonDays(10), fixtures.WithDemand("STORE", 1, 100000))

	result, err := newOrchestrator(nil, nil).RunRolling(context.Background(),
		request(f, dto.PlanningFlags{}), RollingConfig{WindowDays: 5, CommitDays: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWindowUnsolved))
	require.Len(t, result.Windows, 1)
	assert.Equal(t, solver.StatusInfeasible, result.Windows[0].Result.Solve.Status)
}

func TestRunRolling_RejectsBadConfig(t *testing.T) {
	f := dailyLane()
	_, err := newOrchestrator(nil, nil).RunRolling(context.Background(),
		request(f, dto.PlanningFlags{}), RollingConfig{WindowDays: 2, CommitDays: 5})
	assert.Error(t, err)
}

func TestCarryForward(t *testing.T) {
	day := func(n int) time.Time { return fixtures.Start.AddDate(0, 0, n) }
	prev := &entities.InventorySnapshot{
		SnapshotDate: day(0),
		InTransit: []entities.InTransitEntry{
			{Destination: "STORE", Product: "BREAD", ArrivalState: entities.Ambient, CohortDate: day(-1), DeliveryDate: day(1), Quantity: 10},
			{Destination: "STORE", Product: "BREAD", ArrivalState: entities.Ambient, CohortDate: day(-1), DeliveryDate: day(5), Quantity: 20},
		},
	}
	plan := &dto.PlanningResult{
		Inventory: []dto.CohortInventory{
			{Node: "MFG", Product: "BREAD", CohortDate: day(1), Date: day(1), State: entities.Ambient, Quantity: 40},
			{Node: "MFG", Product: "BREAD", CohortDate: day(1), Date: day(2), State: entities.Ambient, Quantity: 30},
		},
		Shipments: []dto.ShipmentEntry{
			{Origin: "MFG", Destination: "STORE", Product: "BREAD", CohortDate: day(2), DepartureDate: day(2), DeliveryDate: day(3),
				DepartureState: entities.Frozen, ArrivalState: entities.Thawed, ArrivalCohortDate: day(3), Quantity: 50},
			{Origin: "MFG", Destination: "STORE", Product: "BREAD", CohortDate: day(1), DepartureDate: day(1), DeliveryDate: day(2), Quantity: 60},
			{Origin: "MFG", Destination: "STORE", Product: "BREAD", CohortDate: day(3), DepartureDate: day(3), DeliveryDate: day(4), Quantity: 70},
		},
	}

	snap := CarryForward(prev, plan, day(2))

	assert.Equal(t, day(3), snap.SnapshotDate)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, 30.0, snap.Entries[0].Quantity)
	assert.Equal(t, day(1), snap.Entries[0].CohortDate)

	require.Len(t, snap.InTransit, 2)
	assert.Equal(t, 20.0, snap.InTransit[0].Quantity)
	assert.Equal(t, 50.0, snap.InTransit[1].Quantity)
	assert.Equal(t, entities.Thawed, snap.InTransit[1].ArrivalState)
	assert.Equal(t, day(3), snap.InTransit[1].CohortDate)
	assert.InDelta(t, 100, snap.Total(), 1e-9)
}

func TestRunBatch(t *testing.T) {
	bad := request(fixtures.SingleLane(), dto.PlanningFlags{})
	bad.End = bad.Start.AddDate(0, 0, -1)

	jobs := []BatchJob{
		{Name: "lane", Request: request(fixtures.SingleLane(), dto.PlanningFlags{AllowShortages: true})},
		{Name: "frozen", Request: request(fixtures.FrozenChain(), dto.PlanningFlags{AllowShortages: true})},
		{Name: "bad", Request: bad},
	}

	outcomes, err := newOrchestrator(nil, nil).RunBatch(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for _, o := range outcomes[:2] {
		require.NoError(t, o.Err, o.Name)
		assert.Equal(t, solver.StatusOptimal, o.Result.Solve.Status, o.Name)
	}
	assert.Equal(t, "lane", outcomes[0].Name)
	assert.Equal(t, "frozen", outcomes[1].Name)
	assert.Error(t, outcomes[2].Err)
	assert.NotEqual(t, outcomes[0].Result.RunID, outcomes[1].Result.RunID)
}

func TestRunBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []BatchJob{{Name: "lane", Request: request(fixtures.SingleLane(), dto.PlanningFlags{})}}
	_, err := newOrchestrator(nil, nil).RunBatch(ctx, jobs, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
