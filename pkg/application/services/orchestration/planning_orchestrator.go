// Package orchestration sequences planning runs: rolling-horizon windows that
// hand their committed ending state to the next window, and batches of
// independent scenarios solved side by side.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/events"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/observability"
)

// ErrWindowUnsolved stops a rolling run whose window returned no plan
var ErrWindowUnsolved = errors.New("rolling window has no plan")

// Planner is the single-run planner the orchestrator drives
type Planner interface {
	Plan(ctx context.Context, req dto.PlanningRequest) (*dto.PlanningResult, error)
}

// RollingConfig sizes the windows of a rolling run
type RollingConfig struct {
	WindowDays int
	CommitDays int
}

// Validate rejects windows that cannot make progress
func (c RollingConfig) Validate() error {
	if c.WindowDays <= 0 || c.CommitDays <= 0 {
		return fmt.Errorf("window and commit days must be positive, got %d and %d", c.WindowDays, c.CommitDays)
	}
	if c.CommitDays > c.WindowDays {
		return fmt.Errorf("commit days %d exceed window days %d", c.CommitDays, c.WindowDays)
	}
	return nil
}

// Window is one solved rolling-horizon window
type Window struct {
	Number    int
	Start     time.Time
	End       time.Time
	CommitEnd time.Time
	Result    *dto.PlanningResult
}

// RollingResult stitches the committed part of every window
type RollingResult struct {
	StreamID   string
	Windows    []Window
	Production []dto.ProductionEntry
	Shipments  []dto.ShipmentEntry
	Demand     []dto.DemandSummary
	Totals     dto.Totals
	// Ending is the state handed past the last committed day
	Ending *entities.InventorySnapshot
}

// PlanningOrchestrator coordinates sequential and parallel planning runs
type PlanningOrchestrator struct {
	planner Planner
	events  events.EventStore
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPlanningOrchestrator creates a new planning orchestrator
func NewPlanningOrchestrator(planner Planner, store events.EventStore, metrics *observability.Metrics, logger *slog.Logger) *PlanningOrchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanningOrchestrator{
		planner: planner,
		events:  store,
		metrics: metrics,
		logger:  logger,
	}
}

// RunRolling solves req window by window. Each window's initial condition is
// the previous window's ending cohort inventory and in-transit shipments on
// its last committed day.
func (o *PlanningOrchestrator) RunRolling(ctx context.Context, req dto.PlanningRequest, cfg RollingConfig) (*RollingResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &RollingResult{StreamID: "rolling-" + uuid.NewString()}
	end := entities.Day(req.End)
	snapshot := req.Scenario.Inventory

	for start, n := entities.Day(req.Start), 1; !start.After(end); n++ {
		windowEnd := minDate(entities.AddDays(start, cfg.WindowDays-1), end)
		commitEnd := minDate(entities.AddDays(start, cfg.CommitDays-1), end)
		if windowEnd.Equal(end) {
			commitEnd = end
		}

		// Step 1: Solve the window from the carried state
		scenario := *req.Scenario
		scenario.Inventory = snapshot
		windowReq := req
		windowReq.Scenario = &scenario
		windowReq.Start = start
		windowReq.End = windowEnd

		o.logger.Debug("solving rolling window", "window", n, "start", start, "end", windowEnd, "commit_end", commitEnd)
		plan, err := o.planner.Plan(ctx, windowReq)
		if err != nil {
			return result, fmt.Errorf("failed to plan window %d starting %s: %w", n, start.Format(entities.DateLayout), err)
		}
		o.metrics.RecordWindow()
		result.Windows = append(result.Windows, Window{Number: n, Start: start, End: windowEnd, CommitEnd: commitEnd, Result: plan})
		o.record(result.StreamID, events.NewWindowCommittedEvent(result.StreamID, events.WindowCommitted{
			Window:      n,
			Start:       start,
			CommitUntil: commitEnd,
			RunID:       plan.RunID,
			Status:      string(plan.Solve.Status),
		}))
		if !plan.HasPlan() {
			return result, fmt.Errorf("%w: window %d ended %s", ErrWindowUnsolved, n, plan.Solve.Status)
		}

		// Step 2: Keep the committed days
		result.commit(plan, commitEnd)

		// Step 3: Carry the committed ending state forward
		snapshot = CarryForward(snapshot, plan, commitEnd)
		result.Ending = snapshot
		start = entities.AddDays(commitEnd, 1)
	}

	o.record(result.StreamID, events.NewRollingFinishedEvent(result.StreamID, len(result.Windows)))
	o.logger.Info("rolling horizon finished",
		"windows", len(result.Windows),
		"production", result.Totals.Production,
		"shortage", result.Totals.Shortage)
	return result, nil
}

func (r *RollingResult) commit(plan *dto.PlanningResult, commitEnd time.Time) {
	for _, p := range plan.Production {
		if !p.Date.After(commitEnd) {
			r.Production = append(r.Production, p)
			r.Totals.Production += p.Quantity
		}
	}
	for _, s := range plan.Shipments {
		if !s.DepartureDate.After(commitEnd) {
			r.Shipments = append(r.Shipments, s)
			r.Totals.Shipped += s.Quantity
		}
	}
	for _, d := range plan.Demand {
		if !d.Date.After(commitEnd) {
			r.Demand = append(r.Demand, d)
			r.Totals.Demand += d.Demand
			r.Totals.Satisfied += d.Satisfied
			r.Totals.Shortage += d.Shortage
		}
	}
	r.Totals.EndInventory = 0
	for _, inv := range plan.InventoryOn(commitEnd) {
		r.Totals.EndInventory += inv.Quantity
	}
}

// CarryForward derives the initial condition of the day after commitEnd:
// cohorts held at the end of commitEnd, plus shipments departed by then that
// deliver later. In-transit stock of the previous snapshot still on the road
// is passed through unchanged.
func CarryForward(prev *entities.InventorySnapshot, plan *dto.PlanningResult, commitEnd time.Time) *entities.InventorySnapshot {
	commitEnd = entities.Day(commitEnd)
	snap := &entities.InventorySnapshot{SnapshotDate: entities.AddDays(commitEnd, 1)}
	if prev != nil {
		for _, t := range prev.InTransit {
			if entities.Day(t.DeliveryDate).After(commitEnd) {
				snap.InTransit = append(snap.InTransit, t)
			}
		}
	}
	for _, inv := range plan.InventoryOn(commitEnd) {
		snap.Entries = append(snap.Entries, entities.InventoryEntry{
			Node:       inv.Node,
			Product:    inv.Product,
			State:      inv.State,
			Quantity:   inv.Quantity,
			CohortDate: inv.CohortDate,
		})
	}
	for _, s := range plan.Shipments {
		if s.DepartureDate.After(commitEnd) || !s.DeliveryDate.After(commitEnd) {
			continue
		}
		snap.InTransit = append(snap.InTransit, entities.InTransitEntry{
			Destination:  s.Destination,
			Product:      s.Product,
			ArrivalState: s.ArrivalState,
			CohortDate:   s.ArrivalCohortDate,
			DeliveryDate: s.DeliveryDate,
			Quantity:     s.Quantity,
		})
	}
	return snap
}

// BatchJob is one independent scenario of a batch
type BatchJob struct {
	Name    string
	Request dto.PlanningRequest
}

// BatchOutcome is the result or error of one batch job
type BatchOutcome struct {
	Name   string
	Result *dto.PlanningResult
	Err    error
}

// RunBatch solves independent scenarios concurrently, at most parallelism at
// a time. Each job builds its own index and program. A failing job does not
// stop the others; only cancellation of ctx fails the batch.
func (o *PlanningOrchestrator) RunBatch(ctx context.Context, jobs []BatchJob, parallelism int) ([]BatchOutcome, error) {
	if parallelism <= 0 {
		parallelism = 1
	}
	outcomes := make([]BatchOutcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := o.planner.Plan(gctx, job.Request)
			outcomes[i] = BatchOutcome{Name: job.Name, Result: result, Err: err}
			if err != nil {
				o.logger.Warn("batch job failed", "job", job.Name, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, fmt.Errorf("batch cancelled: %w", err)
	}
	return outcomes, nil
}

func (o *PlanningOrchestrator) record(streamID string, event events.Event) {
	if o.events == nil {
		return
	}
	if err := o.events.AppendEvent(streamID, event); err != nil {
		o.logger.Warn("failed to record orchestration event", "type", event.Type(), "error", err)
	}
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
