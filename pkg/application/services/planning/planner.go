// Package planning runs one planning invocation end to end: validate the
// scenario, build the cohort index, assemble the program, solve it and
// extract the plan. A Planner holds collaborators only; every call builds its
// own index and program.
package planning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/cohort"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/extraction"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/formulation"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/services"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/events"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/observability"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// Planner coordinates the planning phases around one solver backend
type Planner struct {
	backend   solver.Backend
	validator *services.ScenarioValidator
	builder   *cohort.Builder
	assembler *formulation.Assembler
	extractor *extraction.Extractor

	metrics *observability.Metrics
	tracer  trace.Tracer
	events  events.EventStore
	logger  *slog.Logger
}

// Option configures a Planner
type Option func(*Planner)

// WithLogger sets the logger shared by every phase
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// WithMetrics records solves and model sizes
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Planner) { p.metrics = m }
}

// WithTracer overrides the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(p *Planner) { p.tracer = t }
}

// WithEventStore records planning events per run
func WithEventStore(store events.EventStore) Option {
	return func(p *Planner) { p.events = store }
}

// NewPlanner creates a planner solving with backend
func NewPlanner(backend solver.Backend, opts ...Option) *Planner {
	p := &Planner{
		backend:   backend,
		validator: services.NewScenarioValidator(),
		logger:    slog.Default(),
		tracer:    observability.Tracer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.builder = cohort.NewBuilder(p.logger)
	p.assembler = formulation.NewAssembler(p.logger)
	p.extractor = extraction.NewExtractor(p.logger)
	return p
}

// Backend returns the solver backend name
func (p *Planner) Backend() string {
	if p.backend == nil {
		return ""
	}
	return p.backend.Name()
}

// Plan runs one planning invocation. Input errors, calendar gaps in strict
// mode and index defects are returned as errors; infeasible or timed-out
// solves are returned as a result carrying that status.
func (p *Planner) Plan(ctx context.Context, req dto.PlanningRequest) (*dto.PlanningResult, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	ctx, span := observability.StartPhase(ctx, p.tracer, "plan",
		attribute.String("run_id", runID),
		attribute.String("backend", p.Backend()))
	result, err := p.plan(ctx, runID, logger, req)
	observability.EndPhase(span, err)
	if result != nil {
		result.RunID = runID
	}
	return result, err
}

func (p *Planner) plan(ctx context.Context, runID string, logger *slog.Logger, req dto.PlanningRequest) (*dto.PlanningResult, error) {
	if err := req.Validate(); err != nil {
		return nil, p.fail(runID, "request", err)
	}
	p.record(runID, events.NewPlanningStartedEvent(runID, req.Start, req.End))

	// Step 1: Validate scenario data
	_, span := observability.StartPhase(ctx, p.tracer, "validate")
	validation := p.validator.Validate(req.Scenario)
	err := validation.Err()
	observability.EndPhase(span, err)
	if err != nil {
		return nil, p.fail(runID, "validate", fmt.Errorf("invalid scenario: %w", err))
	}

	// Step 2: Build the cohort index
	_, span = observability.StartPhase(ctx, p.tracer, "index")
	idx, err := p.buildIndex(req)
	observability.EndPhase(span, err)
	if err != nil {
		return nil, p.fail(runID, "index", err)
	}

	// Step 3: Assemble constraints and objective
	_, span = observability.StartPhase(ctx, p.tracer, "assemble")
	model, err := p.assemble(req, idx)
	observability.EndPhase(span, err)
	if err != nil {
		return nil, p.fail(runID, "assemble", err)
	}
	stats := model.Program.Stats()
	p.metrics.RecordModel(stats.Variables, stats.Rows, len(idx.Inventory))
	p.record(runID, events.NewModelBuiltEvent(runID, events.ModelBuilt{
		InventoryCohorts: len(idx.Inventory),
		ShipmentCohorts:  len(idx.Shipments),
		DemandCohorts:    len(idx.Demand),
		Variables:        stats.Variables,
		IntegerVariables: stats.IntegerVars,
		Rows:             stats.Rows,
		Warnings:         len(idx.Warnings) + len(model.Warnings),
	}))

	// Step 4: Solve
	solveCtx, span := observability.StartPhase(ctx, p.tracer, "solve",
		attribute.Int("variables", stats.Variables),
		attribute.Int("rows", stats.Rows))
	solved, err := solver.Solve(solveCtx, p.backend, model.Program, solverOptions(req.Solver))
	if err == nil {
		span.SetAttributes(attribute.String("status", string(solved.Status)))
	}
	observability.EndPhase(span, err)
	if err != nil {
		return nil, p.fail(runID, "solve", err)
	}
	p.metrics.RecordSolve(solved.Backend, string(solved.Status), solved.SolveTime.Seconds())
	p.record(runID, events.NewSolveFinishedEvent(runID, events.SolveFinished{
		Backend:   solved.Backend,
		Status:    solved.Status,
		Objective: solved.Objective,
		Gap:       solved.Gap,
		SolveTime: solved.SolveTime,
	}))
	logger.Info("solve finished",
		"status", solved.Status,
		"objective", solved.Objective,
		"solve_time", solved.SolveTime)

	// Step 5: Extract the plan
	_, span = observability.StartPhase(ctx, p.tracer, "extract")
	plan, err := p.extractor.Extract(model, solved, req.Scenario.Products)
	observability.EndPhase(span, err)
	if err != nil {
		return nil, p.fail(runID, "extract", err)
	}

	warnings := make([]dto.Warning, 0, len(validation.Warnings)+len(plan.Warnings))
	for _, w := range validation.Warnings {
		warnings = append(warnings, dto.Warning{Source: "validation", Message: w})
	}
	plan.Warnings = append(warnings, plan.Warnings...)
	for _, w := range plan.Warnings {
		logger.Warn("planning warning", "source", w.Source, "message", w.Message)
	}

	if plan.HasPlan() {
		p.record(runID, events.NewPlanExtractedEvent(runID, events.PlanExtracted{
			TotalCost:  plan.Costs.Total.String(),
			Production: plan.Totals.Production,
			Shortage:   plan.Totals.Shortage,
		}))
	}
	return plan, nil
}

func (p *Planner) buildIndex(req dto.PlanningRequest) (*cohort.Index, error) {
	horizon, err := cohort.NewHorizon(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	s := req.Scenario
	idx, err := p.builder.Build(cohort.Input{
		Nodes:    s.Nodes,
		Routes:   s.Routes,
		Products: s.Products,
		Horizon:  horizon,
		Initial:  s.Inventory,
		Forecast: s.Forecast,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build cohort index: %w", err)
	}

	products := make(map[entities.ProductID]*entities.Product, len(s.Products))
	for _, prod := range s.Products {
		products[prod.ID] = prod
	}
	if err := idx.Verify(products); err != nil {
		return nil, err
	}
	return idx, nil
}

func (p *Planner) assemble(req dto.PlanningRequest, idx *cohort.Index) (*formulation.Model, error) {
	s := req.Scenario
	calendar, err := entities.NewLaborCalendar(s.LaborDays)
	if err != nil {
		return nil, fmt.Errorf("failed to build labor calendar: %w", err)
	}
	return p.assembler.Assemble(formulation.Input{
		Index:    idx,
		Nodes:    s.Nodes,
		Routes:   s.Routes,
		Products: s.Products,
		Costs:    s.Costs,
		Calendar: calendar,
		Trucks:   s.Trucks,
		Options: formulation.Options{
			AllowShortages:   req.Flags.AllowShortages,
			EnforceShelfLife: req.Flags.EnforceShelfLife,
			BatchTracking:    req.Flags.BatchTracking,
			StrictCalendar:   req.Flags.StrictCalendar,
		},
	})
}

func (p *Planner) fail(runID, phase string, err error) error {
	p.metrics.RecordError(phase)
	p.record(runID, events.NewPlanningFailedEvent(runID, phase, err))
	p.logger.Error("planning failed", "run_id", runID, "phase", phase, "error", err)
	return err
}

func (p *Planner) record(runID string, event events.Event) {
	if p.events == nil {
		return
	}
	if err := p.events.AppendEvent(runID, event); err != nil {
		p.logger.Warn("failed to record planning event", "type", event.Type(), "error", err)
	}
}

// solverOptions passes the requested gap through as is; zero asks for a
// proven optimum
func solverOptions(s dto.SolverSettings) solver.Options {
	opts := solver.DefaultOptions()
	if s.TimeLimit > 0 {
		opts.TimeLimit = s.TimeLimit
	}
	opts.GapTolerance = s.GapTolerance
	return opts
}
