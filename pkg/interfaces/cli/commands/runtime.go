package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sverzijl/planning-latest-sub007/pkg/application/dto"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/orchestration"
	"github.com/sverzijl/planning-latest-sub007/pkg/application/services/planning"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/config"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/events"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/observability"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/repositories/csv"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/solvers/gonumlp"
	"github.com/sverzijl/planning-latest-sub007/pkg/infrastructure/solvers/highs"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// Runtime wires configuration into the planner and its collaborators. One
// runtime serves every planning run of a command invocation.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Events   *events.InMemoryEventStore

	shutdownTracing func(context.Context) error
}

// NewRuntime builds a runtime that logs to logOut (os.Stderr when nil)
func NewRuntime(cfg *config.Config, logOut io.Writer) (*Runtime, error) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if logOut == nil {
		logOut = os.Stderr
	}
	logger, err := observability.NewLogger(logOut, cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config: cfg,
		Logger: logger,
		Events: events.NewInMemoryEventStore(logger),
	}
	if cfg.Metrics.Enabled {
		rt.Registry = prometheus.NewRegistry()
		rt.Metrics = observability.NewMetrics(rt.Registry)
	}

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InstallTracing(logOut)
		if err != nil {
			return nil, err
		}
		rt.shutdownTracing = shutdown
	}

	// Debug-level trail of every planning event
	trail := &events.HandlerFunc{
		Types: events.AllEventTypes,
		Fn: func(e events.Event) error {
			logger.Debug("planning event", "type", e.Type(), "stream", e.StreamID(), "version", e.Version())
			return nil
		},
	}
	if err := rt.Events.Subscribe(events.AllEventTypes, trail); err != nil {
		return nil, fmt.Errorf("failed to subscribe event trail: %w", err)
	}
	return rt, nil
}

// Backend returns the configured solver backend
func (r *Runtime) Backend() (solver.Backend, error) {
	switch r.Config.Solver.Backend {
	case gonumlp.Name, "":
		return gonumlp.New(
			gonumlp.WithLogger(r.Logger),
			gonumlp.WithMaxNodes(r.Config.Solver.MaxNodes),
		), nil
	case highs.Name:
		return highs.New(r.Logger), nil
	default:
		return nil, fmt.Errorf("unknown solver backend %q", r.Config.Solver.Backend)
	}
}

// Planner returns a planner on the configured backend
func (r *Runtime) Planner() (*planning.Planner, error) {
	backend, err := r.Backend()
	if err != nil {
		return nil, err
	}
	return planning.NewPlanner(backend,
		planning.WithLogger(r.Logger),
		planning.WithMetrics(r.Metrics),
		planning.WithEventStore(r.Events),
	), nil
}

// Orchestrator returns a rolling-horizon and batch orchestrator
func (r *Runtime) Orchestrator() (*orchestration.PlanningOrchestrator, error) {
	planner, err := r.Planner()
	if err != nil {
		return nil, err
	}
	return orchestration.NewPlanningOrchestrator(planner, r.Events, r.Metrics, r.Logger), nil
}

// Request builds a planning request for a loaded scenario directory. Empty
// start or end fall back to the window in scenario.yaml.
func (r *Runtime) Request(data *csv.Dataset, start, end string) (dto.PlanningRequest, error) {
	var from, to time.Time
	if start == "" || end == "" {
		s, e, err := data.Manifest.Window()
		if err != nil {
			return dto.PlanningRequest{}, err
		}
		from, to = s, e
	}
	if start != "" {
		d, err := entities.ParseDate(start)
		if err != nil {
			return dto.PlanningRequest{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		from = d
	}
	if end != "" {
		d, err := entities.ParseDate(end)
		if err != nil {
			return dto.PlanningRequest{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		to = d
	}

	p := r.Config.Planning
	return dto.PlanningRequest{
		Scenario: data.Scenario,
		Start:    from,
		End:      to,
		Flags: dto.PlanningFlags{
			AllowShortages:   p.AllowShortages,
			EnforceShelfLife: p.EnforceShelfLife,
			BatchTracking:    p.BatchTracking,
			StrictCalendar:   p.StrictCalendar,
		},
		Solver: dto.SolverSettings{
			TimeLimit:    r.Config.Solver.TimeLimit,
			GapTolerance: r.Config.Solver.GapTolerance,
		},
	}, nil
}

// WriteMetrics dumps the collected metrics in the Prometheus text format.
// It is a no-op when metrics are disabled or path is empty.
func (r *Runtime) WriteMetrics(path string) error {
	if r.Registry == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Close flushes spans when tracing is enabled
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	if err := r.shutdownTracing(ctx); err != nil {
		return fmt.Errorf("failed to flush traces: %w", err)
	}
	return nil
}
