package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the planner's Prometheus collectors. Each Metrics registers on
// its own registerer so tests and batch runs do not collide.
type Metrics struct {
	// solvesTotal counts finished solves.
	// Labels: backend, status (optimal, feasible, infeasible, error, timeout)
	solvesTotal *prometheus.CounterVec

	// solveDuration measures wall time spent inside the solver backend.
	// Labels: backend
	solveDuration *prometheus.HistogramVec

	programVariables prometheus.Gauge
	programRows      prometheus.Gauge
	inventoryCohorts prometheus.Gauge

	// planningErrors counts runs aborted before a status was produced.
	// Labels: phase
	planningErrors *prometheus.CounterVec

	rollingWindows prometheus.Counter
}

// NewMetrics registers the planner collectors on reg. A nil registerer keeps
// the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		solvesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "solver",
			Name:      "solves_total",
			Help:      "Total solves by backend and termination status",
		}, []string{"backend", "status"}),
		solveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planner",
			Subsystem: "solver",
			Name:      "solve_duration_seconds",
			Help:      "Time spent in the solver backend",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"backend"}),
		programVariables: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "planner",
			Subsystem: "model",
			Name:      "variables",
			Help:      "Columns in the most recently assembled program",
		}),
		programRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "planner",
			Subsystem: "model",
			Name:      "rows",
			Help:      "Rows in the most recently assembled program",
		}),
		inventoryCohorts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "planner",
			Subsystem: "model",
			Name:      "inventory_cohorts",
			Help:      "Inventory cohorts in the most recently built index",
		}),
		planningErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Name:      "errors_total",
			Help:      "Planning runs aborted by phase",
		}, []string{"phase"}),
		rollingWindows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "rolling",
			Name:      "windows_total",
			Help:      "Rolling-horizon windows solved",
		}),
	}
}

// RecordSolve records one finished solve
func (m *Metrics) RecordSolve(backend, status string, seconds float64) {
	if m == nil {
		return
	}
	m.solvesTotal.WithLabelValues(backend, status).Inc()
	m.solveDuration.WithLabelValues(backend).Observe(seconds)
}

// RecordModel records the size of an assembled model
func (m *Metrics) RecordModel(variables, rows, cohorts int) {
	if m == nil {
		return
	}
	m.programVariables.Set(float64(variables))
	m.programRows.Set(float64(rows))
	m.inventoryCohorts.Set(float64(cohorts))
}

// RecordError counts a run aborted in a phase
func (m *Metrics) RecordError(phase string) {
	if m == nil {
		return
	}
	m.planningErrors.WithLabelValues(phase).Inc()
}

// RecordWindow counts a solved rolling-horizon window
func (m *Metrics) RecordWindow() {
	if m == nil {
		return
	}
	m.rollingWindows.Inc()
}
