package events

import (
	"time"

	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

const (
	PlanningStartedEvent = "planning.started"
	ModelBuiltEvent      = "planning.model_built"
	SolveFinishedEvent   = "planning.solve_finished"
	PlanExtractedEvent   = "planning.plan_extracted"
	PlanningFailedEvent  = "planning.failed"

	WindowCommittedEvent = "rolling.window_committed"
	RollingFinishedEvent = "rolling.finished"
)

// AllEventTypes lists every event the planner and orchestrator emit
var AllEventTypes = []string{
	PlanningStartedEvent,
	ModelBuiltEvent,
	SolveFinishedEvent,
	PlanExtractedEvent,
	PlanningFailedEvent,
	WindowCommittedEvent,
	RollingFinishedEvent,
}

// PlanningStarted records the window of a run
type PlanningStarted struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ModelBuilt records index and program sizes
type ModelBuilt struct {
	InventoryCohorts int `json:"inventory_cohorts"`
	ShipmentCohorts  int `json:"shipment_cohorts"`
	DemandCohorts    int `json:"demand_cohorts"`
	Variables        int `json:"variables"`
	IntegerVariables int `json:"integer_variables"`
	Rows             int `json:"rows"`
	Warnings         int `json:"warnings"`
}

// SolveFinished records the solver termination
type SolveFinished struct {
	Backend   string        `json:"backend"`
	Status    solver.Status `json:"status"`
	Objective float64       `json:"objective"`
	Gap       *float64      `json:"gap,omitempty"`
	SolveTime time.Duration `json:"solve_time"`
}

// PlanExtracted records the headline totals of a plan
type PlanExtracted struct {
	TotalCost  string  `json:"total_cost"`
	Production float64 `json:"production"`
	Shortage   float64 `json:"shortage"`
}

// PlanningFailed records the phase and error of an aborted run
type PlanningFailed struct {
	Phase string `json:"phase"`
	Error string `json:"error"`
}

// WindowCommitted records one committed rolling-horizon window
type WindowCommitted struct {
	Window      int       `json:"window"`
	Start       time.Time `json:"start"`
	CommitUntil time.Time `json:"commit_until"`
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
}

// RollingFinished records the end of a rolling-horizon loop
type RollingFinished struct {
	Windows int `json:"windows"`
}

func NewPlanningStartedEvent(runID string, start, end time.Time) Event {
	return NewEvent(PlanningStartedEvent, runID, PlanningStarted{Start: start, End: end})
}

func NewModelBuiltEvent(runID string, data ModelBuilt) Event {
	return NewEvent(ModelBuiltEvent, runID, data)
}

func NewSolveFinishedEvent(runID string, data SolveFinished) Event {
	return NewEvent(SolveFinishedEvent, runID, data)
}

func NewPlanExtractedEvent(runID string, data PlanExtracted) Event {
	return NewEvent(PlanExtractedEvent, runID, data)
}

func NewPlanningFailedEvent(runID, phase string, err error) Event {
	return NewEvent(PlanningFailedEvent, runID, PlanningFailed{Phase: phase, Error: err.Error()})
}

func NewWindowCommittedEvent(streamID string, data WindowCommitted) Event {
	return NewEvent(WindowCommittedEvent, streamID, data)
}

func NewRollingFinishedEvent(streamID string, windows int) Event {
	return NewEvent(RollingFinishedEvent, streamID, RollingFinished{Windows: windows})
}
