package dto

import (
	"fmt"
	"time"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// PlanningFlags are the modelling switches of one run
type PlanningFlags struct {
	AllowShortages   bool `json:"allow_shortages" yaml:"allow_shortages"`
	EnforceShelfLife bool `json:"enforce_shelf_life" yaml:"enforce_shelf_life"`
	BatchTracking    bool `json:"batch_tracking" yaml:"batch_tracking"`
	StrictCalendar   bool `json:"strict_calendar" yaml:"strict_calendar"`
}

// SolverSettings bound the solve of one run. A zero TimeLimit falls back to
// the solver default; a zero GapTolerance demands a proven optimum.
type SolverSettings struct {
	TimeLimit    time.Duration `json:"time_limit" yaml:"time_limit"`
	GapTolerance float64       `json:"gap_tolerance" yaml:"gap_tolerance"`
}

// PlanningRequest is the immutable input snapshot of a single solve
type PlanningRequest struct {
	Scenario *entities.Scenario
	Start    time.Time
	End      time.Time
	Flags    PlanningFlags
	Solver   SolverSettings
}

// Validate checks the request envelope; scenario content is checked separately
func (r PlanningRequest) Validate() error {
	if r.Scenario == nil {
		return fmt.Errorf("planning request has no scenario")
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("planning start and end dates are required")
	}
	if entities.Day(r.End).Before(entities.Day(r.Start)) {
		return fmt.Errorf("planning end %s is before start %s",
			r.End.Format(entities.DateLayout), r.Start.Format(entities.DateLayout))
	}
	if r.Solver.GapTolerance < 0 {
		return fmt.Errorf("gap tolerance cannot be negative, got %g", r.Solver.GapTolerance)
	}
	return nil
}

// Days is the inclusive length of the planning window
func (r PlanningRequest) Days() int {
	return entities.DaysBetween(r.Start, r.End) + 1
}
