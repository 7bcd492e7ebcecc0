package cohort

import (
	"fmt"
	"time"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// Horizon is the daily grid of a planning run. Day 0 is the start date; days
// before the start carry negative offsets.
type Horizon struct {
	Start time.Time
	Days  int
}

// NewHorizon creates a horizon covering start through end inclusive
func NewHorizon(start, end time.Time) (Horizon, error) {
	start, end = entities.Day(start), entities.Day(end)
	if end.Before(start) {
		return Horizon{}, fmt.Errorf("planning end %s is before start %s", end.Format(entities.DateLayout), start.Format(entities.DateLayout))
	}
	return Horizon{Start: start, Days: entities.DaysBetween(start, end) + 1}, nil
}

// Date converts a day offset to a calendar date
func (h Horizon) Date(day int) time.Time {
	return entities.AddDays(h.Start, day)
}

// Offset converts a calendar date to a day offset
func (h Horizon) Offset(date time.Time) int {
	return entities.DaysBetween(h.Start, date)
}

// Contains reports whether the offset falls inside the horizon
func (h Horizon) Contains(day int) bool {
	return day >= 0 && day < h.Days
}

// Last is the offset of the final horizon day
func (h Horizon) Last() int {
	return h.Days - 1
}

// End is the final calendar date of the horizon
func (h Horizon) End() time.Time {
	return h.Date(h.Last())
}
