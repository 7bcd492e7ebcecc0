package entities

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrCalendarGap is returned in strict mode when a production day has no labor entry
var ErrCalendarGap = errors.New("labor calendar does not cover production date")

// Default parameters used when a production day falls outside the calendar
const (
	DefaultGapMinimumHours  = 4.0
	DefaultGapCapacityHours = 14.0
)

// LaborDay is the staffing and pay structure of one calendar day
type LaborDay struct {
	Date          time.Time       `json:"date" yaml:"date"`
	IsFixed       bool            `json:"is_fixed" yaml:"is_fixed"`
	FixedHours    float64         `json:"fixed_hours" yaml:"fixed_hours" validate:"gte=0"`
	OvertimeHours float64         `json:"overtime_hours" yaml:"overtime_hours" validate:"gte=0"`
	RegularRate   decimal.Decimal `json:"regular_rate" yaml:"regular_rate"`
	OvertimeRate  decimal.Decimal `json:"overtime_rate" yaml:"overtime_rate"`
	NonFixedRate  decimal.Decimal `json:"non_fixed_rate" yaml:"non_fixed_rate"`
	MinimumHours  float64         `json:"minimum_hours" yaml:"minimum_hours" validate:"gte=0"`
	// CapacityHours bounds the hours on a non-fixed day; zero means unbounded
	CapacityHours float64 `json:"capacity_hours,omitempty" yaml:"capacity_hours" validate:"gte=0"`
}

// NewFixedLaborDay creates a staffed day with regular and overtime rates
func NewFixedLaborDay(date time.Time, fixedHours, overtimeHours float64, regularRate, overtimeRate decimal.Decimal) (*LaborDay, error) {
	if fixedHours < 0 || overtimeHours < 0 {
		return nil, fmt.Errorf("labor day %s: hours cannot be negative", date.Format(DateLayout))
	}
	if regularRate.IsNegative() || overtimeRate.IsNegative() {
		return nil, fmt.Errorf("labor day %s: rates cannot be negative", date.Format(DateLayout))
	}
	// regular hours are billed first
	if overtimeHours > 0 && overtimeRate.LessThan(regularRate) {
		return nil, fmt.Errorf("labor day %s: overtime rate %s is below regular rate %s",
			date.Format(DateLayout), overtimeRate, regularRate)
	}

	return &LaborDay{
		Date:          Day(date),
		IsFixed:       true,
		FixedHours:    fixedHours,
		OvertimeHours: overtimeHours,
		RegularRate:   regularRate,
		OvertimeRate:  overtimeRate,
	}, nil
}

// NewNonFixedLaborDay creates an on-demand day with a minimum payable block
func NewNonFixedLaborDay(date time.Time, rate decimal.Decimal, minimumHours, capacityHours float64) (*LaborDay, error) {
	if minimumHours < 0 || capacityHours < 0 {
		return nil, fmt.Errorf("labor day %s: hours cannot be negative", date.Format(DateLayout))
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("labor day %s: rate cannot be negative", date.Format(DateLayout))
	}
	if capacityHours > 0 && minimumHours > capacityHours {
		return nil, fmt.Errorf("labor day %s: minimum hours %g exceed capacity %g", date.Format(DateLayout), minimumHours, capacityHours)
	}

	return &LaborDay{
		Date:          Day(date),
		NonFixedRate:  rate,
		MinimumHours:  minimumHours,
		CapacityHours: capacityHours,
	}, nil
}

// MaxHours is the most labor the day can supply
func (d LaborDay) MaxHours() float64 {
	if d.IsFixed {
		return d.FixedHours + d.OvertimeHours
	}
	if d.CapacityHours > 0 {
		return d.CapacityHours
	}
	return DefaultGapCapacityHours
}

// LaborCalendar indexes labor days by date
type LaborCalendar struct {
	days map[time.Time]*LaborDay
}

// NewLaborCalendar builds a calendar, rejecting duplicate dates
func NewLaborCalendar(days []*LaborDay) (*LaborCalendar, error) {
	cal := &LaborCalendar{days: make(map[time.Time]*LaborDay, len(days))}
	for _, d := range days {
		key := Day(d.Date)
		if _, exists := cal.days[key]; exists {
			return nil, fmt.Errorf("duplicate labor day %s", key.Format(DateLayout))
		}
		cal.days[key] = d
	}
	return cal, nil
}

// Lookup returns the labor day for the date
func (c *LaborCalendar) Lookup(date time.Time) (*LaborDay, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.days[Day(date)]
	return d, ok
}

// Days returns the calendar ordered by date
func (c *LaborCalendar) Days() []*LaborDay {
	if c == nil {
		return nil
	}
	result := make([]*LaborDay, 0, len(c.days))
	for _, d := range c.days {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

// Len returns the number of days in the calendar
func (c *LaborCalendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.days)
}

// GapDefault is the conservative stand-in for a date missing from the
// calendar: a non-fixed day at the most expensive rate the calendar pays
func (c *LaborCalendar) GapDefault(date time.Time) *LaborDay {
	rate := decimal.Zero
	for _, d := range c.Days() {
		for _, r := range []decimal.Decimal{d.NonFixedRate, d.OvertimeRate, d.RegularRate} {
			if r.GreaterThan(rate) {
				rate = r
			}
		}
	}
	return &LaborDay{
		Date:          Day(date),
		NonFixedRate:  rate,
		MinimumHours:  DefaultGapMinimumHours,
		CapacityHours: DefaultGapCapacityHours,
	}
}
