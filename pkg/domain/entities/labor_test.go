package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLaborCalendar_Lookup(t *testing.T) {
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

	fixed, err := NewFixedLaborDay(monday, 12, 2, decimal.NewFromInt(20), decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("Expected fixed day creation to succeed: %v", err)
	}
	weekend, err := NewNonFixedLaborDay(saturday, decimal.NewFromInt(40), 4, 14)
	if err != nil {
		t.Fatalf("Expected non-fixed day creation to succeed: %v", err)
	}

	cal, err := NewLaborCalendar([]*LaborDay{weekend, fixed})
	if err != nil {
		t.Fatalf("Expected calendar creation to succeed: %v", err)
	}

	got, ok := cal.Lookup(monday.Add(9 * time.Hour))
	if !ok {
		t.Fatal("Expected Monday to be covered")
	}
	if got.MaxHours() != 14 {
		t.Errorf("Expected 14 max hours, got %g", got.MaxHours())
	}
	if _, ok := cal.Lookup(monday.AddDate(0, 0, 1)); ok {
		t.Error("Expected Tuesday to be a gap")
	}

	days := cal.Days()
	if len(days) != 2 || !days[0].Date.Equal(monday) {
		t.Errorf("Expected days ordered by date starting Monday, got %v", days)
	}

	if _, err := NewLaborCalendar([]*LaborDay{fixed, fixed}); err == nil {
		t.Error("Expected duplicate day to be rejected")
	}
}

func TestLaborCalendar_GapDefault(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	fixed, _ := NewFixedLaborDay(day, 12, 2, decimal.NewFromInt(20), decimal.NewFromInt(30))
	weekend, _ := NewNonFixedLaborDay(day.AddDate(0, 0, 5), decimal.NewFromInt(40), 4, 14)
	cal, _ := NewLaborCalendar([]*LaborDay{fixed, weekend})

	gap := cal.GapDefault(day.AddDate(0, 0, 30))
	if gap.IsFixed {
		t.Error("Expected gap default to be a non-fixed day")
	}
	if !gap.NonFixedRate.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected most expensive rate 40, got %s", gap.NonFixedRate)
	}
	if gap.MinimumHours != DefaultGapMinimumHours {
		t.Errorf("Expected minimum %g, got %g", DefaultGapMinimumHours, gap.MinimumHours)
	}
}

func TestNonFixedLaborDay_Validation(t *testing.T) {
	day := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	_, err := NewNonFixedLaborDay(day, decimal.NewFromInt(40), 16, 14)
	if err == nil {
		t.Fatal("Expected minimum above capacity to fail")
	}
	if err.Error() != "labor day 2025-06-07: minimum hours 16 exceed capacity 14" {
		t.Errorf("Unexpected error: %s", err)
	}
}

func TestNewFixedLaborDay_RateOrdering(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	if _, err := NewFixedLaborDay(day, 12, 2, decimal.NewFromInt(30), decimal.NewFromInt(20)); err == nil {
		t.Error("Expected overtime cheaper than regular time to be rejected")
	}
	// without overtime hours the overtime rate is never billed
	if _, err := NewFixedLaborDay(day, 12, 0, decimal.NewFromInt(30), decimal.Zero); err != nil {
		t.Errorf("Expected day without overtime to be accepted: %v", err)
	}
}
