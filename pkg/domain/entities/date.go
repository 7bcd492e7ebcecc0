package entities

import "time"

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// Day truncates a timestamp to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// DaysBetween returns the whole number of days from a to b
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// AddDays shifts a date by n calendar days
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}
