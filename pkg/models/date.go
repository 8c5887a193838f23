package models

import "time"

// DateLayout is the storage format for calendar dates
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t as UTC midnight.
// The local wall-clock fields of t are kept, so a session closing at 23:30
// local time belongs to that local day regardless of zone offset.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a calendar date by n days
func AddDays(date time.Time, n int) time.Time {
	return DateOf(date).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// FormatDate renders a calendar date, or "" for the zero time
func FormatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return DateOf(date).Format(DateLayout)
}

// ParseDate parses a stored calendar date. Empty input yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}
