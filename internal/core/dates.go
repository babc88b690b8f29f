package core

import "time"

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthClamped advances t by one calendar month, clamping the day of the
// month to the last valid day of the target month instead of letting the
// excess roll into the following month. 2024-01-31 advances to 2024-02-29.
func AddMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// PeriodKey returns the year-month bucket identifier ("2024-01") used to
// attribute a materialized transaction to a recurring due period.
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthRange returns the [start, end) bounds of the given month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
