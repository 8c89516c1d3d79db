// Package period implements the subscriber-anchored rolling windows shared by
// the quota ledger and revenue goals. Neither window follows a calendar boundary.
// This is part of the platform layer and contains no business logic.
package period

import "time"

// AddMonth returns t moved forward one calendar month. The day of month is
// clamped to the last day of the target month, so Jan 31 becomes Feb 28/29
// instead of overflowing into March.
func AddMonth(t time.Time) time.Time {
	return addMonths(t, 1)
}

// Due reports whether a window anchored at anchor has elapsed at now.
func Due(anchor, now time.Time) bool {
	return !now.Before(AddMonth(anchor))
}

// StartForResetDay returns the start of the window that contains now for a
// window resetting on resetDay of every month: the resetDay of the current
// month, or of the previous month when today's day-of-month is before resetDay.
// resetDay is clamped to [1, 31] and then to the length of the chosen month.
// The result is midnight in now's location.
func StartForResetDay(now time.Time, resetDay int) time.Time {
	if resetDay < 1 {
		resetDay = 1
	}
	if resetDay > 31 {
		resetDay = 31
	}

	year, month, _ := now.Date()
	if now.Day() < clampDay(year, month, resetDay) {
		year, month = shiftMonth(year, month, -1)
	}

	return time.Date(year, month, clampDay(year, month, resetDay), 0, 0, 0, 0, now.Location())
}

func addMonths(t time.Time, n int) time.Time {
	year, month := shiftMonth(t.Year(), t.Month(), n)
	day := clampDay(year, month, t.Day())
	hour, minute, sec := t.Clock()
	return time.Date(year, month, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func shiftMonth(year int, month time.Month, n int) (int, time.Month) {
	total := int(month) - 1 + n
	year += total / 12
	total %= 12
	if total < 0 {
		total += 12
		year--
	}
	return year, time.Month(total + 1)
}

func clampDay(year int, month time.Month, day int) int {
	last := daysIn(year, month)
	if day > last {
		return last
	}
	return day
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
