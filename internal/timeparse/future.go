package timeparse

import "time"

// leapFallback is the fixed advance used when the year-increment lands on a date that does not exist.
const leapFallback = 365 * 24 * time.Hour

// CoerceFuture returns t unchanged unless it lies before now. A past instant keeps its
// wall clock and moves to the same date one year later; Feb 29 without a Feb 29 in the
// following year advances by exactly 365 days instead. The advance is applied once,
// so the result may still be before now when t was more than a year behind.
func CoerceFuture(t, now time.Time) time.Time {
	if !t.Before(now) {
		return t
	}

	year, month, day := t.Date()
	hour, minute, sec := t.Clock()
	next := time.Date(year+1, month, day, hour, minute, sec, t.Nanosecond(), t.Location())
	if next.Month() != month || next.Day() != day {
		return t.Add(leapFallback)
	}
	return next
}
