// Package streak computes consecutive-day learning streaks.
//
// A streak counts calendar days with qualifying activity (a completed lesson or
// a passed quiz). It grows by one per consecutive day, holds steady on repeated
// same-day activity, and resets to 1 after any gap of two or more days.
package streak

import "time"

// Compute derives the new streak state from the previous state and today's
// date. It is pure: same inputs always give the same outputs.
//
// Dates are compared at calendar-day granularity, not as durations, so
// activity at 23:59 and 00:01 the next day still counts as consecutive.
func Compute(today time.Time, lastActivity *time.Time, current int) (newStreak int, newLastActivity time.Time) {
	todayDay := startOfDay(today)

	if lastActivity == nil {
		// First ever activity.
		return 1, todayDay
	}

	lastDay := startOfDay(*lastActivity)
	switch DaysBetween(lastDay, todayDay) {
	case 0:
		// Already recorded activity today. Idempotent, but a streak with
		// activity today is never below 1.
		return max(current, 1), lastDay
	case 1:
		return current + 1, todayDay
	default:
		// Gap of 2+ days, or clock skew. Start over.
		return 1, todayDay
	}
}

// DaysBetween returns the whole calendar days from a to b. Negative when b is
// before a.
func DaysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
