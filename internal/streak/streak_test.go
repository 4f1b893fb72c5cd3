package streak_test

import (
	"testing"
	"time"

	"github.com/biocactus/biocactus/internal/streak"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompute_FirstActivity(t *testing.T) {
	today := date(2025, time.March, 10)

	got, last := streak.Compute(today, nil, 0)

	if got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
	if !last.Equal(today) {
		t.Errorf("lastActivity = %v, want %v", last, today)
	}
}

func TestCompute_SameDayIdempotent(t *testing.T) {
	today := date(2025, time.March, 10)
	last := today

	got, gotLast := streak.Compute(today, &last, 4)

	if got != 4 {
		t.Errorf("streak = %d, want 4 (unchanged)", got)
	}
	if !gotLast.Equal(today) {
		t.Errorf("lastActivity = %v, want %v", gotLast, today)
	}

	// Second call on the same day changes nothing.
	got2, _ := streak.Compute(today, &gotLast, got)
	if got2 != got {
		t.Errorf("second same-day call: streak = %d, want %d", got2, got)
	}
}

func TestCompute_SameDayFloorsAtOne(t *testing.T) {
	today := date(2025, time.March, 10)
	last := today

	got, _ := streak.Compute(today, &last, 0)

	if got != 1 {
		t.Errorf("streak = %d, want 1 (same-day activity never leaves streak at 0)", got)
	}
}

func TestCompute_ConsecutiveDay(t *testing.T) {
	today := date(2025, time.March, 10)
	yesterday := date(2025, time.March, 9)

	got, last := streak.Compute(today, &yesterday, 5)

	if got != 6 {
		t.Errorf("streak = %d, want 6", got)
	}
	if !last.Equal(today) {
		t.Errorf("lastActivity = %v, want %v", last, today)
	}
}

func TestCompute_GapResets(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
	}{
		{"two days ago", date(2025, time.March, 8)},
		{"a week ago", date(2025, time.March, 3)},
		{"in the future (clock skew)", date(2025, time.March, 12)},
	}

	today := date(2025, time.March, 10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := tt.last
			got, gotLast := streak.Compute(today, &last, 5)
			if got != 1 {
				t.Errorf("streak = %d, want 1", got)
			}
			if !gotLast.Equal(today) {
				t.Errorf("lastActivity = %v, want %v", gotLast, today)
			}
		})
	}
}

func TestCompute_CalendarDayNotDuration(t *testing.T) {
	// 23:59 yesterday, 00:01 today: less than 24h apart but consecutive days.
	lateYesterday := time.Date(2025, time.March, 9, 23, 59, 0, 0, time.UTC)
	earlyToday := time.Date(2025, time.March, 10, 0, 1, 0, 0, time.UTC)

	got, _ := streak.Compute(earlyToday, &lateYesterday, 2)

	if got != 3 {
		t.Errorf("streak = %d, want 3 (calendar-day comparison)", got)
	}
}

func TestCompute_CrossesMonthBoundary(t *testing.T) {
	lastDayOfFeb := date(2025, time.February, 28)
	firstOfMarch := date(2025, time.March, 1)

	got, _ := streak.Compute(firstOfMarch, &lastDayOfFeb, 10)

	if got != 11 {
		t.Errorf("streak = %d, want 11", got)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	today := date(2025, time.June, 1)
	last := date(2025, time.May, 31)

	a1, b1 := streak.Compute(today, &last, 7)
	a2, b2 := streak.Compute(today, &last, 7)

	if a1 != a2 || !b1.Equal(b2) {
		t.Errorf("Compute is not deterministic: (%d,%v) vs (%d,%v)", a1, b1, a2, b2)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(2025, time.March, 10), date(2025, time.March, 10), 0},
		{"next day", date(2025, time.March, 10), date(2025, time.March, 11), 1},
		{"reversed", date(2025, time.March, 11), date(2025, time.March, 10), -1},
		{"across DST-ish boundary", date(2025, time.March, 29), date(2025, time.March, 31), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := streak.DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}
