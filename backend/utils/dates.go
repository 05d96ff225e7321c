package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used at every boundary.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a midnight-UTC time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current calendar date as YYYY-MM-DD.
func Today() string {
	return FormatDate(time.Now())
}

// DayDiff returns the whole-day difference a minus b, both truncated to
// midnight.
func DayDiff(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// WeekdayOccurrences counts how often weekday (0=Sunday) occurs in the
// window of `days` days ending at `end` inclusive.
func WeekdayOccurrences(end time.Time, days, weekday int) int {
	count := 0
	for i := 0; i < days; i++ {
		if int(end.AddDate(0, 0, -i).Weekday()) == weekday {
			count++
		}
	}
	return count
}
