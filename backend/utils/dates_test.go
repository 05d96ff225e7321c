package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.June, parsed.Month())
	assert.Equal(t, 15, parsed.Day())

	_, err = ParseDate("15-06-2024")
	assert.Error(t, err)
	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
}

func TestDayDiff(t *testing.T) {
	a := time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 6, 14, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DayDiff(a, b), "clock time is ignored")
	assert.Equal(t, -1, DayDiff(b, a))
	assert.Equal(t, 0, DayDiff(a, a))
}

func TestWeekdayOccurrences(t *testing.T) {
	// 2024-06-15 is a Saturday.
	end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, WeekdayOccurrences(end, 7, int(time.Saturday)))
	assert.Equal(t, 1, WeekdayOccurrences(end, 7, int(time.Sunday)))
	assert.Equal(t, 2, WeekdayOccurrences(end, 8, int(time.Saturday)))
	assert.Equal(t, 13, WeekdayOccurrences(end, 90, int(time.Wednesday)))
}
