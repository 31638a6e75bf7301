package glucose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func TestGroupByDate(t *testing.T) {
	readings := []Reading{
		{Timestamp: at(2025, 1, 16, 9), Value: 5},
		{Timestamp: at(2025, 1, 15, 23), Value: 3},
		{Timestamp: at(2025, 1, 15, 1), Value: 12},
	}

	days := GroupByDate(readings, DefaultThresholds(), ThreeCategory)

	require.Len(t, days, 2)
	assert.Equal(t, "2025-01-15", days[0].Date)
	assert.Equal(t, 2, days[0].Stats.Total)
	assert.Equal(t, 1, days[0].Stats.Low)
	assert.Equal(t, 1, days[0].Stats.High)
	assert.Equal(t, "2025-01-16", days[1].Date)
	assert.Equal(t, 1, days[1].Stats.InRange)
}

func TestGroupByDateUsesReadingLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	readings := []Reading{
		{Timestamp: time.Date(2025, 1, 16, 0, 30, 0, 0, loc), Value: 5},
	}

	days := GroupByDate(readings, DefaultThresholds(), ThreeCategory)

	require.Len(t, days, 1)
	assert.Equal(t, "2025-01-16", days[0].Date)
}

func TestGroupByDayOfWeek(t *testing.T) {
	// 2025-01-13 is a Monday.
	readings := []Reading{
		{Timestamp: at(2025, 1, 19, 9), Value: 5},  // Sunday
		{Timestamp: at(2025, 1, 13, 9), Value: 3},  // Monday
		{Timestamp: at(2025, 1, 15, 9), Value: 12}, // Wednesday
		{Timestamp: at(2025, 1, 20, 9), Value: 6},  // Monday
	}

	rows := GroupByDayOfWeek(readings, DefaultThresholds(), ThreeCategory)

	days := make([]string, len(rows))
	for i, r := range rows {
		days[i] = r.Day
	}
	assert.Equal(t, []string{"Monday", "Wednesday", "Sunday", Workday, Weekend}, days)

	assert.Equal(t, 2, rows[0].Stats.Total)
	assert.Equal(t, 3, rows[3].Stats.Total)
	assert.Equal(t, 1, rows[3].Stats.Low)
	assert.Equal(t, 1, rows[3].Stats.High)
	assert.Equal(t, 1, rows[4].Stats.Total)
}

func TestGroupByDayOfWeekWithoutWeekend(t *testing.T) {
	readings := []Reading{{Timestamp: at(2025, 1, 14, 9), Value: 5}}

	rows := GroupByDayOfWeek(readings, DefaultThresholds(), FiveCategory)

	require.Len(t, rows, 2)
	assert.Equal(t, "Tuesday", rows[0].Day)
	assert.Equal(t, Workday, rows[1].Day)
	assert.Empty(t, GroupByDayOfWeek(nil, DefaultThresholds(), FiveCategory))
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{"monday", at(2025, 1, 27, 15), at(2025, 1, 27, 0)},
		{"saturday", at(2025, 2, 1, 8), at(2025, 1, 27, 0)},
		{"sunday", at(2025, 2, 2, 23), at(2025, 1, 27, 0)},
		{"next monday", at(2025, 2, 3, 0), at(2025, 2, 3, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeekStart(tt.input))
		})
	}
}

func TestFormatWeekRange(t *testing.T) {
	assert.Equal(t, "Jan 6-12", FormatWeekRange(at(2025, 1, 6, 0)))
	assert.Equal(t, "Jan 27-Feb 2", FormatWeekRange(at(2025, 1, 27, 0)))
	assert.Equal(t, "Dec 29-Jan 4", FormatWeekRange(at(2025, 12, 29, 0)))
}

func TestGroupByWeekAcrossMonthBoundary(t *testing.T) {
	readings := []Reading{
		{Timestamp: at(2025, 2, 1, 12), Value: 5},
		{Timestamp: at(2025, 1, 27, 12), Value: 3},
		{Timestamp: at(2025, 1, 20, 12), Value: 6},
	}

	weeks := GroupByWeek(readings, DefaultThresholds(), ThreeCategory)

	require.Len(t, weeks, 2)
	assert.Equal(t, "Jan 20-26", weeks[0].Label)
	assert.Equal(t, "Jan 27-Feb 2", weeks[1].Label)
	assert.Equal(t, at(2025, 1, 27, 0), weeks[1].WeekStart)
	assert.Equal(t, 2, weeks[1].Stats.Total)
	assert.Equal(t, 1, weeks[1].Stats.Low)
}
