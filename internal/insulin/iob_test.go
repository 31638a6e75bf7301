package insulin

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestAtTimeSplitsBasalAndBolus(t *testing.T) {
	doses := []Dose{
		{Timestamp: day.Add(8 * time.Hour), Units: 4, Type: Bolus},
		{Timestamp: day.Add(8 * time.Hour), Units: 0.5, Type: Basal},
	}

	p := AtTime(doses, day.Add(8*time.Hour), DefaultDuration)

	assert.Equal(t, day.Add(8*time.Hour), p.Time)
	assert.InDelta(t, 4.0, p.BolusIOB, 1e-9)
	assert.InDelta(t, 0.5, p.BasalIOB, 1e-9)
	assert.InDelta(t, 4.5, p.TotalIOB, 1e-9)
}

func TestAtTimeMonotonicDecay(t *testing.T) {
	dose := Dose{Timestamp: day.Add(9 * time.Hour), Units: 6, Type: Bolus}
	doses := []Dose{dose}

	prev := AtTime(doses, dose.Timestamp, DefaultDuration).TotalIOB
	for at := dose.Timestamp.Add(5 * time.Minute); at.Before(dose.Timestamp.Add(6 * time.Hour)); at = at.Add(5 * time.Minute) {
		cur := AtTime(doses, at, DefaultDuration).TotalIOB
		require.LessOrEqual(t, cur, prev, "at %s", at)
		prev = cur
	}

	assert.Zero(t, AtTime(doses, dose.Timestamp.Add(DefaultDuration), DefaultDuration).TotalIOB)
	assert.Zero(t, AtTime(doses, dose.Timestamp.Add(8*time.Hour), DefaultDuration).TotalIOB)
}

func TestAtTimeIgnoresFutureDoses(t *testing.T) {
	at := day.Add(12 * time.Hour)
	past := []Dose{{Timestamp: at.Add(-time.Hour), Units: 3, Type: Bolus}}
	withFuture := append([]Dose{
		{Timestamp: at.Add(time.Second), Units: 1000, Type: Bolus},
		{Timestamp: at.Add(time.Hour), Units: 50, Type: Basal},
	}, past...)

	assert.Equal(t, AtTime(past, at, DefaultDuration), AtTime(withFuture, at, DefaultDuration))
}

func TestAtTimeEmpty(t *testing.T) {
	p := AtTime(nil, day, DefaultDuration)
	assert.Zero(t, p.TotalIOB)
	assert.Equal(t, day, p.Time)
}

func TestAtTimePanicsOnNonPositiveDuration(t *testing.T) {
	assert.Panics(t, func() { AtTime(nil, day, 0) })
}

func TestDailyPointCount(t *testing.T) {
	tests := []struct {
		interval time.Duration
		want     int
	}{
		{5 * time.Minute, 289},
		{15 * time.Minute, 97},
		{60 * time.Minute, 25},
	}
	for _, tt := range tests {
		t.Run(tt.interval.String(), func(t *testing.T) {
			points := Daily(nil, day.Add(13*time.Hour), DefaultDuration, tt.interval)
			require.Len(t, points, tt.want)
			assert.Equal(t, day, points[0].Time)
			assert.Equal(t, day.Add(24*time.Hour), points[len(points)-1].Time)
		})
	}
}

func TestDailyCarriesOverMidnight(t *testing.T) {
	doses := []Dose{{Timestamp: day.Add(-2 * time.Hour), Units: 5, Type: Bolus}}

	points := Daily(doses, day, 5*time.Hour, 5*time.Minute)

	assert.Greater(t, points[0].BolusIOB, 0.0)
	// 22:00 + 5h = 03:00, sample index 36.
	assert.Zero(t, points[36].BolusIOB)
	assert.Greater(t, points[35].BolusIOB, 0.0)
}

func TestDailyIncludesDoseAtNextMidnight(t *testing.T) {
	doses := []Dose{{Timestamp: day.Add(24 * time.Hour), Units: 2, Type: Basal}}

	points := Daily(doses, day, DefaultDuration, 5*time.Minute)

	assert.InDelta(t, 2.0, points[len(points)-1].BasalIOB, 1e-9)
	assert.Zero(t, points[len(points)-2].BasalIOB)
}

func TestDailySpansElapsedDayAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name     string
		date     time.Time
		lastHour int
		lastDay  int
	}{
		{"spring forward", time.Date(2025, 3, 9, 0, 0, 0, 0, ny), 1, 10},
		{"fall back", time.Date(2025, 11, 2, 0, 0, 0, 0, ny), 23, 2},
		{"ordinary day", time.Date(2025, 6, 1, 0, 0, 0, 0, ny), 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := Daily(nil, tt.date, DefaultDuration, time.Hour)
			require.Len(t, points, 25)

			first, last := points[0].Time, points[len(points)-1].Time
			assert.Equal(t, 24*time.Hour, last.Sub(first))
			assert.Equal(t, tt.lastHour, last.In(ny).Hour())
			assert.Equal(t, tt.lastDay, last.In(ny).Day())
		})
	}
}

func TestDailyPanicsOnNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() { Daily(nil, day, DefaultDuration, 0) })
}
