package hypo

import (
	"math"
	"testing"

	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/stretchr/testify/assert"
)

func TestCalculateLBGI(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		check  func(t *testing.T, lbgi float64)
	}{
		{
			name:   "in range only",
			values: []float64{120, 150, 180},
			check: func(t *testing.T, lbgi float64) {
				assert.Zero(t, lbgi)
			},
		},
		{
			name:   "low readings raise the index",
			values: []float64{54, 60, 120},
			check: func(t *testing.T, lbgi float64) {
				assert.Greater(t, lbgi, 0.0)
			},
		},
		{
			name:   "empty",
			values: nil,
			check: func(t *testing.T, lbgi float64) {
				assert.Zero(t, lbgi)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, CalculateLBGI(mgdlSeries(tt.values...)))
		})
	}
}

func TestCalculateLBGIKnownValue(t *testing.T) {
	f := 1.509 * (math.Pow(math.Log(70), 1.084) - 5.381)
	want := (10 * f * f) / 2

	got := CalculateLBGI(mgdlSeries(70, 150))

	assert.InDelta(t, want, got, 1e-6)
	assert.InDelta(t, 3.88, got, 0.05)
}

func TestCalculateLBGILowerIsRiskier(t *testing.T) {
	assert.Greater(t, CalculateLBGI(mgdlSeries(45)), CalculateLBGI(mgdlSeries(65)))
}

func TestCalculateLBGIIgnoresInvalidValues(t *testing.T) {
	readings := mgdlSeries(70)
	readings = append(readings,
		glucose.Reading{Timestamp: base, Value: 0},
		glucose.Reading{Timestamp: base, Value: -2},
		glucose.Reading{Timestamp: base, Value: math.NaN()},
	)

	got := CalculateLBGI(readings)

	assert.False(t, math.IsNaN(got))
	assert.InDelta(t, CalculateLBGI(mgdlSeries(70)), got, 1e-9)
	assert.Zero(t, CalculateLBGI([]glucose.Reading{{Timestamp: base, Value: 0}}))
}

func TestCalculateHBGI(t *testing.T) {
	assert.Zero(t, CalculateHBGI(mgdlSeries(70, 90)))
	assert.Greater(t, CalculateHBGI(mgdlSeries(250, 300)), 0.0)
	assert.Zero(t, CalculateHBGI(nil))
}
