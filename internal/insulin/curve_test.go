package insulin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurve(t *testing.T) {
	c := NewCurve(5 * time.Hour)
	assert.Equal(t, 5*time.Hour, c.Duration)
	assert.Equal(t, 75*time.Minute, c.Peak)

	short := NewCurve(2 * time.Hour)
	assert.InDelta(t, 42.0, short.Peak.Minutes(), 1e-6)
}

func TestNewCurvePanicsOnNonPositiveDuration(t *testing.T) {
	assert.Panics(t, func() { NewCurve(0) })
	assert.Panics(t, func() { NewCurve(-time.Hour) })
}

func TestCurveRemainingEndpoints(t *testing.T) {
	c := NewCurve(5 * time.Hour)

	assert.Equal(t, 1.0, c.Remaining(0))
	assert.Equal(t, 1.0, c.Remaining(-time.Minute))
	assert.Equal(t, 0.0, c.Remaining(5*time.Hour))
	assert.Equal(t, 0.0, c.Remaining(7*time.Hour))
	assert.InDelta(t, 0.0, c.Remaining(5*time.Hour-time.Second), 1e-4)
}

func TestCurveRemainingIsNonIncreasing(t *testing.T) {
	for _, duration := range []time.Duration{3 * time.Hour, 4 * time.Hour, 5 * time.Hour, 6 * time.Hour} {
		t.Run(duration.String(), func(t *testing.T) {
			c := NewCurve(duration)
			prev := c.Remaining(0)
			for elapsed := time.Minute; elapsed <= duration+10*time.Minute; elapsed += time.Minute {
				r := c.Remaining(elapsed)
				require.LessOrEqual(t, r, prev, "elapsed %s", elapsed)
				require.GreaterOrEqual(t, r, 0.0)
				prev = r
			}
		})
	}
}

func TestCurveRemainingMidpoint(t *testing.T) {
	c := NewCurve(5 * time.Hour)

	// Most insulin is still active shortly after the dose and little is
	// left near the end of the action window.
	assert.Greater(t, c.Remaining(30*time.Minute), 0.9)
	r := c.Remaining(150 * time.Minute)
	assert.Greater(t, r, 0.2)
	assert.Less(t, r, 0.6)
	assert.Less(t, c.Remaining(270*time.Minute), 0.05)
}
