package insulin

import (
	"math"
	"time"
)

const (
	defaultPeak = 75 * time.Minute
	// maxPeakFraction keeps the peak early enough for the curve to be
	// defined (the peak must sit before half the duration).
	maxPeakFraction = 0.35
)

// Curve is the exponential insulin activity curve used by oref0, expressed
// as the fraction of a dose still active after some elapsed time.
type Curve struct {
	Duration time.Duration
	Peak     time.Duration
}

// NewCurve returns a curve with the default 75 minute peak, moved earlier
// for short durations. It panics if duration is not positive.
func NewCurve(duration time.Duration) Curve {
	if duration <= 0 {
		panic("insulin: action duration must be positive")
	}
	peak := defaultPeak
	if limit := time.Duration(float64(duration) * maxPeakFraction); peak > limit {
		peak = limit
	}
	return Curve{Duration: duration, Peak: peak}
}

// Remaining returns the fraction of a dose still on board after elapsed.
// It is 1 at zero, non-increasing, and exactly 0 from Duration onwards.
func (c Curve) Remaining(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 1
	}
	if elapsed >= c.Duration {
		return 0
	}

	t := elapsed.Minutes()
	td := c.Duration.Minutes()
	tp := c.Peak.Minutes()

	tau := tp * (1 - tp/td) / (1 - 2*tp/td)
	a := 2 * tau / td
	s := 1 / (1 - a + (1+a)*math.Exp(-td/tau))

	remaining := 1 - s*(1-a)*((t*t/(tau*td*(1-a))-t/tau-1)*math.Exp(-t/tau)+1)
	return math.Max(0, math.Min(1, remaining))
}
