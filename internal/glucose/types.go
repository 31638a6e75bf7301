// Package glucose holds the glucose reading model and the range statistics
// computed over it: unit conversion, smoothing, range categorization,
// calendar grouping and variability.
package glucose

import (
	"slices"
	"time"
)

// Reading is a single glucose value in mmol/L.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Thresholds are the range boundaries in mmol/L.
// Callers are expected to keep VeryLow < Low < High < VeryHigh.
type Thresholds struct {
	VeryLow  float64 `json:"veryLow"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	VeryHigh float64 `json:"veryHigh"`
}

// DefaultThresholds returns the consensus targets (3.0 / 3.9 / 10.0 / 13.9 mmol/L).
func DefaultThresholds() Thresholds {
	return Thresholds{
		VeryLow:  3.0,
		Low:      3.9,
		High:     10.0,
		VeryHigh: 13.9,
	}
}

// Sorted returns a chronologically sorted copy of readings.
// The input slice is left untouched.
func Sorted(readings []Reading) []Reading {
	out := slices.Clone(readings)
	slices.SortStableFunc(out, func(a, b Reading) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}
