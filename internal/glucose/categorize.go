package glucose

import (
	"fmt"
	"math"
)

// Category is the range band a reading falls into.
type Category string

const (
	CategoryVeryLow  Category = "veryLow"
	CategoryLow      Category = "low"
	CategoryInRange  Category = "inRange"
	CategoryHigh     Category = "high"
	CategoryVeryHigh Category = "veryHigh"
)

// Mode selects between the three and five band layouts.
type Mode int

const (
	ThreeCategory Mode = 3
	FiveCategory  Mode = 5
)

// ParseMode validates a mode coming from settings.
func ParseMode(n int) (Mode, error) {
	switch Mode(n) {
	case ThreeCategory, FiveCategory:
		return Mode(n), nil
	}
	return 0, fmt.Errorf("category mode must be 3 or 5, got %d", n)
}

// band is one entry of a mode's strategy table. A value belongs to the
// first band whose upper bound it is below (or equal to, when inclusive).
type band struct {
	category  Category
	upper     func(Thresholds) float64
	inclusive bool
}

func veryLowBound(t Thresholds) float64  { return t.VeryLow }
func lowBound(t Thresholds) float64      { return t.Low }
func highBound(t Thresholds) float64     { return t.High }
func veryHighBound(t Thresholds) float64 { return t.VeryHigh }
func unbounded(Thresholds) float64       { return math.Inf(1) }

var bandTable = map[Mode][]band{
	ThreeCategory: {
		{CategoryLow, lowBound, false},
		{CategoryInRange, highBound, true},
		{CategoryHigh, unbounded, true},
	},
	FiveCategory: {
		{CategoryVeryLow, veryLowBound, false},
		{CategoryLow, lowBound, false},
		{CategoryInRange, highBound, true},
		{CategoryHigh, veryHighBound, true},
		{CategoryVeryHigh, unbounded, true},
	},
}

func bandsFor(mode Mode) []band {
	bands, ok := bandTable[mode]
	if !ok {
		panic(fmt.Sprintf("glucose: unsupported category mode %d", mode))
	}
	return bands
}

// Categories lists the bands of a mode from lowest to highest.
func Categories(mode Mode) []Category {
	bands := bandsFor(mode)
	out := make([]Category, len(bands))
	for i, b := range bands {
		out[i] = b.category
	}
	return out
}

// Categorize returns the band for a value in mmol/L.
// Low bounds are exclusive and high bounds inclusive, so a value equal
// to Low or High counts as in range.
func Categorize(value float64, t Thresholds, mode Mode) Category {
	bands := bandsFor(mode)
	for _, b := range bands {
		upper := b.upper(t)
		if value < upper || (b.inclusive && value == upper) {
			return b.category
		}
	}
	// NaN compares false against every bound.
	return bands[len(bands)-1].category
}
