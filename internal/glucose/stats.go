package glucose

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RangeStats counts readings per band. VeryLow and VeryHigh are only
// set in five-category mode.
type RangeStats struct {
	Mode     Mode `json:"mode"`
	VeryLow  *int `json:"veryLow,omitempty"`
	Low      int  `json:"low"`
	InRange  int  `json:"inRange"`
	High     int  `json:"high"`
	VeryHigh *int `json:"veryHigh,omitempty"`
	Total    int  `json:"total"`
}

// NewRangeStats returns all-zero stats shaped for the mode.
func NewRangeStats(mode Mode) RangeStats {
	bandsFor(mode)
	s := RangeStats{Mode: mode}
	if mode == FiveCategory {
		s.VeryLow = new(int)
		s.VeryHigh = new(int)
	}
	return s
}

func (s *RangeStats) add(c Category) {
	switch c {
	case CategoryVeryLow:
		*s.VeryLow++
	case CategoryLow:
		s.Low++
	case CategoryInRange:
		s.InRange++
	case CategoryHigh:
		s.High++
	case CategoryVeryHigh:
		*s.VeryHigh++
	default:
		panic(fmt.Sprintf("glucose: unknown category %q", c))
	}
	s.Total++
}

// Count returns the number of readings in a band, zero for bands the
// mode does not have.
func (s RangeStats) Count(c Category) int {
	switch c {
	case CategoryVeryLow:
		if s.VeryLow != nil {
			return *s.VeryLow
		}
	case CategoryLow:
		return s.Low
	case CategoryInRange:
		return s.InRange
	case CategoryHigh:
		return s.High
	case CategoryVeryHigh:
		if s.VeryHigh != nil {
			return *s.VeryHigh
		}
	}
	return 0
}

// Merge returns the sum of two stats of the same mode.
func (s RangeStats) Merge(other RangeStats) RangeStats {
	if s.Mode != other.Mode {
		panic(fmt.Sprintf("glucose: cannot merge mode %d stats into mode %d", other.Mode, s.Mode))
	}
	out := NewRangeStats(s.Mode)
	out.Low = s.Low + other.Low
	out.InRange = s.InRange + other.InRange
	out.High = s.High + other.High
	out.Total = s.Total + other.Total
	if out.VeryLow != nil {
		*out.VeryLow = s.Count(CategoryVeryLow) + other.Count(CategoryVeryLow)
		*out.VeryHigh = s.Count(CategoryVeryHigh) + other.Count(CategoryVeryHigh)
	}
	return out
}

// CalculateRangeStats categorizes every reading in a single pass.
func CalculateRangeStats(readings []Reading, t Thresholds, mode Mode) RangeStats {
	s := NewRangeStats(mode)
	for _, r := range readings {
		s.add(Categorize(r.Value, t, mode))
	}
	return s
}

// CalculatePercentage returns count/total as a percentage rounded half-up
// to one decimal place. A zero total yields 0.
func CalculatePercentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
	return pct.InexactFloat64()
}

// RangePercentages mirrors RangeStats with percentages of the total.
type RangePercentages struct {
	VeryLow  *float64 `json:"veryLow,omitempty"`
	Low      float64  `json:"low"`
	InRange  float64  `json:"inRange"`
	High     float64  `json:"high"`
	VeryHigh *float64 `json:"veryHigh,omitempty"`
}

// Percentages converts counts to rounded percentages.
func (s RangeStats) Percentages() RangePercentages {
	p := RangePercentages{
		Low:     CalculatePercentage(s.Low, s.Total),
		InRange: CalculatePercentage(s.InRange, s.Total),
		High:    CalculatePercentage(s.High, s.Total),
	}
	if s.VeryLow != nil {
		vl := CalculatePercentage(*s.VeryLow, s.Total)
		p.VeryLow = &vl
	}
	if s.VeryHigh != nil {
		vh := CalculatePercentage(*s.VeryHigh, s.Total)
		p.VeryHigh = &vh
	}
	return p
}
