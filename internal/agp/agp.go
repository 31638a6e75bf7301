// Package agp computes the ambulatory glucose profile: glucose percentiles
// per 5 minute time-of-day slot, pooled across all days.
package agp

import (
	"fmt"
	"math"
	"time"

	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/montanaflynn/stats"
)

const (
	SlotMinutes = 5
	SlotCount   = 24 * 60 / SlotMinutes
)

// Slot holds the percentiles (mmol/L) of all readings taken within one
// time-of-day slot. Percentiles are nil for empty slots.
type Slot struct {
	Minute int      `json:"minute"`
	Label  string   `json:"label"`
	Count  int      `json:"count"`
	P10    *float64 `json:"p10,omitempty"`
	P25    *float64 `json:"p25,omitempty"`
	P50    *float64 `json:"p50,omitempty"`
	P75    *float64 `json:"p75,omitempty"`
	P90    *float64 `json:"p90,omitempty"`
}

// SlotLabel formats the start of slot i as HH:MM.
func SlotLabel(i int) string {
	minute := i * SlotMinutes
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// SlotIndex returns the slot of t's local clock time.
func SlotIndex(t time.Time) int {
	return (t.Hour()*60 + t.Minute()) / SlotMinutes
}

// Compute buckets readings by local time of day and returns all
// SlotCount slots in order. Non-finite values are ignored.
func Compute(readings []glucose.Reading) []Slot {
	buckets := make([]stats.Float64Data, SlotCount)
	for _, r := range readings {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			continue
		}
		i := SlotIndex(r.Timestamp)
		buckets[i] = append(buckets[i], r.Value)
	}

	slots := make([]Slot, SlotCount)
	for i, values := range buckets {
		slots[i] = Slot{
			Minute: i * SlotMinutes,
			Label:  SlotLabel(i),
			Count:  len(values),
		}
		if len(values) == 0 {
			continue
		}
		slots[i].P10 = nearestRank(values, 10)
		slots[i].P25 = nearestRank(values, 25)
		slots[i].P50 = median(values)
		slots[i].P75 = nearestRank(values, 75)
		slots[i].P90 = nearestRank(values, 90)
	}
	return slots
}

func nearestRank(values stats.Float64Data, percent float64) *float64 {
	p, err := stats.PercentileNearestRank(values, percent)
	if err != nil {
		return nil
	}
	return &p
}

func median(values stats.Float64Data) *float64 {
	m, err := stats.Median(values)
	if err != nil {
		return nil
	}
	return &m
}
