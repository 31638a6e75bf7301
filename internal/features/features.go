// Package features builds a feature record for each hypoglycemic period by
// joining it with the surrounding glucose trace and the insulin history.
package features

import (
	"fmt"
	"slices"
	"time"

	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/hypo"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"github.com/samber/lo"
)

const (
	BolusLookback    = 6 * time.Hour
	GlucoseTolerance = 5 * time.Minute
	RateWindow       = 60 * time.Minute
	PairSpacing      = 5 * time.Minute
	PairSlack        = time.Minute
)

// BolusContext is a bolus given before onset.
type BolusContext struct {
	Units        float64 `json:"units"`
	MinutesPrior float64 `json:"minutesPrior"`
}

// Event is one hypo period with its context. Nil fields mean the data
// needed to compute them was not available. Glucose fields are mmol/L,
// rates are mg/dL per minute.
type Event struct {
	EventID string `json:"eventId"`
	hypo.Period

	// Bolus1 is the most recent bolus before onset, Bolus2 the one before.
	Bolus1 *BolusContext `json:"bolus1,omitempty"`
	Bolus2 *BolusContext `json:"bolus2,omitempty"`

	// BasalHourN is the basal delivered in [onset-N h, onset-(N-1) h).
	BasalHour1 *float64 `json:"basalHour1,omitempty"`
	BasalHour3 *float64 `json:"basalHour3,omitempty"`
	BasalHour5 *float64 `json:"basalHour5,omitempty"`

	// MaxDropRate is the steepest fall between readings about five minutes
	// apart in the hour before onset. Positive means falling.
	MaxDropRate *float64 `json:"maxDropRate,omitempty"`
	// InitialRate is the signed change from about -15 to about -5 minutes.
	InitialRate *float64 `json:"initialRate,omitempty"`

	GlucoseMinus60 *float64 `json:"glucoseMinus60,omitempty"`
	GlucoseMinus30 *float64 `json:"glucoseMinus30,omitempty"`
	GlucoseMinus10 *float64 `json:"glucoseMinus10,omitempty"`
	NadirPlus15    *float64 `json:"nadirPlus15,omitempty"`
}

// EventID formats the 1-based sequence number n as E-001, E-002, ...
func EventID(n int) string {
	return fmt.Sprintf("E-%03d", n)
}

// Extract builds one Event per period, numbered in onset order.
func Extract(periods []hypo.Period, readings []glucose.Reading, doses []insulin.Dose) []Event {
	ordered := slices.Clone(periods)
	slices.SortStableFunc(ordered, func(a, b hypo.Period) int {
		return a.StartTime.Compare(b.StartTime)
	})
	sorted := glucose.Sorted(readings)

	boluses := lo.Filter(doses, func(d insulin.Dose, _ int) bool { return d.Type == insulin.Bolus })
	basals := lo.Filter(doses, func(d insulin.Dose, _ int) bool { return d.Type == insulin.Basal })

	events := make([]Event, 0, len(ordered))
	for i, p := range ordered {
		onset := p.StartTime
		e := Event{EventID: EventID(i + 1), Period: p}

		prior := recentBoluses(boluses, onset)
		if len(prior) > 0 {
			e.Bolus1 = prior[0]
		}
		if len(prior) > 1 {
			e.Bolus2 = prior[1]
		}

		if len(basals) > 0 {
			e.BasalHour1 = lo.ToPtr(basalInHour(basals, onset, 1))
			e.BasalHour3 = lo.ToPtr(basalInHour(basals, onset, 3))
			e.BasalHour5 = lo.ToPtr(basalInHour(basals, onset, 5))
		}

		e.MaxDropRate = maxDropRate(sorted, onset)
		e.InitialRate = initialRate(sorted, onset)

		e.GlucoseMinus60 = valueNear(sorted, onset.Add(-60*time.Minute))
		e.GlucoseMinus30 = valueNear(sorted, onset.Add(-30*time.Minute))
		e.GlucoseMinus10 = valueNear(sorted, onset.Add(-10*time.Minute))
		e.NadirPlus15 = valueNear(sorted, p.NadirTime.Add(15*time.Minute))

		events = append(events, e)
	}
	return events
}

// recentBoluses returns up to two boluses strictly before onset and within
// BolusLookback, most recent first.
func recentBoluses(boluses []insulin.Dose, onset time.Time) []*BolusContext {
	window := lo.Filter(boluses, func(d insulin.Dose, _ int) bool {
		return d.Timestamp.Before(onset) && onset.Sub(d.Timestamp) <= BolusLookback
	})
	slices.SortStableFunc(window, func(a, b insulin.Dose) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	out := make([]*BolusContext, 0, 2)
	for _, d := range window[:min(2, len(window))] {
		out = append(out, &BolusContext{
			Units:        d.Units,
			MinutesPrior: onset.Sub(d.Timestamp).Minutes(),
		})
	}
	return out
}

func basalInHour(basals []insulin.Dose, onset time.Time, hour int) float64 {
	from := onset.Add(-time.Duration(hour) * time.Hour)
	to := from.Add(time.Hour)

	var sum float64
	for _, d := range basals {
		if !d.Timestamp.Before(from) && d.Timestamp.Before(to) {
			sum += d.Units
		}
	}
	return sum
}

func maxDropRate(sorted []glucose.Reading, onset time.Time) *float64 {
	from := onset.Add(-RateWindow)
	start, end := window(sorted, from, onset)
	trace := sorted[start:end]

	var best *float64
	for i := range trace {
		for j := i + 1; j < len(trace); j++ {
			gap := trace[j].Timestamp.Sub(trace[i].Timestamp)
			if gap > PairSpacing+PairSlack {
				break
			}
			if gap < PairSpacing-PairSlack {
				continue
			}
			drop := (glucose.MmolToMgdl(trace[i].Value) - glucose.MmolToMgdl(trace[j].Value)) / gap.Minutes()
			if best == nil || drop > *best {
				best = &drop
			}
		}
	}
	return best
}

func initialRate(sorted []glucose.Reading, onset time.Time) *float64 {
	early, ok := nearest(sorted, onset.Add(-15*time.Minute))
	if !ok {
		return nil
	}
	late, ok := nearest(sorted, onset.Add(-5*time.Minute))
	if !ok {
		return nil
	}
	minutes := late.Timestamp.Sub(early.Timestamp).Minutes()
	if minutes <= 0 {
		return nil
	}
	rate := (glucose.MmolToMgdl(late.Value) - glucose.MmolToMgdl(early.Value)) / minutes
	return &rate
}

func valueNear(sorted []glucose.Reading, target time.Time) *float64 {
	r, ok := nearest(sorted, target)
	if !ok {
		return nil
	}
	return &r.Value
}

// nearest finds the reading closest to target within GlucoseTolerance.
// Ties go to the earlier reading.
func nearest(sorted []glucose.Reading, target time.Time) (glucose.Reading, bool) {
	start, end := window(sorted, target.Add(-GlucoseTolerance), target.Add(GlucoseTolerance))

	var found glucose.Reading
	ok := false
	best := GlucoseTolerance
	for _, r := range sorted[start:end] {
		diff := r.Timestamp.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if !ok || diff < best {
			found, best, ok = r, diff, true
		}
	}
	return found, ok
}

// window returns the index range of sorted readings with timestamps in
// [from, to].
func window(sorted []glucose.Reading, from, to time.Time) (int, int) {
	start, _ := slices.BinarySearchFunc(sorted, from, func(r glucose.Reading, t time.Time) int {
		return r.Timestamp.Compare(t)
	})
	end := start
	for end < len(sorted) && !sorted[end].Timestamp.After(to) {
		end++
	}
	return start, end
}
