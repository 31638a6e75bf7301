package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/iricigor/glooko-analytics/internal/features"
	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"github.com/shopspring/decimal"
)

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// glucosePlaces is the display precision for each unit.
func glucosePlaces(u glucose.Unit) int32 {
	if u == glucose.UnitMgdl {
		return 0
	}
	return 1
}

// fixed renders v with places decimals, or an empty cell when v is NaN or Inf.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func optional(v *float64, places int32) string {
	if v == nil {
		return ""
	}
	return fixed(*v, places)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalGlucose(v *float64, u glucose.Unit) string {
	if v == nil {
		return ""
	}
	return fixed(glucose.ConvertValue(*v, u), glucosePlaces(u))
}

// DailyHeader is the header row written by WriteDailyCSV.
var DailyHeader = []string{
	"date", "readings", "very_low", "low", "in_range", "high", "very_high",
	"pct_in_range", "mean", "cv", "lbgi", "hypos",
	"basal_units", "bolus_units", "total_units",
}

// WriteDailyCSV writes one row per day. Glucose values are in unit u and
// five-category columns are empty in three-category mode.
func WriteDailyCSV(w io.Writer, r *Report, u glucose.Unit) error {
	totals := make(map[string]insulin.DayTotals, len(r.InsulinTotals))
	for _, t := range r.InsulinTotals {
		totals[t.Date] = t
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(DailyHeader); err != nil {
		return err
	}
	for _, d := range r.Days {
		row := []string{
			d.Date,
			strconv.Itoa(d.Stats.Total),
			optionalInt(d.Stats.VeryLow),
			strconv.Itoa(d.Stats.Low),
			strconv.Itoa(d.Stats.InRange),
			strconv.Itoa(d.Stats.High),
			optionalInt(d.Stats.VeryHigh),
			fixed(d.Percentages.InRange, 1),
			optionalGlucose(d.Variability.Mean, u),
			optional(d.Variability.CV, 1),
			fixed(d.LBGI, 2),
			strconv.Itoa(len(d.Hypos)),
		}
		if t, ok := totals[d.Date]; ok {
			row = append(row, fixed(t.Basal, 2), fixed(t.Bolus, 2), fixed(t.Total, 2))
		} else {
			row = append(row, "", "", "")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// HypoEventsHeader is the header row written by WriteHypoEventsCSV.
var HypoEventsHeader = []string{
	"event_id", "start", "end", "nadir_time", "nadir", "duration_min", "severe",
	"bolus1_units", "bolus1_min_prior", "bolus2_units", "bolus2_min_prior",
	"basal_h1", "basal_h3", "basal_h5",
	"max_drop_rate", "initial_rate",
	"bg_minus60", "bg_minus30", "bg_minus10", "bg_nadir_plus15",
}

func bolusColumns(b *features.BolusContext) []string {
	if b == nil {
		return []string{"", ""}
	}
	return []string{fixed(b.Units, 2), fixed(b.MinutesPrior, 0)}
}

// WriteHypoEventsCSV writes one row per event. Missing features are empty
// cells. Glucose values are in unit u, rates stay in mg/dL per minute.
func WriteHypoEventsCSV(w io.Writer, events []features.Event, u glucose.Unit) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HypoEventsHeader); err != nil {
		return err
	}
	places := glucosePlaces(u)
	for _, e := range events {
		row := []string{
			e.EventID,
			e.StartTime.Format(time.RFC3339),
			e.EndTime.Format(time.RFC3339),
			e.NadirTime.Format(time.RFC3339),
			fixed(glucose.ConvertValue(e.Nadir, u), places),
			fixed(e.DurationMinutes, 0),
			strconv.FormatBool(e.IsSevere),
		}
		row = append(row, bolusColumns(e.Bolus1)...)
		row = append(row, bolusColumns(e.Bolus2)...)
		row = append(row,
			optional(e.BasalHour1, 2),
			optional(e.BasalHour3, 2),
			optional(e.BasalHour5, 2),
			optional(e.MaxDropRate, 2),
			optional(e.InitialRate, 2),
			optionalGlucose(e.GlucoseMinus60, u),
			optionalGlucose(e.GlucoseMinus30, u),
			optionalGlucose(e.GlucoseMinus10, u),
			optionalGlucose(e.NadirPlus15, u),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
