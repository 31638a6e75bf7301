package insulin

import (
	"slices"

	"github.com/samber/lo"
)

// DayTotals is the insulin delivered on one calendar date.
type DayTotals struct {
	Date  string  `json:"date"`
	Basal float64 `json:"basal"`
	Bolus float64 `json:"bolus"`
	Total float64 `json:"total"`
}

// DailyTotals sums doses per local date (in each dose's location), sorted
// by date.
func DailyTotals(doses []Dose) []DayTotals {
	byDate := lo.GroupBy(doses, func(d Dose) string {
		return d.Timestamp.Format("2006-01-02")
	})

	dates := lo.Keys(byDate)
	slices.Sort(dates)

	out := make([]DayTotals, 0, len(dates))
	for _, date := range dates {
		t := DayTotals{Date: date}
		for _, d := range byDate[date] {
			switch d.Type {
			case Basal:
				t.Basal += d.Units
			case Bolus:
				t.Bolus += d.Units
			}
		}
		t.Total = t.Basal + t.Bolus
		out = append(out, t)
	}
	return out
}
