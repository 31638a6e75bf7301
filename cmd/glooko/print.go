package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/iricigor/glooko-analytics/internal/agp"
	"github.com/iricigor/glooko-analytics/internal/config"
	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"github.com/iricigor/glooko-analytics/internal/report"
	"github.com/samber/lo"
)

func formatGlucose(mmol float64, u glucose.Unit) string {
	v := glucose.ConvertValue(mmol, u)
	if u == glucose.UnitMgdl {
		return fmt.Sprintf("%.0f %s", v, u)
	}
	return fmt.Sprintf("%.1f %s", v, u)
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func formatOptionalGlucose(v *float64, u glucose.Unit) string {
	if v == nil {
		return "-"
	}
	return formatGlucose(*v, u)
}

func printReport(w io.Writer, r *report.Report, u glucose.Unit) {
	if r.Start == nil {
		fmt.Fprintln(w, "No glucose readings.")
		return
	}
	fmt.Fprintf(w, "Period: %s to %s (%d days)\n",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), len(r.ByDate))
	fmt.Fprintf(w, "Readings: %d\n", r.Stats.Total)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Time in range:")
	p := r.Percentages
	if p.VeryHigh != nil {
		fmt.Fprintf(w, "  Very high  %5.1f%%\n", *p.VeryHigh)
	}
	fmt.Fprintf(w, "  High       %5.1f%%\n", p.High)
	fmt.Fprintf(w, "  In range   %5.1f%%\n", p.InRange)
	fmt.Fprintf(w, "  Low        %5.1f%%\n", p.Low)
	if p.VeryLow != nil {
		fmt.Fprintf(w, "  Very low   %5.1f%%\n", *p.VeryLow)
	}
	fmt.Fprintln(w)

	v := r.Variability
	fmt.Fprintln(w, "Variability:")
	fmt.Fprintf(w, "  Mean       %s\n", formatOptionalGlucose(v.Mean, u))
	fmt.Fprintf(w, "  SD         %s\n", formatOptionalGlucose(v.StdDev, u))
	fmt.Fprintf(w, "  CV         %s\n", formatOptional(v.CV, "%.1f%%"))
	fmt.Fprintf(w, "  GMI        %s\n", formatOptional(v.GMI, "%.1f%%"))
	fmt.Fprintf(w, "  LBGI       %.2f\n", r.LBGI)
	fmt.Fprintf(w, "  HBGI       %.2f\n", r.HBGI)
	fmt.Fprintln(w)

	h := r.HypoStats
	fmt.Fprintf(w, "Hypoglycemia: %d event(s), %d severe\n", h.Total, h.Severe)
	if h.Lowest != nil {
		fmt.Fprintf(w, "  Lowest     %s\n", formatGlucose(*h.Lowest, u))
		fmt.Fprintf(w, "  Longest    %.0f min\n", h.LongestMinutes)
		fmt.Fprintf(w, "  Total      %.0f min\n", h.TotalMinutes)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "By day of week:")
	for _, d := range r.ByDayOfWeek {
		fmt.Fprintf(w, "  %-10s %5.1f%% in range (%d)\n", d.Day, d.Stats.Percentages().InRange, d.Stats.Total)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "By week:")
	for _, wk := range r.ByWeek {
		fmt.Fprintf(w, "  %-14s %5.1f%% in range (%d)\n", wk.Label, wk.Stats.Percentages().InRange, wk.Stats.Total)
	}
}

func printHypoEvents(w io.Writer, r *report.Report, u glucose.Unit) {
	if len(r.HypoEvents) == 0 {
		fmt.Fprintln(w, "No hypoglycemia events.")
		return
	}

	for _, e := range r.HypoEvents {
		severity := ""
		if e.IsSevere {
			severity = " SEVERE"
		}
		fmt.Fprintf(w, "%s  %s  %3.0f min  nadir %s at %s%s\n",
			e.EventID, e.StartTime.Format("2006-01-02 15:04"), e.DurationMinutes,
			formatGlucose(e.Nadir, u), e.NadirTime.Format("15:04"), severity)

		if e.Bolus1 != nil {
			fmt.Fprintf(w, "      bolus %.2f U %.0f min before", e.Bolus1.Units, e.Bolus1.MinutesPrior)
			if e.Bolus2 != nil {
				fmt.Fprintf(w, ", %.2f U %.0f min before", e.Bolus2.Units, e.Bolus2.MinutesPrior)
			}
			fmt.Fprintln(w)
		}
		if e.BasalHour1 != nil {
			fmt.Fprintf(w, "      basal %.2f / %.2f / %.2f U in hours -1 / -3 / -5\n",
				*e.BasalHour1, *e.BasalHour3, *e.BasalHour5)
		}
		fmt.Fprintf(w, "      glucose -60 %s, -30 %s, -10 %s, nadir+15 %s\n",
			formatOptionalGlucose(e.GlucoseMinus60, u),
			formatOptionalGlucose(e.GlucoseMinus30, u),
			formatOptionalGlucose(e.GlucoseMinus10, u),
			formatOptionalGlucose(e.NadirPlus15, u))
		fmt.Fprintf(w, "      max drop %s, initial rate %s\n",
			formatOptional(e.MaxDropRate, "%.2f mg/dL/min"),
			formatOptional(e.InitialRate, "%.2f mg/dL/min"))
	}
}

func printIOB(w io.Writer, date string, points []insulin.Point, loc *time.Location) {
	fmt.Fprintf(w, "Insulin on board for %s:\n", date)
	fmt.Fprintf(w, "  %-5s  %6s  %6s  %6s\n", "Time", "Basal", "Bolus", "Total")
	for _, p := range points {
		label := iobLabel(p.Time.In(loc), points[0].Time.In(loc))
		fmt.Fprintf(w, "  %-5s  %6.2f  %6.2f  %6.2f\n", label, p.BasalIOB, p.BolusIOB, p.TotalIOB)
	}
}

// iobLabel is the local clock time of t. Times on the day after start
// read "24:00" at midnight and carry a "+1" suffix otherwise.
func iobLabel(t, start time.Time) string {
	clock := t.Format("15:04")
	if t.YearDay() == start.YearDay() && t.Year() == start.Year() {
		return clock
	}
	if clock == "00:00" {
		return "24:00"
	}
	return clock + "+1"
}

const chartWidth = 50

// agpScale is the top of the chart in mmol/L.
const agpScale = 20.0

// printAGP draws one row per hour: the 10-90 band as ░, 25-75 as ▓ and
// the median as █, scaled to 0-agpScale.
func printAGP(w io.Writer, slots []agp.Slot, u glucose.Unit) {
	scale := "0 .. " + formatGlucose(agpScale, u)
	fmt.Fprintf(w, "%-5s  %-*s  %s\n", "Time", chartWidth, scale, "median (p10-p90)")
	for i := 0; i < len(slots); i += 60 / agp.SlotMinutes {
		s := slots[i]
		if s.P50 == nil {
			fmt.Fprintf(w, "%-5s  %s\n", s.Label, strings.Repeat(" ", chartWidth))
			continue
		}
		fmt.Fprintf(w, "%-5s  %s  %s (%s-%s)\n", s.Label, agpBar(s),
			formatGlucose(*s.P50, u), formatGlucose(*s.P10, u), formatGlucose(*s.P90, u))
	}
}

func agpBar(s agp.Slot) string {
	col := func(v float64) int {
		return lo.Clamp(int(v/agpScale*chartWidth), 0, chartWidth-1)
	}
	bar := []rune(strings.Repeat(" ", chartWidth))
	for x := col(*s.P10); x <= col(*s.P90); x++ {
		bar[x] = '░'
	}
	for x := col(*s.P25); x <= col(*s.P75); x++ {
		bar[x] = '▓'
	}
	bar[col(*s.P50)] = '█'
	return string(bar)
}

func printSettings(w io.Writer, stored map[string]string) {
	if len(stored) == 0 {
		fmt.Fprintln(w, "No stored settings.")
		fmt.Fprintf(w, "Available keys: %s\n", strings.Join(config.SettingKeys(), ", "))
		return
	}
	keys := lo.Keys(stored)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-18s %s\n", k, stored[k])
	}
}

func printConfig(w io.Writer, c *config.Config) {
	fmt.Fprintf(w, "Database:          %s\n", c.DBPath)
	fmt.Fprintf(w, "Timezone:          %s\n", c.Timezone)
	fmt.Fprintf(w, "Unit:              %s\n", c.DisplayUnit())
	fmt.Fprintf(w, "Thresholds:        %.1f / %.1f / %.1f / %.1f mmol/L\n", c.VeryLow, c.Low, c.High, c.VeryHigh)
	fmt.Fprintf(w, "Categories:        %d\n", c.CategoryMode)
	fmt.Fprintf(w, "Insulin duration:  %s\n", c.InsulinDuration)
	fmt.Fprintf(w, "IOB interval:      %s\n", c.IOBInterval)
	fmt.Fprintf(w, "Smoothing:         %t\n", c.Smooth)
	fmt.Fprintf(w, "Logging:           %s (%s)\n", c.LogLevel, c.LogFormat)
}
