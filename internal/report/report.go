// Package report composes the analytics packages into a multi-day report.
package report

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/iricigor/glooko-analytics/internal/agp"
	"github.com/iricigor/glooko-analytics/internal/features"
	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/hypo"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Options are the analysis settings.
type Options struct {
	Thresholds      glucose.Thresholds
	Mode            glucose.Mode
	InsulinDuration time.Duration
	IOBInterval     time.Duration
	// Smooth applies glucose.Smooth before any statistics.
	Smooth bool
	// Location defines calendar days and time of day. Nil means time.Local.
	Location *time.Location
}

// DefaultOptions returns consensus thresholds, three categories, a 5 hour
// insulin action and 5 minute IOB sampling.
func DefaultOptions() Options {
	return Options{
		Thresholds:      glucose.DefaultThresholds(),
		Mode:            glucose.ThreeCategory,
		InsulinDuration: insulin.DefaultDuration,
		IOBInterval:     insulin.DefaultInterval,
		Location:        time.Local,
	}
}

func (o Options) validate() error {
	if _, err := glucose.ParseMode(int(o.Mode)); err != nil {
		return err
	}
	if o.InsulinDuration <= 0 {
		return fmt.Errorf("insulin duration must be positive")
	}
	if o.IOBInterval <= 0 {
		return fmt.Errorf("iob interval must be positive")
	}
	return nil
}

// Day is the per-date section of a report.
type Day struct {
	Date        string                   `json:"date"`
	Stats       glucose.RangeStats       `json:"stats"`
	Percentages glucose.RangePercentages `json:"percentages"`
	Variability glucose.Variability      `json:"variability"`
	LBGI        float64                  `json:"lbgi"`
	Hypos       []hypo.Period            `json:"hypos"`
	IOB         []insulin.Point          `json:"iob,omitempty"`
}

// Report is the full analysis of a data set. Glucose values are mmol/L.
type Report struct {
	Start      *time.Time         `json:"start,omitempty"`
	End        *time.Time         `json:"end,omitempty"`
	Mode       glucose.Mode       `json:"mode"`
	Thresholds glucose.Thresholds `json:"thresholds"`

	Stats       glucose.RangeStats       `json:"stats"`
	Percentages glucose.RangePercentages `json:"percentages"`
	Variability glucose.Variability      `json:"variability"`
	LBGI        float64                  `json:"lbgi"`
	HBGI        float64                  `json:"hbgi"`

	Hypos      []hypo.Period    `json:"hypos"`
	HypoStats  hypo.Stats       `json:"hypoStats"`
	HypoEvents []features.Event `json:"hypoEvents"`

	ByDate      []glucose.DayStats       `json:"byDate"`
	ByDayOfWeek []glucose.DayOfWeekStats `json:"byDayOfWeek"`
	ByWeek      []glucose.WeekStats      `json:"byWeek"`
	AGP         []agp.Slot               `json:"agp"`

	InsulinTotals []insulin.DayTotals `json:"insulinTotals"`
	Days          []Day               `json:"days"`
}

// Build analyzes readings and doses. Per-day sections are computed
// concurrently; cancelling ctx aborts the build.
func Build(ctx context.Context, readings []glucose.Reading, doses []insulin.Dose, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid report options: %w", err)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	// Non-finite values are dropped before any statistic sees them.
	finite := lo.Filter(readings, func(r glucose.Reading, _ int) bool {
		return !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0)
	})
	series := glucose.Sorted(lo.Map(finite, func(r glucose.Reading, _ int) glucose.Reading {
		return glucose.Reading{Timestamp: r.Timestamp.In(loc), Value: r.Value}
	}))
	if opts.Smooth {
		series = glucose.Smooth(series)
	}
	localDoses := lo.Map(doses, func(d insulin.Dose, _ int) insulin.Dose {
		d.Timestamp = d.Timestamp.In(loc)
		return d
	})
	slices.SortStableFunc(localDoses, func(a, b insulin.Dose) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	th, mode := opts.Thresholds, opts.Mode
	stats := glucose.CalculateRangeStats(series, th, mode)
	periods := hypo.Detect(series, th)

	r := &Report{
		Mode:          mode,
		Thresholds:    th,
		Stats:         stats,
		Percentages:   stats.Percentages(),
		Variability:   glucose.CalculateVariability(series),
		LBGI:          hypo.CalculateLBGI(series),
		HBGI:          hypo.CalculateHBGI(series),
		Hypos:         periods,
		HypoStats:     hypo.CalculateStats(periods),
		HypoEvents:    features.Extract(periods, series, localDoses),
		ByDate:        glucose.GroupByDate(series, th, mode),
		ByDayOfWeek:   glucose.GroupByDayOfWeek(series, th, mode),
		ByWeek:        glucose.GroupByWeek(series, th, mode),
		AGP:           agp.Compute(series),
		InsulinTotals: insulin.DailyTotals(localDoses),
	}
	if len(series) > 0 {
		r.Start = &series[0].Timestamp
		r.End = &series[len(series)-1].Timestamp
	}

	days, err := buildDays(ctx, series, localDoses, periods, opts, loc)
	if err != nil {
		return nil, err
	}
	r.Days = days
	return r, nil
}

// buildDays assigns each period to the date it starts on, so a low that
// crosses midnight stays one period on its first day.
func buildDays(ctx context.Context, series []glucose.Reading, doses []insulin.Dose, periods []hypo.Period, opts Options, loc *time.Location) ([]Day, error) {
	byDate := lo.GroupBy(series, func(r glucose.Reading) string {
		return glucose.DateKey(r.Timestamp)
	})
	hyposByDate := lo.GroupBy(periods, func(p hypo.Period) string {
		return glucose.DateKey(p.StartTime)
	})
	dates := lo.Uniq(append(lo.Keys(byDate), lo.Map(doses, func(d insulin.Dose, _ int) string {
		return glucose.DateKey(d.Timestamp)
	})...))
	slices.Sort(dates)

	days := make([]Day, len(dates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			midnight, err := time.ParseInLocation("2006-01-02", date, loc)
			if err != nil {
				return fmt.Errorf("failed to parse date %s: %w", date, err)
			}
			days[i] = buildDay(date, midnight, byDate[date], hyposByDate[date], doses, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return days, nil
}

func buildDay(date string, midnight time.Time, readings []glucose.Reading, periods []hypo.Period, doses []insulin.Dose, opts Options) Day {
	stats := glucose.CalculateRangeStats(readings, opts.Thresholds, opts.Mode)
	d := Day{
		Date:        date,
		Stats:       stats,
		Percentages: stats.Percentages(),
		Variability: glucose.CalculateVariability(readings),
		LBGI:        hypo.CalculateLBGI(readings),
		Hypos:       periods,
	}
	if len(doses) > 0 {
		d.IOB = insulin.Daily(doses, midnight, opts.InsulinDuration, opts.IOBInterval)
	}
	return d
}
