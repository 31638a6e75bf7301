package glucose

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
)

const dateLayout = "2006-01-02"

// Synthetic rows appended to the day-of-week grouping.
const (
	Workday = "Workday"
	Weekend = "Weekend"
)

// DayStats are range stats for one calendar date (YYYY-MM-DD).
type DayStats struct {
	Date  string     `json:"date"`
	Stats RangeStats `json:"stats"`
}

// DayOfWeekStats are range stats for a weekday name or a synthetic
// Workday/Weekend row.
type DayOfWeekStats struct {
	Day   string     `json:"day"`
	Stats RangeStats `json:"stats"`
}

// WeekStats are range stats for a Monday-anchored week.
type WeekStats struct {
	WeekStart time.Time  `json:"weekStart"`
	Label     string     `json:"label"`
	Stats     RangeStats `json:"stats"`
}

// DateKey formats the local calendar date of t.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// GroupByDate partitions readings by local calendar date, oldest first.
func GroupByDate(readings []Reading, t Thresholds, mode Mode) []DayStats {
	groups := lo.GroupBy(readings, func(r Reading) string {
		return DateKey(r.Timestamp)
	})

	keys := lo.Keys(groups)
	slices.Sort(keys)

	out := make([]DayStats, 0, len(keys))
	for _, k := range keys {
		out = append(out, DayStats{
			Date:  k,
			Stats: CalculateRangeStats(groups[k], t, mode),
		})
	}
	return out
}

var weekdayOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// GroupByDayOfWeek partitions readings by weekday. Rows come Monday to
// Sunday and only for weekdays that have readings, followed by Workday
// (Mon-Fri) and Weekend (Sat-Sun) aggregates when those have readings.
func GroupByDayOfWeek(readings []Reading, t Thresholds, mode Mode) []DayOfWeekStats {
	groups := lo.GroupBy(readings, func(r Reading) time.Weekday {
		return r.Timestamp.Weekday()
	})

	var out []DayOfWeekStats
	workday := NewRangeStats(mode)
	weekend := NewRangeStats(mode)
	for _, d := range weekdayOrder {
		group, ok := groups[d]
		if !ok {
			continue
		}
		stats := CalculateRangeStats(group, t, mode)
		out = append(out, DayOfWeekStats{Day: d.String(), Stats: stats})

		if isWeekend(d) {
			weekend = weekend.Merge(stats)
		} else {
			workday = workday.Merge(stats)
		}
	}

	if workday.Total > 0 {
		out = append(out, DayOfWeekStats{Day: Workday, Stats: workday})
	}
	if weekend.Total > 0 {
		out = append(out, DayOfWeekStats{Day: Weekend, Stats: weekend})
	}
	return out
}

// WeekStart returns local midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// FormatWeekRange renders the Monday-Sunday span starting at start as
// "Jan 6-12", or "Jan 27-Feb 2" when the week crosses a month boundary.
func FormatWeekRange(start time.Time) string {
	end := start.AddDate(0, 0, 6)
	if start.Month() == end.Month() {
		return fmt.Sprintf("%s %d-%d", start.Format("Jan"), start.Day(), end.Day())
	}
	return fmt.Sprintf("%s %d-%s %d", start.Format("Jan"), start.Day(), end.Format("Jan"), end.Day())
}

// GroupByWeek partitions readings by Monday-anchored week, oldest first.
func GroupByWeek(readings []Reading, t Thresholds, mode Mode) []WeekStats {
	groups := lo.GroupBy(readings, func(r Reading) string {
		return DateKey(WeekStart(r.Timestamp))
	})

	keys := lo.Keys(groups)
	slices.Sort(keys)

	out := make([]WeekStats, 0, len(keys))
	for _, k := range keys {
		group := groups[k]
		start := WeekStart(group[0].Timestamp)
		out = append(out, WeekStats{
			WeekStart: start,
			Label:     FormatWeekRange(start),
			Stats:     CalculateRangeStats(group, t, mode),
		})
	}
	return out
}
