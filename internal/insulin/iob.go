package insulin

import (
	"time"

	"github.com/samber/lo"
)

// Point is the insulin on board at one instant, in units.
type Point struct {
	Time     time.Time `json:"time"`
	BasalIOB float64   `json:"basalIob"`
	BolusIOB float64   `json:"bolusIob"`
	TotalIOB float64   `json:"totalIob"`
}

// AtTime sums the decayed contribution of every dose given at or before at
// and less than duration ago. Doses after at are ignored.
func AtTime(doses []Dose, at time.Time, duration time.Duration) Point {
	return atTime(doses, at, NewCurve(duration))
}

func atTime(doses []Dose, at time.Time, curve Curve) Point {
	p := Point{Time: at}
	for _, d := range doses {
		if d.Timestamp.After(at) {
			continue
		}
		elapsed := at.Sub(d.Timestamp)
		if elapsed >= curve.Duration {
			continue
		}

		active := d.Units * curve.Remaining(elapsed)
		switch d.Type {
		case Basal:
			p.BasalIOB += active
		case Bolus:
			p.BolusIOB += active
		}
	}
	p.TotalIOB = p.BasalIOB + p.BolusIOB
	return p
}

// Daily samples IOB every interval from local midnight of date through 24
// hours later inclusive, so a 5 minute interval yields 289 points. Doses from the previous day still inside the action window are
// included. It panics if duration or interval is not positive.
func Daily(doses []Dose, date time.Time, duration, interval time.Duration) []Point {
	if interval <= 0 {
		panic("insulin: sampling interval must be positive")
	}
	curve := NewCurve(duration)

	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	// The grid spans 24 elapsed hours, so on DST change days the last
	// point is 23:00 or 01:00 local rather than the next midnight.
	end := start.Add(24 * time.Hour)

	relevant := lo.Filter(doses, func(dose Dose, _ int) bool {
		return !dose.Timestamp.After(end) && end.Sub(dose.Timestamp) < 24*time.Hour+duration
	})

	n := int(24*time.Hour/interval) + 1
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, atTime(relevant, start.Add(time.Duration(i)*interval), curve))
	}
	return points
}
