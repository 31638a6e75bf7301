// Package hypo finds hypoglycemic periods in a glucose series and scores
// low-glucose risk.
package hypo

import (
	"time"

	"github.com/iricigor/glooko-analytics/internal/glucose"
)

// Period is one contiguous run of readings below the low threshold.
// Values are in mmol/L.
type Period struct {
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	NadirTime       time.Time `json:"nadirTime"`
	Nadir           float64   `json:"nadir"`
	DurationMinutes float64   `json:"durationMinutes"`
	IsSevere        bool      `json:"isSevere"`
}

type scanState int

const (
	stateInRange scanState = iota
	stateInHypo
)

// scanner folds readings into periods. It holds the open period while in
// stateInHypo.
type scanner struct {
	thresholds glucose.Thresholds
	state      scanState
	open       Period
	periods    []Period
}

func (s *scanner) step(r glucose.Reading) {
	below := r.Value < s.thresholds.Low

	switch s.state {
	case stateInRange:
		if below {
			s.open = Period{
				StartTime: r.Timestamp,
				NadirTime: r.Timestamp,
				Nadir:     r.Value,
			}
			s.state = stateInHypo
		}
	case stateInHypo:
		if below {
			if r.Value < s.open.Nadir {
				s.open.Nadir = r.Value
				s.open.NadirTime = r.Timestamp
			}
			return
		}
		s.close(r.Timestamp)
	}
}

// close ends the open period at end and returns to stateInRange.
func (s *scanner) close(end time.Time) {
	p := s.open
	p.EndTime = end
	p.DurationMinutes = end.Sub(p.StartTime).Minutes()
	p.IsSevere = p.Nadir < s.thresholds.VeryLow
	s.periods = append(s.periods, p)
	s.open = Period{}
	s.state = stateInRange
}

// Detect scans the readings in chronological order. A period starts at
// the first reading below Low and ends at the next reading at or above
// Low. A period still open at the end of the series closes at the last
// reading, so a lone trailing low reading yields a zero-minute period.
func Detect(readings []glucose.Reading, t glucose.Thresholds) []Period {
	sorted := glucose.Sorted(readings)

	s := &scanner{thresholds: t}
	for _, r := range sorted {
		s.step(r)
	}
	if s.state == stateInHypo {
		s.close(sorted[len(sorted)-1].Timestamp)
	}
	return s.periods
}
