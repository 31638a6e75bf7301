package hypo

// Stats aggregates a list of periods.
type Stats struct {
	Total     int `json:"total"`
	Severe    int `json:"severe"`
	NonSevere int `json:"nonSevere"`
	// Lowest is the lowest nadir in mmol/L, nil when there are no periods.
	Lowest         *float64 `json:"lowest,omitempty"`
	LongestMinutes float64  `json:"longestMinutes"`
	TotalMinutes   float64  `json:"totalMinutes"`
}

// CalculateStats summarizes periods.
func CalculateStats(periods []Period) Stats {
	var s Stats
	for _, p := range periods {
		s.Total++
		if p.IsSevere {
			s.Severe++
		} else {
			s.NonSevere++
		}

		if s.Lowest == nil || p.Nadir < *s.Lowest {
			nadir := p.Nadir
			s.Lowest = &nadir
		}
		s.LongestMinutes = max(s.LongestMinutes, p.DurationMinutes)
		s.TotalMinutes += p.DurationMinutes
	}
	return s
}
