package glucose

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Variability summarizes the distribution of a glucose series.
// All values are nil when there are no finite readings.
type Variability struct {
	Count int `json:"count"`
	// Mean, StdDev, Min and Max are in mmol/L.
	Mean   *float64 `json:"mean,omitempty"`
	StdDev *float64 `json:"stdDev,omitempty"`
	// CV is the coefficient of variation in percent.
	CV *float64 `json:"cv,omitempty"`
	// GMI is the glucose management indicator (estimated HbA1c, %).
	GMI *float64 `json:"gmi,omitempty"`
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// CalculateGMI estimates HbA1c (%) from mean glucose in mmol/L.
func CalculateGMI(meanMmol float64) float64 {
	return 3.31 + 0.02392*MmolToMgdl(meanMmol)
}

// CalculateVariability computes mean, population standard deviation,
// coefficient of variation and GMI. Non-finite values are ignored.
func CalculateVariability(readings []Reading) Variability {
	values := make(stats.Float64Data, 0, len(readings))
	for _, r := range readings {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			continue
		}
		values = append(values, r.Value)
	}

	v := Variability{Count: len(values)}
	if len(values) == 0 {
		return v
	}

	mean, _ := stats.Mean(values)
	sd, _ := stats.StandardDeviationPopulation(values)
	lowest, _ := stats.Min(values)
	highest, _ := stats.Max(values)
	gmi := CalculateGMI(mean)

	v.Mean = &mean
	v.StdDev = &sd
	v.GMI = &gmi
	v.Min = &lowest
	v.Max = &highest
	if mean > 0 {
		cv := sd / mean * 100
		v.CV = &cv
	}
	return v
}
