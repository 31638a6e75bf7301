package hypo

import (
	"math"

	"github.com/iricigor/glooko-analytics/internal/glucose"
)

// riskSymmetry is the Kovatchev transform f(BG) for BG in mg/dL. The
// second return is false when the value has no defined transform.
func riskSymmetry(mmol float64) (float64, bool) {
	if math.IsNaN(mmol) || math.IsInf(mmol, 0) || mmol <= 0 {
		return 0, false
	}
	lnBG := math.Log(glucose.MmolToMgdl(mmol))
	if lnBG <= 0 {
		return 0, false
	}
	return 1.509 * (math.Pow(lnBG, 1.084) - 5.381), true
}

// riskIndex averages 10*f(BG)^2 over valid readings, counting only the
// side of the transform selected by keep.
func riskIndex(readings []glucose.Reading, keep func(f float64) bool) float64 {
	var sum float64
	var n int
	for _, r := range readings {
		f, ok := riskSymmetry(r.Value)
		if !ok {
			continue
		}
		n++
		if keep(f) {
			sum += 10 * f * f
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// CalculateLBGI returns the Low Blood Glucose Index. Readings with
// non-positive or non-finite values are excluded.
func CalculateLBGI(readings []glucose.Reading) float64 {
	return riskIndex(readings, func(f float64) bool { return f < 0 })
}

// CalculateHBGI returns the High Blood Glucose Index.
func CalculateHBGI(readings []glucose.Reading) float64 {
	return riskIndex(readings, func(f float64) bool { return f > 0 })
}
