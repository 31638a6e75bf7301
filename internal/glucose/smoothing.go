package glucose

// SmoothingWindow is the width of the centered moving average used by Smooth.
// It must be odd so the window is symmetric around each reading.
const SmoothingWindow = 3

// Smooth applies a centered moving average over SmoothingWindow readings.
// Readings are returned in chronological order with their timestamps
// unchanged. At the ends of the series the window shrinks to the
// neighbours that exist. Series shorter than the window are returned as a
// sorted copy without averaging.
func Smooth(readings []Reading) []Reading {
	sorted := Sorted(readings)
	if len(sorted) < SmoothingWindow {
		return sorted
	}

	half := SmoothingWindow / 2
	out := make([]Reading, len(sorted))
	for i := range sorted {
		start := max(0, i-half)
		end := min(len(sorted)-1, i+half)

		var sum float64
		for j := start; j <= end; j++ {
			sum += sorted[j].Value
		}
		out[i] = Reading{
			Timestamp: sorted[i].Timestamp,
			Value:     sum / float64(end-start+1),
		}
	}
	return out
}
