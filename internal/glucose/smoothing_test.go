package glucose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(start time.Time, values ...float64) []Reading {
	out := make([]Reading, len(values))
	for i, v := range values {
		out[i] = Reading{Timestamp: start.Add(time.Duration(i) * 5 * time.Minute), Value: v}
	}
	return out
}

func TestSmoothCenteredWindow(t *testing.T) {
	start := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	in := series(start, 6, 6, 12, 6, 6)

	out := Smooth(in)

	require.Len(t, out, 5)
	// Edges average over the two readings that exist.
	assert.InDelta(t, 6.0, out[0].Value, 1e-9)
	assert.InDelta(t, 8.0, out[1].Value, 1e-9)
	assert.InDelta(t, 8.0, out[2].Value, 1e-9)
	assert.InDelta(t, 8.0, out[3].Value, 1e-9)
	assert.InDelta(t, 6.0, out[4].Value, 1e-9)

	for i := range in {
		assert.Equal(t, in[i].Timestamp, out[i].Timestamp)
	}
	// Input is not modified.
	assert.Equal(t, 12.0, in[2].Value)
}

func TestSmoothShortSeriesUnchanged(t *testing.T) {
	start := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	in := series(start, 5, 9)

	out := Smooth(in)

	assert.Equal(t, in, out)
	assert.Empty(t, Smooth(nil))
}

func TestSmoothSortsInput(t *testing.T) {
	start := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	in := series(start, 4, 5, 6)
	in[0], in[2] = in[2], in[0]

	out := Smooth(in)

	require.Len(t, out, 3)
	assert.Equal(t, start, out[0].Timestamp)
	assert.InDelta(t, 4.5, out[0].Value, 1e-9)
	assert.InDelta(t, 5.0, out[1].Value, 1e-9)
	assert.InDelta(t, 5.5, out[2].Value, 1e-9)
}

func TestSmoothKeepsConstantSeries(t *testing.T) {
	start := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	out := Smooth(series(start, 7, 7, 7, 7, 7, 7))

	for _, r := range out {
		assert.InDelta(t, 7.0, r.Value, 1e-9)
	}
}
