package glucose

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeThreeBands(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		value    float64
		expected Category
	}{
		{2.0, CategoryLow},
		{3.89, CategoryLow},
		{3.9, CategoryInRange},
		{7.0, CategoryInRange},
		{10.0, CategoryInRange},
		{10.01, CategoryHigh},
		{25.0, CategoryHigh},
	}

	for _, tt := range tests {
		result := Categorize(tt.value, th, ThreeCategory)
		if result != tt.expected {
			t.Errorf("Categorize(%v, 3) = %s, want %s", tt.value, result, tt.expected)
		}
	}
}

func TestCategorizeFiveBands(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		value    float64
		expected Category
	}{
		{1.5, CategoryVeryLow},
		{2.99, CategoryVeryLow},
		{3.0, CategoryLow},
		{3.89, CategoryLow},
		{3.9, CategoryInRange},
		{10.0, CategoryInRange},
		{10.01, CategoryHigh},
		{13.9, CategoryHigh},
		{13.91, CategoryVeryHigh},
		{30.0, CategoryVeryHigh},
	}

	for _, tt := range tests {
		result := Categorize(tt.value, th, FiveCategory)
		if result != tt.expected {
			t.Errorf("Categorize(%v, 5) = %s, want %s", tt.value, result, tt.expected)
		}
	}
}

func TestCategorizeUnknownModePanics(t *testing.T) {
	assert.Panics(t, func() {
		Categorize(5.0, DefaultThresholds(), Mode(4))
	})
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(3)
	assert.NoError(t, err)
	assert.Equal(t, ThreeCategory, m)

	m, err = ParseMode(5)
	assert.NoError(t, err)
	assert.Equal(t, FiveCategory, m)

	_, err = ParseMode(4)
	assert.Error(t, err)
}

func randomThresholds(rng *rand.Rand) Thresholds {
	vl := 1 + rng.Float64()*3
	l := vl + 0.1 + rng.Float64()*2
	h := l + 0.1 + rng.Float64()*8
	vh := h + 0.1 + rng.Float64()*8
	return Thresholds{VeryLow: vl, Low: l, High: h, VeryHigh: vh}
}

func bandIndex(mode Mode, c Category) int {
	for i, cat := range Categories(mode) {
		if cat == c {
			return i
		}
	}
	return -1
}

// Bands are exhaustive and ordered: raising the value never moves a
// reading into a lower band.
func TestCategorizePartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, mode := range []Mode{ThreeCategory, FiveCategory} {
		for i := 0; i < 200; i++ {
			th := randomThresholds(rng)
			prev := -1
			for v := 0.0; v <= 30; v += 0.05 {
				idx := bandIndex(mode, Categorize(v, th, mode))
				if idx < 0 {
					t.Fatalf("mode %d: value %v mapped to no band", mode, v)
				}
				if idx < prev {
					t.Fatalf("mode %d: value %v went from band %d back to %d", mode, v, prev, idx)
				}
				prev = idx
			}
			for _, b := range []float64{th.VeryLow, th.Low, th.High, th.VeryHigh} {
				assert.GreaterOrEqual(t, bandIndex(mode, Categorize(b, th, mode)), 0)
			}
		}
	}
}
