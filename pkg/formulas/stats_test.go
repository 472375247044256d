package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthSeries(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []float64
	}{
		{
			name:     "steady growth",
			values:   []float64{100, 110, 121},
			expected: []float64{0.10, 0.10},
		},
		{
			name:     "decline",
			values:   []float64{100, 80},
			expected: []float64{-0.20},
		},
		{
			name:     "zero base skipped",
			values:   []float64{100, 0, 50},
			expected: []float64{-1.0},
		},
		{
			name:     "negative base skipped",
			values:   []float64{-10, 20, 30},
			expected: []float64{0.5},
		},
		{
			name:     "too short",
			values:   []float64{100},
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := GrowthSeries(tt.values)
			require.Len(t, rates, len(tt.expected))
			for i, expected := range tt.expected {
				assert.InDelta(t, expected, rates[i], 1e-9)
			}
		})
	}
}

func TestTrailingMean(t *testing.T) {
	data := []float64{0.10, 0.20, 0.30, 0.40}

	assert.InDelta(t, 0.35, TrailingMean(data, 2), 1e-9)
	assert.InDelta(t, 0.25, TrailingMean(data, 10), 1e-9, "n beyond length means all values")
	assert.Equal(t, 0.0, TrailingMean(nil, 3))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
	assert.Equal(t, 0.0, Clamp(-2.0, 0.0, 1.0))
	assert.Equal(t, 1.0, Clamp(3.0, 0.0, 1.0))
}

func TestMeanAndStdDev(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 5.0, Mean(data), 1e-9)
	// Sample standard deviation
	assert.InDelta(t, 2.138089935, StdDev(data), 1e-6)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev(nil))
}
