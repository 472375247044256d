package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCAGR(t *testing.T) {
	t.Run("doubling over four years", func(t *testing.T) {
		// 100 -> 200 over 4 growth periods: (2)^(1/4) - 1
		cagr := CAGR([]float64{100, 120, 150, 170, 200})
		require.NotNil(t, cagr)
		assert.InDelta(t, 0.189207, *cagr, 1e-5)
	})

	t.Run("flat series", func(t *testing.T) {
		cagr := CAGR([]float64{100, 100, 100})
		require.NotNil(t, cagr)
		assert.InDelta(t, 0.0, *cagr, 1e-9)
	})

	t.Run("undefined cases", func(t *testing.T) {
		assert.Nil(t, CAGR([]float64{100}), "single year")
		assert.Nil(t, CAGR(nil), "empty")
		assert.Nil(t, CAGR([]float64{0, 100}), "zero beginning value")
		assert.Nil(t, CAGR([]float64{-50, 100}), "negative beginning value")
		assert.Nil(t, CAGR([]float64{100, -50}), "negative ending value")
	})
}

func TestCAGROrDefault(t *testing.T) {
	assert.InDelta(t, 0.05, CAGROrDefault([]float64{100}, 0.05), 1e-9)

	got := CAGROrDefault([]float64{100, 121}, 0.05)
	assert.InDelta(t, 0.21, got, 1e-9)
}
