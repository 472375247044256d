package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DCF_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)

	assert.Equal(t, 0.10, cfg.Valuation.DiscountRate)
	assert.Equal(t, 0.05, cfg.Valuation.EarningsGrowthRate)
	assert.Equal(t, 0.045, cfg.Valuation.CapExGrowthRate)
	assert.Equal(t, 0.05, cfg.Valuation.PerpetualGrowthRate)
	assert.Equal(t, 0.7, cfg.Valuation.WorkingCapitalDecayRate)
	assert.Equal(t, 5, cfg.Valuation.ForecastYears)
	assert.Equal(t, 1, cfg.Valuation.HistoricalYears)

	assert.Empty(t, cfg.Watchlist.Tickers)
	assert.Equal(t, "@daily", cfg.Watchlist.Schedule)
	assert.Equal(t, 90, cfg.Watchlist.RetentionDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DCF_DATA_DIR", t.TempDir())
	t.Setenv("DCF_PORT", "9090")
	t.Setenv("DISCOUNT_RATE", "0.12")
	t.Setenv("FORECAST_YEARS", "10")
	t.Setenv("WATCHLIST_TICKERS", "aapl, msft ,goog")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 0.12, cfg.Valuation.DiscountRate)
	assert.Equal(t, 10, cfg.Valuation.ForecastYears)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, cfg.Watchlist.Tickers, "tickers trimmed and uppercased")
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("DCF_DATA_DIR", t.TempDir())
	t.Setenv("DCF_PORT", "not-a-port")
	t.Setenv("DISCOUNT_RATE", "ten percent")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0.10, cfg.Valuation.DiscountRate)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Valuation: ValuationDefaults{
				DiscountRate:        0.10,
				PerpetualGrowthRate: 0.05,
				TaxRateFloor:        0.15,
				TaxRateCeiling:      0.35,
				ForecastYears:       5,
			},
		}
	}

	t.Run("coherent config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("zero horizon fails", func(t *testing.T) {
		cfg := valid()
		cfg.Valuation.ForecastYears = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("discount not above perpetual growth fails", func(t *testing.T) {
		cfg := valid()
		cfg.Valuation.PerpetualGrowthRate = cfg.Valuation.DiscountRate
		assert.Error(t, cfg.Validate())
	})

	t.Run("inverted tax band fails", func(t *testing.T) {
		cfg := valid()
		cfg.Valuation.TaxRateFloor = 0.40
		assert.Error(t, cfg.Validate())
	})
}
