// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for the snapshots database (always absolute)
	FMPAPIKey string // financialmodelingprep.com API key
	LogLevel  string
	Port      int
	DevMode   bool

	Valuation ValuationDefaults
	Watchlist WatchlistConfig
}

// ValuationDefaults holds the model parameters used when a request does not
// override them.
type ValuationDefaults struct {
	DiscountRate            float64 // WACC fallback when no capital-structure inputs exist
	EarningsGrowthRate      float64 // fallback constant EBIT growth, YoY
	CapExGrowthRate         float64 // fallback constant capex growth, YoY
	PerpetualGrowthRate     float64 // terminal growth for the Gordon perpetuity
	WorkingCapitalDecayRate float64 // annual multiplicative decay of the working-capital estimate
	RiskFreeRate            float64 // CAPM risk-free rate
	MarketPremium           float64 // CAPM equity risk premium
	TaxRateFloor            float64
	TaxRateCeiling          float64
	ForecastYears           int // explicit forecast horizon
	HistoricalYears         int // sliding-window length for historical runs
	SweepStep               float64
	SweepSteps              int
}

// WatchlistConfig holds the periodic revaluation job configuration.
type WatchlistConfig struct {
	Tickers       []string // tickers revalued on schedule; empty disables the job
	Schedule      string   // cron expression, e.g. "@daily"
	RetentionDays int      // stored runs older than this are pruned; 0 disables
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DCF_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:   absDataDir,
		FMPAPIKey: getEnv("FMP_API_KEY", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Port:      getEnvAsInt("DCF_PORT", 8080),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		Valuation: ValuationDefaults{
			DiscountRate:            getEnvAsFloat("DISCOUNT_RATE", 0.10),
			EarningsGrowthRate:      getEnvAsFloat("EARNINGS_GROWTH_RATE", 0.05),
			CapExGrowthRate:         getEnvAsFloat("CAP_EX_GROWTH_RATE", 0.045),
			PerpetualGrowthRate:     getEnvAsFloat("PERPETUAL_GROWTH_RATE", 0.05),
			WorkingCapitalDecayRate: getEnvAsFloat("WORKING_CAPITAL_DECAY_RATE", 0.7),
			RiskFreeRate:            getEnvAsFloat("RISK_FREE_RATE", 0.04),
			MarketPremium:           getEnvAsFloat("MARKET_PREMIUM", 0.06),
			TaxRateFloor:            getEnvAsFloat("TAX_RATE_FLOOR", 0.15),
			TaxRateCeiling:          getEnvAsFloat("TAX_RATE_CEILING", 0.35),
			ForecastYears:           getEnvAsInt("FORECAST_YEARS", 5),
			HistoricalYears:         getEnvAsInt("HISTORICAL_YEARS", 1),
			SweepStep:               getEnvAsFloat("SWEEP_STEP", 0.01),
			SweepSteps:              getEnvAsInt("SWEEP_STEPS", 5),
		},
		Watchlist: WatchlistConfig{
			Tickers:       getEnvAsList("WATCHLIST_TICKERS"),
			Schedule:      getEnv("WATCHLIST_SCHEDULE", "@daily"),
			RetentionDays: getEnvAsInt("RUN_RETENTION_DAYS", 90),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configured model parameters are coherent
func (c *Config) Validate() error {
	v := c.Valuation

	if v.ForecastYears < 1 {
		return fmt.Errorf("FORECAST_YEARS must be at least 1, got %d", v.ForecastYears)
	}
	if v.DiscountRate <= v.PerpetualGrowthRate {
		return fmt.Errorf("DISCOUNT_RATE (%.4f) must exceed PERPETUAL_GROWTH_RATE (%.4f)",
			v.DiscountRate, v.PerpetualGrowthRate)
	}
	if v.TaxRateFloor > v.TaxRateCeiling {
		return fmt.Errorf("TAX_RATE_FLOOR (%.2f) must not exceed TAX_RATE_CEILING (%.2f)",
			v.TaxRateFloor, v.TaxRateCeiling)
	}

	// Note: FMP_API_KEY is optional so the engine packages stay usable offline
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
