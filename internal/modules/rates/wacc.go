// Package rates estimates the discount rate (WACC) from capital-structure
// inputs via CAPM, falling back to the cost of equity when none are supplied.
package rates

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/halessi/dcf/pkg/formulas"
)

// Default equity betas by industry, used when no explicit beta is supplied.
// Unknown industries fall back to the market beta of 1.0.
var industryBetas = map[string]float64{
	"technology":             1.20,
	"consumer discretionary": 1.10,
	"communication services": 1.05,
	"industrials":            1.00,
	"financials":             1.00,
	"energy":                 1.05,
	"materials":              0.95,
	"healthcare":             0.85,
	"consumer staples":       0.70,
	"real estate":            0.80,
	"utilities":              0.60,
}

// Inputs are the optional capital-structure parameters. A nil field means
// "not supplied" and triggers the documented fallback.
type Inputs struct {
	EquityBeta   *float64
	DebtToEquity *float64
	TaxRate      *float64
	Industry     string
}

// Estimator computes WACC via CAPM.
type Estimator struct {
	riskFreeRate   float64
	marketPremium  float64
	taxRateFloor   float64
	taxRateCeiling float64
	log            zerolog.Logger
}

// New creates a new discount-rate estimator.
func New(riskFreeRate, marketPremium, taxRateFloor, taxRateCeiling float64, log zerolog.Logger) *Estimator {
	return &Estimator{
		riskFreeRate:   riskFreeRate,
		marketPremium:  marketPremium,
		taxRateFloor:   taxRateFloor,
		taxRateCeiling: taxRateCeiling,
		log:            log.With().Str("component", "rate_estimator").Logger(),
	}
}

// Estimate computes the discount rate:
//
//	cost_of_equity = risk_free + beta * market_premium
//
// With no debt-to-equity ratio the cost of equity serves as the WACC proxy.
// Otherwise the cost of debt is spread off the risk-free rate (capped at
// +5%), and the tax shield uses the effective tax rate clamped to the
// configured band.
func (e *Estimator) Estimate(in Inputs) float64 {
	beta := 1.0
	switch {
	case in.EquityBeta != nil:
		beta = *in.EquityBeta
	case in.Industry != "":
		if b, ok := industryBetas[in.Industry]; ok {
			beta = b
		}
	}

	costOfEquity := e.riskFreeRate + beta*e.marketPremium

	if in.DebtToEquity == nil {
		e.log.Debug().
			Float64("beta", beta).
			Float64("cost_of_equity", costOfEquity).
			Msg("No capital structure inputs, using cost of equity as WACC proxy")
		return costOfEquity
	}

	de := *in.DebtToEquity
	costOfDebt := e.riskFreeRate + math.Min(0.05, de*0.02)

	equityWeight := 1 / (1 + de)
	debtWeight := de / (1 + de)

	taxRate := e.taxRateFloor
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	taxRate = formulas.Clamp(taxRate, e.taxRateFloor, e.taxRateCeiling)

	wacc := equityWeight*costOfEquity + debtWeight*costOfDebt*(1-taxRate)

	e.log.Debug().
		Float64("beta", beta).
		Float64("cost_of_equity", costOfEquity).
		Float64("cost_of_debt", costOfDebt).
		Float64("debt_to_equity", de).
		Float64("tax_rate", taxRate).
		Float64("wacc", wacc).
		Msg("Estimated WACC")

	return wacc
}
