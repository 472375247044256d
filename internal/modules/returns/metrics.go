// Package returns computes the return metrics (IRR, NPV) used to judge
// whether the current price is attractive against the projected flows.
package returns

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/domain"
)

const (
	maxIterations = 100
	tolerance     = 1e-6

	// Candidate rates are clamped to this range during iteration to keep
	// Newton steps from diverging.
	minCandidateRate = -0.99
	maxCandidateRate = 5.0

	// A converged rate outside this range is treated as non-convergence.
	minPlausibleIRR = -0.50
	maxPlausibleIRR = 2.0

	initialGuess = 0.10
)

// Calculator computes IRR and NPV for projected cash-flow streams.
type Calculator struct {
	log zerolog.Logger
}

// New creates a new return-metrics calculator.
func New(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("component", "return_metrics").Logger(),
	}
}

// NPV discounts the cash flows (terminal value folded into the final year)
// at the given rate. Years are 1-indexed from the valuation date.
func (c *Calculator) NPV(cashFlows []float64, terminalValue, discountRate float64) float64 {
	combined := combine(cashFlows, terminalValue)

	npv := 0.0
	for i, cf := range combined {
		npv += cf / math.Pow(1+discountRate, float64(i+1))
	}
	return npv
}

// IRR finds the rate at which the NPV of buying at initialInvestment and
// receiving the projected flows (plus terminal value) is zero, via
// Newton-Raphson. Non-convergence is an expected edge case, not a defect: the
// calculator logs it and returns fallbackRate. A non-positive initial
// investment returns 0.
func (c *Calculator) IRR(initialInvestment float64, cashFlows []float64, terminalValue, fallbackRate float64) float64 {
	if initialInvestment <= 0 {
		c.log.Warn().
			Float64("initial_investment", initialInvestment).
			Msg("Non-positive initial investment, IRR undefined, returning 0")
		return 0
	}

	combined := combine(cashFlows, terminalValue)
	if len(combined) == 0 {
		c.log.Warn().Msg("Empty cash flow stream, falling back to discount rate")
		return fallbackRate
	}

	rate := initialGuess
	for iter := 0; iter < maxIterations; iter++ {
		npv := -initialInvestment
		derivative := 0.0
		for i, cf := range combined {
			t := float64(i + 1)
			base := math.Pow(1+rate, t)
			npv += cf / base
			derivative -= t * cf / (base * (1 + rate))
		}

		if math.IsNaN(npv) || math.IsInf(npv, 0) || derivative == 0 {
			c.log.Warn().
				Int("iteration", iter).
				Float64("rate", rate).
				Msg("IRR iteration degenerated, falling back to discount rate")
			return fallbackRate
		}

		if math.Abs(npv) < tolerance {
			break
		}

		next := rate - npv/derivative
		if next < minCandidateRate {
			next = minCandidateRate
		} else if next > maxCandidateRate {
			next = maxCandidateRate
		}

		if math.Abs(next-rate) < tolerance {
			rate = next
			break
		}
		rate = next
	}

	if rate < minPlausibleIRR || rate > maxPlausibleIRR || math.IsNaN(rate) {
		c.log.Warn().
			Err(domain.ErrNonConvergence).
			Float64("rate", rate).
			Float64("fallback", fallbackRate).
			Msg("IRR did not converge to a plausible rate, falling back to discount rate")
		return fallbackRate
	}

	return rate
}

// combine folds the terminal value into the final year's flow.
func combine(cashFlows []float64, terminalValue float64) []float64 {
	if len(cashFlows) == 0 {
		if terminalValue == 0 {
			return nil
		}
		return []float64{terminalValue}
	}

	combined := make([]float64, len(cashFlows))
	copy(combined, cashFlows)
	combined[len(combined)-1] += terminalValue
	return combined
}
