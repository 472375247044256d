package rates

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func newEstimator() *Estimator {
	// risk-free 4%, premium 6%, tax band [15%, 35%]
	return New(0.04, 0.06, 0.15, 0.35, zerolog.Nop())
}

func TestEstimate_CostOfEquityProxy(t *testing.T) {
	e := newEstimator()

	t.Run("default beta", func(t *testing.T) {
		// 0.04 + 1.0*0.06
		assert.InDelta(t, 0.10, e.Estimate(Inputs{}), 1e-9)
	})

	t.Run("explicit beta", func(t *testing.T) {
		got := e.Estimate(Inputs{EquityBeta: ptr(1.5)})
		assert.InDelta(t, 0.04+1.5*0.06, got, 1e-9)
	})

	t.Run("industry beta", func(t *testing.T) {
		got := e.Estimate(Inputs{Industry: "utilities"})
		assert.InDelta(t, 0.04+0.60*0.06, got, 1e-9)
	})

	t.Run("unknown industry falls back to market beta", func(t *testing.T) {
		got := e.Estimate(Inputs{Industry: "shipping"})
		assert.InDelta(t, 0.10, got, 1e-9)
	})

	t.Run("explicit beta wins over industry", func(t *testing.T) {
		got := e.Estimate(Inputs{EquityBeta: ptr(0.5), Industry: "technology"})
		assert.InDelta(t, 0.04+0.5*0.06, got, 1e-9)
	})
}

func TestEstimate_WACC(t *testing.T) {
	e := newEstimator()

	// D/E = 1: equal weights, cost of debt 4% + min(5%, 2%) = 6%.
	got := e.Estimate(Inputs{DebtToEquity: ptr(1.0), TaxRate: ptr(0.25)})
	expected := 0.5*0.10 + 0.5*0.06*(1-0.25)
	assert.InDelta(t, expected, got, 1e-9)
}

func TestEstimate_DebtSpreadCapped(t *testing.T) {
	e := newEstimator()

	// D/E = 10: spread would be 20%, capped at 5%.
	de := 10.0
	got := e.Estimate(Inputs{DebtToEquity: &de, TaxRate: ptr(0.25)})

	costOfDebt := 0.04 + 0.05
	expected := (1/11.0)*0.10 + (10/11.0)*costOfDebt*(1-0.25)
	assert.InDelta(t, expected, got, 1e-9)
}

func TestEstimate_TaxRateClamped(t *testing.T) {
	e := newEstimator()

	lowTax := e.Estimate(Inputs{DebtToEquity: ptr(1.0), TaxRate: ptr(0.02)})
	floored := 0.5*0.10 + 0.5*0.06*(1-0.15)
	assert.InDelta(t, floored, lowTax, 1e-9, "tax rate below floor uses floor")

	highTax := e.Estimate(Inputs{DebtToEquity: ptr(1.0), TaxRate: ptr(0.80)})
	ceilinged := 0.5*0.10 + 0.5*0.06*(1-0.35)
	assert.InDelta(t, ceilinged, highTax, 1e-9, "tax rate above ceiling uses ceiling")

	noTax := e.Estimate(Inputs{DebtToEquity: ptr(1.0)})
	assert.InDelta(t, floored, noTax, 1e-9, "missing tax rate uses floor")
}

func TestEstimate_LeverageRaisesDebtWeight(t *testing.T) {
	e := newEstimator()

	low := e.Estimate(Inputs{DebtToEquity: ptr(0.2), TaxRate: ptr(0.25)})
	high := e.Estimate(Inputs{DebtToEquity: ptr(2.0), TaxRate: ptr(0.25)})

	// After-tax debt is cheaper than equity here, so leverage lowers WACC.
	assert.Less(t, high, low)
}
