// Package valuation combines forecasted cash flows into enterprise value and
// bridges it to equity value and per-share intrinsic value. It also hosts the
// batch paths: historical windows and sensitivity sweeps.
package valuation

import (
	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/config"
	"github.com/halessi/dcf/internal/domain"
	"github.com/halessi/dcf/internal/modules/forecast"
	"github.com/halessi/dcf/internal/modules/growth"
)

// Params holds the model assumptions for one valuation run. Params is a value
// type: batch paths copy it per step, so callers never observe mutation.
type Params struct {
	DiscountRate            float64
	EarningsGrowthRate      float64
	CapExGrowthRate         float64
	PerpetualGrowthRate     float64
	WorkingCapitalDecayRate float64
	ForecastYears           int

	// Override replaces the constant earnings growth rate with a variable
	// schedule. When set, capex follows the same schedule.
	Override *growth.Override
}

// ParamsFromDefaults builds run parameters from the configured defaults.
func ParamsFromDefaults(d config.ValuationDefaults) Params {
	return Params{
		DiscountRate:            d.DiscountRate,
		EarningsGrowthRate:      d.EarningsGrowthRate,
		CapExGrowthRate:         d.CapExGrowthRate,
		PerpetualGrowthRate:     d.PerpetualGrowthRate,
		WorkingCapitalDecayRate: d.WorkingCapitalDecayRate,
		ForecastYears:           d.ForecastYears,
	}
}

// Engine performs single DCF valuations.
type Engine struct {
	forecaster *forecast.Forecaster
	log        zerolog.Logger
}

// NewEngine creates a new valuation engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		forecaster: forecast.New(log),
		log:        log.With().Str("component", "valuation_engine").Logger(),
	}
}

// Value runs one DCF on a snapshot window: growth schedule, flow forecast,
// enterprise value, then the equity bridge.
func (e *Engine) Value(ticker string, base, prior domain.FinancialSnapshot, ev domain.EnterpriseValueRecord, p Params) (domain.ValuationResult, error) {
	result, _, _, err := e.valueWithFlows(ticker, base, prior, ev, p)
	return result, err
}

// valueWithFlows is Value plus the per-year flows and discounted terminal
// value, for the enhanced path that needs them downstream.
func (e *Engine) valueWithFlows(ticker string, base, prior domain.FinancialSnapshot, ev domain.EnterpriseValueRecord, p Params) (domain.ValuationResult, []domain.ForecastYearFlow, float64, error) {
	schedule, err := growth.BuildSchedule(p.ForecastYears, p.EarningsGrowthRate, base.Year(), p.Override)
	if err != nil {
		return domain.ValuationResult{}, nil, 0, err
	}

	// An explicit override drives capex too; otherwise capex grows at its
	// own constant rate.
	capExSchedule := schedule
	if p.Override == nil {
		capExSchedule, err = growth.BuildSchedule(p.ForecastYears, p.CapExGrowthRate, base.Year(), nil)
		if err != nil {
			return domain.ValuationResult{}, nil, 0, err
		}
	}

	flows, terminal, err := e.forecaster.Forecast(forecast.Input{
		Base:                    base,
		Prior:                   prior,
		Horizon:                 p.ForecastYears,
		DiscountRate:            p.DiscountRate,
		PerpetualGrowthRate:     p.PerpetualGrowthRate,
		GrowthSchedule:          schedule,
		CapExGrowthSchedule:     capExSchedule,
		WorkingCapitalDecayRate: p.WorkingCapitalDecayRate,
	})
	if err != nil {
		return domain.ValuationResult{}, nil, 0, err
	}

	enterpriseValue := terminal
	for _, flow := range flows {
		enterpriseValue += flow.PresentValue
	}

	equityValue, sharePrice, err := bridgeToEquity(enterpriseValue, ev)
	if err != nil {
		return domain.ValuationResult{}, nil, 0, err
	}

	e.log.Info().
		Str("ticker", ticker).
		Str("date", base.Date).
		Float64("enterprise_value", enterpriseValue).
		Float64("equity_value", equityValue).
		Float64("share_price", sharePrice).
		Msg("DCF complete")

	return domain.ValuationResult{
		Date:            base.Date,
		EnterpriseValue: enterpriseValue,
		EquityValue:     equityValue,
		SharePrice:      sharePrice,
	}, flows, terminal, nil
}

// bridgeToEquity adjusts enterprise value for debt and cash and divides by
// shares outstanding:
//
//	equity_value = enterprise_value - total_debt + cash
//	share_price  = equity_value / shares_outstanding
func bridgeToEquity(enterpriseValue float64, ev domain.EnterpriseValueRecord) (equityValue, sharePrice float64, err error) {
	if ev.TotalDebt == nil {
		return 0, 0, &domain.MissingFieldError{Field: "total_debt", Date: ev.Date}
	}
	if ev.CashAndEquivalents == nil {
		return 0, 0, &domain.MissingFieldError{Field: "cash_and_equivalents", Date: ev.Date}
	}
	if ev.SharesOutstanding == nil {
		return 0, 0, &domain.MissingFieldError{Field: "shares_outstanding", Date: ev.Date}
	}
	if *ev.SharesOutstanding == 0 {
		return 0, 0, &domain.DivisionByZeroError{Op: "share price (zero shares outstanding)"}
	}

	equityValue = enterpriseValue - *ev.TotalDebt + *ev.CashAndEquivalents
	sharePrice = equityValue / *ev.SharesOutstanding
	return equityValue, sharePrice, nil
}
