// Package forecast projects unlevered free cash flow over an explicit horizon
// and capitalizes the years beyond it into a terminal value.
package forecast

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/domain"
)

// Input carries one period's baseline data plus the growth assumptions for
// the projection.
type Input struct {
	Base  domain.FinancialSnapshot // most recent period
	Prior domain.FinancialSnapshot // the period before it (for the working-capital delta)

	Horizon             int
	DiscountRate        float64
	PerpetualGrowthRate float64

	GrowthSchedule      domain.GrowthSchedule // EBIT and non-cash charges
	CapExGrowthSchedule domain.GrowthSchedule

	WorkingCapitalDecayRate float64 // multiplicative annual decay, independent of the schedules
}

// Forecaster produces discounted unlevered free cash flow projections.
type Forecaster struct {
	log zerolog.Logger
}

// New creates a new forecaster.
func New(log zerolog.Logger) *Forecaster {
	return &Forecaster{
		log: log.With().Str("component", "forecaster").Logger(),
	}
}

// ulFCF derives unlevered free cash flow to the firm. capEx arrives already
// signed negative, so the expression is additive.
func ulFCF(ebit, taxRate, nonCashCharges, cwc, capEx float64) float64 {
	return ebit*(1-taxRate) + nonCashCharges + cwc + capEx
}

// Forecast projects flows for each year of the horizon and returns them with
// the discounted terminal value.
//
// Each year compounds EBIT, non-cash charges, and capex by that year's growth
// rate off the previous year's value (or the base period for year one). The
// working-capital estimate instead decays geometrically each year - a
// deliberate modeling simplification, not an accrual rule.
//
// The terminal value applies the Gordon growth perpetuity to the final year's
// discounted flow grown one more period, then discounts by one extra period
// beyond the horizon.
func (f *Forecaster) Forecast(in Input) ([]domain.ForecastYearFlow, float64, error) {
	if in.DiscountRate <= in.PerpetualGrowthRate {
		return nil, 0, &domain.DivisionByZeroError{
			Op: "terminal value (discount rate must exceed perpetual growth rate)",
		}
	}
	if len(in.GrowthSchedule) != in.Horizon || len(in.CapExGrowthSchedule) != in.Horizon {
		return nil, 0, &domain.InvalidGrowthSpecError{Reason: "schedule length does not match horizon"}
	}

	if in.Base.EBIT == nil {
		return nil, 0, &domain.MissingFieldError{Field: "ebit", Date: in.Base.Date}
	}
	if in.Base.PretaxIncome == 0 {
		return nil, 0, &domain.DivisionByZeroError{
			Op: "effective tax rate (zero pretax income)",
		}
	}

	ebit := *in.Base.EBIT
	taxRate := in.Base.IncomeTaxExpense / in.Base.PretaxIncome
	nonCashCharges := in.Base.DepreciationAmortization
	cwc := in.Base.WorkingCapital() - in.Prior.WorkingCapital()
	capEx := in.Base.CapitalExpenditure

	baseYear := in.Base.Year()

	f.log.Debug().
		Str("date", in.Base.Date).
		Int("horizon", in.Horizon).
		Float64("ebit", ebit).
		Float64("tax_rate", taxRate).
		Float64("cwc", cwc).
		Msg("Forecasting flows")

	flows := make([]domain.ForecastYearFlow, 0, in.Horizon)
	for yr := 1; yr <= in.Horizon; yr++ {
		growthRate := in.GrowthSchedule[yr-1]
		capExGrowthRate := in.CapExGrowthSchedule[yr-1]

		// Compound off the previous year's derived values.
		ebit *= 1 + growthRate
		nonCashCharges *= 1 + growthRate
		capEx *= 1 + capExGrowthRate
		cwc *= in.WorkingCapitalDecayRate

		flow := ulFCF(ebit, taxRate, nonCashCharges, cwc, capEx)
		presentValue := flow / math.Pow(1+in.DiscountRate, float64(yr))

		flows = append(flows, domain.ForecastYearFlow{
			Year:           baseYear + yr,
			GrowthRate:     growthRate,
			EBIT:           ebit,
			NonCashCharges: nonCashCharges,
			WorkingCapital: cwc,
			CapEx:          capEx,
			FreeCashFlow:   flow,
			PresentValue:   presentValue,
		})
	}

	// Terminal value off the final discounted flow, discounted one period
	// beyond the horizon.
	finalFlow := flows[in.Horizon-1].PresentValue * (1 + in.PerpetualGrowthRate)
	terminal := finalFlow / (in.DiscountRate - in.PerpetualGrowthRate)
	discountedTerminal := terminal / math.Pow(1+in.DiscountRate, float64(in.Horizon+1))

	return flows, discountedTerminal, nil
}
