package growth

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/domain"
	"github.com/halessi/dcf/pkg/formulas"
)

const (
	// defaultGrowthRate is the flat fallback when a metric's CAGR is
	// undefined (non-positive base or fewer than two years of data).
	defaultGrowthRate = 0.05

	// terminalGrowthRate is the fixed rate the schedule transitions to over
	// the final two forecast years.
	terminalGrowthRate = 0.025

	// Derived rates are clamped to this band before use.
	minTrendRate = -0.10
	maxTrendRate = 0.50

	// Trailing window (in growth periods) for the recent-growth estimate.
	recentGrowthYears = 3
)

// TrendAnalyzer derives growth schedules from trailing-trend analysis of
// historical statements, damped by business context (company size and
// leverage).
type TrendAnalyzer struct {
	log zerolog.Logger
}

// NewTrendAnalyzer creates a new trend analyzer.
func NewTrendAnalyzer(log zerolog.Logger) *TrendAnalyzer {
	return &TrendAnalyzer{
		log: log.With().Str("component", "trend_analyzer").Logger(),
	}
}

// Analyze builds a TrendProfile from the ticker's statement history.
// Snapshots arrive most-recent-first, as returned by the statement source.
func (a *TrendAnalyzer) Analyze(snapshots []domain.FinancialSnapshot) domain.TrendProfile {
	// Reorder oldest-first for the growth math.
	revenues := metricSeries(snapshots, func(s domain.FinancialSnapshot) float64 { return s.Revenue })
	ebitdas := metricSeries(snapshots, ebitda)
	fcfes := metricSeries(snapshots, fcfe)

	profile := domain.TrendProfile{
		RevenueCAGR:      formulas.CAGROrDefault(revenues, defaultGrowthRate),
		EBITDACAGR:       formulas.CAGROrDefault(ebitdas, defaultGrowthRate),
		FCFECAGR:         formulas.CAGROrDefault(fcfes, defaultGrowthRate),
		RecentGrowth:     recentGrowth(revenues),
		GrowthVolatility: growthVolatility(revenues),
		YearsOfData:      len(snapshots),
	}

	if len(revenues) > 0 {
		profile.BaseRevenue = revenues[len(revenues)-1]
	}
	if len(ebitdas) > 0 {
		profile.BaseEBITDA = ebitdas[len(ebitdas)-1]
	}

	profile.MaturityScale = maturityScale(profile.BaseRevenue)
	profile.DebtScale = debtScale(latestDebt(snapshots), profile.BaseEBITDA)

	a.log.Debug().
		Float64("revenue_cagr", profile.RevenueCAGR).
		Float64("recent_growth", profile.RecentGrowth).
		Float64("growth_volatility", profile.GrowthVolatility).
		Float64("maturity_scale", profile.MaturityScale).
		Float64("debt_scale", profile.DebtScale).
		Int("years", profile.YearsOfData).
		Msg("Built trend profile")

	return profile
}

// Schedule turns a trend profile into a growth schedule of length horizon:
// the first three years blend recent growth into the long-term CAGR, the
// middle years hold the CAGR, and the final two years transition linearly to
// the fixed terminal rate. Every value is damped by the maturity and debt
// scales, then clamped.
func (a *TrendAnalyzer) Schedule(profile domain.TrendProfile, horizon int) domain.GrowthSchedule {
	if horizon < 1 {
		return domain.GrowthSchedule{}
	}

	longTerm := profile.RevenueCAGR
	recent := profile.RecentGrowth

	schedule := make(domain.GrowthSchedule, horizon)
	for k := 1; k <= horizon; k++ {
		var rate float64
		switch {
		case k <= 3:
			// Blend weight moves from all-recent to all-long-term.
			t := float64(k-1) / 2
			if horizon < 3 {
				t = float64(k-1) / math.Max(1, float64(horizon-1))
			}
			rate = recent*(1-t) + longTerm*t
		case k == horizon-1:
			rate = (longTerm + terminalGrowthRate) / 2
		case k == horizon:
			rate = terminalGrowthRate
		default:
			rate = longTerm
		}

		rate *= profile.MaturityScale * profile.DebtScale
		schedule[k-1] = formulas.Clamp(rate, minTrendRate, maxTrendRate)
	}

	return schedule
}

// metricSeries extracts one metric oldest-first, dropping unusable periods.
func metricSeries(snapshots []domain.FinancialSnapshot, metric func(domain.FinancialSnapshot) float64) []float64 {
	values := make([]float64, 0, len(snapshots))
	for i := len(snapshots) - 1; i >= 0; i-- {
		values = append(values, metric(snapshots[i]))
	}
	return values
}

// ebitda approximates EBITDA as EBIT plus depreciation and amortization.
// Periods without a reported EBIT contribute zero.
func ebitda(s domain.FinancialSnapshot) float64 {
	if s.EBIT == nil {
		return 0
	}
	return *s.EBIT + s.DepreciationAmortization
}

// fcfe approximates free cash flow to equity as free cash flow less dividends.
func fcfe(s domain.FinancialSnapshot) float64 {
	return s.FreeCashFlow - math.Abs(s.DividendsPaid)
}

// recentGrowth is the trailing average of the last few year-over-year growth
// observations.
func recentGrowth(values []float64) float64 {
	rates := formulas.GrowthSeries(values)
	if len(rates) == 0 {
		return defaultGrowthRate
	}
	return formulas.TrailingMean(rates, recentGrowthYears)
}

// growthVolatility is the sample standard deviation of the year-over-year
// revenue growth observations. It needs at least two of them to be defined.
func growthVolatility(values []float64) float64 {
	rates := formulas.GrowthSeries(values)
	if len(rates) < 2 {
		return 0
	}
	return formulas.StdDev(rates)
}

// maturityScale damps growth for companies whose revenue base makes high
// sustained growth implausible.
func maturityScale(revenue float64) float64 {
	switch {
	case revenue > 100e9:
		return 0.7
	case revenue > 10e9:
		return 0.85
	default:
		return 1.0
	}
}

// debtScale damps growth for highly levered companies (debt/EBITDA tiers).
func debtScale(debt, ebitda float64) float64 {
	if ebitda <= 0 {
		return 1.0
	}
	ratio := debt / ebitda
	switch {
	case ratio > 4:
		return 0.8
	case ratio > 2:
		return 0.9
	default:
		return 1.0
	}
}

func latestDebt(snapshots []domain.FinancialSnapshot) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	return snapshots[0].TotalDebt
}
