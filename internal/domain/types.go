// Package domain contains the core value objects shared by the valuation
// engine. Everything here is computed fresh per invocation - there is no
// shared mutable state between runs.
package domain

// FinancialSnapshot holds one reporting period's merged statement data, keyed
// by statement date (ISO year or year-month-day string). Optional fields are
// pointers: nil means the provider did not report the value and the documented
// fallback rule applies at the point of use.
type FinancialSnapshot struct {
	Date string `json:"date"`

	// Income statement
	EBIT             *float64 `json:"ebit"` // operating income fallback applied at ingestion
	IncomeTaxExpense float64  `json:"income_tax_expense"`
	PretaxIncome     float64  `json:"pretax_income"`
	Revenue          float64  `json:"revenue"`

	// Cash flow statement
	DepreciationAmortization float64 `json:"depreciation_amortization"`
	CapitalExpenditure       float64 `json:"capital_expenditure"` // carries its natural negative sign
	FreeCashFlow             float64 `json:"free_cash_flow"`
	DividendsPaid            float64 `json:"dividends_paid"`

	// Balance sheet
	TotalAssets           float64 `json:"total_assets"`
	TotalNonCurrentAssets float64 `json:"total_non_current_assets"`
	TotalDebt             float64 `json:"total_debt"`
}

// WorkingCapital returns the period's net working capital proxy
// (total assets minus non-current assets).
func (s FinancialSnapshot) WorkingCapital() float64 {
	return s.TotalAssets - s.TotalNonCurrentAssets
}

// Year returns the four-digit statement year, or 0 if the date is malformed.
func (s FinancialSnapshot) Year() int {
	if len(s.Date) < 4 {
		return 0
	}
	year := 0
	for _, c := range s.Date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}

// EnterpriseValueRecord holds the debt/cash/share-count data needed to bridge
// enterprise value to equity value. Pointer fields are nil when the provider
// omitted them; the bridge treats absence as fatal for that period.
type EnterpriseValueRecord struct {
	Date               string   `json:"date"`
	TotalDebt          *float64 `json:"total_debt"`
	CashAndEquivalents *float64 `json:"cash_and_equivalents"`
	SharesOutstanding  *float64 `json:"shares_outstanding"`
	StockPrice         float64  `json:"stock_price"`
}

// GrowthSchedule is an ordered per-forecast-year sequence of annual growth
// rates. Its length always equals the forecast horizon.
type GrowthSchedule []float64

// ForecastYearFlow is one forecast year's derived figures, produced by
// compounding the previous year's values (or the base snapshot for year 1).
type ForecastYearFlow struct {
	Year           int     `json:"year"`
	GrowthRate     float64 `json:"growth_rate"`
	EBIT           float64 `json:"ebit"`
	NonCashCharges float64 `json:"non_cash_charges"`
	WorkingCapital float64 `json:"working_capital"`
	CapEx          float64 `json:"cap_ex"`
	FreeCashFlow   float64 `json:"free_cash_flow"`
	PresentValue   float64 `json:"present_value"`
}

// ValuationResult is the outcome of a single DCF run on one snapshot window.
// The enhanced fields are only populated on the enhanced analysis path.
type ValuationResult struct {
	Date            string  `json:"date"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	SharePrice      float64 `json:"share_price"`

	IRR                *float64  `json:"irr,omitempty"`
	NPV                *float64  `json:"npv,omitempty"`
	TerminalValue      *float64  `json:"terminal_value,omitempty"`
	ProjectedCashFlows []float64 `json:"projected_cash_flows,omitempty"`
}

// HistoricalSeries maps statement date to the valuation computed on that
// window. Windows that failed are absent, never nil.
type HistoricalSeries map[string]ValuationResult

// SensitivitySeries maps a human-readable "parameter: value" label to the
// historical series computed with that parameter value.
type SensitivitySeries map[string]HistoricalSeries

// TrendProfile holds the derived growth figures for one ticker. Built once per
// analysis and immutable afterward.
type TrendProfile struct {
	RevenueCAGR      float64 `json:"revenue_cagr"`
	EBITDACAGR       float64 `json:"ebitda_cagr"`
	FCFECAGR         float64 `json:"fcfe_cagr"`
	RecentGrowth     float64 `json:"recent_growth"`
	GrowthVolatility float64 `json:"growth_volatility"`
	MaturityScale    float64 `json:"maturity_scale"`
	DebtScale        float64 `json:"debt_scale"`
	BaseRevenue      float64 `json:"base_revenue"`
	BaseEBITDA       float64 `json:"base_ebitda"`
	YearsOfData      int     `json:"years_of_data"`
}
