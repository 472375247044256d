package fmp

import (
	"github.com/halessi/dcf/internal/domain"
)

// Wire types for the financialmodelingprep.com v3 statement endpoints.
// Optional fields are pointers so an absent JSON key is distinguishable from a
// reported zero; the fallback rules live in the conversion below.

type incomeStatement struct {
	Date                        string   `json:"date"`
	Revenue                     float64  `json:"revenue"`
	OperatingIncome             *float64 `json:"operatingIncome"`
	IncomeTaxExpense            float64  `json:"incomeTaxExpense"`
	IncomeBeforeTax             float64  `json:"incomeBeforeTax"`
	DepreciationAndAmortization float64  `json:"depreciationAndAmortization"`
}

type balanceSheet struct {
	Date                   string  `json:"date"`
	TotalAssets            float64 `json:"totalAssets"`
	TotalNonCurrentAssets  float64 `json:"totalNonCurrentAssets"`
	TotalDebt              float64 `json:"totalDebt"`
	CashAndCashEquivalents float64 `json:"cashAndCashEquivalents"`
}

type cashFlowStatement struct {
	Date                        string  `json:"date"`
	DepreciationAndAmortization float64 `json:"depreciationAndAmortization"`
	CapitalExpenditure          float64 `json:"capitalExpenditure"` // negative by convention
	FreeCashFlow                float64 `json:"freeCashFlow"`
	DividendsPaid               float64 `json:"dividendsPaid"`
}

type enterpriseValueRecord struct {
	Date                        string   `json:"date"`
	StockPrice                  float64  `json:"stockPrice"`
	NumberOfShares              *float64 `json:"numberOfShares"`
	AddTotalDebt                *float64 `json:"addTotalDebt"`
	MinusCashAndCashEquivalents *float64 `json:"minusCashAndCashEquivalents"`
	EnterpriseValue             float64  `json:"enterpriseValue"`
}

// merge combines the three statement lists into domain snapshots, index by
// index. The FMP API returns all statement types most-recent-first with
// matching period boundaries, so lockstep indexing is safe; the merged list is
// truncated to the shortest input.
func merge(income []incomeStatement, balance []balanceSheet, cash []cashFlowStatement) []domain.FinancialSnapshot {
	n := len(income)
	if len(balance) < n {
		n = len(balance)
	}
	if len(cash) < n {
		n = len(cash)
	}

	snapshots := make([]domain.FinancialSnapshot, 0, n)
	for i := 0; i < n; i++ {
		inc, bal, cf := income[i], balance[i], cash[i]

		// Depreciation lives on both statements; prefer the cash flow figure
		// and fall back to the income statement when it is zero.
		da := cf.DepreciationAndAmortization
		if da == 0 {
			da = inc.DepreciationAndAmortization
		}

		snapshots = append(snapshots, domain.FinancialSnapshot{
			Date:                     inc.Date,
			EBIT:                     inc.OperatingIncome,
			IncomeTaxExpense:         inc.IncomeTaxExpense,
			PretaxIncome:             inc.IncomeBeforeTax,
			Revenue:                  inc.Revenue,
			DepreciationAmortization: da,
			CapitalExpenditure:       cf.CapitalExpenditure,
			FreeCashFlow:             cf.FreeCashFlow,
			DividendsPaid:            cf.DividendsPaid,
			TotalAssets:              bal.TotalAssets,
			TotalNonCurrentAssets:    bal.TotalNonCurrentAssets,
			TotalDebt:                bal.TotalDebt,
		})
	}

	return snapshots
}

func toEnterpriseValues(records []enterpriseValueRecord) []domain.EnterpriseValueRecord {
	out := make([]domain.EnterpriseValueRecord, 0, len(records))
	for _, r := range records {
		out = append(out, domain.EnterpriseValueRecord{
			Date:               r.Date,
			TotalDebt:          r.AddTotalDebt,
			CashAndEquivalents: r.MinusCashAndCashEquivalents,
			SharesOutstanding:  r.NumberOfShares,
			StockPrice:         r.StockPrice,
		})
	}
	return out
}
