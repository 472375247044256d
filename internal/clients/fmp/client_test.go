package fmp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	incomeJSON = `[
		{"date":"2023-12-31","revenue":1000,"operatingIncome":100,"incomeTaxExpense":21,"incomeBeforeTax":100,"depreciationAndAmortization":9},
		{"date":"2022-12-31","revenue":900,"incomeTaxExpense":19,"incomeBeforeTax":90,"depreciationAndAmortization":8}
	]`
	balanceJSON = `[
		{"date":"2023-12-31","totalAssets":100,"totalNonCurrentAssets":80,"totalDebt":50,"cashAndCashEquivalents":25},
		{"date":"2022-12-31","totalAssets":90,"totalNonCurrentAssets":75,"totalDebt":45,"cashAndCashEquivalents":20}
	]`
	cashJSON = `[
		{"date":"2023-12-31","depreciationAndAmortization":10,"capitalExpenditure":-8,"freeCashFlow":70,"dividendsPaid":-5},
		{"date":"2022-12-31","depreciationAndAmortization":0,"capitalExpenditure":-7,"freeCashFlow":60,"dividendsPaid":-4}
	]`
	evJSON = `[
		{"date":"2023-12-31","stockPrice":120,"numberOfShares":10,"addTotalDebt":50,"minusCashAndCashEquivalents":25,"enterpriseValue":1225},
		{"date":"2022-12-31","stockPrice":100,"addTotalDebt":45,"minusCashAndCashEquivalents":20,"enterpriseValue":1025}
	]`
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key", zerolog.Nop())
	client.SetBaseURL(server.URL)
	return client
}

func statementHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "annual", r.URL.Query().Get("period"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/income-statement/AAPL":
			fmt.Fprint(w, incomeJSON)
		case r.URL.Path == "/balance-sheet-statement/AAPL":
			fmt.Fprint(w, balanceJSON)
		case r.URL.Path == "/cash-flow-statement/AAPL":
			fmt.Fprint(w, cashJSON)
		case r.URL.Path == "/enterprise-values/AAPL":
			fmt.Fprint(w, evJSON)
		default:
			http.NotFound(w, r)
		}
	}
}

func TestStatements(t *testing.T) {
	client := newTestClient(t, statementHandler(t))

	history, err := client.Statements(context.Background(), "AAPL", PeriodAnnual, 2)
	require.NoError(t, err)
	require.Len(t, history.Snapshots, 2)
	require.Len(t, history.EnterpriseValues, 2)

	base := history.Snapshots[0]
	assert.Equal(t, "2023-12-31", base.Date)
	require.NotNil(t, base.EBIT)
	assert.Equal(t, 100.0, *base.EBIT)
	assert.Equal(t, 1000.0, base.Revenue)
	assert.Equal(t, -8.0, base.CapitalExpenditure)
	assert.Equal(t, 10.0, base.DepreciationAmortization, "cash flow figure preferred")
	assert.Equal(t, 20.0, base.WorkingCapital())

	prior := history.Snapshots[1]
	assert.Nil(t, prior.EBIT, "absent operatingIncome stays nil")
	assert.Equal(t, 8.0, prior.DepreciationAmortization, "income statement fallback when cash flow figure is zero")

	ev := history.EnterpriseValues[0]
	require.NotNil(t, ev.TotalDebt)
	assert.Equal(t, 50.0, *ev.TotalDebt)
	require.NotNil(t, ev.SharesOutstanding)
	assert.Equal(t, 10.0, *ev.SharesOutstanding)
	assert.Equal(t, 120.0, ev.StockPrice)

	assert.Nil(t, history.EnterpriseValues[1].SharesOutstanding)
}

func TestStatements_LockstepTruncation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/income-statement/AAPL":
			fmt.Fprint(w, incomeJSON)
		case r.URL.Path == "/balance-sheet-statement/AAPL":
			// Only one balance period available.
			fmt.Fprint(w, `[{"date":"2023-12-31","totalAssets":100,"totalNonCurrentAssets":80}]`)
		case r.URL.Path == "/cash-flow-statement/AAPL":
			fmt.Fprint(w, cashJSON)
		case r.URL.Path == "/enterprise-values/AAPL":
			fmt.Fprint(w, evJSON)
		default:
			http.NotFound(w, r)
		}
	})

	history, err := client.Statements(context.Background(), "AAPL", PeriodAnnual, 2)
	require.NoError(t, err)
	assert.Len(t, history.Snapshots, 1, "merged list truncates to the shortest input")
}

func TestStatements_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "limit exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Statements(context.Background(), "AAPL", PeriodAnnual, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestStatements_InvalidPeriod(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	_, err := client.Statements(context.Background(), "AAPL", "monthly", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid period")
}

func TestStatements_ContextCancelled(t *testing.T) {
	client := newTestClient(t, statementHandler(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Statements(ctx, "AAPL", PeriodAnnual, 2)
	assert.Error(t, err)
}
