package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halessi/dcf/internal/domain"
	"github.com/halessi/dcf/internal/modules/valuation"
)

type stubValuation struct{}

func (stubValuation) Defaults() valuation.Params { return valuation.Params{ForecastYears: 5} }

func (stubValuation) Single(context.Context, string, valuation.Params) (domain.ValuationResult, error) {
	return domain.ValuationResult{Date: "2023-12-31", SharePrice: 145.26}, nil
}

func (stubValuation) Historical(context.Context, string, int, string, valuation.Params) (domain.HistoricalSeries, error) {
	return domain.HistoricalSeries{}, nil
}

func (stubValuation) Sensitivity(context.Context, string, int, string, valuation.Params, valuation.Variable, float64, int) (domain.SensitivitySeries, error) {
	return domain.SensitivitySeries{}, nil
}

func (stubValuation) Enhanced(context.Context, string, valuation.Params) (domain.ValuationResult, domain.TrendProfile, error) {
	return domain.ValuationResult{}, domain.TrendProfile{}, nil
}

func newTestServer() *Server {
	return New(Config{
		Log:       zerolog.Nop(),
		Valuation: stubValuation{},
		Port:      0,
		DevMode:   true,
	})
}

func doRequest(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer()

	for _, path := range []string{"/health", "/api/health"} {
		rec := doRequest(s, path)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "dcf", body["service"])
	}
}

func TestValuationRouteWired(t *testing.T) {
	s := newTestServer()

	rec := doRequest(s, "/api/valuation/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.ValuationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 145.26, result.SharePrice, 1e-9)
}

func TestRunRoutesDisabledWithoutRepository(t *testing.T) {
	s := newTestServer()

	rec := doRequest(s, "/api/runs")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSystemStatus(t *testing.T) {
	s := newTestServer()

	rec := doRequest(s, "/api/system/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Positive(t, status.Goroutines)
}
