// Package handlers provides the HTTP handlers for valuation requests.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/domain"
	"github.com/halessi/dcf/internal/modules/growth"
	"github.com/halessi/dcf/internal/modules/valuation"
)

// Service is the valuation surface the handlers depend on.
type Service interface {
	Defaults() valuation.Params
	Single(ctx context.Context, ticker string, p valuation.Params) (domain.ValuationResult, error)
	Historical(ctx context.Context, ticker string, years int, interval string, p valuation.Params) (domain.HistoricalSeries, error)
	Sensitivity(ctx context.Context, ticker string, years int, interval string, p valuation.Params, variable valuation.Variable, step float64, steps int) (domain.SensitivitySeries, error)
	Enhanced(ctx context.Context, ticker string, p valuation.Params) (domain.ValuationResult, domain.TrendProfile, error)
}

// Handler handles valuation HTTP requests
type Handler struct {
	service Service
	log     zerolog.Logger
}

// NewHandler creates a new valuation handler
func NewHandler(service Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "valuation").Logger(),
	}
}

// HandleValuation handles GET /api/valuation/{ticker}.
// With years <= 1 it runs a single valuation on the latest window; otherwise
// it runs the historical sliding-window path.
func (h *Handler) HandleValuation(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	query := r.URL.Query()

	params, err := h.paramsFromQuery(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	years := queryInt(query, "years", 1)
	interval := queryString(query, "interval", valuation.IntervalAnnual)

	if years <= 1 {
		result, err := h.service.Single(r.Context(), ticker, params)
		if err != nil {
			h.writeError(w, ticker, err)
			return
		}
		writeJSON(w, h.log, result)
		return
	}

	series, err := h.service.Historical(r.Context(), ticker, years, interval, params)
	if err != nil {
		h.writeError(w, ticker, err)
		return
	}
	writeJSON(w, h.log, series)
}

// HandleSensitivity handles GET /api/valuation/{ticker}/sensitivity
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	query := r.URL.Query()

	params, err := h.paramsFromQuery(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	variable, err := valuation.ParseVariable(queryString(query, "variable", ""))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	years := queryInt(query, "years", 1)
	interval := queryString(query, "interval", valuation.IntervalAnnual)
	step := queryFloat(query, "step", 0.01)
	steps := queryInt(query, "steps", 5)

	series, err := h.service.Sensitivity(r.Context(), ticker, years, interval, params, variable, step, steps)
	if err != nil {
		h.writeError(w, ticker, err)
		return
	}
	writeJSON(w, h.log, series)
}

// HandleEnhanced handles GET /api/valuation/{ticker}/enhanced
func (h *Handler) HandleEnhanced(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	params, err := h.paramsFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, profile, err := h.service.Enhanced(r.Context(), ticker, params)
	if err != nil {
		h.writeError(w, ticker, err)
		return
	}

	writeJSON(w, h.log, map[string]interface{}{
		"valuation": result,
		"trends":    profile,
	})
}

// paramsFromQuery overlays query parameters onto the configured defaults.
func (h *Handler) paramsFromQuery(query map[string][]string) (valuation.Params, error) {
	p := h.service.Defaults()

	p.DiscountRate = queryFloat(query, "discount_rate", p.DiscountRate)
	p.EarningsGrowthRate = queryFloat(query, "earnings_growth", p.EarningsGrowthRate)
	p.CapExGrowthRate = queryFloat(query, "capex_growth", p.CapExGrowthRate)
	p.PerpetualGrowthRate = queryFloat(query, "perpetual_growth", p.PerpetualGrowthRate)
	p.ForecastYears = queryInt(query, "forecast", p.ForecastYears)

	// An explicit comma-separated rate list overrides the constant rate.
	if raw := queryString(query, "growth_rates", ""); raw != "" {
		parts := strings.Split(raw, ",")
		rateList := make([]float64, 0, len(parts))
		for _, part := range parts {
			rate, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return p, errors.New("growth_rates must be a comma-separated list of numbers")
			}
			rateList = append(rateList, rate)
		}
		p.Override = &growth.Override{Rates: rateList}
	}

	return p, nil
}

// writeError maps the error taxonomy to HTTP status codes: malformed
// requests are 400, data gaps in otherwise healthy responses are 422, and
// provider failures are 502.
func (h *Handler) writeError(w http.ResponseWriter, ticker string, err error) {
	h.log.Error().Err(err).Str("ticker", ticker).Msg("Valuation request failed")

	switch {
	case domain.IsInvalidGrowthSpec(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case domain.IsMissingField(err), domain.IsDivisionByZero(err), errors.Is(err, domain.ErrInsufficientHistory):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case strings.Contains(err.Error(), "statement source"):
		http.Error(w, "statement provider unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "valuation failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func queryString(query map[string][]string, key, fallback string) string {
	if values, ok := query[key]; ok && len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}

func queryInt(query map[string][]string, key string, fallback int) int {
	if raw := queryString(query, key, ""); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func queryFloat(query map[string][]string, key string, fallback float64) float64 {
	if raw := queryString(query, key, ""); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}
