// Package handlers provides HTTP handlers for stored valuation runs.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/modules/snapshots"
)

// Handler handles run-store HTTP requests
type Handler struct {
	runs *snapshots.Repository
	log  zerolog.Logger
}

// NewHandler creates a new run-store handler
func NewHandler(runs *snapshots.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		runs: runs,
		log:  log.With().Str("handler", "runs").Logger(),
	}
}

// HandleList handles GET /api/runs
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	ticker := strings.ToUpper(query.Get("ticker"))
	limit := 50
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.runs.List(ticker, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []snapshots.Run{}
	}

	h.writeJSON(w, runs)
}

// HandleGet handles GET /api/runs/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.runs.Get(id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to load run")
		http.Error(w, "failed to load run", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, run)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
