package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// WatchlistService is the valuation surface the revalue job depends on.
type WatchlistService interface {
	RevalueWatchlist(ctx context.Context, tickers []string) error
}

// RevalueJob revalues the configured watchlist tickers on schedule so stored
// runs stay current without manual requests.
type RevalueJob struct {
	service WatchlistService
	tickers []string
	timeout time.Duration
	log     zerolog.Logger
}

// NewRevalueJob creates a new watchlist revaluation job
func NewRevalueJob(service WatchlistService, tickers []string, log zerolog.Logger) *RevalueJob {
	return &RevalueJob{
		service: service,
		tickers: tickers,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "watchlist_revalue").Logger(),
	}
}

// Name returns the job name
func (j *RevalueJob) Name() string {
	return "watchlist_revalue"
}

// Run revalues every watchlist ticker
func (j *RevalueJob) Run() error {
	if len(j.tickers) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	return j.service.RevalueWatchlist(ctx, j.tickers)
}
