package valuation

import (
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/halessi/dcf/internal/domain"
)

// Interval granularity for historical runs.
const (
	IntervalAnnual  = "annual"
	IntervalQuarter = "quarter"
)

// WindowCount converts a year count to the number of sliding windows for the
// given interval granularity.
func WindowCount(years int, interval string) int {
	if interval == IntervalQuarter {
		return years * 4
	}
	return years
}

// HistoricalRunner repeats a single valuation across a sliding window of
// historical statement snapshots. Windows are independent, so they run on a
// bounded goroutine pool; a failed window is logged and skipped, never fatal
// to the series.
type HistoricalRunner struct {
	engine        *Engine
	maxGoroutines int
	log           zerolog.Logger
}

// NewHistoricalRunner creates a new historical runner.
func NewHistoricalRunner(engine *Engine, log zerolog.Logger) *HistoricalRunner {
	return &HistoricalRunner{
		engine:        engine,
		maxGoroutines: 4,
		log:           log.With().Str("component", "historical_runner").Logger(),
	}
}

// Run values each of the first n windows of the history. The result map is
// keyed by statement date; windows that fail are absent.
func (r *HistoricalRunner) Run(ticker string, history *domain.StatementHistory, years int, interval string, p Params) domain.HistoricalSeries {
	intervals := WindowCount(years, interval)

	// Slots are pre-sized so each goroutine writes only its own index.
	results := make([]*domain.ValuationResult, intervals)

	workers := pool.New().WithMaxGoroutines(r.maxGoroutines)
	for k := 0; k < intervals; k++ {
		k := k
		workers.Go(func() {
			base, prior, ev, err := history.Window(k)
			if err != nil {
				r.log.Warn().
					Err(err).
					Str("ticker", ticker).
					Int("window", k).
					Msg("Interval unavailable")
				return
			}

			result, err := r.engine.Value(ticker, base, prior, ev, p)
			if err != nil {
				r.log.Warn().
					Err(err).
					Str("ticker", ticker).
					Str("date", base.Date).
					Int("window", k).
					Msg("Valuation failed for interval")
				return
			}

			results[k] = &result
		})
	}
	workers.Wait()

	series := make(domain.HistoricalSeries, intervals)
	for _, result := range results {
		if result != nil {
			series[result.Date] = *result
		}
	}

	r.log.Debug().
		Str("ticker", ticker).
		Int("requested", intervals).
		Int("computed", len(series)).
		Msg("Historical run complete")

	return series
}
