package valuation

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/config"
	"github.com/halessi/dcf/internal/domain"
	"github.com/halessi/dcf/internal/modules/growth"
	"github.com/halessi/dcf/internal/modules/rates"
	"github.com/halessi/dcf/internal/modules/returns"
	"github.com/halessi/dcf/internal/modules/snapshots"
	"github.com/halessi/dcf/pkg/formulas"
)

// Trend-mode perpetual growth is bounded to this band.
const (
	minTrendPerpetualGrowth = 0.02
	maxTrendPerpetualGrowth = 0.04
)

// StatementSource supplies ordered historical statements for a ticker,
// most recent first.
type StatementSource interface {
	Statements(ctx context.Context, ticker, period string, limit int) (*domain.StatementHistory, error)
}

// Service wires the statement source to the valuation paths and records
// completed runs.
type Service struct {
	source    StatementSource
	engine    *Engine
	runner    *HistoricalRunner
	sweeper   *Sweeper
	trends    *growth.TrendAnalyzer
	estimator *rates.Estimator
	metrics   *returns.Calculator
	runs      *snapshots.Repository // optional; nil disables persistence
	defaults  config.ValuationDefaults
	log       zerolog.Logger
}

// NewService creates the valuation service.
func NewService(source StatementSource, runs *snapshots.Repository, defaults config.ValuationDefaults, log zerolog.Logger) *Service {
	engine := NewEngine(log)
	runner := NewHistoricalRunner(engine, log)

	return &Service{
		source:    source,
		engine:    engine,
		runner:    runner,
		sweeper:   NewSweeper(runner, log),
		trends:    growth.NewTrendAnalyzer(log),
		estimator: rates.New(defaults.RiskFreeRate, defaults.MarketPremium, defaults.TaxRateFloor, defaults.TaxRateCeiling, log),
		metrics:   returns.New(log),
		runs:      runs,
		defaults:  defaults,
		log:       log.With().Str("component", "valuation_service").Logger(),
	}
}

// Defaults returns the configured default parameters for a run.
func (s *Service) Defaults() Params {
	return ParamsFromDefaults(s.defaults)
}

// Single values the most recent statement window. Failures propagate to the
// caller, unlike the batch paths.
func (s *Service) Single(ctx context.Context, ticker string, p Params) (domain.ValuationResult, error) {
	history, err := s.fetch(ctx, ticker, IntervalAnnual, 1)
	if err != nil {
		return domain.ValuationResult{}, err
	}

	base, prior, ev, err := history.Window(0)
	if err != nil {
		return domain.ValuationResult{}, err
	}

	result, err := s.engine.Value(ticker, base, prior, ev, p)
	if err != nil {
		return domain.ValuationResult{}, err
	}

	s.record(ticker, snapshots.ModeSingle, p, snapshots.Payload{
		Historical: domain.HistoricalSeries{result.Date: result},
	})
	return result, nil
}

// Historical values a sliding window of past snapshots. Windows with missing
// data are skipped, never fatal.
func (s *Service) Historical(ctx context.Context, ticker string, years int, interval string, p Params) (domain.HistoricalSeries, error) {
	history, err := s.fetch(ctx, ticker, interval, WindowCount(years, interval))
	if err != nil {
		return nil, err
	}

	series := s.runner.Run(ticker, history, years, interval, p)
	s.record(ticker, snapshots.ModeHistorical, p, snapshots.Payload{Historical: series})
	return series, nil
}

// Sensitivity sweeps one parameter across steps, valuing the history per step.
func (s *Service) Sensitivity(ctx context.Context, ticker string, years int, interval string, p Params, variable Variable, step float64, steps int) (domain.SensitivitySeries, error) {
	history, err := s.fetch(ctx, ticker, interval, WindowCount(years, interval))
	if err != nil {
		return nil, err
	}

	series, err := s.sweeper.Sweep(ticker, history, years, interval, p, variable, step, steps)
	if err != nil {
		return nil, err
	}

	s.record(ticker, snapshots.ModeSensitivity, p, snapshots.Payload{Sensitivity: series})
	return series, nil
}

// Enhanced runs the trend-derived path: a growth schedule from trailing-trend
// analysis, a CAPM-estimated discount rate, and IRR/NPV against the current
// market price.
func (s *Service) Enhanced(ctx context.Context, ticker string, p Params) (domain.ValuationResult, domain.TrendProfile, error) {
	// A decade of annual statements feeds the trend analysis.
	history, err := s.fetch(ctx, ticker, IntervalAnnual, 10)
	if err != nil {
		return domain.ValuationResult{}, domain.TrendProfile{}, err
	}

	base, prior, ev, err := history.Window(0)
	if err != nil {
		return domain.ValuationResult{}, domain.TrendProfile{}, err
	}

	profile := s.trends.Analyze(history.Snapshots)
	schedule := s.trends.Schedule(profile, p.ForecastYears)

	p.Override = &growth.Override{Rates: schedule}
	p.PerpetualGrowthRate = formulas.Clamp(p.PerpetualGrowthRate, minTrendPerpetualGrowth, maxTrendPerpetualGrowth)
	p.DiscountRate = s.estimateDiscountRate(base, ev)

	result, flows, terminal, err := s.engine.valueWithFlows(ticker, base, prior, ev, p)
	if err != nil {
		return domain.ValuationResult{}, domain.TrendProfile{}, err
	}

	projected := make([]float64, len(flows))
	for i, flow := range flows {
		projected[i] = flow.FreeCashFlow
	}

	// The terminal value comes back discounted; undo that for the
	// year-(horizon) cash flow the return metrics expect.
	terminalAtHorizon := terminal * math.Pow(1+p.DiscountRate, float64(p.ForecastYears+1))

	npv := s.metrics.NPV(projected, terminalAtHorizon, p.DiscountRate)

	if ev.SharesOutstanding != nil && ev.StockPrice > 0 {
		marketCap := ev.StockPrice * *ev.SharesOutstanding
		irr := s.metrics.IRR(marketCap, projected, terminalAtHorizon, p.DiscountRate)
		result.IRR = &irr
	}

	result.NPV = &npv
	result.TerminalValue = &terminal
	result.ProjectedCashFlows = projected

	s.record(ticker, snapshots.ModeEnhanced, p, snapshots.Payload{
		Historical: domain.HistoricalSeries{result.Date: result},
	})
	return result, profile, nil
}

// RevalueWatchlist values each ticker with the configured defaults and stores
// the results as watchlist runs. Per-ticker failures are logged and counted,
// never fatal to the batch.
func (s *Service) RevalueWatchlist(ctx context.Context, tickers []string) error {
	p := s.Defaults()

	failed := 0
	for _, ticker := range tickers {
		history, err := s.fetch(ctx, ticker, IntervalAnnual, 1)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Watchlist fetch failed")
			failed++
			continue
		}

		base, prior, ev, err := history.Window(0)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Watchlist window unavailable")
			failed++
			continue
		}

		result, err := s.engine.Value(ticker, base, prior, ev, p)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Watchlist valuation failed")
			failed++
			continue
		}

		s.record(ticker, snapshots.ModeWatchlist, p, snapshots.Payload{
			Historical: domain.HistoricalSeries{result.Date: result},
		})
	}

	s.log.Info().
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Msg("Watchlist revaluation complete")

	if failed == len(tickers) && len(tickers) > 0 {
		return fmt.Errorf("all %d watchlist tickers failed", failed)
	}
	return nil
}

// fetch pulls limit+1 periods so the oldest window still has a prior period
// for its working-capital delta.
func (s *Service) fetch(ctx context.Context, ticker, interval string, windows int) (*domain.StatementHistory, error) {
	if interval != IntervalAnnual && interval != IntervalQuarter {
		return nil, fmt.Errorf("invalid interval %q (want %q or %q)", interval, IntervalAnnual, IntervalQuarter)
	}

	history, err := s.source.Statements(ctx, ticker, interval, windows+1)
	if err != nil {
		return nil, fmt.Errorf("statement source: %w", err)
	}
	return history, nil
}

// estimateDiscountRate derives WACC inputs from the latest statements: market
// debt-to-equity from the enterprise-value record and the effective tax rate
// from the income statement.
func (s *Service) estimateDiscountRate(base domain.FinancialSnapshot, ev domain.EnterpriseValueRecord) float64 {
	in := rates.Inputs{}

	if ev.SharesOutstanding != nil && ev.StockPrice > 0 && *ev.SharesOutstanding > 0 {
		marketEquity := ev.StockPrice * *ev.SharesOutstanding
		de := base.TotalDebt / marketEquity
		in.DebtToEquity = &de
	}
	if base.PretaxIncome != 0 {
		taxRate := base.IncomeTaxExpense / base.PretaxIncome
		in.TaxRate = &taxRate
	}

	return s.estimator.Estimate(in)
}

// record persists a completed run when a repository is configured. Failures
// are logged and swallowed; persistence never fails a valuation.
func (s *Service) record(ticker, mode string, p Params, payload snapshots.Payload) {
	if s.runs == nil {
		return
	}

	id, err := s.runs.Save(ticker, mode, p, payload)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Str("mode", mode).Msg("Failed to persist valuation run")
		return
	}

	s.log.Debug().Str("ticker", ticker).Str("mode", mode).Str("run_id", id).Msg("Persisted valuation run")
}
