package valuation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halessi/dcf/internal/config"
	"github.com/halessi/dcf/internal/domain"
)

type fakeSource struct {
	history *domain.StatementHistory
	err     error

	lastPeriod string
	lastLimit  int
}

func (f *fakeSource) Statements(_ context.Context, _, period string, limit int) (*domain.StatementHistory, error) {
	f.lastPeriod = period
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func testDefaults() config.ValuationDefaults {
	return config.ValuationDefaults{
		DiscountRate:            0.10,
		EarningsGrowthRate:      0.05,
		CapExGrowthRate:         0.05,
		PerpetualGrowthRate:     0.05,
		WorkingCapitalDecayRate: 0.7,
		RiskFreeRate:            0.04,
		MarketPremium:           0.06,
		TaxRateFloor:            0.15,
		TaxRateCeiling:          0.35,
		ForecastYears:           5,
		HistoricalYears:         1,
		SweepStep:               0.01,
		SweepSteps:              5,
	}
}

func newTestService(source StatementSource) *Service {
	return NewService(source, nil, testDefaults(), zerolog.Nop())
}

func TestSingle(t *testing.T) {
	source := &fakeSource{history: fixtureHistory(1)}
	service := newTestService(source)

	result, err := service.Single(context.Background(), "TEST", service.Defaults())
	require.NoError(t, err)

	assert.Equal(t, "2023-12-31", result.Date)
	assert.Positive(t, result.EnterpriseValue)
	assert.Equal(t, IntervalAnnual, source.lastPeriod)
	assert.Equal(t, 2, source.lastLimit, "one window needs the prior period too")
}

func TestSingle_ErrorsPropagate(t *testing.T) {
	t.Run("source failure", func(t *testing.T) {
		service := newTestService(&fakeSource{err: errors.New("boom")})

		_, err := service.Single(context.Background(), "TEST", service.Defaults())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "statement source")
	})

	t.Run("missing field", func(t *testing.T) {
		history := fixtureHistory(1)
		history.Snapshots[0].EBIT = nil
		service := newTestService(&fakeSource{history: history})

		_, err := service.Single(context.Background(), "TEST", service.Defaults())
		require.Error(t, err)
		assert.True(t, domain.IsMissingField(err))
	})

	t.Run("insufficient history", func(t *testing.T) {
		service := newTestService(&fakeSource{history: &domain.StatementHistory{}})

		_, err := service.Single(context.Background(), "TEST", service.Defaults())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
	})
}

func TestHistorical(t *testing.T) {
	source := &fakeSource{history: fixtureHistory(3)}
	service := newTestService(source)

	series, err := service.Historical(context.Background(), "TEST", 3, IntervalAnnual, service.Defaults())
	require.NoError(t, err)

	assert.Len(t, series, 3)
	assert.Equal(t, 4, source.lastLimit)
}

func TestHistorical_InvalidInterval(t *testing.T) {
	service := newTestService(&fakeSource{history: fixtureHistory(1)})

	_, err := service.Historical(context.Background(), "TEST", 1, "monthly", service.Defaults())
	assert.Error(t, err)
}

func TestSensitivity(t *testing.T) {
	service := newTestService(&fakeSource{history: fixtureHistory(1)})

	series, err := service.Sensitivity(context.Background(), "TEST", 1, IntervalAnnual, service.Defaults(), VarEarningsGrowth, 0.01, 3)
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestEnhanced(t *testing.T) {
	source := &fakeSource{history: fixtureHistory(10)}
	service := newTestService(source)

	result, profile, err := service.Enhanced(context.Background(), "TEST", service.Defaults())
	require.NoError(t, err)

	assert.Equal(t, 11, source.lastLimit, "a decade of windows plus the prior period")
	assert.Equal(t, 11, profile.YearsOfData)

	assert.Positive(t, result.EnterpriseValue)
	require.NotNil(t, result.NPV)
	require.NotNil(t, result.TerminalValue)
	require.NotNil(t, result.IRR, "stock price and share count are present")
	assert.Len(t, result.ProjectedCashFlows, 5)
}

func TestRevalueWatchlist(t *testing.T) {
	t.Run("healthy tickers succeed", func(t *testing.T) {
		service := newTestService(&fakeSource{history: fixtureHistory(1)})

		err := service.RevalueWatchlist(context.Background(), []string{"AAA", "BBB"})
		assert.NoError(t, err)
	})

	t.Run("all failures reported", func(t *testing.T) {
		service := newTestService(&fakeSource{err: errors.New("down")})

		err := service.RevalueWatchlist(context.Background(), []string{"AAA", "BBB"})
		assert.Error(t, err)
	})

	t.Run("empty watchlist is a no-op", func(t *testing.T) {
		service := newTestService(&fakeSource{err: errors.New("down")})
		assert.NoError(t, service.RevalueWatchlist(context.Background(), nil))
	})
}
