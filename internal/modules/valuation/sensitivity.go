package valuation

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/domain"
)

// Variable identifies a sweepable scalar model parameter.
type Variable string

// Sweepable variables.
const (
	VarEarningsGrowth  Variable = "earnings_growth_rate"
	VarCapExGrowth     Variable = "cap_ex_growth_rate"
	VarPerpetualGrowth Variable = "perpetual_growth_rate"
	VarDiscountRate    Variable = "discount_rate"
)

// ParseVariable resolves a variable name or its short alias to the canonical
// Variable. Unknown names are a caller error.
func ParseVariable(name string) (Variable, error) {
	switch name {
	case "eg", string(VarEarningsGrowth):
		return VarEarningsGrowth, nil
	case "cg", string(VarCapExGrowth):
		return VarCapExGrowth, nil
	case "pg", string(VarPerpetualGrowth):
		return VarPerpetualGrowth, nil
	case "discount", string(VarDiscountRate):
		return VarDiscountRate, nil
	default:
		return "", fmt.Errorf("unknown sweep variable %q (want one of: earnings_growth_rate, cap_ex_growth_rate, perpetual_growth_rate, discount_rate)", name)
	}
}

// Sweeper repeats a valuation while perturbing one parameter by a fixed
// percentage step across N trials. Every step derives its parameter set from
// the caller's base params by value, so the caller's state is never mutated.
type Sweeper struct {
	runner *HistoricalRunner
	log    zerolog.Logger
}

// NewSweeper creates a new sensitivity sweeper.
func NewSweeper(runner *HistoricalRunner, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		runner: runner,
		log:    log.With().Str("component", "sensitivity_sweeper").Logger(),
	}
}

// Sweep values the history once per step, with the chosen variable scaled to
// base * (1 + step*i) for i in 1..steps. Labels read "<variable>: <value>".
func (s *Sweeper) Sweep(ticker string, history *domain.StatementHistory, years int, interval string, base Params, variable Variable, step float64, steps int) (domain.SensitivitySeries, error) {
	if steps < 1 {
		return nil, fmt.Errorf("sweep requires at least 1 step, got %d", steps)
	}

	baseValue, err := variableValue(base, variable)
	if err != nil {
		return nil, err
	}

	series := make(domain.SensitivitySeries, steps)
	for i := 1; i <= steps; i++ {
		value := baseValue * (1 + step*float64(i))

		// Params is a value type; this copy is the only thing modified.
		stepParams := base
		setVariable(&stepParams, variable, value)

		label := fmt.Sprintf("%s: %.4g", variable, value)
		series[label] = s.runner.Run(ticker, history, years, interval, stepParams)

		s.log.Debug().
			Str("ticker", ticker).
			Str("label", label).
			Int("step", i).
			Msg("Sweep step complete")
	}

	return series, nil
}

func variableValue(p Params, v Variable) (float64, error) {
	switch v {
	case VarEarningsGrowth:
		return p.EarningsGrowthRate, nil
	case VarCapExGrowth:
		return p.CapExGrowthRate, nil
	case VarPerpetualGrowth:
		return p.PerpetualGrowthRate, nil
	case VarDiscountRate:
		return p.DiscountRate, nil
	default:
		return 0, fmt.Errorf("unknown sweep variable %q", v)
	}
}

func setVariable(p *Params, v Variable, value float64) {
	switch v {
	case VarEarningsGrowth:
		p.EarningsGrowthRate = value
	case VarCapExGrowth:
		p.CapExGrowthRate = value
	case VarPerpetualGrowth:
		p.PerpetualGrowthRate = value
	case VarDiscountRate:
		p.DiscountRate = value
	}
}
