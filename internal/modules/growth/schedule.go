// Package growth derives per-year forecast growth-rate schedules, either from
// constant parameters, explicit overrides, or trailing-trend analysis of
// historical statements.
package growth

import (
	"github.com/halessi/dcf/internal/domain"
)

// Override specifies a non-constant growth schedule. Exactly one of ByYear or
// Rates may be populated:
//
//   - ByYear maps calendar year to rate; forecast years without an entry fall
//     back to the constant rate.
//   - Rates is an explicit per-forecast-year sequence; shorter than the
//     horizon is padded with the fallback, longer is truncated.
type Override struct {
	ByYear map[int]float64
	Rates  []float64
}

// BuildSchedule produces a growth schedule of length exactly horizon.
// baseYear is the statement year of the base snapshot; forecast year i
// (1-indexed) corresponds to calendar year baseYear+i for ByYear lookups.
func BuildSchedule(horizon int, fallback float64, baseYear int, override *Override) (domain.GrowthSchedule, error) {
	if horizon < 1 {
		return nil, &domain.InvalidGrowthSpecError{Reason: "forecast horizon must be at least 1"}
	}

	schedule := make(domain.GrowthSchedule, horizon)

	switch {
	case override == nil:
		for i := range schedule {
			schedule[i] = fallback
		}

	case override.ByYear != nil && override.Rates != nil:
		return nil, &domain.InvalidGrowthSpecError{Reason: "override must set by-year rates or a rate list, not both"}

	case override.ByYear != nil:
		for i := range schedule {
			if rate, ok := override.ByYear[baseYear+i+1]; ok {
				schedule[i] = rate
			} else {
				schedule[i] = fallback
			}
		}

	case override.Rates != nil:
		copied := copy(schedule, override.Rates)
		for i := copied; i < horizon; i++ {
			schedule[i] = fallback
		}

	default:
		return nil, &domain.InvalidGrowthSpecError{Reason: "override is empty: set by-year rates or a rate list"}
	}

	return schedule, nil
}
