package formulas

import "math"

// CAGR calculates the compound annual growth rate of an oldest-first series of
// annual values.
//
// Formula: CAGR = (Ending Value / Beginning Value)^(1/(n-1)) - 1
//
// Returns nil when fewer than two years exist or when the beginning value is
// non-positive (the exponent is undefined off a non-positive base).
func CAGR(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	first := values[0]
	last := values[len(values)-1]
	if first <= 0 || last <= 0 {
		return nil
	}

	years := float64(len(values) - 1)
	cagr := math.Pow(last/first, 1/years) - 1
	return &cagr
}

// CAGROrDefault is CAGR with a fallback for series where the rate is
// undefined.
func CAGROrDefault(values []float64, fallback float64) float64 {
	if cagr := CAGR(values); cagr != nil {
		return *cagr
	}
	return fallback
}
