// Package formulas provides the numeric helpers shared by the growth and
// trend analysis layers.
package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// GrowthSeries converts an oldest-first series of annual values into
// year-over-year growth rates. Periods with a non-positive base are skipped
// (a growth rate off a zero or negative base is meaningless).
func GrowthSeries(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	rates := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			rates = append(rates, (values[i]-values[i-1])/values[i-1])
		}
	}

	return rates
}

// TrailingMean returns the mean of the last n values of data, or the mean of
// all of them when fewer than n exist.
func TrailingMean(data []float64, n int) float64 {
	if len(data) == 0 {
		return 0
	}
	if n > len(data) {
		n = len(data)
	}
	return Mean(data[len(data)-n:])
}

// Clamp bounds value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
