package outliers

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of sorted using linear interpolation
// between order statistics (Hyndman and Fan type 7):
//
//	h = (n-1)p, Q = x[floor h] + (h - floor h)(x[floor h + 1] - x[floor h])
//
// sorted must be ascending and free of NaN. Returns NaN for empty input.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 || n == 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Quartiles returns Q1 and Q3 of values. NaN and infinite values are ignored.
// n is the number of values used.
func Quartiles(values []float64) (q1, q3 float64, n int) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN(), math.NaN(), 0
	}
	sort.Float64s(finite)
	return Quantile(finite, 0.25), Quantile(finite, 0.75), len(finite)
}
