package analysis

import (
	"math"

	"paxclean/domain/quality"
	"paxclean/domain/table"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minPairs is the smallest sample a correlation is reported for.
const minPairs = 3

// correlate computes the Pearson correlation of a and b over rows where both
// are finite.
func correlate(a, b *table.Column) quality.CorrelationPair {
	pair := quality.CorrelationPair{A: a.Name(), B: b.Name()}

	x := make([]float64, 0, a.Len())
	y := make([]float64, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		va, okA := a.Float(i)
		vb, okB := b.Float(i)
		if !okA || !okB || math.IsInf(va, 0) || math.IsInf(vb, 0) {
			continue
		}
		x = append(x, va)
		y = append(y, vb)
	}
	pair.N = len(x)
	if pair.N < minPairs {
		return pair
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return pair
	}
	r = math.Max(-1, math.Min(1, r))
	pair.R = r
	pair.PValue = correlationPValue(r, pair.N)
	pair.Defined = true
	return pair
}

// correlationPValue is the two-tailed p-value of r under the t distribution
// with n-2 degrees of freedom.
func correlationPValue(r float64, n int) float64 {
	if n < minPairs {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - tDist.CDF(math.Abs(t)))
}
