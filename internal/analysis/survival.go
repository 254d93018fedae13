package analysis

import (
	"math"

	"paxclean/domain/quality"
	"paxclean/domain/table"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// survivalBreakdown computes the outcome rate per key of by. Rows with a
// missing outcome are skipped; a missing key is its own group.
func survivalBreakdown(outcome, by *table.Column) quality.SurvivalBreakdown {
	b := quality.SurvivalBreakdown{Field: by.Name()}

	groups := make(map[string]*quality.RateGroup)
	var keys []string
	for i := 0; i < outcome.Len(); i++ {
		v, ok := outcome.Float(i)
		if !ok {
			continue
		}
		key := by.Key(i)
		g, seen := groups[key]
		if !seen {
			g = &quality.RateGroup{Key: key}
			groups[key] = g
			keys = append(keys, key)
		}
		g.Count++
		if v == 1 {
			g.Positive++
		}
	}

	for _, key := range table.SortKeys(keys) {
		g := groups[key]
		g.Rate = float64(g.Positive) / float64(g.Count)
		b.Groups = append(b.Groups, *g)
	}

	b.ChiSquare, b.DF, b.PValue, b.Tested = chiSquareTest(b.Groups)
	return b
}

// chiSquareTest tests independence of group and outcome on the k x 2
// contingency table. It is undefined with fewer than two groups or when one
// outcome class is absent.
func chiSquareTest(groups []quality.RateGroup) (chi float64, df int, p float64, ok bool) {
	if len(groups) < 2 {
		return 0, 0, 0, false
	}
	positive := make([]float64, len(groups))
	negative := make([]float64, len(groups))
	for i, g := range groups {
		positive[i] = float64(g.Positive)
		negative[i] = float64(g.Count - g.Positive)
	}
	totalPos, totalNeg := floats.Sum(positive), floats.Sum(negative)
	n := totalPos + totalNeg
	if totalPos == 0 || totalNeg == 0 {
		return 0, 0, 0, false
	}

	for i := range groups {
		rowTotal := positive[i] + negative[i]
		for _, cell := range []struct{ observed, colTotal float64 }{
			{positive[i], totalPos},
			{negative[i], totalNeg},
		} {
			expected := rowTotal * cell.colTotal / n
			if expected == 0 {
				continue
			}
			d := cell.observed - expected
			chi += d * d / expected
		}
	}

	df = len(groups) - 1
	chiDist := distuv.ChiSquared{K: float64(df)}
	p = 1 - chiDist.CDF(chi)
	return chi, df, math.Max(p, 0), true
}
