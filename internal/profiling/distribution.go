package profiling

import (
	"math"

	"paxclean/domain/quality"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// describe computes the distribution of the finite values. Returns nil when
// there are none.
func describe(values []float64) *quality.Distribution {
	finite := finiteValues(values)
	if len(finite) == 0 {
		return nil
	}

	dist := &quality.Distribution{Count: len(finite)}
	dist.Mean, _ = stats.Mean(finite)
	dist.Median, _ = stats.Median(finite)
	if len(finite) > 1 {
		dist.StdDev, _ = stats.StandardDeviationSample(finite)
	}

	// Shape moments are undefined for constant data.
	if dist.StdDev > 0 {
		if len(finite) >= 3 {
			dist.Skewness = stat.Skew(finite, nil)
		}
		if len(finite) >= 4 {
			dist.Kurtosis = stat.ExKurtosis(finite, nil)
		}
	}
	return dist
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
