// Package outliers detects IQR outliers and remediates them by clipping and
// log transformation.
package outliers

import (
	"context"
	"math"

	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/logging"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultFenceFactor is the IQR multiplier of the fences.
const DefaultFenceFactor = 1.5

// Detector computes IQR bounds and outlier sets. Bounds are computed from the
// given table version on every call.
type Detector struct {
	factor float64
	logger logrus.FieldLogger
}

// NewDetector creates a detector with the default fence factor.
func NewDetector(logger logrus.FieldLogger) *Detector {
	return &Detector{
		factor: DefaultFenceFactor,
		logger: logging.Component(logger, "outlier_detector"),
	}
}

// ComputeBounds derives the IQR fences of values. Finite values feed the
// quartiles. With no finite values the bounds are degenerate and empty.
func ComputeBounds(field string, values []float64, factor float64) quality.OutlierBounds {
	q1, q3, n := Quartiles(values)
	b := quality.OutlierBounds{Field: field, SampleSize: n}
	if n == 0 {
		b.Degenerate = true
		return b
	}
	b.Q1, b.Q3 = q1, q3
	b.IQR = q3 - q1
	b.Lower = q1 - factor*b.IQR
	b.Upper = q3 + factor*b.IQR
	b.Degenerate = b.IQR == 0
	return b
}

// Detect computes the bounds of a numeric field on t and the rows outside
// them. Missing values are never flagged. A zero IQR is reported as a warning
// and flags only values that differ from the constant.
func (d *Detector) Detect(t *table.Table, field string) (quality.OutlierSet, []quality.Warning, error) {
	col, err := t.Numeric(field)
	if err != nil {
		return quality.OutlierSet{}, nil, err
	}

	values := col.Floats()
	bounds := ComputeBounds(field, values, d.factor)
	set := quality.OutlierSet{
		Field:        field,
		TableVersion: t.Version(),
		Bounds:       bounds,
		Rows:         []int{},
	}

	var warns []quality.Warning
	if bounds.SampleSize == 0 {
		warns = append(warns, quality.Warnf(quality.WarnDegenerateDist, field, "no finite values; outlier detection skipped"))
		return set, warns, nil
	}
	if bounds.Degenerate {
		warns = append(warns, quality.Warnf(quality.WarnDegenerateDist, field, "IQR is zero (Q1 = Q3 = %g)", bounds.Q1))
	}

	nonFinite := 0
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsInf(v, 0) {
			nonFinite++
		}
		if !bounds.Contains(v) {
			set.Rows = append(set.Rows, i)
		}
	}
	if nonFinite > 0 {
		warns = append(warns, quality.Warnf(quality.WarnNonFiniteValues, field, "%d infinite values excluded from quartiles", nonFinite))
	}

	d.logger.WithFields(logrus.Fields{
		"field":    field,
		"version":  t.Version(),
		"q1":       bounds.Q1,
		"q3":       bounds.Q3,
		"lower":    bounds.Lower,
		"upper":    bounds.Upper,
		"outliers": set.Count(),
	}).Debug("detected outliers")

	return set, warns, nil
}

// DetectAll runs Detect for each field concurrently, at most parallel at a
// time (parallel <= 0 means one goroutine per field). The table is only read.
// Results keep the order of fields.
func (d *Detector) DetectAll(ctx context.Context, t *table.Table, fields []string, parallel int) ([]quality.OutlierSet, []quality.Warning, error) {
	sets := make([]quality.OutlierSet, len(fields))
	warns := make([][]quality.Warning, len(fields))

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, field := range fields {
		i, field := i, field
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, w, err := d.Detect(t, field)
			if err != nil {
				return err
			}
			sets[i] = set
			warns[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var all []quality.Warning
	for _, w := range warns {
		all = append(all, w...)
	}
	d.logger.WithField("fields", len(fields)).Info("outlier detection complete")
	return sets, all, nil
}
