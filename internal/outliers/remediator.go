package outliers

import (
	"fmt"
	"math"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/logging"

	"github.com/sirupsen/logrus"
)

// Remediation is the result of remediating one field.
type Remediation struct {
	Table    *table.Table
	Summary  quality.RemediationSummary
	Post     quality.OutlierSet
	Warnings []quality.Warning
}

// Remediator clips fields to their bounds into derived fields and verifies the
// result by detecting again.
type Remediator struct {
	detector *Detector
	logger   logrus.FieldLogger
}

// NewRemediator creates a remediator that verifies with detector.
func NewRemediator(detector *Detector, logger logrus.FieldLogger) *Remediator {
	return &Remediator{
		detector: detector,
		logger:   logging.Component(logger, "outlier_remediator"),
	}
}

// Clip bounds every present value to [lower, upper]. Missing values stay
// missing. It returns the clipped copy and the number of changed values.
func Clip(values []float64, lower, upper float64) ([]float64, int) {
	out := make([]float64, len(values))
	changed := 0
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case v > upper:
			out[i] = upper
			changed++
		case v < lower:
			out[i] = lower
			changed++
		default:
			out[i] = v
		}
	}
	return out, changed
}

// Log1p returns ln(1+v) for each value. Negative inputs become missing and
// are counted.
func Log1p(values []float64) ([]float64, int) {
	out := make([]float64, len(values))
	negative := 0
	for i, v := range values {
		if v < 0 {
			out[i] = math.NaN()
			negative++
			continue
		}
		out[i] = math.Log1p(v)
	}
	return out, negative
}

// Remediate applies policy to the field of pre on t. The original field is
// kept; the clipped values go to <field>_processed and, for clip+log, ln(1+x)
// of the original values goes to <field>_log. pre must have been detected on
// t itself. A degenerate distribution (IQR = 0) is left unchanged.
func (r *Remediator) Remediate(t *table.Table, pre quality.OutlierSet, policy quality.Policy) (*Remediation, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPolicy, policy)
	}
	if pre.TableVersion != t.Version() {
		return nil, fmt.Errorf("%w: %s detected on version %d, table is version %d",
			core.ErrStaleBounds, pre.Field, pre.TableVersion, t.Version())
	}

	col, err := t.Numeric(pre.Field)
	if err != nil {
		return nil, err
	}

	summary := quality.RemediationSummary{
		Field:          pre.Field,
		Policy:         policy,
		ProcessedField: table.ProcessedName(pre.Field),
		PreCount:       pre.Count(),
	}

	values := col.Floats()
	clipped := values
	var warns []quality.Warning
	if pre.Bounds.Degenerate {
		warns = append(warns, quality.Warnf(quality.WarnDegenerateDist, pre.Field,
			"IQR is zero; %s copied without clipping", summary.ProcessedField))
	} else {
		clipped, summary.ClippedCount = Clip(values, pre.Bounds.Lower, pre.Bounds.Upper)
	}
	cols := []*table.Column{table.NewNumeric(summary.ProcessedField, clipped)}

	if policy == quality.PolicyClipLog {
		summary.LogField = table.LogName(pre.Field)
		logged, negative := Log1p(values)
		summary.NegativeLogInput = negative
		if negative > 0 {
			warns = append(warns, quality.Warnf(quality.WarnNegativeLogInput, pre.Field,
				"%d negative values cannot be log-transformed; left missing in %s", negative, summary.LogField))
		}
		cols = append(cols, table.NewNumeric(summary.LogField, logged))
	}

	next, err := t.Derive("remediated:"+pre.Field, cols...)
	if err != nil {
		return nil, err
	}

	post, postWarns, err := r.detector.Detect(next, summary.ProcessedField)
	if err != nil {
		return nil, err
	}
	summary.PostCount = post.Count()
	summary.PostBounds = post.Bounds
	summary.Monotonic = summary.PostCount <= summary.PreCount
	if !summary.Monotonic {
		warns = append(warns, quality.Warnf(quality.WarnMonotonicity, pre.Field,
			"%d outliers after remediation, %d before", summary.PostCount, summary.PreCount))
	}
	warns = append(warns, postWarns...)

	r.logger.WithFields(logrus.Fields{
		"field":   pre.Field,
		"policy":  policy,
		"clipped": summary.ClippedCount,
		"pre":     summary.PreCount,
		"post":    summary.PostCount,
	}).Info("remediated field")

	return &Remediation{
		Table:    next,
		Summary:  summary,
		Post:     post,
		Warnings: warns,
	}, nil
}
