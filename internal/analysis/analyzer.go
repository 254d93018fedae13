// Package analysis produces the descriptive summary of a cleaned passenger
// table: survival rates by group and pairwise correlations.
package analysis

import (
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/logging"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
)

// DefaultGroupings are the fields survival is broken down by.
var DefaultGroupings = []string{
	table.FieldPclass,
	table.FieldSex,
	table.FieldIsChild,
	table.FieldAgeGroup,
	table.FieldTotalRelatives,
}

// DefaultCorrelationFields are the numeric fields of the correlation matrix.
var DefaultCorrelationFields = []string{
	table.FieldSurvived,
	table.FieldPclass,
	table.FieldAge,
	table.FieldSibSp,
	table.FieldParCh,
	table.FieldFare,
	table.FieldFareLog,
	table.FieldTotalRelatives,
}

// Analyzer computes the descriptive summary.
type Analyzer struct {
	outcome   string
	groupings []string
	numeric   []string
	logger    logrus.FieldLogger
}

// NewAnalyzer creates an analyzer with the default groupings and fields.
func NewAnalyzer(logger logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		outcome:   table.FieldSurvived,
		groupings: DefaultGroupings,
		numeric:   DefaultCorrelationFields,
		logger:    logging.Component(logger, "analyzer"),
	}
}

// WithGroupings returns a copy of a breaking survival down by fields.
func (a *Analyzer) WithGroupings(fields ...string) *Analyzer {
	c := *a
	c.groupings = fields
	return &c
}

// Analyze summarizes t. The outcome field is required; grouping and
// correlation fields absent from t are skipped.
func (a *Analyzer) Analyze(t *table.Table) (quality.AnalysisSummary, []quality.Warning, error) {
	summary := quality.AnalysisSummary{Rows: t.Rows(), Outcome: a.outcome}

	outcome, err := t.Numeric(a.outcome)
	if err != nil {
		return summary, nil, err
	}

	var warns []quality.Warning
	observed := outcome.Observed()
	summary.OutcomeObserved = len(observed)
	if len(observed) == 0 {
		warns = append(warns, quality.Warnf(quality.WarnInsufficientAnalysis, a.outcome, "no observed outcome values; survival rates skipped"))
	} else {
		summary.OverallRate, _ = stats.Mean(observed)
		for _, name := range a.groupings {
			by, ok := t.Column(name)
			if !ok {
				continue
			}
			summary.Survival = append(summary.Survival, survivalBreakdown(outcome, by))
		}
	}

	var cols []*table.Column
	for _, name := range a.numeric {
		col, ok := t.Column(name)
		if !ok || col.Kind() != table.KindNumeric {
			continue
		}
		cols = append(cols, col)
	}
	undefined := 0
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			pair := correlate(cols[i], cols[j])
			if !pair.Defined {
				undefined++
			}
			summary.Correlations = append(summary.Correlations, pair)
		}
	}
	if undefined > 0 {
		warns = append(warns, quality.Warnf(quality.WarnInsufficientAnalysis, "",
			"%d correlation pairs undefined (constant field or fewer than %d rows)", undefined, minPairs))
	}

	a.logger.WithFields(logrus.Fields{
		"rows":         summary.Rows,
		"overall_rate": summary.OverallRate,
		"breakdowns":   len(summary.Survival),
		"pairs":        len(summary.Correlations),
	}).Info("analysis complete")

	return summary, warns, nil
}
