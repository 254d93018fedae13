// Package imputation fills missing values with group medians or sentinel
// labels.
package imputation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/logging"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
)

// AllRowsKey is the partition key of an ungrouped median rule.
const AllRowsKey = "(all)"

// Result is the output of one imputation pass.
type Result struct {
	Table     *table.Table
	Summaries []quality.ImputationSummary
	Warnings  []quality.Warning
}

// Imputer applies imputation rules to a table.
type Imputer struct {
	schema *table.Schema
	logger logrus.FieldLogger
}

// NewImputer creates an imputer for tables of schema.
func NewImputer(schema *table.Schema, logger logrus.FieldLogger) *Imputer {
	return &Imputer{
		schema: schema,
		logger: logging.Component(logger, "imputer"),
	}
}

// Apply validates the rules and returns a new table version with every rule
// applied. Every rule reads the input table, so the result does not depend on
// rule order. A partition without observed values falls back to the global
// median with a warning; a target without any observed value is an
// ImputationGapError.
func (im *Imputer) Apply(t *table.Table, rules []quality.ImputationRule) (*Result, error) {
	if err := ValidateRules(im.schema, rules); err != nil {
		return nil, err
	}

	ordered := make([]quality.ImputationRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Target < ordered[j].Target })

	result := &Result{}
	cols := make([]*table.Column, 0, len(ordered))
	for _, rule := range ordered {
		var (
			col     *table.Column
			summary quality.ImputationSummary
			warns   []quality.Warning
			err     error
		)
		switch rule.Strategy {
		case quality.StrategyMedian:
			col, summary, warns, err = im.applyMedian(t, rule)
		case quality.StrategySentinel:
			col, summary, err = im.applySentinel(t, rule)
		}
		if err != nil {
			return nil, err
		}

		im.logger.WithFields(logrus.Fields{
			"rule":     rule.String(),
			"imputed":  summary.ImputedCount,
			"fallback": summary.FallbackCount,
		}).Info("applied imputation rule")

		cols = append(cols, col)
		result.Summaries = append(result.Summaries, summary)
		result.Warnings = append(result.Warnings, warns...)
	}

	next, err := t.Derive("imputed", cols...)
	if err != nil {
		return nil, err
	}
	result.Table = next
	return result, nil
}

func (im *Imputer) applyMedian(t *table.Table, rule quality.ImputationRule) (*table.Column, quality.ImputationSummary, []quality.Warning, error) {
	summary := quality.ImputationSummary{Rule: rule.String(), Target: rule.Target}

	target, err := t.Numeric(rule.Target)
	if err != nil {
		return nil, summary, nil, err
	}
	groups := make([]*table.Column, len(rule.GroupBy))
	for i, name := range rule.GroupBy {
		col, ok := t.Column(name)
		if !ok {
			return nil, summary, nil, core.NewFieldNotFoundError(name)
		}
		groups[i] = col
	}

	global, ok := median(target.Observed())
	if !ok {
		return nil, summary, nil, core.NewImputationGapError(rule.Target, "no observed values in the whole table")
	}
	summary.GlobalMedian = global

	partitions := make(map[string][]float64)
	keys := make([]string, t.Rows())
	for i := 0; i < t.Rows(); i++ {
		keys[i] = partitionKey(groups, i)
		if _, ok := partitions[keys[i]]; !ok {
			partitions[keys[i]] = nil
		}
		if v, ok := target.Float(i); ok {
			partitions[keys[i]] = append(partitions[keys[i]], v)
		}
	}

	fills := make(map[string]float64, len(partitions))
	var gaps []string
	for key, values := range partitions {
		if m, ok := median(values); ok {
			fills[key] = m
			continue
		}
		fills[key] = global
		gaps = append(gaps, key)
	}
	summary.GroupFills = fills

	gapSet := make(map[string]bool, len(gaps))
	for _, key := range gaps {
		gapSet[key] = true
	}

	values := target.Floats()
	for i, v := range values {
		if !math.IsNaN(v) {
			continue
		}
		values[i] = fills[keys[i]]
		summary.ImputedCount++
		if gapSet[keys[i]] {
			summary.FallbackCount++
		}
	}

	var warns []quality.Warning
	for _, key := range table.SortKeys(gaps) {
		w := quality.Warnf(quality.WarnImputationGap, rule.Target,
			"partition %s has no observed values; filled with global median %g", key, global)
		warns = append(warns, w)
		im.logger.WithFields(logrus.Fields{
			"field":     rule.Target,
			"partition": key,
		}).Warn("imputation partition fell back to global median")
	}

	return table.NewNumeric(rule.Target, values), summary, warns, nil
}

func (im *Imputer) applySentinel(t *table.Table, rule quality.ImputationRule) (*table.Column, quality.ImputationSummary, error) {
	summary := quality.ImputationSummary{
		Rule:          rule.String(),
		Target:        rule.Target,
		SentinelLabel: rule.Label(),
	}

	target, err := t.Categorical(rule.Target)
	if err != nil {
		return nil, summary, err
	}

	values, valid := target.Strings()
	for i := range values {
		if valid[i] {
			continue
		}
		values[i] = rule.Label()
		summary.ImputedCount++
	}
	return table.NewCategorical(rule.Target, values, nil), summary, nil
}

// partitionKey joins the grouping keys of row i.
func partitionKey(groups []*table.Column, i int) string {
	if len(groups) == 0 {
		return AllRowsKey
	}
	parts := make([]string, len(groups))
	for g, col := range groups {
		parts[g] = col.Key(i)
	}
	return strings.Join(parts, ", ")
}

// median is the midpoint median of the finite values.
func median(values []float64) (float64, bool) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, false
	}
	m, err := stats.Median(finite)
	if err != nil {
		return 0, false
	}
	return m, true
}

// Describe renders a summary line for logs and reports.
func Describe(s quality.ImputationSummary) string {
	if s.SentinelLabel != "" {
		return fmt.Sprintf("%s: %d filled with %q", s.Target, s.ImputedCount, s.SentinelLabel)
	}
	return fmt.Sprintf("%s: %d filled (%d from global median %g)", s.Target, s.ImputedCount, s.FallbackCount, s.GlobalMedian)
}
