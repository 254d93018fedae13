// Package profiling computes the read-only quality profile of a table:
// missingness, zero values, text and range anomalies.
package profiling

import (
	"strings"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/logging"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
)

// Profiler computes missingness and zero-value summaries for the fields of a
// schema. It never modifies the table it reads.
type Profiler struct {
	schema      *table.Schema
	breakdownBy string
	outcome     string
	logger      logrus.FieldLogger
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithBreakdown sets the field zero counts are broken down by. Empty disables
// the breakdown.
func WithBreakdown(field string) Option {
	return func(p *Profiler) { p.breakdownBy = field }
}

// WithOutcome sets the binary field used for per-group survival rates.
func WithOutcome(field string) Option {
	return func(p *Profiler) { p.outcome = field }
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Profiler) { p.logger = logger }
}

// NewProfiler creates a profiler over schema. By default zero counts are
// broken down by passenger class with survival rates.
func NewProfiler(schema *table.Schema, opts ...Option) *Profiler {
	p := &Profiler{
		schema:      schema,
		breakdownBy: table.FieldPclass,
		outcome:     table.FieldSurvived,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.Component(p.logger, "profiler")
	return p
}

// Profile produces the missingness report and zero summaries of t.
// A schema field that is absent or of the wrong kind is a schema error.
func (p *Profiler) Profile(t *table.Table) (quality.ProfileResult, error) {
	result := quality.ProfileResult{
		Missingness: quality.MissingnessReport{RowCount: t.Rows()},
	}

	for _, desc := range p.schema.Fields() {
		col, ok := t.Column(desc.Name)
		if !ok {
			return quality.ProfileResult{}, core.NewFieldNotFoundError(desc.Name)
		}
		if col.Kind() != desc.Kind {
			return quality.ProfileResult{}, core.NewWrongKindError(desc.Name, desc.Kind.String(), col.Kind().String())
		}

		fm := p.profileField(desc, col, t.Rows())
		result.Missingness.Fields = append(result.Missingness.Fields, fm)

		if desc.Kind == table.KindNumeric {
			result.Zeros = append(result.Zeros, p.zeroSummary(t, desc, col, fm))
		}

		p.logger.WithFields(logrus.Fields{
			"field":   desc.Name,
			"missing": fm.MissingCount,
			"zeros":   fm.ZeroCount,
		}).Debug("profiled field")
	}

	p.logger.WithFields(logrus.Fields{
		"rows":          t.Rows(),
		"fields":        len(result.Missingness.Fields),
		"total_missing": result.Missingness.TotalMissing(),
	}).Info("profile complete")

	return result, nil
}

func (p *Profiler) profileField(desc table.FieldDescriptor, col *table.Column, rows int) quality.FieldMissingness {
	fm := quality.FieldMissingness{
		Field:          desc.Name,
		Kind:           desc.Kind,
		Role:           desc.Role,
		RowCount:       rows,
		MissingCount:   col.MissingCount(),
		Interpretation: Interpret(desc),
	}
	fm.MissingFrac = fraction(fm.MissingCount, rows)

	if desc.Kind == table.KindCategorical {
		fm.Text = textAnomalies(col)
		return fm
	}

	fm.ZeroCount = zeroCount(col)
	fm.ZeroFrac = fraction(fm.ZeroCount, rows)
	fm.ZeroValid = ZeroIsValid(desc.Role)
	fm.Range = rangeAnomalies(desc, col)
	fm.Distribution = describe(col.Observed())
	return fm
}

func textAnomalies(col *table.Column) *quality.TextAnomalies {
	ta := &quality.TextAnomalies{}
	for i := 0; i < col.Len(); i++ {
		s, ok := col.Str(i)
		if !ok {
			continue
		}
		switch {
		case s == "":
			ta.EmptyCount++
		case strings.TrimSpace(s) == "":
			ta.WhitespaceCount++
		}
		if isUnknownLike(s) {
			ta.UnknownCount++
		}
	}
	return ta
}

func rangeAnomalies(desc table.FieldDescriptor, col *table.Column) *quality.RangeAnomalies {
	ra := &quality.RangeAnomalies{ImplausibleAbove: desc.ImplausibleAbove}
	observed := col.Observed()
	finite := finiteValues(observed)
	ra.NonFiniteCount = len(observed) - len(finite)
	if len(finite) > 0 {
		ra.Min, _ = stats.Min(finite)
		ra.Max, _ = stats.Max(finite)
	}

	for _, v := range observed {
		if desc.NonNegative && v < 0 {
			ra.NegativeCount++
		}
		if desc.ImplausibleAbove > 0 && v > desc.ImplausibleAbove {
			ra.ImplausibleCount++
		}
		if !desc.Allows(v) {
			ra.OutOfDomainCount++
		}
	}
	return ra
}

func (p *Profiler) zeroSummary(t *table.Table, desc table.FieldDescriptor, col *table.Column, fm quality.FieldMissingness) quality.ZeroSummary {
	zs := quality.ZeroSummary{
		Field:          desc.Name,
		ZeroCount:      fm.ZeroCount,
		ZeroFrac:       fm.ZeroFrac,
		ZeroValid:      fm.ZeroValid,
		Interpretation: fm.Interpretation,
	}
	if p.breakdownBy == "" || p.breakdownBy == desc.Name {
		return zs
	}
	by, ok := t.Column(p.breakdownBy)
	if !ok {
		return zs
	}
	var outcome *table.Column
	if p.outcome != "" {
		if c, err := t.Numeric(p.outcome); err == nil {
			outcome = c
		}
	}

	zs.BreakdownBy = p.breakdownBy
	type acc struct {
		zeros    int
		survived float64
		known    int
	}
	groups := make(map[string]*acc)
	var keys []string
	for i := 0; i < t.Rows(); i++ {
		key := by.Key(i)
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
			keys = append(keys, key)
		}
		if v, ok := col.Float(i); !ok || v != 0 {
			continue
		}
		g.zeros++
		if outcome == nil {
			continue
		}
		if s, ok := outcome.Float(i); ok {
			g.survived += s
			g.known++
		}
	}

	for _, key := range table.SortKeys(keys) {
		g := groups[key]
		zg := quality.ZeroGroup{Key: key, ZeroCount: g.zeros}
		if g.known > 0 {
			zg.SurvivalRate = g.survived / float64(g.known)
			zg.HasSurvival = true
		}
		zs.Breakdown = append(zs.Breakdown, zg)
	}
	return zs
}

func zeroCount(col *table.Column) int {
	n := 0
	for i := 0; i < col.Len(); i++ {
		if v, ok := col.Float(i); ok && v == 0 {
			n++
		}
	}
	return n
}

// fraction returns n/total, or 0 for an empty table.
func fraction(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
