// Package pipeline runs the cleaning stages over one table:
// raw -> profiled -> imputed -> outliers_detected -> remediated -> reported.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/run"
	"paxclean/domain/stage"
	"paxclean/domain/table"
	"paxclean/internal/analysis"
	"paxclean/internal/config"
	"paxclean/internal/errors"
	"paxclean/internal/features"
	"paxclean/internal/imputation"
	"paxclean/internal/logging"
	"paxclean/internal/outliers"
	"paxclean/internal/profiling"

	"github.com/sirupsen/logrus"
)

// CodeVersion is recorded in run manifests.
const CodeVersion = "1.0.0"

// Result is the outcome of one run. Table is the cleaned table and is nil
// when the run failed.
type Result struct {
	Report *run.Report
	Table  *table.Table
}

// Pipeline wires the stage engines together. It is safe for concurrent runs:
// engines hold no per-run state and tables are immutable.
type Pipeline struct {
	schema   *table.Schema
	rules    *config.Rules
	rulesFP  core.Fingerprint
	parallel int
	ageBins  []features.Bin

	profiler   *profiling.Profiler
	imputer    *imputation.Imputer
	detector   *outliers.Detector
	remediator *outliers.Remediator
	deriver    *features.Deriver
	analyzer   *analysis.Analyzer
	logger     logrus.FieldLogger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParallelFields bounds concurrent outlier detection. 0 means one
// goroutine per field.
func WithParallelFields(n int) Option {
	return func(p *Pipeline) { p.parallel = n }
}

// WithAgeBins replaces the default AgeGroup bins.
func WithAgeBins(bins ...features.Bin) Option {
	return func(p *Pipeline) { p.ageBins = bins }
}

// New validates rules against schema and builds a pipeline.
func New(schema *table.Schema, rules *config.Rules, logger logrus.FieldLogger, opts ...Option) (*Pipeline, error) {
	if err := rules.Validate(schema); err != nil {
		return nil, errors.Wrap(err, "invalid cleaning rules")
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rules: %w", err)
	}
	rulesFP, err := core.NewFingerprint(rulesJSON)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		schema:  schema,
		rules:   rules,
		rulesFP: rulesFP,
		logger:  logging.Component(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.profiler = profiling.NewProfiler(schema,
		profiling.WithBreakdown(rules.ZeroBreakdownBy),
		profiling.WithOutcome(rules.Outcome),
		profiling.WithLogger(logger),
	)
	p.imputer = imputation.NewImputer(schema, logger)
	p.detector = outliers.NewDetector(logger)
	p.remediator = outliers.NewRemediator(p.detector, logger)
	p.deriver, err = features.NewDeriver(table.FieldAge, p.ageBins...)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidRule, err)
	}
	p.analyzer = analysis.NewAnalyzer(logger)
	return p, nil
}

// Rules returns the rule set of the pipeline.
func (p *Pipeline) Rules() *config.Rules {
	return p.rules
}

// runState carries the table and report between stages.
type runState struct {
	report  *run.Report
	current *table.Table
	pre     []quality.OutlierSet
}

// Run executes every stage in order on raw. A failing stage halts the run:
// the returned Result still carries the report with the failed stage and
// reason, and the error wraps core.ErrStageFailed and the cause.
func (p *Pipeline) Run(ctx context.Context, raw *table.Table, input string) (*Result, error) {
	inputFP, err := raw.Fingerprint()
	if err != nil {
		return nil, err
	}
	manifest, err := run.NewManifest(input, inputFP, p.rulesFP, CodeVersion)
	if err != nil {
		return nil, err
	}

	st := &runState{report: run.NewReport(manifest), current: raw}
	st.report.RowCount = raw.Rows()
	log := p.logger.WithFields(logrus.Fields{"run_id": manifest.RunID, "rows": raw.Rows()})
	log.Info("pipeline started")

	steps := []struct {
		to stage.StageName
		fn func(context.Context, *runState) ([]quality.Warning, error)
	}{
		{stage.StageProfiled, p.profile},
		{stage.StageImputed, p.impute},
		{stage.StageOutliersDetected, p.detect},
		{stage.StageRemediated, p.remediate},
		{stage.StageReported, p.analyze},
	}

	for _, step := range steps {
		if err := p.step(ctx, st, step.to, step.fn); err != nil {
			st.report.Status = run.StatusFailed
			st.report.FinishedAt = core.Now()
			st.report.Lineage = st.current.Lineage()
			log.WithFields(logrus.Fields{
				"stage": step.to,
				"code":  errors.GetCode(err),
			}).WithError(err).Error("pipeline halted")
			return &Result{Report: st.report}, fmt.Errorf("%w: %s: %w", core.ErrStageFailed, step.to, err)
		}
	}

	st.report.Status = run.StatusSucceeded
	st.report.FinishedAt = core.Now()
	st.report.Lineage = st.current.Lineage()
	st.report.OutputFields = st.current.Names()
	if st.report.OutputFingerprint, err = st.current.Fingerprint(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"warnings": len(st.report.Warnings),
		"version":  st.current.Version(),
	}).Info("pipeline finished")
	return &Result{Report: st.report, Table: st.current}, nil
}

// step advances the state machine by one stage and records the outcome.
func (p *Pipeline) step(ctx context.Context, st *runState, to stage.StageName, fn func(context.Context, *runState) ([]quality.Warning, error)) error {
	if err := stage.Advance(st.report.Stage, to); err != nil {
		return err
	}
	result := stage.StageResult{StageName: to}
	if err := ctx.Err(); err != nil {
		p.recordFailure(st, result, 0, err)
		return err
	}

	start := time.Now()
	warns, err := fn(ctx, st)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		p.recordFailure(st, result, elapsed, err)
		return err
	}

	for i := range warns {
		warns[i].Stage = string(to)
	}
	result.Success = true
	result.Duration = elapsed
	result.Warnings = warns
	result.TableVersion = st.current.Version()
	if result.Fingerprint, err = st.current.Fingerprint(); err != nil {
		return err
	}

	st.report.Stages.AddResult(result)
	st.report.Warnings = append(st.report.Warnings, warns...)
	st.report.Stage = to

	p.logger.WithFields(logrus.Fields{
		"stage":       to,
		"version":     result.TableVersion,
		"warnings":    len(warns),
		"duration_ms": elapsed,
	}).Info("stage complete")
	return nil
}

func (p *Pipeline) recordFailure(st *runState, result stage.StageResult, elapsed int64, err error) {
	code := errors.GetCode(err)
	result.Duration = elapsed
	result.Error = err.Error()
	result.ErrorCode = code
	result.TableVersion = st.current.Version()
	st.report.Stages.AddResult(result)
	st.report.Failure = &stage.Failure{Stage: result.StageName, Code: code, Reason: err.Error()}
}

// Profile validates raw against the schema and profiles it without running
// the remaining stages.
func (p *Pipeline) Profile(raw *table.Table) (quality.ProfileResult, error) {
	if err := p.schema.Validate(raw); err != nil {
		return quality.ProfileResult{}, err
	}
	return p.profiler.Profile(raw)
}

func (p *Pipeline) profile(_ context.Context, st *runState) ([]quality.Warning, error) {
	profile, err := p.Profile(st.current)
	if err != nil {
		return nil, err
	}
	st.report.Profile = &profile
	return nil, nil
}

func (p *Pipeline) impute(_ context.Context, st *runState) ([]quality.Warning, error) {
	res, err := p.imputer.Apply(st.current, p.rules.Imputation)
	if err != nil {
		return nil, err
	}
	warns := res.Warnings
	for _, rule := range p.rules.Imputation {
		col, ok := res.Table.Column(rule.Target)
		if ok && col.MissingCount() > 0 {
			warns = append(warns, quality.Warnf(quality.WarnUnresolvedMissing, rule.Target,
				"%d values still missing after imputation", col.MissingCount()))
		}
	}
	st.current = res.Table
	st.report.Imputation = res.Summaries
	return warns, nil
}

func (p *Pipeline) detect(ctx context.Context, st *runState) ([]quality.Warning, error) {
	sets, warns, err := p.detector.DetectAll(ctx, st.current, p.rules.RemediatedFields(), p.parallel)
	if err != nil {
		return nil, err
	}
	st.pre = sets
	st.report.OutliersPre = sets
	return warns, nil
}

// remediate applies each policy to the detected version, merges the derived
// columns into one new version and adds the derived features.
func (p *Pipeline) remediate(_ context.Context, st *runState) ([]quality.Warning, error) {
	detected := st.current
	var (
		warns   []quality.Warning
		derived []*table.Column
	)
	for i, rule := range p.rules.Remediation {
		rem, err := p.remediator.Remediate(detected, st.pre[i], rule.Policy)
		if err != nil {
			return nil, err
		}
		for _, name := range []string{rem.Summary.ProcessedField, rem.Summary.LogField} {
			if name == "" {
				continue
			}
			col, _ := rem.Table.Column(name)
			derived = append(derived, col)
		}
		st.report.Remediation = append(st.report.Remediation, rem.Summary)
		st.report.OutliersPost = append(st.report.OutliersPost, rem.Post)
		warns = append(warns, rem.Warnings...)
	}

	remediated, err := detected.Derive("remediated", derived...)
	if err != nil {
		return nil, err
	}
	withFeatures, err := p.deriver.Derive(remediated)
	if err != nil {
		return nil, err
	}
	st.current = withFeatures
	return warns, nil
}

func (p *Pipeline) analyze(_ context.Context, st *runState) ([]quality.Warning, error) {
	summary, warns, err := p.analyzer.Analyze(st.current)
	if err != nil {
		return nil, err
	}
	st.report.Analysis = &summary
	return warns, nil
}
