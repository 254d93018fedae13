package run

import (
	"time"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/stage"
)

// Status of a run
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Report is everything a run exposes to presentation and storage. It never
// holds table values.
type Report struct {
	Manifest *Manifest       `json:"manifest"`
	Status   Status          `json:"status"`
	Stage    stage.StageName `json:"stage"`
	Failure  *stage.Failure  `json:"failure,omitempty"`
	RowCount int             `json:"row_count"`

	Stages            *stage.PipelineResult `json:"stages"`
	Lineage           []string              `json:"lineage"`
	OutputFingerprint core.Fingerprint      `json:"output_fingerprint,omitempty"`
	OutputFields      []string              `json:"output_fields,omitempty"`

	Profile      *quality.ProfileResult       `json:"profile,omitempty"`
	Imputation   []quality.ImputationSummary  `json:"imputation,omitempty"`
	OutliersPre  []quality.OutlierSet         `json:"outliers_pre,omitempty"`
	OutliersPost []quality.OutlierSet         `json:"outliers_post,omitempty"`
	Remediation  []quality.RemediationSummary `json:"remediation,omitempty"`
	Analysis     *quality.AnalysisSummary     `json:"analysis,omitempty"`
	Warnings     []quality.Warning            `json:"warnings,omitempty"`
	FinishedAt   core.Timestamp               `json:"finished_at"`
}

// NewReport starts the report of a run at the raw stage.
func NewReport(m *Manifest) *Report {
	return &Report{
		Manifest: m,
		Status:   StatusRunning,
		Stage:    stage.StageRaw,
		Stages:   stage.NewPipelineResult(),
	}
}

// ID returns the run id.
func (r *Report) ID() core.RunID {
	if r.Manifest == nil {
		return ""
	}
	return r.Manifest.RunID
}

// Succeeded reports whether the run reached the final stage.
func (r *Report) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Remediated looks up the remediation summary of a field.
func (r *Report) Remediated(field string) (quality.RemediationSummary, bool) {
	for _, s := range r.Remediation {
		if s.Field == field {
			return s, true
		}
	}
	return quality.RemediationSummary{}, false
}

// Imputed looks up the imputation summary of a target.
func (r *Report) Imputed(target string) (quality.ImputationSummary, bool) {
	for _, s := range r.Imputation {
		if s.Target == target {
			return s, true
		}
	}
	return quality.ImputationSummary{}, false
}

// WarningsWithCode filters warnings by code.
func (r *Report) WarningsWithCode(code quality.WarningCode) []quality.Warning {
	var out []quality.Warning
	for _, w := range r.Warnings {
		if w.Code == code {
			out = append(out, w)
		}
	}
	return out
}

// Summary is the listing view of a stored run.
type Summary struct {
	ID           core.RunID      `json:"id" db:"id"`
	Input        string          `json:"input" db:"input"`
	Status       Status          `json:"status" db:"status"`
	Stage        stage.StageName `json:"stage" db:"stage"`
	FailedStage  string          `json:"failed_stage,omitempty" db:"failed_stage"`
	RowCount     int             `json:"row_count" db:"row_count"`
	WarningCount int             `json:"warning_count" db:"warning_count"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// Summarize builds the listing view of a report.
func (r *Report) Summarize() Summary {
	s := Summary{
		ID:           r.ID(),
		Status:       r.Status,
		Stage:        r.Stage,
		RowCount:     r.RowCount,
		WarningCount: len(r.Warnings),
	}
	if r.Manifest != nil {
		s.Input = r.Manifest.Input
		s.CreatedAt = r.Manifest.CreatedAt.Time()
	}
	if r.Failure != nil {
		s.FailedStage = string(r.Failure.Stage)
	}
	return s
}
