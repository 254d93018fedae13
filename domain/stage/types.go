package stage

import (
	"fmt"

	"paxclean/domain/core"
	"paxclean/domain/quality"
)

// StageName represents a named stage in the pipeline
type StageName string

// Pipeline stages in execution order. Transitions only move one step forward.
const (
	StageRaw              StageName = "raw"
	StageProfiled         StageName = "profiled"
	StageImputed          StageName = "imputed"
	StageOutliersDetected StageName = "outliers_detected"
	StageRemediated       StageName = "remediated"
	StageReported         StageName = "reported"
)

// Order lists the stages in execution order.
var Order = []StageName{
	StageRaw,
	StageProfiled,
	StageImputed,
	StageOutliersDetected,
	StageRemediated,
	StageReported,
}

// Index returns the position of s in Order, or -1.
func (s StageName) Index() int {
	for i, name := range Order {
		if name == s {
			return i
		}
	}
	return -1
}

// Next returns the stage after s.
func (s StageName) Next() (StageName, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(Order) {
		return "", false
	}
	return Order[i+1], true
}

// Terminal reports whether s is the last stage.
func (s StageName) Terminal() bool {
	return s == StageReported
}

// Advance validates the transition from -> to.
func Advance(from, to StageName) error {
	next, ok := from.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, from, to)
	}
	return nil
}

// StageResult represents the output of a stage execution
type StageResult struct {
	StageName    StageName         `json:"stage_name"`
	Success      bool              `json:"success"`
	TableVersion int               `json:"table_version"`
	Fingerprint  core.Fingerprint  `json:"fingerprint,omitempty"`
	Warnings     []quality.Warning `json:"warnings,omitempty"`
	Error        string            `json:"error,omitempty"`
	ErrorCode    string            `json:"error_code,omitempty"`
	Duration     int64             `json:"duration_ms"`
}

// Failure describes why a run halted.
type Failure struct {
	Stage  StageName `json:"stage"`
	Code   string    `json:"code"`
	Reason string    `json:"reason"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("stage %s failed (%s): %s", f.Stage, f.Code, f.Reason)
}

// PipelineSummary provides high-level pipeline statistics
type PipelineSummary struct {
	TotalStages   int   `json:"total_stages"`
	Successful    int   `json:"successful"`
	Failed        int   `json:"failed"`
	TotalDuration int64 `json:"total_duration_ms"`
	WarningCount  int   `json:"warning_count"`
}

// PipelineResult contains the per-stage results of one run.
type PipelineResult struct {
	Results []StageResult   `json:"results"`
	Overall PipelineSummary `json:"overall"`
}

// NewPipelineResult creates a new pipeline result
func NewPipelineResult() *PipelineResult {
	return &PipelineResult{
		Results: make([]StageResult, 0, len(Order)),
	}
}

// AddResult adds a stage result and updates summary
func (r *PipelineResult) AddResult(result StageResult) {
	r.Results = append(r.Results, result)
	r.Overall.TotalStages++

	if result.Success {
		r.Overall.Successful++
	} else {
		r.Overall.Failed++
	}

	r.Overall.TotalDuration += result.Duration
	r.Overall.WarningCount += len(result.Warnings)
}

// Success returns true if all stages succeeded
func (r *PipelineResult) Success() bool {
	return r.Overall.Failed == 0
}

// Warnings flattens the warnings of every stage in order.
func (r *PipelineResult) Warnings() []quality.Warning {
	var out []quality.Warning
	for _, res := range r.Results {
		out = append(out, res.Warnings...)
	}
	return out
}

// Last returns the most recent stage result.
func (r *PipelineResult) Last() (StageResult, bool) {
	if len(r.Results) == 0 {
		return StageResult{}, false
	}
	return r.Results[len(r.Results)-1], true
}
