package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"paxclean/domain/core"
	"paxclean/domain/run"
	"paxclean/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// SaveRun upserts a run report
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, report *run.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	s := report.Summarize()
	var inputFP string
	if report.Manifest != nil {
		inputFP = report.Manifest.InputFingerprint.String()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (id, input, status, stage, failed_stage, row_count, warning_count,
			input_fingerprint, output_fingerprint, report, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, NULLIF($9, ''), $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			stage = EXCLUDED.stage,
			failed_stage = EXCLUDED.failed_stage,
			row_count = EXCLUDED.row_count,
			warning_count = EXCLUDED.warning_count,
			output_fingerprint = EXCLUDED.output_fingerprint,
			report = EXCLUDED.report,
			updated_at = NOW()
	`, s.ID, s.Input, s.Status, s.Stage, s.FailedStage, s.RowCount, s.WarningCount,
		inputFP, report.OutputFingerprint.String(), data, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", s.ID, err)
	}
	return nil
}

// GetRun retrieves a run report by id
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*run.Report, error) {
	var data []byte
	err := r.db.GetContext(ctx, &data, `SELECT report FROM pipeline_runs WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("run", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	var report run.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode run report %s: %w", id, err)
	}
	return &report, nil
}

// ListRuns returns runs, newest first, optionally limited
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]run.Summary, error) {
	query := `
		SELECT id, input, status, stage, COALESCE(failed_stage, '') AS failed_stage,
			row_count, warning_count, created_at
		FROM pipeline_runs
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	summaries := []run.Summary{}
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return summaries, nil
}
