package migration

import (
	"context"

	"paxclean/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.Steps() {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.DatabaseError("failed to "+step.Name, err)
		}
	}
	return nil
}

// Step is one named migration statement.
type Step struct {
	Name string
	SQL  string
}

// Steps lists the migration statements in execution order.
func (r *MigrationRunner) Steps() []Step {
	return []Step{
		{Name: "create pipeline_runs table", SQL: createPipelineRunsTable},
		{Name: "add pipeline_runs columns", SQL: addPipelineRunsColumns},
		{Name: "create indexes", SQL: createIndexes},
	}
}

const createPipelineRunsTable = `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		stage VARCHAR(40) NOT NULL,
		failed_stage VARCHAR(40),
		row_count INTEGER NOT NULL DEFAULT 0,
		input_fingerprint TEXT,
		output_fingerprint TEXT,
		report JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const addPipelineRunsColumns = `
	DO $$
	BEGIN
		-- warning_count was added after the first release
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'pipeline_runs' AND column_name = 'warning_count'
		) THEN
			ALTER TABLE pipeline_runs ADD COLUMN warning_count INTEGER NOT NULL DEFAULT 0;
		END IF;
	END $$;
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_pipeline_runs_created_at ON pipeline_runs (created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_pipeline_runs_status ON pipeline_runs (status);
`
