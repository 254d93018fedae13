package ports

import (
	"context"

	"paxclean/domain/core"
	"paxclean/domain/run"
)

// RunRepository stores run reports. Reports hold no table values.
type RunRepository interface {
	// SaveRun inserts a report or replaces the stored report with the same id.
	SaveRun(ctx context.Context, report *run.Report) error
	// GetRun returns the stored report. A missing run is a core.ErrNotFound.
	GetRun(ctx context.Context, id core.RunID) (*run.Report, error)
	// ListRuns returns the most recent runs first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]run.Summary, error)
}
