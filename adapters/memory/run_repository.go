// Package memory holds in-process repositories used when no database is
// configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"paxclean/domain/core"
	"paxclean/domain/run"
	"paxclean/ports"
)

// RunRepository is an in-memory implementation of ports.RunRepository.
// Reports are stored encoded, so callers never share state with the store.
type RunRepository struct {
	mu        sync.RWMutex
	reports   map[core.RunID][]byte
	summaries map[core.RunID]run.Summary
}

// NewRunRepository creates an empty store
func NewRunRepository() ports.RunRepository {
	return &RunRepository{
		reports:   make(map[core.RunID][]byte),
		summaries: make(map[core.RunID]run.Summary),
	}
}

// SaveRun stores or replaces a report
func (r *RunRepository) SaveRun(ctx context.Context, report *run.Report) error {
	if report == nil || report.ID() == "" {
		return fmt.Errorf("run report without id")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.ID()] = data
	r.summaries[report.ID()] = report.Summarize()
	return nil
}

// GetRun retrieves a report by id
func (r *RunRepository) GetRun(ctx context.Context, id core.RunID) (*run.Report, error) {
	r.mu.RLock()
	data, exists := r.reports[id]
	r.mu.RUnlock()
	if !exists {
		return nil, core.NewNotFoundError("run", id.String())
	}

	var report run.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode run report: %w", err)
	}
	return &report, nil
}

// ListRuns returns the newest runs first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]run.Summary, error) {
	r.mu.RLock()
	result := make([]run.Summary, 0, len(r.summaries))
	for _, s := range r.summaries {
		result = append(result, s)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
