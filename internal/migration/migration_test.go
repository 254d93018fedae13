package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunner_Steps(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "1.0.0", r.Version())

	steps := r.Steps()
	assert.Len(t, steps, 3)
	assert.Contains(t, steps[0].SQL, "CREATE TABLE IF NOT EXISTS pipeline_runs")

	for _, step := range steps {
		assert.NotEmpty(t, step.Name)
		assert.True(t, strings.Contains(step.SQL, "IF NOT EXISTS"), step.Name)
	}
}

func TestRunner_CoversRepositoryColumns(t *testing.T) {
	var all strings.Builder
	for _, step := range NewRunner().Steps() {
		all.WriteString(step.SQL)
	}
	for _, col := range []string{
		"id", "input", "status", "stage", "failed_stage", "row_count", "warning_count",
		"input_fingerprint", "output_fingerprint", "report", "created_at", "updated_at",
	} {
		assert.Contains(t, all.String(), col+" ", col)
	}
}
