package config

import (
	"testing"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesValid(t *testing.T) {
	rules := DefaultRules()
	require.NoError(t, rules.Validate(table.PassengerSchema()))
	assert.Equal(t, []string{table.FieldAge, table.FieldFare}, rules.RemediatedFields())
}

func TestLoadRulesFile(t *testing.T) {
	rules, err := LoadRules("testdata/rules.yaml")
	require.NoError(t, err)
	require.NoError(t, rules.Validate(table.PassengerSchema()))

	require.Len(t, rules.Imputation, 5)
	assert.Equal(t, []string{table.FieldPclass, table.FieldSex}, rules.Imputation[0].GroupBy)
	assert.Equal(t, quality.PolicyClipLog, rules.Remediation[1].Policy)
	assert.Equal(t, table.FieldSurvived, rules.Outcome, "omitted keys keep defaults")
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules("testdata/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
}

func TestParseRules(t *testing.T) {
	t.Run("empty document keeps defaults", func(t *testing.T) {
		rules, err := ParseRules(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultRules(), rules)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ParseRules([]byte("imputaton: []\n"))
		require.Error(t, err)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})

	t.Run("remediation override", func(t *testing.T) {
		rules, err := ParseRules([]byte("remediation:\n  - field: Fare\n    policy: clip\n"))
		require.NoError(t, err)
		require.Len(t, rules.Remediation, 1)
		assert.Equal(t, quality.PolicyClip, rules.Remediation[0].Policy)
		assert.Len(t, rules.Imputation, 5)
	})
}

func TestRulesValidate(t *testing.T) {
	schema := table.PassengerSchema()
	tests := []struct {
		name   string
		mutate func(r *Rules)
		target error
	}{
		{"grouping field imputed", func(r *Rules) {
			r.Imputation = append(r.Imputation, quality.ImputationRule{Target: table.FieldPclass, Strategy: quality.StrategyMedian})
		}, core.ErrInvalidRule},
		{"categorical remediation", func(r *Rules) {
			r.Remediation = append(r.Remediation, quality.RemediationRule{Field: table.FieldSex, Policy: quality.PolicyClip})
		}, core.ErrInvalidRule},
		{"unknown policy", func(r *Rules) {
			r.Remediation[0].Policy = "trim"
		}, core.ErrUnknownPolicy},
		{"duplicate remediation", func(r *Rules) {
			r.Remediation = append(r.Remediation, r.Remediation[0])
		}, core.ErrInvalidRule},
		{"unknown breakdown", func(r *Rules) {
			r.ZeroBreakdownBy = "Deck"
		}, core.ErrInvalidRule},
		{"outcome not binary", func(r *Rules) {
			r.Outcome = table.FieldFare
		}, core.ErrInvalidRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(rules)
			assert.ErrorIs(t, rules.Validate(schema), tt.target)
		})
	}
}
