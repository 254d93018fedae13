package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/errors"
	"paxclean/internal/imputation"

	"gopkg.in/yaml.v3"
)

// Rules is the cleaning rule set of a run. It is read-only once loaded.
type Rules struct {
	Imputation      []quality.ImputationRule  `yaml:"imputation"`
	Remediation     []quality.RemediationRule `yaml:"remediation"`
	ZeroBreakdownBy string                    `yaml:"zero_breakdown_by"`
	Outcome         string                    `yaml:"outcome"`
}

// DefaultRules returns the passenger rule set.
func DefaultRules() *Rules {
	byClass := []string{table.FieldPclass}
	return &Rules{
		Imputation: []quality.ImputationRule{
			{Target: table.FieldAge, GroupBy: byClass, Strategy: quality.StrategyMedian},
			{Target: table.FieldFare, GroupBy: byClass, Strategy: quality.StrategyMedian},
			{Target: table.FieldSibSp, Strategy: quality.StrategyMedian},
			{Target: table.FieldParCh, Strategy: quality.StrategyMedian},
			{Target: table.FieldSex, Strategy: quality.StrategySentinel, Sentinel: quality.DefaultSentinel},
		},
		Remediation: []quality.RemediationRule{
			{Field: table.FieldAge, Policy: quality.PolicyClip},
			{Field: table.FieldFare, Policy: quality.PolicyClipLog},
		},
		ZeroBreakdownBy: table.FieldPclass,
		Outcome:         table.FieldSurvived,
	}
}

// LoadRules reads a YAML rule file. An empty path yields DefaultRules.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read rules file %s", path), err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules. Unknown keys are rejected; omitted sections
// keep their defaults.
func ParseRules(data []byte) (*Rules, error) {
	rules := DefaultRules()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var parsed Rules
	if err := dec.Decode(&parsed); err != nil && err != io.EOF {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse rules: %w", err))
	}
	if parsed.Imputation != nil {
		rules.Imputation = parsed.Imputation
	}
	if parsed.Remediation != nil {
		rules.Remediation = parsed.Remediation
	}
	if parsed.ZeroBreakdownBy != "" {
		rules.ZeroBreakdownBy = parsed.ZeroBreakdownBy
	}
	if parsed.Outcome != "" {
		rules.Outcome = parsed.Outcome
	}
	return rules, nil
}

// Validate checks the rules against schema before any run starts.
func (r *Rules) Validate(schema *table.Schema) error {
	if err := imputation.ValidateRules(schema, r.Imputation); err != nil {
		return err
	}

	seen := make(map[string]bool, len(r.Remediation))
	for _, rr := range r.Remediation {
		desc, ok := schema.Field(rr.Field)
		if !ok {
			return core.NewInvalidRuleError(rr.Field, "remediation field is not declared")
		}
		if desc.Kind != table.KindNumeric {
			return core.NewInvalidRuleError(rr.Field, "remediation needs a numeric field")
		}
		if !rr.Policy.Valid() {
			return fmt.Errorf("%w: %q for %s", core.ErrUnknownPolicy, rr.Policy, rr.Field)
		}
		if seen[rr.Field] {
			return core.NewInvalidRuleError(rr.Field, "duplicate remediation rule")
		}
		seen[rr.Field] = true
	}

	if r.ZeroBreakdownBy != "" {
		if _, ok := schema.Field(r.ZeroBreakdownBy); !ok {
			return core.NewInvalidRuleError(r.ZeroBreakdownBy, "zero breakdown field is not declared")
		}
	}
	if desc, ok := schema.Field(r.Outcome); !ok || desc.Role != table.RoleBinaryOutcome {
		return core.NewInvalidRuleError(r.Outcome, "outcome must be a declared binary-outcome field")
	}
	return nil
}

// RemediatedFields lists the fields named by remediation rules, in order.
func (r *Rules) RemediatedFields() []string {
	fields := make([]string, len(r.Remediation))
	for i, rr := range r.Remediation {
		fields[i] = rr.Field
	}
	return fields
}
