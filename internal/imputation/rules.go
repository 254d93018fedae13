package imputation

import (
	"fmt"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/table"
)

// ValidateRules checks a rule set against the schema. Each target may appear
// once, grouping fields must be declared and may not be imputed by the same
// rule set, and the strategy must match the target's kind.
func ValidateRules(schema *table.Schema, rules []quality.ImputationRule) error {
	targets := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Target == "" {
			return core.NewInvalidRuleError("", "rule without target")
		}
		if targets[r.Target] {
			return core.NewInvalidRuleError(r.Target, "duplicate target")
		}
		targets[r.Target] = true
	}

	for _, r := range rules {
		desc, ok := schema.Field(r.Target)
		if !ok {
			return core.NewInvalidRuleError(r.Target, "target is not a declared field")
		}
		switch r.Strategy {
		case quality.StrategyMedian:
			if desc.Kind != table.KindNumeric {
				return core.NewInvalidRuleError(r.Target, "median strategy needs a numeric field")
			}
		case quality.StrategySentinel:
			if desc.Kind != table.KindCategorical {
				return core.NewInvalidRuleError(r.Target, "sentinel strategy needs a categorical field")
			}
			if len(r.GroupBy) > 0 {
				return core.NewInvalidRuleError(r.Target, "sentinel strategy takes no grouping fields")
			}
		default:
			return core.NewInvalidRuleError(r.Target, fmt.Sprintf("unknown strategy %q", r.Strategy))
		}

		seen := make(map[string]bool, len(r.GroupBy))
		for _, g := range r.GroupBy {
			if _, ok := schema.Field(g); !ok {
				return core.NewInvalidRuleError(r.Target, fmt.Sprintf("grouping field %q is not declared", g))
			}
			if g == r.Target || targets[g] {
				return core.NewInvalidRuleError(r.Target, fmt.Sprintf("grouping field %q is also an imputation target", g))
			}
			if seen[g] {
				return core.NewInvalidRuleError(r.Target, fmt.Sprintf("grouping field %q listed twice", g))
			}
			seen[g] = true
		}
	}
	return nil
}
