package profiling

import (
	"fmt"
	"strconv"
	"strings"

	"paxclean/domain/table"
)

// unknownTokens are matched case-insensitively as substrings.
var unknownTokens = []string{"unknown", "none", "null", "n/a"}

// Interpret returns the meaning of a zero value for a field, driven by its role.
func Interpret(d table.FieldDescriptor) string {
	switch d.Role {
	case table.RoleBinaryOutcome:
		return "0 = did not survive (valid value)"
	case table.RoleOrdinalClass:
		if len(d.AllowedValues) > 0 {
			return fmt.Sprintf("0 = invalid value (classes: %s)", joinValues(d.AllowedValues))
		}
		return "0 = invalid value (not a class)"
	case table.RoleAge:
		return "0 = invalid value (age cannot be 0)"
	case table.RoleCountLike:
		return "0 = none aboard (valid value)"
	case table.RoleCurrency:
		return "0 = free ticket (needs review)"
	case table.RoleLabel:
		return "not applicable"
	default:
		return "needs analysis"
	}
}

// ZeroIsValid reports whether zero is a legitimate value for the role.
func ZeroIsValid(role table.Role) bool {
	switch role {
	case table.RoleBinaryOutcome, table.RoleCountLike:
		return true
	}
	return false
}

// isUnknownLike reports whether s contains an unknown-like token.
func isUnknownLike(s string) bool {
	lower := strings.ToLower(s)
	for _, tok := range unknownTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func joinValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
