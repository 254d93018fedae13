package quality

import "fmt"

// WarningCode classifies a recoverable condition.
type WarningCode string

const (
	WarnImputationGap        WarningCode = "IMPUTATION_GAP"
	WarnDegenerateDist       WarningCode = "DEGENERATE_DISTRIBUTION"
	WarnMonotonicity         WarningCode = "MONOTONICITY_VIOLATION"
	WarnNegativeLogInput     WarningCode = "NEGATIVE_LOG_INPUT"
	WarnUnresolvedMissing    WarningCode = "UNRESOLVED_MISSING"
	WarnNonFiniteValues      WarningCode = "NON_FINITE_VALUES"
	WarnInsufficientAnalysis WarningCode = "INSUFFICIENT_DATA"
)

// Warning is a recoverable condition reported alongside results.
type Warning struct {
	Code    WarningCode `json:"code"`
	Stage   string      `json:"stage,omitempty"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("[%s] %s", w.Code, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Code, w.Field, w.Message)
}

// Warnf builds a warning with a formatted message.
func Warnf(code WarningCode, field, format string, args ...interface{}) Warning {
	return Warning{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}
