package quality

import (
	"fmt"
	"strings"
)

// Strategy is how an imputation rule fills missing values.
type Strategy string

const (
	StrategyMedian   Strategy = "median"
	StrategySentinel Strategy = "sentinel"
)

// DefaultSentinel is the label used when a sentinel rule names none.
const DefaultSentinel = "Unknown"

// ImputationRule fills missing values of Target.
type ImputationRule struct {
	Target   string   `json:"target" yaml:"target"`
	GroupBy  []string `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Sentinel string   `json:"sentinel,omitempty" yaml:"sentinel,omitempty"`
}

// Label returns the fill label of a sentinel rule.
func (r ImputationRule) Label() string {
	if r.Sentinel == "" {
		return DefaultSentinel
	}
	return r.Sentinel
}

func (r ImputationRule) String() string {
	if len(r.GroupBy) == 0 {
		return fmt.Sprintf("%s(%s)", r.Strategy, r.Target)
	}
	return fmt.Sprintf("%s(%s by %s)", r.Strategy, r.Target, strings.Join(r.GroupBy, ", "))
}

// Policy is how outliers of a field are remediated.
type Policy string

const (
	PolicyClip    Policy = "clip"
	PolicyClipLog Policy = "clip+log"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyClip || p == PolicyClipLog
}

// RemediationRule binds a numeric field to a policy.
type RemediationRule struct {
	Field  string `json:"field" yaml:"field"`
	Policy Policy `json:"policy" yaml:"policy"`
}
