package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Schema errors
	ErrSchema           = errors.New("schema violation")
	ErrFieldNotFound    = fmt.Errorf("%w: field not found", ErrSchema)
	ErrWrongKind        = fmt.Errorf("%w: wrong field kind", ErrSchema)
	ErrValueDomain      = fmt.Errorf("%w: value outside domain", ErrSchema)
	ErrRowCountMismatch = fmt.Errorf("%w: row count mismatch", ErrSchema)

	// Imputation errors
	ErrImputationGap = errors.New("imputation gap")
	ErrInvalidRule   = errors.New("invalid imputation rule")

	// Outlier handling
	ErrDegenerateDistribution = errors.New("degenerate distribution")
	ErrUnknownPolicy          = errors.New("unknown remediation policy")
	ErrStaleBounds            = errors.New("outlier bounds belong to another table version")

	// Pipeline errors
	ErrInvalidTransition = errors.New("invalid stage transition")
	ErrStageFailed       = errors.New("stage failed")

	ErrNotFound = errors.New("resource not found")
)

// Error constructors with context
func NewFieldNotFoundError(field string) error {
	return fmt.Errorf("%w: %q", ErrFieldNotFound, field)
}

func NewWrongKindError(field string, want, got string) error {
	return fmt.Errorf("%w: %q is %s, expected %s", ErrWrongKind, field, got, want)
}

func NewValueDomainError(field string, row int, value float64) error {
	return fmt.Errorf("%w: %q row %d has value %v", ErrValueDomain, field, row, value)
}

func NewImputationGapError(field string, reason string) error {
	return fmt.Errorf("%w for %q: %s", ErrImputationGap, field, reason)
}

func NewInvalidRuleError(target string, reason string) error {
	return fmt.Errorf("%w for %q: %s", ErrInvalidRule, target, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsImputationGap(err error) bool {
	return errors.Is(err, ErrImputationGap)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
