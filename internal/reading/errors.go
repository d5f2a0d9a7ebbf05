package reading

import (
	"errors"
	"fmt"
)

// Domain errors for the reading package.
var (
	// ErrValidation is the class all ingestion validation failures belong
	// to. Match with errors.Is; the concrete *ValidationError carries the
	// violated rule.
	ErrValidation = errors.New("reading: validation failed")

	// ErrNotFound is returned when a reading ID does not exist.
	ErrNotFound = errors.New("reading: not found")

	// ErrEntityNotFound is returned when appending a reading for an entity
	// that does not exist in the store.
	ErrEntityNotFound = errors.New("reading: entity not found")
)

// Validation rule identifiers carried by ValidationError.
const (
	RuleSensorTypeRequired = "sensor_type_required"
	RuleValueNotFinite     = "value_not_finite"
	RuleUnitNotAllowed     = "unit_not_allowed"
	RuleValueOutOfRange    = "value_out_of_range"
	RuleTimestampInFuture  = "timestamp_in_future"
	RuleUnknownField       = "unknown_field"
)

// ValidationError reports a single violated ingestion rule.
//
// It matches ErrValidation via errors.Is, so callers can branch on the
// class without inspecting the rule:
//
//	if errors.Is(err, reading.ErrValidation) { ... 4xx ... }
type ValidationError struct {
	// Rule is one of the Rule* identifiers.
	Rule string

	// Message is the human-readable detail for the failing reading.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("reading: validation failed (%s): %s", e.Rule, e.Message)
}

// Is reports membership in the ErrValidation class.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// newValidationError builds a ValidationError with a formatted message.
func newValidationError(rule, format string, args ...any) *ValidationError {
	return &ValidationError{
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	}
}
