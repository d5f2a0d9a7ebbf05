package reading

import (
	"math"
	"strings"
	"time"
)

// Range is an inclusive [Min, Max] bound on reading values.
type Range struct {
	Min float64
	Max float64
}

// Policy holds the data-driven ingestion rules.
//
// The unit and range tables are keyed by sensor type. A sensor type absent
// from a table skips that check entirely, which is what keeps the pipeline
// forward-compatible with sensor types the core has never heard of.
type Policy struct {
	// FutureTolerance is how far ahead of current UTC time an event
	// timestamp may be before the reading is rejected (not clamped).
	FutureTolerance time.Duration

	// Units maps sensor type to its allowed units.
	Units map[string][]string

	// Ranges maps sensor type to its inclusive value range.
	Ranges map[string]Range
}

// defaultFutureTolerance is the clock-skew allowance for event timestamps.
const defaultFutureTolerance = 5 * time.Minute

// DefaultPolicy returns the compiled-in ingestion policy. Deployments
// extend or override these tables via the ingest section of config.yaml.
func DefaultPolicy() Policy {
	return Policy{
		FutureTolerance: defaultFutureTolerance,
		Units: map[string][]string{
			"temperature":      {"celsius", "fahrenheit", "kelvin"},
			"humidity":         {"percent"},
			"ph":               {"ph"},
			"dissolved_oxygen": {"percent", "mg/l"},
			"pressure":         {"bar", "kpa", "psi"},
			"battery":          {"percent"},
		},
		Ranges: map[string]Range{
			"temperature":      {Min: -273.15, Max: 1000},
			"humidity":         {Min: 0, Max: 100},
			"ph":               {Min: 0, Max: 14},
			"dissolved_oxygen": {Min: 0, Max: 200},
			"battery":          {Min: 0, Max: 100},
		},
	}
}

// Validator enforces the ingestion policy on reading data before it is
// persisted. It is stateless and safe for concurrent use.
type Validator struct {
	policy Policy

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewValidator creates a validator for the given policy.
// Zero-value policy fields fall back to the defaults.
func NewValidator(policy Policy) *Validator {
	if policy.FutureTolerance <= 0 {
		policy.FutureTolerance = defaultFutureTolerance
	}
	if policy.Units == nil {
		policy.Units = DefaultPolicy().Units
	}
	if policy.Ranges == nil {
		policy.Ranges = DefaultPolicy().Ranges
	}
	return &Validator{
		policy: policy,
		now:    time.Now,
	}
}

// Validate checks one observation against the policy.
//
// Returns nil when the reading may be persisted, otherwise a
// *ValidationError naming the first violated rule. The zero timestamp means
// "no event time supplied" and skips the skew check (the log stamps the
// reading with current time on append).
func (v *Validator) Validate(data Data, timestamp time.Time) error {
	if strings.TrimSpace(data.SensorType) == "" {
		return newValidationError(RuleSensorTypeRequired, "sensorType is required")
	}

	if math.IsNaN(data.Value) || math.IsInf(data.Value, 0) {
		return newValidationError(RuleValueNotFinite, "value must be a finite number")
	}

	if allowed, known := v.policy.Units[data.SensorType]; known {
		if !containsUnit(allowed, data.Unit) {
			return newValidationError(RuleUnitNotAllowed,
				"unit %q is not allowed for %s (allowed: %s)",
				data.Unit, data.SensorType, strings.Join(allowed, ", "))
		}
	}

	if r, known := v.policy.Ranges[data.SensorType]; known {
		if data.Value < r.Min || data.Value > r.Max {
			return newValidationError(RuleValueOutOfRange,
				"value %v outside [%v, %v] for %s",
				data.Value, r.Min, r.Max, data.SensorType)
		}
	}

	if !timestamp.IsZero() {
		limit := v.now().UTC().Add(v.policy.FutureTolerance)
		if timestamp.After(limit) {
			return newValidationError(RuleTimestampInFuture,
				"timestamp %s is more than %s ahead of current time",
				timestamp.UTC().Format(time.RFC3339), v.policy.FutureTolerance)
		}
	}

	return nil
}

// containsUnit reports whether unit is in the allowed list (case-insensitive).
func containsUnit(allowed []string, unit string) bool {
	for _, u := range allowed {
		if strings.EqualFold(u, unit) {
			return true
		}
	}
	return false
}
