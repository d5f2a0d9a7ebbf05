package reading

import (
	"errors"
	"math"
	"testing"
	"time"
)

// fixedNow pins the validator clock so skew tests are deterministic.
var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testValidator(policy Policy) *Validator {
	v := NewValidator(policy)
	v.now = func() time.Time { return fixedNow }
	return v
}

func TestValidator_Validate(t *testing.T) {
	v := testValidator(Policy{})

	tests := []struct {
		name      string
		data      Data
		timestamp time.Time
		wantRule  string // "" = accept
	}{
		{
			name: "valid temperature reading",
			data: Data{SensorType: "temperature", Value: 37.2, Unit: "celsius"},
		},
		{
			name: "kelvin is an allowed temperature unit",
			data: Data{SensorType: "temperature", Value: 310.2, Unit: "kelvin"},
		},
		{
			name: "unit check is case-insensitive",
			data: Data{SensorType: "temperature", Value: 37.2, Unit: "Celsius"},
		},
		{
			name:     "missing sensor type",
			data:     Data{Value: 1},
			wantRule: RuleSensorTypeRequired,
		},
		{
			name:     "whitespace sensor type",
			data:     Data{SensorType: "   ", Value: 1},
			wantRule: RuleSensorTypeRequired,
		},
		{
			name:     "NaN value",
			data:     Data{SensorType: "temperature", Value: math.NaN(), Unit: "celsius"},
			wantRule: RuleValueNotFinite,
		},
		{
			name:     "infinite value",
			data:     Data{SensorType: "temperature", Value: math.Inf(1), Unit: "celsius"},
			wantRule: RuleValueNotFinite,
		},
		{
			name:     "disallowed unit for known sensor type",
			data:     Data{SensorType: "temperature", Value: 37.2, Unit: "rankine"},
			wantRule: RuleUnitNotAllowed,
		},
		{
			name: "unknown sensor type skips unit and range checks",
			data: Data{SensorType: "turbidity", Value: 12345.6, Unit: "ntu"},
		},
		{
			name: "ph at upper bound is accepted",
			data: Data{SensorType: "ph", Value: 14, Unit: "ph"},
		},
		{
			name:     "ph above upper bound is rejected",
			data:     Data{SensorType: "ph", Value: 14.01, Unit: "ph"},
			wantRule: RuleValueOutOfRange,
		},
		{
			name: "temperature at absolute zero is accepted",
			data: Data{SensorType: "temperature", Value: -273.15, Unit: "celsius"},
		},
		{
			name:     "temperature below absolute zero is rejected",
			data:     Data{SensorType: "temperature", Value: -274, Unit: "celsius"},
			wantRule: RuleValueOutOfRange,
		},
		{
			name:      "timestamp within tolerance is accepted",
			data:      Data{SensorType: "temperature", Value: 37.2, Unit: "celsius"},
			timestamp: fixedNow.Add(4 * time.Minute),
		},
		{
			name:      "timestamp beyond tolerance is rejected",
			data:      Data{SensorType: "temperature", Value: 37.2, Unit: "celsius"},
			timestamp: fixedNow.Add(6 * time.Minute),
			wantRule:  RuleTimestampInFuture,
		},
		{
			name:      "past timestamp is accepted",
			data:      Data{SensorType: "temperature", Value: 37.2, Unit: "celsius"},
			timestamp: fixedNow.Add(-24 * time.Hour),
		},
		{
			name: "zero timestamp skips skew check",
			data: Data{SensorType: "temperature", Value: 37.2, Unit: "celsius"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.data, tt.timestamp)
			if tt.wantRule == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation class", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error is not *ValidationError: %v", err)
			}
			if verr.Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", verr.Rule, tt.wantRule)
			}
		})
	}
}

func TestNewValidator_CustomPolicy(t *testing.T) {
	v := testValidator(Policy{
		FutureTolerance: time.Minute,
		Units:           map[string][]string{"glucose": {"g/l"}},
		Ranges:          map[string]Range{"glucose": {Min: 0, Max: 50}},
	})

	if err := v.Validate(Data{SensorType: "glucose", Value: 5, Unit: "g/l"}, time.Time{}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	err := v.Validate(Data{SensorType: "glucose", Value: 60, Unit: "g/l"}, time.Time{})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Validate() error = %v, want range rejection", err)
	}

	// The custom table replaces the defaults wholesale: temperature is now
	// an unknown type and passes unchecked.
	if err := v.Validate(Data{SensorType: "temperature", Value: 5000, Unit: "rankine"}, time.Time{}); err != nil {
		t.Errorf("Validate() error = %v, want unknown type to pass", err)
	}

	// Tightened tolerance applies.
	err = v.Validate(Data{SensorType: "glucose", Value: 5, Unit: "g/l"}, fixedNow.Add(2*time.Minute))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != RuleTimestampInFuture {
		t.Errorf("Validate() error = %v, want timestamp_in_future", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	v := testValidator(Policy{})

	err := v.Validate(Data{SensorType: "ph", Value: 15, Unit: "ph"}, time.Time{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Message == "" {
		t.Error("ValidationError.Message is empty")
	}
	if verr.Error() == "" {
		t.Error("ValidationError.Error() is empty")
	}
}
