package reading

import (
	"time"

	"github.com/google/uuid"
)

// Quality values for reading data. Free-form values are tolerated; these
// are the conventional ones.
const (
	QualityGood      = "good"
	QualityUncertain = "uncertain"
	QualityBad       = "bad"
)

// Reading is one timestamped sensor observation referencing an entity.
// This matches the readings table in migrations/20260301_000000_initial_schema.up.sql.
type Reading struct {
	// ID is the unique reading identifier.
	ID string `json:"id"`

	// EntityID references the observed entity. Checked at ingestion; not a
	// store-level foreign key (entities may be archived or deleted without
	// cascading into their history).
	EntityID string `json:"entity_id"`

	// Timestamp is the event time, normalized to UTC at the boundary.
	Timestamp time.Time `json:"timestamp"`

	// Data is the observation document.
	Data Data `json:"data"`

	// CreatedAt is when the reading was persisted (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Data is the observation document carried by a reading.
type Data struct {
	// SensorType names the measured quantity (temperature, ph, ...).
	SensorType string `json:"sensorType"`

	// Value is the numeric observation.
	Value float64 `json:"value"`

	// Unit is the measurement unit; checked against the policy's unit
	// table when the sensor type is known.
	Unit string `json:"unit,omitempty"`

	// Quality tags the observation (good, uncertain, bad). Defaults to
	// good on append.
	Quality string `json:"quality,omitempty"`

	// Location optionally names where the observation was taken.
	Location string `json:"location,omitempty"`

	// BatteryLevel optionally reports the device battery at capture time.
	BatteryLevel *float64 `json:"batteryLevel,omitempty"`

	// Metadata holds free-form nested context.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Filter narrows a reading query. Zero values mean "no constraint".
type Filter struct {
	// SensorType restricts to one sensor type.
	SensorType string

	// Start is the inclusive lower bound on event time.
	Start time.Time

	// End is the exclusive upper bound on event time.
	End time.Time

	// Limit caps the number of readings returned (0 = no cap).
	Limit int
}

// GenerateID creates a new unique reading identifier.
func GenerateID() string {
	return uuid.New().String()
}
