package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/fermwerk/biocore/internal/reading"
)

// WriteReading mirrors one validated reading into InfluxDB.
//
// SQLite stays the system of record; this mirror exists for Grafana-style
// dashboards over long windows. The write is non-blocking; data is batched
// and sent asynchronously, and a disconnected client drops the point
// silently rather than stalling ingestion.
//
// Measurement: readings
// Tags: entity_id, sensor_type, unit, quality (low cardinality)
// Fields: value, battery_level (when reported)
func (c *Client) WriteReading(r *reading.Reading) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"entity_id":   r.EntityID,
		"sensor_type": r.Data.SensorType,
	}
	if r.Data.Unit != "" {
		tags["unit"] = r.Data.Unit
	}
	if r.Data.Quality != "" {
		tags["quality"] = r.Data.Quality
	}

	fields := map[string]interface{}{
		"value": r.Data.Value,
	}
	if r.Data.BatteryLevel != nil {
		fields["battery_level"] = *r.Data.BatteryLevel
	}

	point := write.NewPoint("readings", tags, fields, r.Timestamp)
	c.writeAPI.WritePoint(point)
}

// WriteEntityStatus records an entity status transition.
//
// Parameters:
//   - entityID: Entity identifier
//   - status: New status value (online, offline, running, ...)
func (c *Client) WriteEntityStatus(entityID, status string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"entity_status",
		map[string]string{
			"entity_id": entityID,
		},
		map[string]interface{}{
			"status": status,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., backfilled data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
