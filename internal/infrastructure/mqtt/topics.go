package mqtt

import "fmt"

// Topic prefixes for the BioCore MQTT namespace.
//
// Telemetry flows inward on biocore/telemetry/...; core-originated events
// flow outward on biocore/core/...; service lifecycle lives under
// biocore/system/....
const (
	// TopicPrefix is the base for all BioCore topics.
	TopicPrefix = "biocore"

	// TopicPrefixTelemetry is the base for inbound device telemetry.
	TopicPrefixTelemetry = "biocore/telemetry"

	// TopicPrefixCore is the base for core-originated topics.
	TopicPrefixCore = "biocore/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "biocore/system"
)

// Topics provides builders for BioCore MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	readingTopic := topics.TelemetryReading("bioreactor-01")
//	// Returns: "biocore/telemetry/bioreactor-01/reading"
type Topics struct{}

// TelemetryReading returns the topic a device publishes readings to.
//
// Example: biocore/telemetry/bioreactor-01/reading
func (Topics) TelemetryReading(entityID string) string {
	return fmt.Sprintf("%s/%s/reading", TopicPrefixTelemetry, entityID)
}

// TelemetryRejected returns the topic where the core reports readings it
// refused. Devices and diagnostics tooling can subscribe to their own
// rejection stream.
//
// Example: biocore/telemetry/bioreactor-01/rejected
func (Topics) TelemetryRejected(entityID string) string {
	return fmt.Sprintf("%s/%s/rejected", TopicPrefixTelemetry, entityID)
}

// EntityEvent returns the topic for entity lifecycle and property events.
//
// Example: biocore/core/entity/bioreactor-01/status_changed
func (Topics) EntityEvent(entityID, eventType string) string {
	return fmt.Sprintf("%s/entity/%s/%s", TopicPrefixCore, entityID, eventType)
}

// SystemStatus returns the service status topic. The core publishes a
// retained online/offline document here, and its LWT targets the same
// topic for crash detection.
//
// Example: biocore/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllTelemetryReadings returns a pattern matching every device's reading
// topic. The ingest pipeline subscribes with this.
//
// Pattern: biocore/telemetry/+/reading
func (Topics) AllTelemetryReadings() string {
	return fmt.Sprintf("%s/+/reading", TopicPrefixTelemetry)
}

// AllEntityEvents returns a pattern matching all entity events.
//
// Pattern: biocore/core/entity/+/+
func (Topics) AllEntityEvents() string {
	return fmt.Sprintf("%s/entity/+/+", TopicPrefixCore)
}

// AllTopics returns a pattern matching all BioCore topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: biocore/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// EntityIDFromTelemetryTopic extracts the entity ID from a telemetry
// topic. Returns false when the topic does not match the telemetry
// scheme.
//
// Example: "biocore/telemetry/bioreactor-01/reading" -> "bioreactor-01"
func EntityIDFromTelemetryTopic(topic string) (string, bool) {
	const prefix = TopicPrefixTelemetry + "/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return "", false
	}
	rest := topic[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			if i == 0 {
				return "", false
			}
			return rest[:i], true
		}
	}
	return "", false
}
