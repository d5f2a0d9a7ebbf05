package device

import (
	"fmt"
	"time"

	"github.com/fermwerk/biocore/internal/entity"
)

// View is the typed view over any entity in the device.* namespace.
//
// It interprets the property paths in paths.go. All getters degrade to the
// documented default when a path is absent or holds an unexpected shape;
// they never fail. Setters mutate the wrapped entity in memory — persist
// with entity.Store.Update.
type View struct {
	e *entity.Entity
}

// Wrap constructs a device view over an entity after confirming its type
// lives in the device namespace. Returns entity.ErrTypeMismatch otherwise.
func Wrap(e *entity.Entity) (*View, error) {
	if e == nil {
		return nil, entity.ErrInvalidEntity
	}
	if !e.InNamespace(entity.TypeNamespaceDevice) {
		return nil, fmt.Errorf("%w: %q is not a device type",
			entity.ErrTypeMismatch, e.EntityType)
	}
	if e.Properties == nil {
		e.Properties = entity.Properties{}
	}
	return &View{e: e}, nil
}

// Entity returns the wrapped entity, e.g. for persisting after mutation.
func (v *View) Entity() *entity.Entity {
	return v.e
}

// ID returns the wrapped entity's identifier.
func (v *View) ID() string {
	return v.e.ID
}

// Status returns the device's domain status. Default: "offline".
func (v *View) Status() string {
	return v.getString(PathStatus, DefaultStatus)
}

// SetStatus sets the device's domain status.
func (v *View) SetStatus(status string) {
	v.e.Properties.Set(PathStatus, status)
}

// FirmwareVersion returns the reported firmware version. Default: "".
func (v *View) FirmwareVersion() string {
	return v.getString(PathFirmwareVersion, "")
}

// SetFirmwareVersion records a firmware version and stamps the update time.
func (v *View) SetFirmwareVersion(version string, at time.Time) {
	v.e.Properties.Set(PathFirmwareVersion, version)
	v.e.Properties.Set(PathFirmwareLastUpdate, at.UTC().Format(time.RFC3339))
}

// FirmwareLastUpdate returns when the firmware was last updated.
// Default: zero time.
func (v *View) FirmwareLastUpdate() time.Time {
	return v.getTime(PathFirmwareLastUpdate)
}

// HardwareModel returns the hardware model string. Default: "".
func (v *View) HardwareModel() string {
	return v.getString(PathHardwareModel, "")
}

// MACAddress returns the hardware MAC address. Default: "".
func (v *View) MACAddress() string {
	return v.getString(PathHardwareMACAddress, "")
}

// Sensors returns the declared sensor type list. Default: empty list.
func (v *View) Sensors() []string {
	raw, ok := v.e.Properties.Get(PathHardwareSensors, nil).([]any)
	if !ok {
		return []string{}
	}
	sensors := make([]string, 0, len(raw))
	for _, s := range raw {
		if name, ok := s.(string); ok {
			sensors = append(sensors, name)
		}
	}
	return sensors
}

// SetSensors replaces the declared sensor type list.
func (v *View) SetSensors(sensors []string) {
	list := make([]any, len(sensors))
	for i, s := range sensors {
		list[i] = s
	}
	v.e.Properties.Set(PathHardwareSensors, list)
}

// ReadingInterval returns the configured reporting cadence in seconds.
// Default: 60.
func (v *View) ReadingInterval() float64 {
	return v.getFloat(PathConfigReadingInterval, DefaultReadingInterval)
}

// SetReadingInterval sets the reporting cadence in seconds.
func (v *View) SetReadingInterval(seconds float64) {
	v.e.Properties.Set(PathConfigReadingInterval, seconds)
}

// AlertThresholds returns the per-sensor alert threshold document.
// Default: empty document.
func (v *View) AlertThresholds() map[string]any {
	if m, ok := v.e.Properties.Get(PathConfigAlertThresholds, nil).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// SetAlertThreshold sets the alert threshold document for one sensor type.
func (v *View) SetAlertThreshold(sensorType string, threshold map[string]any) {
	v.e.Properties.Set(PathConfigAlertThresholds+"."+sensorType, threshold)
}

// LastSeen returns the device's last check-in time. Default: zero time.
func (v *View) LastSeen() time.Time {
	return v.getTime(PathLastSeen)
}

// MarkSeen records a check-in at the given time and, if the device was
// offline, brings its domain status online.
func (v *View) MarkSeen(at time.Time) {
	v.e.Properties.Set(PathLastSeen, at.UTC().Format(time.RFC3339))
	if v.Status() == StatusOffline {
		v.SetStatus(StatusOnline)
	}
}

// BatteryLevel returns the last reported battery percentage. Default: 0.
func (v *View) BatteryLevel() float64 {
	return v.getFloat(PathBatteryLevel, DefaultBatteryLevel)
}

// SetBatteryLevel records a battery percentage.
func (v *View) SetBatteryLevel(percent float64) {
	v.e.Properties.Set(PathBatteryLevel, percent)
}

// getString resolves a path to a string, or def on absence or wrong shape.
func (v *View) getString(path, def string) string {
	if s, ok := v.e.Properties.Get(path, def).(string); ok {
		return s
	}
	return def
}

// getFloat resolves a path to a float64, tolerating the integer shapes the
// JSON and YAML decoders produce. Returns def on absence or wrong shape.
func (v *View) getFloat(path string, def float64) float64 {
	switch n := v.e.Properties.Get(path, def).(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

// getTime resolves a path holding an RFC3339 string to a time.Time.
// Returns the zero time on absence or parse failure.
func (v *View) getTime(path string) time.Time {
	s, ok := v.e.Properties.Get(path, "").(string)
	if !ok || s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
