package device

// Property paths interpreted by the device view.
//
// This table is the single source of truth for where device state lives in
// the entity property document and what each accessor returns when the path
// is absent. Accessors in view.go and bioreactor.go are thin wrappers over
// these rows; adding a property means adding a row here and a getter pair,
// nothing else.
const (
	// PathStatus is the domain status of the device (online, offline,
	// running, idle, error). Distinct from the entity lifecycle status.
	PathStatus = "status"

	PathFirmwareVersion    = "firmware.version"
	PathFirmwareLastUpdate = "firmware.lastUpdate"

	PathHardwareModel      = "hardware.model"
	PathHardwareMACAddress = "hardware.macAddress"
	PathHardwareSensors    = "hardware.sensors"

	PathConfigReadingInterval = "config.readingInterval"
	PathConfigAlertThresholds = "config.alertThresholds"

	PathLastSeen     = "lastSeen"
	PathBatteryLevel = "batteryLevel"
)

// Bioreactor-specific property paths.
const (
	PathBioreactorType      = "bioreactorType"
	PathVesselVolume        = "vesselVolume"
	PathWorkingVolume       = "workingVolume"
	PathOperatingParameters = "operatingParameters"
	PathSafetyLimits        = "safetyLimits"
	PathControlMode         = "controlMode"
	PathExperimentID        = "experimentId"
)

// Documented defaults returned by accessors when a path is absent.
const (
	// DefaultStatus is reported for devices that have never checked in.
	DefaultStatus = "offline"

	// DefaultReadingInterval is the reporting cadence in seconds assumed
	// for unconfigured devices.
	DefaultReadingInterval = 60.0

	// DefaultBatteryLevel is reported when a device has never sent a
	// battery reading. Zero (not full) so dashboards surface the unknown.
	DefaultBatteryLevel = 0.0

	// DefaultControlMode is assumed for bioreactors without an explicit mode.
	DefaultControlMode = ControlModeManual

	// DefaultWorkingVolumeRatio is the fraction of vessel volume used for
	// the working volume when none is specified.
	DefaultWorkingVolumeRatio = 0.7
)

// Domain status values a device may report. Free-form values are tolerated
// on read; these are the ones the core interprets.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusRunning = "running"
	StatusIdle    = "idle"
	StatusError   = "error"
)

// ControlMode selects who drives a bioreactor's actuators.
type ControlMode string

// Control modes.
const (
	ControlModeManual     ControlMode = "manual"
	ControlModeAutomatic  ControlMode = "automatic"
	ControlModeExperiment ControlMode = "experiment"
)

// AllControlModes returns all valid control mode values.
func AllControlModes() []ControlMode {
	return []ControlMode{ControlModeManual, ControlModeAutomatic, ControlModeExperiment}
}

// operationalStatuses are the domain statuses under which a bioreactor
// counts as operational.
var operationalStatuses = map[string]struct{}{
	StatusOnline:  {},
	StatusRunning: {},
	StatusIdle:    {},
}
