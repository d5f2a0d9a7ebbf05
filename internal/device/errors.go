package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrInvalidControlMode) {
//	    // handle bad control input
//	}
var (
	// ErrInvalidControlMode is returned when a control mode value is not
	// one of manual, automatic or experiment, or when entering experiment
	// mode without an experiment ID.
	ErrInvalidControlMode = errors.New("device: invalid control mode")

	// ErrInvalidVolume is returned when a vessel or working volume is not
	// a positive number.
	ErrInvalidVolume = errors.New("device: invalid volume")

	// ErrWorkingVolumeExceedsVessel is returned when a working volume
	// larger than the vessel volume is written.
	ErrWorkingVolumeExceedsVessel = errors.New("device: working volume exceeds vessel volume")

	// ErrNoExperiment is returned when stopping an experiment on a
	// bioreactor that is not running one.
	ErrNoExperiment = errors.New("device: no experiment running")
)
