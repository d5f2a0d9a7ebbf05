package device

import (
	"fmt"

	"github.com/fermwerk/biocore/internal/entity"
)

// Bioreactor is the typed view over entities of type "device.bioreactor".
// It extends the base device view with vessel geometry, operating
// parameters, safety limits, control mode and experiment tracking.
type Bioreactor struct {
	View
}

// WrapBioreactor constructs a bioreactor view after confirming the entity
// type. Only the exact type "device.bioreactor" is accepted; base device
// properties remain readable through the embedded View.
func WrapBioreactor(e *entity.Entity) (*Bioreactor, error) {
	if e == nil {
		return nil, entity.ErrInvalidEntity
	}
	if e.EntityType != entity.TypeBioreactor {
		return nil, fmt.Errorf("%w: %q is not a bioreactor",
			entity.ErrTypeMismatch, e.EntityType)
	}
	if e.Properties == nil {
		e.Properties = entity.Properties{}
	}
	return &Bioreactor{View: View{e: e}}, nil
}

// BioreactorType returns the reactor class (e.g. "stirred-tank",
// "airlift"). Default: "".
func (b *Bioreactor) BioreactorType() string {
	return b.getString(PathBioreactorType, "")
}

// SetBioreactorType sets the reactor class.
func (b *Bioreactor) SetBioreactorType(t string) {
	b.e.Properties.Set(PathBioreactorType, t)
}

// VesselVolume returns the total vessel volume in litres. Default: 0.
func (b *Bioreactor) VesselVolume() float64 {
	return b.getFloat(PathVesselVolume, 0)
}

// SetVesselVolume sets the total vessel volume in litres.
//
// If no working volume has been set, it defaults to 70% of the vessel
// volume. If an existing working volume would exceed the new vessel volume,
// the write is rejected.
func (b *Bioreactor) SetVesselVolume(litres float64) error {
	if litres <= 0 {
		return fmt.Errorf("%w: vessel volume must be positive, got %v", ErrInvalidVolume, litres)
	}
	if b.e.Properties.Has(PathWorkingVolume) && b.WorkingVolume() > litres {
		return fmt.Errorf("%w: working volume %v > vessel volume %v",
			ErrWorkingVolumeExceedsVessel, b.WorkingVolume(), litres)
	}

	b.e.Properties.Set(PathVesselVolume, litres)
	if !b.e.Properties.Has(PathWorkingVolume) {
		b.e.Properties.Set(PathWorkingVolume, litres*DefaultWorkingVolumeRatio)
	}
	return nil
}

// WorkingVolume returns the working volume in litres. If unset, it derives
// 70% of the vessel volume.
func (b *Bioreactor) WorkingVolume() float64 {
	if b.e.Properties.Has(PathWorkingVolume) {
		return b.getFloat(PathWorkingVolume, 0)
	}
	return b.VesselVolume() * DefaultWorkingVolumeRatio
}

// SetWorkingVolume sets the working volume in litres.
// The invariant workingVolume <= vesselVolume is enforced here, at write
// time, not merely at validation time.
func (b *Bioreactor) SetWorkingVolume(litres float64) error {
	if litres <= 0 {
		return fmt.Errorf("%w: working volume must be positive, got %v", ErrInvalidVolume, litres)
	}
	if vessel := b.VesselVolume(); vessel > 0 && litres > vessel {
		return fmt.Errorf("%w: working volume %v > vessel volume %v",
			ErrWorkingVolumeExceedsVessel, litres, vessel)
	}

	b.e.Properties.Set(PathWorkingVolume, litres)
	return nil
}

// OperatingParameters returns the setpoint document (temperature, pH,
// dissolved oxygen, agitation, ...). Default: empty document.
func (b *Bioreactor) OperatingParameters() map[string]any {
	if m, ok := b.e.Properties.Get(PathOperatingParameters, nil).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// SetOperatingParameter sets a single named setpoint.
func (b *Bioreactor) SetOperatingParameter(name string, value any) {
	b.e.Properties.Set(PathOperatingParameters+"."+name, value)
}

// SafetyLimits returns the hard-limit document. Default: empty document.
func (b *Bioreactor) SafetyLimits() map[string]any {
	if m, ok := b.e.Properties.Get(PathSafetyLimits, nil).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// SetSafetyLimit sets a single named hard limit.
func (b *Bioreactor) SetSafetyLimit(name string, value any) {
	b.e.Properties.Set(PathSafetyLimits+"."+name, value)
}

// ControlMode returns the active control mode. Default: manual.
func (b *Bioreactor) ControlMode() ControlMode {
	mode := ControlMode(b.getString(PathControlMode, string(DefaultControlMode)))
	switch mode {
	case ControlModeManual, ControlModeAutomatic, ControlModeExperiment:
		return mode
	default:
		return DefaultControlMode
	}
}

// SetControlMode transitions the bioreactor's control mode.
//
// Unknown modes are rejected. Entering experiment mode requires an
// experiment ID to already be set — use StartExperiment for the combined
// transition.
func (b *Bioreactor) SetControlMode(mode ControlMode) error {
	switch mode {
	case ControlModeManual, ControlModeAutomatic:
		// fine
	case ControlModeExperiment:
		if b.ExperimentID() == "" {
			return fmt.Errorf("%w: experiment mode requires an experiment id", ErrInvalidControlMode)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidControlMode, mode)
	}

	b.e.Properties.Set(PathControlMode, string(mode))
	return nil
}

// ExperimentID returns the running experiment's identifier. Default: "".
func (b *Bioreactor) ExperimentID() string {
	return b.getString(PathExperimentID, "")
}

// StartExperiment binds an experiment to the bioreactor and switches to
// experiment control mode in one step.
func (b *Bioreactor) StartExperiment(experimentID string) error {
	if experimentID == "" {
		return fmt.Errorf("%w: experiment id is required", ErrInvalidControlMode)
	}

	b.e.Properties.Set(PathExperimentID, experimentID)
	b.e.Properties.Set(PathControlMode, string(ControlModeExperiment))
	return nil
}

// StopExperiment clears the experiment binding and falls back to manual
// control. Returns ErrNoExperiment when none is running.
func (b *Bioreactor) StopExperiment() error {
	if !b.IsRunningExperiment() {
		return ErrNoExperiment
	}

	b.e.Properties.Delete(PathExperimentID)
	b.e.Properties.Set(PathControlMode, string(ControlModeManual))
	return nil
}

// IsOperational reports whether the bioreactor's domain status is one of
// online, running or idle.
func (b *Bioreactor) IsOperational() bool {
	_, ok := operationalStatuses[b.Status()]
	return ok
}

// IsRunningExperiment reports whether an experiment is bound AND the
// control mode is experiment. Both conditions are required: a bound
// experiment under manual control is paused, not running.
func (b *Bioreactor) IsRunningExperiment() bool {
	return b.ExperimentID() != "" && b.ControlMode() == ControlModeExperiment
}
