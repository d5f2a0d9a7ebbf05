// Package device provides typed views over entities in the device.*
// namespace.
//
// A view adds no storage of its own: it wraps an entity.Entity after
// confirming the type discriminator and interprets well-known property
// paths with typed getters and setters. Every getter degrades to a
// documented default when its path is absent — a half-provisioned device is
// never an error condition.
//
// Two views exist:
//
//   - View: any entity under the "device" namespace. Interprets domain
//     status, firmware, hardware, config, lastSeen and batteryLevel paths.
//   - Bioreactor: entities of type "device.bioreactor". Extends View with
//     vessel geometry, operating parameters, safety limits, control mode and
//     experiment tracking.
//
// The full path/default table for both views lives in paths.go; adding a
// device property means adding a row there, not new branching logic.
//
// Views mutate the wrapped entity in memory only. Persisting goes through
// entity.Store.Update, which is where updated_at refresh and revision
// checking happen.
package device
