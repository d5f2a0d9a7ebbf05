// Package reading implements the append-only sensor reading log and its
// ingestion validation.
//
// A Reading is one timestamped observation referencing an entity. Readings
// enter through Log.Append, which performs the referential check against the
// entity store, runs policy validation (unit tables, value ranges, clock
// skew) and normalizes timestamps to UTC. Once appended, a reading is
// immutable except for the explicit correction path (Log.Correct), which
// replaces individual data fields. The analytics path never deletes.
//
// # Validation policy
//
// The per-sensor-type unit and range tables are data, not code: they load
// from configuration with compiled-in defaults (DefaultPolicy). Sensor
// types absent from a table skip that check, so new sensor types flow
// through without a recompile.
//
// Failed validations return a *ValidationError naming the violated rule;
// callers can match the class with errors.Is(err, reading.ErrValidation).
// Nothing is written on failure.
//
// # Ordering
//
// Ingestion order is not assumed to match event-time order. Queries return
// readings sorted by event timestamp, which is stored as fixed-width Unix
// nanoseconds so range scans and ordering work at sub-second precision.
package reading
