// Package entity implements the polymorphic record store at the heart of
// biocore.
//
// Every domain object — a generic device, a bioreactor, an organization, a
// user — is stored as a single Entity: a type discriminator, display
// metadata, and a nested property document. There is no per-type table or
// column; all type-specific state lives in the property document and is
// interpreted by typed views (see the device package). Adding a new device
// kind is therefore a data change, not a schema migration.
//
// # Entity types
//
// EntityType is a dot-namespaced discriminator set once at creation and
// never mutated. Typed views check the namespace before wrapping a record:
//
//	device.esp32       -> device view
//	device.bioreactor  -> bioreactor view (extends device)
//	organization       -> no view
//
// # Property documents
//
// Properties is an arbitrarily nested key->value document accessed by
// dotted paths ("hardware.sensors", "config.readingInterval"). Reads on
// absent paths return the caller's default and never fail; writes create
// intermediate containers as needed without destroying sibling keys.
//
// # Concurrency
//
// The Store front-ends the Repository with a deep-copied in-memory cache and
// enforces optimistic concurrency: every entity carries a revision counter
// checked on write. Concurrent writers lose with ErrRevisionConflict rather
// than silently clobbering each other's read-modify-write cycles.
package entity
