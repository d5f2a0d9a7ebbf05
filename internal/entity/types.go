package entity

import (
	"strings"
	"time"
)

// Entity is the single polymorphic storage record for every domain object.
// This matches the entities table in migrations/20260301_000000_initial_schema.up.sql.
type Entity struct {
	// Identity
	ID string `json:"id"`

	// EntityType is the dot-namespaced discriminator (e.g. "device.esp32",
	// "device.bioreactor", "organization"). Set once at creation; never
	// mutated afterwards.
	EntityType string `json:"entity_type"`

	// Display metadata
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Properties holds all type-specific state as a nested document.
	Properties Properties `json:"properties"`

	// Status is the lifecycle tag (active, archived). This is distinct from
	// the domain status some views keep inside Properties ("status":
	// online/offline/running).
	Status string `json:"status"`

	// OrganizationID scopes the entity to a tenant. Nil for global records.
	OrganizationID *string `json:"organization_id,omitempty"`

	// Revision is the optimistic-concurrency counter. Incremented on every
	// successful write; updates carrying a stale revision are rejected.
	Revision int64 `json:"revision"`

	// Timestamps (managed by the store; UpdatedAt refreshes on every mutation)
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lifecycle status values.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Well-known entity type namespaces.
const (
	// TypeNamespaceDevice is the namespace shared by all device kinds.
	TypeNamespaceDevice = "device"

	// TypeBioreactor is the concrete type for bioreactor devices.
	TypeBioreactor = "device.bioreactor"

	// TypeOrganization is the tenant record type.
	TypeOrganization = "organization"

	// TypeUser is the user record type.
	TypeUser = "user"
)

// InNamespace reports whether the entity's type equals ns or lives under it
// (ns itself or ns followed by a dot-separated suffix).
//
// "device.esp32" is in namespace "device"; "devices" is not.
func (e *Entity) InNamespace(ns string) bool {
	if e.EntityType == ns {
		return true
	}
	return strings.HasPrefix(e.EntityType, ns+".")
}

// DeepCopy creates a complete independent copy of the Entity.
// The property document is cloned so modifications to the copy do not
// affect the original. This is essential for cache isolation.
func (e *Entity) DeepCopy() *Entity {
	if e == nil {
		return nil
	}

	cpy := *e // Shallow copy of value fields
	cpy.Properties = e.Properties.DeepCopy()

	// OrganizationID points at an immutable string; no deep copy needed.

	return &cpy
}
