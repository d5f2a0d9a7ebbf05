package entity

import "errors"

// Domain errors for the entity package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, entity.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when an entity ID does not exist.
	ErrNotFound = errors.New("entity: not found")

	// ErrEntityExists is returned when creating an entity with an ID that already exists.
	ErrEntityExists = errors.New("entity: already exists")

	// ErrNameConflict is returned when an entity name is already taken
	// within the same organization.
	ErrNameConflict = errors.New("entity: name already in use within organization")

	// ErrInvalidEntity is returned when entity validation fails.
	ErrInvalidEntity = errors.New("entity: invalid")

	// ErrInvalidType is returned when an entity type discriminator is malformed.
	ErrInvalidType = errors.New("entity: invalid entity type")

	// ErrInvalidName is returned when an entity name is empty or too long.
	ErrInvalidName = errors.New("entity: invalid name")

	// ErrTypeMismatch is returned when a typed view is asked to wrap an
	// entity whose type is outside the view's namespace.
	ErrTypeMismatch = errors.New("entity: type mismatch for requested view")

	// ErrTypeImmutable is returned when an update attempts to change the
	// entity type discriminator.
	ErrTypeImmutable = errors.New("entity: entity type is immutable")

	// ErrRevisionConflict is returned when an update carries a stale
	// revision, indicating a concurrent writer got there first.
	ErrRevisionConflict = errors.New("entity: revision conflict")
)
