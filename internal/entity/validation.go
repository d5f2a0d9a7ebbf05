package entity

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength        = 100
	maxDescriptionLength = 500
	entityTypePattern    = `^[a-z][a-z0-9_]*(?:\.[a-z][a-z0-9_]*)*$`

	// Size limit for property documents, counted at the top level.
	// Nested documents are unrestricted; this guards against wholesale
	// abuse of the property bag as a blob store.
	maxTopLevelProperties = 100
)

var entityTypeRegex = regexp.MustCompile(entityTypePattern)

// Validate performs comprehensive validation on an entity.
// Returns an error describing the first validation failure found.
func Validate(e *Entity) error {
	if e == nil {
		return ErrInvalidEntity
	}

	if err := ValidateName(e.Name); err != nil {
		return err
	}

	if len(e.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidEntity, maxDescriptionLength)
	}

	if err := ValidateType(e.EntityType); err != nil {
		return err
	}

	if e.Status != StatusActive && e.Status != StatusArchived {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEntity, e.Status)
	}

	if len(e.Properties) > maxTopLevelProperties {
		return fmt.Errorf("%w: properties exceed max top-level keys (%d)", ErrInvalidEntity, maxTopLevelProperties)
	}

	return nil
}

// ValidateName checks that an entity name is non-empty and within limits.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateType checks that an entity type discriminator is well formed:
// lowercase dot-separated segments, each starting with a letter.
func ValidateType(entityType string) error {
	if entityType == "" {
		return fmt.Errorf("%w: entity type is required", ErrInvalidType)
	}
	if !entityTypeRegex.MatchString(entityType) {
		return fmt.Errorf("%w: %q is not a valid dot-namespaced type", ErrInvalidType, entityType)
	}
	return nil
}

// GenerateID creates a new unique entity identifier.
func GenerateID() string {
	return uuid.New().String()
}

// ValidateID checks that an ID is a well-formed UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed id %q", ErrInvalidEntity, id)
	}
	return nil
}
