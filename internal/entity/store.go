package entity

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Store.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store provides entity management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// The cache is populated on startup via RefreshCache() and kept in sync
// by cache-invalidating CRUD operations.
//
// All public methods are thread-safe. Note that thread safety does not
// serialize read-modify-write cycles across callers; the revision counter
// on each entity is what protects those (see Update).
type Store struct {
	repo    Repository
	cache   map[string]*Entity // Cached entities by ID
	cacheMu sync.RWMutex       // Protects cache
	logger  Logger
}

// NewStore creates a new entity store.
// The repository is used for persistence; the store adds caching.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:   repo,
		cache:  make(map[string]*Entity),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// RefreshCache reloads all entities from the repository into the cache.
// This should be called on application startup.
func (s *Store) RefreshCache(ctx context.Context) error {
	entities, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading entities: %w", err)
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	// Clear and rebuild cache with deep copies
	s.cache = make(map[string]*Entity, len(entities))
	for i := range entities {
		e := entities[i]
		s.cache[e.ID] = e.DeepCopy()
	}

	s.logger.Info("entity cache refreshed", "count", len(entities))
	return nil
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
// The returned entity is a deep copy; callers can safely modify it.
func (s *Store) Get(ctx context.Context, id string) (*Entity, error) {
	// Try cache first
	s.cacheMu.RLock()
	cached, ok := s.cache[id]
	s.cacheMu.RUnlock()

	if ok {
		// Return a deep copy to prevent external mutation of cache
		return cached.DeepCopy(), nil
	}

	// Fall back to repository (might be a new entity not yet cached)
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cache for future lookups (store a deep copy)
	s.cacheMu.Lock()
	s.cache[id] = e.DeepCopy()
	s.cacheMu.Unlock()

	return e, nil
}

// GetView retrieves an entity and confirms it lives within the given type
// namespace. Returns ErrTypeMismatch when the entity exists but its type is
// outside the namespace. This is the lookup typed views are built on.
func (s *Store) GetView(ctx context.Context, id, namespace string) (*Entity, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.InNamespace(namespace) {
		return nil, fmt.Errorf("%w: %s is %q, want namespace %q",
			ErrTypeMismatch, id, e.EntityType, namespace)
	}
	return e, nil
}

// List retrieves all entities.
// The returned entities are deep copies; callers can safely modify them.
func (s *Store) List(ctx context.Context) ([]Entity, error) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	// Return from cache if populated
	if len(s.cache) > 0 {
		entities := make([]Entity, 0, len(s.cache))
		for _, e := range s.cache {
			entities = append(entities, *e.DeepCopy())
		}
		return entities, nil
	}

	// Fall back to repository
	return s.repo.List(ctx)
}

// ListByNamespace retrieves all entities within a type namespace.
// The returned entities are deep copies; callers can safely modify them.
func (s *Store) ListByNamespace(ctx context.Context, ns string) ([]Entity, error) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	// Filter from cache if populated
	if len(s.cache) > 0 {
		var entities []Entity
		for _, e := range s.cache {
			if e.InNamespace(ns) {
				entities = append(entities, *e.DeepCopy())
			}
		}
		return entities, nil
	}

	return s.repo.ListByNamespace(ctx, ns)
}

// ListByOrganization retrieves all entities scoped to an organization.
// The returned entities are deep copies; callers can safely modify them.
func (s *Store) ListByOrganization(ctx context.Context, organizationID string) ([]Entity, error) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	if len(s.cache) > 0 {
		var entities []Entity
		for _, e := range s.cache {
			if e.OrganizationID != nil && *e.OrganizationID == organizationID {
				entities = append(entities, *e.DeepCopy())
			}
		}
		return entities, nil
	}

	return s.repo.ListByOrganization(ctx, organizationID)
}

// ListByStatus retrieves all entities with a specific lifecycle status.
// The returned entities are deep copies; callers can safely modify them.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]Entity, error) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	if len(s.cache) > 0 {
		var entities []Entity
		for _, e := range s.cache {
			if e.Status == status {
				entities = append(entities, *e.DeepCopy())
			}
		}
		return entities, nil
	}

	return s.repo.ListByStatus(ctx, status)
}

// Create creates a new entity of the given type.
// It validates the record, generates an ID if needed, and persists it.
// The returned entity is the stored record including generated fields.
func (s *Store) Create(ctx context.Context, entityType, name string, organizationID *string, properties Properties) (*Entity, error) {
	e := &Entity{
		ID:             GenerateID(),
		EntityType:     entityType,
		Name:           name,
		Properties:     properties,
		Status:         StatusActive,
		OrganizationID: organizationID,
	}
	if e.Properties == nil {
		e.Properties = Properties{}
	}

	if err := Validate(e); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	// Update cache (store a deep copy to prevent external modification)
	s.cacheMu.Lock()
	s.cache[e.ID] = e.DeepCopy()
	s.cacheMu.Unlock()

	s.logger.Info("entity created", "id", e.ID, "type", e.EntityType, "name", e.Name)
	return e.DeepCopy(), nil
}

// Update persists changes to an existing entity.
// The entity's Revision must match the stored row; stale writes return
// ErrRevisionConflict and the caller should re-read and retry.
func (s *Store) Update(ctx context.Context, e *Entity) error {
	if err := Validate(e); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return err
	}

	// Update cache (store a deep copy to prevent external modification)
	s.cacheMu.Lock()
	s.cache[e.ID] = e.DeepCopy()
	s.cacheMu.Unlock()

	s.logger.Debug("entity updated", "id", e.ID, "revision", e.Revision)
	return nil
}

// SetProperty writes a value at a dotted path in an entity's property
// document and persists the change. Intermediate containers are created as
// needed; sibling keys are preserved; updated_at refreshes.
func (s *Store) SetProperty(ctx context.Context, id, path string, value any) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	e.Properties.Set(path, value)
	return s.Update(ctx, e)
}

// GetProperty resolves a dotted path in an entity's property document.
// Absent paths return def, never an error; the error return covers entity
// lookup failures only.
func (s *Store) GetProperty(ctx context.Context, id, path string, def any) (any, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Properties.Get(path, def), nil
}

// Archive transitions an entity to the archived lifecycle status.
// Archived entities keep their readings; nothing cascades.
func (s *Store) Archive(ctx context.Context, id string) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.Status == StatusArchived {
		return nil
	}

	e.Status = StatusArchived
	if err := s.Update(ctx, e); err != nil {
		return err
	}

	s.logger.Info("entity archived", "id", id)
	return nil
}

// Delete removes an entity.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Update cache
	s.cacheMu.Lock()
	delete(s.cache, id)
	s.cacheMu.Unlock()

	s.logger.Info("entity deleted", "id", id)
	return nil
}

// Count returns the number of cached entities.
func (s *Store) Count() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return len(s.cache)
}
