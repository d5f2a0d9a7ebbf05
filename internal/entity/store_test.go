package entity

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// MockRepository is a test implementation of Repository.
type MockRepository struct {
	mu       sync.Mutex
	entities map[string]*Entity
	// For testing error paths
	createErr error
	updateErr error
	deleteErr error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		entities: make(map[string]*Entity),
	}
}

func (m *MockRepository) GetByID(_ context.Context, id string) (*Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entities[id]; ok {
		return e.DeepCopy(), nil
	}
	return nil, ErrNotFound
}

func (m *MockRepository) List(_ context.Context) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entities := make([]Entity, 0, len(m.entities))
	for _, e := range m.entities {
		entities = append(entities, *e.DeepCopy())
	}
	return entities, nil
}

func (m *MockRepository) ListByNamespace(_ context.Context, ns string) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entities []Entity
	for _, e := range m.entities {
		if e.InNamespace(ns) {
			entities = append(entities, *e.DeepCopy())
		}
	}
	return entities, nil
}

func (m *MockRepository) ListByOrganization(_ context.Context, organizationID string) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entities []Entity
	for _, e := range m.entities {
		if e.OrganizationID != nil && *e.OrganizationID == organizationID {
			entities = append(entities, *e.DeepCopy())
		}
	}
	return entities, nil
}

func (m *MockRepository) ListByStatus(_ context.Context, status string) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entities []Entity
	for _, e := range m.entities {
		if e.Status == status {
			entities = append(entities, *e.DeepCopy())
		}
	}
	return entities, nil
}

func (m *MockRepository) Create(_ context.Context, e *Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.entities[e.ID]; exists {
		return ErrEntityExists
	}
	e.Revision = 1
	m.entities[e.ID] = e.DeepCopy()
	return nil
}

func (m *MockRepository) Update(_ context.Context, e *Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.entities[e.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.EntityType != e.EntityType {
		return ErrTypeImmutable
	}
	if stored.Revision != e.Revision {
		return ErrRevisionConflict
	}
	e.Revision++
	m.entities[e.ID] = e.DeepCopy()
	return nil
}

func (m *MockRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.entities[id]; !ok {
		return ErrNotFound
	}
	delete(m.entities, id)
	return nil
}

func TestStore_Create(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	e, err := store.Create(ctx, TypeBioreactor, "Reactor A", nil, Properties{"status": "online"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if e.Status != StatusActive {
		t.Errorf("Status = %q, want %q", e.Status, StatusActive)
	}
	if e.Revision != 1 {
		t.Errorf("Revision = %d, want 1", e.Revision)
	}

	got, err := store.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Reactor A" {
		t.Errorf("Name = %q, want %q", got.Name, "Reactor A")
	}
}

func TestStore_Create_NilPropertiesBecomeEmpty(t *testing.T) {
	store := NewStore(NewMockRepository())

	e, err := store.Create(context.Background(), TypeBioreactor, "Reactor B", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.Properties == nil {
		t.Error("Properties = nil, want empty document")
	}
}

func TestStore_Create_InvalidType(t *testing.T) {
	store := NewStore(NewMockRepository())

	_, err := store.Create(context.Background(), "Not.Valid", "Reactor", nil, nil)
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("Create() error = %v, want ErrInvalidType", err)
	}
}

func TestStore_Get_ReturnsIsolatedCopy(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	e, err := store.Create(ctx, TypeBioreactor, "Reactor C", nil, Properties{"status": "online"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, _ := store.Get(ctx, e.ID)
	first.Properties.Set("status", "mutated")

	second, _ := store.Get(ctx, e.ID)
	if got := second.Properties.Get("status", nil); got != "online" {
		t.Errorf("cache isolation broken: status = %v, want online", got)
	}
}

func TestStore_GetView(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	reactor, _ := store.Create(ctx, TypeBioreactor, "Reactor D", nil, nil)
	org, _ := store.Create(ctx, TypeOrganization, "FermWerk", nil, nil)

	t.Run("matching namespace", func(t *testing.T) {
		got, err := store.GetView(ctx, reactor.ID, TypeNamespaceDevice)
		if err != nil {
			t.Fatalf("GetView() error = %v", err)
		}
		if got.ID != reactor.ID {
			t.Errorf("GetView() wrong entity: %s", got.ID)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := store.GetView(ctx, org.ID, TypeNamespaceDevice)
		if !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("GetView() error = %v, want ErrTypeMismatch", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.GetView(ctx, "no-such-id", TypeNamespaceDevice)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetView() error = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_SetProperty(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	e, _ := store.Create(ctx, TypeBioreactor, "Reactor E", nil, Properties{
		"config": map[string]any{"alertsEnabled": true},
	})

	if err := store.SetProperty(ctx, e.ID, "config.readingInterval", 30.0); err != nil {
		t.Fatalf("SetProperty() error = %v", err)
	}

	got, err := store.GetProperty(ctx, e.ID, "config.readingInterval", nil)
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if got != 30.0 {
		t.Errorf("GetProperty() = %v, want 30.0", got)
	}

	// Sibling must survive the write
	sibling, _ := store.GetProperty(ctx, e.ID, "config.alertsEnabled", nil)
	if sibling != true {
		t.Errorf("sibling property = %v, want true", sibling)
	}
}

func TestStore_GetProperty_AbsentPathReturnsDefault(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	e, _ := store.Create(ctx, TypeBioreactor, "Reactor F", nil, nil)

	got, err := store.GetProperty(ctx, e.ID, "no.such.path", "fallback")
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if got != "fallback" {
		t.Errorf("GetProperty() = %v, want fallback", got)
	}
}

func TestStore_Update_RevisionConflict(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	e, _ := store.Create(ctx, TypeBioreactor, "Reactor G", nil, nil)

	first, _ := store.Get(ctx, e.ID)
	second, _ := store.Get(ctx, e.ID)

	first.Properties.Set("status", "running")
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("first Update() error = %v", err)
	}

	second.Properties.Set("status", "offline")
	if err := store.Update(ctx, second); !errors.Is(err, ErrRevisionConflict) {
		t.Errorf("stale Update() error = %v, want ErrRevisionConflict", err)
	}
}

func TestStore_Archive(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	e, _ := store.Create(ctx, TypeBioreactor, "Reactor H", nil, nil)

	if err := store.Archive(ctx, e.ID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	got, _ := store.Get(ctx, e.ID)
	if got.Status != StatusArchived {
		t.Errorf("Status = %q, want %q", got.Status, StatusArchived)
	}

	// Archiving twice is a no-op, not an error
	if err := store.Archive(ctx, e.ID); err != nil {
		t.Errorf("second Archive() error = %v, want nil", err)
	}
}

func TestStore_ListByNamespace(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	if _, err := store.Create(ctx, TypeBioreactor, "Reactor I", nil, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, "device.esp32", "Node 1", nil, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, TypeOrganization, "FermWerk", nil, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	devices, err := store.ListByNamespace(ctx, TypeNamespaceDevice)
	if err != nil {
		t.Fatalf("ListByNamespace() error = %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("ListByNamespace() returned %d entities, want 2", len(devices))
	}
}

func TestStore_RefreshCache(t *testing.T) {
	repo := NewMockRepository()
	store := NewStore(repo)
	ctx := context.Background()

	// Seed the repository behind the store's back
	seed := testEntity("ent-seed", "Seeded")
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if store.Count() != 0 {
		t.Fatalf("Count() = %d before refresh, want 0", store.Count())
	}

	if err := store.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d after refresh, want 1", store.Count())
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(NewMockRepository())
	ctx := context.Background()

	e, _ := store.Create(ctx, TypeBioreactor, "Reactor J", nil, nil)

	if err := store.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := store.Get(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if store.Count() != 0 {
		t.Errorf("Count() = %d after delete, want 0", store.Count())
	}
}
