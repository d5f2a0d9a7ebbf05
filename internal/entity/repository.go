package entity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for entity persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves an entity by its unique identifier.
	// Returns ErrNotFound if the entity does not exist.
	GetByID(ctx context.Context, id string) (*Entity, error)

	// List retrieves all entities.
	List(ctx context.Context) ([]Entity, error)

	// ListByNamespace retrieves all entities whose type equals the given
	// namespace or lives under it (e.g. "device" matches "device.esp32").
	ListByNamespace(ctx context.Context, ns string) ([]Entity, error)

	// ListByOrganization retrieves all entities scoped to an organization.
	ListByOrganization(ctx context.Context, organizationID string) ([]Entity, error)

	// ListByStatus retrieves all entities with a specific lifecycle status.
	ListByStatus(ctx context.Context, status string) ([]Entity, error)

	// Create inserts a new entity.
	// Returns ErrEntityExists if the ID is taken, ErrNameConflict if the
	// name is taken within the entity's organization.
	Create(ctx context.Context, e *Entity) error

	// Update modifies an existing entity. The write is revision-checked:
	// the entity's Revision must match the stored row or
	// ErrRevisionConflict is returned. The entity type is immutable;
	// attempts to change it return ErrTypeImmutable.
	// On success the entity's Revision and UpdatedAt are refreshed in place.
	Update(ctx context.Context, e *Entity) error

	// Delete removes an entity by ID.
	// Returns ErrNotFound if the entity does not exist. Readings referencing
	// the entity are not cascaded (see the reading package).
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// entityColumns is the canonical column list used by every SELECT.
const entityColumns = `id, entity_type, name, description, properties,
		status, organization_id, revision, created_at, updated_at`

// GetByID retrieves an entity by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	e, err := scanEntityRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying entity by id: %w", err)
	}
	return e, nil
}

// List retrieves all entities.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities ORDER BY name`
	return r.queryEntities(ctx, query)
}

// ListByNamespace retrieves all entities within a type namespace.
func (r *SQLiteRepository) ListByNamespace(ctx context.Context, ns string) ([]Entity, error) {
	// Exact match or dot-prefixed descendants. The ESCAPE clause keeps
	// literal underscores in namespaces from acting as LIKE wildcards.
	query := `SELECT ` + entityColumns + `
		FROM entities
		WHERE entity_type = ? OR entity_type LIKE ? ESCAPE '\'
		ORDER BY name`

	pattern := likeEscape(ns) + ".%"
	return r.queryEntities(ctx, query, ns, pattern)
}

// ListByOrganization retrieves all entities scoped to an organization.
func (r *SQLiteRepository) ListByOrganization(ctx context.Context, organizationID string) ([]Entity, error) {
	query := `SELECT ` + entityColumns + `
		FROM entities
		WHERE organization_id = ?
		ORDER BY name`

	return r.queryEntities(ctx, query, organizationID)
}

// ListByStatus retrieves all entities with a specific lifecycle status.
func (r *SQLiteRepository) ListByStatus(ctx context.Context, status string) ([]Entity, error) {
	query := `SELECT ` + entityColumns + `
		FROM entities
		WHERE status = ?
		ORDER BY name`

	return r.queryEntities(ctx, query, status)
}

// Create inserts a new entity.
func (r *SQLiteRepository) Create(ctx context.Context, e *Entity) error {
	propsJSON, err := json.Marshal(e.Properties)
	if err != nil {
		return fmt.Errorf("marshalling properties: %w", err)
	}

	// Set timestamps if not set
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	e.Revision = 1

	query := `
		INSERT INTO entities (
			id, entity_type, name, description, properties,
			status, organization_id, revision, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.EntityType,
		e.Name,
		e.Description,
		string(propsJSON),
		e.Status,
		nullableString(e.OrganizationID),
		e.Revision,
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			if strings.Contains(err.Error(), "entities.id") {
				return ErrEntityExists
			}
			return ErrNameConflict
		}
		return fmt.Errorf("inserting entity: %w", err)
	}

	return nil
}

// Update modifies an existing entity with revision checking.
func (r *SQLiteRepository) Update(ctx context.Context, e *Entity) error {
	// The type discriminator is immutable; compare against the stored row
	// before writing so the caller gets a precise error.
	var storedType string
	err := r.db.QueryRowContext(ctx,
		"SELECT entity_type FROM entities WHERE id = ?", e.ID,
	).Scan(&storedType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("checking entity type: %w", err)
	}
	if storedType != e.EntityType {
		return ErrTypeImmutable
	}

	propsJSON, err := json.Marshal(e.Properties)
	if err != nil {
		return fmt.Errorf("marshalling properties: %w", err)
	}

	updatedAt := time.Now().UTC()

	// Revision check and increment happen in one statement; a stale
	// revision simply matches no row.
	query := `
		UPDATE entities SET
			name = ?, description = ?, properties = ?, status = ?,
			organization_id = ?, revision = revision + 1, updated_at = ?
		WHERE id = ? AND revision = ?`

	result, err := r.db.ExecContext(ctx, query,
		e.Name,
		e.Description,
		string(propsJSON),
		e.Status,
		nullableString(e.OrganizationID),
		updatedAt.Format(time.RFC3339),
		e.ID,
		e.Revision,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrNameConflict
		}
		return fmt.Errorf("updating entity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// The row exists (checked above), so the revision was stale.
		return ErrRevisionConflict
	}

	e.Revision++
	e.UpdatedAt = updatedAt
	return nil
}

// Delete removes an entity by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM entities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// queryEntities executes a query and returns a slice of entities.
func (r *SQLiteRepository) queryEntities(ctx context.Context, query string, args ...any) ([]Entity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		e, err := scanEntityRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}

	return entities, nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntityRow scans a row or rows result into an Entity.
func scanEntityRow(scanner rowScanner) (*Entity, error) {
	var e Entity
	var description sql.NullString
	var organizationID sql.NullString
	var propsJSON string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&e.ID,
		&e.EntityType,
		&e.Name,
		&description,
		&propsJSON,
		&e.Status,
		&organizationID,
		&e.Revision,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		e.Description = description.String
	}
	if organizationID.Valid {
		e.OrganizationID = &organizationID.String
	}

	var parseErr error
	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	e.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	if err := json.Unmarshal([]byte(propsJSON), &e.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling properties: %w", err)
	}

	return &e, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// likeEscape escapes LIKE wildcards in a literal string using backslash.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
