package reading

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for reading persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Insert appends a new reading.
	Insert(ctx context.Context, r *Reading) error

	// GetByID retrieves a reading by its unique identifier.
	// Returns ErrNotFound if the reading does not exist.
	GetByID(ctx context.Context, id string) (*Reading, error)

	// Query retrieves readings for an entity matching the filter, ordered
	// ascending by event timestamp. Storage return order is never relied
	// on elsewhere; this ordering is part of the contract.
	Query(ctx context.Context, entityID string, f Filter) ([]Reading, error)

	// UpdateData replaces the data document of an existing reading.
	// This is the correction path; everything else about a reading is
	// immutable. Returns ErrNotFound if the reading does not exist.
	UpdateData(ctx context.Context, id string, data Data) error

	// Latest returns the most recent reading for an entity, optionally
	// restricted to one sensor type ("" = any).
	// Returns ErrNotFound when the entity has no readings.
	Latest(ctx context.Context, entityID, sensorType string) (*Reading, error)

	// PruneBefore deletes readings with event time before the cutoff,
	// returning the number deleted. Operator tooling only — nothing on the
	// analytics path calls this.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SQLiteRepository implements Repository using SQLite.
//
// Event timestamps are stored as Unix nanoseconds (INTEGER) rather than
// text so range scans and ordering hold at sub-second precision.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed reading repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert appends a new reading.
func (r *SQLiteRepository) Insert(ctx context.Context, rd *Reading) error {
	dataJSON, err := json.Marshal(rd.Data)
	if err != nil {
		return fmt.Errorf("marshalling reading data: %w", err)
	}

	if rd.CreatedAt.IsZero() {
		rd.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO readings (id, entity_id, timestamp, data, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		rd.ID,
		rd.EntityID,
		rd.Timestamp.UnixNano(),
		string(dataJSON),
		rd.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}

	return nil
}

// GetByID retrieves a reading by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Reading, error) {
	query := `
		SELECT id, entity_id, timestamp, data, created_at
		FROM readings
		WHERE id = ?`

	rd, err := scanReadingRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying reading by id: %w", err)
	}
	return rd, nil
}

// Query retrieves readings for an entity, ordered ascending by timestamp.
func (r *SQLiteRepository) Query(ctx context.Context, entityID string, f Filter) ([]Reading, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, entity_id, timestamp, data, created_at
		FROM readings
		WHERE entity_id = ?`)
	args := []any{entityID}

	if f.SensorType != "" {
		// The sensor type lives inside the data document; SQLite's JSON1
		// extension extracts it without a companion column.
		sb.WriteString(` AND json_extract(data, '$.sensorType') = ?`)
		args = append(args, f.SensorType)
	}
	if !f.Start.IsZero() {
		sb.WriteString(` AND timestamp >= ?`)
		args = append(args, f.Start.UnixNano())
	}
	if !f.End.IsZero() {
		sb.WriteString(` AND timestamp < ?`)
		args = append(args, f.End.UnixNano())
	}

	sb.WriteString(` ORDER BY timestamp ASC`)

	if f.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		rd, err := scanReadingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		readings = append(readings, *rd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}

	return readings, nil
}

// UpdateData replaces the data document of an existing reading.
func (r *SQLiteRepository) UpdateData(ctx context.Context, id string, data Data) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshalling reading data: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE readings SET data = ? WHERE id = ?",
		string(dataJSON), id,
	)
	if err != nil {
		return fmt.Errorf("updating reading data: %w", err)
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

// Latest returns the most recent reading for an entity.
func (r *SQLiteRepository) Latest(ctx context.Context, entityID, sensorType string) (*Reading, error) {
	query := `
		SELECT id, entity_id, timestamp, data, created_at
		FROM readings
		WHERE entity_id = ?`
	args := []any{entityID}

	if sensorType != "" {
		query += ` AND json_extract(data, '$.sensorType') = ?`
		args = append(args, sensorType)
	}
	query += ` ORDER BY timestamp DESC LIMIT 1`

	rd, err := scanReadingRow(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying latest reading: %w", err)
	}
	return rd, nil
}

// PruneBefore deletes readings with event time before the cutoff.
func (r *SQLiteRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM readings WHERE timestamp < ?",
		cutoff.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning readings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanReadingRow scans a row or rows result into a Reading.
func scanReadingRow(scanner rowScanner) (*Reading, error) {
	var rd Reading
	var timestampNanos int64
	var dataJSON string
	var createdAt string

	err := scanner.Scan(&rd.ID, &rd.EntityID, &timestampNanos, &dataJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	rd.Timestamp = time.Unix(0, timestampNanos).UTC()

	rd.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	if err := json.Unmarshal([]byte(dataJSON), &rd.Data); err != nil {
		return nil, fmt.Errorf("unmarshalling reading data: %w", err)
	}

	return &rd, nil
}
