package reading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fermwerk/biocore/internal/entity"
)

// EntityResolver is the slice of the entity store the log needs for the
// referential check at ingestion. Satisfied by *entity.Store.
type EntityResolver interface {
	Get(ctx context.Context, id string) (*entity.Entity, error)
}

// Logger defines the logging interface used by the Log.
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

// Log is the validated front door to the reading store.
//
// Append is the only way readings are created; Correct is the only way
// they change. Both run the full ingestion policy, so nothing invalid
// reaches the analytics path.
type Log struct {
	repo      Repository
	validator *Validator
	entities  EntityResolver
	logger    Logger

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewLog creates a reading log over a repository, validator and entity
// resolver.
func NewLog(repo Repository, validator *Validator, entities EntityResolver) *Log {
	return &Log{
		repo:      repo,
		validator: validator,
		entities:  entities,
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for the log.
func (l *Log) SetLogger(logger Logger) {
	l.logger = logger
}

// Append validates and persists one observation for an entity.
//
// eventTime zero means "no event time supplied": the reading is stamped
// with current UTC time. Non-zero event times are normalized to UTC (naive
// producers are expected to have been decoded as UTC at the transport
// boundary) and must not be further ahead of the clock than the policy's
// future tolerance.
//
// On any validation failure nothing is written and the returned error
// matches ErrValidation; a missing entity returns ErrEntityNotFound.
func (l *Log) Append(ctx context.Context, entityID string, data Data, eventTime time.Time) (*Reading, error) {
	// Referential check. Not a foreign key: archived entities still take
	// readings, and deleted entities keep their history.
	if _, err := l.entities.Get(ctx, entityID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, entityID)
		}
		return nil, fmt.Errorf("resolving entity: %w", err)
	}

	if !eventTime.IsZero() {
		eventTime = eventTime.UTC()
	}

	if err := l.validator.Validate(data, eventTime); err != nil {
		return nil, err
	}

	if eventTime.IsZero() {
		eventTime = l.now().UTC()
	}
	if data.Quality == "" {
		data.Quality = QualityGood
	}

	rd := &Reading{
		ID:        GenerateID(),
		EntityID:  entityID,
		Timestamp: eventTime,
		Data:      data,
		CreatedAt: l.now().UTC(),
	}

	if err := l.repo.Insert(ctx, rd); err != nil {
		return nil, err
	}

	l.logger.Debug("reading appended",
		"entity_id", entityID,
		"sensor_type", data.SensorType,
		"value", data.Value,
	)
	return rd, nil
}

// Query retrieves readings for an entity matching the filter, ordered
// ascending by event timestamp.
func (l *Log) Query(ctx context.Context, entityID string, f Filter) ([]Reading, error) {
	return l.repo.Query(ctx, entityID, f)
}

// Latest returns the most recent reading for an entity, optionally
// restricted to one sensor type ("" = any).
func (l *Log) Latest(ctx context.Context, entityID, sensorType string) (*Reading, error) {
	return l.repo.Latest(ctx, entityID, sensorType)
}

// Correct replaces individual data fields of an existing reading.
//
// Supported fields: value, unit, quality, location, batteryLevel,
// metadata. The merged document is re-validated against the policy (the
// event timestamp is untouched, so the skew rule cannot newly fire)
// before anything is written. Unknown field names are validation errors so
// typos surface instead of silently dropping a correction.
func (l *Log) Correct(ctx context.Context, id string, fields map[string]any) (*Reading, error) {
	rd, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data := rd.Data
	for name, value := range fields {
		if err := applyCorrection(&data, name, value); err != nil {
			return nil, err
		}
	}

	if err := l.validator.Validate(data, time.Time{}); err != nil {
		return nil, err
	}

	if err := l.repo.UpdateData(ctx, id, data); err != nil {
		return nil, err
	}

	rd.Data = data
	l.logger.Info("reading corrected", "id", id, "fields", len(fields))
	return rd, nil
}

// PruneBefore deletes readings with event time before the cutoff.
func (l *Log) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := l.repo.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		l.logger.Info("readings pruned", "deleted", deleted, "cutoff", cutoff.UTC().Format(time.RFC3339))
	}
	return deleted, nil
}

// applyCorrection writes one named field into a data document.
func applyCorrection(data *Data, name string, value any) error {
	switch name {
	case "value":
		n, ok := asFloat(value)
		if !ok {
			return newValidationError(RuleValueNotFinite, "corrected value must be numeric, got %T", value)
		}
		data.Value = n
	case "unit":
		s, ok := value.(string)
		if !ok {
			return newValidationError(RuleUnknownField, "unit must be a string, got %T", value)
		}
		data.Unit = s
	case "quality":
		s, ok := value.(string)
		if !ok {
			return newValidationError(RuleUnknownField, "quality must be a string, got %T", value)
		}
		data.Quality = s
	case "location":
		s, ok := value.(string)
		if !ok {
			return newValidationError(RuleUnknownField, "location must be a string, got %T", value)
		}
		data.Location = s
	case "batteryLevel":
		n, ok := asFloat(value)
		if !ok {
			return newValidationError(RuleUnknownField, "batteryLevel must be numeric, got %T", value)
		}
		data.BatteryLevel = &n
	case "metadata":
		m, ok := value.(map[string]any)
		if !ok {
			return newValidationError(RuleUnknownField, "metadata must be a document, got %T", value)
		}
		data.Metadata = m
	default:
		return newValidationError(RuleUnknownField, "unknown data field %q", name)
	}
	return nil
}

// asFloat coerces the numeric shapes JSON decoding produces.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
