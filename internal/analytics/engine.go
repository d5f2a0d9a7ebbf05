package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fermwerk/biocore/internal/reading"
)

var (
	ErrInvalidWindow      = errors.New("analytics: end must be after start")
	ErrInvalidGranularity = errors.New("analytics: unknown granularity")
	ErrInvalidPeriod      = errors.New("analytics: unknown period")
)

// ReadingSource supplies the readings the engine summarizes. *reading.Log
// satisfies it.
type ReadingSource interface {
	Query(ctx context.Context, entityID string, f reading.Filter) ([]reading.Reading, error)
	Latest(ctx context.Context, entityID, sensorType string) (*reading.Reading, error)
}

// Config tunes the engine's scoring baselines.
type Config struct {
	// ExpectedHourlyReadings is the cadence the completeness score is
	// measured against. Defaults to one reading per hour.
	ExpectedHourlyReadings float64

	// StableSlopeThreshold is the absolute slope (units per second) below
	// which a trend reads as stable. Defaults to 0.001.
	StableSlopeThreshold float64
}

func (c *Config) applyDefaults() {
	if c.ExpectedHourlyReadings <= 0 {
		c.ExpectedHourlyReadings = 1
	}
	if c.StableSlopeThreshold <= 0 {
		c.StableSlopeThreshold = 0.001
	}
}

// Engine computes summaries over a reading source.
type Engine struct {
	source ReadingSource
	cfg    Config
	now    func() time.Time
}

// NewEngine creates an engine over the given source.
func NewEngine(source ReadingSource, cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		source: source,
		cfg:    cfg,
		now:    time.Now,
	}
}

// SetClock overrides the engine's clock. Used by tests.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// fetch returns the matching readings ordered by event time. The source's
// ordering is not assumed: ingestion order and event order diverge for
// backfilled or delayed telemetry.
func (e *Engine) fetch(ctx context.Context, entityID, sensorType string, start, end time.Time) ([]reading.Reading, error) {
	readings, err := e.source.Query(ctx, entityID, reading.Filter{
		SensorType: sensorType,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
	return readings, nil
}
