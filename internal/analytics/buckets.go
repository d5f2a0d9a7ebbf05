package analytics

import (
	"context"
	"time"
)

// BucketedAverage partitions [start, end) into fixed-width intervals and
// averages each one. The first bucket starts at start truncated to the
// granularity boundary (top of the hour, or midnight UTC), so the last
// bucket may extend past end. Every interval is emitted, including empty
// ones, whose Average is nil.
func (e *Engine) BucketedAverage(ctx context.Context, entityID, sensorType string, start, end time.Time, g Granularity) ([]Bucket, error) {
	width := g.Duration()
	if width == 0 {
		return nil, ErrInvalidGranularity
	}
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}

	readings, err := e.fetch(ctx, entityID, sensorType, start, end)
	if err != nil {
		return nil, err
	}

	first := truncate(start.UTC(), g)
	var buckets []Bucket
	idx := 0
	for t := first; t.Before(end); t = t.Add(width) {
		b := Bucket{
			Start:     t,
			Hour:      t.Hour(),
			DayOfWeek: t.Weekday().String(),
			Month:     t.Month().String(),
		}
		var sum float64
		boundary := t.Add(width)
		for idx < len(readings) && readings[idx].Timestamp.Before(boundary) {
			sum += readings[idx].Data.Value
			b.Count++
			idx++
		}
		if b.Count > 0 {
			avg := sum / float64(b.Count)
			b.Average = &avg
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

// truncate floors t to the bucket boundary. Day buckets align to UTC
// midnight regardless of where the device lives.
func truncate(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(time.Hour)
	}
}
