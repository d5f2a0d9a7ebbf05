package analytics

import (
	"context"
	"math"
	"time"
)

// accuracyEpsilon keeps the noise-ratio denominator finite for streams
// whose mean is exactly zero.
const accuracyEpsilon = 1e-9

// DataQuality scores one sensor stream over the 24 hours ending now.
// A stream with no readings in the window scores zero on every axis.
//
//   - Completeness: observed count against the configured cadence.
//   - Accuracy: 1 − variance/(mean² + ε), a noise proxy; no reference
//     values exist to measure true accuracy against.
//   - Consistency: regularity of inter-arrival gaps, same noise-ratio
//     shape applied to the gaps themselves.
//   - Timeliness: linear decay from 1.0 to 0.0 over the hour following
//     the latest reading.
func (e *Engine) DataQuality(ctx context.Context, entityID, sensorType string) (*Quality, error) {
	now := e.now().UTC()
	readings, err := e.fetch(ctx, entityID, sensorType, now.Add(-24*time.Hour), now)
	if err != nil {
		return nil, err
	}

	q := &Quality{}
	if len(readings) == 0 {
		return q, nil
	}

	expected := e.cfg.ExpectedHourlyReadings * 24
	q.Completeness = clamp01(float64(len(readings)) / expected)

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Data.Value
	}
	q.Accuracy = noiseScore(values)

	if len(readings) >= 2 {
		gaps := make([]float64, 0, len(readings)-1)
		for i := 1; i < len(readings); i++ {
			gaps = append(gaps, readings[i].Timestamp.Sub(readings[i-1].Timestamp).Seconds())
		}
		q.Consistency = noiseScore(gaps)
	}

	sinceLatest := now.Sub(readings[len(readings)-1].Timestamp)
	q.Timeliness = clamp01(1 - sinceLatest.Seconds()/3600)

	return q, nil
}

// noiseScore maps a value series to [0, 1]: 1.0 for a perfectly steady
// series, falling as variance grows relative to the squared mean.
func noiseScore(values []float64) float64 {
	mean := meanOf(values)
	variance := populationVariance(values, mean)
	return clamp01(1 - variance/(mean*mean+accuracyEpsilon))
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
