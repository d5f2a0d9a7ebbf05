package analytics

import (
	"context"
	"math"
	"time"
)

// Statistics computes descriptive statistics for one sensor stream over
// [start, end). An empty window yields Count 0 with every other field nil.
func (e *Engine) Statistics(ctx context.Context, entityID, sensorType string, start, end time.Time) (*Statistics, error) {
	readings, err := e.fetch(ctx, entityID, sensorType, start, end)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{Count: len(readings)}
	if len(readings) == 0 {
		return stats, nil
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Data.Value
	}

	mean := meanOf(values)
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	stdDev := math.Sqrt(populationVariance(values, mean))
	spread := max - min

	stats.Mean = &mean
	stats.Min = &min
	stats.Max = &max
	stats.StdDev = &stdDev
	stats.Range = &spread
	return stats, nil
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationVariance divides by N, not N-1. These are summaries of the
// stored population, not estimates of a larger one.
func populationVariance(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
