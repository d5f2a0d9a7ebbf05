package analytics

import (
	"context"
	"math"
)

// TrendAnalysis fits an ordinary-least-squares line to one sensor stream
// over the lookback period ending now. The x axis is seconds since the
// first reading in the window, so Slope (and the equal ChangeRate) is in
// sensor units per second. Fewer than two readings yields
// insufficient_data with zeroed fit fields.
func (e *Engine) TrendAnalysis(ctx context.Context, entityID, sensorType string, p Period) (*Trend, error) {
	window := p.Duration()
	if window == 0 {
		return nil, ErrInvalidPeriod
	}

	end := e.now().UTC()
	readings, err := e.fetch(ctx, entityID, sensorType, end.Add(-window), end)
	if err != nil {
		return nil, err
	}

	t := &Trend{DataPoints: len(readings)}
	if len(readings) < 2 {
		t.Direction = TrendInsufficientData
		return t, nil
	}

	n := float64(len(readings))
	origin := readings[0].Timestamp
	var sumX, sumY, sumXY, sumXX float64
	for _, r := range readings {
		x := r.Timestamp.Sub(origin).Seconds()
		y := r.Data.Value
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	// Degenerate x spread (all readings at one instant): no fit, report
	// stable rather than erroring.
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		t.Direction = TrendStable
		return t, nil
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	var ssRes, ssTot float64
	meanY := sumY / n
	for _, r := range readings {
		x := r.Timestamp.Sub(origin).Seconds()
		predicted := slope*x + intercept
		ssRes += (r.Data.Value - predicted) * (r.Data.Value - predicted)
		ssTot += (r.Data.Value - meanY) * (r.Data.Value - meanY)
	}
	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}

	t.Slope = slope
	t.ChangeRate = slope
	t.RSquared = rSquared
	t.Confidence = math.Min(rSquared*n/10, 1.0)
	switch {
	case math.Abs(slope) < e.cfg.StableSlopeThreshold:
		t.Direction = TrendStable
	case slope > 0:
		t.Direction = TrendIncreasing
	default:
		t.Direction = TrendDecreasing
	}
	return t, nil
}
