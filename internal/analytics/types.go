package analytics

import "time"

// Granularity selects the bucket width for BucketedAverage.
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

// Duration returns the bucket width, or zero for an unknown granularity.
func (g Granularity) Duration() time.Duration {
	switch g {
	case GranularityHour:
		return time.Hour
	case GranularityDay:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Period is a named lookback window for trend analysis.
type Period string

const (
	Period1h  Period = "1h"
	Period24h Period = "24h"
	Period7d  Period = "7d"
)

// Duration returns the window length, or zero for an unknown period.
func (p Period) Duration() time.Duration {
	switch p {
	case Period1h:
		return time.Hour
	case Period24h:
		return 24 * time.Hour
	case Period7d:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Trend directions.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// Statistics describes a set of reading values. Count is always present;
// the remaining fields are nil when no readings matched, so a caller can
// distinguish "no data" from a legitimate zero.
type Statistics struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	StdDev *float64 `json:"stdDev"`
	Range  *float64 `json:"range"`
}

// Bucket is one fixed-width interval [Start, Start+width). Average is nil
// when the interval holds no readings; empty intervals are still emitted
// so charts render gaps instead of collapsing them.
type Bucket struct {
	Start     time.Time `json:"start"`
	Average   *float64  `json:"average"`
	Count     int       `json:"count"`
	Hour      int       `json:"hour"`
	DayOfWeek string    `json:"dayOfWeek"`
	Month     string    `json:"month"`
}

// Trend is a least-squares linear fit over a lookback window.
type Trend struct {
	Direction  string  `json:"direction"`
	Slope      float64 `json:"slope"`
	ChangeRate float64 `json:"changeRate"`
	RSquared   float64 `json:"rSquared"`
	Confidence float64 `json:"confidence"`
	DataPoints int     `json:"dataPoints"`
}

// Quality scores a sensor stream on four axes, each in [0, 1]. A stream
// with no readings at all scores zero across the board.
type Quality struct {
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Consistency  float64 `json:"consistency"`
	Timeliness   float64 `json:"timeliness"`
}

// Overall is the unweighted mean of the four scores.
func (q Quality) Overall() float64 {
	return (q.Completeness + q.Accuracy + q.Consistency + q.Timeliness) / 4
}
