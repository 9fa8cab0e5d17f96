package analysis

import (
	"math"

	"github.com/strokewatch/platform/internal/record"
)

// Trend classifications
const (
	TrendNoData           = "no_data"
	TrendInsufficientData = "insufficient_data"
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
)

// Metric names accepted by Trend
const (
	MetricAge     = "age"
	MetricGlucose = "avg_glucose_level"
	MetricBMI     = "bmi"
)

// TrendResult describes the direction of a metric across a patient's
// snapshot history.
type TrendResult struct {
	Trend      string  `json:"trend"`
	ChangeRate float64 `json:"change_rate"`
	FirstValue float64 `json:"first_value,omitempty"`
	LastValue  float64 `json:"last_value,omitempty"`
	DataPoints int     `json:"data_points,omitempty"`
}

// Trend computes the directional trend of a named metric over a
// snapshot sequence. Snapshots are taken in stored insertion order
// (chronological by submission); they are not re-sorted. Snapshots
// missing the metric are skipped.
func Trend(snapshots []*record.Snapshot, metric string) TrendResult {
	if len(snapshots) == 0 {
		return TrendResult{Trend: TrendNoData, ChangeRate: 0}
	}

	var values []float64
	for _, s := range snapshots {
		if v, ok := metricValue(s, metric); ok {
			values = append(values, v)
		}
	}

	if len(values) < 2 {
		return TrendResult{Trend: TrendInsufficientData, ChangeRate: 0}
	}

	first := values[0]
	last := values[len(values)-1]

	// A zero first value would divide by zero; the change rate is
	// defined as zero in that case.
	changeRate := 0.0
	if first != 0 {
		changeRate = round2((last - first) / first * 100)
	}

	trend := TrendStable
	switch {
	case changeRate > 10:
		trend = TrendIncreasing
	case changeRate < -10:
		trend = TrendDecreasing
	}

	return TrendResult{
		Trend:      trend,
		ChangeRate: changeRate,
		FirstValue: first,
		LastValue:  last,
		DataPoints: len(values),
	}
}

func metricValue(s *record.Snapshot, metric string) (float64, bool) {
	switch metric {
	case MetricAge:
		return float64(s.Age), true
	case MetricGlucose:
		if s.AvgGlucoseLevel == nil {
			return 0, false
		}
		return *s.AvgGlucoseLevel, true
	case MetricBMI:
		if s.BMI == nil {
			return 0, false
		}
		return *s.BMI, true
	default:
		return 0, false
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
