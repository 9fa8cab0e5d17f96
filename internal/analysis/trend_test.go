package analysis

import (
	"testing"

	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/shared/types"
)

func floatPtr(v float64) *float64 { return &v }

func glucoseSnapshots(values ...float64) []*record.Snapshot {
	out := make([]*record.Snapshot, 0, len(values))
	for _, v := range values {
		out = append(out, &record.Snapshot{
			ID:              types.NewID(),
			AvgGlucoseLevel: floatPtr(v),
		})
	}
	return out
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected string
		rate     float64
	}{
		{"rise above ten percent", []float64{100, 150}, TrendIncreasing, 50},
		{"exactly ten percent is stable", []float64{100, 110}, TrendStable, 10},
		{"just over ten percent", []float64{100, 110.5}, TrendIncreasing, 10.5},
		{"flat", []float64{100, 100}, TrendStable, 0},
		{"drop below minus ten percent", []float64{100, 80}, TrendDecreasing, -20},
		{"exactly minus ten percent is stable", []float64{100, 90}, TrendStable, -10},
		{"only endpoints matter", []float64{100, 500, 100}, TrendStable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trend(glucoseSnapshots(tt.values...), MetricGlucose)
			if got.Trend != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got.Trend)
			}
			if got.ChangeRate != tt.rate {
				t.Errorf("Expected rate %v, got %v", tt.rate, got.ChangeRate)
			}
			if got.DataPoints != len(tt.values) {
				t.Errorf("Expected %d data points, got %d", len(tt.values), got.DataPoints)
			}
		})
	}
}

func TestTrendEmptyHistory(t *testing.T) {
	got := Trend(nil, MetricGlucose)
	if got.Trend != TrendNoData {
		t.Errorf("Expected %s, got %s", TrendNoData, got.Trend)
	}
	if got.ChangeRate != 0 {
		t.Errorf("Expected rate 0, got %v", got.ChangeRate)
	}
}

func TestTrendSingleValue(t *testing.T) {
	got := Trend(glucoseSnapshots(100), MetricGlucose)
	if got.Trend != TrendInsufficientData {
		t.Errorf("Expected %s, got %s", TrendInsufficientData, got.Trend)
	}
}

func TestTrendZeroFirstValue(t *testing.T) {
	// A zero first value defines the change rate as zero instead of
	// dividing by it.
	snapshots := []*record.Snapshot{
		{ID: types.NewID(), Age: 0},
		{ID: types.NewID(), Age: 50},
	}

	got := Trend(snapshots, MetricAge)
	if got.ChangeRate != 0 {
		t.Errorf("Expected rate 0, got %v", got.ChangeRate)
	}
	if got.Trend != TrendStable {
		t.Errorf("Expected %s, got %s", TrendStable, got.Trend)
	}
}

func TestTrendSkipsMissingValues(t *testing.T) {
	snapshots := []*record.Snapshot{
		{ID: types.NewID(), AvgGlucoseLevel: floatPtr(100)},
		{ID: types.NewID()}, // no glucose
		{ID: types.NewID(), AvgGlucoseLevel: floatPtr(150)},
	}

	got := Trend(snapshots, MetricGlucose)
	if got.Trend != TrendIncreasing {
		t.Errorf("Expected %s, got %s", TrendIncreasing, got.Trend)
	}
	if got.DataPoints != 2 {
		t.Errorf("Expected 2 data points, got %d", got.DataPoints)
	}
}

func TestTrendUnknownMetric(t *testing.T) {
	got := Trend(glucoseSnapshots(100, 150), "heart_rate")
	if got.Trend != TrendInsufficientData {
		t.Errorf("Expected %s for unknown metric, got %s", TrendInsufficientData, got.Trend)
	}
}

func TestAbnormalIndicators(t *testing.T) {
	tests := []struct {
		name     string
		s        *record.Snapshot
		expected []string
	}{
		{
			name:     "nil snapshot",
			s:        nil,
			expected: nil,
		},
		{
			name:     "all normal",
			s:        &record.Snapshot{AvgGlucoseLevel: floatPtr(100), BMI: floatPtr(22)},
			expected: nil,
		},
		{
			name: "everything abnormal keeps fixed order",
			s: &record.Snapshot{
				Hypertension:    true,
				HeartDisease:    true,
				AvgGlucoseLevel: floatPtr(200),
				BMI:             floatPtr(35),
				SmokingStatus:   record.SmokingSmokes,
			},
			expected: []string{
				"hypertension",
				"heart disease",
				"elevated glucose (200.0 mg/dL)",
				"obesity (BMI 35.0)",
				"currently smoking",
			},
		},
		{
			name:     "low glucose and underweight",
			s:        &record.Snapshot{AvgGlucoseLevel: floatPtr(60), BMI: floatPtr(17)},
			expected: []string{"low glucose (60.0 mg/dL)", "underweight (BMI 17.0)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AbnormalIndicators(tt.s)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Position %d: expected '%s', got '%s'", i, tt.expected[i], got[i])
				}
			}
		})
	}
}
