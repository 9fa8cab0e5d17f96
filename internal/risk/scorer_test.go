package risk

import (
	"testing"

	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/shared/types"
)

func floatPtr(v float64) *float64 { return &v }

func snapshot(age int, hyper, heart bool, glucose, bmi *float64, smoking record.SmokingStatus) *record.Snapshot {
	return &record.Snapshot{
		ID:              types.NewID(),
		PatientID:       types.NewID(),
		Age:             age,
		Hypertension:    hyper,
		HeartDisease:    heart,
		AvgGlucoseLevel: glucose,
		BMI:             bmi,
		SmokingStatus:   smoking,
	}
}

func TestScoreSaturated(t *testing.T) {
	// Every factor at its cap must yield exactly 100.
	s := snapshot(100, true, true, floatPtr(300), floatPtr(50), record.SmokingSmokes)

	if got := Score(s); got != 100.00 {
		t.Errorf("Expected 100.00, got %v", got)
	}
}

func TestScoreClean(t *testing.T) {
	s := snapshot(0, false, false, floatPtr(100), floatPtr(22), record.SmokingNever)

	if got := Score(s); got != 0.00 {
		t.Errorf("Expected 0.00, got %v", got)
	}
}

func TestScoreCases(t *testing.T) {
	tests := []struct {
		name     string
		s        *record.Snapshot
		expected float64
	}{
		{
			name:     "age only",
			s:        snapshot(50, false, false, floatPtr(100), floatPtr(22), record.SmokingNever),
			expected: 7.50, // 50 * 0.15
		},
		{
			name:     "age capped at 100",
			s:        snapshot(120, false, false, floatPtr(100), floatPtr(22), record.SmokingNever),
			expected: 15.00,
		},
		{
			name:     "hypertension only",
			s:        snapshot(0, true, false, floatPtr(100), floatPtr(22), record.SmokingNever),
			expected: 20.00,
		},
		{
			name:     "heart disease only",
			s:        snapshot(0, false, true, floatPtr(100), floatPtr(22), record.SmokingNever),
			expected: 20.00,
		},
		{
			name:     "former smoker contributes half",
			s:        snapshot(0, false, false, floatPtr(100), floatPtr(22), record.SmokingFormerly),
			expected: 7.50, // 50 * 0.15
		},
		{
			name:     "current smoker contributes full",
			s:        snapshot(0, false, false, floatPtr(100), floatPtr(22), record.SmokingSmokes),
			expected: 15.00,
		},
		{
			name:     "elevated glucose saturates at 300",
			s:        snapshot(0, false, false, floatPtr(300), floatPtr(22), record.SmokingNever),
			expected: 15.00, // (300-125)/175 = 1.0
		},
		{
			name:     "low glucose scales against lower bound",
			s:        snapshot(0, false, false, floatPtr(35), floatPtr(22), record.SmokingNever),
			expected: 7.50, // (70-35)/70 = 0.5
		},
		{
			name:     "obese BMI saturates at 50",
			s:        snapshot(0, false, false, floatPtr(100), floatPtr(50), record.SmokingNever),
			expected: 15.00, // (50-30)/20 = 1.0
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.s); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScoreMissingOptionalMetrics(t *testing.T) {
	// Missing glucose and BMI skip their terms entirely instead of
	// counting as zero-valued inputs.
	withBoth := snapshot(60, true, false, floatPtr(100), floatPtr(22), record.SmokingNever)
	without := snapshot(60, true, false, nil, nil, record.SmokingNever)

	if Score(withBoth) != Score(without) {
		t.Errorf("In-range metrics and missing metrics should both contribute zero: %v vs %v",
			Score(withBoth), Score(without))
	}

	factors := Factors(without)
	for _, f := range factors {
		if f.Name == "glucose" || f.Name == "bmi" {
			t.Errorf("Factor %s should be absent when the metric is missing", f.Name)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := snapshot(67, true, true, floatPtr(228.69), floatPtr(36.6), record.SmokingFormerly)

	first := Score(s)
	for i := 0; i < 5; i++ {
		if got := Score(s); got != first {
			t.Errorf("Score changed between evaluations: %v vs %v", first, got)
		}
	}
}
