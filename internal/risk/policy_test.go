package risk

import (
	"testing"
	"time"

	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/shared/config"
)

func testPolicy() *Policy {
	return NewPolicy(config.PolicyConfig{
		HighRiskThreshold:   70,
		MediumRiskThreshold: 40,
		RetestIntervalDays:  90,
	})
}

func TestLevelFor(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		score    float64
		expected Level
	}{
		{0, LevelLow},
		{39.99, LevelLow},
		{40.00, LevelMedium},
		{69.99, LevelMedium},
		{70.00, LevelHigh},
		{100, LevelHigh},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			if got := policy.LevelFor(tt.score); got != tt.expected {
				t.Errorf("LevelFor(%v): expected %s, got %s", tt.score, tt.expected, got)
			}
		})
	}
}

func TestLevelColor(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelLow, "green"},
		{LevelMedium, "yellow"},
		{LevelHigh, "red"},
		{LevelUnknown, "gray"},
	}

	for _, tt := range tests {
		if got := tt.level.Color(); got != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, got)
		}
	}
}

func TestSetThresholds(t *testing.T) {
	policy := testPolicy()

	if err := policy.SetThresholds(80, 50); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := policy.LevelFor(75); got != LevelMedium {
		t.Errorf("Expected Medium after raising high threshold, got %s", got)
	}

	// High must stay above medium
	if err := policy.SetThresholds(40, 70); err == nil {
		t.Error("Expected error for inverted thresholds")
	}
	if err := policy.SetThresholds(110, 50); err == nil {
		t.Error("Expected error for threshold above 100")
	}
}

func TestSetThresholdsDoesNotRescoreHistory(t *testing.T) {
	policy := testPolicy()

	// An assessment created before a threshold change keeps its level.
	s := snapshot(100, true, true, floatPtr(300), floatPtr(50), record.SmokingSmokes)
	a := NewAssessment(s, policy, time.Now())
	if a.Level != LevelHigh {
		t.Fatalf("Expected High, got %s", a.Level)
	}

	if err := policy.SetThresholds(99.5, 99); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if a.Level != LevelHigh {
		t.Errorf("Stored assessment level must not change, got %s", a.Level)
	}
}

func TestSetRetestInterval(t *testing.T) {
	policy := testPolicy()

	if err := policy.SetRetestInterval(30); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := policy.RetestIntervalDays(); got != 30 {
		t.Errorf("Expected 30, got %d", got)
	}

	if err := policy.SetRetestInterval(0); err == nil {
		t.Error("Expected error for non-positive interval")
	}
}

func TestRetestDue(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		last     *time.Time
		interval int
		expected bool
	}{
		{"no snapshots is always due", nil, 90, true},
		{"yesterday is not due", timePtr(now.AddDate(0, 0, -1)), 90, false},
		{"89 days is not due", timePtr(now.AddDate(0, 0, -89)), 90, false},
		{"exactly 90 days is due", timePtr(now.AddDate(0, 0, -90)), 90, true},
		{"far past is due", timePtr(now.AddDate(-1, 0, 0)), 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RetestDue(tt.last, tt.interval, now); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
