package risk

import "github.com/strokewatch/platform/internal/record"

// Level-banded base recommendations. Three fixed entries per band.
var (
	highRecommendations = []string{
		"Consult a medical professional immediately",
		"Monitor blood pressure and blood glucose regularly",
		"Take prescribed medication exactly as directed",
	}
	mediumRecommendations = []string{
		"Regular health management is needed",
		"Consult a medical professional every 3 months",
		"Do moderate exercise 3-4 times per week",
	}
	lowRecommendations = []string{
		"Maintain your current health status",
		"Re-evaluate regularly every 3-6 months",
		"Keep up regular exercise",
	}
)

// Recommend produces the advice list for a snapshot at a given level:
// the level's base set followed by condition-triggered additions in a
// fixed order (hypertension, elevated glucose, elevated BMI, current
// smoking). The order is deterministic so assessments are reproducible.
func Recommend(s *record.Snapshot, level Level) []string {
	var out []string

	switch level {
	case LevelHigh:
		out = append(out, highRecommendations...)
	case LevelMedium:
		out = append(out, mediumRecommendations...)
	default:
		out = append(out, lowRecommendations...)
	}

	if s.Hypertension {
		out = append(out, "Reduce salt intake")
	}
	if s.AvgGlucoseLevel != nil && *s.AvgGlucoseLevel > glucoseNormalHigh {
		out = append(out, "Limit sugar intake and manage blood glucose")
	}
	if s.BMI != nil && *s.BMI > bmiNormalHigh {
		out = append(out, "Lower your BMI into the normal range through weight loss")
	}
	if s.SmokingStatus == record.SmokingSmokes {
		out = append(out, "Start a smoking cessation program")
	}

	return out
}
