package analysis

import (
	"fmt"

	"github.com/strokewatch/platform/internal/record"
)

// AbnormalIndicators inspects a single snapshot and lists every metric
// outside its normal range, in a fixed order.
func AbnormalIndicators(s *record.Snapshot) []string {
	if s == nil {
		return nil
	}

	var out []string

	if s.Hypertension {
		out = append(out, "hypertension")
	}
	if s.HeartDisease {
		out = append(out, "heart disease")
	}

	if s.AvgGlucoseLevel != nil {
		switch g := *s.AvgGlucoseLevel; {
		case g > 125:
			out = append(out, fmt.Sprintf("elevated glucose (%.1f mg/dL)", g))
		case g < 70:
			out = append(out, fmt.Sprintf("low glucose (%.1f mg/dL)", g))
		}
	}

	if s.BMI != nil {
		switch b := *s.BMI; {
		case b > 30:
			out = append(out, fmt.Sprintf("obesity (BMI %.1f)", b))
		case b < 18.5:
			out = append(out, fmt.Sprintf("underweight (BMI %.1f)", b))
		}
	}

	if s.SmokingStatus == record.SmokingSmokes {
		out = append(out, "currently smoking")
	}

	return out
}
