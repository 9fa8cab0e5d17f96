package record

import (
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

// SmokingStatus classifies a patient's smoking history
type SmokingStatus string

const (
	SmokingNever    SmokingStatus = "never"
	SmokingFormerly SmokingStatus = "formerly"
	SmokingSmokes   SmokingStatus = "smokes"
)

// ParseSmokingStatus normalizes a raw smoking status value. Unknown or
// missing values map to "never", which contributes zero risk.
func ParseSmokingStatus(s string) SmokingStatus {
	switch SmokingStatus(s) {
	case SmokingFormerly, SmokingSmokes:
		return SmokingStatus(s)
	default:
		return SmokingNever
	}
}

// Snapshot is one point-in-time set of health metrics submitted by a
// patient. Snapshots are immutable once created; a patient's history is
// an append-only sequence of them.
type Snapshot struct {
	ID         types.ID  `json:"id"`
	PatientID  types.ID  `json:"patient_id"`
	RecordedAt time.Time `json:"timestamp"`

	Age           int    `json:"age"`
	Gender        string `json:"gender,omitempty"`
	Hypertension  bool   `json:"hypertension"`
	HeartDisease  bool   `json:"heart_disease"`
	Married       bool   `json:"married"`
	WorkType      string `json:"work_type,omitempty"`
	ResidenceType string `json:"residence_type,omitempty"`

	// AvgGlucoseLevel and BMI are optional; a missing value skips the
	// corresponding scoring term rather than counting as zero input.
	AvgGlucoseLevel *float64 `json:"avg_glucose_level,omitempty"`
	BMI             *float64 `json:"bmi,omitempty"`

	SmokingStatus SmokingStatus `json:"smoking_status"`
}
