package fast

import (
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

// Advisory messages attached to screen results
const (
	EmergencyAdvice = "Call emergency services immediately!"
	NormalAdvice    = "Within normal range."
)

// Result is one FAST (Face-Arm-Speech-Time) screen outcome. Results are
// immutable; performing the screen again appends a new result and never
// mutates prior ones.
type Result struct {
	ID          types.ID  `json:"id"`
	PatientID   types.ID  `json:"patient_id"`
	PerformedAt time.Time `json:"timestamp"`

	FaceAsymmetry    bool `json:"face"`
	ArmWeakness      bool `json:"arm"`
	SpeechDifficulty bool `json:"speech"`

	// IsEmergency is always face OR arm OR speech, set together with
	// the three flags at construction time.
	IsEmergency bool `json:"is_emergency"`
}

// Evaluate applies the FAST triage rule: any single positive finding
// flags an emergency.
func Evaluate(face, arm, speech bool) bool {
	return face || arm || speech
}

// NewResult performs a FAST screen for a patient and produces a new
// immutable result.
func NewResult(patientID types.ID, face, arm, speech bool, now time.Time) *Result {
	return &Result{
		ID:               types.NewID(),
		PatientID:        patientID,
		PerformedAt:      now,
		FaceAsymmetry:    face,
		ArmWeakness:      arm,
		SpeechDifficulty: speech,
		IsEmergency:      Evaluate(face, arm, speech),
	}
}

// Advice returns the fixed advisory text for the result
func (r *Result) Advice() string {
	if r.IsEmergency {
		return EmergencyAdvice
	}
	return NormalAdvice
}
