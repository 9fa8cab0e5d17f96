package risk

import (
	"time"

	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Assessment is the scored, leveled, annotated output of evaluating one
// snapshot. It is immutable after creation and appended to the
// patient's assessment history; past assessments are never rewritten.
type Assessment struct {
	ID         types.ID  `json:"id"`
	PatientID  types.ID  `json:"patient_id"`
	SnapshotID types.ID  `json:"snapshot_id"`
	AssessedAt time.Time `json:"timestamp"`

	Score           float64  `json:"score"`
	Level           Level    `json:"level"`
	Recommendations []string `json:"recommendations"`
}

// NewAssessment evaluates a snapshot: score, level and recommendations
// are computed together in one step so the level can never drift from
// the score it was derived from.
func NewAssessment(s *record.Snapshot, policy *Policy, now time.Time) *Assessment {
	score := Score(s)
	level := policy.LevelFor(score)

	return &Assessment{
		ID:              types.NewID(),
		PatientID:       s.PatientID,
		SnapshotID:      s.ID,
		AssessedAt:      now,
		Score:           score,
		Level:           level,
		Recommendations: Recommend(s, level),
	}
}
