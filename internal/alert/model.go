package alert

import (
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

// Type of alert
type Type string

const (
	TypeHighRisk          Type = "high_risk"
	TypeEmergency         Type = "emergency"
	TypeAbnormalIndicator Type = "abnormal_indicator"
)

// Severity of an alert
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Alert is an urgent notice addressed to one linked recipient about one
// patient. After creation the only permitted mutation is Acknowledge.
type Alert struct {
	ID          types.ID  `json:"id"`
	PatientID   types.ID  `json:"patient_id"`
	RecipientID types.ID  `json:"recipient_id"`
	Type        Type      `json:"type"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"timestamp"`

	IsRead         bool `json:"is_read"`
	IsAcknowledged bool `json:"is_acknowledged"`
}

// Acknowledge marks the alert read and acknowledged. The transition is
// one-way and idempotent; acknowledging twice changes nothing.
func (a *Alert) Acknowledge() {
	a.IsAcknowledged = true
	a.IsRead = true
}
