package alert

import (
	"fmt"
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

// Recipient identifies one addressee of an alert fanout. Which
// recipients qualify is the caller's decision, made against the sharing
// registry; the dispatcher itself does not gate on linkage.
type Recipient struct {
	ID   types.ID
	Role string
}

// Dispatcher produces alert entities addressed to recipients. It holds
// no state beyond a clock, which tests replace.
type Dispatcher struct {
	clock func() time.Time
}

// NewDispatcher creates a dispatcher using the wall clock
func NewDispatcher() *Dispatcher {
	return &Dispatcher{clock: time.Now}
}

// NewDispatcherWithClock creates a dispatcher with an injected clock
func NewDispatcherWithClock(clock func() time.Time) *Dispatcher {
	return &Dispatcher{clock: clock}
}

// HighRisk fans out one critical alert per recipient about a patient
// whose assessment crossed into the high-risk band.
func (d *Dispatcher) HighRisk(patientID types.ID, patientName string, recipients []Recipient) []*Alert {
	message := fmt.Sprintf(
		"Patient %s has been assessed as high stroke risk. Immediate review is required.",
		patientName,
	)

	alerts := make([]*Alert, 0, len(recipients))
	for _, r := range recipients {
		alerts = append(alerts, &Alert{
			ID:          types.NewID(),
			PatientID:   patientID,
			RecipientID: r.ID,
			Type:        TypeHighRisk,
			Severity:    SeverityCritical,
			Message:     message,
			CreatedAt:   d.clock(),
		})
	}
	return alerts
}

// Emergency produces a single critical alert for one recipient after a
// positive FAST screen.
func (d *Dispatcher) Emergency(patientID types.ID, patientName string, recipientID types.ID) *Alert {
	return &Alert{
		ID:          types.NewID(),
		PatientID:   patientID,
		RecipientID: recipientID,
		Type:        TypeEmergency,
		Severity:    SeverityCritical,
		Message: fmt.Sprintf(
			"Emergency! Patient %s shows abnormal FAST screen findings. Contact emergency services immediately!",
			patientName,
		),
		CreatedAt: d.clock(),
	}
}
