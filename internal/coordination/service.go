package coordination

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/strokewatch/platform/internal/alert"
	"github.com/strokewatch/platform/internal/fast"
	"github.com/strokewatch/platform/internal/identity"
	"github.com/strokewatch/platform/internal/messaging"
	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/risk"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/events"
	"github.com/strokewatch/platform/internal/shared/metrics"
	"github.com/strokewatch/platform/internal/shared/types"
	"github.com/strokewatch/platform/internal/sharing"
)

// Publisher publishes domain events. The EventStoreDB bus implements
// it; a nil publisher disables publishing.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service orchestrates the patient care workflows: snapshot submission
// with assessment and alert fanout, FAST screening with emergency
// escalation, sharing, and retest reminders.
type Service struct {
	users      identity.Repository
	records    record.Store
	history    risk.History
	policy     *risk.Policy
	screens    fast.Store
	registry   sharing.Registry
	alerts     alert.Store
	dispatcher *alert.Dispatcher
	messenger  *messaging.Service
	publisher  Publisher

	clock func() time.Time

	// Per-patient locks serialize the submit pipeline so an assessment
	// always reflects the snapshot appended just before it.
	mu    sync.Mutex
	locks map[types.ID]*sync.Mutex
}

// NewService creates the coordination service
func NewService(
	users identity.Repository,
	records record.Store,
	history risk.History,
	policy *risk.Policy,
	screens fast.Store,
	registry sharing.Registry,
	alerts alert.Store,
	dispatcher *alert.Dispatcher,
	messenger *messaging.Service,
	publisher Publisher,
) *Service {
	return &Service{
		users:      users,
		records:    records,
		history:    history,
		policy:     policy,
		screens:    screens,
		registry:   registry,
		alerts:     alerts,
		dispatcher: dispatcher,
		messenger:  messenger,
		publisher:  publisher,
		clock:      time.Now,
		locks:      make(map[types.ID]*sync.Mutex),
	}
}

func (s *Service) patientLock(patientID types.ID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[patientID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[patientID] = l
	}
	return l
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Failed to publish event %s: %v", event.Type, err)
	}
}

// SnapshotInput carries the patient-submitted health metrics for one
// snapshot
type SnapshotInput struct {
	Age             int      `json:"age"`
	Gender          string   `json:"gender"`
	Hypertension    bool     `json:"hypertension"`
	HeartDisease    bool     `json:"heart_disease"`
	Married         bool     `json:"married"`
	WorkType        string   `json:"work_type"`
	ResidenceType   string   `json:"residence_type"`
	AvgGlucoseLevel *float64 `json:"avg_glucose_level"`
	BMI             *float64 `json:"bmi"`
	SmokingStatus   string   `json:"smoking_status"`
}

// Validate checks the input ranges
func (in SnapshotInput) Validate() error {
	details := map[string]string{}
	if in.Age < 0 || in.Age > 150 {
		details["age"] = "age must lie within [0,150]"
	}
	if in.AvgGlucoseLevel != nil && *in.AvgGlucoseLevel <= 0 {
		details["avg_glucose_level"] = "must be positive when present"
	}
	if in.BMI != nil && *in.BMI <= 0 {
		details["bmi"] = "must be positive when present"
	}
	if len(details) > 0 {
		return errors.Validation("invalid health data", details)
	}
	return nil
}

// SubmitSnapshot records a health snapshot, assesses it, and fans out
// high-risk alerts to everyone the patient shares with. The snapshot
// and its assessment are appended under the patient's lock; an
// assessment always scores exactly the snapshot recorded with it.
func (s *Service) SubmitSnapshot(ctx context.Context, patientID types.ID, in SnapshotInput, source string) (*record.Snapshot, *risk.Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	if source == "" {
		source = "manual"
	}

	l := s.patientLock(patientID)
	l.Lock()
	defer l.Unlock()

	now := s.clock().UTC()
	snapshot := &record.Snapshot{
		ID:              types.NewID(),
		PatientID:       patientID,
		RecordedAt:      now,
		Age:             in.Age,
		Gender:          in.Gender,
		Hypertension:    in.Hypertension,
		HeartDisease:    in.HeartDisease,
		Married:         in.Married,
		WorkType:        in.WorkType,
		ResidenceType:   in.ResidenceType,
		AvgGlucoseLevel: in.AvgGlucoseLevel,
		BMI:             in.BMI,
		SmokingStatus:   record.ParseSmokingStatus(in.SmokingStatus),
	}

	if err := s.records.Append(ctx, snapshot); err != nil {
		return nil, nil, err
	}
	metrics.SnapshotRecorded(source)
	s.publish(ctx, events.NewEvent("snapshot.recorded", source, snapshot).WithActor(patientID, string(identity.RolePatient)))

	assessment := risk.NewAssessment(snapshot, s.policy, now)
	if err := s.history.Append(ctx, assessment); err != nil {
		return nil, nil, err
	}
	metrics.AssessmentCreated(string(assessment.Level))
	s.publish(ctx, events.NewEvent("assessment.created", "risk", assessment))

	if assessment.Level == risk.LevelHigh {
		if err := s.fanOutHighRisk(ctx, patientID); err != nil {
			return nil, nil, err
		}
	}

	return snapshot, assessment, nil
}

// fanOutHighRisk alerts every linked recipient, caregivers and doctors
// alike
func (s *Service) fanOutHighRisk(ctx context.Context, patientID types.ID) error {
	links, err := s.registry.ForPatient(ctx, patientID)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	recipients := make([]alert.Recipient, 0, len(links))
	for _, link := range links {
		recipients = append(recipients, alert.Recipient{
			ID:   link.RecipientID,
			Role: string(link.Role),
		})
	}

	alerts := s.dispatcher.HighRisk(patientID, s.patientName(ctx, patientID), recipients)
	if err := s.alerts.Save(ctx, alerts...); err != nil {
		return err
	}
	for _, a := range alerts {
		metrics.AlertDispatched(string(a.Type))
		s.publish(ctx, events.NewEvent("alert.dispatched", "alert", a))
	}
	return nil
}

// PerformFASTScreen records a FAST screen. A positive screen escalates
// to the patient's caregivers only; doctors are reached through the
// high-risk path, not the emergency one.
func (s *Service) PerformFASTScreen(ctx context.Context, patientID types.ID, face, arm, speech bool) (*fast.Result, error) {
	result := fast.NewResult(patientID, face, arm, speech, s.clock().UTC())
	if err := s.screens.Append(ctx, result); err != nil {
		return nil, err
	}
	metrics.FASTTestPerformed(result.IsEmergency)
	s.publish(ctx, events.NewEvent("fast.performed", "fast", result).WithActor(patientID, string(identity.RolePatient)))

	if !result.IsEmergency {
		return result, nil
	}

	links, err := s.registry.ForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	name := s.patientName(ctx, patientID)
	for _, link := range links {
		if link.Role != sharing.RoleCaregiver {
			continue
		}
		a := s.dispatcher.Emergency(patientID, name, link.RecipientID)
		if err := s.alerts.Save(ctx, a); err != nil {
			return nil, err
		}
		metrics.AlertDispatched(string(a.Type))
		s.publish(ctx, events.NewEvent("alert.dispatched", "alert", a))
	}

	return result, nil
}

// ShareWith links a patient to a caregiver or doctor. Linking is
// idempotent; the recipient is notified only when a new link is
// created.
func (s *Service) ShareWith(ctx context.Context, patientID, recipientID types.ID) (*sharing.Link, bool, error) {
	if patientID == recipientID {
		return nil, false, errors.BadRequest("cannot share data with yourself")
	}

	recipient, err := s.users.Get(ctx, recipientID)
	if err != nil {
		return nil, false, err
	}

	var role sharing.Role
	switch recipient.Role {
	case identity.RoleCaregiver:
		role = sharing.RoleCaregiver
	case identity.RoleDoctor:
		role = sharing.RoleDoctor
	default:
		return nil, false, errors.BadRequest("data can only be shared with a caregiver or doctor")
	}

	created, err := s.registry.Link(ctx, patientID, recipientID, role)
	if err != nil {
		return nil, false, err
	}

	link := &sharing.Link{
		PatientID:   patientID,
		RecipientID: recipientID,
		Role:        role,
		LinkedAt:    s.clock().UTC(),
	}

	if created {
		metrics.SharingLinkCreated(string(role))
		s.publish(ctx, events.NewEvent("sharing.linked", "sharing", link).WithActor(patientID, string(identity.RolePatient)))

		name := s.patientName(ctx, patientID)
		if _, err := s.messenger.Notify(ctx, recipientID,
			"New patient shared data with you",
			fmt.Sprintf("Patient %s is now sharing health data with you.", name),
			messaging.NotificationInfo,
		); err != nil {
			log.Printf("Failed to notify recipient %s: %v", recipientID, err)
		}
	}

	return link, created, nil
}

// RetestDue reports whether the patient is due for a new health data
// submission under the current retest policy
func (s *Service) RetestDue(ctx context.Context, patientID types.ID) (bool, error) {
	latest, err := s.records.Latest(ctx, patientID)
	if err != nil {
		return false, err
	}

	var last *time.Time
	if latest != nil {
		last = &latest.RecordedAt
	}
	return risk.RetestDue(last, s.policy.RetestIntervalDays(), s.clock().UTC()), nil
}

// SendRetestReminders notifies every patient whose latest snapshot is
// older than the retest interval. It returns the number of reminders
// sent.
func (s *Service) SendRetestReminders(ctx context.Context) (int, error) {
	patients, err := s.users.ListByRole(ctx, identity.RolePatient)
	if err != nil {
		return 0, err
	}

	interval := s.policy.RetestIntervalDays()
	sent := 0
	for _, p := range patients {
		due, err := s.RetestDue(ctx, p.ID)
		if err != nil {
			return sent, err
		}
		if !due {
			continue
		}

		_, err = s.messenger.Notify(ctx, p.ID,
			"Health reassessment due",
			fmt.Sprintf("More than %d days have passed since your last health data submission. Please submit new data for a fresh risk assessment.", interval),
			messaging.NotificationReminder,
		)
		if err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// CanView reports whether a viewer may read a patient's data. Patients
// always see their own; others need a sharing link.
func (s *Service) CanView(ctx context.Context, viewerID, patientID types.ID) (bool, error) {
	if viewerID == patientID {
		return true, nil
	}

	links, err := s.registry.ForPatient(ctx, patientID)
	if err != nil {
		return false, err
	}
	for _, link := range links {
		if link.RecipientID == viewerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) patientName(ctx context.Context, patientID types.ID) string {
	u, err := s.users.Get(ctx, patientID)
	if err != nil {
		return patientID.String()
	}
	return u.Name
}
