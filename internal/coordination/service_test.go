package coordination

import (
	"context"
	"testing"
	"time"

	"github.com/strokewatch/platform/internal/alert"
	"github.com/strokewatch/platform/internal/fast"
	"github.com/strokewatch/platform/internal/identity"
	"github.com/strokewatch/platform/internal/messaging"
	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/risk"
	"github.com/strokewatch/platform/internal/shared/config"
	"github.com/strokewatch/platform/internal/shared/types"
	"github.com/strokewatch/platform/internal/sharing"
)

type fixture struct {
	service  *Service
	users    *identity.MemoryRepository
	records  *record.MemoryStore
	history  *risk.MemoryHistory
	screens  *fast.MemoryStore
	registry *sharing.MemoryRegistry
	alerts   *alert.MemoryStore
	msgStore *messaging.MemoryStore

	patient   *identity.User
	caregiver *identity.User
	doctor    *identity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		users:    identity.NewMemoryRepository(),
		records:  record.NewMemoryStore(),
		history:  risk.NewMemoryHistory(),
		screens:  fast.NewMemoryStore(),
		registry: sharing.NewMemoryRegistry(),
		alerts:   alert.NewMemoryStore(),
		msgStore: messaging.NewMemoryStore(),
	}

	policy := risk.NewPolicy(config.PolicyConfig{
		HighRiskThreshold:   70,
		MediumRiskThreshold: 40,
		RetestIntervalDays:  90,
	})

	f.service = NewService(
		f.users, f.records, f.history, policy, f.screens,
		f.registry, f.alerts, alert.NewDispatcher(),
		messaging.NewService(f.msgStore), nil,
	)

	f.patient = identity.NewUser("ana@example.com", "Ana", identity.RolePatient, "", "pw", time.Now())
	f.caregiver = identity.NewUser("luka@example.com", "Luka", identity.RoleCaregiver, "", "pw", time.Now())
	f.doctor = identity.NewUser("dr@example.com", "Dr. Ivic", identity.RoleDoctor, "neurology", "pw", time.Now())
	for _, u := range []*identity.User{f.patient, f.caregiver, f.doctor} {
		if err := f.users.Create(ctx, u); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	return f
}

func floatPtr(v float64) *float64 { return &v }

func highRiskInput() SnapshotInput {
	return SnapshotInput{
		Age:             100,
		Hypertension:    true,
		HeartDisease:    true,
		AvgGlucoseLevel: floatPtr(300),
		BMI:             floatPtr(50),
		SmokingStatus:   "smokes",
	}
}

func lowRiskInput() SnapshotInput {
	return SnapshotInput{
		Age:             20,
		AvgGlucoseLevel: floatPtr(100),
		BMI:             floatPtr(22),
		SmokingStatus:   "never",
	}
}

func (f *fixture) linkBoth(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, _, err := f.service.ShareWith(ctx, f.patient.ID, f.caregiver.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, _, err := f.service.ShareWith(ctx, f.patient.ID, f.doctor.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestSubmitSnapshotStoresAndAssesses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	snapshot, assessment, err := f.service.SubmitSnapshot(ctx, f.patient.ID, lowRiskInput(), "manual")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if snapshot.PatientID != f.patient.ID {
		t.Error("Snapshot must belong to the patient")
	}
	if assessment.SnapshotID != snapshot.ID {
		t.Error("Assessment must reference the submitted snapshot")
	}
	if assessment.Level != risk.LevelLow {
		t.Errorf("Expected Low, got %s", assessment.Level)
	}

	history, _ := f.history.ForPatient(ctx, f.patient.ID)
	if len(history) != 1 {
		t.Fatalf("Expected 1 assessment in history, got %d", len(history))
	}

	snapshots, _ := f.records.ForPatient(ctx, f.patient.ID)
	if len(snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(snapshots))
	}
}

func TestSubmitSnapshotRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	in := lowRiskInput()
	in.Age = -1
	if _, _, err := f.service.SubmitSnapshot(context.Background(), f.patient.ID, in, "manual"); err == nil {
		t.Error("Expected validation error for negative age")
	}

	in = lowRiskInput()
	in.BMI = floatPtr(-5)
	if _, _, err := f.service.SubmitSnapshot(context.Background(), f.patient.ID, in, "manual"); err == nil {
		t.Error("Expected validation error for negative BMI")
	}
}

func TestHighRiskAlertsAllLinkedRecipients(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.linkBoth(t)

	_, assessment, err := f.service.SubmitSnapshot(ctx, f.patient.ID, highRiskInput(), "manual")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if assessment.Level != risk.LevelHigh {
		t.Fatalf("Expected High, got %s", assessment.Level)
	}

	for _, recipient := range []types.ID{f.caregiver.ID, f.doctor.ID} {
		inbox, _ := f.alerts.ForRecipient(ctx, recipient)
		if len(inbox) != 1 {
			t.Fatalf("Expected 1 alert for recipient, got %d", len(inbox))
		}
		if inbox[0].Type != alert.TypeHighRisk {
			t.Errorf("Expected type %s, got %s", alert.TypeHighRisk, inbox[0].Type)
		}
		if inbox[0].Severity != alert.SeverityCritical {
			t.Errorf("Expected severity %s, got %s", alert.SeverityCritical, inbox[0].Severity)
		}
	}
}

func TestHighRiskWithoutLinksAlertsNobody(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, assessment, err := f.service.SubmitSnapshot(ctx, f.patient.ID, highRiskInput(), "manual")
	if err != nil {
		t.Fatalf("Unlinked high-risk submit must still succeed, got %v", err)
	}
	if assessment.Level != risk.LevelHigh {
		t.Fatalf("Expected High, got %s", assessment.Level)
	}

	inbox, _ := f.alerts.ForRecipient(ctx, f.caregiver.ID)
	if len(inbox) != 0 {
		t.Errorf("Expected no alerts, got %d", len(inbox))
	}
}

func TestLowRiskAlertsNobody(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.linkBoth(t)

	f.service.SubmitSnapshot(ctx, f.patient.ID, lowRiskInput(), "manual")

	inbox, _ := f.alerts.ForRecipient(ctx, f.caregiver.ID)
	if len(inbox) != 0 {
		t.Errorf("Expected no alerts for low risk, got %d", len(inbox))
	}
}

func TestFASTEmergencyAlertsCaregiversOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.linkBoth(t)

	result, err := f.service.PerformFASTScreen(ctx, f.patient.ID, true, false, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.IsEmergency {
		t.Fatal("Expected emergency result")
	}

	caregiverInbox, _ := f.alerts.ForRecipient(ctx, f.caregiver.ID)
	if len(caregiverInbox) != 1 {
		t.Fatalf("Expected 1 emergency alert for caregiver, got %d", len(caregiverInbox))
	}
	if caregiverInbox[0].Type != alert.TypeEmergency {
		t.Errorf("Expected type %s, got %s", alert.TypeEmergency, caregiverInbox[0].Type)
	}

	doctorInbox, _ := f.alerts.ForRecipient(ctx, f.doctor.ID)
	if len(doctorInbox) != 0 {
		t.Errorf("Doctors must not receive emergency alerts, got %d", len(doctorInbox))
	}
}

func TestFASTNegativeAlertsNobody(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.linkBoth(t)

	result, err := f.service.PerformFASTScreen(ctx, f.patient.ID, false, false, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.IsEmergency {
		t.Fatal("Expected normal result")
	}

	inbox, _ := f.alerts.ForRecipient(ctx, f.caregiver.ID)
	if len(inbox) != 0 {
		t.Errorf("Expected no alerts, got %d", len(inbox))
	}

	results, _ := f.screens.ForPatient(ctx, f.patient.ID)
	if len(results) != 1 {
		t.Errorf("Negative screens must still be recorded, got %d", len(results))
	}
}

func TestShareWithIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, created, err := f.service.ShareWith(ctx, f.patient.ID, f.caregiver.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !created {
		t.Error("First share must create a link")
	}

	_, created, err = f.service.ShareWith(ctx, f.patient.ID, f.caregiver.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created {
		t.Error("Repeated share must be a no-op")
	}

	links, _ := f.registry.ForPatient(ctx, f.patient.ID)
	if len(links) != 1 {
		t.Errorf("Expected exactly 1 link, got %d", len(links))
	}

	// The recipient is notified once, not per attempt
	notifications, _ := f.msgStore.NotificationsFor(ctx, f.caregiver.ID)
	if len(notifications) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifications))
	}
}

func TestShareWithRejectsInvalidRecipients(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	otherPatient := identity.NewUser("p2@example.com", "P2", identity.RolePatient, "", "pw", time.Now())
	f.users.Create(ctx, otherPatient)

	if _, _, err := f.service.ShareWith(ctx, f.patient.ID, otherPatient.ID); err == nil {
		t.Error("Expected error when sharing with another patient")
	}
	if _, _, err := f.service.ShareWith(ctx, f.patient.ID, f.patient.ID); err == nil {
		t.Error("Expected error when sharing with yourself")
	}
	if _, _, err := f.service.ShareWith(ctx, f.patient.ID, types.NewID()); err == nil {
		t.Error("Expected error for unknown recipient")
	}
}

func TestRetestDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	due, err := f.service.RetestDue(ctx, f.patient.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !due {
		t.Error("Patient with no snapshots must be due")
	}

	f.service.SubmitSnapshot(ctx, f.patient.ID, lowRiskInput(), "manual")

	due, _ = f.service.RetestDue(ctx, f.patient.ID)
	if due {
		t.Error("Patient with a fresh snapshot must not be due")
	}
}

func TestSendRetestReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// One patient due (no data), one fresh
	fresh := identity.NewUser("fresh@example.com", "Fresh", identity.RolePatient, "", "pw", time.Now())
	f.users.Create(ctx, fresh)
	f.service.SubmitSnapshot(ctx, fresh.ID, lowRiskInput(), "manual")

	sent, err := f.service.SendRetestReminders(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if sent != 1 {
		t.Errorf("Expected 1 reminder, got %d", sent)
	}

	notifications, _ := f.msgStore.NotificationsFor(ctx, f.patient.ID)
	if len(notifications) != 1 {
		t.Errorf("Expected 1 reminder notification for overdue patient, got %d", len(notifications))
	}

	freshNotes, _ := f.msgStore.NotificationsFor(ctx, fresh.ID)
	if len(freshNotes) != 0 {
		t.Errorf("Fresh patient must not be reminded, got %d", len(freshNotes))
	}
}

func TestCanView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if ok, _ := f.service.CanView(ctx, f.patient.ID, f.patient.ID); !ok {
		t.Error("Patients must see their own data")
	}
	if ok, _ := f.service.CanView(ctx, f.caregiver.ID, f.patient.ID); ok {
		t.Error("Unlinked caregiver must not see patient data")
	}

	f.service.ShareWith(ctx, f.patient.ID, f.caregiver.ID)

	if ok, _ := f.service.CanView(ctx, f.caregiver.ID, f.patient.ID); !ok {
		t.Error("Linked caregiver must see patient data")
	}
}

func TestImportedSnapshotsFlowThroughSamePipeline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.linkBoth(t)

	_, assessment, err := f.service.SubmitSnapshot(ctx, f.patient.ID, highRiskInput(), "his")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if assessment.Level != risk.LevelHigh {
		t.Fatalf("Expected High, got %s", assessment.Level)
	}

	inbox, _ := f.alerts.ForRecipient(ctx, f.caregiver.ID)
	if len(inbox) != 1 {
		t.Errorf("Imported data must trigger the same alert fanout, got %d alerts", len(inbox))
	}
}
