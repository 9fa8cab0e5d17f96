package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/strokewatch/platform/internal/alert"
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
	policy   *risk.Policy
	registry *sharing.MemoryRegistry
	alerts   *alert.MemoryStore
}

func newFixture() *fixture {
	f := &fixture{
		users:    identity.NewMemoryRepository(),
		records:  record.NewMemoryStore(),
		history:  risk.NewMemoryHistory(),
		registry: sharing.NewMemoryRegistry(),
		alerts:   alert.NewMemoryStore(),
	}
	f.policy = risk.NewPolicy(config.PolicyConfig{
		HighRiskThreshold:   70,
		MediumRiskThreshold: 40,
		RetestIntervalDays:  90,
	})
	f.service = NewService(
		f.users, f.records, f.history, f.policy,
		f.registry, f.alerts, messaging.NewService(messaging.NewMemoryStore()),
	)
	return f
}

func (f *fixture) addPatient(t *testing.T, email string, level risk.Level) *identity.User {
	t.Helper()
	ctx := context.Background()

	u := identity.NewUser(email, email, identity.RolePatient, "", "pw", time.Now())
	if err := f.users.Create(ctx, u); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if level == risk.LevelUnknown {
		return u
	}

	var score float64
	switch level {
	case risk.LevelHigh:
		score = 85
	case risk.LevelMedium:
		score = 55
	default:
		score = 10
	}
	f.history.Append(ctx, &risk.Assessment{
		ID:         types.NewID(),
		PatientID:  u.ID,
		SnapshotID: types.NewID(),
		AssessedAt: time.Now(),
		Score:      score,
		Level:      level,
	})
	return u
}

func TestDoctorPanelOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	doctor := identity.NewUser("dr@example.com", "Dr", identity.RoleDoctor, "neurology", "pw", time.Now())
	f.users.Create(ctx, doctor)

	// Linked in mixed order; the panel must come back High, Medium,
	// Low, then unassessed.
	low := f.addPatient(t, "low@example.com", risk.LevelLow)
	high := f.addPatient(t, "high@example.com", risk.LevelHigh)
	unknown := f.addPatient(t, "none@example.com", risk.LevelUnknown)
	medium := f.addPatient(t, "medium@example.com", risk.LevelMedium)

	for _, p := range []*identity.User{low, high, unknown, medium} {
		f.registry.Link(ctx, p.ID, doctor.ID, sharing.RoleDoctor)
	}

	panel, err := f.service.DoctorPanel(ctx, doctor.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(panel) != 4 {
		t.Fatalf("Expected 4 patients, got %d", len(panel))
	}

	expected := []types.ID{high.ID, medium.ID, low.ID, unknown.ID}
	for i, id := range expected {
		if panel[i].PatientID != id {
			t.Errorf("Position %d: wrong patient", i)
		}
	}
	if panel[3].Risk != nil {
		t.Error("Unassessed patient must have no risk summary")
	}
}

func TestDoctorPanelStableWithinBand(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	doctor := identity.NewUser("dr@example.com", "Dr", identity.RoleDoctor, "", "pw", time.Now())
	f.users.Create(ctx, doctor)

	// Three high-risk patients keep their link order.
	var linked []types.ID
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		p := f.addPatient(t, email, risk.LevelHigh)
		f.registry.Link(ctx, p.ID, doctor.ID, sharing.RoleDoctor)
		linked = append(linked, p.ID)
	}

	panel, _ := f.service.DoctorPanel(ctx, doctor.ID)
	for i, id := range linked {
		if panel[i].PatientID != id {
			t.Errorf("Position %d: ties must keep link order", i)
		}
	}
}

func TestPersonalReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	patient := f.addPatient(t, "ana@example.com", risk.LevelMedium)

	g1, g2 := 100.0, 150.0
	b := 35.0
	f.records.Append(ctx, &record.Snapshot{
		ID: types.NewID(), PatientID: patient.ID,
		RecordedAt: time.Now().AddDate(0, 0, -10), AvgGlucoseLevel: &g1,
	})
	f.records.Append(ctx, &record.Snapshot{
		ID: types.NewID(), PatientID: patient.ID,
		RecordedAt: time.Now(), AvgGlucoseLevel: &g2, BMI: &b, Hypertension: true,
	})

	report, err := f.service.Report(ctx, patient.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.Risk == nil || report.Risk.Level != risk.LevelMedium {
		t.Error("Report must carry the latest assessment")
	}
	if report.Risk.Color != "yellow" {
		t.Errorf("Expected color yellow, got %s", report.Risk.Color)
	}
	if report.GlucoseTrend.Trend != "increasing" {
		t.Errorf("Expected increasing glucose trend, got %s", report.GlucoseTrend.Trend)
	}
	if report.SnapshotCount != 2 {
		t.Errorf("Expected 2 snapshots, got %d", report.SnapshotCount)
	}
	if report.RetestDue {
		t.Error("Fresh data must not be due for retest")
	}
	if len(report.AbnormalIndicators) == 0 {
		t.Error("Expected abnormal indicators from the latest snapshot")
	}
}

func TestPersonalReportEmptyHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	patient := f.addPatient(t, "new@example.com", risk.LevelUnknown)

	report, err := f.service.Report(ctx, patient.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Risk != nil {
		t.Error("Expected no risk summary without assessments")
	}
	if report.GlucoseTrend.Trend != "no_data" {
		t.Errorf("Expected no_data, got %s", report.GlucoseTrend.Trend)
	}
	if !report.RetestDue {
		t.Error("Patient with no data must be due for retest")
	}
}

func TestCaregiverDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	caregiver := identity.NewUser("luka@example.com", "Luka", identity.RoleCaregiver, "", "pw", time.Now())
	f.users.Create(ctx, caregiver)

	patient := f.addPatient(t, "ana@example.com", risk.LevelHigh)
	f.registry.Link(ctx, patient.ID, caregiver.ID, sharing.RoleCaregiver)

	f.alerts.Save(ctx, &alert.Alert{
		ID: types.NewID(), PatientID: patient.ID, RecipientID: caregiver.ID,
		Type: alert.TypeHighRisk, Severity: alert.SeverityCritical,
		Message: "test", CreatedAt: time.Now(),
	})

	dash, err := f.service.ForCaregiver(ctx, caregiver.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(dash.Patients) != 1 {
		t.Fatalf("Expected 1 monitored patient, got %d", len(dash.Patients))
	}
	if dash.Patients[0].Name != "ana@example.com" {
		t.Errorf("Expected patient name, got '%s'", dash.Patients[0].Name)
	}
	if dash.UnreadAlerts != 1 {
		t.Errorf("Expected 1 unread alert, got %d", dash.UnreadAlerts)
	}
}

func TestAdminDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.addPatient(t, "p1@example.com", risk.LevelUnknown)
	f.addPatient(t, "p2@example.com", risk.LevelUnknown)
	f.users.Create(ctx, identity.NewUser("dr@example.com", "Dr", identity.RoleDoctor, "", "pw", time.Now()))

	dash, err := f.service.ForAdmin(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if dash.UsersByRole[identity.RolePatient] != 2 {
		t.Errorf("Expected 2 patients, got %d", dash.UsersByRole[identity.RolePatient])
	}
	if dash.UsersByRole[identity.RoleDoctor] != 1 {
		t.Errorf("Expected 1 doctor, got %d", dash.UsersByRole[identity.RoleDoctor])
	}
	if dash.HighRiskThreshold != 70 {
		t.Errorf("Expected high threshold 70, got %v", dash.HighRiskThreshold)
	}
	if dash.RetestIntervalDays != 90 {
		t.Errorf("Expected retest interval 90, got %d", dash.RetestIntervalDays)
	}
}
