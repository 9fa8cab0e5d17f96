package identity

import (
	"context"
	"testing"
	"time"
)

func TestRoleValid(t *testing.T) {
	valid := []Role{RolePatient, RoleCaregiver, RoleDoctor, RoleAdministrator}
	for _, r := range valid {
		if !r.Valid() {
			t.Errorf("Expected %s to be valid", r)
		}
	}
	for _, r := range []Role{"", "nurse", "Patient"} {
		if r.Valid() {
			t.Errorf("Expected '%s' to be invalid", r)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	u := NewUser("ana@example.com", "Ana", RolePatient, "", "s3cret", time.Now())

	if u.PasswordHash == "s3cret" {
		t.Error("Password must not be stored in clear")
	}
	if !u.CheckPassword("s3cret") {
		t.Error("Correct password must verify")
	}
	if u.CheckPassword("wrong") {
		t.Error("Wrong password must not verify")
	}
}

func TestRepositoryEmailUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first := NewUser("ana@example.com", "Ana", RolePatient, "", "pw", time.Now())
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Same email, different case
	dup := NewUser("Ana@Example.com", "Other", RoleDoctor, "", "pw", time.Now())
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("Expected conflict for duplicate email")
	}
}

func TestRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u := NewUser("marko@example.com", "Marko", RoleDoctor, "neurology", "pw", time.Now())
	repo.Create(ctx, u)

	byID, err := repo.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if byID.Specialty != "neurology" {
		t.Errorf("Expected specialty 'neurology', got '%s'", byID.Specialty)
	}

	byEmail, err := repo.GetByEmail(ctx, "MARKO@example.com")
	if err != nil {
		t.Fatalf("Email lookup must be case-insensitive, got %v", err)
	}
	if byEmail.ID != u.ID {
		t.Error("Email lookup returned wrong user")
	}

	if _, err := repo.GetByEmail(ctx, "missing@example.com"); err == nil {
		t.Error("Expected not found for unknown email")
	}
}

func TestRepositoryListByRole(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	p1 := NewUser("p1@example.com", "P1", RolePatient, "", "pw", time.Now())
	d1 := NewUser("d1@example.com", "D1", RoleDoctor, "cardiology", "pw", time.Now())
	p2 := NewUser("p2@example.com", "P2", RolePatient, "", "pw", time.Now())
	for _, u := range []*User{p1, d1, p2} {
		repo.Create(ctx, u)
	}

	patients, _ := repo.ListByRole(ctx, RolePatient)
	if len(patients) != 2 {
		t.Fatalf("Expected 2 patients, got %d", len(patients))
	}
	if patients[0].ID != p1.ID || patients[1].ID != p2.ID {
		t.Error("ListByRole must keep creation order")
	}

	all, _ := repo.List(ctx)
	if len(all) != 3 {
		t.Errorf("Expected 3 users, got %d", len(all))
	}
}

func TestClinicalNotesScopedToDoctorAndPatient(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNoteStore()

	doctorA := NewUser("a@example.com", "A", RoleDoctor, "", "pw", time.Now())
	doctorB := NewUser("b@example.com", "B", RoleDoctor, "", "pw", time.Now())
	patient := NewUser("p@example.com", "P", RolePatient, "", "pw", time.Now())

	store.Append(ctx, &ClinicalNote{DoctorID: doctorA.ID, PatientID: patient.ID, Type: NoteConsultation, Body: "first visit"})
	store.Append(ctx, &ClinicalNote{DoctorID: doctorB.ID, PatientID: patient.ID, Type: NotePrescription, Body: "statins"})

	notesA, _ := store.ForPatient(ctx, doctorA.ID, patient.ID)
	if len(notesA) != 1 {
		t.Fatalf("Expected 1 note for doctor A, got %d", len(notesA))
	}
	if notesA[0].Body != "first visit" {
		t.Errorf("Unexpected note body: %s", notesA[0].Body)
	}
}
