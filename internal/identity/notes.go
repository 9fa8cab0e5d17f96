package identity

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// NoteType classifies a clinical note
type NoteType string

const (
	NoteConsultation NoteType = "consultation"
	NotePrescription NoteType = "prescription"
)

// ClinicalNote is a doctor's record about a patient. Notes are
// append-only.
type ClinicalNote struct {
	ID        types.ID  `json:"id"`
	DoctorID  types.ID  `json:"doctor_id"`
	PatientID types.ID  `json:"patient_id"`
	Type      NoteType  `json:"note_type"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"timestamp"`
}

// NoteStore persists clinical notes
type NoteStore interface {
	Append(ctx context.Context, n *ClinicalNote) error
	ForPatient(ctx context.Context, doctorID, patientID types.ID) ([]*ClinicalNote, error)
}

// MemoryNoteStore is an in-memory NoteStore for development and tests
type MemoryNoteStore struct {
	mu    sync.RWMutex
	notes []*ClinicalNote
}

// NewMemoryNoteStore creates an empty in-memory note store
func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{}
}

// Append persists a note
func (s *MemoryNoteStore) Append(ctx context.Context, n *ClinicalNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = append(s.notes, n)
	return nil
}

// ForPatient returns one doctor's notes about one patient, oldest first
func (s *MemoryNoteStore) ForPatient(ctx context.Context, doctorID, patientID types.ID) ([]*ClinicalNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ClinicalNote
	for _, n := range s.notes {
		if n.DoctorID == doctorID && n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, nil
}

// PostgresNoteStore implements NoteStore using PostgreSQL
type PostgresNoteStore struct {
	pool *pgxpool.Pool
}

// NewPostgresNoteStore creates a new PostgreSQL-backed note store
func NewPostgresNoteStore(pool *pgxpool.Pool) *PostgresNoteStore {
	return &PostgresNoteStore{pool: pool}
}

// Append persists a note
func (s *PostgresNoteStore) Append(ctx context.Context, n *ClinicalNote) error {
	query := `
		INSERT INTO care.clinical_notes (id, doctor_id, patient_id, note_type, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		n.ID, n.DoctorID, n.PatientID, n.Type, n.Body, n.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save clinical note")
	}
	return nil
}

// ForPatient returns one doctor's notes about one patient, oldest first
func (s *PostgresNoteStore) ForPatient(ctx context.Context, doctorID, patientID types.ID) ([]*ClinicalNote, error) {
	query := `
		SELECT id, doctor_id, patient_id, note_type, body, created_at
		FROM care.clinical_notes
		WHERE doctor_id = $1 AND patient_id = $2
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, doctorID, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clinical notes")
	}
	defer rows.Close()

	var notes []*ClinicalNote
	for rows.Next() {
		n := &ClinicalNote{}
		if err := rows.Scan(&n.ID, &n.DoctorID, &n.PatientID, &n.Type, &n.Body, &n.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan clinical note")
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}
