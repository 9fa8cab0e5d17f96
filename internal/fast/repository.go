package fast

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Store holds patients' append-only FAST screen histories
type Store interface {
	// Append adds a result to the patient's history
	Append(ctx context.Context, result *Result) error

	// ForPatient returns a patient's results in insertion order
	ForPatient(ctx context.Context, patientID types.ID) ([]*Result, error)
}

// MemoryStore is an in-memory Store for development and tests
type MemoryStore struct {
	mu        sync.RWMutex
	byPatient map[types.ID][]*Result
}

// NewMemoryStore creates an empty in-memory FAST result store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byPatient: make(map[types.ID][]*Result)}
}

// Append adds a result to the patient's history
func (s *MemoryStore) Append(ctx context.Context, result *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPatient[result.PatientID] = append(s.byPatient[result.PatientID], result)
	return nil
}

// ForPatient returns a patient's results in insertion order
func (s *MemoryStore) ForPatient(ctx context.Context, patientID types.ID) ([]*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byPatient[patientID]
	out := make([]*Result, len(history))
	copy(out, history)
	return out, nil
}

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed FAST result store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Append adds a result to the patient's history
func (s *PostgresStore) Append(ctx context.Context, result *Result) error {
	query := `
		INSERT INTO care.fast_results (
			id, patient_id, performed_at, face_asymmetry, arm_weakness,
			speech_difficulty, is_emergency
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		result.ID, result.PatientID, result.PerformedAt,
		result.FaceAsymmetry, result.ArmWeakness, result.SpeechDifficulty,
		result.IsEmergency,
	)
	if err != nil {
		return errors.Wrap(err, "failed to append FAST result")
	}

	return nil
}

// ForPatient returns a patient's results in insertion order
func (s *PostgresStore) ForPatient(ctx context.Context, patientID types.ID) ([]*Result, error) {
	query := `
		SELECT id, patient_id, performed_at, face_asymmetry, arm_weakness,
			speech_difficulty, is_emergency
		FROM care.fast_results
		WHERE patient_id = $1
		ORDER BY performed_at, id`

	rows, err := s.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list FAST results")
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		result := &Result{}
		err := rows.Scan(
			&result.ID, &result.PatientID, &result.PerformedAt,
			&result.FaceAsymmetry, &result.ArmWeakness,
			&result.SpeechDifficulty, &result.IsEmergency,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan FAST result")
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
