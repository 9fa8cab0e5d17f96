package record

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed snapshot store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Append adds a snapshot to the owning patient's history
func (s *PostgresStore) Append(ctx context.Context, snapshot *Snapshot) error {
	query := `
		INSERT INTO care.snapshots (
			id, patient_id, recorded_at, age, gender, hypertension,
			heart_disease, ever_married, work_type, residence_type,
			avg_glucose_level, bmi, smoking_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query,
		snapshot.ID, snapshot.PatientID, snapshot.RecordedAt,
		snapshot.Age, snapshot.Gender, snapshot.Hypertension,
		snapshot.HeartDisease, snapshot.Married, snapshot.WorkType,
		snapshot.ResidenceType, snapshot.AvgGlucoseLevel, snapshot.BMI,
		snapshot.SmokingStatus,
	)
	if err != nil {
		return errors.Wrap(err, "failed to append snapshot")
	}

	return nil
}

const snapshotColumns = `
	id, patient_id, recorded_at, age, gender, hypertension,
	heart_disease, ever_married, work_type, residence_type,
	avg_glucose_level, bmi, smoking_status`

// ForPatient returns a patient's snapshots in insertion order
func (s *PostgresStore) ForPatient(ctx context.Context, patientID types.ID) ([]*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM care.snapshots
		WHERE patient_id = $1
		ORDER BY recorded_at, id`

	rows, err := s.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// Latest returns the most recent snapshot, or nil if none exist
func (s *PostgresStore) Latest(ctx context.Context, patientID types.ID) (*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM care.snapshots
		WHERE patient_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	rows, err := s.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load latest snapshot")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanSnapshot(rows)
}

// Count returns the number of snapshots for a patient
func (s *PostgresStore) Count(ctx context.Context, patientID types.ID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM care.snapshots WHERE patient_id = $1`, patientID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count snapshots")
	}
	return count, nil
}

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	snapshot := &Snapshot{}
	err := row.Scan(
		&snapshot.ID, &snapshot.PatientID, &snapshot.RecordedAt,
		&snapshot.Age, &snapshot.Gender, &snapshot.Hypertension,
		&snapshot.HeartDisease, &snapshot.Married, &snapshot.WorkType,
		&snapshot.ResidenceType, &snapshot.AvgGlucoseLevel, &snapshot.BMI,
		&snapshot.SmokingStatus,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan snapshot")
	}
	return snapshot, nil
}
