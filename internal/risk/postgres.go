package risk

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// PostgresHistory implements History using PostgreSQL
type PostgresHistory struct {
	pool *pgxpool.Pool
}

// NewPostgresHistory creates a new PostgreSQL-backed assessment history
func NewPostgresHistory(pool *pgxpool.Pool) *PostgresHistory {
	return &PostgresHistory{pool: pool}
}

// Append adds an assessment to the patient's history
func (h *PostgresHistory) Append(ctx context.Context, assessment *Assessment) error {
	query := `
		INSERT INTO care.assessments (
			id, patient_id, snapshot_id, assessed_at, score, level, recommendations
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := h.pool.Exec(ctx, query,
		assessment.ID, assessment.PatientID, assessment.SnapshotID,
		assessment.AssessedAt, assessment.Score, assessment.Level,
		assessment.Recommendations,
	)
	if err != nil {
		return errors.Wrap(err, "failed to append assessment")
	}

	return nil
}

const assessmentColumns = `id, patient_id, snapshot_id, assessed_at, score, level, recommendations`

// ForPatient returns a patient's assessments in insertion order
func (h *PostgresHistory) ForPatient(ctx context.Context, patientID types.ID) ([]*Assessment, error) {
	query := `SELECT ` + assessmentColumns + `
		FROM care.assessments
		WHERE patient_id = $1
		ORDER BY assessed_at, id`

	rows, err := h.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list assessments")
	}
	defer rows.Close()

	var assessments []*Assessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}

	return assessments, rows.Err()
}

// Latest returns the most recent assessment, or nil if none exist
func (h *PostgresHistory) Latest(ctx context.Context, patientID types.ID) (*Assessment, error) {
	query := `SELECT ` + assessmentColumns + `
		FROM care.assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC, id DESC
		LIMIT 1`

	rows, err := h.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load latest assessment")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanAssessment(rows)
}

// Count returns the number of assessments for a patient
func (h *PostgresHistory) Count(ctx context.Context, patientID types.ID) (int, error) {
	var count int
	err := h.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM care.assessments WHERE patient_id = $1`, patientID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count assessments")
	}
	return count, nil
}

func scanAssessment(row pgx.Row) (*Assessment, error) {
	assessment := &Assessment{}
	err := row.Scan(
		&assessment.ID, &assessment.PatientID, &assessment.SnapshotID,
		&assessment.AssessedAt, &assessment.Score, &assessment.Level,
		&assessment.Recommendations,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan assessment")
	}
	return assessment, nil
}
