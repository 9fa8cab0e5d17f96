package sharing

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// PostgresRegistry implements Registry using PostgreSQL. A single row
// per link serves both the outbound and inbound views, which makes the
// dual-sided update atomic by construction.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistry creates a new PostgreSQL-backed sharing registry
func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

// Link records a share between a patient and a recipient
func (r *PostgresRegistry) Link(ctx context.Context, patientID, recipientID types.ID, role Role) (bool, error) {
	query := `
		INSERT INTO care.sharing_links (patient_id, recipient_id, role, linked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (patient_id, recipient_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, patientID, recipientID, role, time.Now())
	if err != nil {
		return false, errors.Wrap(err, "failed to create sharing link")
	}

	return tag.RowsAffected() > 0, nil
}

// ForPatient returns the patient's outbound links
func (r *PostgresRegistry) ForPatient(ctx context.Context, patientID types.ID) ([]Link, error) {
	query := `
		SELECT patient_id, recipient_id, role, linked_at
		FROM care.sharing_links
		WHERE patient_id = $1
		ORDER BY linked_at`

	return r.queryLinks(ctx, query, patientID)
}

// ForRecipient returns the recipient's inbound links
func (r *PostgresRegistry) ForRecipient(ctx context.Context, recipientID types.ID) ([]Link, error) {
	query := `
		SELECT patient_id, recipient_id, role, linked_at
		FROM care.sharing_links
		WHERE recipient_id = $1
		ORDER BY linked_at`

	return r.queryLinks(ctx, query, recipientID)
}

func (r *PostgresRegistry) queryLinks(ctx context.Context, query string, id types.ID) ([]Link, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sharing links")
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.PatientID, &link.RecipientID, &link.Role, &link.LinkedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan sharing link")
		}
		links = append(links, link)
	}

	return links, rows.Err()
}
