package alert

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

// NewPostgresStore creates a new PostgreSQL-backed alert store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save persists new alerts
func (s *PostgresStore) Save(ctx context.Context, alerts ...*Alert) error {
	query := `
		INSERT INTO care.alerts (
			id, patient_id, recipient_id, alert_type, severity, message,
			created_at, is_read, is_acknowledged
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, a := range alerts {
		_, err := s.pool.Exec(ctx, query,
			a.ID, a.PatientID, a.RecipientID, a.Type, a.Severity,
			a.Message, a.CreatedAt, a.IsRead, a.IsAcknowledged,
		)
		if err != nil {
			return errors.Wrap(err, "failed to save alert")
		}
	}
	return nil
}

const alertColumns = `id, patient_id, recipient_id, alert_type, severity, message, created_at, is_read, is_acknowledged`

// ForRecipient returns a recipient's alerts, newest last
func (s *PostgresStore) ForRecipient(ctx context.Context, recipientID types.ID) ([]*Alert, error) {
	query := `SELECT ` + alertColumns + `
		FROM care.alerts
		WHERE recipient_id = $1
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list alerts")
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// Get returns one alert by ID
func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM care.alerts WHERE id = $1`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get alert")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to get alert")
		}
		return nil, errors.NotFound("alert", id.String())
	}
	return scanAlert(rows)
}

// Acknowledge marks an alert read and acknowledged
func (s *PostgresStore) Acknowledge(ctx context.Context, id types.ID) (*Alert, error) {
	query := `
		UPDATE care.alerts
		SET is_read = TRUE, is_acknowledged = TRUE
		WHERE id = $1
		RETURNING ` + alertColumns

	row := s.pool.QueryRow(ctx, query, id)
	a, err := scanAlert(row)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Err == errors.ErrNotFound {
			return nil, err
		}
		return nil, errors.NotFound("alert", id.String())
	}
	return a, nil
}

// UnreadCount returns the number of unread alerts for a recipient
func (s *PostgresStore) UnreadCount(ctx context.Context, recipientID types.ID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM care.alerts WHERE recipient_id = $1 AND NOT is_read`,
		recipientID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count unread alerts")
	}
	return count, nil
}

func scanAlert(row pgx.Row) (*Alert, error) {
	a := &Alert{}
	err := row.Scan(
		&a.ID, &a.PatientID, &a.RecipientID, &a.Type, &a.Severity,
		&a.Message, &a.CreatedAt, &a.IsRead, &a.IsAcknowledged,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan alert")
	}
	return a, nil
}
