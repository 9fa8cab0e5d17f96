package messaging

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

// NewPostgresStore creates a new PostgreSQL-backed messaging store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const messageColumns = `id, from_user_id, to_user_id, subject, content, message_type, sent_at, is_read`

// SaveMessage persists a message
func (s *PostgresStore) SaveMessage(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO care.messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		m.ID, m.FromUserID, m.ToUserID, m.Subject, m.Content,
		m.Type, m.SentAt, m.IsRead,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save message")
	}
	return nil
}

// MessagesFor returns messages received by a user, oldest first
func (s *PostgresStore) MessagesFor(ctx context.Context, userID types.ID) ([]*Message, error) {
	return s.queryMessages(ctx, `to_user_id`, userID)
}

// MessagesSentBy returns messages sent by a user, oldest first
func (s *PostgresStore) MessagesSentBy(ctx context.Context, userID types.ID) ([]*Message, error) {
	return s.queryMessages(ctx, `from_user_id`, userID)
}

func (s *PostgresStore) queryMessages(ctx context.Context, column string, userID types.ID) ([]*Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM care.messages
		WHERE ` + column + ` = $1
		ORDER BY sent_at, id`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// MarkMessageRead marks a message read
func (s *PostgresStore) MarkMessageRead(ctx context.Context, id types.ID) (*Message, error) {
	query := `
		UPDATE care.messages
		SET is_read = TRUE
		WHERE id = $1
		RETURNING ` + messageColumns

	m, err := scanMessage(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, errors.NotFound("message", id.String())
	}
	return m, nil
}

const notificationColumns = `id, user_id, title, message, notification_type, created_at, is_read`

// SaveNotification persists a notification
func (s *PostgresStore) SaveNotification(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO care.notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.CreatedAt, n.IsRead,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save notification")
	}
	return nil
}

// NotificationsFor returns a user's notifications, oldest first
func (s *PostgresStore) NotificationsFor(ctx context.Context, userID types.ID) ([]*Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM care.notifications
		WHERE user_id = $1
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a notification read
func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id types.ID) (*Notification, error) {
	query := `
		UPDATE care.notifications
		SET is_read = TRUE
		WHERE id = $1
		RETURNING ` + notificationColumns

	n, err := scanNotification(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, errors.NotFound("notification", id.String())
	}
	return n, nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	m := &Message{}
	err := row.Scan(
		&m.ID, &m.FromUserID, &m.ToUserID, &m.Subject, &m.Content,
		&m.Type, &m.SentAt, &m.IsRead,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan message")
	}
	return m, nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	n := &Notification{}
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.CreatedAt, &n.IsRead,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan notification")
	}
	return n, nil
}
