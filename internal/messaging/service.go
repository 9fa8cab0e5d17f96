package messaging

import (
	"context"
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

// Service implements messaging workflows: user-to-user messages and
// system notifications
type Service struct {
	store Store
	clock func() time.Time
}

// NewService creates a messaging service
func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// NewServiceWithClock creates a messaging service with an injected clock
func NewServiceWithClock(store Store, clock func() time.Time) *Service {
	return &Service{store: store, clock: clock}
}

// Send records a message from one user to another
func (s *Service) Send(ctx context.Context, from, to types.ID, subject, content string, msgType MessageType) (*Message, error) {
	if msgType == "" {
		msgType = MessageGeneral
	}

	m := &Message{
		ID:         types.NewID(),
		FromUserID: from,
		ToUserID:   to,
		Subject:    subject,
		Content:    content,
		Type:       msgType,
		SentAt:     s.clock().UTC(),
	}

	if err := s.store.SaveMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Inbox returns messages received by a user
func (s *Service) Inbox(ctx context.Context, userID types.ID) ([]*Message, error) {
	return s.store.MessagesFor(ctx, userID)
}

// Sent returns messages sent by a user
func (s *Service) Sent(ctx context.Context, userID types.ID) ([]*Message, error) {
	return s.store.MessagesSentBy(ctx, userID)
}

// MarkRead marks a message read. The flag never goes back.
func (s *Service) MarkRead(ctx context.Context, id types.ID) (*Message, error) {
	return s.store.MarkMessageRead(ctx, id)
}

// Notify records a system notification for a user
func (s *Service) Notify(ctx context.Context, userID types.ID, title, message string, nType NotificationType) (*Notification, error) {
	n := &Notification{
		ID:        types.NewID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      nType,
		CreatedAt: s.clock().UTC(),
	}

	if err := s.store.SaveNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Notifications returns a user's notifications
func (s *Service) Notifications(ctx context.Context, userID types.ID) ([]*Notification, error) {
	return s.store.NotificationsFor(ctx, userID)
}

// MarkNotificationRead marks a notification read
func (s *Service) MarkNotificationRead(ctx context.Context, id types.ID) (*Notification, error) {
	return s.store.MarkNotificationRead(ctx, id)
}

// UnreadCounts returns the number of unread messages and notifications
// for a user
func (s *Service) UnreadCounts(ctx context.Context, userID types.ID) (messages int, notifications int, err error) {
	inbox, err := s.store.MessagesFor(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	for _, m := range inbox {
		if !m.IsRead {
			messages++
		}
	}

	notes, err := s.store.NotificationsFor(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	for _, n := range notes {
		if !n.IsRead {
			notifications++
		}
	}
	return messages, notifications, nil
}
