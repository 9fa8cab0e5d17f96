package messaging

import (
	"context"
	"sync"

	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Store persists messages and notifications
type Store interface {
	SaveMessage(ctx context.Context, m *Message) error
	MessagesFor(ctx context.Context, userID types.ID) ([]*Message, error)
	MessagesSentBy(ctx context.Context, userID types.ID) ([]*Message, error)
	MarkMessageRead(ctx context.Context, id types.ID) (*Message, error)

	SaveNotification(ctx context.Context, n *Notification) error
	NotificationsFor(ctx context.Context, userID types.ID) ([]*Notification, error)
	MarkNotificationRead(ctx context.Context, id types.ID) (*Notification, error)
}

// MemoryStore is an in-memory Store for development and tests
type MemoryStore struct {
	mu            sync.RWMutex
	messages      map[types.ID]*Message
	byRecipient   map[types.ID][]*Message
	bySender      map[types.ID][]*Message
	notifications map[types.ID]*Notification
	byUser        map[types.ID][]*Notification
}

// NewMemoryStore creates an empty in-memory messaging store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages:      make(map[types.ID]*Message),
		byRecipient:   make(map[types.ID][]*Message),
		bySender:      make(map[types.ID][]*Message),
		notifications: make(map[types.ID]*Notification),
		byUser:        make(map[types.ID][]*Notification),
	}
}

// SaveMessage persists a message
func (s *MemoryStore) SaveMessage(ctx context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[m.ID] = m
	s.byRecipient[m.ToUserID] = append(s.byRecipient[m.ToUserID], m)
	s.bySender[m.FromUserID] = append(s.bySender[m.FromUserID], m)
	return nil
}

// MessagesFor returns messages received by a user, oldest first
func (s *MemoryStore) MessagesFor(ctx context.Context, userID types.ID) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.byRecipient[userID]
	out := make([]*Message, len(messages))
	copy(out, messages)
	return out, nil
}

// MessagesSentBy returns messages sent by a user, oldest first
func (s *MemoryStore) MessagesSentBy(ctx context.Context, userID types.ID) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.bySender[userID]
	out := make([]*Message, len(messages))
	copy(out, messages)
	return out, nil
}

// MarkMessageRead marks a message read
func (s *MemoryStore) MarkMessageRead(ctx context.Context, id types.ID) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, errors.NotFound("message", id.String())
	}
	m.IsRead = true
	return m, nil
}

// SaveNotification persists a notification
func (s *MemoryStore) SaveNotification(ctx context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[n.ID] = n
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n)
	return nil
}

// NotificationsFor returns a user's notifications, oldest first
func (s *MemoryStore) NotificationsFor(ctx context.Context, userID types.ID) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := s.byUser[userID]
	out := make([]*Notification, len(notifications))
	copy(out, notifications)
	return out, nil
}

// MarkNotificationRead marks a notification read
func (s *MemoryStore) MarkNotificationRead(ctx context.Context, id types.ID) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, errors.NotFound("notification", id.String())
	}
	n.IsRead = true
	return n, nil
}
