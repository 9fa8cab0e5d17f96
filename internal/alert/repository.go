package alert

import (
	"context"
	"sync"

	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Store persists alerts and serves each recipient's inbox
type Store interface {
	// Save persists new alerts
	Save(ctx context.Context, alerts ...*Alert) error

	// ForRecipient returns a recipient's alerts, newest last
	ForRecipient(ctx context.Context, recipientID types.ID) ([]*Alert, error)

	// Get returns one alert by ID
	Get(ctx context.Context, id types.ID) (*Alert, error)

	// Acknowledge marks an alert read and acknowledged
	Acknowledge(ctx context.Context, id types.ID) (*Alert, error)

	// UnreadCount returns the number of unread alerts for a recipient
	UnreadCount(ctx context.Context, recipientID types.ID) (int, error)
}

// MemoryStore is an in-memory Store for development and tests
type MemoryStore struct {
	mu          sync.RWMutex
	byID        map[types.ID]*Alert
	byRecipient map[types.ID][]*Alert
}

// NewMemoryStore creates an empty in-memory alert store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:        make(map[types.ID]*Alert),
		byRecipient: make(map[types.ID][]*Alert),
	}
}

// Save persists new alerts
func (s *MemoryStore) Save(ctx context.Context, alerts ...*Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range alerts {
		s.byID[a.ID] = a
		s.byRecipient[a.RecipientID] = append(s.byRecipient[a.RecipientID], a)
	}
	return nil
}

// ForRecipient returns a recipient's alerts, newest last
func (s *MemoryStore) ForRecipient(ctx context.Context, recipientID types.ID) ([]*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := s.byRecipient[recipientID]
	out := make([]*Alert, len(alerts))
	copy(out, alerts)
	return out, nil
}

// Get returns one alert by ID
func (s *MemoryStore) Get(ctx context.Context, id types.ID) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFound("alert", id.String())
	}
	return a, nil
}

// Acknowledge marks an alert read and acknowledged
func (s *MemoryStore) Acknowledge(ctx context.Context, id types.ID) (*Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFound("alert", id.String())
	}
	a.Acknowledge()
	return a, nil
}

// UnreadCount returns the number of unread alerts for a recipient
func (s *MemoryStore) UnreadCount(ctx context.Context, recipientID types.ID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, a := range s.byRecipient[recipientID] {
		if !a.IsRead {
			count++
		}
	}
	return count, nil
}
