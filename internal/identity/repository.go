package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Repository persists user accounts
type Repository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id types.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
	List(ctx context.Context) ([]*User, error)
}

// MemoryRepository is an in-memory Repository for development and tests
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[types.ID]*User
	byEmail map[string]*User
	order   []types.ID
}

// NewMemoryRepository creates an empty in-memory user repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[types.ID]*User),
		byEmail: make(map[string]*User),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create persists a new user. Emails are unique case-insensitively.
func (r *MemoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(u.Email)
	if _, exists := r.byEmail[key]; exists {
		return errors.Conflict("email already registered")
	}

	r.byID[u.ID] = u
	r.byEmail[key] = u
	r.order = append(r.order, u.ID)
	return nil
}

// Get returns a user by ID
func (r *MemoryRepository) Get(ctx context.Context, id types.ID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("user", id.String())
	}
	return u, nil
}

// GetByEmail returns a user by email
func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, errors.NotFound("user", email)
	}
	return u, nil
}

// ListByRole returns users with the given role tag, in creation order
func (r *MemoryRepository) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*User
	for _, id := range r.order {
		if u := r.byID[id]; u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

// List returns all users in creation order
func (r *MemoryRepository) List(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.byID[id])
	}
	return users, nil
}
