package record

import (
	"context"
	"sync"

	"github.com/strokewatch/platform/internal/shared/types"
)

// Store holds patients' append-only snapshot histories. There is
// deliberately no update or delete operation: past snapshots are never
// rewritten.
type Store interface {
	// Append adds a snapshot to the owning patient's history
	Append(ctx context.Context, snapshot *Snapshot) error

	// ForPatient returns a patient's snapshots in insertion order
	ForPatient(ctx context.Context, patientID types.ID) ([]*Snapshot, error)

	// Latest returns the most recent snapshot, or nil if none exist
	Latest(ctx context.Context, patientID types.ID) (*Snapshot, error)

	// Count returns the number of snapshots for a patient
	Count(ctx context.Context, patientID types.ID) (int, error)
}

// MemoryStore is an in-memory Store for development and tests
type MemoryStore struct {
	mu        sync.RWMutex
	byPatient map[types.ID][]*Snapshot
}

// NewMemoryStore creates an empty in-memory snapshot store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byPatient: make(map[types.ID][]*Snapshot)}
}

// Append adds a snapshot to the owning patient's history
func (s *MemoryStore) Append(ctx context.Context, snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPatient[snapshot.PatientID] = append(s.byPatient[snapshot.PatientID], snapshot)
	return nil
}

// ForPatient returns a patient's snapshots in insertion order
func (s *MemoryStore) ForPatient(ctx context.Context, patientID types.ID) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byPatient[patientID]
	out := make([]*Snapshot, len(history))
	copy(out, history)
	return out, nil
}

// Latest returns the most recent snapshot, or nil if none exist
func (s *MemoryStore) Latest(ctx context.Context, patientID types.ID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byPatient[patientID]
	if len(history) == 0 {
		return nil, nil
	}
	return history[len(history)-1], nil
}

// Count returns the number of snapshots for a patient
func (s *MemoryStore) Count(ctx context.Context, patientID types.ID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPatient[patientID]), nil
}
