package risk

import (
	"context"
	"sync"

	"github.com/strokewatch/platform/internal/shared/types"
)

// History holds patients' append-only assessment histories
type History interface {
	// Append adds an assessment to the patient's history
	Append(ctx context.Context, assessment *Assessment) error

	// ForPatient returns a patient's assessments in insertion order
	ForPatient(ctx context.Context, patientID types.ID) ([]*Assessment, error)

	// Latest returns the most recent assessment, or nil if none exist
	Latest(ctx context.Context, patientID types.ID) (*Assessment, error)

	// Count returns the number of assessments for a patient
	Count(ctx context.Context, patientID types.ID) (int, error)
}

// MemoryHistory is an in-memory History for development and tests
type MemoryHistory struct {
	mu        sync.RWMutex
	byPatient map[types.ID][]*Assessment
}

// NewMemoryHistory creates an empty in-memory assessment history
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{byPatient: make(map[types.ID][]*Assessment)}
}

// Append adds an assessment to the patient's history
func (h *MemoryHistory) Append(ctx context.Context, assessment *Assessment) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byPatient[assessment.PatientID] = append(h.byPatient[assessment.PatientID], assessment)
	return nil
}

// ForPatient returns a patient's assessments in insertion order
func (h *MemoryHistory) ForPatient(ctx context.Context, patientID types.ID) ([]*Assessment, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	history := h.byPatient[patientID]
	out := make([]*Assessment, len(history))
	copy(out, history)
	return out, nil
}

// Latest returns the most recent assessment, or nil if none exist
func (h *MemoryHistory) Latest(ctx context.Context, patientID types.ID) (*Assessment, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	history := h.byPatient[patientID]
	if len(history) == 0 {
		return nil, nil
	}
	return history[len(history)-1], nil
}

// Count returns the number of assessments for a patient
func (h *MemoryHistory) Count(ctx context.Context, patientID types.ID) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byPatient[patientID]), nil
}
