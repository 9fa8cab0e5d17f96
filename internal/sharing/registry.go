package sharing

import (
	"context"
	"sync"
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

// Role of a sharing recipient
type Role string

const (
	RoleCaregiver Role = "caregiver"
	RoleDoctor    Role = "doctor"
)

// Link is the authorization relation letting a caregiver or doctor view
// a patient's data and receive alerts. There is no unlink operation:
// revoking a share does not exist in the product yet.
type Link struct {
	PatientID   types.ID  `json:"patient_id"`
	RecipientID types.ID  `json:"recipient_id"`
	Role        Role      `json:"recipient_role"`
	LinkedAt    time.Time `json:"linked_at"`
}

// Registry maintains the bidirectional link sets between patients and
// their caregivers/doctors. Both sides of a link are always updated in
// one operation; callers never observe a half-applied link.
type Registry interface {
	// Link records a share. Re-linking the same pair is a no-op; the
	// returned bool reports whether a new link was created.
	Link(ctx context.Context, patientID, recipientID types.ID, role Role) (bool, error)

	// ForPatient returns the patient's outbound links
	ForPatient(ctx context.Context, patientID types.ID) ([]Link, error)

	// ForRecipient returns the recipient's inbound links
	ForRecipient(ctx context.Context, recipientID types.ID) ([]Link, error)
}

// MemoryRegistry is an in-memory Registry. Outbound and inbound views
// are kept under one lock so they can never diverge.
type MemoryRegistry struct {
	mu       sync.RWMutex
	outbound map[types.ID][]Link // patient -> links
	inbound  map[types.ID][]Link // recipient -> links
	clock    func() time.Time
}

// NewMemoryRegistry creates an empty in-memory sharing registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		outbound: make(map[types.ID][]Link),
		inbound:  make(map[types.ID][]Link),
		clock:    time.Now,
	}
}

// Link records a share between a patient and a recipient
func (r *MemoryRegistry) Link(ctx context.Context, patientID, recipientID types.ID, role Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, link := range r.outbound[patientID] {
		if link.RecipientID == recipientID {
			return false, nil
		}
	}

	link := Link{
		PatientID:   patientID,
		RecipientID: recipientID,
		Role:        role,
		LinkedAt:    r.clock(),
	}
	r.outbound[patientID] = append(r.outbound[patientID], link)
	r.inbound[recipientID] = append(r.inbound[recipientID], link)
	return true, nil
}

// ForPatient returns the patient's outbound links
func (r *MemoryRegistry) ForPatient(ctx context.Context, patientID types.ID) ([]Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := r.outbound[patientID]
	out := make([]Link, len(links))
	copy(out, links)
	return out, nil
}

// ForRecipient returns the recipient's inbound links
func (r *MemoryRegistry) ForRecipient(ctx context.Context, recipientID types.ID) ([]Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := r.inbound[recipientID]
	out := make([]Link, len(links))
	copy(out, links)
	return out, nil
}
