package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

// Role tags a user with exactly one of the platform roles. Behavior
// differences between roles live in the services that check the tag,
// not in per-role user types.
type Role string

const (
	RolePatient       Role = "patient"
	RoleCaregiver     Role = "caregiver"
	RoleDoctor        Role = "doctor"
	RoleAdministrator Role = "administrator"
)

// Valid reports whether the role is one of the known tags
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleCaregiver, RoleDoctor, RoleAdministrator:
		return true
	}
	return false
}

// User is the shared identity record. Every account carries the same
// fields; Specialty is only meaningful when Role is doctor.
type User struct {
	ID           types.ID  `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Specialty    string    `json:"specialty,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// HashPassword returns the hex SHA-256 digest of a password
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckPassword reports whether a password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return u.PasswordHash == HashPassword(password)
}

// NewUser creates a user account with a hashed password
func NewUser(email, name string, role Role, specialty, password string, now time.Time) *User {
	return &User{
		ID:           types.NewID(),
		Email:        email,
		Name:         name,
		Role:         role,
		Specialty:    specialty,
		PasswordHash: HashPassword(password),
		CreatedAt:    now.UTC(),
	}
}
