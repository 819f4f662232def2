package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Guest is the person a booking is held for. Guests are resolved by email on
// booking creation: a request with a known email reuses the existing record
// instead of creating a duplicate. Email is a lookup key, not a storage-level
// unique constraint.
type Guest struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GuestInput is the guest payload embedded in booking requests. Fields are
// full replacement values, not deltas.
type GuestInput struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
}

// Validate checks the guest payload for booking creation, where name and
// email are both required.
func (g *GuestInput) Validate() error {
	if strings.TrimSpace(g.FullName) == "" {
		return errRequired("guest.full_name")
	}
	if strings.TrimSpace(g.Email) == "" || !strings.Contains(g.Email, "@") {
		return validationError("guest.email must be a valid email address")
	}
	return nil
}
