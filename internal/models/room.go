package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Room represents a bookable hotel room. The nightly rate is stored in
// integer minor currency units; the derived dollar value is added at
// serialization time and is never authoritative.
type Room struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Number      string    `json:"number" db:"number"`
	RoomType    string    `json:"room_type" db:"room_type"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	Capacity    int       `json:"capacity" db:"capacity"`
	Description string    `json:"description" db:"description"`
	Amenities   []string  `json:"amenities" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// MarshalJSON adds the derived price_dollar field (price_cents / 100).
func (r Room) MarshalJSON() ([]byte, error) {
	type alias Room
	return json.Marshal(struct {
		alias
		PriceDollar float64 `json:"price_dollar"`
	}{
		alias:       alias(r),
		PriceDollar: float64(r.PriceCents) / 100.0,
	})
}

// RoomRequest is the payload for creating or replacing a room.
type RoomRequest struct {
	Number      string   `json:"number" binding:"required"`
	RoomType    string   `json:"room_type"`
	PriceCents  int64    `json:"price_cents"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
}

// Validate checks the room payload invariants.
func (r *RoomRequest) Validate() error {
	if strings.TrimSpace(r.Number) == "" {
		return errRequired("number")
	}
	if r.PriceCents < 0 {
		return validationError("price_cents must be >= 0")
	}
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	return nil
}

// AvailabilityQuery carries the parsed parameters of an availability search.
type AvailabilityQuery struct {
	CheckIn       time.Time
	CheckOut      time.Time
	MaxPriceCents *int64
	Amenities     []string
}
