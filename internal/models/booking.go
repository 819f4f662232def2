package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking.
// Matches PostgreSQL ENUM: booking_status
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"   // Created, awaiting payment confirmation
	BookingStatusConfirmed BookingStatus = "CONFIRMED" // Payment succeeded
	BookingStatusCancelled BookingStatus = "CANCELLED" // Terminal; never blocks the room
)

// IsTerminal reports whether no further transitions are allowed. Only
// PENDING and CONFIRMED bookings block a room; CANCELLED never conflicts.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled
}

// Booking is a reservation of one room for a half-open date range
// [check_in, check_out). total_cents is derived: nights x room nightly rate.
type Booking struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	ReferenceCode string        `json:"reference_code" db:"reference_code"`
	RoomID        uuid.UUID     `json:"room_id" db:"room_id"`
	GuestID       uuid.UUID     `json:"guest_id" db:"guest_id"`
	CheckIn       time.Time     `json:"-" db:"check_in"`
	CheckOut      time.Time     `json:"-" db:"check_out"`
	TotalCents    int64         `json:"total_cents" db:"total_cents"`
	Status        BookingStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`

	// Relations loaded on demand, never persisted through this struct.
	Room    *Room    `json:"room,omitempty" db:"-"`
	Guest   *Guest   `json:"guest,omitempty" db:"-"`
	Payment *Payment `json:"payment,omitempty" db:"-"`
}

// MarshalJSON renders dates in calendar form and adds the derived
// total_dollar field. The integer value stays authoritative.
func (b Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	return json.Marshal(struct {
		alias
		CheckIn     string  `json:"check_in"`
		CheckOut    string  `json:"check_out"`
		TotalDollar float64 `json:"total_dollar"`
	}{
		alias:       alias(b),
		CheckIn:     b.CheckIn.Format(DateFormat),
		CheckOut:    b.CheckOut.Format(DateFormat),
		TotalDollar: float64(b.TotalCents) / 100.0,
	})
}

// CreateBookingRequest is the payload for creating a booking. ClientToken is
// the caller-supplied idempotency token: resubmitting the same token returns
// the originally created booking and performs no further writes.
type CreateBookingRequest struct {
	RoomID      uuid.UUID  `json:"room_id" binding:"required"`
	Guest       GuestInput `json:"guest" binding:"required"`
	CheckIn     string     `json:"check_in" binding:"required"`
	CheckOut    string     `json:"check_out" binding:"required"`
	ClientToken string     `json:"client_token" binding:"required"`

	// Parsed during Validate.
	CheckInDate  time.Time `json:"-"`
	CheckOutDate time.Time `json:"-"`
}

// Validate parses dates, checks the range invariant and the token shape.
// Runs before any lock is taken or any write attempted.
func (r *CreateBookingRequest) Validate() error {
	if r.RoomID == uuid.Nil {
		return errRequired("room_id")
	}
	if err := r.Guest.Validate(); err != nil {
		return err
	}
	ci, err := time.Parse(DateFormat, r.CheckIn)
	if err != nil {
		return validationError("check_in must be formatted as " + DateFormat)
	}
	co, err := time.Parse(DateFormat, r.CheckOut)
	if err != nil {
		return validationError("check_out must be formatted as " + DateFormat)
	}
	if !co.After(ci) {
		return ErrDateRangeInvalid
	}
	if _, err := uuid.Parse(strings.TrimSpace(r.ClientToken)); err != nil {
		return ErrInvalidToken
	}
	r.CheckInDate = ci
	r.CheckOutDate = co
	r.ClientToken = strings.TrimSpace(r.ClientToken)
	return nil
}

// UpdateBookingRequest is the payload for modifying a booking. Only the
// fields listed here are accepted; each present field is a full replacement
// value. Nil means "leave unchanged".
type UpdateBookingRequest struct {
	RoomID   *uuid.UUID  `json:"room_id,omitempty"`
	CheckIn  *string     `json:"check_in,omitempty"`
	CheckOut *string     `json:"check_out,omitempty"`
	Guest    *GuestInput `json:"guest,omitempty"`

	CheckInDate  *time.Time `json:"-"`
	CheckOutDate *time.Time `json:"-"`
}

// Validate parses any supplied dates. The full range invariant is enforced
// by the transaction manager once the effective range is known.
func (r *UpdateBookingRequest) Validate() error {
	if r.RoomID == nil && r.CheckIn == nil && r.CheckOut == nil && r.Guest == nil {
		return validationError("no updatable fields supplied")
	}
	if r.RoomID != nil && *r.RoomID == uuid.Nil {
		return errRequired("room_id")
	}
	if r.CheckIn != nil {
		ci, err := time.Parse(DateFormat, *r.CheckIn)
		if err != nil {
			return validationError("check_in must be formatted as " + DateFormat)
		}
		r.CheckInDate = &ci
	}
	if r.CheckOut != nil {
		co, err := time.Parse(DateFormat, *r.CheckOut)
		if err != nil {
			return validationError("check_out must be formatted as " + DateFormat)
		}
		r.CheckOutDate = &co
	}
	if r.Guest != nil {
		if r.Guest.FullName == "" && r.Guest.Email == "" && r.Guest.Phone == nil {
			return validationError("guest update carries no fields")
		}
	}
	return nil
}

// ChangesRoomOrDates reports whether the update touches the fields that
// require re-running the overlap check and recomputing the total.
func (r *UpdateBookingRequest) ChangesRoomOrDates() bool {
	return r.RoomID != nil || r.CheckInDate != nil || r.CheckOutDate != nil
}
