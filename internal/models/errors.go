package models

import "errors"

// Domain errors returned by the reservation engine. Handlers map these to
// HTTP statuses with errors.Is; repositories wrap them with context.
var (
	// ErrDateRangeInvalid is returned when check_out is not strictly after check_in.
	ErrDateRangeInvalid = errors.New("check_out must be after check_in")

	// ErrRoomUnavailable is returned when an active booking overlaps the
	// requested range. Detected only inside the authoritative critical section.
	ErrRoomUnavailable = errors.New("room is not available for the selected dates")

	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrBookingNotFound is returned when the referenced booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrPaymentNotFound is returned when confirming payment for a booking
	// that has no payment record.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidToken is returned when the client token is not a valid UUID.
	ErrInvalidToken = errors.New("client_token must be a valid UUID")

	// ErrBookingNotModifiable is returned when updating a booking in a
	// terminal status.
	ErrBookingNotModifiable = errors.New("booking is cancelled and cannot be modified")

	// ErrPaymentNotPending is returned when confirming a payment that has
	// already left the PENDING state.
	ErrPaymentNotPending = errors.New("payment has already been processed")
)
