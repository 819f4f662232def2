package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
	"github.com/sannchesda/hotel-reservation-backend/internal/utils"
)

// BookingRepository owns the reservation write path. Every multi-entity
// mutation (booking+payment create, update with price re-sync, cancel with
// refund) runs in a single transaction so no caller ever observes a partial
// write. Exclusive access is scoped per room via SELECT ... FOR UPDATE on
// the room row: creations against different rooms never block each other,
// while conflicting attempts on one room serialize around the
// check-and-create sequence.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, reference_code, room_id, guest_id, check_in, check_out, total_cents, status, created_at, updated_at`

// ============================================================================
// REFERENCE GENERATION
// ============================================================================

// GenerateReferenceCode generates a unique booking reference
// Format: BK-YYYYMMDD-XXXXXX (6 char alphanumeric)
// Example: BK-20260831-A1B2C3
func (r *BookingRepository) GenerateReferenceCode() (string, error) {
	todayStr := time.Now().Format("20060102")

	for attempts := 0; attempts < 10; attempts++ {
		randomBytes := make([]byte, 3)
		if _, err := rand.Read(randomBytes); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		randomStr := strings.ToUpper(hex.EncodeToString(randomBytes))

		newRef := fmt.Sprintf("BK-%s-%s", todayStr, randomStr)

		var count int
		err := r.db.Get(&count, `SELECT COUNT(*) FROM bookings WHERE reference_code = $1`, newRef)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}

		if count == 0 {
			return newRef, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique booking reference after 10 attempts")
}

// ============================================================================
// CREATE
// ============================================================================

// CreateBooking runs the authoritative check-and-create sequence. The
// returned bool is false when the client token had already been used and the
// original booking is returned instead of a new one.
//
// Inside one transaction:
//  1. Lock the target room row (room-scoped mutual exclusion).
//  2. Re-check the client token against payments.provider_ref; a hit means a
//     concurrent or earlier request already created the booking.
//  3. Re-validate that no active booking overlaps the requested range.
//  4. Resolve or create the guest by email.
//  5. Compute total = nights x nightly rate and insert booking + payment.
func (r *BookingRepository) CreateBooking(req *models.CreateBookingRequest) (*models.Booking, bool, error) {
	refCode, err := r.GenerateReferenceCode()
	if err != nil {
		return nil, false, err
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	room, err := lockRoomTx(tx, req.RoomID)
	if err != nil {
		return nil, false, err
	}

	// Idempotency re-check inside the critical section. The outer fast-path
	// check races with concurrent commits; this one cannot.
	if existing, err := getPaymentByProviderRefTx(tx, req.ClientToken); err != nil {
		return nil, false, err
	} else if existing != nil {
		booking, err := r.getBookingTx(tx, existing.BookingID)
		if err != nil {
			return nil, false, err
		}
		booking.Payment = existing
		return booking, false, nil
	}

	conflict, err := hasOverlapTx(tx, req.RoomID, req.CheckInDate, req.CheckOutDate, nil)
	if err != nil {
		return nil, false, err
	}
	if conflict {
		return nil, false, models.ErrRoomUnavailable
	}

	guest, err := GetOrCreateGuestTx(tx, req.Guest)
	if err != nil {
		return nil, false, err
	}

	nights := utils.Nights(req.CheckInDate, req.CheckOutDate)
	totalCents := int64(nights) * room.PriceCents

	booking := models.Booking{
		ID:            uuid.New(),
		ReferenceCode: refCode,
		RoomID:        room.ID,
		GuestID:       guest.ID,
		CheckIn:       req.CheckInDate,
		CheckOut:      req.CheckOutDate,
		TotalCents:    totalCents,
		Status:        models.BookingStatusPending,
	}

	bookingQuery := `
		INSERT INTO bookings (id, reference_code, room_id, guest_id, check_in, check_out, total_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err = tx.QueryRowx(bookingQuery,
		booking.ID, booking.ReferenceCode, booking.RoomID, booking.GuestID,
		booking.CheckIn, booking.CheckOut, booking.TotalCents, booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create booking: %w", err)
	}

	payment := models.Payment{
		ID:          uuid.New(),
		BookingID:   booking.ID,
		AmountCents: totalCents,
		Status:      models.PaymentStatusPending,
		ProviderRef: req.ClientToken,
	}
	paymentQuery := `
		INSERT INTO payments (id, booking_id, amount_cents, status, provider_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	err = tx.QueryRowx(paymentQuery,
		payment.ID, payment.BookingID, payment.AmountCents, payment.Status, payment.ProviderRef,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit booking creation: %w", err)
	}

	booking.Room = room
	booking.Guest = guest
	booking.Payment = &payment
	return &booking, true, nil
}

// ============================================================================
// UPDATE
// ============================================================================

// UpdateBooking applies a room, date or guest change atomically. Locks are
// taken in a fixed order, booking row first and then the target room row,
// so two updates against the same pair can never deadlock. The target room
// is the current one when unchanged, the destination room when moving.
func (r *BookingRepository) UpdateBooking(bookingID uuid.UUID, req *models.UpdateBookingRequest) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := lockBookingTx(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, models.ErrBookingNotModifiable
	}

	targetRoomID := booking.RoomID
	if req.RoomID != nil {
		targetRoomID = *req.RoomID
	}
	room, err := lockRoomTx(tx, targetRoomID)
	if err != nil {
		return nil, err
	}

	checkIn := booking.CheckIn
	checkOut := booking.CheckOut
	if req.CheckInDate != nil {
		checkIn = *req.CheckInDate
	}
	if req.CheckOutDate != nil {
		checkOut = *req.CheckOutDate
	}
	if !checkOut.After(checkIn) {
		return nil, models.ErrDateRangeInvalid
	}

	totalCents := booking.TotalCents
	if req.ChangesRoomOrDates() {
		conflict, err := hasOverlapTx(tx, targetRoomID, checkIn, checkOut, &booking.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, models.ErrRoomUnavailable
		}
		totalCents = int64(utils.Nights(checkIn, checkOut)) * room.PriceCents
	}

	query := `
		UPDATE bookings
		SET room_id = $1, check_in = $2, check_out = $3, total_cents = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`
	if err := tx.QueryRowx(query, targetRoomID, checkIn, checkOut, totalCents, booking.ID).Scan(&booking.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	booking.RoomID = targetRoomID
	booking.CheckIn = checkIn
	booking.CheckOut = checkOut
	booking.TotalCents = totalCents

	// Keep the payment amount in sync with the recomputed total within the
	// same atomic unit.
	if req.ChangesRoomOrDates() {
		_, err := tx.Exec(
			`UPDATE payments SET amount_cents = $1, updated_at = NOW() WHERE booking_id = $2`,
			totalCents, booking.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to sync payment amount: %w", err)
		}
	}

	var guest *models.Guest
	if req.Guest != nil {
		guest, err = UpdateGuestTx(tx, booking.GuestID, *req.Guest)
	} else {
		guest, err = getGuestTx(tx, booking.GuestID)
	}
	if err != nil {
		return nil, err
	}

	payment, err := getPaymentByBookingIDTx(tx, booking.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking update: %w", err)
	}

	booking.Room = room
	booking.Guest = guest
	booking.Payment = payment
	return booking, nil
}

// ============================================================================
// CANCEL
// ============================================================================

// CancelBooking transitions a booking to CANCELLED and refunds a PAID
// payment in the same transaction. Cancelling an already-cancelled booking
// is a no-op returning the terminal state. Only the booking row is locked;
// cancellation never contends on the room-scoped creation lock.
func (r *BookingRepository) CancelBooking(bookingID uuid.UUID) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := lockBookingTx(tx, bookingID)
	if err != nil {
		return nil, err
	}

	payment, err := getPaymentByBookingIDTx(tx, booking.ID)
	if err != nil {
		return nil, err
	}

	if booking.Status == models.BookingStatusCancelled {
		booking.Payment = payment
		return booking, nil
	}

	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
	if err := tx.QueryRowx(query, models.BookingStatusCancelled, booking.ID).Scan(&booking.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	booking.Status = models.BookingStatusCancelled

	if payment != nil && payment.Status == models.PaymentStatusPaid {
		refund := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
		if err := tx.QueryRowx(refund, models.PaymentStatusRefunded, payment.ID).Scan(&payment.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to refund payment: %w", err)
		}
		payment.Status = models.PaymentStatusRefunded
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	booking.Payment = payment
	return booking, nil
}

// ============================================================================
// PAYMENT CONFIRMATION
// ============================================================================

// ConfirmPayment applies the external gateway signal. On success the payment
// moves PENDING->PAID and a PENDING booking moves to CONFIRMED in the same
// transaction; on failure only the payment moves, to FAILED, and the booking
// stays PENDING. A payment that already left PENDING is rejected unchanged.
func (r *BookingRepository) ConfirmPayment(bookingID uuid.UUID, success bool, providerRef *string) (*models.Payment, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := lockBookingTx(tx, bookingID)
	if err != nil {
		return nil, err
	}

	payment, err := getPaymentByBookingIDTx(tx, booking.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, models.ErrPaymentNotFound
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, models.ErrPaymentNotPending
	}

	if success {
		ref := payment.ProviderRef
		if providerRef != nil && *providerRef != "" {
			ref = *providerRef
		}
		query := `UPDATE payments SET status = $1, provider_ref = $2, updated_at = NOW() WHERE id = $3 RETURNING updated_at`
		if err := tx.QueryRowx(query, models.PaymentStatusPaid, ref, payment.ID).Scan(&payment.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to mark payment paid: %w", err)
		}
		payment.Status = models.PaymentStatusPaid
		payment.ProviderRef = ref

		if booking.Status == models.BookingStatusPending {
			confirm := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`
			if _, err := tx.Exec(confirm, models.BookingStatusConfirmed, booking.ID); err != nil {
				return nil, fmt.Errorf("failed to confirm booking: %w", err)
			}
		}
	} else {
		query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
		if err := tx.QueryRowx(query, models.PaymentStatusFailed, payment.ID).Scan(&payment.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to mark payment failed: %w", err)
		}
		payment.Status = models.PaymentStatusFailed
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment confirmation: %w", err)
	}
	return payment, nil
}

// ============================================================================
// READS
// ============================================================================

// GetBookingByID retrieves a booking with its room, guest and payment
func (r *BookingRepository) GetBookingByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Get(&booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if err := r.loadRelations(&booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListBookings retrieves all bookings, newest first, with relations loaded
func (r *BookingRepository) ListBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`
	if err := r.db.Select(&bookings, query); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	for i := range bookings {
		if err := r.loadRelations(&bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

func (r *BookingRepository) loadRelations(booking *models.Booking) error {
	var room models.Room
	err := r.db.Get(&room, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, booking.RoomID)
	if err == nil {
		room.Amenities = []string{}
		booking.Room = &room
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("failed to load booking room: %w", err)
	}

	var guest models.Guest
	err = r.db.Get(&guest, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, booking.GuestID)
	if err == nil {
		booking.Guest = &guest
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("failed to load booking guest: %w", err)
	}

	var payment models.Payment
	err = r.db.Get(&payment, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = $1`, booking.ID)
	if err == nil {
		booking.Payment = &payment
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("failed to load booking payment: %w", err)
	}

	return nil
}

// ============================================================================
// TRANSACTION HELPERS
// ============================================================================

// lockRoomTx takes the room-scoped exclusive lock for the duration of the
// transaction. All conflicting writers for one room serialize here.
func lockRoomTx(tx *sqlx.Tx, roomID uuid.UUID) (*models.Room, error) {
	var room models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`
	err := tx.Get(&room, query, roomID)
	if err == sql.ErrNoRows {
		return nil, models.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	return &room, nil
}

// lockBookingTx takes an exclusive lock on the booking row
func lockBookingTx(tx *sqlx.Tx, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	err := tx.Get(&booking, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return &booking, nil
}

// hasOverlapTx checks the half-open range [checkIn, checkOut) against all
// active bookings of the room, optionally excluding the booking under
// modification. Runs against current committed state, after the room lock.
func hasOverlapTx(tx *sqlx.Tx, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE room_id = $1
		  AND status IN ('PENDING', 'CONFIRMED')
		  AND check_in < $2
		  AND check_out > $3`
	args := []interface{}{roomID, checkOut, checkIn}
	if excludeID != nil {
		query += ` AND id <> $4`
		args = append(args, *excludeID)
	}

	var count int
	if err := tx.Get(&count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}
	return count > 0, nil
}

func (r *BookingRepository) getBookingTx(tx *sqlx.Tx, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := tx.Get(&booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func getPaymentByBookingIDTx(tx *sqlx.Tx, bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`
	err := tx.Get(&payment, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}
