package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sannchesda/hotel-reservation-backend/internal/database"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ReservationService handles the booking lifecycle: create with idempotency,
// modify, cancel, and payment confirmation. Validation happens here, before
// any lock is taken; the repository owns the transactional check-and-create.
type ReservationService struct {
	bookingRepo *database.BookingRepository
	paymentRepo *database.PaymentRepository
	logger      *logrus.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	bookingRepo *database.BookingRepository,
	paymentRepo *database.PaymentRepository,
	logger *logrus.Logger,
) *ReservationService {
	return &ReservationService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// ============================================================================
// CREATE
// ============================================================================

// CreateBooking creates a booking, or returns the existing one when the
// client token has already been used. The returned bool is true when a new
// booking was created.
func (s *ReservationService) CreateBooking(req *models.CreateBookingRequest) (*models.Booking, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	// Fast path: a token already bound to a payment resolves without
	// touching any lock. The repository re-checks inside the transaction,
	// so a stale miss here is harmless.
	existing, err := s.paymentRepo.GetPaymentByProviderRef(req.ClientToken)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check client token: %w", err)
	}
	if existing != nil {
		booking, err := s.bookingRepo.GetBookingByID(existing.BookingID)
		if err != nil {
			return nil, false, err
		}
		s.logger.WithFields(logrus.Fields{
			"booking_id":   booking.ID,
			"client_token": req.ClientToken,
		}).Info("Replayed booking request resolved to existing booking")
		return booking, false, nil
	}

	booking, created, err := s.bookingRepo.CreateBooking(req)
	if err != nil {
		return nil, false, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"reference":  booking.ReferenceCode,
		"room_id":    booking.RoomID,
		"check_in":   booking.CheckIn.Format(models.DateFormat),
		"check_out":  booking.CheckOut.Format(models.DateFormat),
		"created":    created,
	}).Info("Booking request processed")

	return booking, created, nil
}

// ============================================================================
// MODIFY / CANCEL
// ============================================================================

// UpdateBooking modifies a pending or confirmed booking
func (s *ReservationService) UpdateBooking(bookingID uuid.UUID, req *models.UpdateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.UpdateBooking(bookingID, req)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"room_id":     booking.RoomID,
		"total_cents": booking.TotalCents,
	}).Info("Booking updated")

	return booking, nil
}

// CancelBooking cancels a booking. Already-cancelled bookings are returned
// unchanged.
func (s *ReservationService) CancelBooking(bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.CancelBooking(bookingID)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"booking_id": booking.ID}
	if booking.Payment != nil {
		fields["payment_status"] = booking.Payment.Status
	}
	s.logger.WithFields(fields).Info("Booking cancelled")

	return booking, nil
}

// ============================================================================
// PAYMENT
// ============================================================================

// ConfirmPayment records the gateway outcome for a booking's payment
func (s *ReservationService) ConfirmPayment(bookingID uuid.UUID, req *models.ConfirmPaymentRequest) (*models.Booking, error) {
	payment, err := s.bookingRepo.ConfirmPayment(bookingID, req.Success, req.ProviderRef)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":     bookingID,
		"payment_id":     payment.ID,
		"payment_status": payment.Status,
	}).Info("Payment confirmation processed")

	return s.bookingRepo.GetBookingByID(bookingID)
}

// ============================================================================
// READS
// ============================================================================

// GetBooking retrieves a booking with its relations
func (s *ReservationService) GetBooking(bookingID uuid.UUID) (*models.Booking, error) {
	return s.bookingRepo.GetBookingByID(bookingID)
}

// ListBookings retrieves all bookings, newest first
func (s *ReservationService) ListBookings() ([]models.Booking, error) {
	return s.bookingRepo.ListBookings()
}
