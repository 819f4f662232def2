package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
	"github.com/sannchesda/hotel-reservation-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the uniform error body for all endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	reservations *services.ReservationService
	logger       *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(reservations *services.ReservationService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{reservations: reservations, logger: logger}
}

// ============================================================================
// CREATE
// ============================================================================

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	booking, created, err := h.reservations.CreateBooking(&req)
	if err != nil {
		h.respondError(c, err, "Failed to create booking")
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, booking)
}

// ============================================================================
// MODIFY / CANCEL
// ============================================================================

// UpdateBooking handles PATCH /api/v1/bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, ok := h.parseBookingID(c)
	if !ok {
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	booking, err := h.reservations.UpdateBooking(bookingID, &req)
	if err != nil {
		h.respondError(c, err, "Failed to update booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := h.parseBookingID(c)
	if !ok {
		return
	}

	booking, err := h.reservations.CancelBooking(bookingID)
	if err != nil {
		h.respondError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ============================================================================
// PAYMENT
// ============================================================================

// ConfirmPayment handles POST /api/v1/bookings/:id/confirm-payment
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	bookingID, ok := h.parseBookingID(c)
	if !ok {
		return
	}

	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	booking, err := h.reservations.ConfirmPayment(bookingID, &req)
	if err != nil {
		h.respondError(c, err, "Failed to confirm payment")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ============================================================================
// READS
// ============================================================================

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := h.parseBookingID(c)
	if !ok {
		return
	}

	booking, err := h.reservations.GetBooking(bookingID)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.reservations.ListBookings()
	if err != nil {
		h.respondError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// ============================================================================
// HELPERS
// ============================================================================

func (h *BookingHandler) parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors to HTTP statuses. Anything unmapped is a 500.
func (h *BookingHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrRoomUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "room_unavailable",
			Message: "Room is not available for the requested dates",
		})
	case errors.Is(err, models.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "room_not_found",
			Message: "Room not found",
		})
	case errors.Is(err, models.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "booking_not_found",
			Message: "Booking not found",
		})
	case errors.Is(err, models.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "payment_not_found",
			Message: "No payment exists for this booking",
		})
	case errors.Is(err, models.ErrDateRangeInvalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_date_range",
			Message: "check_out must be after check_in and dates must be YYYY-MM-DD",
		})
	case errors.Is(err, models.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_client_token",
			Message: "client_token must be a valid UUID",
		})
	case errors.Is(err, models.ErrBookingNotModifiable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "booking_not_modifiable",
			Message: "Cancelled bookings cannot be modified",
		})
	case errors.Is(err, models.ErrPaymentNotPending):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "payment_not_pending",
			Message: "Payment has already been settled",
		})
	case strings.HasPrefix(err.Error(), "validation:"):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: strings.TrimSpace(strings.TrimPrefix(err.Error(), "validation:")),
		})
	default:
		h.logger.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: fallback,
		})
	}
}
