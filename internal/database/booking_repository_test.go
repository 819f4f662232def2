package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBookingRepoTest(t *testing.T) (*BookingRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewBookingRepository(sqlxDB)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func roomRows(roomID uuid.UUID, priceCents int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "number", "room_type", "price_cents", "capacity", "description", "created_at", "updated_at"}).
		AddRow(roomID.String(), "101", "Standard Room", priceCents, 2, "City view", time.Now(), time.Now())
}

func bookingRows(bookingID, roomID, guestID uuid.UUID, status models.BookingStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "reference_code", "room_id", "guest_id", "check_in", "check_out", "total_cents", "status", "created_at", "updated_at"}).
		AddRow(bookingID.String(), "BK-20260901-AABBCC", roomID.String(), guestID.String(),
			date("2026-09-01"), date("2026-09-05"), 32000, string(status), time.Now(), time.Now())
}

func paymentRows(paymentID, bookingID uuid.UUID, status models.PaymentStatus, providerRef string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "booking_id", "amount_cents", "status", "provider_ref", "created_at", "updated_at"}).
		AddRow(paymentID.String(), bookingID.String(), 32000, string(status), providerRef, time.Now(), time.Now())
}

func date(s string) time.Time {
	t, err := time.Parse(models.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func createRequest(roomID uuid.UUID, token string) *models.CreateBookingRequest {
	req := &models.CreateBookingRequest{
		RoomID:      roomID,
		Guest:       models.GuestInput{FullName: "Alice Tan", Email: "alice@example.com"},
		CheckIn:     "2026-09-01",
		CheckOut:    "2026-09-05",
		ClientToken: token,
	}
	if err := req.Validate(); err != nil {
		panic(err)
	}
	return req
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateBooking_Success(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	token := uuid.New().String()
	req := createRequest(roomID, token)

	// Reference code uniqueness check
	mock.ExpectQuery("SELECT COUNT(.+) FROM bookings WHERE reference_code").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()

	// Room lock
	mock.ExpectQuery("FROM rooms WHERE id = (.+) FOR UPDATE").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, 8000))

	// Token re-check: never used
	mock.ExpectQuery("FROM payments WHERE provider_ref").
		WithArgs(token).
		WillReturnError(sql.ErrNoRows)

	// Overlap check: room is free
	mock.ExpectQuery("SELECT COUNT(.+) FROM bookings").
		WithArgs(roomID, req.CheckOutDate, req.CheckInDate).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// Guest is unknown, gets created
	mock.ExpectQuery("FROM guests WHERE email").
		WithArgs("alice@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO guests").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO payments").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	mock.ExpectCommit()

	booking, created, err := repo.CreateBooking(req)
	require.NoError(t, err)
	assert.True(t, created)

	// 4 nights at 8000 cents
	assert.Equal(t, int64(32000), booking.TotalCents)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, roomID, booking.RoomID)
	require.NotNil(t, booking.Payment)
	assert.Equal(t, models.PaymentStatusPending, booking.Payment.Status)
	assert.Equal(t, token, booking.Payment.ProviderRef)
	assert.Equal(t, booking.TotalCents, booking.Payment.AmountCents)
	assert.Contains(t, booking.ReferenceCode, "BK-")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_RoomUnavailable(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	req := createRequest(roomID, uuid.New().String())

	mock.ExpectQuery("SELECT COUNT(.+) FROM bookings WHERE reference_code").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rooms WHERE id = (.+) FOR UPDATE").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, 8000))
	mock.ExpectQuery("FROM payments WHERE provider_ref").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT COUNT(.+) FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, _, err := repo.CreateBooking(req)
	assert.ErrorIs(t, err, models.ErrRoomUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_RoomNotFound(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	req := createRequest(roomID, uuid.New().String())

	mock.ExpectQuery("SELECT COUNT(.+) FROM bookings WHERE reference_code").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rooms WHERE id = (.+) FOR UPDATE").
		WithArgs(roomID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.CreateBooking(req)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_TokenReplayedInsideTransaction(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	guestID := uuid.New()
	bookingID := uuid.New()
	paymentID := uuid.New()
	token := uuid.New().String()
	req := createRequest(roomID, token)

	mock.ExpectQuery("SELECT COUNT(.+) FROM bookings WHERE reference_code").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rooms WHERE id = (.+) FOR UPDATE").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, 8000))

	// A concurrent request with the same token won the race
	mock.ExpectQuery("FROM payments WHERE provider_ref").
		WithArgs(token).
		WillReturnRows(paymentRows(paymentID, bookingID, models.PaymentStatusPending, token))
	mock.ExpectQuery("FROM bookings WHERE id").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, guestID, models.BookingStatusPending))
	mock.ExpectRollback()

	booking, created, err := repo.CreateBooking(req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, bookingID, booking.ID)
	require.NotNil(t, booking.Payment)
	assert.Equal(t, token, booking.Payment.ProviderRef)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================================================
// UPDATE
// ============================================================================

func TestUpdateBooking_RecomputesTotalAndSyncsPayment(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	guestID := uuid.New()
	bookingID := uuid.New()
	paymentID := uuid.New()

	checkOut := "2026-09-08"
	req := &models.UpdateBookingRequest{CheckOut: &checkOut}
	require.NoError(t, req.Validate())

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, guestID, models.BookingStatusPending))
	mock.ExpectQuery("FROM rooms WHERE id = (.+) FOR UPDATE").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, 8000))

	// Overlap check against the extended range, excluding this booking
	mock.ExpectQuery("SELECT COUNT(.+) FROM bookings").
		WithArgs(roomID, date("2026-09-08"), date("2026-09-01"), bookingID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery("UPDATE bookings").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE payments SET amount_cents").
		WithArgs(int64(56000), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM guests WHERE id").
		WithArgs(guestID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "phone", "created_at", "updated_at"}).
			AddRow(guestID.String(), "Alice Tan", "alice@example.com", "", time.Now(), time.Now()))
	mock.ExpectQuery("FROM payments WHERE booking_id").
		WithArgs(bookingID).
		WillReturnRows(paymentRows(paymentID, bookingID, models.PaymentStatusPending, uuid.New().String()))
	mock.ExpectCommit()

	booking, err := repo.UpdateBooking(bookingID, req)
	require.NoError(t, err)

	// 7 nights at 8000 cents
	assert.Equal(t, int64(56000), booking.TotalCents)
	assert.Equal(t, date("2026-09-08"), booking.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBooking_CancelledIsNotModifiable(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	bookingID := uuid.New()

	checkOut := "2026-09-08"
	req := &models.UpdateBookingRequest{CheckOut: &checkOut}
	require.NoError(t, req.Validate())

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, uuid.New(), models.BookingStatusCancelled))
	mock.ExpectRollback()

	_, err := repo.UpdateBooking(bookingID, req)
	assert.ErrorIs(t, err, models.ErrBookingNotModifiable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBooking_InvertedRangeRejected(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	bookingID := uuid.New()

	// New check-out lands before the existing check-in
	checkOut := "2026-08-30"
	req := &models.UpdateBookingRequest{CheckOut: &checkOut}
	require.NoError(t, req.Validate())

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, uuid.New(), models.BookingStatusPending))
	mock.ExpectQuery("FROM rooms WHERE id = (.+) FOR UPDATE").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, 8000))
	mock.ExpectRollback()

	_, err := repo.UpdateBooking(bookingID, req)
	assert.ErrorIs(t, err, models.ErrDateRangeInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================================================
// CANCEL
// ============================================================================

func TestCancelBooking_RefundsPaidPayment(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	bookingID := uuid.New()
	paymentID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, uuid.New(), models.BookingStatusConfirmed))
	mock.ExpectQuery("FROM payments WHERE booking_id").
		WithArgs(bookingID).
		WillReturnRows(paymentRows(paymentID, bookingID, models.PaymentStatusPaid, uuid.New().String()))
	mock.ExpectQuery("UPDATE bookings SET status").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectQuery("UPDATE payments SET status").
		WithArgs(models.PaymentStatusRefunded, paymentID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	booking, err := repo.CancelBooking(bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)
	require.NotNil(t, booking.Payment)
	assert.Equal(t, models.PaymentStatusRefunded, booking.Payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking_AlreadyCancelledIsNoOp(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	bookingID := uuid.New()
	paymentID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, uuid.New(), models.BookingStatusCancelled))
	mock.ExpectQuery("FROM payments WHERE booking_id").
		WithArgs(bookingID).
		WillReturnRows(paymentRows(paymentID, bookingID, models.PaymentStatusRefunded, uuid.New().String()))
	mock.ExpectRollback()

	booking, err := repo.CancelBooking(bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================================================
// PAYMENT CONFIRMATION
// ============================================================================

func TestConfirmPayment_SuccessConfirmsBooking(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	bookingID := uuid.New()
	paymentID := uuid.New()
	gatewayRef := "ch_1a2b3c"

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, uuid.New(), models.BookingStatusPending))
	mock.ExpectQuery("FROM payments WHERE booking_id").
		WithArgs(bookingID).
		WillReturnRows(paymentRows(paymentID, bookingID, models.PaymentStatusPending, uuid.New().String()))
	mock.ExpectQuery("UPDATE payments SET status").
		WithArgs(models.PaymentStatusPaid, gatewayRef, paymentID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingStatusConfirmed, bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment, err := repo.ConfirmPayment(bookingID, true, &gatewayRef)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.Equal(t, gatewayRef, payment.ProviderRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPayment_FailureLeavesBookingPending(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	bookingID := uuid.New()
	paymentID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, uuid.New(), models.BookingStatusPending))
	mock.ExpectQuery("FROM payments WHERE booking_id").
		WithArgs(bookingID).
		WillReturnRows(paymentRows(paymentID, bookingID, models.PaymentStatusPending, uuid.New().String()))
	mock.ExpectQuery("UPDATE payments SET status").
		WithArgs(models.PaymentStatusFailed, paymentID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	payment, err := repo.ConfirmPayment(bookingID, false, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPayment_MissingPayment(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, uuid.New(), models.BookingStatusPending))
	mock.ExpectQuery("FROM payments WHERE booking_id").
		WithArgs(bookingID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.ConfirmPayment(bookingID, true, nil)
	assert.ErrorIs(t, err, models.ErrPaymentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPayment_AlreadySettledRejected(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	bookingID := uuid.New()
	paymentID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRows(bookingID, roomID, uuid.New(), models.BookingStatusConfirmed))
	mock.ExpectQuery("FROM payments WHERE booking_id").
		WithArgs(bookingID).
		WillReturnRows(paymentRows(paymentID, bookingID, models.PaymentStatusPaid, uuid.New().String()))
	mock.ExpectRollback()

	_, err := repo.ConfirmPayment(bookingID, true, nil)
	assert.ErrorIs(t, err, models.ErrPaymentNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
