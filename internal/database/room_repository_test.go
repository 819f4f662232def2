package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRoomRepoTest(t *testing.T) (*RoomRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRoomRepository(sqlxDB)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestGetRoomByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupRoomRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	mock.ExpectQuery("FROM rooms WHERE id").
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetRoomByID(roomID)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAvailableRooms_NoFilters(t *testing.T) {
	repo, mock, cleanup := setupRoomRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	q := models.AvailabilityQuery{
		CheckIn:  date("2026-09-01"),
		CheckOut: date("2026-09-05"),
	}

	mock.ExpectQuery("SELECT DISTINCT (.+) FROM rooms r").
		WithArgs(q.CheckOut, q.CheckIn).
		WillReturnRows(roomRows(roomID, 8000))
	mock.ExpectQuery("SELECT a.name FROM amenities").
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("wifi"))

	rooms, err := repo.FindAvailableRooms(q)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, roomID, rooms[0].ID)
	assert.Equal(t, []string{"wifi"}, rooms[0].Amenities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAvailableRooms_WithPriceAndAmenityFilters(t *testing.T) {
	repo, mock, cleanup := setupRoomRepoTest(t)
	defer cleanup()

	roomID := uuid.New()
	maxPrice := int64(15000)
	q := models.AvailabilityQuery{
		CheckIn:       date("2026-09-01"),
		CheckOut:      date("2026-09-05"),
		MaxPriceCents: &maxPrice,
		Amenities:     []string{"wifi", "balcony"},
	}

	// sqlx.In expands the amenity list before the range and price args
	mock.ExpectQuery("SELECT DISTINCT (.+) FROM rooms r").
		WithArgs("wifi", "balcony", q.CheckOut, q.CheckIn, maxPrice).
		WillReturnRows(roomRows(roomID, 12000))
	mock.ExpectQuery("SELECT a.name FROM amenities").
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("balcony").AddRow("wifi"))

	rooms, err := repo.FindAvailableRooms(q)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, []string{"balcony", "wifi"}, rooms[0].Amenities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAvailableRooms_Empty(t *testing.T) {
	repo, mock, cleanup := setupRoomRepoTest(t)
	defer cleanup()

	q := models.AvailabilityQuery{
		CheckIn:  date("2026-09-01"),
		CheckOut: date("2026-09-05"),
	}

	mock.ExpectQuery("SELECT DISTINCT (.+) FROM rooms r").
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "room_type", "price_cents", "capacity", "description", "created_at", "updated_at"}))

	rooms, err := repo.FindAvailableRooms(q)
	require.NoError(t, err)
	assert.Empty(t, rooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom(t *testing.T) {
	repo, mock, cleanup := setupRoomRepoTest(t)
	defer cleanup()

	t.Run("existing room", func(t *testing.T) {
		roomID := uuid.New()
		mock.ExpectExec("DELETE FROM rooms").
			WithArgs(roomID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteRoom(roomID))
	})

	t.Run("missing room", func(t *testing.T) {
		roomID := uuid.New()
		mock.ExpectExec("DELETE FROM rooms").
			WithArgs(roomID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteRoom(roomID), models.ErrRoomNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoom(t *testing.T) {
	repo, mock, cleanup := setupRoomRepoTest(t)
	defer cleanup()

	amenityID := uuid.New()
	req := &models.RoomRequest{
		Number:      "305",
		RoomType:    "Deluxe Room",
		PriceCents:  12000,
		Capacity:    3,
		Description: "Ocean view",
		Amenities:   []string{"wifi"},
	}
	require.NoError(t, req.Validate())

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO rooms").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO amenities").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(amenityID.String()))
	mock.ExpectExec("INSERT INTO room_amenities").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	room, err := repo.CreateRoom(req)
	require.NoError(t, err)
	assert.Equal(t, "305", room.Number)
	assert.Equal(t, int64(12000), room.PriceCents)
	assert.Equal(t, []string{"wifi"}, room.Amenities)
	assert.NoError(t, mock.ExpectationsWereMet())
}
