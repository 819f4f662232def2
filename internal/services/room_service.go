package services

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sannchesda/hotel-reservation-backend/internal/database"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// RoomService handles room inventory and availability search
type RoomService struct {
	roomRepo *database.RoomRepository
	logger   *logrus.Logger
}

// NewRoomService creates a new RoomService
func NewRoomService(roomRepo *database.RoomRepository, logger *logrus.Logger) *RoomService {
	return &RoomService{roomRepo: roomRepo, logger: logger}
}

// GetRoom retrieves one room by ID
func (s *RoomService) GetRoom(id uuid.UUID) (*models.Room, error) {
	return s.roomRepo.GetRoomByID(id)
}

// ListRooms retrieves all rooms
func (s *RoomService) ListRooms() ([]models.Room, error) {
	return s.roomRepo.ListRooms()
}

// CreateRoom adds a room to the inventory
func (s *RoomService) CreateRoom(req *models.RoomRequest) (*models.Room, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.CreateRoom(req)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"room_id": room.ID,
		"number":  room.Number,
	}).Info("Room created")

	return room, nil
}

// UpdateRoom replaces a room's attributes and amenity set
func (s *RoomService) UpdateRoom(id uuid.UUID, req *models.RoomRequest) (*models.Room, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.roomRepo.UpdateRoom(id, req)
}

// DeleteRoom removes a room from the inventory
func (s *RoomService) DeleteRoom(id uuid.UUID) error {
	if err := s.roomRepo.DeleteRoom(id); err != nil {
		return err
	}
	s.logger.WithField("room_id", id).Info("Room deleted")
	return nil
}

// ============================================================================
// AVAILABILITY
// ============================================================================

// ParseAvailabilityQuery builds an availability query from raw URL params.
// check_in and check_out are required YYYY-MM-DD dates; max_price (in
// dollars) and amenities are optional filters.
func ParseAvailabilityQuery(checkIn, checkOut, maxPriceDollar string, amenities []string) (*models.AvailabilityQuery, error) {
	if checkIn == "" || checkOut == "" {
		return nil, models.ErrDateRangeInvalid
	}

	ci, err := time.Parse(models.DateFormat, checkIn)
	if err != nil {
		return nil, models.ErrDateRangeInvalid
	}
	co, err := time.Parse(models.DateFormat, checkOut)
	if err != nil {
		return nil, models.ErrDateRangeInvalid
	}
	if !co.After(ci) {
		return nil, models.ErrDateRangeInvalid
	}

	q := &models.AvailabilityQuery{
		CheckIn:   ci,
		CheckOut:  co,
		Amenities: amenities,
	}

	if maxPriceDollar != "" {
		dollars, err := strconv.ParseFloat(maxPriceDollar, 64)
		if err != nil || dollars < 0 {
			return nil, models.ErrDateRangeInvalid
		}
		cents := int64(dollars * 100)
		q.MaxPriceCents = &cents
	}

	return q, nil
}

// FindAvailableRooms returns rooms free for the whole requested range
func (s *RoomService) FindAvailableRooms(q *models.AvailabilityQuery) ([]models.Room, error) {
	rooms, err := s.roomRepo.FindAvailableRooms(*q)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"check_in":  q.CheckIn.Format(models.DateFormat),
		"check_out": q.CheckOut.Format(models.DateFormat),
		"matches":   len(rooms),
	}).Debug("Availability search completed")

	return rooms, nil
}
