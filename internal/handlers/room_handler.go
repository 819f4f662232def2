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

// RoomHandler handles room inventory and availability HTTP requests
type RoomHandler struct {
	rooms  *services.RoomService
	logger *logrus.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *services.RoomService, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, logger: logger}
}

// ============================================================================
// AVAILABILITY
// ============================================================================

// SearchAvailability handles GET /api/v1/rooms/availability
// Query params: check_in, check_out (required, YYYY-MM-DD),
// max_price (dollars) and amenities (comma-separated) are optional.
func (h *RoomHandler) SearchAvailability(c *gin.Context) {
	var amenities []string
	if raw := c.Query("amenities"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				amenities = append(amenities, a)
			}
		}
	}

	query, err := services.ParseAvailabilityQuery(
		c.Query("check_in"),
		c.Query("check_out"),
		c.Query("max_price"),
		amenities,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_query",
			Message: "check_in and check_out must be YYYY-MM-DD with check_out after check_in",
		})
		return
	}

	rooms, err := h.rooms.FindAvailableRooms(query)
	if err != nil {
		h.respondError(c, err, "Failed to search availability")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms":     rooms,
		"total":     len(rooms),
		"check_in":  query.CheckIn.Format(models.DateFormat),
		"check_out": query.CheckOut.Format(models.DateFormat),
	})
}

// ============================================================================
// INVENTORY CRUD
// ============================================================================

// ListRooms handles GET /api/v1/rooms
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms()
	if err != nil {
		h.respondError(c, err, "Failed to list rooms")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms": rooms,
		"total": len(rooms),
	})
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := h.parseRoomID(c)
	if !ok {
		return
	}

	room, err := h.rooms.GetRoom(roomID)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve room")
		return
	}

	c.JSON(http.StatusOK, room)
}

// CreateRoom handles POST /api/v1/rooms (admin only)
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req models.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	room, err := h.rooms.CreateRoom(&req)
	if err != nil {
		h.respondError(c, err, "Failed to create room")
		return
	}

	c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /api/v1/rooms/:id (admin only)
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	roomID, ok := h.parseRoomID(c)
	if !ok {
		return
	}

	var req models.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	room, err := h.rooms.UpdateRoom(roomID, &req)
	if err != nil {
		h.respondError(c, err, "Failed to update room")
		return
	}

	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/v1/rooms/:id (admin only)
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID, ok := h.parseRoomID(c)
	if !ok {
		return
	}

	if err := h.rooms.DeleteRoom(roomID); err != nil {
		h.respondError(c, err, "Failed to delete room")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}

// ============================================================================
// HELPERS
// ============================================================================

func (h *RoomHandler) parseRoomID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid room ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *RoomHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "room_not_found",
			Message: "Room not found",
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
