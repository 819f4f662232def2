package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
)

// RoomRepository handles room and amenity database operations
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, number, room_type, price_cents, capacity, description, created_at, updated_at`

// GetRoomByID retrieves a room with its amenities
func (r *RoomRepository) GetRoomByID(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	err := r.db.Get(&room, query, id)
	if err == sql.ErrNoRows {
		return nil, models.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if err := r.loadAmenities(&room); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms retrieves all rooms ordered by room number
func (r *RoomRepository) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY number`
	if err := r.db.Select(&rooms, query); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	for i := range rooms {
		if err := r.loadAmenities(&rooms[i]); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// FindAvailableRooms returns the rooms with no active booking overlapping
// [checkIn, checkOut). Active means PENDING or CONFIRMED; CANCELLED bookings
// never block. Optional filters restrict by maximum nightly rate and by
// required amenity names; the amenity join is deduplicated.
//
// This is a best-effort read: a returned room can still lose a race against
// a concurrent creation. Only the reservation write path is authoritative.
func (r *RoomRepository) FindAvailableRooms(q models.AvailabilityQuery) ([]models.Room, error) {
	query := `
		SELECT DISTINCT r.id, r.number, r.room_type, r.price_cents, r.capacity, r.description, r.created_at, r.updated_at
		FROM rooms r`
	args := []interface{}{}

	if len(q.Amenities) > 0 {
		query += `
		JOIN room_amenities ra ON ra.room_id = r.id
		JOIN amenities a ON a.id = ra.amenity_id AND a.name IN (?)`
		args = append(args, q.Amenities)
	}

	query += `
		WHERE NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_id = r.id
			  AND b.status IN ('PENDING', 'CONFIRMED')
			  AND b.check_in < ?
			  AND b.check_out > ?
		)`
	args = append(args, q.CheckOut, q.CheckIn)

	if q.MaxPriceCents != nil {
		query += `
		AND r.price_cents <= ?`
		args = append(args, *q.MaxPriceCents)
	}

	query += `
		ORDER BY r.number`

	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build availability query: %w", err)
	}
	expanded = r.db.Rebind(expanded)

	var rooms []models.Room
	if err := r.db.Select(&rooms, expanded, expandedArgs...); err != nil {
		return nil, fmt.Errorf("failed to find available rooms: %w", err)
	}
	for i := range rooms {
		if err := r.loadAmenities(&rooms[i]); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// CreateRoom inserts a room and attaches its amenities in one transaction
func (r *RoomRepository) CreateRoom(req *models.RoomRequest) (*models.Room, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	room := models.Room{
		ID:          uuid.New(),
		Number:      req.Number,
		RoomType:    req.RoomType,
		PriceCents:  req.PriceCents,
		Capacity:    req.Capacity,
		Description: req.Description,
	}

	query := `
		INSERT INTO rooms (id, number, room_type, price_cents, capacity, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err = tx.QueryRowx(query,
		room.ID, room.Number, room.RoomType, room.PriceCents, room.Capacity, room.Description,
	).Scan(&room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if err := r.replaceAmenitiesTx(tx, room.ID, req.Amenities); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit room creation: %w", err)
	}
	room.Amenities = normalizeAmenityNames(req.Amenities)
	return &room, nil
}

// UpdateRoom replaces a room's fields and amenity set
func (r *RoomRepository) UpdateRoom(id uuid.UUID, req *models.RoomRequest) (*models.Room, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var room models.Room
	query := `
		UPDATE rooms
		SET number = $1, room_type = $2, price_cents = $3, capacity = $4, description = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + roomColumns
	err = tx.QueryRowx(query,
		req.Number, req.RoomType, req.PriceCents, req.Capacity, req.Description, id,
	).StructScan(&room)
	if err == sql.ErrNoRows {
		return nil, models.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM room_amenities WHERE room_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to clear room amenities: %w", err)
	}
	if err := r.replaceAmenitiesTx(tx, id, req.Amenities); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit room update: %w", err)
	}
	room.Amenities = normalizeAmenityNames(req.Amenities)
	return &room, nil
}

// DeleteRoom removes a room. Bookings referencing it cascade at the schema level.
func (r *RoomRepository) DeleteRoom(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return models.ErrRoomNotFound
	}
	return nil
}

// replaceAmenitiesTx upserts each amenity by name and links it to the room
func (r *RoomRepository) replaceAmenitiesTx(tx *sqlx.Tx, roomID uuid.UUID, names []string) error {
	for _, name := range normalizeAmenityNames(names) {
		var amenityID uuid.UUID
		query := `
			INSERT INTO amenities (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`
		if err := tx.QueryRowx(query, uuid.New(), name).Scan(&amenityID); err != nil {
			return fmt.Errorf("failed to upsert amenity %s: %w", name, err)
		}
		_, err := tx.Exec(
			`INSERT INTO room_amenities (room_id, amenity_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			roomID, amenityID,
		)
		if err != nil {
			return fmt.Errorf("failed to link amenity %s: %w", name, err)
		}
	}
	return nil
}

func (r *RoomRepository) loadAmenities(room *models.Room) error {
	var names []string
	query := `
		SELECT a.name FROM amenities a
		JOIN room_amenities ra ON ra.amenity_id = a.id
		WHERE ra.room_id = $1
		ORDER BY a.name`
	if err := r.db.Select(&names, query, room.ID); err != nil {
		return fmt.Errorf("failed to load amenities: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	room.Amenities = names
	return nil
}

func normalizeAmenityNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
