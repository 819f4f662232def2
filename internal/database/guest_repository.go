package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
)

// Guest database operations. Guests are resolved by email: booking creation
// reuses an existing record with the same address instead of inserting a
// duplicate. All guest writes happen inside the reservation transaction, so
// this file exposes tx-scoped functions rather than a standalone repository.

const guestColumns = `id, full_name, email, phone, created_at, updated_at`

// GetOrCreateGuestTx resolves a guest by email inside an open transaction,
// creating the record when the email is unknown. Used by the reservation
// critical section so guest resolution commits with the booking.
func GetOrCreateGuestTx(tx *sqlx.Tx, input models.GuestInput) (*models.Guest, error) {
	var guest models.Guest
	query := `SELECT ` + guestColumns + ` FROM guests WHERE email = $1 ORDER BY created_at LIMIT 1`
	err := tx.Get(&guest, query, input.Email)
	if err == nil {
		return &guest, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to resolve guest: %w", err)
	}

	phone := ""
	if input.Phone != nil {
		phone = *input.Phone
	}
	guest = models.Guest{ID: uuid.New(), FullName: input.FullName, Email: input.Email, Phone: phone}
	insert := `
		INSERT INTO guests (id, full_name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	err = tx.QueryRowx(insert, guest.ID, guest.FullName, guest.Email, guest.Phone).
		Scan(&guest.CreatedAt, &guest.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return &guest, nil
}

func getGuestTx(tx *sqlx.Tx, id uuid.UUID) (*models.Guest, error) {
	var guest models.Guest
	err := tx.Get(&guest, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}
	return &guest, nil
}

// UpdateGuestTx overwrites the supplied guest fields inside an open
// transaction. Supplied values are full replacements (last-write-wins);
// absent fields keep their current value.
func UpdateGuestTx(tx *sqlx.Tx, guestID uuid.UUID, input models.GuestInput) (*models.Guest, error) {
	var guest models.Guest
	err := tx.Get(&guest, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest for update: %w", err)
	}

	if input.FullName != "" {
		guest.FullName = input.FullName
	}
	if input.Email != "" {
		guest.Email = input.Email
	}
	if input.Phone != nil {
		guest.Phone = *input.Phone
	}

	query := `
		UPDATE guests
		SET full_name = $1, email = $2, phone = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`
	if err := tx.QueryRowx(query, guest.FullName, guest.Email, guest.Phone, guest.ID).Scan(&guest.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update guest: %w", err)
	}
	return &guest, nil
}
