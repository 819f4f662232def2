package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sannchesda/hotel-reservation-backend/internal/models"
)

// PaymentRepository handles payment database operations. The provider_ref
// column is the idempotency ledger: a payment whose provider_ref equals a
// client token uniquely identifies the booking created for that token.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, amount_cents, status, provider_ref, created_at, updated_at`

// GetPaymentByProviderRef resolves a client token to the payment created for
// it, or nil when the token has never been used. This is the fast-path
// idempotency lookup performed before any lock is taken.
func (r *PaymentRepository) GetPaymentByProviderRef(providerRef string) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_ref = $1`
	err := r.db.Get(&payment, query, providerRef)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment by provider ref: %w", err)
	}
	return &payment, nil
}

// getPaymentByProviderRefTx is the in-transaction variant of the token
// lookup, re-run inside the reservation critical section to close the
// window between the outer check and the authoritative create.
func getPaymentByProviderRefTx(tx *sqlx.Tx, providerRef string) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_ref = $1`
	err := tx.Get(&payment, query, providerRef)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to re-check provider ref: %w", err)
	}
	return &payment, nil
}
