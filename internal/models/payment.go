package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the lifecycle state of a payment.
// Matches PostgreSQL ENUM: payment_status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"  // Awaiting the gateway signal
	PaymentStatusPaid     PaymentStatus = "PAID"     // Gateway reported success
	PaymentStatusFailed   PaymentStatus = "FAILED"   // Gateway reported failure; booking stays PENDING
	PaymentStatusRefunded PaymentStatus = "REFUNDED" // Cancellation of a PAID booking
)

// Payment is the single payment record paired 1:1 with a booking, created in
// the same transaction as the booking itself. provider_ref holds the client
// idempotency token at creation and may later be overwritten with the real
// gateway reference on confirmation.
type Payment struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	BookingID   uuid.UUID     `json:"booking_id" db:"booking_id"`
	AmountCents int64         `json:"amount_cents" db:"amount_cents"`
	Status      PaymentStatus `json:"status" db:"status"`
	ProviderRef string        `json:"provider_ref" db:"provider_ref"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// MarshalJSON adds the derived amount_dollar field.
func (p Payment) MarshalJSON() ([]byte, error) {
	type alias Payment
	return json.Marshal(struct {
		alias
		AmountDollar float64 `json:"amount_dollar"`
	}{
		alias:        alias(p),
		AmountDollar: float64(p.AmountCents) / 100.0,
	})
}

// ConfirmPaymentRequest is the simulated gateway signal: a boolean outcome
// plus an optional provider reference recorded on success.
type ConfirmPaymentRequest struct {
	Success     bool    `json:"success"`
	ProviderRef *string `json:"provider_ref,omitempty"`
}
