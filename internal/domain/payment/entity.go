package payment

import (
	"time"

	"github.com/google/uuid"
)

// Details is where a user wants withdrawals paid out. Settlement itself
// is manual, so the content is free text read by admins.
type Details struct {
	UserID      uuid.UUID `db:"user_id" json:"-"`
	PaymentType string    `db:"payment_type" json:"payment_type"`
	Details     string    `db:"details" json:"details"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SetDetailsRequest for PUT /payment-details
type SetDetailsRequest struct {
	PaymentType string `json:"payment_type" validate:"required,max=32"`
	Details     string `json:"details" validate:"required,max=1000"`
}
