package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pin is the hashed 4-digit code that gates outgoing transfers. Users
// create it once; only an admin reset removes it.
type Pin struct {
	UserID    uuid.UUID `db:"user_id"`
	PinHash   string    `db:"pin_hash"`
	CreatedAt time.Time `db:"created_at"`
}

// CreatePinRequest for POST /pin
type CreatePinRequest struct {
	Pin string `json:"pin" validate:"required,pin"`
}

// TransferRequest for POST /transfers
type TransferRequest struct {
	ReceiverID uuid.UUID       `json:"receiver_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"money"`
	Pin        string          `json:"pin" validate:"required,pin"`
}

// ReverseRequest for POST /admin/transfers/{id}/reverse
type ReverseRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
