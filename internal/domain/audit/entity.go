package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	TypeP2PTransfer      EntryType = "p2p_transfer"
	TypeTransferReversal EntryType = "transfer_reversal"
	TypeAdminAdjustment  EntryType = "admin_adjustment"
)

type Status string

const (
	StatusSuccess  Status = "success"
	StatusReversed Status = "reversed"
)

// Entry is one append-only row of the transfer audit log. Only Status ever
// changes, and only from success to reversed.
//
// Admin adjustments set ToUser for a credit and FromUser for a debit.
type Entry struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Type       EntryType       `db:"type" json:"type"`
	FromUser   *uuid.UUID      `db:"from_user" json:"from_user,omitempty"`
	ToUser     *uuid.UUID      `db:"to_user" json:"to_user,omitempty"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Currency   string          `db:"currency" json:"currency"`
	Status     Status          `db:"status" json:"status"`
	Reason     *string         `db:"reason" json:"reason,omitempty"`
	AdminID    *uuid.UUID      `db:"admin_id" json:"admin_id,omitempty"`
	ReversesID *uuid.UUID      `db:"reverses_id" json:"reverses_id,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Reversible reports whether the entry is a live peer transfer.
func (e *Entry) Reversible() bool {
	return e.Type == TypeP2PTransfer && e.Status == StatusSuccess
}

// Filter narrows admin audit listings.
type Filter struct {
	Type   EntryType
	UserID *uuid.UUID
}
