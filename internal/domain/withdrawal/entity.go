package withdrawal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/socialpay/socialpay-api/internal/domain/wallet"
)

// Status of a withdrawal: pending until an admin approves or cancels it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCancelled Status = "cancelled"
)

// Withdrawal is a payout request. Total (amount plus fee) leaves the wallet
// when the request is made and comes back only on cancellation.
type Withdrawal struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Currency    wallet.Currency `db:"currency" json:"currency"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Fee         decimal.Decimal `db:"fee" json:"fee"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Status      Status          `db:"status" json:"status"`
	RequestedAt time.Time       `db:"requested_at" json:"requested_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	ProcessedBy *uuid.UUID      `db:"processed_by" json:"processed_by,omitempty"`
}

// PendingWithdrawal is a review queue row with the payout destination.
type PendingWithdrawal struct {
	Withdrawal
	UserName       string  `db:"user_name" json:"user_name"`
	PaymentType    *string `db:"payment_type" json:"payment_type"`
	PaymentDetails *string `db:"payment_details" json:"payment_details"`
}

// ExchangeType is the conversion direction.
type ExchangeType string

const (
	NairaToDollar ExchangeType = "naira_to_dollar"
	DollarToNaira ExchangeType = "dollar_to_naira"
)

// ParseExchangeType validates a direction.
func ParseExchangeType(s string) (ExchangeType, error) {
	switch ExchangeType(s) {
	case NairaToDollar, DollarToNaira:
		return ExchangeType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidExchangeType, s)
}

// Source is the currency debited.
func (t ExchangeType) Source() wallet.Currency {
	if t == DollarToNaira {
		return wallet.Dollar
	}
	return wallet.Naira
}

// Target is the currency credited.
func (t ExchangeType) Target() wallet.Currency {
	if t == DollarToNaira {
		return wallet.Naira
	}
	return wallet.Dollar
}

// ExchangeStatus of an exchange. There is no rejection path.
type ExchangeStatus string

const (
	ExchangePending   ExchangeStatus = "pending"
	ExchangeCompleted ExchangeStatus = "completed"
)

// Exchange is a currency conversion settled by an admin at an external
// rate. Nothing moves until completion.
type Exchange struct {
	ID             uuid.UUID           `db:"id" json:"id"`
	UserID         uuid.UUID           `db:"user_id" json:"user_id"`
	ExchangeType   ExchangeType        `db:"exchange_type" json:"exchange_type"`
	Amount         decimal.Decimal     `db:"amount" json:"amount"`
	ReceivedAmount decimal.NullDecimal `db:"received_amount" json:"received_amount"`
	Status         ExchangeStatus      `db:"status" json:"status"`
	RequestedAt    time.Time           `db:"requested_at" json:"requested_at"`
	CompletedAt    *time.Time          `db:"completed_at" json:"completed_at,omitempty"`
	ProcessedBy    *uuid.UUID          `db:"processed_by" json:"processed_by,omitempty"`
}

// PendingExchange is a review queue row.
type PendingExchange struct {
	Exchange
	UserName string `db:"user_name" json:"user_name"`
}
