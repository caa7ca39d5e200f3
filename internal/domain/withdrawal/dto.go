package withdrawal

import "github.com/shopspring/decimal"

// WithdrawalRequest for POST /withdrawals
type WithdrawalRequest struct {
	Currency string          `json:"currency" validate:"required,currency"`
	Amount   decimal.Decimal `json:"amount" validate:"money"`
}

// ReviewRequest for POST /admin/withdrawals/{id}/review
type ReviewRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// ExchangeRequest for POST /exchanges
type ExchangeRequest struct {
	ExchangeType string          `json:"exchange_type" validate:"required,exchange_type"`
	Amount       decimal.Decimal `json:"amount" validate:"money"`
}

// CompleteExchangeRequest for POST /admin/exchanges/{id}/complete
type CompleteExchangeRequest struct {
	ReceivedAmount decimal.Decimal `json:"received_amount" validate:"money"`
}
