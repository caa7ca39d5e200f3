package admin

import (
	"github.com/shopspring/decimal"

	"github.com/socialpay/socialpay-api/internal/domain/audit"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
)

// ManageUserRequest for POST /admin/users/{id}/manage. Amount and Currency
// are only read for adjust_balance; a negative amount debits.
type ManageUserRequest struct {
	Action   Action           `json:"action" validate:"required,manage_action"`
	Amount   *decimal.Decimal `json:"amount" validate:"omitempty,signed_money"`
	Currency string           `json:"currency" validate:"omitempty,currency"`
	Reason   string           `json:"reason" validate:"max=500"`
}

// ManageUserResponse reports the account state after the action.
type ManageUserResponse struct {
	Action   Action         `json:"action"`
	IsBanned *bool          `json:"is_banned,omitempty"`
	Wallet   *wallet.Wallet `json:"wallet,omitempty"`
	Audit    *audit.Entry   `json:"audit,omitempty"`
}
