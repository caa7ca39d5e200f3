package admin

import "github.com/shopspring/decimal"

// Action is what ManageUser does to an account.
type Action string

const (
	ActionBan           Action = "ban"
	ActionUnban         Action = "unban"
	ActionAdjustBalance Action = "adjust_balance"
)

// Statistics is the platform-wide snapshot shown on the admin dashboard.
type Statistics struct {
	TotalUsers         int             `db:"total_users" json:"total_users"`
	BannedUsers        int             `db:"banned_users" json:"banned_users"`
	ActiveTasks        int             `db:"active_tasks" json:"active_tasks"`
	CompletedTasks     int             `db:"completed_tasks" json:"completed_tasks"`
	PendingSubmissions int             `db:"pending_submissions" json:"pending_submissions"`
	PendingWithdrawals int             `db:"pending_withdrawals" json:"pending_withdrawals"`
	PendingExchanges   int             `db:"pending_exchanges" json:"pending_exchanges"`
	TotalNaira         decimal.Decimal `db:"total_naira" json:"total_naira"`
	TotalDollar        decimal.Decimal `db:"total_dollar" json:"total_dollar"`
}
