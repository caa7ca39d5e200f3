package admin

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository reads platform aggregates. All counts are full scans.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Statistics(ctx context.Context) (*Statistics, error) {
	var s Statistics
	err := r.db.GetContext(ctx, &s, `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE is_banned) AS banned_users,
			(SELECT COUNT(*) FROM tasks) AS active_tasks,
			(SELECT COALESCE(SUM(completed_tasks), 0) FROM wallets) AS completed_tasks,
			(SELECT COUNT(*) FROM submissions WHERE status = 'pending') AS pending_submissions,
			(SELECT COUNT(*) FROM withdrawals WHERE status = 'pending') AS pending_withdrawals,
			(SELECT COUNT(*) FROM exchanges WHERE status = 'pending') AS pending_exchanges,
			(SELECT COALESCE(SUM(naira), 0) FROM wallets) AS total_naira,
			(SELECT COALESCE(SUM(dollar), 0) FROM wallets) AS total_dollar
	`)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &s, nil
}
