package withdrawal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	withdrawalColumns = `id, user_id, currency, amount, fee, total, status, requested_at, processed_at, processed_by`
	exchangeColumns   = `id, user_id, exchange_type, amount, received_amount, status, requested_at, completed_at, processed_by`
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithdrawal inserts w inside the transaction that debits its total.
func (r *Repository) CreateWithdrawal(ctx context.Context, tx *sqlx.Tx, w *Withdrawal) error {
	return tx.GetContext(ctx, &w.RequestedAt, `
		INSERT INTO withdrawals (id, user_id, currency, amount, fee, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING requested_at
	`, w.ID, w.UserID, w.Currency, w.Amount, w.Fee, w.Total, w.Status)
}

// LockWithdrawal reads a withdrawal and holds its lock until tx ends.
func (r *Repository) LockWithdrawal(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Withdrawal, error) {
	var w Withdrawal
	err := tx.GetContext(ctx, &w, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) FinishWithdrawal(ctx context.Context, tx *sqlx.Tx, w *Withdrawal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE withdrawals SET status = $1, processed_at = $2, processed_by = $3 WHERE id = $4
	`, w.Status, w.ProcessedAt, w.ProcessedBy, w.ID)
	return err
}

func (r *Repository) ListWithdrawals(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Withdrawal, error) {
	items := []Withdrawal{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+withdrawalColumns+`
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY requested_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return items, err
}

// ListPendingWithdrawals returns the review queue, oldest first.
func (r *Repository) ListPendingWithdrawals(ctx context.Context, limit, offset int) ([]PendingWithdrawal, error) {
	items := []PendingWithdrawal{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT w.id, w.user_id, w.currency, w.amount, w.fee, w.total, w.status, w.requested_at,
			w.processed_at, w.processed_by, u.name AS user_name,
			p.payment_type, p.details AS payment_details
		FROM withdrawals w
		JOIN users u ON u.id = w.user_id
		LEFT JOIN payment_details p ON p.user_id = w.user_id
		WHERE w.status = 'pending'
		ORDER BY w.requested_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return items, err
}

func (r *Repository) CreateExchange(ctx context.Context, e *Exchange) error {
	return r.db.GetContext(ctx, &e.RequestedAt, `
		INSERT INTO exchanges (id, user_id, exchange_type, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING requested_at
	`, e.ID, e.UserID, e.ExchangeType, e.Amount, e.Status)
}

// LockExchange reads an exchange and holds its lock until tx ends.
func (r *Repository) LockExchange(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Exchange, error) {
	var e Exchange
	err := tx.GetContext(ctx, &e, `SELECT `+exchangeColumns+` FROM exchanges WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExchangeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) FinishExchange(ctx context.Context, tx *sqlx.Tx, e *Exchange) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE exchanges SET status = $1, received_amount = $2, completed_at = $3, processed_by = $4 WHERE id = $5
	`, e.Status, e.ReceivedAmount, e.CompletedAt, e.ProcessedBy, e.ID)
	return err
}

func (r *Repository) ListExchanges(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Exchange, error) {
	items := []Exchange{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+exchangeColumns+`
		FROM exchanges
		WHERE user_id = $1
		ORDER BY requested_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return items, err
}

// ListPendingExchanges returns the review queue, oldest first.
func (r *Repository) ListPendingExchanges(ctx context.Context, limit, offset int) ([]PendingExchange, error) {
	items := []PendingExchange{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT e.id, e.user_id, e.exchange_type, e.amount, e.received_amount, e.status, e.requested_at,
			e.completed_at, e.processed_by, u.name AS user_name
		FROM exchanges e
		JOIN users u ON u.id = e.user_id
		WHERE e.status = 'pending'
		ORDER BY e.requested_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return items, err
}
