package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const walletColumns = `user_id, naira, dollar, completed_tasks, pending_tasks,
	referral_count, referral_naira, referral_dollar, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create opens an empty wallet for a newly registered user.
func (r *Repository) Create(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO wallets (user_id) VALUES ($1)`, userID)
	return err
}

func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LockForUpdate reads the wallet row and holds its lock until tx ends.
func (r *Repository) LockForUpdate(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := tx.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LockPair locks two distinct wallets in ascending id order, so concurrent
// callers touching the same pair never deadlock, and returns them in argument order.
func (r *Repository) LockPair(ctx context.Context, tx *sqlx.Tx, a, b uuid.UUID) (*Wallet, *Wallet, error) {
	first, second := a, b
	if second.String() < first.String() {
		first, second = second, first
	}

	wFirst, err := r.LockForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, err
	}
	wSecond, err := r.LockForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, err
	}

	if first == a {
		return wFirst, wSecond, nil
	}
	return wSecond, wFirst, nil
}

// Save writes back every mutable field of a wallet locked in tx.
func (r *Repository) Save(ctx context.Context, tx *sqlx.Tx, w *Wallet) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET naira = $1, dollar = $2, completed_tasks = $3, pending_tasks = $4,
			referral_count = $5, referral_naira = $6, referral_dollar = $7, updated_at = now()
		WHERE user_id = $8
	`, w.Naira, w.Dollar, w.CompletedTasks, w.PendingTasks,
		w.ReferralCount, w.ReferralNaira, w.ReferralDollar, w.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%w: saving wallet %s touched %d rows", ErrInvariantViolation, w.UserID, n)
	}
	return nil
}
