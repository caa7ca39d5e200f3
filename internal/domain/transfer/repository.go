package transfer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/socialpay/socialpay-api/internal/pkg/database"
)

// PinRepository is the user_pins table.
type PinRepository struct {
	db *sqlx.DB
}

func NewPinRepository(db *sqlx.DB) *PinRepository {
	return &PinRepository{db: db}
}

// Create stores the first PIN of a user.
func (r *PinRepository) Create(ctx context.Context, userID uuid.UUID, hash string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_pins (user_id, pin_hash) VALUES ($1, $2)`, userID, hash)
	if database.IsUniqueViolation(err) {
		return ErrPinAlreadySet
	}
	return err
}

func (r *PinRepository) Get(ctx context.Context, userID uuid.UUID) (*Pin, error) {
	var p Pin
	err := r.db.GetContext(ctx, &p, `SELECT user_id, pin_hash, created_at FROM user_pins WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPinNotSet
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the PIN, reporting whether one existed.
func (r *PinRepository) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_pins WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// LimitRepository is the per-day transfer counter.
type LimitRepository struct {
	db *sqlx.DB
}

func NewLimitRepository(db *sqlx.DB) *LimitRepository {
	return &LimitRepository{db: db}
}

// Increment bumps the sender's counter for day and returns the new value.
// The counter row stays locked until tx ends, so concurrent transfers of
// the same sender are counted one after another.
func (r *LimitRepository) Increment(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, day time.Time) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, `
		INSERT INTO transfer_limits (user_id, day, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET count = transfer_limits.count + 1
		RETURNING count
	`, userID, day.Format("2006-01-02"))
	return n, err
}

// DeleteBefore drops counters for days earlier than day.
func (r *LimitRepository) DeleteBefore(ctx context.Context, day time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transfer_limits WHERE day < $1`, day.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
