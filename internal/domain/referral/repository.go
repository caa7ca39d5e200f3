package referral

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const referralColumns = `id, referrer_id, referred_user_id, tasks_completed, reward_paid, joined_at, paid_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create records a referral at registration time.
func (r *Repository) Create(ctx context.Context, tx *sqlx.Tx, ref *Referral) error {
	return tx.GetContext(ctx, &ref.JoinedAt, `
		INSERT INTO referrals (id, referrer_id, referred_user_id)
		VALUES ($1, $2, $3)
		RETURNING joined_at
	`, ref.ID, ref.ReferrerID, ref.ReferredUserID)
}

// LockUnpaidByReferred returns the referred user's unpaid referral, locked
// for the rest of tx, or nil when there is none.
func (r *Repository) LockUnpaidByReferred(ctx context.Context, tx *sqlx.Tx, referredUserID uuid.UUID) (*Referral, error) {
	var ref Referral
	err := tx.GetContext(ctx, &ref, `
		SELECT `+referralColumns+`
		FROM referrals
		WHERE referred_user_id = $1 AND reward_paid = FALSE
		FOR UPDATE
	`, referredUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *Repository) Save(ctx context.Context, tx *sqlx.Tx, ref *Referral) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE referrals SET tasks_completed = $1, reward_paid = $2, paid_at = $3 WHERE id = $4
	`, ref.TasksCompleted, ref.RewardPaid, ref.PaidAt, ref.ID)
	return err
}

// ListByReferrer returns the users referrerID invited, oldest first.
func (r *Repository) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]Info, error) {
	infos := []Info{}
	err := r.db.SelectContext(ctx, &infos, `
		SELECT u.id AS user_id, u.name, r.tasks_completed, r.reward_paid, r.joined_at
		FROM referrals r
		JOIN users u ON u.id = r.referred_user_id
		WHERE r.referrer_id = $1
		ORDER BY r.joined_at
	`, referrerID)
	return infos, err
}
