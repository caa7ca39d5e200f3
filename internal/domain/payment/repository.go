package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores d, replacing any previous details of the user.
func (r *Repository) Upsert(ctx context.Context, d *Details) error {
	return r.db.GetContext(ctx, &d.UpdatedAt, `
		INSERT INTO payment_details (user_id, payment_type, details)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET payment_type = EXCLUDED.payment_type, details = EXCLUDED.details, updated_at = now()
		RETURNING updated_at
	`, d.UserID, d.PaymentType, d.Details)
}

func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*Details, error) {
	var d Details
	err := r.db.GetContext(ctx, &d, `
		SELECT user_id, payment_type, details, updated_at FROM payment_details WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDetailsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
