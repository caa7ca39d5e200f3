package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const entryColumns = `id, type, from_user, to_user, amount, currency, status, reason, admin_id, reverses_id, created_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends e inside tx. A zero ID is replaced by a fresh one.
func (r *Repository) Insert(ctx context.Context, tx *sqlx.Tx, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := tx.GetContext(ctx, &e.CreatedAt, `
		INSERT INTO transfer_audit (id, type, from_user, to_user, amount, currency, status, reason, admin_id, reverses_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, e.ID, e.Type, e.FromUser, e.ToUser, e.Amount, e.Currency, e.Status, e.Reason, e.AdminID, e.ReversesID)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// LockForUpdate reads an entry and holds its row lock until tx ends.
func (r *Repository) LockForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Entry, error) {
	var e Entry
	err := tx.GetContext(ctx, &e, `SELECT `+entryColumns+` FROM transfer_audit WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// MarkReversed flips a success entry to reversed. It reports false when the
// entry was not in success state.
func (r *Repository) MarkReversed(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transfer_audit SET status = $1 WHERE id = $2 AND status = $3
	`, StatusReversed, id, StatusSuccess)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ListForUser returns entries the user sent or received, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT `+entryColumns+`
		FROM transfer_audit
		WHERE from_user = $1 OR to_user = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return entries, err
}

// List returns entries matching f, newest first.
func (r *Repository) List(ctx context.Context, f Filter, limit, offset int) ([]Entry, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("(from_user = $%d OR to_user = $%d)", len(args), len(args)))
	}

	query := `SELECT ` + entryColumns + ` FROM transfer_audit`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, query, args...)
	return entries, err
}
