package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/socialpay/socialpay-api/internal/pkg/database"
)

const userColumns = `id, name, email, phone, password_hash, role, is_verified, is_banned, referrer_id, created_at`

// Repository is the users table.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts u inside tx.
func (r *Repository) Create(ctx context.Context, tx *sqlx.Tx, u *User) error {
	err := tx.GetContext(ctx, &u.CreatedAt, `
		INSERT INTO users (id, name, email, phone, password_hash, role, is_verified, is_banned, referrer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.IsVerified, u.IsBanned, u.ReferrerID)
	if database.IsUniqueViolation(err) {
		return ErrIdentityTaken
	}
	return err
}

// GetByID returns a user by id
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.get(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByIDTx reads a user inside tx, sharing the row so it cannot be banned mid-transaction.
func (r *Repository) GetByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*User, error) {
	return r.get(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR SHARE`, id)
}

// GetByIdentifier looks a user up by email or phone.
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return r.get(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE email = $1 OR phone = $1 LIMIT 1`, identifier)
}

func (r *Repository) get(ctx context.Context, q sqlx.QueryerContext, query string, arg interface{}) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, q, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetBanned toggles the ban flag.
func (r *Repository) SetBanned(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, banned bool) error {
	res, err := tx.ExecContext(ctx, `UPDATE users SET is_banned = $1 WHERE id = $2`, banned, id)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns users newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]User, error) {
	users := []User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return users, err
}
