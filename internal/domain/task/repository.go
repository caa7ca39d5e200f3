package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/socialpay/socialpay-api/internal/pkg/database"
)

const (
	taskColumns       = `id, platform, task_type, link, currency, price, max_users, created_by, created_at`
	submissionColumns = `id, user_id, task_id, status, photo_url, submitted_at, processed_at, processed_by`
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateTask inserts t and fills its creation time.
func (r *Repository) CreateTask(ctx context.Context, t *Task) error {
	return r.db.GetContext(ctx, &t.CreatedAt, `
		INSERT INTO tasks (id, platform, task_type, link, currency, price, max_users, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, t.ID, t.Platform, t.TaskType, t.Link, t.Currency, t.Price, t.MaxUsers, t.CreatedBy)
}

func (r *Repository) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return r.getTask(ctx, r.db, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
}

// ShareTask reads a task inside tx and keeps it from being deleted until tx ends.
func (r *Repository) ShareTask(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Task, error) {
	return r.getTask(ctx, tx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR SHARE`, id)
}

// LockTask reads a task inside tx and serialises approvals against it.
func (r *Repository) LockTask(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Task, error) {
	return r.getTask(ctx, tx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) getTask(ctx context.Context, q sqlx.QueryerContext, query string, id uuid.UUID) (*Task, error) {
	var t Task
	err := sqlx.GetContext(ctx, q, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes a task. With a nil tx it runs on the pool.
func (r *Repository) DeleteTask(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	var ex sqlx.ExecerContext = r.db
	if tx != nil {
		ex = tx
	}
	res, err := ex.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ListAvailable returns tasks userID has not submitted yet, newest first.
func (r *Repository) ListAvailable(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Task, error) {
	tasks := []Task{}
	err := r.db.SelectContext(ctx, &tasks, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE NOT EXISTS (
			SELECT 1 FROM submissions s WHERE s.task_id = t.id AND s.user_id = $1
		)
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return tasks, err
}

// CreateSubmission inserts a pending submission.
func (r *Repository) CreateSubmission(ctx context.Context, tx *sqlx.Tx, s *Submission) error {
	err := tx.GetContext(ctx, &s.SubmittedAt, `
		INSERT INTO submissions (id, user_id, task_id, status, photo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING submitted_at
	`, s.ID, s.UserID, s.TaskID, s.Status, s.PhotoURL)
	if database.IsUniqueViolation(err) {
		return ErrAlreadySubmitted
	}
	return err
}

// LockSubmission reads a submission and holds its lock until tx ends.
func (r *Repository) LockSubmission(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Submission, error) {
	var s Submission
	err := tx.GetContext(ctx, &s, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FinishSubmission stores the review outcome of a locked submission.
func (r *Repository) FinishSubmission(ctx context.Context, tx *sqlx.Tx, s *Submission) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE submissions SET status = $1, processed_at = $2, processed_by = $3 WHERE id = $4
	`, s.Status, s.ProcessedAt, s.ProcessedBy, s.ID)
	return err
}

// ListPending returns the review queue, oldest first.
func (r *Repository) ListPending(ctx context.Context, limit, offset int) ([]PendingSubmission, error) {
	subs := []PendingSubmission{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT s.id, s.user_id, s.task_id, s.status, s.photo_url, s.submitted_at, s.processed_at, s.processed_by,
			u.name AS user_name, t.platform, t.task_type, t.price, t.currency
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN tasks t ON t.id = s.task_id
		WHERE s.status = 'pending'
		ORDER BY s.submitted_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return subs, err
}

// InsertCompletion records that userID completed taskID.
func (r *Repository) InsertCompletion(ctx context.Context, tx *sqlx.Tx, taskID, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO task_completions (task_id, user_id) VALUES ($1, $2)`, taskID, userID)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyProcessed
	}
	return err
}

// CountCompletions counts completions of taskID visible to tx.
func (r *Repository) CountCompletions(ctx context.Context, tx *sqlx.Tx, taskID uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM task_completions WHERE task_id = $1`, taskID)
	return n, err
}
