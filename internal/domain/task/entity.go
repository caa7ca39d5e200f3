package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/socialpay/socialpay-api/internal/domain/wallet"
)

// Status is the lifecycle state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Task is a paid micro-task. It is deleted once MaxUsers completions exist.
type Task struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Platform  string          `db:"platform" json:"platform"`
	TaskType  string          `db:"task_type" json:"type"`
	Link      string          `db:"link" json:"link"`
	Currency  wallet.Currency `db:"currency" json:"currency"`
	Price     decimal.Decimal `db:"price" json:"price"`
	MaxUsers  int             `db:"max_users" json:"max_users"`
	CreatedBy uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Submission is a user's evidence of having done a task.
type Submission struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	TaskID      uuid.UUID  `db:"task_id" json:"task_id"`
	Status      Status     `db:"status" json:"status"`
	PhotoURL    string     `db:"photo_url" json:"photo_url"`
	SubmittedAt time.Time  `db:"submitted_at" json:"submitted_at"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	ProcessedBy *uuid.UUID `db:"processed_by" json:"processed_by,omitempty"`
}

// IsPending reports whether the submission still awaits review.
func (s *Submission) IsPending() bool {
	return s.Status == StatusPending
}

// PendingSubmission is the admin review queue row. Task fields are empty
// when the task has already been deleted.
type PendingSubmission struct {
	Submission
	UserName string              `db:"user_name" json:"user_name"`
	Platform *string             `db:"platform" json:"platform"`
	TaskType *string             `db:"task_type" json:"task_type"`
	Price    decimal.NullDecimal `db:"price" json:"price"`
	Currency *string             `db:"currency" json:"currency"`
}

// ReviewResult describes what an approval or rejection changed.
type ReviewResult struct {
	Submission   *Submission `json:"submission"`
	ReferralPaid bool        `json:"referral_paid"`
	TaskClosed   bool        `json:"task_closed"`
}
