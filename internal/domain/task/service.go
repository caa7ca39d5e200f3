package task

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/socialpay/socialpay-api/internal/domain/referral"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/pkg/database"
	"github.com/socialpay/socialpay-api/internal/pkg/imaging"
	"github.com/socialpay/socialpay-api/internal/pkg/metrics"
	"github.com/socialpay/socialpay-api/internal/pkg/storage"
)

type Service struct {
	db        *sqlx.DB
	repo      *Repository
	users     *user.Repository
	wallets   *wallet.Repository
	referrals *referral.Service
	evidence  storage.Storage
	images    *imaging.Processor
	now       func() time.Time
}

func NewService(db *sqlx.DB, repo *Repository, users *user.Repository, wallets *wallet.Repository,
	referrals *referral.Service, evidence storage.Storage, images *imaging.Processor) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		users:     users,
		wallets:   wallets,
		referrals: referrals,
		evidence:  evidence,
		images:    images,
		now:       time.Now,
	}
}

// CreateTask publishes a new task on behalf of adminID.
func (s *Service) CreateTask(ctx context.Context, adminID uuid.UUID, req CreateTaskRequest) (*Task, error) {
	currency, err := wallet.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if err := wallet.ValidateAmount(req.Price); err != nil {
		return nil, err
	}

	t := &Task{
		ID:        uuid.New(),
		Platform:  req.Platform,
		TaskType:  req.Type,
		Link:      req.Link,
		Currency:  currency,
		Price:     req.Price,
		MaxUsers:  req.MaxUsers,
		CreatedBy: adminID,
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	log.Info().
		Str("task_id", t.ID.String()).
		Str("admin_id", adminID.String()).
		Str("price", t.Price.String()).
		Str("currency", string(t.Currency)).
		Int("max_users", t.MaxUsers).
		Msg("task created")
	return t, nil
}

// DeleteTask removes a task. Pending submissions against it can still be rejected.
func (s *Service) DeleteTask(ctx context.Context, adminID, taskID uuid.UUID) error {
	if err := s.repo.DeleteTask(ctx, nil, taskID); err != nil {
		return err
	}
	log.Info().Str("task_id", taskID.String()).Str("admin_id", adminID.String()).Msg("task deleted")
	return nil
}

// ListTasks returns the tasks userID can still submit.
func (s *Service) ListTasks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Task, error) {
	return s.repo.ListAvailable(ctx, userID, limit, offset)
}

// ListPending returns submissions awaiting review.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]PendingSubmission, error) {
	return s.repo.ListPending(ctx, limit, offset)
}

// Submit stores the photo evidence and records a pending submission for
// taskID, counting it in the user's pending tasks. The stored ban flag is
// re-read in the transaction since the caller's token may predate a ban.
func (s *Service) Submit(ctx context.Context, userID, taskID uuid.UUID, photo io.Reader) (*Submission, error) {
	if _, err := s.repo.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	data, _, err := storage.ValidateFile(photo, storage.AllowedEvidenceTypes, storage.MaxEvidenceSize)
	if err != nil {
		return nil, err
	}
	ev, err := s.images.Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvidence, err)
	}

	sub := &Submission{
		ID:     uuid.New(),
		UserID: userID,
		TaskID: taskID,
		Status: StatusPending,
	}
	key := fmt.Sprintf("submissions/%s/%s%s", userID, sub.ID, storage.GetExtensionForMime(ev.ContentType))
	if err := s.evidence.Save(ctx, key, bytes.NewReader(ev.Data), ev.ContentType); err != nil {
		return nil, fmt.Errorf("store evidence: %w", err)
	}
	sub.PhotoURL = s.evidence.GetURL(key)

	err = database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		u, err := s.users.GetByIDTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if u.IsBanned {
			return user.ErrUserBanned
		}
		if _, err := s.repo.ShareTask(ctx, tx, taskID); err != nil {
			return err
		}
		if err := s.repo.CreateSubmission(ctx, tx, sub); err != nil {
			return err
		}
		w, err := s.wallets.LockForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		w.BeginTask()
		return s.wallets.Save(ctx, tx, w)
	})
	metrics.RecordOperation("task_submit", err)
	if err != nil {
		if delErr := s.evidence.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned evidence")
		}
		return nil, err
	}

	log.Info().
		Str("submission_id", sub.ID.String()).
		Str("user_id", userID.String()).
		Str("task_id", taskID.String()).
		Msg("task submitted")
	return sub, nil
}

// Review approves or rejects a pending submission in one transaction.
// Approval pays the task price, records the completion, advances the
// user's referral and closes the task once it is full. Rejection only
// releases the pending counter.
func (s *Service) Review(ctx context.Context, adminID, submissionID uuid.UUID, approve bool) (*ReviewResult, error) {
	var (
		result *ReviewResult
		task   *Task
	)

	err := database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		sub, err := s.repo.LockSubmission(ctx, tx, submissionID)
		if err != nil {
			return err
		}
		if !sub.IsPending() {
			return ErrAlreadyProcessed
		}

		result = &ReviewResult{Submission: sub}
		task = nil
		if approve {
			task, err = s.repo.LockTask(ctx, tx, sub.TaskID)
			if err != nil {
				return err
			}
		}

		w, err := s.wallets.LockForUpdate(ctx, tx, sub.UserID)
		if err != nil {
			return err
		}

		if approve {
			if err := s.approve(ctx, tx, w, sub, task, result); err != nil {
				return err
			}
			sub.Status = StatusApproved
		} else {
			if err := w.DropPendingTask(); err != nil {
				return err
			}
			if err := s.wallets.Save(ctx, tx, w); err != nil {
				return err
			}
			sub.Status = StatusRejected
		}

		now := s.now()
		sub.ProcessedAt = &now
		sub.ProcessedBy = &adminID
		return s.repo.FinishSubmission(ctx, tx, sub)
	})

	op := "task_reject"
	if approve {
		op = "task_approve"
	}
	metrics.RecordOperation(op, err)
	if err != nil {
		return nil, err
	}

	event := log.Info().
		Str("submission_id", submissionID.String()).
		Str("user_id", result.Submission.UserID.String()).
		Str("admin_id", adminID.String()).
		Str("status", string(result.Submission.Status))
	if task != nil {
		metrics.RecordVolume(op, string(task.Currency), task.Price)
		event = event.
			Str("amount", task.Price.String()).
			Str("currency", string(task.Currency)).
			Bool("referral_paid", result.ReferralPaid).
			Bool("task_closed", result.TaskClosed)
	}
	event.Msg("submission reviewed")
	return result, nil
}

func (s *Service) approve(ctx context.Context, tx *sqlx.Tx, w *wallet.Wallet, sub *Submission, task *Task, result *ReviewResult) error {
	if err := w.CompleteTask(task.Currency, task.Price); err != nil {
		return err
	}
	if err := s.wallets.Save(ctx, tx, w); err != nil {
		return err
	}
	if err := s.repo.InsertCompletion(ctx, tx, task.ID, sub.UserID); err != nil {
		return err
	}

	paid, err := s.referrals.RecordApprovedTask(ctx, tx, sub.UserID)
	if err != nil {
		return err
	}
	result.ReferralPaid = paid

	n, err := s.repo.CountCompletions(ctx, tx, task.ID)
	if err != nil {
		return fmt.Errorf("count completions: %w", err)
	}
	if n >= task.MaxUsers {
		if err := s.repo.DeleteTask(ctx, tx, task.ID); err != nil {
			return err
		}
		result.TaskClosed = true
	}
	return nil
}
