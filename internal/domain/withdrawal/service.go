package withdrawal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/socialpay/socialpay-api/internal/config"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/pkg/database"
	"github.com/socialpay/socialpay-api/internal/pkg/metrics"
)

type Service struct {
	db      *sqlx.DB
	repo    *Repository
	wallets *wallet.Repository
	users   *user.Repository
	policy  config.Policy
	now     func() time.Time
}

func NewService(db *sqlx.DB, repo *Repository, wallets *wallet.Repository, users *user.Repository, policy config.Policy) *Service {
	return &Service{db: db, repo: repo, wallets: wallets, users: users, policy: policy, now: time.Now}
}

// RequestWithdrawal holds amount plus the flat fee out of the wallet and
// queues the payout for review.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uuid.UUID, req WithdrawalRequest) (*Withdrawal, error) {
	currency, err := wallet.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if err := wallet.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	minimum, _ := s.policy.MinWithdrawal(string(currency))
	if req.Amount.LessThan(minimum) {
		return nil, fmt.Errorf("%w: minimum is %s %s", ErrBelowMinimum, minimum.StringFixed(2), currency)
	}
	fee, _ := s.policy.WithdrawalFee(string(currency))

	wd := &Withdrawal{
		ID:       uuid.New(),
		UserID:   userID,
		Currency: currency,
		Amount:   req.Amount,
		Fee:      fee,
		Total:    req.Amount.Add(fee),
		Status:   StatusPending,
	}

	err = database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.ensureActive(ctx, tx, userID); err != nil {
			return err
		}
		w, err := s.wallets.LockForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := w.Debit(currency, wd.Total); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, tx, w); err != nil {
			return err
		}
		return s.repo.CreateWithdrawal(ctx, tx, wd)
	})
	metrics.RecordOperation("withdrawal_request", err)
	if err != nil {
		return nil, err
	}
	metrics.RecordVolume("withdrawal_request", string(currency), wd.Total)

	log.Info().
		Str("withdrawal_id", wd.ID.String()).
		Str("user_id", userID.String()).
		Str("amount", wd.Amount.String()).
		Str("fee", wd.Fee.String()).
		Str("currency", string(currency)).
		Msg("withdrawal requested")
	return wd, nil
}

// ReviewWithdrawal approves a pending withdrawal, which moves no money, or
// cancels it and refunds the held total.
func (s *Service) ReviewWithdrawal(ctx context.Context, adminID, withdrawalID uuid.UUID, approve bool) (*Withdrawal, error) {
	var wd *Withdrawal
	err := database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		wd, err = s.repo.LockWithdrawal(ctx, tx, withdrawalID)
		if err != nil {
			return err
		}
		if wd.Status != StatusPending {
			return ErrAlreadyProcessed
		}

		if approve {
			wd.Status = StatusApproved
		} else {
			w, err := s.wallets.LockForUpdate(ctx, tx, wd.UserID)
			if err != nil {
				return err
			}
			if err := w.Credit(wd.Currency, wd.Total); err != nil {
				return err
			}
			if err := s.wallets.Save(ctx, tx, w); err != nil {
				return err
			}
			wd.Status = StatusCancelled
		}

		now := s.now()
		wd.ProcessedAt = &now
		wd.ProcessedBy = &adminID
		return s.repo.FinishWithdrawal(ctx, tx, wd)
	})
	metrics.RecordOperation("withdrawal_review", err)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("withdrawal_id", wd.ID.String()).
		Str("user_id", wd.UserID.String()).
		Str("admin_id", adminID.String()).
		Str("total", wd.Total.String()).
		Str("currency", string(wd.Currency)).
		Str("status", string(wd.Status)).
		Msg("withdrawal reviewed")
	return wd, nil
}

// RequestExchange queues a conversion. The balance is checked now but
// only debited on completion.
func (s *Service) RequestExchange(ctx context.Context, userID uuid.UUID, req ExchangeRequest) (*Exchange, error) {
	kind, err := ParseExchangeType(req.ExchangeType)
	if err != nil {
		return nil, err
	}
	if err := wallet.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsBanned {
		return nil, user.ErrUserBanned
	}
	w, err := s.wallets.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.Balance(kind.Source()).LessThan(req.Amount) {
		return nil, wallet.ErrInsufficientBalance
	}

	ex := &Exchange{
		ID:           uuid.New(),
		UserID:       userID,
		ExchangeType: kind,
		Amount:       req.Amount,
		Status:       ExchangePending,
	}
	if err := s.repo.CreateExchange(ctx, ex); err != nil {
		return nil, fmt.Errorf("create exchange: %w", err)
	}

	log.Info().
		Str("exchange_id", ex.ID.String()).
		Str("user_id", userID.String()).
		Str("exchange_type", string(kind)).
		Str("amount", ex.Amount.String()).
		Msg("exchange requested")
	return ex, nil
}

// CompleteExchange debits the source currency by the requested amount and
// credits the target with received, the amount settled externally. The
// exchange stays pending when the funds are no longer there.
func (s *Service) CompleteExchange(ctx context.Context, adminID, exchangeID uuid.UUID, received decimal.Decimal) (*Exchange, error) {
	if err := wallet.ValidateAmount(received); err != nil {
		return nil, err
	}

	var ex *Exchange
	err := database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		ex, err = s.repo.LockExchange(ctx, tx, exchangeID)
		if err != nil {
			return err
		}
		if ex.Status != ExchangePending {
			return ErrAlreadyProcessed
		}

		w, err := s.wallets.LockForUpdate(ctx, tx, ex.UserID)
		if err != nil {
			return err
		}
		if err := w.Debit(ex.ExchangeType.Source(), ex.Amount); err != nil {
			return err
		}
		if err := w.Credit(ex.ExchangeType.Target(), received); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, tx, w); err != nil {
			return err
		}

		now := s.now()
		ex.Status = ExchangeCompleted
		ex.ReceivedAmount = decimal.NewNullDecimal(received)
		ex.CompletedAt = &now
		ex.ProcessedBy = &adminID
		return s.repo.FinishExchange(ctx, tx, ex)
	})
	metrics.RecordOperation("exchange_complete", err)
	if err != nil {
		return nil, err
	}
	metrics.RecordVolume("exchange_complete", string(ex.ExchangeType.Source()), ex.Amount)

	log.Info().
		Str("exchange_id", ex.ID.String()).
		Str("user_id", ex.UserID.String()).
		Str("admin_id", adminID.String()).
		Str("exchange_type", string(ex.ExchangeType)).
		Str("amount", ex.Amount.String()).
		Str("received_amount", received.String()).
		Msg("exchange completed")
	return ex, nil
}

func (s *Service) ListWithdrawals(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Withdrawal, error) {
	return s.repo.ListWithdrawals(ctx, userID, limit, offset)
}

func (s *Service) ListPendingWithdrawals(ctx context.Context, limit, offset int) ([]PendingWithdrawal, error) {
	return s.repo.ListPendingWithdrawals(ctx, limit, offset)
}

func (s *Service) ListExchanges(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Exchange, error) {
	return s.repo.ListExchanges(ctx, userID, limit, offset)
}

func (s *Service) ListPendingExchanges(ctx context.Context, limit, offset int) ([]PendingExchange, error) {
	return s.repo.ListPendingExchanges(ctx, limit, offset)
}

func (s *Service) ensureActive(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	u, err := s.users.GetByIDTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	if u.IsBanned {
		return user.ErrUserBanned
	}
	return nil
}
