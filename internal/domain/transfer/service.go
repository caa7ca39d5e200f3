package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/socialpay/socialpay-api/internal/config"
	"github.com/socialpay/socialpay-api/internal/domain/audit"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/pkg/database"
	"github.com/socialpay/socialpay-api/internal/pkg/metrics"
	"github.com/socialpay/socialpay-api/internal/pkg/password"
)

type Service struct {
	db       *sqlx.DB
	pins     *PinRepository
	limits   *LimitRepository
	wallets  *wallet.Repository
	users    *user.Repository
	audits   *audit.Repository
	attempts AttemptTracker
	policy   config.Policy
	now      func() time.Time
}

func NewService(db *sqlx.DB, pins *PinRepository, limits *LimitRepository, wallets *wallet.Repository,
	users *user.Repository, audits *audit.Repository, attempts AttemptTracker, policy config.Policy) *Service {
	return &Service{
		db:       db,
		pins:     pins,
		limits:   limits,
		wallets:  wallets,
		users:    users,
		audits:   audits,
		attempts: attempts,
		policy:   policy,
		now:      time.Now,
	}
}

// CreatePin sets the caller's transaction PIN. It can only be done once.
func (s *Service) CreatePin(ctx context.Context, userID uuid.UUID, pin string) error {
	if !password.ValidPIN(pin) {
		return ErrInvalidPinFormat
	}
	hash, err := password.Hash(pin)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	if err := s.pins.Create(ctx, userID, hash); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Msg("transaction PIN created")
	return nil
}

// ResetPin deletes a user's PIN so they must create a new one.
func (s *Service) ResetPin(ctx context.Context, adminID, userID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	existed, err := s.pins.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete pin: %w", err)
	}
	if !existed {
		return ErrPinNotSet
	}
	if err := s.attempts.Reset(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to clear pin attempts")
	}
	log.Info().Str("user_id", userID.String()).Str("admin_id", adminID.String()).Msg("transaction PIN reset")
	return nil
}

// verifyPin checks pin against the stored hash, counting failures.
func (s *Service) verifyPin(ctx context.Context, userID uuid.UUID, pin string) error {
	p, err := s.pins.Get(ctx, userID)
	if err != nil {
		return err
	}

	locked, err := s.attempts.Locked(ctx, userID)
	if err != nil {
		return err
	}
	if locked {
		return ErrPinLocked
	}

	if !password.Verify(pin, p.PinHash) {
		nowLocked, err := s.attempts.Fail(ctx, userID)
		if err != nil {
			return err
		}
		if nowLocked {
			log.Warn().Str("user_id", userID.String()).Msg("transaction PIN locked")
		}
		return ErrInvalidPin
	}

	if err := s.attempts.Reset(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to clear pin attempts")
	}
	return nil
}

// Transfer moves naira from senderID to the receiver after the PIN, the
// daily cap, the single transfer maximum, the receiver and the balance
// have been checked in that order.
func (s *Service) Transfer(ctx context.Context, senderID uuid.UUID, req TransferRequest) (*audit.Entry, error) {
	entry, err := s.transfer(ctx, senderID, req)
	metrics.RecordOperation("transfer", err)
	if err != nil {
		return nil, err
	}
	metrics.RecordVolume("transfer", string(wallet.Naira), entry.Amount)

	log.Info().
		Str("transfer_id", entry.ID.String()).
		Str("from_user", senderID.String()).
		Str("to_user", req.ReceiverID.String()).
		Str("amount", entry.Amount.String()).
		Str("currency", entry.Currency).
		Msg("transfer completed")
	return entry, nil
}

func (s *Service) transfer(ctx context.Context, senderID uuid.UUID, req TransferRequest) (*audit.Entry, error) {
	if err := wallet.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if senderID == req.ReceiverID {
		return nil, ErrSelfTransfer
	}
	if err := s.verifyPin(ctx, senderID, req.Pin); err != nil {
		return nil, err
	}

	var entry *audit.Entry
	err := database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		sender, err := s.users.GetByIDTx(ctx, tx, senderID)
		if err != nil {
			return err
		}
		if sender.IsBanned {
			return user.ErrUserBanned
		}

		sent, err := s.limits.Increment(ctx, tx, senderID, s.now().UTC())
		if err != nil {
			return fmt.Errorf("count transfers: %w", err)
		}
		if sent > s.policy.MaxTransfersPerDay {
			return ErrDailyLimitExceeded
		}

		if req.Amount.GreaterThan(s.policy.MaxTransferAmount) {
			return ErrAmountTooLarge
		}

		receiver, err := s.users.GetByIDTx(ctx, tx, req.ReceiverID)
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrReceiverNotFound
		}
		if err != nil {
			return err
		}
		if receiver.IsBanned {
			return user.ErrUserBanned
		}

		from, to, err := s.wallets.LockPair(ctx, tx, senderID, req.ReceiverID)
		if err != nil {
			return err
		}
		if err := from.Debit(wallet.Naira, req.Amount); err != nil {
			return err
		}
		if err := to.Credit(wallet.Naira, req.Amount); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, tx, from); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, tx, to); err != nil {
			return err
		}

		entry = &audit.Entry{
			Type:     audit.TypeP2PTransfer,
			FromUser: &senderID,
			ToUser:   &req.ReceiverID,
			Amount:   req.Amount,
			Currency: string(wallet.Naira),
			Status:   audit.StatusSuccess,
		}
		return s.audits.Insert(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Reverse undoes a successful peer transfer. The receiver is debited even
// when that takes their balance below zero.
func (s *Service) Reverse(ctx context.Context, adminID, transferID uuid.UUID, reason string) (*audit.Entry, error) {
	var (
		original *audit.Entry
		reversal *audit.Entry
	)

	err := database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		original, err = s.audits.LockForUpdate(ctx, tx, transferID)
		if errors.Is(err, audit.ErrEntryNotFound) {
			return ErrTransferNotFound
		}
		if err != nil {
			return err
		}
		if original.Type != audit.TypeP2PTransfer {
			return ErrNotReversible
		}
		if !original.Reversible() {
			return ErrAlreadyReversed
		}
		if original.FromUser == nil || original.ToUser == nil {
			return fmt.Errorf("%w: transfer %s lacks a party", wallet.ErrInvariantViolation, original.ID)
		}

		currency, err := wallet.ParseCurrency(original.Currency)
		if err != nil {
			return err
		}

		sender, receiver, err := s.wallets.LockPair(ctx, tx, *original.FromUser, *original.ToUser)
		if err != nil {
			return err
		}
		if err := sender.Credit(currency, original.Amount); err != nil {
			return err
		}
		if err := receiver.ForceDebit(currency, original.Amount); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, tx, sender); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, tx, receiver); err != nil {
			return err
		}

		ok, err := s.audits.MarkReversed(ctx, tx, original.ID)
		if err != nil {
			return fmt.Errorf("mark reversed: %w", err)
		}
		if !ok {
			return ErrAlreadyReversed
		}

		reversal = &audit.Entry{
			Type:       audit.TypeTransferReversal,
			FromUser:   original.ToUser,
			ToUser:     original.FromUser,
			Amount:     original.Amount,
			Currency:   original.Currency,
			Status:     audit.StatusSuccess,
			Reason:     &reason,
			AdminID:    &adminID,
			ReversesID: &original.ID,
		}
		return s.audits.Insert(ctx, tx, reversal)
	})
	metrics.RecordOperation("transfer_reversal", err)
	if err != nil {
		return nil, err
	}
	metrics.RecordVolume("transfer_reversal", reversal.Currency, reversal.Amount)

	log.Info().
		Str("transfer_id", transferID.String()).
		Str("reversal_id", reversal.ID.String()).
		Str("admin_id", adminID.String()).
		Str("amount", reversal.Amount.String()).
		Str("reason", reason).
		Msg("transfer reversed")
	return reversal, nil
}

// History lists the caller's sent and received transfers.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]audit.Entry, error) {
	return s.audits.ListForUser(ctx, userID, limit, offset)
}

// ListAudit returns the audit log for admins.
func (s *Service) ListAudit(ctx context.Context, f audit.Filter, limit, offset int) ([]audit.Entry, error) {
	return s.audits.List(ctx, f, limit, offset)
}
