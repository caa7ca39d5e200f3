package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/socialpay/socialpay-api/internal/domain/audit"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/pkg/database"
	"github.com/socialpay/socialpay-api/internal/pkg/metrics"
)

// Service is the admin oversight surface: statistics, bans and manual
// balance adjustments.
type Service struct {
	db      *sqlx.DB
	repo    *Repository
	users   *user.Repository
	wallets *wallet.Repository
	audits  *audit.Repository
}

func NewService(db *sqlx.DB, repo *Repository, users *user.Repository, wallets *wallet.Repository, audits *audit.Repository) *Service {
	return &Service{db: db, repo: repo, users: users, wallets: wallets, audits: audits}
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

// ManageUser bans, unbans or adjusts the balance of userID.
func (s *Service) ManageUser(ctx context.Context, adminID, userID uuid.UUID, req ManageUserRequest) (*ManageUserResponse, error) {
	switch req.Action {
	case ActionBan, ActionUnban:
		return s.setBanned(ctx, adminID, userID, req.Action == ActionBan)
	case ActionAdjustBalance:
		return s.adjustBalance(ctx, adminID, userID, req)
	}
	return nil, ErrInvalidAction
}

func (s *Service) setBanned(ctx context.Context, adminID, userID uuid.UUID, banned bool) (*ManageUserResponse, error) {
	if adminID == userID {
		return nil, ErrSelfAction
	}
	err := database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.users.SetBanned(ctx, tx, userID, banned)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("admin_id", adminID.String()).
		Str("user_id", userID.String()).
		Bool("banned", banned).
		Msg("user ban state changed")

	action := ActionUnban
	if banned {
		action = ActionBan
	}
	return &ManageUserResponse{Action: action, IsBanned: &banned}, nil
}

// adjustBalance credits a positive amount or debits a negative one. The debit
// is guarded, and every adjustment leaves an audit entry in the same tx.
func (s *Service) adjustBalance(ctx context.Context, adminID, userID uuid.UUID, req ManageUserRequest) (*ManageUserResponse, error) {
	if req.Amount == nil || req.Currency == "" {
		return nil, ErrAmountRequired
	}
	currency, err := wallet.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	amount := req.Amount.Abs()
	if err := wallet.ValidateAmount(amount); err != nil {
		return nil, err
	}
	credit := req.Amount.IsPositive()

	var (
		w     *wallet.Wallet
		entry *audit.Entry
	)
	err = database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.users.GetByIDTx(ctx, tx, userID); err != nil {
			return err
		}

		var err error
		w, err = s.wallets.LockForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		entry = &audit.Entry{
			Type:     audit.TypeAdminAdjustment,
			Amount:   amount,
			Currency: string(currency),
			Status:   audit.StatusSuccess,
			AdminID:  &adminID,
		}
		if req.Reason != "" {
			entry.Reason = &req.Reason
		}
		if credit {
			err = w.Credit(currency, amount)
			entry.ToUser = &userID
		} else {
			err = w.Debit(currency, amount)
			entry.FromUser = &userID
		}
		if err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, tx, w); err != nil {
			return err
		}
		return s.audits.Insert(ctx, tx, entry)
	})
	metrics.RecordOperation("admin_adjustment", err)
	if err != nil {
		return nil, fmt.Errorf("adjust balance: %w", err)
	}
	metrics.RecordVolume("admin_adjustment", string(currency), amount)

	log.Info().
		Str("admin_id", adminID.String()).
		Str("user_id", userID.String()).
		Str("currency", string(currency)).
		Str("amount", req.Amount.String()).
		Str("audit_id", entry.ID.String()).
		Msg("balance adjusted")

	return &ManageUserResponse{Action: ActionAdjustBalance, Wallet: w, Audit: entry}, nil
}
