package referral

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/socialpay/socialpay-api/internal/config"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
)

type Service struct {
	repo    *Repository
	wallets *wallet.Repository
	policy  config.Policy
	now     func() time.Time
}

func NewService(repo *Repository, wallets *wallet.Repository, policy config.Policy) *Service {
	return &Service{repo: repo, wallets: wallets, policy: policy, now: time.Now}
}

// GetReferrals lists the caller's referrals with their referral earnings.
func (s *Service) GetReferrals(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	infos, err := s.repo.ListByReferrer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	w, err := s.wallets.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalReferrals: len(infos),
		EarnedNaira:    w.ReferralNaira,
		EarnedDollar:   w.ReferralDollar,
		Referrals:      infos,
	}, nil
}

// RecordApprovedTask advances the referral of userID, if any is unpaid, by
// one completed task and pays the referrer once the threshold is reached.
// It must run inside the approval transaction; it reports whether a reward
// was paid.
func (s *Service) RecordApprovedTask(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (bool, error) {
	ref, err := s.repo.LockUnpaidByReferred(ctx, tx, userID)
	if err != nil {
		return false, fmt.Errorf("lock referral: %w", err)
	}
	if ref == nil {
		return false, nil
	}

	due := ref.RecordCompletion(s.policy.ReferralTasksRequired, s.now())
	if err := s.repo.Save(ctx, tx, ref); err != nil {
		return false, fmt.Errorf("save referral: %w", err)
	}
	if !due {
		return false, nil
	}

	referrer, err := s.wallets.LockForUpdate(ctx, tx, ref.ReferrerID)
	if err != nil {
		return false, err
	}
	if err := referrer.CreditReferralReward(s.policy.ReferralReward); err != nil {
		return false, err
	}
	if err := s.wallets.Save(ctx, tx, referrer); err != nil {
		return false, err
	}

	log.Info().
		Str("referral_id", ref.ID.String()).
		Str("referrer_id", ref.ReferrerID.String()).
		Str("referred_user_id", userID.String()).
		Str("amount", s.policy.ReferralReward.String()).
		Msg("referral reward paid")
	return true, nil
}
