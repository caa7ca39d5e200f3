package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// SetDetails saves the caller's payout destination.
func (s *Service) SetDetails(ctx context.Context, userID uuid.UUID, req SetDetailsRequest) (*Details, error) {
	d := &Details{
		UserID:      userID,
		PaymentType: strings.ToLower(strings.TrimSpace(req.PaymentType)),
		Details:     strings.TrimSpace(req.Details),
	}
	if err := s.repo.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("save payment details: %w", err)
	}
	log.Info().Str("user_id", userID.String()).Str("payment_type", d.PaymentType).Msg("payment details saved")
	return d, nil
}

func (s *Service) GetDetails(ctx context.Context, userID uuid.UUID) (*Details, error) {
	return s.repo.Get(ctx, userID)
}
