package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/socialpay/socialpay-api/internal/domain/referral"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/pkg/database"
	"github.com/socialpay/socialpay-api/internal/pkg/jwt"
	"github.com/socialpay/socialpay-api/internal/pkg/password"
)

// Service handles registration and login
type Service struct {
	db         *sqlx.DB
	users      *user.Repository
	wallets    *wallet.Repository
	referrals  *referral.Repository
	jwtService *jwt.Service
}

// NewService creates auth service
func NewService(db *sqlx.DB, users *user.Repository, wallets *wallet.Repository, referrals *referral.Repository, jwtService *jwt.Service) *Service {
	return &Service{
		db:         db,
		users:      users,
		wallets:    wallets,
		referrals:  referrals,
		jwtService: jwtService,
	}
}

// Register creates the user, an empty wallet and, when a referrer is given,
// the referral row. All three are written together or not at all.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	u := &user.User{
		ID:         uuid.New(),
		Name:       req.Name,
		Role:       user.RoleUser,
		ReferrerID: req.ReferrerID,
	}
	if email := normalizeEmail(req.Email); email != "" {
		u.Email = &email
	}
	if phone := normalizePhone(req.Phone); phone != "" {
		u.Phone = &phone
	}
	if u.Email == nil && u.Phone == nil {
		return nil, ErrIdentityRequired
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	err = database.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if u.ReferrerID != nil {
			if _, err := s.users.GetByIDTx(ctx, tx, *u.ReferrerID); err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					return ErrReferrerNotFound
				}
				return err
			}
		}
		if err := s.users.Create(ctx, tx, u); err != nil {
			return err
		}
		if err := s.wallets.Create(ctx, tx, u.ID); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		if u.ReferrerID == nil {
			return nil
		}
		ref := &referral.Referral{ID: uuid.New(), ReferrerID: *u.ReferrerID, ReferredUserID: u.ID}
		if err := s.referrals.Create(ctx, tx, ref); err != nil {
			return fmt.Errorf("create referral: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID.String()).Bool("referred", u.ReferrerID != nil).Msg("user registered")
	return s.issue(u)
}

// Login checks the credentials and refuses banned accounts.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.users.GetByIdentifier(ctx, normalizeIdentifier(req.Identifier))
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, user.ErrInvalidCredentials
	}
	if u.IsBanned {
		log.Warn().Str("user_id", u.ID.String()).Msg("login refused for banned user")
		return nil, user.ErrUserBanned
	}
	return s.issue(u)
}

func (s *Service) issue(u *user.User) (*AuthResponse, error) {
	token, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role), u.IsBanned)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResponse{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int(s.jwtService.GetAccessTTL().Seconds()),
	}, nil
}
