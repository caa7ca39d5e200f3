package auth

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialpay/socialpay-api/internal/domain/referral"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/pkg/jwt"
	"github.com/socialpay/socialpay-api/internal/pkg/password"
)

func TestMain(m *testing.M) {
	password.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

var userCols = []string{
	"id", "name", "email", "phone", "password_hash", "role", "is_verified", "is_banned", "referrer_id", "created_at",
}

func newService(t *testing.T) (*Service, *jwt.Service, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "postgres")

	tokens := jwt.NewService("test-secret", time.Hour)
	svc := NewService(db, user.NewRepository(db), wallet.NewRepository(db), referral.NewRepository(db), tokens)
	return svc, tokens, mock
}

func TestRegisterWithReferrerCreatesWalletAndReferral(t *testing.T) {
	svc, tokens, mock := newService(t)
	referrer := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR SHARE")).WithArgs(referrer).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(referrer.String(), "Chidi", nil, "+2348000000001", "hash", "user", true, false, nil, time.Now()))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", nil, sqlmock.AnyArg(), "user", false, false, referrer).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("INSERT INTO wallets").WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO referrals").WithArgs(sqlmock.AnyArg(), referrer, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"joined_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:       "Ada",
		Email:      "  Ada@Example.com ",
		Password:   "password123",
		ReferrerID: &referrer,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "ada@example.com", *resp.User.Email)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.NotEqual(t, "password123", resp.User.PasswordHash)

	claims, err := tokens.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestRegisterRequiresEmailOrPhone(t *testing.T) {
	svc, _, mock := newService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Password: "password123"})
	assert.ErrorIs(t, err, ErrIdentityRequired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUnknownReferrer(t *testing.T) {
	svc, _, mock := newService(t)
	referrer := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR SHARE")).WithArgs(referrer).
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Phone: "+234 800 000 0000", Password: "password123", ReferrerID: &referrer,
	})
	assert.ErrorIs(t, err, ErrReferrerNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	svc, _, mock := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Ada", nil, "+2348000000000", sqlmock.AnyArg(), "user", false, false, nil).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Phone: "+234 800-000-0000", Password: "password123",
	})
	assert.ErrorIs(t, err, user.ErrIdentityTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func expectLookup(t *testing.T, mock sqlmock.Sqlmock, identifier string, banned bool) uuid.UUID {
	t.Helper()
	hash, err := password.Hash("password123")
	require.NoError(t, err)
	id := uuid.New()
	mock.ExpectQuery("FROM users WHERE email = \\$1 OR phone = \\$1").WithArgs(identifier).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(id.String(), "Ada", "ada@example.com", nil, hash, "user", true, banned, nil, time.Now()))
	return id
}

func TestLogin(t *testing.T) {
	t.Run("by email", func(t *testing.T) {
		svc, tokens, mock := newService(t)
		id := expectLookup(t, mock, "ada@example.com", false)

		resp, err := svc.Login(context.Background(), LoginRequest{Identifier: " ADA@example.com", Password: "password123"})
		require.NoError(t, err)

		claims, err := tokens.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, id, claims.UserID)
		assert.False(t, claims.IsBanned)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, mock := newService(t)
		expectLookup(t, mock, "ada@example.com", false)

		_, err := svc.Login(context.Background(), LoginRequest{Identifier: "ada@example.com", Password: "nope-nope"})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("banned", func(t *testing.T) {
		svc, _, mock := newService(t)
		expectLookup(t, mock, "ada@example.com", true)

		_, err := svc.Login(context.Background(), LoginRequest{Identifier: "ada@example.com", Password: "password123"})
		assert.ErrorIs(t, err, user.ErrUserBanned)
	})

	t.Run("unknown phone", func(t *testing.T) {
		svc, _, mock := newService(t)
		mock.ExpectQuery("FROM users WHERE email").WithArgs("+2348000000009").
			WillReturnRows(sqlmock.NewRows(userCols))

		_, err := svc.Login(context.Background(), LoginRequest{Identifier: "+234 800 000 0009", Password: "password123"})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}
