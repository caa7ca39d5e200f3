package admin

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialpay/socialpay-api/internal/domain/audit"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
)

var (
	userCols = []string{
		"id", "name", "email", "phone", "password_hash", "role", "is_verified", "is_banned", "referrer_id", "created_at",
	}
	walletCols = []string{
		"user_id", "naira", "dollar", "completed_tasks", "pending_tasks",
		"referral_count", "referral_naira", "referral_dollar", "updated_at",
	}
)

func newService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "postgres")

	return NewService(db, NewRepository(db), user.NewRepository(db), wallet.NewRepository(db), audit.NewRepository(db)), mock
}

func expectUserAndWallet(mock sqlmock.Sqlmock, id uuid.UUID, naira string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR SHARE")).WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(id.String(), "Emeka", "emeka@example.com", nil, "hash", "user", true, false, nil, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE user_id = $1 FOR UPDATE")).WithArgs(id).
		WillReturnRows(sqlmock.NewRows(walletCols).
			AddRow(id.String(), naira, "0.00", 3, 0, 0, "0.00", "0.00", time.Now()))
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestAdjustBalanceCreditWritesAudit(t *testing.T) {
	svc, mock := newService(t)
	adminID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	expectUserAndWallet(mock, userID, "100.00")
	mock.ExpectExec("UPDATE wallets").
		WithArgs("150", "0", 3, 0, 0, "0", "0", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transfer_audit").
		WithArgs(sqlmock.AnyArg(), "admin_adjustment", nil, userID, "50", "naira", "success", "bonus", adminID, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	resp, err := svc.ManageUser(context.Background(), adminID, userID, ManageUserRequest{
		Action:   ActionAdjustBalance,
		Amount:   amount("50"),
		Currency: "naira",
		Reason:   "bonus",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "150", resp.Wallet.Naira.String())
	assert.Equal(t, audit.TypeAdminAdjustment, resp.Audit.Type)
	assert.Nil(t, resp.Audit.FromUser)
}

func TestAdjustBalanceDebitIsGuarded(t *testing.T) {
	svc, mock := newService(t)
	adminID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	expectUserAndWallet(mock, userID, "20.00")
	mock.ExpectRollback()

	_, err := svc.ManageUser(context.Background(), adminID, userID, ManageUserRequest{
		Action:   ActionAdjustBalance,
		Amount:   amount("-20.01"),
		Currency: "naira",
	})
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustBalanceDebitRecordsSender(t *testing.T) {
	svc, mock := newService(t)
	adminID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	expectUserAndWallet(mock, userID, "20.00")
	mock.ExpectExec("UPDATE wallets").
		WithArgs("5", "0", 3, 0, 0, "0", "0", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transfer_audit").
		WithArgs(sqlmock.AnyArg(), "admin_adjustment", userID, nil, "15", "naira", "success", nil, adminID, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	resp, err := svc.ManageUser(context.Background(), adminID, userID, ManageUserRequest{
		Action:   ActionAdjustBalance,
		Amount:   amount("-15"),
		Currency: "naira",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, userID, *resp.Audit.FromUser)
}

func TestAdjustBalanceRequiresAmountAndCurrency(t *testing.T) {
	svc, mock := newService(t)

	_, err := svc.ManageUser(context.Background(), uuid.New(), uuid.New(), ManageUserRequest{Action: ActionAdjustBalance, Currency: "naira"})
	assert.ErrorIs(t, err, ErrAmountRequired)

	_, err = svc.ManageUser(context.Background(), uuid.New(), uuid.New(), ManageUserRequest{Action: ActionAdjustBalance, Amount: amount("1")})
	assert.ErrorIs(t, err, ErrAmountRequired)

	_, err = svc.ManageUser(context.Background(), uuid.New(), uuid.New(), ManageUserRequest{Action: ActionAdjustBalance, Amount: amount("1"), Currency: "euro"})
	assert.ErrorIs(t, err, wallet.ErrInvalidCurrency)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBanAndUnban(t *testing.T) {
	svc, mock := newService(t)
	adminID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET is_banned").WithArgs(true, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := svc.ManageUser(context.Background(), adminID, userID, ManageUserRequest{Action: ActionBan})
	require.NoError(t, err)
	assert.True(t, *resp.IsBanned)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET is_banned").WithArgs(false, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = svc.ManageUser(context.Background(), adminID, userID, ManageUserRequest{Action: ActionUnban})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = svc.ManageUser(context.Background(), adminID, adminID, ManageUserRequest{Action: ActionBan})
	assert.ErrorIs(t, err, ErrSelfAction)

	_, err = svc.ManageUser(context.Background(), adminID, userID, ManageUserRequest{Action: "promote"})
	assert.ErrorIs(t, err, ErrInvalidAction)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatistics(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{
		"total_users", "banned_users", "active_tasks", "completed_tasks", "pending_submissions",
		"pending_withdrawals", "pending_exchanges", "total_naira", "total_dollar",
	}).AddRow(12, 1, 4, 37, 5, 2, 1, "125000.50", "310.25"))

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalUsers)
	assert.Equal(t, 37, stats.CompletedTasks)
	assert.Equal(t, "125000.5", stats.TotalNaira.String())
	assert.Equal(t, 1, stats.PendingExchanges)
}
