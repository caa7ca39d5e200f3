package referral

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialpay/socialpay-api/internal/config"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
)

func newService(t *testing.T, required int) (*Service, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "postgres")

	policy := config.DefaultPolicy()
	policy.ReferralTasksRequired = required
	svc := NewService(NewRepository(db), wallet.NewRepository(db), policy)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, db, mock
}

func referralRow(id, referrer, referred uuid.UUID, completed int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "referrer_id", "referred_user_id", "tasks_completed", "reward_paid", "joined_at", "paid_at"}).
		AddRow(id.String(), referrer.String(), referred.String(), completed, false, time.Now(), nil)
}

func TestRecordApprovedTaskWithoutReferral(t *testing.T) {
	svc, db, mock := newService(t, 10)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM referrals").WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	paid, err := svc.RecordApprovedTask(context.Background(), tx, userID)
	require.NoError(t, err)
	assert.False(t, paid)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordApprovedTaskBelowThreshold(t *testing.T) {
	svc, db, mock := newService(t, 10)
	refID, referrer, userID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM referrals").WithArgs(userID).
		WillReturnRows(referralRow(refID, referrer, userID, 3))
	mock.ExpectExec("UPDATE referrals").
		WithArgs(4, false, nil, refID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	paid, err := svc.RecordApprovedTask(context.Background(), tx, userID)
	require.NoError(t, err)
	assert.False(t, paid)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordApprovedTaskPaysReferrerAtThreshold(t *testing.T) {
	svc, db, mock := newService(t, 10)
	refID, referrer, userID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM referrals").WithArgs(userID).
		WillReturnRows(referralRow(refID, referrer, userID, 9))
	mock.ExpectExec("UPDATE referrals").
		WithArgs(10, true, sqlmock.AnyArg(), refID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE user_id = $1 FOR UPDATE")).WithArgs(referrer).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "naira", "dollar", "completed_tasks", "pending_tasks",
			"referral_count", "referral_naira", "referral_dollar", "updated_at",
		}).AddRow(referrer.String(), "5.00", "0.00", 0, 0, 2, "60.00", "0.00", time.Now()))
	mock.ExpectExec("UPDATE wallets").
		WithArgs("35", "0", 0, 0, 3, "90", "0", referrer).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	paid, err := svc.RecordApprovedTask(context.Background(), tx, userID)
	require.NoError(t, err)
	assert.True(t, paid)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
