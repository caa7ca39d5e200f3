package task

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialpay/socialpay-api/internal/config"
	"github.com/socialpay/socialpay-api/internal/domain/referral"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/pkg/imaging"
	"github.com/socialpay/socialpay-api/internal/pkg/storage"
)

var (
	walletCols = []string{
		"user_id", "naira", "dollar", "completed_tasks", "pending_tasks",
		"referral_count", "referral_naira", "referral_dollar", "updated_at",
	}
	taskCols       = []string{"id", "platform", "task_type", "link", "currency", "price", "max_users", "created_by", "created_at"}
	userCols       = []string{"id", "name", "email", "phone", "password_hash", "role", "is_verified", "is_banned", "referrer_id", "created_at"}
	submissionCols = []string{"id", "user_id", "task_id", "status", "photo_url", "submitted_at", "processed_at", "processed_by"}
)

type fixture struct {
	svc      *Service
	mock     sqlmock.Sqlmock
	evidence string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "postgres")

	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "http://localhost/evidence")
	require.NoError(t, err)

	wallets := wallet.NewRepository(db)
	refs := referral.NewService(referral.NewRepository(db), wallets, config.DefaultPolicy())
	svc := NewService(db, NewRepository(db), user.NewRepository(db), wallets, refs, store, imaging.NewProcessor(imaging.DefaultConfig()))
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, mock: mock, evidence: dir}
}

func taskRow(id uuid.UUID, price string, maxUsers int) *sqlmock.Rows {
	return sqlmock.NewRows(taskCols).
		AddRow(id.String(), "instagram", "follow", "https://instagram.com/x", "naira", price, maxUsers, uuid.New().String(), time.Now())
}

func submissionRow(id, userID, taskID uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows(submissionCols).
		AddRow(id.String(), userID.String(), taskID.String(), status, "http://x/p.png", time.Now(), nil, nil)
}

func walletRow(userID uuid.UUID, naira string, completed, pending int) *sqlmock.Rows {
	return sqlmock.NewRows(walletCols).
		AddRow(userID.String(), naira, "0.00", completed, pending, 0, "0.00", "0.00", time.Now())
}

func (f *fixture) expectLockSubmission(subID, userID, taskID uuid.UUID, status string) {
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE id = $1 FOR UPDATE")).WithArgs(subID).
		WillReturnRows(submissionRow(subID, userID, taskID, status))
}

func (f *fixture) expectUser(id uuid.UUID, banned bool) {
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR SHARE")).WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(id.String(), "Ada", "ada@test.com", nil, "hash", "user", true, banned, nil, time.Now()))
}

func (f *fixture) expectLockWallet(userID uuid.UUID, naira string, completed, pending int) {
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE user_id = $1 FOR UPDATE")).WithArgs(userID).
		WillReturnRows(walletRow(userID, naira, completed, pending))
}

func TestReviewApproveCreditsWalletAndRecordsCompletion(t *testing.T) {
	f := newFixture(t)
	subID, userID, taskID, adminID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	f.mock.ExpectBegin()
	f.expectLockSubmission(subID, userID, taskID, "pending")
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 FOR UPDATE")).WithArgs(taskID).
		WillReturnRows(taskRow(taskID, "50.00", 2))
	f.expectLockWallet(userID, "10.00", 3, 1)
	f.mock.ExpectExec("UPDATE wallets").
		WithArgs("60", "0", 4, 0, 0, "0", "0", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("INSERT INTO task_completions").WithArgs(taskID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery("FROM referrals").WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM task_completions")).WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	f.mock.ExpectExec("UPDATE submissions").
		WithArgs("approved", sqlmock.AnyArg(), adminID, subID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.svc.Review(context.Background(), adminID, subID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, res.Submission.Status)
	assert.False(t, res.ReferralPaid)
	assert.False(t, res.TaskClosed)
	require.NotNil(t, res.Submission.ProcessedBy)
	assert.Equal(t, adminID, *res.Submission.ProcessedBy)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReviewApproveClosesFullTask(t *testing.T) {
	f := newFixture(t)
	subID, userID, taskID, adminID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	f.mock.ExpectBegin()
	f.expectLockSubmission(subID, userID, taskID, "pending")
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 FOR UPDATE")).WithArgs(taskID).
		WillReturnRows(taskRow(taskID, "5.00", 1))
	f.expectLockWallet(userID, "0.00", 0, 1)
	f.mock.ExpectExec("UPDATE wallets").
		WithArgs("5", "0", 1, 0, 0, "0", "0", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("INSERT INTO task_completions").WithArgs(taskID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery("FROM referrals").WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM task_completions")).WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	f.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).WithArgs(taskID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("UPDATE submissions").
		WithArgs("approved", sqlmock.AnyArg(), adminID, subID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.svc.Review(context.Background(), adminID, subID, true)
	require.NoError(t, err)
	assert.True(t, res.TaskClosed)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReviewRejectsProcessedSubmission(t *testing.T) {
	f := newFixture(t)
	subID, userID, taskID := uuid.New(), uuid.New(), uuid.New()

	f.mock.ExpectBegin()
	f.expectLockSubmission(subID, userID, taskID, "approved")
	f.mock.ExpectRollback()

	_, err := f.svc.Review(context.Background(), uuid.New(), subID, true)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReviewApproveFailsWhenTaskDeleted(t *testing.T) {
	f := newFixture(t)
	subID, userID, taskID := uuid.New(), uuid.New(), uuid.New()

	f.mock.ExpectBegin()
	f.expectLockSubmission(subID, userID, taskID, "pending")
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 FOR UPDATE")).WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows(taskCols))
	f.mock.ExpectRollback()

	_, err := f.svc.Review(context.Background(), uuid.New(), subID, true)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReviewRejectOnlyDropsPendingCounter(t *testing.T) {
	f := newFixture(t)
	subID, userID, taskID, adminID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	f.mock.ExpectBegin()
	f.expectLockSubmission(subID, userID, taskID, "pending")
	f.expectLockWallet(userID, "10.00", 2, 1)
	f.mock.ExpectExec("UPDATE wallets").
		WithArgs("10", "0", 2, 0, 0, "0", "0", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("UPDATE submissions").
		WithArgs("rejected", sqlmock.AnyArg(), adminID, subID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.svc.Review(context.Background(), adminID, subID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, res.Submission.Status)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReviewRejectWithNoPendingIsInvariantViolation(t *testing.T) {
	f := newFixture(t)
	subID, userID, taskID := uuid.New(), uuid.New(), uuid.New()

	f.mock.ExpectBegin()
	f.expectLockSubmission(subID, userID, taskID, "pending")
	f.expectLockWallet(userID, "10.00", 2, 0)
	f.mock.ExpectRollback()

	_, err := f.svc.Review(context.Background(), uuid.New(), subID, false)
	assert.ErrorIs(t, err, wallet.ErrInvariantViolation)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func storedEvidence(t *testing.T, dir string, userID uuid.UUID) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "submissions", userID.String(), "*"))
	require.NoError(t, err)
	return files
}

func TestSubmitStoresEvidenceAndCountsPending(t *testing.T) {
	f := newFixture(t)
	userID, taskID := uuid.New(), uuid.New()

	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).WithArgs(taskID).
		WillReturnRows(taskRow(taskID, "5.00", 10))
	f.mock.ExpectBegin()
	f.expectUser(userID, false)
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 FOR SHARE")).WithArgs(taskID).
		WillReturnRows(taskRow(taskID, "5.00", 10))
	f.mock.ExpectQuery("INSERT INTO submissions").
		WithArgs(sqlmock.AnyArg(), userID, taskID, "pending", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"submitted_at"}).AddRow(time.Now()))
	f.expectLockWallet(userID, "0.00", 0, 2)
	f.mock.ExpectExec("UPDATE wallets").
		WithArgs("0", "0", 0, 3, 0, "0", "0", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	sub, err := f.svc.Submit(context.Background(), userID, taskID, bytes.NewReader(testPNG(t)))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, sub.Status)
	assert.Contains(t, sub.PhotoURL, "http://localhost/evidence/submissions/"+userID.String()+"/")

	files := storedEvidence(t, f.evidence, userID)
	require.Len(t, files, 1)
	assert.Equal(t, ".png", filepath.Ext(files[0]))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSubmitDuplicateRemovesEvidence(t *testing.T) {
	f := newFixture(t)
	userID, taskID := uuid.New(), uuid.New()

	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).WithArgs(taskID).
		WillReturnRows(taskRow(taskID, "5.00", 10))
	f.mock.ExpectBegin()
	f.expectUser(userID, false)
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 FOR SHARE")).WithArgs(taskID).
		WillReturnRows(taskRow(taskID, "5.00", 10))
	f.mock.ExpectQuery("INSERT INTO submissions").
		WillReturnError(&pq.Error{Code: "23505"})
	f.mock.ExpectRollback()

	_, err := f.svc.Submit(context.Background(), userID, taskID, bytes.NewReader(testPNG(t)))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Empty(t, storedEvidence(t, f.evidence, userID))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSubmitByBannedUserRemovesEvidence(t *testing.T) {
	f := newFixture(t)
	userID, taskID := uuid.New(), uuid.New()

	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).WithArgs(taskID).
		WillReturnRows(taskRow(taskID, "5.00", 10))
	f.mock.ExpectBegin()
	f.expectUser(userID, true)
	f.mock.ExpectRollback()

	_, err := f.svc.Submit(context.Background(), userID, taskID, bytes.NewReader(testPNG(t)))
	assert.ErrorIs(t, err, user.ErrUserBanned)
	assert.Empty(t, storedEvidence(t, f.evidence, userID))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSubmitMissingTask(t *testing.T) {
	f := newFixture(t)
	taskID := uuid.New()

	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows(taskCols))

	_, err := f.svc.Submit(context.Background(), uuid.New(), taskID, bytes.NewReader(testPNG(t)))
	assert.ErrorIs(t, err, ErrTaskNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSubmitRejectsNonImage(t *testing.T) {
	f := newFixture(t)
	taskID := uuid.New()

	f.mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).WithArgs(taskID).
		WillReturnRows(taskRow(taskID, "5.00", 10))

	_, err := f.svc.Submit(context.Background(), uuid.New(), taskID, bytes.NewReader([]byte("plain text")))
	assert.ErrorIs(t, err, storage.ErrInvalidMimeType)

	entries, err := os.ReadDir(f.evidence)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
