package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitCleanupDeletesOutsideRetention(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	job := NewLimitCleanupJob(NewLimitRepository(sqlx.NewDb(mockDB, "postgres")), 0)
	job.now = func() time.Time { return time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC) }

	mock.ExpectExec("DELETE FROM transfer_limits WHERE day < \\$1").
		WithArgs("2026-03-03").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
