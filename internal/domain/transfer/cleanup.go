package transfer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// LimitCleanupJob removes daily transfer counters once they can no longer
// affect a limit check.
type LimitCleanupJob struct {
	limits        *LimitRepository
	retentionDays int
	now           func() time.Time
}

// NewLimitCleanupJob creates a cleanup job keeping retentionDays of counters.
func NewLimitCleanupJob(limits *LimitRepository, retentionDays int) *LimitCleanupJob {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	return &LimitCleanupJob{limits: limits, retentionDays: retentionDays, now: time.Now}
}

// Start runs the job immediately and then every interval until ctx is done.
func (j *LimitCleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Transfer limit cleanup job stopped")
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *LimitCleanupJob) run(ctx context.Context) {
	rows, err := j.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to clean up transfer limit counters")
		return
	}
	if rows > 0 {
		log.Info().
			Int64("deleted", rows).
			Int("retention_days", j.retentionDays).
			Msg("Cleaned up old transfer limit counters")
	}
}

// RunOnce deletes counters older than the retention window.
func (j *LimitCleanupJob) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retentionDays)
	return j.limits.DeleteBefore(ctx, cutoff)
}
