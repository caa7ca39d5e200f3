package referral

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Referral links a referred user to the account that invited them.
type Referral struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ReferrerID     uuid.UUID  `db:"referrer_id" json:"referrer_id"`
	ReferredUserID uuid.UUID  `db:"referred_user_id" json:"referred_user_id"`
	TasksCompleted int        `db:"tasks_completed" json:"tasks_completed"`
	RewardPaid     bool       `db:"reward_paid" json:"reward_paid"`
	JoinedAt       time.Time  `db:"joined_at" json:"joined_at"`
	PaidAt         *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}

// RecordCompletion counts one approved task and reports whether the reward
// became due with it. The counter is incremented before the comparison, and
// a paid referral never reports due again.
func (r *Referral) RecordCompletion(required int, now time.Time) bool {
	if r.RewardPaid {
		return false
	}
	r.TasksCompleted++
	if r.TasksCompleted < required {
		return false
	}
	r.RewardPaid = true
	r.PaidAt = &now
	return true
}

// Info is one row of the referrer's referral list.
type Info struct {
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Name           string    `db:"name" json:"name"`
	TasksCompleted int       `db:"tasks_completed" json:"tasks_completed"`
	RewardPaid     bool      `db:"reward_paid" json:"reward_paid"`
	JoinedAt       time.Time `db:"joined_at" json:"joined_at"`
}

// Stats summarises a referrer's network and earnings.
type Stats struct {
	TotalReferrals int             `json:"total_referrals"`
	EarnedNaira    decimal.Decimal `json:"earned_naira"`
	EarnedDollar   decimal.Decimal `json:"earned_dollar"`
	Referrals      []Info          `json:"referrals"`
}
