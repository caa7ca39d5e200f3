package wallet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is one of the two balances a wallet carries.
type Currency string

const (
	Naira  Currency = "naira"
	Dollar Currency = "dollar"
)

// ParseCurrency validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case Naira, Dollar:
		return Currency(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
}

// Wallet is the per-user balance record. Balances and counters are only
// changed through the methods below, on a row the caller holds locked.
type Wallet struct {
	UserID         uuid.UUID       `db:"user_id" json:"user_id"`
	Naira          decimal.Decimal `db:"naira" json:"naira"`
	Dollar         decimal.Decimal `db:"dollar" json:"dollar"`
	CompletedTasks int             `db:"completed_tasks" json:"completed_tasks"`
	PendingTasks   int             `db:"pending_tasks" json:"pending_tasks"`
	ReferralCount  int             `db:"referral_count" json:"referral_count"`
	ReferralNaira  decimal.Decimal `db:"referral_naira" json:"referral_naira"`
	ReferralDollar decimal.Decimal `db:"referral_dollar" json:"referral_dollar"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Balance returns the balance held in c.
func (w *Wallet) Balance(c Currency) decimal.Decimal {
	if c == Dollar {
		return w.Dollar
	}
	return w.Naira
}

func (w *Wallet) balanceRef(c Currency) (*decimal.Decimal, error) {
	switch c {
	case Naira:
		return &w.Naira, nil
	case Dollar:
		return &w.Dollar, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, c)
}

// ValidateAmount accepts strictly positive amounts with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// Credit adds amount to the c balance.
func (w *Wallet) Credit(c Currency, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	bal, err := w.balanceRef(c)
	if err != nil {
		return err
	}
	*bal = bal.Add(amount)
	return nil
}

// Debit removes amount from the c balance, refusing to go below zero.
func (w *Wallet) Debit(c Currency, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	bal, err := w.balanceRef(c)
	if err != nil {
		return err
	}
	if bal.LessThan(amount) {
		return ErrInsufficientBalance
	}
	*bal = bal.Sub(amount)
	return nil
}

// ForceDebit removes amount from the c balance even when the result is
// negative. Transfer reversal is its only caller.
func (w *Wallet) ForceDebit(c Currency, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	bal, err := w.balanceRef(c)
	if err != nil {
		return err
	}
	*bal = bal.Sub(amount)
	return nil
}

// BeginTask records a new pending submission.
func (w *Wallet) BeginTask() {
	w.PendingTasks++
}

// DropPendingTask undoes BeginTask for a rejected submission.
func (w *Wallet) DropPendingTask() error {
	if w.PendingTasks <= 0 {
		return fmt.Errorf("%w: pending_tasks would go negative for %s", ErrInvariantViolation, w.UserID)
	}
	w.PendingTasks--
	return nil
}

// CompleteTask pays the task reward and moves one submission from pending to completed.
func (w *Wallet) CompleteTask(c Currency, reward decimal.Decimal) error {
	if w.PendingTasks <= 0 {
		return fmt.Errorf("%w: completing a task with no pending submission for %s", ErrInvariantViolation, w.UserID)
	}
	if err := w.Credit(c, reward); err != nil {
		return err
	}
	w.PendingTasks--
	w.CompletedTasks++
	return nil
}

// CreditReferralReward pays a referral bonus in naira and updates the referral totals.
func (w *Wallet) CreditReferralReward(amount decimal.Decimal) error {
	if err := w.Credit(Naira, amount); err != nil {
		return err
	}
	w.ReferralCount++
	w.ReferralNaira = w.ReferralNaira.Add(amount)
	return nil
}
