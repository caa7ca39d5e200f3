package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Policy holds the ledger limits, fees and thresholds. It is built once at
// startup and handed to each workflow by value.
type Policy struct {
	MaxTransfersPerDay int
	MaxTransferAmount  decimal.Decimal

	PinMaxAttempts int
	PinLockout     time.Duration

	MinWithdrawalNaira  decimal.Decimal
	MinWithdrawalDollar decimal.Decimal
	WithdrawalFeeNaira  decimal.Decimal
	WithdrawalFeeDollar decimal.Decimal

	ReferralReward        decimal.Decimal
	ReferralTasksRequired int
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxTransfersPerDay: 5,
		MaxTransferAmount:  decimal.NewFromInt(100000),

		PinMaxAttempts: 3,
		PinLockout:     30 * time.Minute,

		MinWithdrawalNaira:  decimal.NewFromInt(1000),
		MinWithdrawalDollar: decimal.NewFromInt(1),
		WithdrawalFeeNaira:  decimal.NewFromInt(100),
		WithdrawalFeeDollar: decimal.RequireFromString("0.10"),

		ReferralReward:        decimal.NewFromInt(30),
		ReferralTasksRequired: 10,
	}
}

// WithdrawalFee returns the flat fee for a currency code ("naira" or "dollar").
func (p Policy) WithdrawalFee(currency string) (decimal.Decimal, bool) {
	switch currency {
	case "naira":
		return p.WithdrawalFeeNaira, true
	case "dollar":
		return p.WithdrawalFeeDollar, true
	}
	return decimal.Zero, false
}

// MinWithdrawal returns the minimum withdrawable amount for a currency code.
func (p Policy) MinWithdrawal(currency string) (decimal.Decimal, bool) {
	switch currency {
	case "naira":
		return p.MinWithdrawalNaira, true
	case "dollar":
		return p.MinWithdrawalDollar, true
	}
	return decimal.Zero, false
}

// Validate rejects policies that would make the workflows misbehave.
func (p Policy) Validate() error {
	if p.MaxTransfersPerDay <= 0 {
		return fmt.Errorf("max_transfers_per_day must be positive")
	}
	if p.PinMaxAttempts <= 0 {
		return fmt.Errorf("pin_max_attempts must be positive")
	}
	if p.PinLockout <= 0 {
		return fmt.Errorf("pin_lockout must be positive")
	}
	if p.ReferralTasksRequired <= 0 {
		return fmt.Errorf("referral_tasks_required must be positive")
	}

	// Amounts must be usable as wallet amounts: kobo/cent precision, and
	// strictly positive except for the fees.
	amounts := []struct {
		name      string
		v         decimal.Decimal
		allowZero bool
	}{
		{"max_transfer_amount", p.MaxTransferAmount, false},
		{"min_withdrawal_naira", p.MinWithdrawalNaira, false},
		{"min_withdrawal_dollar", p.MinWithdrawalDollar, false},
		{"withdrawal_fee_naira", p.WithdrawalFeeNaira, true},
		{"withdrawal_fee_dollar", p.WithdrawalFeeDollar, true},
		{"referral_reward", p.ReferralReward, false},
	}
	for _, a := range amounts {
		if a.v.IsNegative() || (a.v.IsZero() && !a.allowZero) {
			if a.allowZero {
				return fmt.Errorf("%s must not be negative", a.name)
			}
			return fmt.Errorf("%s must be positive", a.name)
		}
		if !a.v.Equal(a.v.Round(2)) {
			return fmt.Errorf("%s must have at most 2 decimal places", a.name)
		}
	}
	return nil
}

type policyFile struct {
	MaxTransfersPerDay    *int    `yaml:"max_transfers_per_day"`
	MaxTransferAmount     *string `yaml:"max_transfer_amount"`
	PinMaxAttempts        *int    `yaml:"pin_max_attempts"`
	PinLockout            *string `yaml:"pin_lockout"`
	MinWithdrawalNaira    *string `yaml:"min_withdrawal_naira"`
	MinWithdrawalDollar   *string `yaml:"min_withdrawal_dollar"`
	WithdrawalFeeNaira    *string `yaml:"withdrawal_fee_naira"`
	WithdrawalFeeDollar   *string `yaml:"withdrawal_fee_dollar"`
	ReferralReward        *string `yaml:"referral_reward"`
	ReferralTasksRequired *int    `yaml:"referral_tasks_required"`
}

// LoadPolicy returns DefaultPolicy with the fields present in the YAML file at
// path applied on top. An empty path yields the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(raw)
}

// ParsePolicy applies YAML overrides to DefaultPolicy.
func ParsePolicy(raw []byte) (Policy, error) {
	p := DefaultPolicy()

	var f policyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}

	if f.MaxTransfersPerDay != nil {
		p.MaxTransfersPerDay = *f.MaxTransfersPerDay
	}
	if f.PinMaxAttempts != nil {
		p.PinMaxAttempts = *f.PinMaxAttempts
	}
	if f.ReferralTasksRequired != nil {
		p.ReferralTasksRequired = *f.ReferralTasksRequired
	}
	if f.PinLockout != nil {
		d, err := time.ParseDuration(*f.PinLockout)
		if err != nil {
			return p, fmt.Errorf("pin_lockout: %w", err)
		}
		p.PinLockout = d
	}

	amounts := []struct {
		name string
		src  *string
		dst  *decimal.Decimal
	}{
		{"max_transfer_amount", f.MaxTransferAmount, &p.MaxTransferAmount},
		{"min_withdrawal_naira", f.MinWithdrawalNaira, &p.MinWithdrawalNaira},
		{"min_withdrawal_dollar", f.MinWithdrawalDollar, &p.MinWithdrawalDollar},
		{"withdrawal_fee_naira", f.WithdrawalFeeNaira, &p.WithdrawalFeeNaira},
		{"withdrawal_fee_dollar", f.WithdrawalFeeDollar, &p.WithdrawalFeeDollar},
		{"referral_reward", f.ReferralReward, &p.ReferralReward},
	}
	for _, a := range amounts {
		if a.src == nil {
			continue
		}
		v, err := decimal.NewFromString(*a.src)
		if err != nil {
			return p, fmt.Errorf("%s: %w", a.name, err)
		}
		*a.dst = v
	}

	return p, p.Validate()
}
