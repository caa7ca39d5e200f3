package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyMatchesPlatformLimits(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 5, p.MaxTransfersPerDay)
	assert.True(t, p.MaxTransferAmount.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, 10, p.ReferralTasksRequired)
	assert.True(t, p.ReferralReward.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 30*time.Minute, p.PinLockout)
	require.NoError(t, p.Validate())

	fee, ok := p.WithdrawalFee("dollar")
	require.True(t, ok)
	assert.Equal(t, "0.1", fee.String())

	_, ok = p.WithdrawalFee("euro")
	assert.False(t, ok)
}

func TestParsePolicyOverridesOnlyGivenFields(t *testing.T) {
	p, err := ParsePolicy([]byte(`
max_transfers_per_day: 2
withdrawal_fee_naira: "150.50"
pin_lockout: 5m
`))
	require.NoError(t, err)

	assert.Equal(t, 2, p.MaxTransfersPerDay)
	assert.Equal(t, "150.5", p.WithdrawalFeeNaira.String())
	assert.Equal(t, 5*time.Minute, p.PinLockout)
	assert.Equal(t, 10, p.ReferralTasksRequired)
}

func TestParsePolicyRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad amount":    `max_transfer_amount: "abc"`,
		"zero limit":    `max_transfers_per_day: 0`,
		"negative fee":  `withdrawal_fee_dollar: "-1"`,
		"bad duration":  `pin_lockout: soon`,
		"broken yaml":   `max_transfers_per_day: [`,
		"zero required": `referral_tasks_required: 0`,
		"zero reward":   `referral_reward: "0"`,
		"kobo reward":   `referral_reward: "30.555"`,
		"sub-kobo fee":  `withdrawal_fee_naira: "0.005"`,
		"zero minimum":  `min_withdrawal_dollar: "0"`,
		"zero lockout":  `pin_lockout: 0s`,
		"past lockout":  `pin_lockout: -1m`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParsePolicyAllowsZeroFee(t *testing.T) {
	p, err := ParsePolicy([]byte(`withdrawal_fee_dollar: "0"`))
	require.NoError(t, err)
	assert.True(t, p.WithdrawalFeeDollar.IsZero())
}

func TestLoadPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("referral_tasks_required: 3\n"), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 3, p.ReferralTasksRequired)

	p, err = LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy().ReferralTasksRequired, p.ReferralTasksRequired)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
