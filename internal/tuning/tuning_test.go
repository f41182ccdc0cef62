package tuning

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTuning(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTuning(t, `
economy:
  transfer_fee_bps: 100
  savings_interest_bps: 150
  loan_annual_rate_bps: 700
  loan_min_cents: 100000
  loan_max_cents: 10000000
  loan_min_term_months: 6
  loan_max_term_months: 60
  max_cards_per_account: 3
heist:
  bank_cooldown: 90m
  atm_cooldown: 30m
  bank_duration: 10m
  atm_duration: 2m
  min_police: 2
  escape_radius: 25
  loot_floor_cents: 50000
  methods:
    DRILL:
      required_item: thermal_drill
      loot_bps: 2000
      max_security: 2
  banks:
    - id: fleeca_legion
      name: Fleeca Legion Square
      security_level: 2
      vault_cents: 25000000
  atms:
    - id: atm_grove_st
      name: Grove Street ATM
      cash_cents: 1500000
      loot_bps: 4000
`)

	tun, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(100), tun.Economy.TransferFeeBps)
	assert.Equal(t, 90*time.Minute, tun.Heist.BankCooldown.Std())
	assert.Equal(t, 2*time.Minute, tun.Heist.ATMDuration.Std())
	assert.Equal(t, "thermal_drill", tun.Heist.Methods["DRILL"].RequiredItem)
	require.Len(t, tun.Heist.Banks, 1)
	assert.Equal(t, int64(25000000), tun.Heist.Banks[0].VaultCents)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeTuning(t, `
heist:
  bank_cooldown: ninety minutes
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("shipped defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("unknown heist method", func(t *testing.T) {
		tun := Default()
		tun.Heist.Methods["CROWBAR"] = Method{RequiredItem: "crowbar", LootBps: 100}
		assert.Error(t, tun.Validate())
	})

	t.Run("method without a required item", func(t *testing.T) {
		tun := Default()
		tun.Heist.Methods["DRILL"] = Method{LootBps: 2000}
		assert.Error(t, tun.Validate())
	})

	t.Run("duplicate target id", func(t *testing.T) {
		tun := Default()
		tun.Heist.Banks = append(tun.Heist.Banks, tun.Heist.Banks[0])
		assert.Error(t, tun.Validate())
	})

	t.Run("loan bounds inverted", func(t *testing.T) {
		tun := Default()
		tun.Economy.LoanMaxCents = tun.Economy.LoanMinCents - 1
		assert.Error(t, tun.Validate())
	})

	t.Run("fee above one hundred percent", func(t *testing.T) {
		tun := Default()
		tun.Economy.TransferFeeBps = 10001
		assert.Error(t, tun.Validate())
	})
}
