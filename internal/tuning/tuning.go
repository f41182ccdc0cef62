// Package tuning loads economy and heist balance constants from YAML.
// All money values are integer minor currency units; rates are basis points.
package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/citywide-rp/bankcore/internal/models"
)

type Tuning struct {
	Economy Economy `yaml:"economy"`
	Heist   Heist   `yaml:"heist"`
}

// Duration is a time.Duration that unmarshals from Go duration strings ("90m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	dur, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Economy struct {
	TransferFeeBps     int64 `yaml:"transfer_fee_bps"`
	SavingsInterestBps int64 `yaml:"savings_interest_bps"`
	LoanAnnualRateBps  int64 `yaml:"loan_annual_rate_bps"`
	LoanMinCents       int64 `yaml:"loan_min_cents"`
	LoanMaxCents       int64 `yaml:"loan_max_cents"`
	LoanMinTermMonths  int   `yaml:"loan_min_term_months"`
	LoanMaxTermMonths  int   `yaml:"loan_max_term_months"`
	MaxCardsPerAccount int   `yaml:"max_cards_per_account"`
}

type Heist struct {
	BankCooldown   Duration          `yaml:"bank_cooldown"`
	ATMCooldown    Duration          `yaml:"atm_cooldown"`
	BankDuration   Duration          `yaml:"bank_duration"`
	ATMDuration    Duration          `yaml:"atm_duration"`
	MinPolice      int               `yaml:"min_police"`
	EscapeRadius   float64           `yaml:"escape_radius"`
	LootFloorCents int64             `yaml:"loot_floor_cents"`
	Methods        map[string]Method `yaml:"methods"`
	Banks          []Bank            `yaml:"banks"`
	ATMs           []ATM             `yaml:"atms"`
}

// Method describes one way to hit a target: the item it requires, the cut of
// the vault it yields, and the highest security level it can defeat.
type Method struct {
	RequiredItem string `yaml:"required_item"`
	LootBps      int64  `yaml:"loot_bps"`
	MaxSecurity  int    `yaml:"max_security"`
}

type Bank struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	SecurityLevel int    `yaml:"security_level"`
	VaultCents    int64  `yaml:"vault_cents"`
}

type ATM struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	CashCents int64  `yaml:"cash_cents"`
	LootBps   int64  `yaml:"loot_bps"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Economy.TransferFeeBps < 0 || t.Economy.TransferFeeBps > 10000 {
		return fmt.Errorf("transfer_fee_bps out of range: %d", t.Economy.TransferFeeBps)
	}
	if t.Economy.LoanMinCents <= 0 || t.Economy.LoanMaxCents < t.Economy.LoanMinCents {
		return fmt.Errorf("loan bounds invalid: [%d, %d]", t.Economy.LoanMinCents, t.Economy.LoanMaxCents)
	}
	if t.Economy.MaxCardsPerAccount <= 0 {
		return fmt.Errorf("max_cards_per_account must be positive")
	}
	if t.Heist.BankDuration <= 0 || t.Heist.ATMDuration <= 0 {
		return fmt.Errorf("heist durations must be positive")
	}
	for name, m := range t.Heist.Methods {
		switch models.HeistMethod(name) {
		case models.HeistMethodDrill, models.HeistMethodExplosives, models.HeistMethodHack, models.HeistMethodInsideJob:
		default:
			return fmt.Errorf("unknown heist method %q", name)
		}
		if m.RequiredItem == "" {
			return fmt.Errorf("heist method %q has no required item", name)
		}
		if m.LootBps <= 0 || m.LootBps > 10000 {
			return fmt.Errorf("heist method %q loot_bps out of range: %d", name, m.LootBps)
		}
	}
	seen := make(map[string]bool)
	for _, b := range t.Heist.Banks {
		if b.ID == "" || seen[b.ID] {
			return fmt.Errorf("bank target id %q missing or duplicated", b.ID)
		}
		seen[b.ID] = true
	}
	for _, a := range t.Heist.ATMs {
		if a.ID == "" || seen[a.ID] {
			return fmt.Errorf("atm target id %q missing or duplicated", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// Default returns the balance constants shipped in tuning.yaml. Tests build on
// this instead of reading the file.
func Default() Tuning {
	return Tuning{
		Economy: Economy{
			TransferFeeBps:     100,
			SavingsInterestBps: 150,
			LoanAnnualRateBps:  700,
			LoanMinCents:       100000,
			LoanMaxCents:       10000000,
			LoanMinTermMonths:  6,
			LoanMaxTermMonths:  60,
			MaxCardsPerAccount: 3,
		},
		Heist: Heist{
			BankCooldown:   Duration(90 * time.Minute),
			ATMCooldown:    Duration(30 * time.Minute),
			BankDuration:   Duration(10 * time.Minute),
			ATMDuration:    Duration(2 * time.Minute),
			MinPolice:      2,
			EscapeRadius:   25,
			LootFloorCents: 50000,
			Methods: map[string]Method{
				string(models.HeistMethodDrill):      {RequiredItem: "thermal_drill", LootBps: 2000, MaxSecurity: 2},
				string(models.HeistMethodExplosives): {RequiredItem: "c4_charge", LootBps: 3500, MaxSecurity: 3},
				string(models.HeistMethodHack):       {RequiredItem: "vault_laptop", LootBps: 3000, MaxSecurity: 4},
				string(models.HeistMethodInsideJob):  {RequiredItem: "vault_keycard", LootBps: 5000, MaxSecurity: 5},
			},
			Banks: []Bank{
				{ID: "fleeca_legion", Name: "Fleeca Legion Square", SecurityLevel: 2, VaultCents: 25000000},
				{ID: "fleeca_hawick", Name: "Fleeca Hawick Ave", SecurityLevel: 3, VaultCents: 40000000},
				{ID: "pacific_standard", Name: "Pacific Standard", SecurityLevel: 5, VaultCents: 120000000},
			},
			ATMs: []ATM{
				{ID: "atm_grove_st", Name: "Grove Street ATM", CashCents: 1500000, LootBps: 4000},
				{ID: "atm_vinewood", Name: "Vinewood Blvd ATM", CashCents: 2500000, LootBps: 4000},
			},
		},
	}
}
