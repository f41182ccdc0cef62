package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountType distinguishes personal checking from interest-bearing savings
type AccountType string

const (
	AccountTypePersonal AccountType = "PERSONAL"
	AccountTypeSavings  AccountType = "SAVINGS"
)

// AccountStatus represents the lifecycle status of an account
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
)

// Account represents a character's bank account. Balances are integer minor
// currency units; balance_cents is written only through the transaction engine.
type Account struct {
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
	OwnerID       string        `db:"owner_id"`
	AccountNumber string        `db:"account_number"`
	PINHash       string        `db:"pin_hash"`
	Type          AccountType   `db:"type"`
	Status        AccountStatus `db:"status"`
	BalanceCents  int64         `db:"balance_cents"`
	InterestBps   int64         `db:"interest_bps"`
	ID            uuid.UUID     `db:"id"`
}

// IsFrozen reports whether the account rejects mutating operations.
func (a *Account) IsFrozen() bool {
	return a.Status == AccountStatusFrozen
}
