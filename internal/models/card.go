package models

import (
	"time"

	"github.com/google/uuid"
)

// CardStatus represents the lifecycle status of an issued card
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusRevoked CardStatus = "REVOKED"
)

// Card represents a debit card issued against an account. CVV and PIN are
// stored only as hashes; the clear values are returned once at issuance.
type Card struct {
	CreatedAt   time.Time  `db:"created_at"`
	CardNumber  string     `db:"card_number"`
	HolderName  string     `db:"holder_name"`
	CVVHash     string     `db:"cvv_hash"`
	PINHash     string     `db:"pin_hash"`
	Status      CardStatus `db:"status"`
	ExpiryMonth int        `db:"expiry_month"`
	ExpiryYear  int        `db:"expiry_year"`
	ID          uuid.UUID  `db:"id"`
	AccountID   uuid.UUID  `db:"account_id"`
}
