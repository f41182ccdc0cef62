package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the type of ledger entry
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdraw    TransactionType = "WITHDRAW"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeFee         TransactionType = "FEE"
	TransactionTypeInterest    TransactionType = "INTEREST"
	TransactionTypeLoan        TransactionType = "LOAN"
)

// Transaction is an append-only audit entry for account activity.
// AmountCents is signed: credits positive, debits negative.
// Rows are immutable once written.
type Transaction struct {
	CreatedAt       time.Time       `db:"created_at"`
	ReferenceNumber string          `db:"reference_number"`
	Counterparty    string          `db:"counterparty"`
	Location        string          `db:"location"`
	Type            TransactionType `db:"type"`
	AmountCents     int64           `db:"amount_cents"`
	ID              uuid.UUID       `db:"id"`
	AccountID       uuid.UUID       `db:"account_id"`
}
