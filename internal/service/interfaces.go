package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/models"
)

// AccountManager handles account lifecycle, PIN and card operations
type AccountManager interface {
	CreateAccount(ctx context.Context, ownerID string, accountType models.AccountType, initialBalanceCents int64) (*CreatedAccount, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	Statement(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error)
	ChangePIN(ctx context.Context, accountID uuid.UUID, oldPIN, newPIN string) error
	VerifyPIN(ctx context.Context, accountID uuid.UUID, pin string) (bool, error)
	IssueCard(ctx context.Context, accountID uuid.UUID, holderName string) (*IssuedCard, error)
	FreezeAccount(ctx context.Context, accountID uuid.UUID, actorID, reason string) error
	UnfreezeAccount(ctx context.Context, accountID uuid.UUID, actorID, reason string) error
}

// Transactor is the transaction engine's operation surface
type Transactor interface {
	Deposit(ctx context.Context, accountID, token uuid.UUID, amountCents int64, location string) (*models.Transaction, error)
	Withdraw(ctx context.Context, accountID, token uuid.UUID, amountCents int64, pinVerified bool, location string) (*models.Transaction, error)
	Transfer(ctx context.Context, accountID, token uuid.UUID, recipientRef string, amountCents int64, pinVerified bool, location string) (*TransferResult, error)
	ApplyInterest(ctx context.Context) (*InterestRun, error)
}

// LoanManager handles the loan application and decision workflow
type LoanManager interface {
	ApplyForLoan(ctx context.Context, accountID uuid.UUID, amountCents int64, termMonths int) (*models.Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*models.Loan, error)
	ApproveLoan(ctx context.Context, loanID uuid.UUID, managerID string) (*models.Loan, error)
	DenyLoan(ctx context.Context, loanID uuid.UUID, managerID, reason string) (*models.Loan, error)
}

// Ensure concrete types implement interfaces
var (
	_ AccountManager = (*AccountService)(nil)
	_ Transactor     = (*TransactionService)(nil)
	_ LoanManager    = (*LoanService)(nil)
)
