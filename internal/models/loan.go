package models

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus represents the approval state of a loan application
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "PENDING"
	LoanStatusApproved LoanStatus = "APPROVED"
	LoanStatusDenied   LoanStatus = "DENIED"
)

// Loan represents a loan application and, once approved, its repayment terms.
// Status is terminal once Approved or Denied.
type Loan struct {
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	ApproverID          string     `db:"approver_id"`
	DecisionReason      string     `db:"decision_reason"`
	Status              LoanStatus `db:"status"`
	PrincipalCents      int64      `db:"principal_cents"`
	AnnualRateBps       int64      `db:"annual_rate_bps"`
	TermMonths          int        `db:"term_months"`
	MonthlyPaymentCents int64      `db:"monthly_payment_cents"`
	ID                  uuid.UUID  `db:"id"`
	AccountID           uuid.UUID  `db:"account_id"`
}

// IsProcessed reports whether the loan has reached a terminal status.
func (l *Loan) IsProcessed() bool {
	return l.Status != LoanStatusPending
}
