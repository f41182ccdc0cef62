package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/models"
)

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	HasOpenLoan(ctx context.Context, accountID uuid.UUID) (bool, error)
	UpdateDecision(ctx context.Context, id uuid.UUID, status models.LoanStatus, approverID, reason string) error
}

// loanRepository implements LoanRepository
type loanRepository struct {
	q Querier
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(q Querier) LoanRepository {
	return &loanRepository{q: q}
}

const loanColumns = `id, account_id, principal_cents, annual_rate_bps, term_months,
	       monthly_payment_cents, status, approver_id, decision_reason, created_at, updated_at`

// Create inserts a new loan application
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	query := `
		INSERT INTO loans (id, account_id, principal_cents, annual_rate_bps, term_months, monthly_payment_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		loan.ID,
		loan.AccountID,
		loan.PrincipalCents,
		loan.AnnualRateBps,
		loan.TermMonths,
		loan.MonthlyPaymentCents,
		loan.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// FindByID retrieves a loan by its UUID
func (r *loanRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// FindByIDForUpdate retrieves a loan with a row lock held for the duration of
// the surrounding store transaction
func (r *loanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// HasOpenLoan reports whether the account has a Pending or Approved loan
func (r *loanRepository) HasOpenLoan(ctx context.Context, accountID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM loans WHERE account_id = $1 AND status IN ($2, $3))`

	var exists bool
	err := r.q.QueryRowContext(ctx, query, accountID, models.LoanStatusPending, models.LoanStatusApproved).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open loans: %w", err)
	}

	return exists, nil
}

// UpdateDecision records a manager's approval or denial
func (r *loanRepository) UpdateDecision(ctx context.Context, id uuid.UUID, status models.LoanStatus, approverID, reason string) error {
	query := `
		UPDATE loans
		SET status = $2, approver_id = $3, decision_reason = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, id, status, approverID, reason)
	if err != nil {
		return fmt.Errorf("failed to update loan decision: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *loanRepository) scanOne(row *sql.Row) (*models.Loan, error) {
	var loan models.Loan
	err := row.Scan(
		&loan.ID,
		&loan.AccountID,
		&loan.PrincipalCents,
		&loan.AnnualRateBps,
		&loan.TermMonths,
		&loan.MonthlyPaymentCents,
		&loan.Status,
		&loan.ApproverID,
		&loan.DecisionReason,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan: %w", err)
	}
	return &loan, nil
}
