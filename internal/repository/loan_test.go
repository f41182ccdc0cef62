package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citywide-rp/bankcore/internal/models"
)

func createPendingLoan(t *testing.T, repo LoanRepository, accountID uuid.UUID) *models.Loan {
	t.Helper()
	loan := &models.Loan{
		ID:                  uuid.New(),
		AccountID:           accountID,
		PrincipalCents:      500000,
		AnnualRateBps:       700,
		TermMonths:          12,
		MonthlyPaymentCents: 43263,
		Status:              models.LoanStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), loan))
	return loan
}

func TestLoanRepository_HasOpenLoan(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	account := seededAccount(t, NewAccountRepository(database), "1000200030")
	repo := NewLoanRepository(database)

	open, err := repo.HasOpenLoan(context.Background(), account.ID)
	require.NoError(t, err)
	assert.False(t, open, "no loans yet")

	loan := createPendingLoan(t, repo, account.ID)

	open, err = repo.HasOpenLoan(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, open, "pending loan counts as open")

	require.NoError(t, repo.UpdateDecision(context.Background(), loan.ID, models.LoanStatusApproved, "manager-1", ""))

	open, err = repo.HasOpenLoan(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, open, "approved loan counts as open")

	require.NoError(t, repo.UpdateDecision(context.Background(), loan.ID, models.LoanStatusDenied, "manager-1", "test reset"))

	open, err = repo.HasOpenLoan(context.Background(), account.ID)
	require.NoError(t, err)
	assert.False(t, open, "denied loan is closed")
}

func TestLoanRepository_UpdateDecision(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	account := seededAccount(t, NewAccountRepository(database), "1000200030")
	repo := NewLoanRepository(database)
	loan := createPendingLoan(t, repo, account.ID)

	require.NoError(t, repo.UpdateDecision(context.Background(), loan.ID, models.LoanStatusDenied, "manager-7", "income too low"))

	updated, err := repo.FindByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusDenied, updated.Status)
	assert.Equal(t, "manager-7", updated.ApproverID)
	assert.Equal(t, "income too low", updated.DecisionReason)
	assert.True(t, updated.IsProcessed())

	err = repo.UpdateDecision(context.Background(), uuid.New(), models.LoanStatusApproved, "manager-7", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLoanRepository_FindByID(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	account := seededAccount(t, NewAccountRepository(database), "1000200030")
	repo := NewLoanRepository(database)
	loan := createPendingLoan(t, repo, account.ID)

	found, err := repo.FindByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.PrincipalCents, found.PrincipalCents)
	assert.Equal(t, loan.MonthlyPaymentCents, found.MonthlyPaymentCents)
	assert.Equal(t, models.LoanStatusPending, found.Status)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
