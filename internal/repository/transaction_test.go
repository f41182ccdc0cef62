package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citywide-rp/bankcore/internal/models"
)

func TestTransactionRepository_Create_DuplicateReference(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	account := seededAccount(t, NewAccountRepository(database), "1000200030")
	repo := NewTransactionRepository(database)

	first := &models.Transaction{
		ID:              uuid.New(),
		AccountID:       account.ID,
		Type:            models.TransactionTypeDeposit,
		AmountCents:     5000,
		ReferenceNumber: "DEP-20260830-000001",
		CreatedAt:       time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), first))

	second := &models.Transaction{
		ID:              uuid.New(),
		AccountID:       account.ID,
		Type:            models.TransactionTypeDeposit,
		AmountCents:     7000,
		ReferenceNumber: "DEP-20260830-000001",
		CreatedAt:       time.Now(),
	}
	err := repo.Create(context.Background(), second)
	assert.ErrorIs(t, err, models.ErrDuplicateTransaction)
}

func TestTransactionRepository_ListByAccount(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	account := seededAccount(t, NewAccountRepository(database), "1000200030")
	other := seededAccount(t, NewAccountRepository(database), "2000300040")
	repo := NewTransactionRepository(database)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		txn := &models.Transaction{
			ID:              uuid.New(),
			AccountID:       account.ID,
			Type:            models.TransactionTypeDeposit,
			AmountCents:     int64(1000 * (i + 1)),
			ReferenceNumber: fmt.Sprintf("DEP-20260830-%06d", i),
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), txn))
	}
	noise := &models.Transaction{
		ID:              uuid.New(),
		AccountID:       other.ID,
		Type:            models.TransactionTypeInterest,
		AmountCents:     1250,
		ReferenceNumber: "INT-20260830-000000",
		CreatedAt:       base,
	}
	require.NoError(t, repo.Create(context.Background(), noise))

	t.Run("newest first", func(t *testing.T) {
		txns, err := repo.ListByAccount(context.Background(), account.ID, 10)
		require.NoError(t, err)
		require.Len(t, txns, 5)

		assert.Equal(t, int64(5000), txns[0].AmountCents)
		assert.Equal(t, int64(1000), txns[4].AmountCents)
		for _, txn := range txns {
			assert.Equal(t, account.ID, txn.AccountID)
		}
	})

	t.Run("limit applies", func(t *testing.T) {
		txns, err := repo.ListByAccount(context.Background(), account.ID, 2)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, int64(5000), txns[0].AmountCents)
		assert.Equal(t, int64(4000), txns[1].AmountCents)
	})

	t.Run("account with no activity", func(t *testing.T) {
		frozen := seededAccount(t, NewAccountRepository(database), "3000400050")
		txns, err := repo.ListByAccount(context.Background(), frozen.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})
}
