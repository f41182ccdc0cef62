package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citywide-rp/bankcore/internal/models"
)

func createActiveCard(t *testing.T, repo CardRepository, accountID uuid.UUID, cardNumber string) *models.Card {
	t.Helper()
	card := &models.Card{
		ID:          uuid.New(),
		AccountID:   accountID,
		CardNumber:  cardNumber,
		HolderName:  "Jordan B.",
		CVVHash:     "x",
		PINHash:     "x",
		Status:      models.CardStatusActive,
		ExpiryMonth: 8,
		ExpiryYear:  2030,
	}
	require.NoError(t, repo.Create(context.Background(), card))
	return card
}

func TestCardRepository_CountActiveByAccount(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	account := seededAccount(t, NewAccountRepository(database), "1000200030")
	repo := NewCardRepository(database)

	count, err := repo.CountActiveByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	var last *models.Card
	for i := 0; i < 3; i++ {
		last = createActiveCard(t, repo, account.ID, fmt.Sprintf("453201511283036%d", i))
	}

	count, err = repo.CountActiveByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, repo.UpdateStatus(context.Background(), last.ID, models.CardStatusRevoked))

	count, err = repo.CountActiveByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "revoked cards do not count toward the limit")
}

func TestCardRepository_ListByAccount(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	account := seededAccount(t, NewAccountRepository(database), "1000200030")
	repo := NewCardRepository(database)

	createActiveCard(t, repo, account.ID, "4532015112830366")
	createActiveCard(t, repo, account.ID, "4532015112830374")

	cards, err := repo.ListByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, card := range cards {
		assert.Equal(t, account.ID, card.AccountID)
		assert.Equal(t, models.CardStatusActive, card.Status)
	}
}

func TestCardRepository_UpdateStatus_NotFound(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewCardRepository(database)

	err := repo.UpdateStatus(context.Background(), uuid.New(), models.CardStatusRevoked)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
