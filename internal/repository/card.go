package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/models"
)

// CardRepository defines the interface for card data access
type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	CountActiveByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Card, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CardStatus) error
}

// cardRepository implements CardRepository
type cardRepository struct {
	q Querier
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(q Querier) CardRepository {
	return &cardRepository{q: q}
}

// Create inserts a new card row
func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (id, account_id, card_number, holder_name, cvv_hash, pin_hash, status, expiry_month, expiry_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		card.ID,
		card.AccountID,
		card.CardNumber,
		card.HolderName,
		card.CVVHash,
		card.PINHash,
		card.Status,
		card.ExpiryMonth,
		card.ExpiryYear,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// CountActiveByAccount returns the number of active cards on the account
func (r *cardRepository) CountActiveByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM cards WHERE account_id = $1 AND status = $2`

	var count int
	err := r.q.QueryRowContext(ctx, query, accountID, models.CardStatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active cards: %w", err)
	}

	return count, nil
}

// ListByAccount returns all cards issued against the account
func (r *cardRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Card, error) {
	query := `
		SELECT id, account_id, card_number, holder_name, cvv_hash, pin_hash, status, expiry_month, expiry_year, created_at
		FROM cards
		WHERE account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		var card models.Card
		err := rows.Scan(
			&card.ID,
			&card.AccountID,
			&card.CardNumber,
			&card.HolderName,
			&card.CVVHash,
			&card.PINHash,
			&card.Status,
			&card.ExpiryMonth,
			&card.ExpiryYear,
			&card.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, &card)
	}

	return cards, rows.Err()
}

// UpdateStatus revokes or reactivates a card
func (r *cardRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CardStatus) error {
	query := `UPDATE cards SET status = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update card status: %w", err)
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
