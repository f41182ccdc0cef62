package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/models"
)

// TransactionRepository defines the interface for ledger record access.
// transaction_records is append-only; there are no update methods.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error)
}

// transactionRepository implements TransactionRepository
type transactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(q Querier) TransactionRepository {
	return &transactionRepository{q: q}
}

// Create appends a ledger record. Returns models.ErrDuplicateTransaction on a
// reference number collision so callers can regenerate and retry.
func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transaction_records (id, account_id, type, amount_cents, counterparty, location, reference_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		txn.ID,
		txn.AccountID,
		txn.Type,
		txn.AmountCents,
		txn.Counterparty,
		txn.Location,
		txn.ReferenceNumber,
		txn.CreatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateTransaction
	}
	if err != nil {
		return fmt.Errorf("failed to create transaction record: %w", err)
	}

	return nil
}

// ListByAccount returns the most recent ledger records for an account
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, account_id, type, amount_cents, counterparty, location, reference_number, created_at
		FROM transaction_records
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction records: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.AccountID,
			&txn.Type,
			&txn.AmountCents,
			&txn.Counterparty,
			&txn.Location,
			&txn.ReferenceNumber,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		txns = append(txns, &txn)
	}

	return txns, rows.Err()
}
