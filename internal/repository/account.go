package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/citywide-rp/bankcore/internal/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindPersonalByOwner(ctx context.Context, ownerID string) (*models.Account, error)
	ListInterestBearing(ctx context.Context) ([]*models.Account, error)
	AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64) error
	UpdateStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus) error
	UpdatePINHash(ctx context.Context, accountID uuid.UUID, pinHash string) error
}

// accountRepository implements AccountRepository
type accountRepository struct {
	q Querier
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(q Querier) AccountRepository {
	return &accountRepository{q: q}
}

const accountColumns = `id, owner_id, account_number, pin_hash, type, status,
	       balance_cents, interest_bps, created_at, updated_at`

// Create inserts a new account row
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, owner_id, account_number, pin_hash, type, status, balance_cents, interest_bps)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		account.ID,
		account.OwnerID,
		account.AccountNumber,
		account.PINHash,
		account.Type,
		account.Status,
		account.BalanceCents,
		account.InterestBps,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateAccount
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// FindByID retrieves an account by its UUID
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// FindByIDForUpdate retrieves an account by UUID with a row lock held for the
// duration of the surrounding store transaction
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// FindByAccountNumber retrieves an account by its account number
func (r *accountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, accountNumber))
}

// FindPersonalByOwner retrieves the owner's personal account, used to resolve
// transfer recipients given an owner id
func (r *accountRepository) FindPersonalByOwner(ctx context.Context, ownerID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 AND type = $2`
	return r.scanOne(r.q.QueryRowContext(ctx, query, ownerID, models.AccountTypePersonal))
}

// ListInterestBearing returns active accounts with a non-zero interest rate
func (r *accountRepository) ListInterestBearing(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = $1 AND interest_bps > 0`

	rows, err := r.q.QueryContext(ctx, query, models.AccountStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list interest-bearing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// AdjustBalance atomically adjusts the balance by the given delta
func (r *accountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64) error {
	query := `
		UPDATE accounts
		SET balance_cents = balance_cents + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, accountID, deltaCents)
	if err != nil {
		return fmt.Errorf("failed to adjust account balance: %w", err)
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

// UpdateStatus sets the account status (freeze/unfreeze)
func (r *accountRepository) UpdateStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus) error {
	query := `UPDATE accounts SET status = $2, updated_at = NOW() WHERE id = $1`
	return r.execExpectingRow(ctx, query, accountID, status)
}

// UpdatePINHash replaces the stored PIN hash
func (r *accountRepository) UpdatePINHash(ctx context.Context, accountID uuid.UUID, pinHash string) error {
	query := `UPDATE accounts SET pin_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execExpectingRow(ctx, query, accountID, pinHash)
}

func (r *accountRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *accountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.AccountNumber,
		&account.PINHash,
		&account.Type,
		&account.Status,
		&account.BalanceCents,
		&account.InterestBps,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// isUniqueViolation reports whether err is a postgres unique constraint failure
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
