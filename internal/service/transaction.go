package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/db"
	"github.com/citywide-rp/bankcore/internal/events"
	"github.com/citywide-rp/bankcore/internal/keylock"
	"github.com/citywide-rp/bankcore/internal/models"
	"github.com/citywide-rp/bankcore/internal/repository"
	"github.com/citywide-rp/bankcore/internal/session"
	"github.com/citywide-rp/bankcore/internal/tuning"
)

// Wallet is the game-world cash collaborator. Deposits pull physical cash
// from the owner's pockets; withdrawals pay it out. Calls are compensated,
// not transactional: a failed store commit refunds the cash side.
type Wallet interface {
	TakeCash(ctx context.Context, ownerID string, amountCents int64) error
	GiveCash(ctx context.Context, ownerID string, amountCents int64) error
}

// TransactionService is the transaction engine. It holds exclusive write
// access to account balances: every component that moves money routes
// through here. Mutating operations serialize per account via a fail-fast
// key lock and run against the store in a single transaction.
type TransactionService struct {
	db     *db.DB
	guard  *session.Guard
	locks  *keylock.KeyLock
	wallet Wallet
	sink   events.Sink
	eco    tuning.Economy
	branch string
	logger *slog.Logger
}

// NewTransactionService creates a new TransactionService. defaultBranch is
// the location stamped on ledger records when the caller does not supply one.
func NewTransactionService(
	database *db.DB,
	guard *session.Guard,
	locks *keylock.KeyLock,
	wallet Wallet,
	sink events.Sink,
	eco tuning.Economy,
	defaultBranch string,
	logger *slog.Logger,
) *TransactionService {
	return &TransactionService{
		db:     database,
		guard:  guard,
		locks:  locks,
		wallet: wallet,
		sink:   sink,
		eco:    eco,
		branch: defaultBranch,
		logger: logger,
	}
}

// TransferResult reports both sides of a completed transfer.
type TransferResult struct {
	Outgoing *models.Transaction
	Fee      *models.Transaction
	Incoming *models.Transaction
}

// InterestRun summarizes one ApplyInterest batch.
type InterestRun struct {
	AccountsCredited int
	TotalCents       int64
	Skipped          int
}

// Deposit moves physical cash into the account balance 1:1.
func (s *TransactionService) Deposit(ctx context.Context, accountID, token uuid.UUID, amountCents int64, location string) (*models.Transaction, error) {
	if err := ValidateAmount(amountCents); err != nil {
		return nil, &ServiceError{Kind: KindValidation, Code: ErrCodeInvalidAmount, Message: err.Error()}
	}
	location = s.location(location)

	release, err := s.acquire(accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errInternal(err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	txn, account, err := s.performDeposit(ctx, repository.NewAccountRepository(tx), repository.NewTransactionRepository(tx), accountID, token, amountCents, location)
	if err != nil {
		return nil, err
	}

	// Cash leaves the owner's pockets before the ledger commit; a failed
	// commit refunds it.
	if err := s.wallet.TakeCash(ctx, account.OwnerID, amountCents); err != nil {
		return nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeInsufficientCash, Message: "not enough cash on hand"}
	}

	if err := tx.Commit(); err != nil {
		if refundErr := s.wallet.GiveCash(ctx, account.OwnerID, amountCents); refundErr != nil {
			s.logger.Error("cash refund failed after commit failure",
				"owner", account.OwnerID, "amount_cents", amountCents, "error", refundErr)
		}
		return nil, errInternal(err)
	}

	s.sink.Publish(events.Event{Type: events.TypeBalanceChanged, Payload: events.BalanceChanged{
		AccountID:    accountID.String(),
		BalanceCents: account.BalanceCents + amountCents,
	}})

	return txn, nil
}

// performDeposit contains the core deposit business logic
func (s *TransactionService) performDeposit(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	accountID, token uuid.UUID,
	amountCents int64,
	location string,
) (*models.Transaction, *models.Account, error) {
	account, err := s.lockedAccount(ctx, accountRepo, accountID, token)
	if err != nil {
		return nil, nil, err
	}

	if err := accountRepo.AdjustBalance(ctx, accountID, amountCents); err != nil {
		return nil, nil, errInternal(err)
	}

	txn, err := postEntry(ctx, transactionRepo, &models.Transaction{
		AccountID:   accountID,
		Type:        models.TransactionTypeDeposit,
		AmountCents: amountCents,
		Location:    location,
	})
	if err != nil {
		return nil, nil, err
	}

	return txn, account, nil
}

// Withdraw pays account funds out as physical cash. The caller must have
// verified the PIN beforehand; an unverified request fails without touching
// anything.
func (s *TransactionService) Withdraw(ctx context.Context, accountID, token uuid.UUID, amountCents int64, pinVerified bool, location string) (*models.Transaction, error) {
	if err := ValidateAmount(amountCents); err != nil {
		return nil, &ServiceError{Kind: KindValidation, Code: ErrCodeInvalidAmount, Message: err.Error()}
	}
	if !pinVerified {
		return nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeRequiresPIN, Message: "PIN verification required"}
	}
	location = s.location(location)

	release, err := s.acquire(accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errInternal(err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	txn, account, err := s.performWithdraw(ctx, repository.NewAccountRepository(tx), repository.NewTransactionRepository(tx), accountID, token, amountCents, location)
	if err != nil {
		return nil, err
	}

	// Cash is handed over before the commit; a failed commit takes it back.
	if err := s.wallet.GiveCash(ctx, account.OwnerID, amountCents); err != nil {
		return nil, errInternal(fmt.Errorf("cash payout failed: %w", err))
	}

	if err := tx.Commit(); err != nil {
		if clawErr := s.wallet.TakeCash(ctx, account.OwnerID, amountCents); clawErr != nil {
			s.logger.Error("cash clawback failed after commit failure",
				"owner", account.OwnerID, "amount_cents", amountCents, "error", clawErr)
		}
		return nil, errInternal(err)
	}

	s.sink.Publish(events.Event{Type: events.TypeBalanceChanged, Payload: events.BalanceChanged{
		AccountID:    accountID.String(),
		BalanceCents: account.BalanceCents - amountCents,
	}})

	return txn, nil
}

// performWithdraw contains the core withdrawal business logic
func (s *TransactionService) performWithdraw(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	accountID, token uuid.UUID,
	amountCents int64,
	location string,
) (*models.Transaction, *models.Account, error) {
	account, err := s.lockedAccount(ctx, accountRepo, accountID, token)
	if err != nil {
		return nil, nil, err
	}

	if account.BalanceCents < amountCents {
		return nil, nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeInsufficientFunds, Message: "insufficient funds"}
	}

	if err := accountRepo.AdjustBalance(ctx, accountID, -amountCents); err != nil {
		return nil, nil, errInternal(err)
	}

	txn, err := postEntry(ctx, transactionRepo, &models.Transaction{
		AccountID:   accountID,
		Type:        models.TransactionTypeWithdraw,
		AmountCents: -amountCents,
		Location:    location,
	})
	if err != nil {
		return nil, nil, err
	}

	return txn, account, nil
}

// Transfer moves amount to the recipient and charges the sender a fee on
// top, recorded as a separate ledger entry. recipientRef resolves by account
// number first, then by owner id.
func (s *TransactionService) Transfer(ctx context.Context, accountID, token uuid.UUID, recipientRef string, amountCents int64, pinVerified bool, location string) (*TransferResult, error) {
	if err := ValidateAmount(amountCents); err != nil {
		return nil, &ServiceError{Kind: KindValidation, Code: ErrCodeInvalidAmount, Message: err.Error()}
	}
	if !pinVerified {
		return nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeRequiresPIN, Message: "PIN verification required"}
	}
	location = s.location(location)

	release, err := s.acquire(accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errInternal(err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	result, balances, err := s.performTransfer(ctx, repository.NewAccountRepository(tx), repository.NewTransactionRepository(tx), accountID, token, recipientRef, amountCents, location)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errInternal(err)
	}

	for id, balance := range balances {
		s.sink.Publish(events.Event{Type: events.TypeBalanceChanged, Payload: events.BalanceChanged{
			AccountID:    id,
			BalanceCents: balance,
		}})
	}

	return result, nil
}

// performTransfer contains the core transfer business logic
func (s *TransactionService) performTransfer(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	accountID, token uuid.UUID,
	recipientRef string,
	amountCents int64,
	location string,
) (*TransferResult, map[string]int64, error) {
	recipient, err := s.resolveRecipient(ctx, accountRepo, recipientRef)
	if err != nil {
		return nil, nil, err
	}
	if recipient.ID == accountID {
		return nil, nil, &ServiceError{Kind: KindValidation, Code: ErrCodeInvalidTarget, Message: "cannot transfer to the same account"}
	}

	// Row locks are taken in id order so two opposing transfers cannot
	// deadlock inside the store.
	first, second := accountID, recipient.ID
	if second.String() < first.String() {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]*models.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		account, err := accountRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, nil, accountLookupError(err)
		}
		locked[id] = account
	}
	sender, recipient := locked[accountID], locked[recipient.ID]

	if !s.guard.CheckAccess(accountID, token) {
		return nil, nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeSessionConflict, Message: "account accessed from another location"}
	}
	if sender.IsFrozen() {
		return nil, nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeAccountFrozen, Message: "account is frozen"}
	}
	if recipient.IsFrozen() {
		return nil, nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeAccountFrozen, Message: "recipient account is frozen"}
	}

	fee := TransferFee(amountCents, s.eco.TransferFeeBps)
	if sender.BalanceCents < amountCents+fee {
		return nil, nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeInsufficientFunds, Message: "insufficient funds to cover amount and fee"}
	}

	if err := accountRepo.AdjustBalance(ctx, sender.ID, -(amountCents + fee)); err != nil {
		return nil, nil, errInternal(err)
	}
	if err := accountRepo.AdjustBalance(ctx, recipient.ID, amountCents); err != nil {
		return nil, nil, errInternal(err)
	}

	outgoing, err := postEntry(ctx, transactionRepo, &models.Transaction{
		AccountID:    sender.ID,
		Type:         models.TransactionTypeTransferOut,
		AmountCents:  -amountCents,
		Counterparty: recipient.AccountNumber,
		Location:     location,
	})
	if err != nil {
		return nil, nil, err
	}

	var feeTxn *models.Transaction
	if fee > 0 {
		feeTxn, err = postEntry(ctx, transactionRepo, &models.Transaction{
			AccountID:    sender.ID,
			Type:         models.TransactionTypeFee,
			AmountCents:  -fee,
			Counterparty: outgoing.ReferenceNumber,
			Location:     location,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	incoming, err := postEntry(ctx, transactionRepo, &models.Transaction{
		AccountID:    recipient.ID,
		Type:         models.TransactionTypeTransferIn,
		AmountCents:  amountCents,
		Counterparty: sender.AccountNumber,
		Location:     location,
	})
	if err != nil {
		return nil, nil, err
	}

	balances := map[string]int64{
		sender.ID.String():    sender.BalanceCents - amountCents - fee,
		recipient.ID.String(): recipient.BalanceCents + amountCents,
	}

	return &TransferResult{Outgoing: outgoing, Fee: feeTxn, Incoming: incoming}, balances, nil
}

// ApplyInterest credits one month of accrual to every active interest-bearing
// account. Zero accruals are skipped silently; accounts busy under another
// operation are skipped and picked up by the next run.
func (s *TransactionService) ApplyInterest(ctx context.Context) (*InterestRun, error) {
	accounts, err := repository.NewAccountRepository(s.db).ListInterestBearing(ctx)
	if err != nil {
		return nil, errInternal(err)
	}

	run := &InterestRun{}
	for _, account := range accounts {
		credited, err := s.accrueOne(ctx, account.ID)
		if err != nil {
			var svcErr *ServiceError
			if errors.As(err, &svcErr) && svcErr.Code == ErrCodeTransactionInProgress {
				run.Skipped++
				continue
			}
			s.logger.Error("interest accrual failed", "account_id", account.ID, "error", err)
			run.Skipped++
			continue
		}
		if credited == 0 {
			run.Skipped++
			continue
		}
		run.AccountsCredited++
		run.TotalCents += credited
	}

	return run, nil
}

func (s *TransactionService) accrueOne(ctx context.Context, accountID uuid.UUID) (int64, error) {
	release, err := s.acquire(accountID)
	if err != nil {
		return 0, err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, errInternal(err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	credited, balance, err := s.performAccrual(ctx, repository.NewAccountRepository(tx), repository.NewTransactionRepository(tx), accountID)
	if err != nil {
		return 0, err
	}
	if credited == 0 {
		return 0, nil
	}

	if err := tx.Commit(); err != nil {
		return 0, errInternal(err)
	}

	s.sink.Publish(events.Event{Type: events.TypeBalanceChanged, Payload: events.BalanceChanged{
		AccountID:    accountID.String(),
		BalanceCents: balance,
	}})

	return credited, nil
}

// performAccrual contains the core interest accrual logic
func (s *TransactionService) performAccrual(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	accountID uuid.UUID,
) (int64, int64, error) {
	account, err := accountRepo.FindByIDForUpdate(ctx, accountID)
	if err != nil {
		return 0, 0, accountLookupError(err)
	}
	if account.IsFrozen() {
		return 0, 0, nil
	}

	credited := MonthlyInterest(account.BalanceCents, account.InterestBps)
	if credited == 0 {
		return 0, 0, nil
	}

	if err := accountRepo.AdjustBalance(ctx, accountID, credited); err != nil {
		return 0, 0, errInternal(err)
	}

	if _, err := postEntry(ctx, transactionRepo, &models.Transaction{
		AccountID:   accountID,
		Type:        models.TransactionTypeInterest,
		AmountCents: credited,
	}); err != nil {
		return 0, 0, err
	}

	return credited, account.BalanceCents + credited, nil
}

// location falls back to the configured home branch when the caller does not
// say where the operation happened.
func (s *TransactionService) location(loc string) string {
	if loc == "" {
		return s.branch
	}
	return loc
}

// acquire takes the per-account serialization guard, failing fast when a
// contending operation holds it. The returned release func is safe under
// defer on every exit path.
func (s *TransactionService) acquire(accountID uuid.UUID) (func(), error) {
	key := accountID.String()
	if !s.locks.TryAcquire(key) {
		return nil, &ServiceError{Kind: KindConflict, Code: ErrCodeTransactionInProgress, Message: "another transaction is in progress for this account"}
	}
	return func() { s.locks.Release(key) }, nil
}

// lockedAccount loads the account under a row lock and re-validates the
// session and frozen-status preconditions.
func (s *TransactionService) lockedAccount(ctx context.Context, accountRepo repository.AccountRepository, accountID, token uuid.UUID) (*models.Account, error) {
	account, err := accountRepo.FindByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, accountLookupError(err)
	}

	if !s.guard.CheckAccess(accountID, token) {
		return nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeSessionConflict, Message: "account accessed from another location"}
	}
	if account.IsFrozen() {
		return nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeAccountFrozen, Message: "account is frozen"}
	}

	return account, nil
}

func (s *TransactionService) resolveRecipient(ctx context.Context, accountRepo repository.AccountRepository, recipientRef string) (*models.Account, error) {
	account, err := accountRepo.FindByAccountNumber(ctx, recipientRef)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, errInternal(err)
	}

	account, err = accountRepo.FindPersonalByOwner(ctx, recipientRef)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &ServiceError{Kind: KindNotFound, Code: ErrCodeRecipientNotFound, Message: "recipient not found"}
	}
	if err != nil {
		return nil, errInternal(err)
	}

	return account, nil
}

// postEntry appends a ledger record, stamping id, reference number and
// timestamp. A reference collision regenerates and retries.
func postEntry(ctx context.Context, transactionRepo repository.TransactionRepository, entry *models.Transaction) (*models.Transaction, error) {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		entry.ID = uuid.New()
		entry.ReferenceNumber = NewReferenceNumber(entry.Type)
		entry.CreatedAt = time.Now()

		err := transactionRepo.Create(ctx, entry)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, models.ErrDuplicateTransaction) {
			return nil, errInternal(err)
		}
	}

	return nil, errInternal(fmt.Errorf("reference number collision persisted after %d attempts", maxAttempts))
}

func accountLookupError(err error) *ServiceError {
	if errors.Is(err, models.ErrNotFound) {
		return &ServiceError{Kind: KindNotFound, Code: ErrCodeAccountNotFound, Message: "account not found"}
	}
	return errInternal(err)
}
