package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/db"
	"github.com/citywide-rp/bankcore/internal/events"
	"github.com/citywide-rp/bankcore/internal/keylock"
	"github.com/citywide-rp/bankcore/internal/models"
	"github.com/citywide-rp/bankcore/internal/repository"
	"github.com/citywide-rp/bankcore/internal/tuning"
)

// LoanService handles the loan application and approval workflow. Approved
// principal is credited through the same guarded ledger path the transaction
// engine uses.
type LoanService struct {
	db     *db.DB
	locks  *keylock.KeyLock
	sink   events.Sink
	eco    tuning.Economy
	logger *slog.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(
	database *db.DB,
	locks *keylock.KeyLock,
	sink events.Sink,
	eco tuning.Economy,
	logger *slog.Logger,
) *LoanService {
	return &LoanService{
		db:     database,
		locks:  locks,
		sink:   sink,
		eco:    eco,
		logger: logger,
	}
}

// ApplyForLoan files a loan application. One open (pending or approved) loan
// is allowed per account at a time.
func (s *LoanService) ApplyForLoan(ctx context.Context, accountID uuid.UUID, amountCents int64, termMonths int) (*models.Loan, error) {
	return s.performApply(ctx, repository.NewAccountRepository(s.db), repository.NewLoanRepository(s.db), accountID, amountCents, termMonths)
}

func (s *LoanService) performApply(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	loanRepo repository.LoanRepository,
	accountID uuid.UUID,
	amountCents int64,
	termMonths int,
) (*models.Loan, error) {
	if amountCents < s.eco.LoanMinCents || amountCents > s.eco.LoanMaxCents {
		return nil, &ServiceError{
			Kind:    KindValidation,
			Code:    ErrCodeLoanOutOfRange,
			Message: fmt.Sprintf("loan amount must be between %d and %d", s.eco.LoanMinCents, s.eco.LoanMaxCents),
		}
	}
	if termMonths < s.eco.LoanMinTermMonths || termMonths > s.eco.LoanMaxTermMonths {
		return nil, &ServiceError{
			Kind:    KindValidation,
			Code:    ErrCodeLoanOutOfRange,
			Message: fmt.Sprintf("loan term must be between %d and %d months", s.eco.LoanMinTermMonths, s.eco.LoanMaxTermMonths),
		}
	}

	account, err := accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, accountLookupError(err)
	}
	if account.IsFrozen() {
		return nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeAccountFrozen, Message: "account is frozen"}
	}

	open, err := loanRepo.HasOpenLoan(ctx, accountID)
	if err != nil {
		return nil, errInternal(err)
	}
	if open {
		return nil, &ServiceError{Kind: KindConflict, Code: ErrCodeDuplicateLoan, Message: "an open loan already exists for this account"}
	}

	loan := &models.Loan{
		ID:                  uuid.New(),
		AccountID:           accountID,
		PrincipalCents:      amountCents,
		AnnualRateBps:       s.eco.LoanAnnualRateBps,
		TermMonths:          termMonths,
		MonthlyPaymentCents: MonthlyPayment(amountCents, s.eco.LoanAnnualRateBps, termMonths),
		Status:              models.LoanStatusPending,
	}

	if err := loanRepo.Create(ctx, loan); err != nil {
		return nil, errInternal(err)
	}

	s.logger.Info("loan application filed",
		"loan_id", loan.ID,
		"account_id", accountID,
		"principal_cents", amountCents,
		"term_months", termMonths,
	)

	return loan, nil
}

// GetLoan retrieves a loan by id
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*models.Loan, error) {
	loan, err := repository.NewLoanRepository(s.db).FindByID(ctx, loanID)
	if err != nil {
		return nil, loanLookupError(err)
	}
	return loan, nil
}

// ApproveLoan transitions a pending loan to approved and credits the
// principal to the account in the same store transaction.
func (s *LoanService) ApproveLoan(ctx context.Context, loanID uuid.UUID, managerID string) (*models.Loan, error) {
	// The loan is re-read under a row lock inside the transaction; this
	// lookup only resolves which account key to serialize on.
	loan, err := repository.NewLoanRepository(s.db).FindByID(ctx, loanID)
	if err != nil {
		return nil, loanLookupError(err)
	}

	key := loan.AccountID.String()
	if !s.locks.TryAcquire(key) {
		return nil, &ServiceError{Kind: KindConflict, Code: ErrCodeTransactionInProgress, Message: "another transaction is in progress for this account"}
	}
	defer s.locks.Release(key)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errInternal(err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	approved, balance, err := s.performApprove(ctx, repository.NewAccountRepository(tx), repository.NewLoanRepository(tx), repository.NewTransactionRepository(tx), loanID, managerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errInternal(err)
	}

	s.sink.Publish(events.Event{Type: events.TypeBalanceChanged, Payload: events.BalanceChanged{
		AccountID:    approved.AccountID.String(),
		BalanceCents: balance,
	}})

	s.logger.Info("loan approved",
		"loan_id", loanID,
		"account_id", approved.AccountID,
		"approver_id", managerID,
	)

	return approved, nil
}

// performApprove contains the core approval business logic
func (s *LoanService) performApprove(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	loanRepo repository.LoanRepository,
	transactionRepo repository.TransactionRepository,
	loanID uuid.UUID,
	managerID string,
) (*models.Loan, int64, error) {
	loan, err := loanRepo.FindByIDForUpdate(ctx, loanID)
	if err != nil {
		return nil, 0, loanLookupError(err)
	}
	if loan.IsProcessed() {
		return nil, 0, &ServiceError{Kind: KindConflict, Code: ErrCodeLoanAlreadyProcessed, Message: "loan has already been processed"}
	}

	account, err := accountRepo.FindByIDForUpdate(ctx, loan.AccountID)
	if err != nil {
		return nil, 0, accountLookupError(err)
	}
	if account.IsFrozen() {
		return nil, 0, &ServiceError{Kind: KindPrecondition, Code: ErrCodeAccountFrozen, Message: "account is frozen"}
	}

	if err := loanRepo.UpdateDecision(ctx, loanID, models.LoanStatusApproved, managerID, ""); err != nil {
		return nil, 0, errInternal(err)
	}
	if err := accountRepo.AdjustBalance(ctx, loan.AccountID, loan.PrincipalCents); err != nil {
		return nil, 0, errInternal(err)
	}

	if _, err := postEntry(ctx, transactionRepo, &models.Transaction{
		AccountID:    loan.AccountID,
		Type:         models.TransactionTypeLoan,
		AmountCents:  loan.PrincipalCents,
		Counterparty: loanID.String(),
	}); err != nil {
		return nil, 0, err
	}

	loan.Status = models.LoanStatusApproved
	loan.ApproverID = managerID
	return loan, account.BalanceCents + loan.PrincipalCents, nil
}

// DenyLoan transitions a pending loan to denied.
func (s *LoanService) DenyLoan(ctx context.Context, loanID uuid.UUID, managerID, reason string) (*models.Loan, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errInternal(err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	denied, err := s.performDeny(ctx, repository.NewLoanRepository(tx), loanID, managerID, reason)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errInternal(err)
	}

	s.logger.Info("loan denied",
		"loan_id", loanID,
		"approver_id", managerID,
		"reason", reason,
	)

	return denied, nil
}

// performDeny contains the core denial business logic
func (s *LoanService) performDeny(
	ctx context.Context,
	loanRepo repository.LoanRepository,
	loanID uuid.UUID,
	managerID, reason string,
) (*models.Loan, error) {
	loan, err := loanRepo.FindByIDForUpdate(ctx, loanID)
	if err != nil {
		return nil, loanLookupError(err)
	}
	if loan.IsProcessed() {
		return nil, &ServiceError{Kind: KindConflict, Code: ErrCodeLoanAlreadyProcessed, Message: "loan has already been processed"}
	}

	if err := loanRepo.UpdateDecision(ctx, loanID, models.LoanStatusDenied, managerID, reason); err != nil {
		return nil, errInternal(err)
	}

	loan.Status = models.LoanStatusDenied
	loan.ApproverID = managerID
	loan.DecisionReason = reason
	return loan, nil
}

// MonthlyPayment computes the standard annuity payment for the principal,
// annual rate (basis points) and term, rounded to the nearest minor unit.
func MonthlyPayment(principalCents, annualRateBps int64, termMonths int) int64 {
	if termMonths <= 0 {
		return 0
	}
	if annualRateBps == 0 {
		return int64(math.Ceil(float64(principalCents) / float64(termMonths)))
	}

	monthlyRate := float64(annualRateBps) / 10000 / 12
	factor := math.Pow(1+monthlyRate, float64(termMonths))
	payment := float64(principalCents) * monthlyRate * factor / (factor - 1)
	return int64(math.Round(payment))
}

func loanLookupError(err error) *ServiceError {
	if errors.Is(err, models.ErrNotFound) {
		return &ServiceError{Kind: KindNotFound, Code: ErrCodeLoanNotFound, Message: "loan not found"}
	}
	return errInternal(err)
}
