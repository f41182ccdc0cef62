package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/citywide-rp/bankcore/internal/db"
	"github.com/citywide-rp/bankcore/internal/models"
	"github.com/citywide-rp/bankcore/internal/repository"
	"github.com/citywide-rp/bankcore/internal/tuning"
)

// cardBIN prefixes every issued card number.
const cardBIN = "453201"

// AccountService owns account lifecycle, PIN verification and card issuance.
type AccountService struct {
	db     *db.DB
	eco    tuning.Economy
	logger *slog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(database *db.DB, eco tuning.Economy, logger *slog.Logger) *AccountService {
	return &AccountService{
		db:     database,
		eco:    eco,
		logger: logger,
	}
}

// CreatedAccount carries the one-time clear PIN alongside the stored account.
// The PIN is never logged or persisted in clear.
type CreatedAccount struct {
	Account *models.Account
	PIN     string
}

// IssuedCard carries the one-time clear card secrets alongside the stored card.
type IssuedCard struct {
	Card *models.Card
	CVV  string
	PIN  string
}

// CreateAccount opens an account for the owner with a generated account
// number and default PIN. The clear PIN is returned exactly once for
// out-of-band delivery.
func (s *AccountService) CreateAccount(ctx context.Context, ownerID string, accountType models.AccountType, initialBalanceCents int64) (*CreatedAccount, error) {
	return s.performCreateAccount(ctx, repository.NewAccountRepository(s.db), ownerID, accountType, initialBalanceCents)
}

func (s *AccountService) performCreateAccount(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	ownerID string,
	accountType models.AccountType,
	initialBalanceCents int64,
) (*CreatedAccount, error) {
	if accountType != models.AccountTypePersonal && accountType != models.AccountTypeSavings {
		return nil, &ServiceError{Kind: KindValidation, Code: ErrCodeInvalidTarget, Message: fmt.Sprintf("unknown account type %q", accountType)}
	}
	if initialBalanceCents < 0 {
		return nil, &ServiceError{Kind: KindValidation, Code: ErrCodeInvalidAmount, Message: "initial balance cannot be negative"}
	}

	pin := randomDigits(4)
	pinHash, err := hashSecret(pin)
	if err != nil {
		return nil, errInternal(err)
	}

	var interestBps int64
	if accountType == models.AccountTypeSavings {
		interestBps = s.eco.SavingsInterestBps
	}

	account := &models.Account{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		AccountNumber: randomDigits(10),
		PINHash:       pinHash,
		Type:          accountType,
		Status:        models.AccountStatusActive,
		BalanceCents:  initialBalanceCents,
		InterestBps:   interestBps,
	}

	if err := accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, models.ErrDuplicateAccount) {
			return nil, &ServiceError{Kind: KindConflict, Code: ErrCodeAccountExists, Message: "account already exists for this owner"}
		}
		return nil, errInternal(err)
	}

	s.logger.Info("account created",
		"account_id", account.ID,
		"owner_id", ownerID,
		"type", accountType,
	)

	return &CreatedAccount{Account: account, PIN: pin}, nil
}

// GetAccount retrieves an account by id
func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := repository.NewAccountRepository(s.db).FindByID(ctx, accountID)
	if err != nil {
		return nil, accountLookupError(err)
	}
	return account, nil
}

// Statement returns the most recent ledger records for the account
func (s *AccountService) Statement(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	txns, err := repository.NewTransactionRepository(s.db).ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, errInternal(err)
	}
	return txns, nil
}

// ChangePIN replaces the account PIN after verifying the current one.
func (s *AccountService) ChangePIN(ctx context.Context, accountID uuid.UUID, oldPIN, newPIN string) error {
	return s.performChangePIN(ctx, repository.NewAccountRepository(s.db), accountID, oldPIN, newPIN)
}

func (s *AccountService) performChangePIN(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	accountID uuid.UUID,
	oldPIN, newPIN string,
) error {
	if err := ValidatePIN(newPIN); err != nil {
		return &ServiceError{Kind: KindValidation, Code: ErrCodeInvalidPINFormat, Message: err.Error()}
	}

	account, err := accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return accountLookupError(err)
	}

	if !checkSecret(account.PINHash, oldPIN) {
		return &ServiceError{Kind: KindPrecondition, Code: ErrCodeInvalidCredential, Message: "current PIN does not match"}
	}

	newHash, err := hashSecret(newPIN)
	if err != nil {
		return errInternal(err)
	}
	if err := accountRepo.UpdatePINHash(ctx, accountID, newHash); err != nil {
		return errInternal(err)
	}

	s.logger.Info("account PIN changed", "account_id", accountID)
	return nil
}

// VerifyPIN reports whether pin matches the stored hash. Side-effect free;
// used as a precondition gate for sensitive operations.
func (s *AccountService) VerifyPIN(ctx context.Context, accountID uuid.UUID, pin string) (bool, error) {
	account, err := repository.NewAccountRepository(s.db).FindByID(ctx, accountID)
	if err != nil {
		return false, accountLookupError(err)
	}
	return checkSecret(account.PINHash, pin), nil
}

// IssueCard issues a new card against the account, enforcing the per-account
// active card cap. Clear secrets are returned exactly once.
func (s *AccountService) IssueCard(ctx context.Context, accountID uuid.UUID, holderName string) (*IssuedCard, error) {
	return s.performIssueCard(ctx, repository.NewAccountRepository(s.db), repository.NewCardRepository(s.db), accountID, holderName)
}

func (s *AccountService) performIssueCard(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	cardRepo repository.CardRepository,
	accountID uuid.UUID,
	holderName string,
) (*IssuedCard, error) {
	account, err := accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, accountLookupError(err)
	}
	if account.IsFrozen() {
		return nil, &ServiceError{Kind: KindPrecondition, Code: ErrCodeAccountFrozen, Message: "account is frozen"}
	}

	active, err := cardRepo.CountActiveByAccount(ctx, accountID)
	if err != nil {
		return nil, errInternal(err)
	}
	if active >= s.eco.MaxCardsPerAccount {
		return nil, &ServiceError{
			Kind:    KindPrecondition,
			Code:    ErrCodeCardLimitReached,
			Message: fmt.Sprintf("account already has %d active cards", active),
		}
	}

	cvv := randomDigits(3)
	pin := randomDigits(4)
	cvvHash, err := hashSecret(cvv)
	if err != nil {
		return nil, errInternal(err)
	}
	pinHash, err := hashSecret(pin)
	if err != nil {
		return nil, errInternal(err)
	}

	expiry := time.Now().AddDate(4, 0, 0)
	card := &models.Card{
		ID:          uuid.New(),
		AccountID:   accountID,
		CardNumber:  newCardNumber(),
		HolderName:  maskHolderName(holderName),
		CVVHash:     cvvHash,
		PINHash:     pinHash,
		Status:      models.CardStatusActive,
		ExpiryMonth: int(expiry.Month()),
		ExpiryYear:  expiry.Year(),
	}

	if err := cardRepo.Create(ctx, card); err != nil {
		return nil, errInternal(err)
	}

	s.logger.Info("card issued", "account_id", accountID, "card_id", card.ID)
	return &IssuedCard{Card: card, CVV: cvv, PIN: pin}, nil
}

// FreezeAccount blocks all transaction engine operations on the account.
// Manager-only; the actor and reason are kept in the audit log.
func (s *AccountService) FreezeAccount(ctx context.Context, accountID uuid.UUID, actorID, reason string) error {
	return s.setStatus(ctx, accountID, models.AccountStatusFrozen, actorID, reason)
}

// UnfreezeAccount restores the account to active.
func (s *AccountService) UnfreezeAccount(ctx context.Context, accountID uuid.UUID, actorID, reason string) error {
	return s.setStatus(ctx, accountID, models.AccountStatusActive, actorID, reason)
}

func (s *AccountService) setStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus, actorID, reason string) error {
	err := repository.NewAccountRepository(s.db).UpdateStatus(ctx, accountID, status)
	if errors.Is(err, models.ErrNotFound) {
		return &ServiceError{Kind: KindNotFound, Code: ErrCodeAccountNotFound, Message: "account not found"}
	}
	if err != nil {
		return errInternal(err)
	}

	s.logger.Info("account status changed",
		"account_id", accountID,
		"status", status,
		"actor_id", actorID,
		"reason", reason,
	)
	return nil
}

func hashSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(b), nil
}

func checkSecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func randomDigits(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		digits[i] = byte('0' + rand.IntN(10))
	}
	return string(digits)
}

// newCardNumber generates a 16-digit Luhn-valid card number under the bank BIN.
func newCardNumber() string {
	body := cardBIN + randomDigits(9)

	// Compute the Luhn check digit over the 15-digit body.
	sum := 0
	double := true
	for i := len(body) - 1; i >= 0; i-- {
		digit := int(body[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	check := (10 - sum%10) % 10

	return body + strconv.Itoa(check)
}

// maskHolderName keeps the first word of the name and reduces the rest to
// initials, the form embossed on statements and event payloads.
func maskHolderName(name string) string {
	fields := strings.Fields(name)
	if len(fields) <= 1 {
		return name
	}
	masked := fields[0]
	for _, f := range fields[1:] {
		masked += " " + string([]rune(f)[0]) + "."
	}
	return masked
}
