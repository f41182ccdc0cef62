// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/citywide-rp/bankcore/internal/models"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockAccountRepository is a mock of repository.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func NewMockAccountRepository(t testingT) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	return accountOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	return accountOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	args := m.Called(ctx, accountNumber)
	return accountOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAccountRepository) FindPersonalByOwner(ctx context.Context, ownerID string) (*models.Account, error) {
	args := m.Called(ctx, ownerID)
	return accountOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAccountRepository) ListInterestBearing(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64) error {
	return m.Called(ctx, accountID, deltaCents).Error(0)
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus) error {
	return m.Called(ctx, accountID, status).Error(0)
}

func (m *MockAccountRepository) UpdatePINHash(ctx context.Context, accountID uuid.UUID, pinHash string) error {
	return m.Called(ctx, accountID, pinHash).Error(0)
}

func accountOrNil(v any) *models.Account {
	if v == nil {
		return nil
	}
	return v.(*models.Account)
}

// MockTransactionRepository is a mock of repository.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func NewMockTransactionRepository(t testingT) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockLoanRepository is a mock of repository.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func NewMockLoanRepository(t testingT) *MockLoanRepository {
	m := &MockLoanRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, id)
	return loanOrNil(args.Get(0)), args.Error(1)
}

func (m *MockLoanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, id)
	return loanOrNil(args.Get(0)), args.Error(1)
}

func (m *MockLoanRepository) HasOpenLoan(ctx context.Context, accountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanRepository) UpdateDecision(ctx context.Context, id uuid.UUID, status models.LoanStatus, approverID, reason string) error {
	return m.Called(ctx, id, status, approverID, reason).Error(0)
}

func loanOrNil(v any) *models.Loan {
	if v == nil {
		return nil
	}
	return v.(*models.Loan)
}

// MockCardRepository is a mock of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func NewMockCardRepository(t testingT) *MockCardRepository {
	m := &MockCardRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCardRepository) Create(ctx context.Context, card *models.Card) error {
	return m.Called(ctx, card).Error(0)
}

func (m *MockCardRepository) CountActiveByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Card, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Card), args.Error(1)
}

func (m *MockCardRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CardStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

// MockHeistLogRepository is a mock of repository.HeistLogRepository
type MockHeistLogRepository struct {
	mock.Mock
}

func NewMockHeistLogRepository(t testingT) *MockHeistLogRepository {
	m := &MockHeistLogRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockHeistLogRepository) Create(ctx context.Context, log *models.HeistLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockHeistLogRepository) LatestEndTimes(ctx context.Context) (map[string]time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]time.Time), args.Error(1)
}
