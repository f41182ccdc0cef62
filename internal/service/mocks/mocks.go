// Package mocks provides testify mocks for the service interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/citywide-rp/bankcore/internal/models"
	"github.com/citywide-rp/bankcore/internal/service"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockAccountManager is a mock of service.AccountManager
type MockAccountManager struct {
	mock.Mock
}

func NewMockAccountManager(t testingT) *MockAccountManager {
	m := &MockAccountManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountManager) CreateAccount(ctx context.Context, ownerID string, accountType models.AccountType, initialBalanceCents int64) (*service.CreatedAccount, error) {
	args := m.Called(ctx, ownerID, accountType, initialBalanceCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreatedAccount), args.Error(1)
}

func (m *MockAccountManager) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountManager) Statement(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockAccountManager) ChangePIN(ctx context.Context, accountID uuid.UUID, oldPIN, newPIN string) error {
	return m.Called(ctx, accountID, oldPIN, newPIN).Error(0)
}

func (m *MockAccountManager) VerifyPIN(ctx context.Context, accountID uuid.UUID, pin string) (bool, error) {
	args := m.Called(ctx, accountID, pin)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountManager) IssueCard(ctx context.Context, accountID uuid.UUID, holderName string) (*service.IssuedCard, error) {
	args := m.Called(ctx, accountID, holderName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssuedCard), args.Error(1)
}

func (m *MockAccountManager) FreezeAccount(ctx context.Context, accountID uuid.UUID, actorID, reason string) error {
	return m.Called(ctx, accountID, actorID, reason).Error(0)
}

func (m *MockAccountManager) UnfreezeAccount(ctx context.Context, accountID uuid.UUID, actorID, reason string) error {
	return m.Called(ctx, accountID, actorID, reason).Error(0)
}

// MockTransactor is a mock of service.Transactor
type MockTransactor struct {
	mock.Mock
}

func NewMockTransactor(t testingT) *MockTransactor {
	m := &MockTransactor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactor) Deposit(ctx context.Context, accountID, token uuid.UUID, amountCents int64, location string) (*models.Transaction, error) {
	args := m.Called(ctx, accountID, token, amountCents, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactor) Withdraw(ctx context.Context, accountID, token uuid.UUID, amountCents int64, pinVerified bool, location string) (*models.Transaction, error) {
	args := m.Called(ctx, accountID, token, amountCents, pinVerified, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactor) Transfer(ctx context.Context, accountID, token uuid.UUID, recipientRef string, amountCents int64, pinVerified bool, location string) (*service.TransferResult, error) {
	args := m.Called(ctx, accountID, token, recipientRef, amountCents, pinVerified, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferResult), args.Error(1)
}

func (m *MockTransactor) ApplyInterest(ctx context.Context) (*service.InterestRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InterestRun), args.Error(1)
}

// MockLoanManager is a mock of service.LoanManager
type MockLoanManager struct {
	mock.Mock
}

func NewMockLoanManager(t testingT) *MockLoanManager {
	m := &MockLoanManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLoanManager) ApplyForLoan(ctx context.Context, accountID uuid.UUID, amountCents int64, termMonths int) (*models.Loan, error) {
	args := m.Called(ctx, accountID, amountCents, termMonths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanManager) GetLoan(ctx context.Context, loanID uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanManager) ApproveLoan(ctx context.Context, loanID uuid.UUID, managerID string) (*models.Loan, error) {
	args := m.Called(ctx, loanID, managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanManager) DenyLoan(ctx context.Context, loanID uuid.UUID, managerID, reason string) (*models.Loan, error) {
	args := m.Called(ctx, loanID, managerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}
