package app

import (
	"context"

	"github.com/calltrack/golang_services/internal/account_service/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id, accountID uuid.UUID) (*domain.Company, error) {
	args := m.Called(ctx, id, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*domain.Company, error) {
	args := m.Called(ctx, accountID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) SoftDelete(ctx context.Context, id, accountID, deletedBy uuid.UUID) error {
	return m.Called(ctx, id, accountID, deletedBy).Error(0)
}

type MockUsageChecker struct {
	mock.Mock
}

func (m *MockUsageChecker) CountActiveByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	args := m.Called(ctx, companyID)
	return args.Int(0), args.Error(1)
}
