package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/calltrack/golang_services/internal/account_service/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAccountService() (*AccountService, *MockAccountRepository, *MockCompanyRepository, *MockUsageChecker) {
	accounts, companies, usage := new(MockAccountRepository), new(MockCompanyRepository), new(MockUsageChecker)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAccountService(accounts, companies, usage, logger), accounts, companies, usage
}

func TestAccountService_CreateCompany_AppliesDefaults(t *testing.T) {
	svc, _, companies, _ := newTestAccountService()
	ctx := context.Background()
	accountID := uuid.New()

	companies.On("Create", ctx, mock.AnythingOfType("*domain.Company")).Return(nil)

	c, err := svc.CreateCompany(ctx, accountID, CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, accountID, c.AccountID)
	assert.Equal(t, "US", c.Country)
	assert.Equal(t, "UTC", c.Timezone)
}

func TestAccountService_UpdateCompany_PartialFields(t *testing.T) {
	svc, _, companies, _ := newTestAccountService()
	ctx := context.Background()
	accountID := uuid.New()
	existing := domain.NewCompany(uuid.New(), accountID, "Old", "retail", "US", "UTC")

	companies.On("GetByID", ctx, existing.ID, accountID).Return(existing, nil)
	companies.On("Update", ctx, existing).Return(nil)

	c, err := svc.UpdateCompany(ctx, accountID, existing.ID, CompanyInput{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", c.Name)
	assert.Equal(t, "retail", c.Industry)
}

func TestAccountService_DeleteCompany(t *testing.T) {
	ctx := context.Background()
	accountID, userID := uuid.New(), uuid.New()
	company := domain.NewCompany(uuid.New(), accountID, "Acme", "", "", "")

	t.Run("refused while numbers are active", func(t *testing.T) {
		svc, _, companies, usage := newTestAccountService()
		companies.On("GetByID", ctx, company.ID, accountID).Return(company, nil)
		usage.On("CountActiveByCompany", ctx, company.ID).Return(3, nil)

		err := svc.DeleteCompany(ctx, accountID, company.ID, userID)
		assert.ErrorIs(t, err, domain.ErrCompanyInUse)
		companies.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("soft deletes when unused", func(t *testing.T) {
		svc, _, companies, usage := newTestAccountService()
		companies.On("GetByID", ctx, company.ID, accountID).Return(company, nil)
		usage.On("CountActiveByCompany", ctx, company.ID).Return(0, nil)
		companies.On("SoftDelete", ctx, company.ID, accountID, userID).Return(nil)

		require.NoError(t, svc.DeleteCompany(ctx, accountID, company.ID, userID))
		companies.AssertExpectations(t)
	})

	t.Run("other account cannot see it", func(t *testing.T) {
		svc, _, companies, usage := newTestAccountService()
		other := uuid.New()
		companies.On("GetByID", ctx, company.ID, other).Return(nil, domain.ErrNotFound)

		err := svc.DeleteCompany(ctx, other, company.ID, userID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		usage.AssertNotCalled(t, "CountActiveByCompany", mock.Anything, mock.Anything)
	})

	t.Run("usage lookup failure", func(t *testing.T) {
		svc, _, companies, usage := newTestAccountService()
		companies.On("GetByID", ctx, company.ID, accountID).Return(company, nil)
		usage.On("CountActiveByCompany", ctx, company.ID).Return(0, errors.New("db down"))

		err := svc.DeleteCompany(ctx, accountID, company.ID, userID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrCompanyInUse)
	})
}

func TestAccountService_ListCompanies_ClampsPaging(t *testing.T) {
	svc, _, companies, _ := newTestAccountService()
	ctx := context.Background()
	accountID := uuid.New()
	companies.On("ListByAccountID", ctx, accountID, 0, 20).Return([]*domain.Company{}, nil)

	_, err := svc.ListCompanies(ctx, accountID, -5, 1000)
	require.NoError(t, err)
	companies.AssertExpectations(t)
}
