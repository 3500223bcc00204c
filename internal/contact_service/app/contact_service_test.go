package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/calltrack/golang_services/internal/contact_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, q database.Querier, c *domain.Contact) error {
	return m.Called(ctx, q, c).Error(0)
}

func (m *MockContactRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.Contact, error) {
	args := m.Called(ctx, q, id, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID, offset, limit int) ([]*domain.Contact, error) {
	args := m.Called(ctx, q, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) Update(ctx context.Context, q database.Querier, c *domain.Contact) error {
	return m.Called(ctx, q, c).Error(0)
}

func (m *MockContactRepository) SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error {
	return m.Called(ctx, q, id, accountID).Error(0)
}

type MockBlockedNumberRepository struct {
	mock.Mock
}

func (m *MockBlockedNumberRepository) Create(ctx context.Context, q database.Querier, b *domain.BlockedPhoneNumber) error {
	return m.Called(ctx, q, b).Error(0)
}

func (m *MockBlockedNumberRepository) ListByAccount(ctx context.Context, q database.Querier, accountID uuid.UUID, companyID *uuid.UUID) ([]*domain.BlockedPhoneNumber, error) {
	args := m.Called(ctx, q, accountID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BlockedPhoneNumber), args.Error(1)
}

func (m *MockBlockedNumberRepository) Match(ctx context.Context, q database.Querier, accountID, companyID uuid.UUID, countryCode, number string) (*domain.BlockedPhoneNumber, error) {
	args := m.Called(ctx, q, accountID, companyID, countryCode, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlockedPhoneNumber), args.Error(1)
}

func (m *MockBlockedNumberRepository) SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error {
	return m.Called(ctx, q, id, accountID).Error(0)
}

func newContactService(t *testing.T) (*ContactService, *MockContactRepository, *MockBlockedNumberRepository) {
	t.Helper()
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	contacts, blocked := new(MockContactRepository), new(MockBlockedNumberRepository)
	return NewContactService(db, contacts, blocked, slog.New(slog.NewTextHandler(io.Discard, nil))), contacts, blocked
}

func TestCreateContact(t *testing.T) {
	ctx := context.Background()
	accountID, companyID := uuid.New(), uuid.New()

	t.Run("Splits the number", func(t *testing.T) {
		svc, contacts, _ := newContactService(t)
		contacts.On("Create", ctx, mock.Anything, mock.MatchedBy(func(c *domain.Contact) bool {
			return c.CountryCode == "44" && c.Number == "2079460000" && c.FirstName == "Grace"
		})).Return(nil).Once()

		c, err := svc.CreateContact(ctx, accountID, companyID, ContactInput{Number: "+44 20 7946 0000", FirstName: " Grace "})
		require.NoError(t, err)
		assert.Equal(t, "+442079460000", c.E164())
		contacts.AssertExpectations(t)
	})

	t.Run("Duplicate number", func(t *testing.T) {
		svc, contacts, _ := newContactService(t)
		contacts.On("Create", ctx, mock.Anything, mock.Anything).Return(domain.ErrDuplicateEntry).Once()

		_, err := svc.CreateContact(ctx, accountID, companyID, ContactInput{Number: "+14155550100"})
		assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	})

	t.Run("Invalid number", func(t *testing.T) {
		svc, contacts, _ := newContactService(t)

		_, err := svc.CreateContact(ctx, accountID, companyID, ContactInput{Number: "555-0100"})
		assert.ErrorIs(t, err, domain.ErrInvalidContact)
		contacts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateContact_KeepsNumberWhenEmpty(t *testing.T) {
	svc, contacts, _ := newContactService(t)
	ctx := context.Background()
	accountID := uuid.New()
	existing := &domain.Contact{ID: uuid.New(), AccountID: accountID, CountryCode: "1", Number: "4155550100", FirstName: "Old"}

	contacts.On("GetByID", ctx, mock.Anything, existing.ID, accountID).Return(existing, nil).Once()
	contacts.On("Update", ctx, mock.Anything, existing).Return(nil).Once()

	c, err := svc.UpdateContact(ctx, accountID, existing.ID, ContactInput{FirstName: "New", City: "Austin"})
	require.NoError(t, err)
	assert.Equal(t, "4155550100", c.Number)
	assert.Equal(t, "New", c.FirstName)
	assert.Equal(t, "Austin", c.City)
	contacts.AssertExpectations(t)
}

func TestListContacts_ClampsPaging(t *testing.T) {
	svc, contacts, _ := newContactService(t)
	ctx := context.Background()
	companyID := uuid.New()

	contacts.On("ListByCompany", ctx, mock.Anything, companyID, 0, defaultPageSize).Return([]*domain.Contact{}, nil).Once()
	_, err := svc.ListContacts(ctx, companyID, -5, 10000)
	require.NoError(t, err)
	contacts.AssertExpectations(t)
}

func TestBlockNumber(t *testing.T) {
	ctx := context.Background()
	accountID, companyID := uuid.New(), uuid.New()

	t.Run("Company scoped", func(t *testing.T) {
		svc, _, blocked := newContactService(t)
		blocked.On("Match", ctx, mock.Anything, accountID, companyID, "1", "4155550100").Return(nil, domain.ErrNotFound).Once()
		blocked.On("Create", ctx, mock.Anything, mock.MatchedBy(func(b *domain.BlockedPhoneNumber) bool {
			return b.CompanyID != nil && *b.CompanyID == companyID && b.Name == "Robocaller"
		})).Return(nil).Once()

		b, err := svc.BlockNumber(ctx, accountID, BlockNumberInput{CompanyID: &companyID, Number: "+14155550100", Name: "Robocaller"})
		require.NoError(t, err)
		assert.False(t, b.AccountWide())
		blocked.AssertExpectations(t)
	})

	t.Run("Already covered account-wide", func(t *testing.T) {
		svc, _, blocked := newContactService(t)
		blocked.On("Match", ctx, mock.Anything, accountID, companyID, "1", "4155550100").
			Return(&domain.BlockedPhoneNumber{ID: uuid.New()}, nil).Once()

		_, err := svc.BlockNumber(ctx, accountID, BlockNumberInput{CompanyID: &companyID, Number: "+14155550100"})
		assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
		blocked.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Account wide duplicate", func(t *testing.T) {
		svc, _, blocked := newContactService(t)
		blocked.On("ListByAccount", ctx, mock.Anything, accountID, (*uuid.UUID)(nil)).
			Return([]*domain.BlockedPhoneNumber{{CountryCode: "1", Number: "4155550100"}}, nil).Once()

		_, err := svc.BlockNumber(ctx, accountID, BlockNumberInput{Number: "+14155550100"})
		assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	})
}

func TestIsBlocked(t *testing.T) {
	svc, _, blocked := newContactService(t)
	ctx := context.Background()
	accountID, companyID := uuid.New(), uuid.New()

	blocked.On("Match", ctx, mock.Anything, accountID, companyID, "1", "4155550100").
		Return(&domain.BlockedPhoneNumber{ID: uuid.New()}, nil).Once()
	blocked.On("Match", ctx, mock.Anything, accountID, companyID, "1", "4155550199").
		Return(nil, domain.ErrNotFound).Once()

	ok, err := svc.IsBlocked(ctx, accountID, companyID, "+14155550100")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsBlocked(ctx, accountID, companyID, "+14155550199")
	require.NoError(t, err)
	assert.False(t, ok)
	blocked.AssertExpectations(t)
}
