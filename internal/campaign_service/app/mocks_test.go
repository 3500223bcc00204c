package app

import (
	"context"

	"github.com/calltrack/golang_services/internal/campaign_service/domain"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) one(args mock.Arguments) (*domain.Campaign, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Create(ctx context.Context, q database.Querier, c *domain.Campaign) error {
	return m.Called(ctx, q, c).Error(0)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.Campaign, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockCampaignRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.Campaign, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockCampaignRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*domain.Campaign, error) {
	args := m.Called(ctx, q, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Update(ctx context.Context, q database.Querier, c *domain.Campaign) error {
	return m.Called(ctx, q, c).Error(0)
}

func (m *MockCampaignRepository) SoftDelete(ctx context.Context, q database.Querier, id uuid.UUID, deletedBy uuid.UUID) error {
	return m.Called(ctx, q, id, deletedBy).Error(0)
}

// MockPoolRepository mocks the pool methods campaigns use; the rest panic if called.
type MockPoolRepository struct {
	numbersDomain.PoolRepository
	mock.Mock
}

func (m *MockPoolRepository) one(args mock.Arguments) (*numbersDomain.PhoneNumberPool, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumberPool), args.Error(1)
}

func (m *MockPoolRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*numbersDomain.PhoneNumberPool, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockPoolRepository) GetByCampaign(ctx context.Context, q database.Querier, campaignID uuid.UUID) (*numbersDomain.PhoneNumberPool, error) {
	return m.one(m.Called(ctx, q, campaignID))
}

func (m *MockPoolRepository) SetCampaign(ctx context.Context, q database.Querier, id uuid.UUID, campaignID *uuid.UUID) error {
	return m.Called(ctx, q, id, campaignID).Error(0)
}

// MockPhoneNumberRepository mocks the number methods campaigns use.
type MockPhoneNumberRepository struct {
	numbersDomain.PhoneNumberRepository
	mock.Mock
}

func (m *MockPhoneNumberRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, q, id, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumber), args.Error(1)
}

func (m *MockPhoneNumberRepository) SetCampaign(ctx context.Context, q database.Querier, id uuid.UUID, campaignID *uuid.UUID) error {
	return m.Called(ctx, q, id, campaignID).Error(0)
}

func (m *MockPhoneNumberRepository) CountByCampaign(ctx context.Context, q database.Querier, campaignID uuid.UUID) (int, error) {
	args := m.Called(ctx, q, campaignID)
	return args.Int(0), args.Error(1)
}

func (m *MockPhoneNumberRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID, filter numbersDomain.NumberFilter) ([]*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, q, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*numbersDomain.PhoneNumber), args.Error(1)
}
