package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	billingDomain "github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockPhoneNumberRepository struct {
	mock.Mock
}

func (m *MockPhoneNumberRepository) one(args mock.Arguments) (*domain.PhoneNumber, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PhoneNumber), args.Error(1)
}

func (m *MockPhoneNumberRepository) many(args mock.Arguments) ([]*domain.PhoneNumber, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PhoneNumber), args.Error(1)
}

func (m *MockPhoneNumberRepository) Create(ctx context.Context, q database.Querier, n *domain.PhoneNumber) error {
	return m.Called(ctx, q, n).Error(0)
}

func (m *MockPhoneNumberRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.PhoneNumber, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockPhoneNumberRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.PhoneNumber, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockPhoneNumberRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID, filter domain.NumberFilter) ([]*domain.PhoneNumber, error) {
	return m.many(m.Called(ctx, q, companyID, filter))
}

func (m *MockPhoneNumberRepository) ListByPool(ctx context.Context, q database.Querier, poolID uuid.UUID) ([]*domain.PhoneNumber, error) {
	return m.many(m.Called(ctx, q, poolID))
}

func (m *MockPhoneNumberRepository) ListByKeywordPool(ctx context.Context, q database.Querier, poolID uuid.UUID) ([]*domain.PhoneNumber, error) {
	return m.many(m.Called(ctx, q, poolID))
}

func (m *MockPhoneNumberRepository) Update(ctx context.Context, q database.Querier, n *domain.PhoneNumber) error {
	return m.Called(ctx, q, n).Error(0)
}

func (m *MockPhoneNumberRepository) UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status domain.EntityStatus, deletedBy *uuid.UUID) error {
	return m.Called(ctx, q, id, status, deletedBy).Error(0)
}

func (m *MockPhoneNumberRepository) MarkReleased(ctx context.Context, q database.Querier, id uuid.UUID, deletedBy *uuid.UUID) error {
	return m.Called(ctx, q, id, deletedBy).Error(0)
}

func (m *MockPhoneNumberRepository) ApplyPoolConfig(ctx context.Context, q database.Querier, poolID uuid.UUID, forwardTo string, rules domain.SwapRules) (int64, error) {
	args := m.Called(ctx, q, poolID, forwardTo, rules)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPhoneNumberRepository) SetCampaign(ctx context.Context, q database.Querier, id uuid.UUID, campaignID *uuid.UUID) error {
	return m.Called(ctx, q, id, campaignID).Error(0)
}

func (m *MockPhoneNumberRepository) CountActiveByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) (int, error) {
	args := m.Called(ctx, q, companyID)
	return args.Int(0), args.Error(1)
}

func (m *MockPhoneNumberRepository) CountByCampaign(ctx context.Context, q database.Querier, campaignID uuid.UUID) (int, error) {
	args := m.Called(ctx, q, campaignID)
	return args.Int(0), args.Error(1)
}

func (m *MockPhoneNumberRepository) NextForSession(ctx context.Context, q database.Querier, keywordPoolID uuid.UUID, now time.Time) (*domain.PhoneNumber, error) {
	return m.one(m.Called(ctx, q, keywordPoolID, now))
}

func (m *MockPhoneNumberRepository) MarkAssigned(ctx context.Context, q database.Querier, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, q, id, at).Error(0)
}

type MockBankedNumberRepository struct {
	mock.Mock
}

func (m *MockBankedNumberRepository) ClaimAvailable(ctx context.Context, q database.Querier, excludeAccountID uuid.UUID, country string, numberType domain.NumberType, prefix string, limit int) ([]*domain.BankedPhoneNumber, error) {
	args := m.Called(ctx, q, excludeAccountID, country, numberType, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BankedPhoneNumber), args.Error(1)
}

func (m *MockBankedNumberRepository) Create(ctx context.Context, q database.Querier, b *domain.BankedPhoneNumber) error {
	return m.Called(ctx, q, b).Error(0)
}

func (m *MockBankedNumberRepository) Delete(ctx context.Context, q database.Querier, id uuid.UUID) error {
	return m.Called(ctx, q, id).Error(0)
}

func (m *MockBankedNumberRepository) List(ctx context.Context, q database.Querier, country string, numberType domain.NumberType, limit, offset int) ([]*domain.BankedPhoneNumber, error) {
	args := m.Called(ctx, q, country, numberType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BankedPhoneNumber), args.Error(1)
}

type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) one(args mock.Arguments) (*domain.PhoneNumberPool, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PhoneNumberPool), args.Error(1)
}

func (m *MockPoolRepository) Create(ctx context.Context, q database.Querier, p *domain.PhoneNumberPool) error {
	return m.Called(ctx, q, p).Error(0)
}

func (m *MockPoolRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.PhoneNumberPool, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockPoolRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.PhoneNumberPool, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockPoolRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*domain.PhoneNumberPool, error) {
	args := m.Called(ctx, q, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PhoneNumberPool), args.Error(1)
}

func (m *MockPoolRepository) Update(ctx context.Context, q database.Querier, p *domain.PhoneNumberPool) error {
	return m.Called(ctx, q, p).Error(0)
}

func (m *MockPoolRepository) UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status domain.EntityStatus, deletedBy *uuid.UUID) error {
	return m.Called(ctx, q, id, status, deletedBy).Error(0)
}

func (m *MockPoolRepository) SetCampaign(ctx context.Context, q database.Querier, id uuid.UUID, campaignID *uuid.UUID) error {
	return m.Called(ctx, q, id, campaignID).Error(0)
}

func (m *MockPoolRepository) GetByCampaign(ctx context.Context, q database.Querier, campaignID uuid.UUID) (*domain.PhoneNumberPool, error) {
	return m.one(m.Called(ctx, q, campaignID))
}

type MockKeywordPoolRepository struct {
	mock.Mock
}

func (m *MockKeywordPoolRepository) one(args mock.Arguments) (*domain.KeywordTrackingPool, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KeywordTrackingPool), args.Error(1)
}

func (m *MockKeywordPoolRepository) Create(ctx context.Context, q database.Querier, p *domain.KeywordTrackingPool) error {
	return m.Called(ctx, q, p).Error(0)
}

func (m *MockKeywordPoolRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.KeywordTrackingPool, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockKeywordPoolRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.KeywordTrackingPool, error) {
	return m.one(m.Called(ctx, q, id, accountID))
}

func (m *MockKeywordPoolRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*domain.KeywordTrackingPool, error) {
	args := m.Called(ctx, q, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KeywordTrackingPool), args.Error(1)
}

func (m *MockKeywordPoolRepository) Update(ctx context.Context, q database.Querier, p *domain.KeywordTrackingPool) error {
	return m.Called(ctx, q, p).Error(0)
}

func (m *MockKeywordPoolRepository) UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status domain.EntityStatus, deletedBy *uuid.UUID) error {
	return m.Called(ctx, q, id, status, deletedBy).Error(0)
}

type MockKeywordSessionRepository struct {
	mock.Mock
}

func (m *MockKeywordSessionRepository) Upsert(ctx context.Context, q database.Querier, s *domain.KeywordSession) error {
	return m.Called(ctx, q, s).Error(0)
}

func (m *MockKeywordSessionRepository) GetActiveByKey(ctx context.Context, q database.Querier, poolID uuid.UUID, sessionKey string, now time.Time) (*domain.KeywordSession, error) {
	args := m.Called(ctx, q, poolID, sessionKey, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KeywordSession), args.Error(1)
}

func (m *MockKeywordSessionRepository) Touch(ctx context.Context, q database.Querier, id uuid.UUID, at, expiresAt time.Time) error {
	return m.Called(ctx, q, id, at, expiresAt).Error(0)
}

func (m *MockKeywordSessionRepository) ListByPool(ctx context.Context, q database.Querier, poolID uuid.UUID, activeAt *time.Time, limit int) ([]*domain.KeywordSession, error) {
	args := m.Called(ctx, q, poolID, activeAt, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KeywordSession), args.Error(1)
}

func (m *MockKeywordSessionRepository) DeleteByPool(ctx context.Context, q database.Querier, poolID uuid.UUID) error {
	return m.Called(ctx, q, poolID).Error(0)
}

type MockCampaignLinks struct {
	mock.Mock
}

func (m *MockCampaignLinks) IsCampaignActive(ctx context.Context, q database.Querier, campaignID uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, campaignID)
	return args.Bool(0), args.Error(1)
}

type MockBiller struct {
	mock.Mock
}

func (m *MockBiller) EnsureSufficientBalance(ctx context.Context, q database.Querier, accountID uuid.UUID, class billingDomain.PriceClass, quantity int) error {
	return m.Called(ctx, q, accountID, class, quantity).Error(0)
}

func (m *MockBiller) ChargeForNumbers(ctx context.Context, q database.Querier, accountID uuid.UUID, class billingDomain.PriceClass, quantity int, reference string) (*billingDomain.Transaction, error) {
	args := m.Called(ctx, q, accountID, class, quantity, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingDomain.Transaction), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return m.Called(ctx, subject, data).Error(0)
}

type MockCarrier struct {
	mock.Mock
}

func (m *MockCarrier) Name() string { return "testify" }

func (m *MockCarrier) SearchAvailable(ctx context.Context, criteria domain.SearchCriteria) ([]domain.AvailableNumber, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailableNumber), args.Error(1)
}

func (m *MockCarrier) Purchase(ctx context.Context, req domain.PurchaseRequest) (*domain.PurchasedNumber, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchasedNumber), args.Error(1)
}

func (m *MockCarrier) Release(ctx context.Context, sid string) error {
	return m.Called(ctx, sid).Error(0)
}

type MockIdempotencyRepository struct {
	mock.Mock
}

func (m *MockIdempotencyRepository) Reserve(ctx context.Context, q database.Querier, accountID uuid.UUID, key, operation string, staleBefore time.Time) (*domain.IdempotencyRecord, bool, error) {
	args := m.Called(ctx, q, accountID, key, operation, staleBefore)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyRepository) Complete(ctx context.Context, q database.Querier, accountID uuid.UUID, key string, code int, body []byte) error {
	return m.Called(ctx, q, accountID, key, code, body).Error(0)
}

func (m *MockIdempotencyRepository) Delete(ctx context.Context, q database.Querier, accountID uuid.UUID, key string) error {
	return m.Called(ctx, q, accountID, key).Error(0)
}
