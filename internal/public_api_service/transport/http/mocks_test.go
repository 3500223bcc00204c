package http_test

import (
	"context"
	"time"

	campaignApp "github.com/calltrack/golang_services/internal/campaign_service/app"
	campaignDomain "github.com/calltrack/golang_services/internal/campaign_service/domain"
	contactApp "github.com/calltrack/golang_services/internal/contact_service/app"
	contactDomain "github.com/calltrack/golang_services/internal/contact_service/domain"
	exportDomain "github.com/calltrack/golang_services/internal/export_service/domain"
	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	httptransport "github.com/calltrack/golang_services/internal/public_api_service/transport/http"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAuthenticator struct{ mock.Mock }

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockNumberManager struct{ mock.Mock }

func (m *MockNumberManager) PurchaseNumbers(ctx context.Context, in numbersApp.PurchaseInput) (*numbersApp.AcquireResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersApp.AcquireResult), args.Error(1)
}

func (m *MockNumberManager) GetNumber(ctx context.Context, accountID, id uuid.UUID) (*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumber), args.Error(1)
}

func (m *MockNumberManager) ListNumbers(ctx context.Context, companyID uuid.UUID, filter numbersDomain.NumberFilter) ([]*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*numbersDomain.PhoneNumber), args.Error(1)
}

func (m *MockNumberManager) UpdateNumber(ctx context.Context, accountID, id uuid.UUID, in numbersApp.UpdateNumberInput) (*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, accountID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumber), args.Error(1)
}

type MockPoolManager struct{ mock.Mock }

func (m *MockPoolManager) CreatePool(ctx context.Context, in numbersApp.CreatePoolInput) (*numbersDomain.PhoneNumberPool, *numbersApp.AcquireResult, error) {
	args := m.Called(ctx, in)
	pool, _ := args.Get(0).(*numbersDomain.PhoneNumberPool)
	result, _ := args.Get(1).(*numbersApp.AcquireResult)
	return pool, result, args.Error(2)
}

func (m *MockPoolManager) AddNumbersToPool(ctx context.Context, accountID, poolID uuid.UUID, quantity int) (*numbersApp.AcquireResult, error) {
	args := m.Called(ctx, accountID, poolID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersApp.AcquireResult), args.Error(1)
}

func (m *MockPoolManager) GetPool(ctx context.Context, accountID, poolID uuid.UUID) (*numbersDomain.PhoneNumberPool, error) {
	args := m.Called(ctx, accountID, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumberPool), args.Error(1)
}

func (m *MockPoolManager) ListPoolNumbers(ctx context.Context, accountID, poolID uuid.UUID) ([]*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, accountID, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*numbersDomain.PhoneNumber), args.Error(1)
}

func (m *MockPoolManager) ListPools(ctx context.Context, companyID uuid.UUID) ([]*numbersDomain.PhoneNumberPool, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*numbersDomain.PhoneNumberPool), args.Error(1)
}

func (m *MockPoolManager) UpdatePool(ctx context.Context, accountID, poolID uuid.UUID, in numbersApp.UpdatePoolInput) (*numbersDomain.PhoneNumberPool, error) {
	args := m.Called(ctx, accountID, poolID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumberPool), args.Error(1)
}

func (m *MockPoolManager) DetachNumber(ctx context.Context, accountID, poolID, numberID uuid.UUID) (*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, accountID, poolID, numberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumber), args.Error(1)
}

type MockReleaser struct{ mock.Mock }

func (m *MockReleaser) DeleteNumber(ctx context.Context, accountID, numberID, deletedBy uuid.UUID) (*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, accountID, numberID, deletedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumber), args.Error(1)
}

func (m *MockReleaser) DeletePool(ctx context.Context, accountID, poolID, deletedBy uuid.UUID) (*numbersDomain.PhoneNumberPool, error) {
	args := m.Called(ctx, accountID, poolID, deletedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumberPool), args.Error(1)
}

func (m *MockReleaser) DeleteKeywordPool(ctx context.Context, accountID, poolID, deletedBy uuid.UUID) (*numbersDomain.KeywordTrackingPool, error) {
	args := m.Called(ctx, accountID, poolID, deletedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.KeywordTrackingPool), args.Error(1)
}

type MockIdempotencyRunner struct{ mock.Mock }

func (m *MockIdempotencyRunner) Do(ctx context.Context, accountID uuid.UUID, key, operation string, fn func() (int, any, error)) (*numbersApp.Outcome, error) {
	args := m.Called(ctx, accountID, key, operation, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersApp.Outcome), args.Error(1)
}

// MockCampaignManager embeds the interface; calling an unmocked method panics.
type MockCampaignManager struct {
	mock.Mock
	httptransport.CampaignManager
}

func (m *MockCampaignManager) Create(ctx context.Context, in campaignApp.CreateCampaignInput) (*campaignDomain.Campaign, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campaignDomain.Campaign), args.Error(1)
}

func (m *MockCampaignManager) Delete(ctx context.Context, accountID, id, deletedBy uuid.UUID) error {
	return m.Called(ctx, accountID, id, deletedBy).Error(0)
}

func (m *MockCampaignManager) AttachPool(ctx context.Context, accountID, campaignID, poolID uuid.UUID) (*numbersDomain.PhoneNumberPool, error) {
	args := m.Called(ctx, accountID, campaignID, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumberPool), args.Error(1)
}

func (m *MockCampaignManager) AttachNumber(ctx context.Context, accountID, campaignID, numberID uuid.UUID) (*numbersDomain.PhoneNumber, error) {
	args := m.Called(ctx, accountID, campaignID, numberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersDomain.PhoneNumber), args.Error(1)
}

type MockContactManager struct {
	mock.Mock
	httptransport.ContactManager
}

func (m *MockContactManager) BlockNumber(ctx context.Context, accountID uuid.UUID, in contactApp.BlockNumberInput) (*contactDomain.BlockedPhoneNumber, error) {
	args := m.Called(ctx, accountID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contactDomain.BlockedPhoneNumber), args.Error(1)
}

func (m *MockContactManager) ListBlockedNumbers(ctx context.Context, accountID uuid.UUID, companyID *uuid.UUID) ([]*contactDomain.BlockedPhoneNumber, error) {
	args := m.Called(ctx, accountID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contactDomain.BlockedPhoneNumber), args.Error(1)
}

func (m *MockContactManager) CreateContact(ctx context.Context, accountID, companyID uuid.UUID, in contactApp.ContactInput) (*contactDomain.Contact, error) {
	args := m.Called(ctx, accountID, companyID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contactDomain.Contact), args.Error(1)
}

type MockKeywordPoolManager struct {
	mock.Mock
	httptransport.KeywordPoolManager
}

func (m *MockKeywordPoolManager) AssignSession(ctx context.Context, accountID, poolID uuid.UUID, req numbersApp.SessionRequest) (*numbersApp.SessionAssignment, error) {
	args := m.Called(ctx, accountID, poolID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbersApp.SessionAssignment), args.Error(1)
}

func (m *MockKeywordPoolManager) ListSessions(ctx context.Context, accountID, poolID uuid.UUID, activeOnly bool, limit int) ([]*numbersDomain.KeywordSession, error) {
	args := m.Called(ctx, accountID, poolID, activeOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*numbersDomain.KeywordSession), args.Error(1)
}

func (m *MockKeywordPoolManager) TouchSession(ctx context.Context, accountID, poolID uuid.UUID, sessionKey string) error {
	return m.Called(ctx, accountID, poolID, sessionKey).Error(0)
}

type MockExportManager struct {
	mock.Mock
	httptransport.ExportManager
}

func (m *MockExportManager) RequestExport(ctx context.Context, accountID, companyID uuid.UUID, kind exportDomain.ExportKind) (*exportDomain.ExportRequestEvent, error) {
	args := m.Called(ctx, accountID, companyID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exportDomain.ExportRequestEvent), args.Error(1)
}
