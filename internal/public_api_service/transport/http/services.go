package http

import (
	"context"
	"time"

	accountApp "github.com/calltrack/golang_services/internal/account_service/app"
	accountDomain "github.com/calltrack/golang_services/internal/account_service/domain"
	billingDomain "github.com/calltrack/golang_services/internal/billing_service/domain"
	campaignApp "github.com/calltrack/golang_services/internal/campaign_service/app"
	campaignDomain "github.com/calltrack/golang_services/internal/campaign_service/domain"
	contactApp "github.com/calltrack/golang_services/internal/contact_service/app"
	contactDomain "github.com/calltrack/golang_services/internal/contact_service/domain"
	exportApp "github.com/calltrack/golang_services/internal/export_service/app"
	exportDomain "github.com/calltrack/golang_services/internal/export_service/domain"
	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The handlers depend on the slices of the application services they call.

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, time.Time, error)
}

type AccountManager interface {
	GetAccount(ctx context.Context, accountID uuid.UUID) (*accountDomain.Account, error)
	UpdateAccount(ctx context.Context, accountID uuid.UUID, name string) (*accountDomain.Account, error)
	CreateCompany(ctx context.Context, accountID uuid.UUID, in accountApp.CompanyInput) (*accountDomain.Company, error)
	GetCompany(ctx context.Context, accountID, companyID uuid.UUID) (*accountDomain.Company, error)
	ListCompanies(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*accountDomain.Company, error)
	UpdateCompany(ctx context.Context, accountID, companyID uuid.UUID, in accountApp.CompanyInput) (*accountDomain.Company, error)
	DeleteCompany(ctx context.Context, accountID, companyID, deletedBy uuid.UUID) error
}

type BillingReader interface {
	GetBilling(ctx context.Context, accountID uuid.UUID) (*billingDomain.Billing, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*billingDomain.Transaction, int, error)
	CreatePaymentIntent(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, currency string) (*billingDomain.PaymentIntent, error)
}

type NumberManager interface {
	PurchaseNumbers(ctx context.Context, in numbersApp.PurchaseInput) (*numbersApp.AcquireResult, error)
	GetNumber(ctx context.Context, accountID, id uuid.UUID) (*numbersDomain.PhoneNumber, error)
	ListNumbers(ctx context.Context, companyID uuid.UUID, filter numbersDomain.NumberFilter) ([]*numbersDomain.PhoneNumber, error)
	UpdateNumber(ctx context.Context, accountID, id uuid.UUID, in numbersApp.UpdateNumberInput) (*numbersDomain.PhoneNumber, error)
}

type PoolManager interface {
	CreatePool(ctx context.Context, in numbersApp.CreatePoolInput) (*numbersDomain.PhoneNumberPool, *numbersApp.AcquireResult, error)
	AddNumbersToPool(ctx context.Context, accountID, poolID uuid.UUID, quantity int) (*numbersApp.AcquireResult, error)
	GetPool(ctx context.Context, accountID, poolID uuid.UUID) (*numbersDomain.PhoneNumberPool, error)
	ListPoolNumbers(ctx context.Context, accountID, poolID uuid.UUID) ([]*numbersDomain.PhoneNumber, error)
	ListPools(ctx context.Context, companyID uuid.UUID) ([]*numbersDomain.PhoneNumberPool, error)
	UpdatePool(ctx context.Context, accountID, poolID uuid.UUID, in numbersApp.UpdatePoolInput) (*numbersDomain.PhoneNumberPool, error)
	DetachNumber(ctx context.Context, accountID, poolID, numberID uuid.UUID) (*numbersDomain.PhoneNumber, error)
}

type KeywordPoolManager interface {
	CreateKeywordPool(ctx context.Context, in numbersApp.CreateKeywordPoolInput) (*numbersDomain.KeywordTrackingPool, *numbersApp.AcquireResult, error)
	AddNumbers(ctx context.Context, accountID, poolID uuid.UUID, quantity int) (*numbersApp.AcquireResult, error)
	GetKeywordPool(ctx context.Context, accountID, poolID uuid.UUID) (*numbersDomain.KeywordTrackingPool, error)
	ListKeywordPools(ctx context.Context, companyID uuid.UUID) ([]*numbersDomain.KeywordTrackingPool, error)
	UpdateKeywordPool(ctx context.Context, accountID, poolID uuid.UUID, in numbersApp.UpdateKeywordPoolInput) (*numbersDomain.KeywordTrackingPool, error)
	AssignSession(ctx context.Context, accountID, poolID uuid.UUID, req numbersApp.SessionRequest) (*numbersApp.SessionAssignment, error)
	TouchSession(ctx context.Context, accountID, poolID uuid.UUID, sessionKey string) error
	ListSessions(ctx context.Context, accountID, poolID uuid.UUID, activeOnly bool, limit int) ([]*numbersDomain.KeywordSession, error)
}

type Releaser interface {
	DeleteNumber(ctx context.Context, accountID, numberID, deletedBy uuid.UUID) (*numbersDomain.PhoneNumber, error)
	DeletePool(ctx context.Context, accountID, poolID, deletedBy uuid.UUID) (*numbersDomain.PhoneNumberPool, error)
	DeleteKeywordPool(ctx context.Context, accountID, poolID, deletedBy uuid.UUID) (*numbersDomain.KeywordTrackingPool, error)
}

type IdempotencyRunner interface {
	Do(ctx context.Context, accountID uuid.UUID, key, operation string, fn func() (int, any, error)) (*numbersApp.Outcome, error)
}

type CampaignManager interface {
	Create(ctx context.Context, in campaignApp.CreateCampaignInput) (*campaignDomain.Campaign, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*campaignDomain.Campaign, error)
	List(ctx context.Context, companyID uuid.UUID) ([]*campaignDomain.Campaign, error)
	Update(ctx context.Context, accountID, id uuid.UUID, in campaignApp.UpdateCampaignInput) (*campaignDomain.Campaign, error)
	Delete(ctx context.Context, accountID, id, deletedBy uuid.UUID) error
	Clone(ctx context.Context, accountID, id uuid.UUID) (*campaignDomain.Campaign, error)
	AttachPool(ctx context.Context, accountID, campaignID, poolID uuid.UUID) (*numbersDomain.PhoneNumberPool, error)
	DetachPool(ctx context.Context, accountID, campaignID uuid.UUID) error
	AttachNumber(ctx context.Context, accountID, campaignID, numberID uuid.UUID) (*numbersDomain.PhoneNumber, error)
	DetachNumber(ctx context.Context, accountID, campaignID, numberID uuid.UUID) error
	ListNumbers(ctx context.Context, accountID, campaignID uuid.UUID) ([]*numbersDomain.PhoneNumber, error)
}

type ContactManager interface {
	CreateContact(ctx context.Context, accountID, companyID uuid.UUID, in contactApp.ContactInput) (*contactDomain.Contact, error)
	GetContact(ctx context.Context, accountID, id uuid.UUID) (*contactDomain.Contact, error)
	ListContacts(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]*contactDomain.Contact, error)
	UpdateContact(ctx context.Context, accountID, id uuid.UUID, in contactApp.ContactInput) (*contactDomain.Contact, error)
	DeleteContact(ctx context.Context, accountID, id uuid.UUID) error
	BlockNumber(ctx context.Context, accountID uuid.UUID, in contactApp.BlockNumberInput) (*contactDomain.BlockedPhoneNumber, error)
	ListBlockedNumbers(ctx context.Context, accountID uuid.UUID, companyID *uuid.UUID) ([]*contactDomain.BlockedPhoneNumber, error)
	UnblockNumber(ctx context.Context, accountID, id uuid.UUID) error
}

type ExportManager interface {
	CreateScheduledExport(ctx context.Context, in exportApp.CreateScheduledExportInput) (*exportDomain.ScheduledExport, error)
	GetScheduledExport(ctx context.Context, accountID, id uuid.UUID) (*exportDomain.ScheduledExport, error)
	ListScheduledExports(ctx context.Context, companyID uuid.UUID) ([]*exportDomain.ScheduledExport, error)
	DeleteScheduledExport(ctx context.Context, accountID, id uuid.UUID) error
	RequestExport(ctx context.Context, accountID, companyID uuid.UUID, kind exportDomain.ExportKind) (*exportDomain.ExportRequestEvent, error)
}
