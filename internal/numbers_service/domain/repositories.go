package domain

import (
	"context"
	"time"

	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

// Every repository method takes the querier to run on, so provisioning steps share one transaction.

type PhoneNumberRepository interface {
	Create(ctx context.Context, q database.Querier, n *PhoneNumber) error
	GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*PhoneNumber, error)
	GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*PhoneNumber, error)
	ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID, filter NumberFilter) ([]*PhoneNumber, error)
	// ListByPool returns members that are not yet deleted.
	ListByPool(ctx context.Context, q database.Querier, poolID uuid.UUID) ([]*PhoneNumber, error)
	ListByKeywordPool(ctx context.Context, q database.Querier, poolID uuid.UUID) ([]*PhoneNumber, error)
	Update(ctx context.Context, q database.Querier, n *PhoneNumber) error
	UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status EntityStatus, deletedBy *uuid.UUID) error
	// MarkReleased tombstones a number only while it is pending_deletion. Any other status yields
	// ErrInvalidTransition.
	MarkReleased(ctx context.Context, q database.Querier, id uuid.UUID, deletedBy *uuid.UUID) error
	// ApplyPoolConfig copies forwarding and swap rules onto every live member of the pool or keyword pool.
	ApplyPoolConfig(ctx context.Context, q database.Querier, poolID uuid.UUID, forwardTo string, rules SwapRules) (int64, error)
	SetCampaign(ctx context.Context, q database.Querier, id uuid.UUID, campaignID *uuid.UUID) error
	CountActiveByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) (int, error)
	CountByCampaign(ctx context.Context, q database.Querier, campaignID uuid.UUID) (int, error)
	// NextForSession locks the least recently assigned member with no unexpired session.
	NextForSession(ctx context.Context, q database.Querier, keywordPoolID uuid.UUID, now time.Time) (*PhoneNumber, error)
	MarkAssigned(ctx context.Context, q database.Querier, id uuid.UUID, at time.Time) error
}

type BankedNumberRepository interface {
	// ClaimAvailable locks up to limit banked numbers, oldest release first, skipping numbers
	// released by excludeAccountID and rows locked by concurrent claims.
	ClaimAvailable(ctx context.Context, q database.Querier, excludeAccountID uuid.UUID, country string, numberType NumberType, prefix string, limit int) ([]*BankedPhoneNumber, error)
	Create(ctx context.Context, q database.Querier, b *BankedPhoneNumber) error
	Delete(ctx context.Context, q database.Querier, id uuid.UUID) error
	List(ctx context.Context, q database.Querier, country string, numberType NumberType, limit, offset int) ([]*BankedPhoneNumber, error)
}

type PoolRepository interface {
	Create(ctx context.Context, q database.Querier, p *PhoneNumberPool) error
	GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*PhoneNumberPool, error)
	GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*PhoneNumberPool, error)
	ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*PhoneNumberPool, error)
	Update(ctx context.Context, q database.Querier, p *PhoneNumberPool) error
	UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status EntityStatus, deletedBy *uuid.UUID) error
	SetCampaign(ctx context.Context, q database.Querier, id uuid.UUID, campaignID *uuid.UUID) error
	GetByCampaign(ctx context.Context, q database.Querier, campaignID uuid.UUID) (*PhoneNumberPool, error)
}

type KeywordPoolRepository interface {
	Create(ctx context.Context, q database.Querier, p *KeywordTrackingPool) error
	GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*KeywordTrackingPool, error)
	GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*KeywordTrackingPool, error)
	ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*KeywordTrackingPool, error)
	Update(ctx context.Context, q database.Querier, p *KeywordTrackingPool) error
	UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status EntityStatus, deletedBy *uuid.UUID) error
}

type KeywordSessionRepository interface {
	// Upsert replaces any previous (expired) session stored under the same key.
	Upsert(ctx context.Context, q database.Querier, s *KeywordSession) error
	GetActiveByKey(ctx context.Context, q database.Querier, poolID uuid.UUID, sessionKey string, now time.Time) (*KeywordSession, error)
	Touch(ctx context.Context, q database.Querier, id uuid.UUID, at, expiresAt time.Time) error
	ListByPool(ctx context.Context, q database.Querier, poolID uuid.UUID, activeAt *time.Time, limit int) ([]*KeywordSession, error)
	DeleteByPool(ctx context.Context, q database.Querier, poolID uuid.UUID) error
}

// CampaignLinks answers whether a campaign referenced by a number or pool is still live.
type CampaignLinks interface {
	IsCampaignActive(ctx context.Context, q database.Querier, campaignID uuid.UUID) (bool, error)
}

type IdempotencyRepository interface {
	// Reserve inserts a pending record. A pending record for the same operation last touched before
	// staleBefore is taken over as if new. Otherwise an existing key returns the stored record and false.
	Reserve(ctx context.Context, q database.Querier, accountID uuid.UUID, key, operation string, staleBefore time.Time) (*IdempotencyRecord, bool, error)
	Complete(ctx context.Context, q database.Querier, accountID uuid.UUID, key string, code int, body []byte) error
	Delete(ctx context.Context, q database.Querier, accountID uuid.UUID, key string) error
}
