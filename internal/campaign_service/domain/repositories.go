package domain

import (
	"context"

	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

type CampaignRepository interface {
	Create(ctx context.Context, q database.Querier, c *Campaign) error
	GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*Campaign, error)
	// GetByIDForUpdate locks the campaign row so bindings are checked and changed atomically.
	GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*Campaign, error)
	ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*Campaign, error)
	Update(ctx context.Context, q database.Querier, c *Campaign) error
	SoftDelete(ctx context.Context, q database.Querier, id uuid.UUID, deletedBy uuid.UUID) error
}
