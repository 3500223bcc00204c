package domain

import (
	"context"

	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

type ContactRepository interface {
	Create(ctx context.Context, q database.Querier, c *Contact) error
	GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*Contact, error)
	ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID, offset, limit int) ([]*Contact, error)
	Update(ctx context.Context, q database.Querier, c *Contact) error
	SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error
}

type BlockedNumberRepository interface {
	Create(ctx context.Context, q database.Querier, b *BlockedPhoneNumber) error
	// ListByAccount returns account-wide entries plus, when companyID is set, that company's entries.
	ListByAccount(ctx context.Context, q database.Querier, accountID uuid.UUID, companyID *uuid.UUID) ([]*BlockedPhoneNumber, error)
	// Match finds an entry blocking the number for the company, either scoped to it or account-wide.
	Match(ctx context.Context, q database.Querier, accountID, companyID uuid.UUID, countryCode, number string) (*BlockedPhoneNumber, error)
	SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error
}
