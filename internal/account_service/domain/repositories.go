package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository manages Account rows.
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Update(ctx context.Context, a *Account) error
}

// CompanyRepository manages Company rows. All reads are scoped by account.
type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id, accountID uuid.UUID) (*Company, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*Company, error)
	Update(ctx context.Context, c *Company) error
	SoftDelete(ctx context.Context, id, accountID, deletedBy uuid.UUID) error
}

// UserRepository manages User rows.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// CompanyUsageChecker reports how many live numbers and pools a company still owns.
// It is implemented by the numbers service repositories.
type CompanyUsageChecker interface {
	CountActiveByCompany(ctx context.Context, companyID uuid.UUID) (int, error)
}
