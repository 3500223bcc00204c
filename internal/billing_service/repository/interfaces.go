package repository

import (
	"context"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingRepository persists the per-account billing row.
type BillingRepository interface {
	Create(ctx context.Context, q database.Querier, b *domain.Billing) error
	Get(ctx context.Context, q database.Querier, accountID uuid.UUID) (*domain.Billing, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, q database.Querier, accountID uuid.UUID) (*domain.Billing, error)
	UpdateBalance(ctx context.Context, q database.Querier, accountID uuid.UUID, balance decimal.Decimal) error
}

// TransactionRepository is the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, q database.Querier, txn *domain.Transaction) error
	ListByAccountID(ctx context.Context, q database.Querier, accountID uuid.UUID, limit, offset int) ([]*domain.Transaction, int, error)
}

type PaymentIntentRepository interface {
	Create(ctx context.Context, q database.Querier, pi *domain.PaymentIntent) error
	// GetByGatewayIDForUpdate locks the intent so concurrent webhook deliveries serialise.
	GetByGatewayIDForUpdate(ctx context.Context, q database.Querier, gatewayID string) (*domain.PaymentIntent, error)
	Update(ctx context.Context, q database.Querier, pi *domain.PaymentIntent) error
}
