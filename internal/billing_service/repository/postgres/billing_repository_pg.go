package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgBillingRepository struct {
	logger *slog.Logger
}

func NewPgBillingRepository(logger *slog.Logger) *PgBillingRepository {
	return &PgBillingRepository{logger: logger}
}

func (r *PgBillingRepository) Create(ctx context.Context, q database.Querier, b *domain.Billing) error {
	query := `
		INSERT INTO billing (account_id, balance, currency, local_number_price, toll_free_number_price, external_customer_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id) DO NOTHING
	`
	_, err := q.Exec(ctx, query, b.AccountID, b.Balance, b.Currency, b.LocalNumberPrice, b.TollFreeNumberPrice, b.ExternalCustomerID, b.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating billing record", "error", err, "account_id", b.AccountID)
		return err
	}
	return nil
}

const billingSelect = `
	SELECT account_id, balance, currency, local_number_price, toll_free_number_price, external_customer_id, updated_at
	FROM billing WHERE account_id = $1`

func (r *PgBillingRepository) Get(ctx context.Context, q database.Querier, accountID uuid.UUID) (*domain.Billing, error) {
	return r.scan(ctx, q, billingSelect, accountID)
}

func (r *PgBillingRepository) GetForUpdate(ctx context.Context, q database.Querier, accountID uuid.UUID) (*domain.Billing, error) {
	return r.scan(ctx, q, billingSelect+` FOR UPDATE`, accountID)
}

func (r *PgBillingRepository) scan(ctx context.Context, q database.Querier, query string, accountID uuid.UUID) (*domain.Billing, error) {
	b := &domain.Billing{}
	err := q.QueryRow(ctx, query, accountID).Scan(
		&b.AccountID, &b.Balance, &b.Currency, &b.LocalNumberPrice, &b.TollFreeNumberPrice, &b.ExternalCustomerID, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error loading billing record", "error", err, "account_id", accountID)
		return nil, err
	}
	return b, nil
}

func (r *PgBillingRepository) UpdateBalance(ctx context.Context, q database.Querier, accountID uuid.UUID, balance decimal.Decimal) error {
	tag, err := q.Exec(ctx, `UPDATE billing SET balance = $1, updated_at = $2 WHERE account_id = $3`, balance, time.Now().UTC(), accountID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating balance", "error", err, "account_id", accountID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
