package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/contact_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const blockedColumns = `id, account_id, company_id, country_code, number, name, call_count, created_at,
	updated_at, deleted_at`

type PgBlockedNumberRepository struct {
	logger *slog.Logger
}

func NewPgBlockedNumberRepository(logger *slog.Logger) *PgBlockedNumberRepository {
	return &PgBlockedNumberRepository{logger: logger}
}

func scanBlocked(row pgx.Row) (*domain.BlockedPhoneNumber, error) {
	b := &domain.BlockedPhoneNumber{}
	err := row.Scan(&b.ID, &b.AccountID, &b.CompanyID, &b.CountryCode, &b.Number, &b.Name, &b.CallCount,
		&b.CreatedAt, &b.UpdatedAt, &b.DeletedAt)
	return b, err
}

func (r *PgBlockedNumberRepository) Create(ctx context.Context, q database.Querier, b *domain.BlockedPhoneNumber) error {
	_, err := q.Exec(ctx, `INSERT INTO blocked_phone_numbers (`+blockedColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.AccountID, b.CompanyID, b.CountryCode, b.Number, b.Name, b.CallCount, b.CreatedAt, b.UpdatedAt,
		b.DeletedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating blocked number", "error", err, "account_id", b.AccountID)
		return err
	}
	r.logger.InfoContext(ctx, "Blocked number created", "blocked_number_id", b.ID, "account_id", b.AccountID)
	return nil
}

func (r *PgBlockedNumberRepository) ListByAccount(ctx context.Context, q database.Querier, accountID uuid.UUID, companyID *uuid.UUID) ([]*domain.BlockedPhoneNumber, error) {
	rows, err := q.Query(ctx, `SELECT `+blockedColumns+` FROM blocked_phone_numbers
		WHERE account_id = $1 AND deleted_at IS NULL AND (company_id IS NULL OR company_id = $2)
		ORDER BY created_at DESC`, accountID, companyID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing blocked numbers", "error", err, "account_id", accountID)
		return nil, err
	}
	defer rows.Close()

	var blocked []*domain.BlockedPhoneNumber
	for rows.Next() {
		b, err := scanBlocked(rows)
		if err != nil {
			return nil, err
		}
		blocked = append(blocked, b)
	}
	return blocked, rows.Err()
}

func (r *PgBlockedNumberRepository) Match(ctx context.Context, q database.Querier, accountID, companyID uuid.UUID, countryCode, number string) (*domain.BlockedPhoneNumber, error) {
	b, err := scanBlocked(q.QueryRow(ctx, `SELECT `+blockedColumns+` FROM blocked_phone_numbers
		WHERE account_id = $1 AND country_code = $2 AND number = $3 AND deleted_at IS NULL
			AND (company_id IS NULL OR company_id = $4)
		ORDER BY company_id NULLS LAST LIMIT 1`, accountID, countryCode, number, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error matching blocked number", "error", err, "account_id", accountID)
		return nil, err
	}
	return b, nil
}

func (r *PgBlockedNumberRepository) SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error {
	tag, err := q.Exec(ctx, `UPDATE blocked_phone_numbers SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND account_id = $3 AND deleted_at IS NULL`, time.Now().UTC(), id, accountID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting blocked number", "error", err, "blocked_number_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
