package postgres

import (
	"context"
	"log/slog"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bankedColumns = `id, released_by_account_id, carrier_sid, country_code, number, country, type, voice, sms, mms, released_at`

type PgBankedNumberRepository struct {
	logger *slog.Logger
}

func NewPgBankedNumberRepository(logger *slog.Logger) *PgBankedNumberRepository {
	return &PgBankedNumberRepository{logger: logger}
}

func scanBanked(rows pgx.Rows) ([]*domain.BankedPhoneNumber, error) {
	defer rows.Close()
	var out []*domain.BankedPhoneNumber
	for rows.Next() {
		b := &domain.BankedPhoneNumber{}
		if err := rows.Scan(&b.ID, &b.ReleasedByAccountID, &b.CarrierSID, &b.CountryCode, &b.Number, &b.Country,
			&b.Type, &b.Voice, &b.SMS, &b.MMS, &b.ReleasedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PgBankedNumberRepository) ClaimAvailable(ctx context.Context, q database.Querier, excludeAccountID uuid.UUID, country string, numberType domain.NumberType, prefix string, limit int) ([]*domain.BankedPhoneNumber, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := `SELECT ` + bankedColumns + ` FROM banked_phone_numbers
		WHERE released_by_account_id <> $1 AND country = $2 AND type = $3 AND number LIKE $4 || '%'
		ORDER BY released_at ASC
		LIMIT $5
		FOR UPDATE SKIP LOCKED`
	rows, err := q.Query(ctx, query, excludeAccountID, country, numberType, prefix, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error claiming banked numbers", "error", err, "country", country, "type", numberType)
		return nil, err
	}
	return scanBanked(rows)
}

func (r *PgBankedNumberRepository) Create(ctx context.Context, q database.Querier, b *domain.BankedPhoneNumber) error {
	query := `INSERT INTO banked_phone_numbers (` + bankedColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (country_code, number) DO NOTHING`
	tag, err := q.Exec(ctx, query, b.ID, b.ReleasedByAccountID, b.CarrierSID, b.CountryCode, b.Number, b.Country,
		b.Type, b.Voice, b.SMS, b.MMS, b.ReleasedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error banking number", "error", err, "number", b.E164())
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Number already banked", "number", b.E164())
	}
	return nil
}

func (r *PgBankedNumberRepository) Delete(ctx context.Context, q database.Querier, id uuid.UUID) error {
	tag, err := q.Exec(ctx, `DELETE FROM banked_phone_numbers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgBankedNumberRepository) List(ctx context.Context, q database.Querier, country string, numberType domain.NumberType, limit, offset int) ([]*domain.BankedPhoneNumber, error) {
	query := `SELECT ` + bankedColumns + ` FROM banked_phone_numbers
		WHERE ($1 = '' OR country = $1) AND ($2 = '' OR type = $2)
		ORDER BY released_at ASC LIMIT $3 OFFSET $4`
	rows, err := q.Query(ctx, query, country, string(numberType), limit, offset)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing banked numbers", "error", err)
		return nil, err
	}
	return scanBanked(rows)
}
