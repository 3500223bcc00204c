package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

type PgIdempotencyRepository struct {
	logger *slog.Logger
}

func NewPgIdempotencyRepository(logger *slog.Logger) *PgIdempotencyRepository {
	return &PgIdempotencyRepository{logger: logger}
}

func (r *PgIdempotencyRepository) Reserve(ctx context.Context, q database.Querier, accountID uuid.UUID, key, operation string, staleBefore time.Time) (*domain.IdempotencyRecord, bool, error) {
	now := time.Now().UTC()
	tag, err := q.Exec(ctx, `INSERT INTO idempotency_keys (account_id, idem_key, operation, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (account_id, idem_key) DO UPDATE
			SET response_code = 0, response_body = NULL, created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at
			WHERE idempotency_keys.status = EXCLUDED.status
				AND idempotency_keys.operation = EXCLUDED.operation
				AND idempotency_keys.updated_at < $6`,
		accountID, key, operation, domain.IdempotencyPending, now, staleBefore)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error reserving idempotency key", "error", err, "account_id", accountID)
		return nil, false, err
	}
	if tag.RowsAffected() == 1 {
		return &domain.IdempotencyRecord{
			AccountID: accountID, Key: key, Operation: operation,
			Status: domain.IdempotencyPending, CreatedAt: now, UpdatedAt: now,
		}, true, nil
	}

	rec := &domain.IdempotencyRecord{AccountID: accountID, Key: key}
	err = q.QueryRow(ctx, `SELECT operation, status, response_code, response_body, created_at, updated_at
		FROM idempotency_keys WHERE account_id = $1 AND idem_key = $2`, accountID, key).
		Scan(&rec.Operation, &rec.Status, &rec.ResponseCode, &rec.ResponseBody, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, false, err
	}
	return rec, false, nil
}

func (r *PgIdempotencyRepository) Complete(ctx context.Context, q database.Querier, accountID uuid.UUID, key string, code int, body []byte) error {
	_, err := q.Exec(ctx, `UPDATE idempotency_keys SET status = $1, response_code = $2, response_body = $3, updated_at = $4
		WHERE account_id = $5 AND idem_key = $6`,
		domain.IdempotencyCompleted, code, body, time.Now().UTC(), accountID, key)
	return err
}

func (r *PgIdempotencyRepository) Delete(ctx context.Context, q database.Querier, accountID uuid.UUID, key string) error {
	_, err := q.Exec(ctx, `DELETE FROM idempotency_keys WHERE account_id = $1 AND idem_key = $2`, accountID, key)
	return err
}
