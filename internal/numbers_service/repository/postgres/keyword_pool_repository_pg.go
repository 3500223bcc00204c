package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const keywordPoolColumns = `id, account_id, company_id, name, size, type, prefix, country, forward_to_number, swap_rules,
	session_ttl_seconds, status, created_at, updated_at, deleted_at, deleted_by`

type PgKeywordPoolRepository struct {
	logger *slog.Logger
}

func NewPgKeywordPoolRepository(logger *slog.Logger) *PgKeywordPoolRepository {
	return &PgKeywordPoolRepository{logger: logger}
}

func scanKeywordPool(row pgx.Row) (*domain.KeywordTrackingPool, error) {
	p := &domain.KeywordTrackingPool{}
	var rules []byte
	var ttlSeconds int
	if err := row.Scan(&p.ID, &p.AccountID, &p.CompanyID, &p.Name, &p.Size, &p.Type, &p.Prefix, &p.Country,
		&p.ForwardToNumber, &rules, &ttlSeconds, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.DeletedBy); err != nil {
		return nil, err
	}
	p.SessionTTL = time.Duration(ttlSeconds) * time.Second
	decoded, err := decodeRules(rules)
	if err != nil {
		return nil, err
	}
	if decoded != nil {
		p.SwapRules = *decoded
	}
	return p, nil
}

func (r *PgKeywordPoolRepository) queryOne(ctx context.Context, q database.Querier, query string, args ...any) (*domain.KeywordTrackingPool, error) {
	p, err := scanKeywordPool(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error loading keyword pool", "error", err)
		return nil, err
	}
	return p, nil
}

func (r *PgKeywordPoolRepository) Create(ctx context.Context, q database.Querier, p *domain.KeywordTrackingPool) error {
	rules, err := json.Marshal(p.SwapRules)
	if err != nil {
		return err
	}
	query := `INSERT INTO keyword_tracking_pools (` + keywordPoolColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = q.Exec(ctx, query, p.ID, p.AccountID, p.CompanyID, p.Name, p.Size, p.Type, p.Prefix, p.Country,
		p.ForwardToNumber, rules, int(p.SessionTTL/time.Second), p.Status, p.CreatedAt, p.UpdatedAt, p.DeletedAt, p.DeletedBy)
	if err != nil {
		if database.IsUniqueViolation(err, "uq_keyword_pools_company") {
			return domain.ErrKeywordPoolExists
		}
		r.logger.ErrorContext(ctx, "Error creating keyword pool", "error", err, "company_id", p.CompanyID)
		return err
	}
	return nil
}

func (r *PgKeywordPoolRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.KeywordTrackingPool, error) {
	return r.queryOne(ctx, q, `SELECT `+keywordPoolColumns+` FROM keyword_tracking_pools
		WHERE id = $1 AND account_id = $2 AND status <> 'deleted'`, id, accountID)
}

func (r *PgKeywordPoolRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.KeywordTrackingPool, error) {
	return r.queryOne(ctx, q, `SELECT `+keywordPoolColumns+` FROM keyword_tracking_pools
		WHERE id = $1 AND account_id = $2 AND status <> 'deleted' FOR UPDATE`, id, accountID)
}

func (r *PgKeywordPoolRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*domain.KeywordTrackingPool, error) {
	rows, err := q.Query(ctx, `SELECT `+keywordPoolColumns+` FROM keyword_tracking_pools
		WHERE company_id = $1 AND status <> 'deleted' ORDER BY created_at`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []*domain.KeywordTrackingPool
	for rows.Next() {
		p, err := scanKeywordPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

func (r *PgKeywordPoolRepository) Update(ctx context.Context, q database.Querier, p *domain.KeywordTrackingPool) error {
	rules, err := json.Marshal(p.SwapRules)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `UPDATE keyword_tracking_pools SET name = $1, size = $2, forward_to_number = $3, swap_rules = $4,
		session_ttl_seconds = $5, updated_at = $6 WHERE id = $7 AND status <> 'deleted'`,
		p.Name, p.Size, p.ForwardToNumber, rules, int(p.SessionTTL/time.Second), p.UpdatedAt, p.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating keyword pool", "error", err, "keyword_pool_id", p.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgKeywordPoolRepository) UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status domain.EntityStatus, deletedBy *uuid.UUID) error {
	return updateStatus(ctx, q, "keyword_tracking_pools", id, status, deletedBy)
}
