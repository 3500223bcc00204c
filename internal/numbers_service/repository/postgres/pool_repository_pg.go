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

const poolColumns = `id, account_id, company_id, campaign_id, name, size, type, prefix, country, forward_to_number,
	swap_rules, status, created_at, updated_at, deleted_at, deleted_by`

type PgPoolRepository struct {
	logger *slog.Logger
}

func NewPgPoolRepository(logger *slog.Logger) *PgPoolRepository {
	return &PgPoolRepository{logger: logger}
}

func scanPool(row pgx.Row) (*domain.PhoneNumberPool, error) {
	p := &domain.PhoneNumberPool{}
	var rules []byte
	if err := row.Scan(&p.ID, &p.AccountID, &p.CompanyID, &p.CampaignID, &p.Name, &p.Size, &p.Type, &p.Prefix,
		&p.Country, &p.ForwardToNumber, &rules, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.DeletedBy); err != nil {
		return nil, err
	}
	decoded, err := decodeRules(rules)
	if err != nil {
		return nil, err
	}
	if decoded != nil {
		p.SwapRules = *decoded
	}
	return p, nil
}

func (r *PgPoolRepository) queryOne(ctx context.Context, q database.Querier, query string, args ...any) (*domain.PhoneNumberPool, error) {
	p, err := scanPool(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error loading pool", "error", err)
		return nil, err
	}
	return p, nil
}

func (r *PgPoolRepository) Create(ctx context.Context, q database.Querier, p *domain.PhoneNumberPool) error {
	rules, err := json.Marshal(p.SwapRules)
	if err != nil {
		return err
	}
	query := `INSERT INTO phone_number_pools (` + poolColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = q.Exec(ctx, query, p.ID, p.AccountID, p.CompanyID, p.CampaignID, p.Name, p.Size, p.Type, p.Prefix,
		p.Country, p.ForwardToNumber, rules, p.Status, p.CreatedAt, p.UpdatedAt, p.DeletedAt, p.DeletedBy)
	if err != nil {
		if database.IsUniqueViolation(err, "uq_pools_campaign") {
			return domain.ErrInUse
		}
		r.logger.ErrorContext(ctx, "Error creating pool", "error", err, "company_id", p.CompanyID)
		return err
	}
	return nil
}

func (r *PgPoolRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.PhoneNumberPool, error) {
	return r.queryOne(ctx, q, `SELECT `+poolColumns+` FROM phone_number_pools
		WHERE id = $1 AND account_id = $2 AND status <> 'deleted'`, id, accountID)
}

func (r *PgPoolRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.PhoneNumberPool, error) {
	return r.queryOne(ctx, q, `SELECT `+poolColumns+` FROM phone_number_pools
		WHERE id = $1 AND account_id = $2 AND status <> 'deleted' FOR UPDATE`, id, accountID)
}

func (r *PgPoolRepository) GetByCampaign(ctx context.Context, q database.Querier, campaignID uuid.UUID) (*domain.PhoneNumberPool, error) {
	return r.queryOne(ctx, q, `SELECT `+poolColumns+` FROM phone_number_pools
		WHERE campaign_id = $1 AND status <> 'deleted'`, campaignID)
}

func (r *PgPoolRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*domain.PhoneNumberPool, error) {
	rows, err := q.Query(ctx, `SELECT `+poolColumns+` FROM phone_number_pools
		WHERE company_id = $1 AND status <> 'deleted' ORDER BY created_at`, companyID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing pools", "error", err, "company_id", companyID)
		return nil, err
	}
	defer rows.Close()

	var pools []*domain.PhoneNumberPool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

func (r *PgPoolRepository) Update(ctx context.Context, q database.Querier, p *domain.PhoneNumberPool) error {
	rules, err := json.Marshal(p.SwapRules)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `UPDATE phone_number_pools SET name = $1, size = $2, forward_to_number = $3, swap_rules = $4,
		updated_at = $5 WHERE id = $6 AND status <> 'deleted'`,
		p.Name, p.Size, p.ForwardToNumber, rules, p.UpdatedAt, p.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating pool", "error", err, "pool_id", p.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgPoolRepository) UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status domain.EntityStatus, deletedBy *uuid.UUID) error {
	return updateStatus(ctx, q, "phone_number_pools", id, status, deletedBy)
}

func (r *PgPoolRepository) SetCampaign(ctx context.Context, q database.Querier, id uuid.UUID, campaignID *uuid.UUID) error {
	tag, err := q.Exec(ctx, `UPDATE phone_number_pools SET campaign_id = $1, updated_at = $2 WHERE id = $3 AND status = 'active'`,
		campaignID, time.Now().UTC(), id)
	if err != nil {
		if database.IsUniqueViolation(err, "uq_pools_campaign") {
			return domain.ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// updateStatus is shared by the pool tables; deleted rows get their tombstone fields set.
func updateStatus(ctx context.Context, q database.Querier, table string, id uuid.UUID, status domain.EntityStatus, deletedBy *uuid.UUID) error {
	now := time.Now().UTC()
	var deletedAt *time.Time
	if status == domain.StatusDeleted {
		deletedAt = &now
	}
	query := `UPDATE ` + table + ` SET status = $1, deleted_at = $2, deleted_by = $3, updated_at = $4 WHERE id = $5`
	tag, err := q.Exec(ctx, query, status, deletedAt, deletedBy, now, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
