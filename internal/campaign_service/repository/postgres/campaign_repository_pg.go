package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/campaign_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const campaignColumns = `id, account_id, company_id, name, type, enabled, starts_at, ends_at, status,
	created_at, updated_at, deleted_at, deleted_by`

// PgCampaignRepository implements domain.CampaignRepository.
type PgCampaignRepository struct {
	logger *slog.Logger
}

func NewPgCampaignRepository(logger *slog.Logger) *PgCampaignRepository {
	return &PgCampaignRepository{logger: logger}
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	err := row.Scan(&c.ID, &c.AccountID, &c.CompanyID, &c.Name, &c.Type, &c.Enabled, &c.StartsAt, &c.EndsAt,
		&c.Status, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt, &c.DeletedBy)
	return c, err
}

func (r *PgCampaignRepository) queryOne(ctx context.Context, q database.Querier, query string, args ...any) (*domain.Campaign, error) {
	c, err := scanCampaign(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error loading campaign", "error", err)
		return nil, err
	}
	return c, nil
}

func (r *PgCampaignRepository) Create(ctx context.Context, q database.Querier, c *domain.Campaign) error {
	query := `INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := q.Exec(ctx, query, c.ID, c.AccountID, c.CompanyID, c.Name, c.Type, c.Enabled, c.StartsAt, c.EndsAt,
		c.Status, c.CreatedAt, c.UpdatedAt, c.DeletedAt, c.DeletedBy)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating campaign", "error", err, "company_id", c.CompanyID)
		return err
	}
	r.logger.InfoContext(ctx, "Campaign created", "campaign_id", c.ID, "company_id", c.CompanyID)
	return nil
}

func (r *PgCampaignRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.Campaign, error) {
	return r.queryOne(ctx, q, `SELECT `+campaignColumns+` FROM campaigns
		WHERE id = $1 AND account_id = $2 AND status <> 'deleted'`, id, accountID)
}

func (r *PgCampaignRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.Campaign, error) {
	return r.queryOne(ctx, q, `SELECT `+campaignColumns+` FROM campaigns
		WHERE id = $1 AND account_id = $2 AND status <> 'deleted' FOR UPDATE`, id, accountID)
}

func (r *PgCampaignRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*domain.Campaign, error) {
	rows, err := q.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns
		WHERE company_id = $1 AND status <> 'deleted' ORDER BY created_at DESC`, companyID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing campaigns", "error", err, "company_id", companyID)
		return nil, err
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *PgCampaignRepository) Update(ctx context.Context, q database.Querier, c *domain.Campaign) error {
	c.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `UPDATE campaigns SET name = $1, type = $2, enabled = $3, starts_at = $4, ends_at = $5,
		updated_at = $6 WHERE id = $7 AND status <> 'deleted'`,
		c.Name, c.Type, c.Enabled, c.StartsAt, c.EndsAt, c.UpdatedAt, c.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating campaign", "error", err, "campaign_id", c.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgCampaignRepository) SoftDelete(ctx context.Context, q database.Querier, id uuid.UUID, deletedBy uuid.UUID) error {
	now := time.Now().UTC()
	tag, err := q.Exec(ctx, `UPDATE campaigns SET status = $1, deleted_at = $2, deleted_by = $3, updated_at = $2
		WHERE id = $4 AND status <> 'deleted'`, domain.StatusDeleted, now, deletedBy, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting campaign", "error", err, "campaign_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
