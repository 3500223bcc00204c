package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const phoneNumberColumns = `id, account_id, company_id, pool_id, keyword_pool_id, campaign_id, carrier_sid, country_code,
	number, type, voice, sms, mms, name, category, sub_category, source, medium, campaign_tag, content,
	forward_to_number, swap_rules, status, purchased_at, disabled_at, last_assigned_at, created_at, updated_at,
	deleted_at, deleted_by`

type PgPhoneNumberRepository struct {
	logger *slog.Logger
}

func NewPgPhoneNumberRepository(logger *slog.Logger) *PgPhoneNumberRepository {
	return &PgPhoneNumberRepository{logger: logger}
}

func scanPhoneNumber(row pgx.Row) (*domain.PhoneNumber, error) {
	n := &domain.PhoneNumber{}
	var rules []byte
	err := row.Scan(&n.ID, &n.AccountID, &n.CompanyID, &n.PoolID, &n.KeywordPoolID, &n.CampaignID, &n.CarrierSID,
		&n.CountryCode, &n.Number, &n.Type, &n.Voice, &n.SMS, &n.MMS, &n.Name, &n.Attribution.Category,
		&n.Attribution.SubCategory, &n.Attribution.Source, &n.Attribution.Medium, &n.Attribution.Campaign,
		&n.Attribution.Content, &n.ForwardToNumber, &rules, &n.Status, &n.PurchasedAt, &n.DisabledAt,
		&n.LastAssignedAt, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt, &n.DeletedBy)
	if err != nil {
		return nil, err
	}
	if n.SwapRules, err = decodeRules(rules); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *PgPhoneNumberRepository) queryOne(ctx context.Context, q database.Querier, query string, args ...any) (*domain.PhoneNumber, error) {
	n, err := scanPhoneNumber(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error loading phone number", "error", err)
		return nil, err
	}
	return n, nil
}

func (r *PgPhoneNumberRepository) queryMany(ctx context.Context, q database.Querier, query string, args ...any) ([]*domain.PhoneNumber, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing phone numbers", "error", err)
		return nil, err
	}
	defer rows.Close()

	var numbers []*domain.PhoneNumber
	for rows.Next() {
		n, err := scanPhoneNumber(rows)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *PgPhoneNumberRepository) Create(ctx context.Context, q database.Querier, n *domain.PhoneNumber) error {
	rules, err := encodeRules(n.SwapRules)
	if err != nil {
		return err
	}
	query := `INSERT INTO phone_numbers (` + phoneNumberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30)`
	_, err = q.Exec(ctx, query, n.ID, n.AccountID, n.CompanyID, n.PoolID, n.KeywordPoolID, n.CampaignID, n.CarrierSID,
		n.CountryCode, n.Number, n.Type, n.Voice, n.SMS, n.MMS, n.Name, n.Attribution.Category, n.Attribution.SubCategory,
		n.Attribution.Source, n.Attribution.Medium, n.Attribution.Campaign, n.Attribution.Content, n.ForwardToNumber,
		rules, n.Status, n.PurchasedAt, n.DisabledAt, n.LastAssignedAt, n.CreatedAt, n.UpdatedAt, n.DeletedAt, n.DeletedBy)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating phone number", "error", err, "number", n.E164())
		return fmt.Errorf("inserting phone number %s: %w", n.E164(), err)
	}
	return nil
}

func (r *PgPhoneNumberRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.PhoneNumber, error) {
	query := `SELECT ` + phoneNumberColumns + ` FROM phone_numbers WHERE id = $1 AND account_id = $2 AND status <> 'deleted'`
	return r.queryOne(ctx, q, query, id, accountID)
}

func (r *PgPhoneNumberRepository) GetByIDForUpdate(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.PhoneNumber, error) {
	query := `SELECT ` + phoneNumberColumns + ` FROM phone_numbers WHERE id = $1 AND account_id = $2 AND status <> 'deleted' FOR UPDATE`
	return r.queryOne(ctx, q, query, id, accountID)
}

func (r *PgPhoneNumberRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID, filter domain.NumberFilter) ([]*domain.PhoneNumber, error) {
	where := []string{"company_id = $1", "status <> 'deleted'"}
	args := []any{companyID}
	if filter.PoolID != nil {
		args = append(args, *filter.PoolID)
		where = append(where, fmt.Sprintf("pool_id = $%d", len(args)))
	}
	if filter.CampaignID != nil {
		args = append(args, *filter.CampaignID)
		where = append(where, fmt.Sprintf("campaign_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.OrphanOnly {
		where = append(where, "pool_id IS NULL", "keyword_pool_id IS NULL")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM phone_numbers WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		phoneNumberColumns, strings.Join(where, " AND "), len(args)-1, len(args))
	return r.queryMany(ctx, q, query, args...)
}

func (r *PgPhoneNumberRepository) ListByPool(ctx context.Context, q database.Querier, poolID uuid.UUID) ([]*domain.PhoneNumber, error) {
	query := `SELECT ` + phoneNumberColumns + ` FROM phone_numbers WHERE pool_id = $1 AND status <> 'deleted' ORDER BY created_at`
	return r.queryMany(ctx, q, query, poolID)
}

func (r *PgPhoneNumberRepository) ListByKeywordPool(ctx context.Context, q database.Querier, poolID uuid.UUID) ([]*domain.PhoneNumber, error) {
	query := `SELECT ` + phoneNumberColumns + ` FROM phone_numbers WHERE keyword_pool_id = $1 AND status <> 'deleted' ORDER BY created_at`
	return r.queryMany(ctx, q, query, poolID)
}

func (r *PgPhoneNumberRepository) Update(ctx context.Context, q database.Querier, n *domain.PhoneNumber) error {
	rules, err := encodeRules(n.SwapRules)
	if err != nil {
		return err
	}
	n.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE phone_numbers SET pool_id = $1, keyword_pool_id = $2, campaign_id = $3, name = $4, category = $5,
			sub_category = $6, source = $7, medium = $8, campaign_tag = $9, content = $10, forward_to_number = $11,
			swap_rules = $12, disabled_at = $13, updated_at = $14
		WHERE id = $15 AND status <> 'deleted'
	`
	tag, err := q.Exec(ctx, query, n.PoolID, n.KeywordPoolID, n.CampaignID, n.Name, n.Attribution.Category,
		n.Attribution.SubCategory, n.Attribution.Source, n.Attribution.Medium, n.Attribution.Campaign,
		n.Attribution.Content, n.ForwardToNumber, rules, n.DisabledAt, n.UpdatedAt, n.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating phone number", "error", err, "phone_number_id", n.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgPhoneNumberRepository) UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status domain.EntityStatus, deletedBy *uuid.UUID) error {
	now := time.Now().UTC()
	var deletedAt *time.Time
	if status == domain.StatusDeleted {
		deletedAt = &now
	}
	query := `UPDATE phone_numbers SET status = $1, deleted_at = $2, deleted_by = $3, updated_at = $4 WHERE id = $5`
	tag, err := q.Exec(ctx, query, status, deletedAt, deletedBy, now, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating phone number status", "error", err, "phone_number_id", id, "status", status)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgPhoneNumberRepository) MarkReleased(ctx context.Context, q database.Querier, id uuid.UUID, deletedBy *uuid.UUID) error {
	now := time.Now().UTC()
	query := `UPDATE phone_numbers SET status = 'deleted', deleted_at = $1, deleted_by = $2, updated_at = $1
		WHERE id = $3 AND status = 'pending_deletion'`
	tag, err := q.Exec(ctx, query, now, deletedBy, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error marking phone number released", "error", err, "phone_number_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: phone number %s is not pending deletion", domain.ErrInvalidTransition, id)
	}
	return nil
}

func (r *PgPhoneNumberRepository) ApplyPoolConfig(ctx context.Context, q database.Querier, poolID uuid.UUID, forwardTo string, rules domain.SwapRules) (int64, error) {
	raw, err := encodeRules(&rules)
	if err != nil {
		return 0, err
	}
	query := `UPDATE phone_numbers SET forward_to_number = $1, swap_rules = $2, updated_at = $3
		WHERE (pool_id = $4 OR keyword_pool_id = $4) AND status = 'active'`
	tag, err := q.Exec(ctx, query, forwardTo, raw, time.Now().UTC(), poolID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error propagating pool config", "error", err, "pool_id", poolID)
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgPhoneNumberRepository) SetCampaign(ctx context.Context, q database.Querier, id uuid.UUID, campaignID *uuid.UUID) error {
	tag, err := q.Exec(ctx, `UPDATE phone_numbers SET campaign_id = $1, updated_at = $2 WHERE id = $3 AND status = 'active'`,
		campaignID, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgPhoneNumberRepository) CountActiveByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) (int, error) {
	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM phone_numbers WHERE company_id = $1 AND status <> 'deleted'`, companyID).Scan(&count)
	return count, err
}

func (r *PgPhoneNumberRepository) CountByCampaign(ctx context.Context, q database.Querier, campaignID uuid.UUID) (int, error) {
	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM phone_numbers WHERE campaign_id = $1 AND status <> 'deleted'`, campaignID).Scan(&count)
	return count, err
}

func (r *PgPhoneNumberRepository) NextForSession(ctx context.Context, q database.Querier, keywordPoolID uuid.UUID, now time.Time) (*domain.PhoneNumber, error) {
	query := `SELECT ` + phoneNumberColumns + ` FROM phone_numbers n
		WHERE n.keyword_pool_id = $1 AND n.status = 'active' AND n.disabled_at IS NULL
		AND NOT EXISTS (SELECT 1 FROM keyword_sessions s WHERE s.phone_number_id = n.id AND s.expires_at > $2)
		ORDER BY n.last_assigned_at ASC NULLS FIRST
		LIMIT 1
		FOR UPDATE SKIP LOCKED`
	n, err := r.queryOne(ctx, q, query, keywordPoolID, now)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoNumberAvailable
	}
	return n, err
}

func (r *PgPhoneNumberRepository) MarkAssigned(ctx context.Context, q database.Querier, id uuid.UUID, at time.Time) error {
	_, err := q.Exec(ctx, `UPDATE phone_numbers SET last_assigned_at = $1 WHERE id = $2`, at, id)
	return err
}

// IsCampaignActive implements domain.CampaignLinks.
func (r *PgPhoneNumberRepository) IsCampaignActive(ctx context.Context, q database.Querier, campaignID uuid.UUID) (bool, error) {
	var active bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1 AND status <> 'deleted')`, campaignID).Scan(&active)
	return active, err
}
