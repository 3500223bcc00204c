package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/account_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgCompanyRepository implements domain.CompanyRepository.
type PgCompanyRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgCompanyRepository(db database.Querier, logger *slog.Logger) *PgCompanyRepository {
	return &PgCompanyRepository{db: db, logger: logger}
}

func (r *PgCompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	query := `
		INSERT INTO companies (id, account_id, name, industry, country, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.AccountID, c.Name, c.Industry, c.Country, c.Timezone, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating company", "error", err, "company_id", c.ID)
		return err
	}
	r.logger.InfoContext(ctx, "Company created", "company_id", c.ID, "account_id", c.AccountID)
	return nil
}

func (r *PgCompanyRepository) GetByID(ctx context.Context, id, accountID uuid.UUID) (*domain.Company, error) {
	query := `
		SELECT id, account_id, name, industry, country, timezone, created_at, updated_at
		FROM companies
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL
	`
	c := &domain.Company{}
	err := r.db.QueryRow(ctx, query, id, accountID).Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Industry, &c.Country, &c.Timezone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Company not found or not owned by account", "company_id", id, "account_id", accountID)
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting company by ID", "error", err, "company_id", id)
		return nil, err
	}
	return c, nil
}

func (r *PgCompanyRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*domain.Company, error) {
	query := `
		SELECT id, account_id, name, industry, country, timezone, created_at, updated_at
		FROM companies
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing companies", "error", err, "account_id", accountID)
		return nil, err
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		c := &domain.Company{}
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.Industry, &c.Country, &c.Timezone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *PgCompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	c.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE companies SET name = $1, industry = $2, country = $3, timezone = $4, updated_at = $5
		WHERE id = $6 AND account_id = $7 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, c.Name, c.Industry, c.Country, c.Timezone, c.UpdatedAt, c.ID, c.AccountID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating company", "error", err, "company_id", c.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgCompanyRepository) SoftDelete(ctx context.Context, id, accountID, deletedBy uuid.UUID) error {
	query := `
		UPDATE companies SET deleted_at = $1, deleted_by = $2, updated_at = $1
		WHERE id = $3 AND account_id = $4 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, time.Now().UTC(), deletedBy, id, accountID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting company", "error", err, "company_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
