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

const contactColumns = `id, account_id, company_id, country_code, number, first_name, last_name, email, city,
	state, zip, created_at, updated_at, deleted_at`

type PgContactRepository struct {
	logger *slog.Logger
}

func NewPgContactRepository(logger *slog.Logger) *PgContactRepository {
	return &PgContactRepository{logger: logger}
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := row.Scan(&c.ID, &c.AccountID, &c.CompanyID, &c.CountryCode, &c.Number, &c.FirstName, &c.LastName,
		&c.Email, &c.City, &c.State, &c.Zip, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	return c, err
}

func (r *PgContactRepository) Create(ctx context.Context, q database.Querier, c *domain.Contact) error {
	query := `INSERT INTO contacts (` + contactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := q.Exec(ctx, query, c.ID, c.AccountID, c.CompanyID, c.CountryCode, c.Number, c.FirstName,
		c.LastName, c.Email, c.City, c.State, c.Zip, c.CreatedAt, c.UpdatedAt, c.DeletedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "uq_contacts_company_number") {
			r.logger.WarnContext(ctx, "Duplicate contact number in company", "company_id", c.CompanyID)
			return domain.ErrDuplicateEntry
		}
		r.logger.ErrorContext(ctx, "Error creating contact", "error", err, "company_id", c.CompanyID)
		return err
	}
	return nil
}

func (r *PgContactRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.Contact, error) {
	c, err := scanContact(q.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL`, id, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting contact by ID", "error", err, "contact_id", id)
		return nil, err
	}
	return c, nil
}

func (r *PgContactRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID, offset, limit int) ([]*domain.Contact, error) {
	rows, err := q.Query(ctx, `SELECT `+contactColumns+` FROM contacts
		WHERE company_id = $1 AND deleted_at IS NULL
		ORDER BY last_name ASC, first_name ASC, number ASC
		LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing contacts", "error", err, "company_id", companyID)
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Error scanning contact row", "error", err, "company_id", companyID)
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *PgContactRepository) Update(ctx context.Context, q database.Querier, c *domain.Contact) error {
	c.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `UPDATE contacts SET country_code = $1, number = $2, first_name = $3, last_name = $4,
		email = $5, city = $6, state = $7, zip = $8, updated_at = $9
		WHERE id = $10 AND account_id = $11 AND deleted_at IS NULL`,
		c.CountryCode, c.Number, c.FirstName, c.LastName, c.Email, c.City, c.State, c.Zip, c.UpdatedAt,
		c.ID, c.AccountID)
	if err != nil {
		if database.IsUniqueViolation(err, "uq_contacts_company_number") {
			return domain.ErrDuplicateEntry
		}
		r.logger.ErrorContext(ctx, "Error updating contact", "error", err, "contact_id", c.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgContactRepository) SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error {
	tag, err := q.Exec(ctx, `UPDATE contacts SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND account_id = $3 AND deleted_at IS NULL`, time.Now().UTC(), id, accountID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting contact", "error", err, "contact_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
