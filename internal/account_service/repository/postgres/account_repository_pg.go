package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/calltrack/golang_services/internal/account_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgAccountRepository implements domain.AccountRepository.
type PgAccountRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgAccountRepository(db database.Querier, logger *slog.Logger) *PgAccountRepository {
	return &PgAccountRepository{db: db, logger: logger}
}

func (r *PgAccountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, name, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, a.ID, a.Name, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating account", "error", err, "account_id", a.ID)
		return err
	}
	return nil
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, name, status, created_at, updated_at FROM accounts WHERE id = $1 AND deleted_at IS NULL`
	a := &domain.Account{}
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting account", "error", err, "account_id", id)
		return nil, err
	}
	return a, nil
}

func (r *PgAccountRepository) Update(ctx context.Context, a *domain.Account) error {
	a.UpdatedAt = time.Now().UTC()
	query := `UPDATE accounts SET name = $1, status = $2, updated_at = $3 WHERE id = $4 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, a.Name, a.Status, a.UpdatedAt, a.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating account", "error", err, "account_id", a.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PgUserRepository implements domain.UserRepository.
type PgUserRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgUserRepository(db database.Querier, logger *slog.Logger) *PgUserRepository {
	return &PgUserRepository{db: db, logger: logger}
}

func (r *PgUserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, account_id, email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, u.ID, u.AccountID, strings.ToLower(u.Email), u.PasswordHash,
		u.FirstName, u.LastName, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "uq_users_email") {
			return domain.ErrDuplicateEntry
		}
		r.logger.ErrorContext(ctx, "Error creating user", "error", err, "user_id", u.ID)
		return err
	}
	return nil
}

const userColumns = `id, account_id, email, password_hash, first_name, last_name, role, created_at, updated_at`

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL`
	return r.scanOne(ctx, query, email)
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return r.scanOne(ctx, query, id)
}

func (r *PgUserRepository) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.AccountID, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting user", "error", err)
		return nil, err
	}
	return u, nil
}
