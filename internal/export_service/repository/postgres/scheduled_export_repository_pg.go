package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/export_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const scheduledExportColumns = `id, account_id, company_id, name, kind, frequency, next_run_at, last_run_at, enabled,
	created_at, updated_at, deleted_at`

type PgScheduledExportRepository struct {
	logger *slog.Logger
}

func NewPgScheduledExportRepository(logger *slog.Logger) *PgScheduledExportRepository {
	return &PgScheduledExportRepository{logger: logger.With("component", "scheduled_export_repository_pg")}
}

func scanScheduledExport(row pgx.Row) (*domain.ScheduledExport, error) {
	e := &domain.ScheduledExport{}
	err := row.Scan(&e.ID, &e.AccountID, &e.CompanyID, &e.Name, &e.Kind, &e.Frequency, &e.NextRunAt, &e.LastRunAt,
		&e.Enabled, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	return e, err
}

func (r *PgScheduledExportRepository) collect(rows pgx.Rows) ([]*domain.ScheduledExport, error) {
	defer rows.Close()
	var exports []*domain.ScheduledExport
	for rows.Next() {
		e, err := scanScheduledExport(rows)
		if err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

func (r *PgScheduledExportRepository) Create(ctx context.Context, q database.Querier, e *domain.ScheduledExport) error {
	_, err := q.Exec(ctx, `INSERT INTO scheduled_exports (`+scheduledExportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.AccountID, e.CompanyID, e.Name, e.Kind, e.Frequency, e.NextRunAt, e.LastRunAt, e.Enabled,
		e.CreatedAt, e.UpdatedAt, e.DeletedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating scheduled export", "error", err, "company_id", e.CompanyID)
		return err
	}
	r.logger.InfoContext(ctx, "Scheduled export created", "scheduled_export_id", e.ID, "kind", e.Kind)
	return nil
}

func (r *PgScheduledExportRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.ScheduledExport, error) {
	e, err := scanScheduledExport(q.QueryRow(ctx, `SELECT `+scheduledExportColumns+` FROM scheduled_exports
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL`, id, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting scheduled export", "error", err, "scheduled_export_id", id)
		return nil, err
	}
	return e, nil
}

func (r *PgScheduledExportRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*domain.ScheduledExport, error) {
	rows, err := q.Query(ctx, `SELECT `+scheduledExportColumns+` FROM scheduled_exports
		WHERE company_id = $1 AND deleted_at IS NULL ORDER BY name ASC`, companyID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing scheduled exports", "error", err, "company_id", companyID)
		return nil, err
	}
	return r.collect(rows)
}

func (r *PgScheduledExportRepository) SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error {
	tag, err := q.Exec(ctx, `UPDATE scheduled_exports SET deleted_at = $1, enabled = FALSE, updated_at = $1
		WHERE id = $2 AND account_id = $3 AND deleted_at IS NULL`, time.Now().UTC(), id, accountID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting scheduled export", "error", err, "scheduled_export_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgScheduledExportRepository) AcquireDue(ctx context.Context, q database.Querier, now time.Time, limit int) ([]*domain.ScheduledExport, error) {
	rows, err := q.Query(ctx, `SELECT `+scheduledExportColumns+` FROM scheduled_exports
		WHERE enabled AND deleted_at IS NULL AND next_run_at <= $1
		ORDER BY next_run_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`, now, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error acquiring due exports", "error", err)
		return nil, err
	}
	return r.collect(rows)
}

func (r *PgScheduledExportRepository) MarkRun(ctx context.Context, q database.Querier, id uuid.UUID, ranAt, nextRunAt time.Time) error {
	tag, err := q.Exec(ctx, `UPDATE scheduled_exports SET last_run_at = $1, next_run_at = $2, updated_at = $1
		WHERE id = $3`, ranAt, nextRunAt, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error advancing scheduled export", "error", err, "scheduled_export_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
