package domain

import (
	"context"
	"time"

	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

type ScheduledExportRepository interface {
	Create(ctx context.Context, q database.Querier, e *ScheduledExport) error
	GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*ScheduledExport, error)
	ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*ScheduledExport, error)
	SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error
	// AcquireDue locks up to limit enabled exports due at now. Rows locked by another worker are skipped.
	AcquireDue(ctx context.Context, q database.Querier, now time.Time, limit int) ([]*ScheduledExport, error)
	MarkRun(ctx context.Context, q database.Querier, id uuid.UUID, ranAt, nextRunAt time.Time) error
}

// ExportSource reads the rows of one data set as CSV-ready strings.
type ExportSource interface {
	Rows(ctx context.Context, q database.Querier, accountID, companyID uuid.UUID, kind ExportKind) (header []string, rows [][]string, err error)
}
