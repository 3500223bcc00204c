package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/calltrack/golang_services/internal/export_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/calltrack/golang_services/internal/platform/messagebroker"
	"github.com/google/uuid"
)

const defaultExportDir = "/tmp/calltrack_exports"

type CreateScheduledExportInput struct {
	AccountID uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Kind      domain.ExportKind
	Frequency domain.Frequency
	// FirstRunAt defaults to one period from now.
	FirstRunAt *time.Time
}

// ExportService manages scheduled exports and writes export files.
type ExportService struct {
	db        database.Querier
	schedules domain.ScheduledExportRepository
	source    domain.ExportSource
	publisher messagebroker.Publisher
	exportDir string
	now       func() time.Time
	logger    *slog.Logger
}

// NewExportService wires the service. With a nil publisher ad-hoc requests are exported inline.
func NewExportService(db database.Querier, schedules domain.ScheduledExportRepository, source domain.ExportSource, publisher messagebroker.Publisher, exportDir string, logger *slog.Logger) *ExportService {
	logger = logger.With("service", "exports")
	if exportDir == "" {
		exportDir = defaultExportDir
		logger.Warn("Export path not configured, using default", "path", exportDir)
	}
	return &ExportService{
		db:        db,
		schedules: schedules,
		source:    source,
		publisher: publisher,
		exportDir: exportDir,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

func (s *ExportService) CreateScheduledExport(ctx context.Context, in CreateScheduledExportInput) (*domain.ScheduledExport, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidExport)
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidExport, in.Kind)
	}
	if !in.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", domain.ErrInvalidExport, in.Frequency)
	}
	now := s.now()
	next := in.Frequency.NextAfter(now, now)
	if in.FirstRunAt != nil {
		if !in.FirstRunAt.After(now) {
			return nil, fmt.Errorf("%w: first run must be in the future", domain.ErrInvalidExport)
		}
		next = in.FirstRunAt.UTC()
	}
	e := &domain.ScheduledExport{
		ID:        uuid.New(),
		AccountID: in.AccountID,
		CompanyID: in.CompanyID,
		Name:      name,
		Kind:      in.Kind,
		Frequency: in.Frequency,
		NextRunAt: next,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.schedules.Create(ctx, s.db, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExportService) GetScheduledExport(ctx context.Context, accountID, id uuid.UUID) (*domain.ScheduledExport, error) {
	return s.schedules.GetByID(ctx, s.db, id, accountID)
}

func (s *ExportService) ListScheduledExports(ctx context.Context, companyID uuid.UUID) ([]*domain.ScheduledExport, error) {
	return s.schedules.ListByCompany(ctx, s.db, companyID)
}

func (s *ExportService) DeleteScheduledExport(ctx context.Context, accountID, id uuid.UUID) error {
	return s.schedules.SoftDelete(ctx, s.db, id, accountID)
}

// RequestExport queues a one-off export for the worker.
func (s *ExportService) RequestExport(ctx context.Context, accountID, companyID uuid.UUID, kind domain.ExportKind) (*domain.ExportRequestEvent, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidExport, kind)
	}
	req := domain.ExportRequestEvent{
		RequestID:   uuid.New(),
		AccountID:   accountID,
		CompanyID:   companyID,
		Kind:        kind,
		RequestedAt: s.now(),
	}
	if s.publisher == nil {
		if _, _, err := s.ExportCSV(ctx, req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if err := messagebroker.PublishJSON(ctx, s.publisher, domain.SubjectExportRequested, req); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Export requested", "request_id", req.RequestID, "company_id", companyID, "kind", kind)
	return &req, nil
}

// ExportCSV writes the requested data set to a new file under the export directory and returns its
// path and row count. An empty data set writes nothing and returns domain.ErrNoData.
func (s *ExportService) ExportCSV(ctx context.Context, req domain.ExportRequestEvent) (filePath string, rows int, err error) {
	log := s.logger.With("request_id", req.RequestID, "company_id", req.CompanyID, "kind", req.Kind)
	log.InfoContext(ctx, "Starting CSV export")

	header, records, err := s.source.Rows(ctx, s.db, req.AccountID, req.CompanyID, req.Kind)
	if err != nil {
		return "", 0, fmt.Errorf("fetching rows for export failed: %w", err)
	}
	if len(records) == 0 {
		return "", 0, domain.ErrNoData
	}

	if err := os.MkdirAll(s.exportDir, 0o750); err != nil {
		return "", 0, fmt.Errorf("could not create export directory: %w", err)
	}
	fileName := fmt.Sprintf("%s_%s_%s.csv", req.Kind, req.CompanyID, s.now().Format("20060102T150405Z"))
	fullPath := filepath.Join(s.exportDir, fileName)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("creating CSV file failed: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing CSV file failed: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(fullPath)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return "", 0, fmt.Errorf("writing CSV header failed: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return "", 0, fmt.Errorf("csv writer error: %w", err)
	}

	exportedRowsCounter.WithLabelValues(string(req.Kind)).Add(float64(len(records)))
	log.InfoContext(ctx, "Exported CSV", "file_path", fullPath, "num_records", len(records))
	return fullPath, len(records), nil
}
