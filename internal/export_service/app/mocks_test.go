package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/export_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockScheduledExportRepository struct {
	mock.Mock
}

func (m *MockScheduledExportRepository) many(args mock.Arguments) ([]*domain.ScheduledExport, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScheduledExport), args.Error(1)
}

func (m *MockScheduledExportRepository) Create(ctx context.Context, q database.Querier, e *domain.ScheduledExport) error {
	return m.Called(ctx, q, e).Error(0)
}

func (m *MockScheduledExportRepository) GetByID(ctx context.Context, q database.Querier, id, accountID uuid.UUID) (*domain.ScheduledExport, error) {
	args := m.Called(ctx, q, id, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduledExport), args.Error(1)
}

func (m *MockScheduledExportRepository) ListByCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]*domain.ScheduledExport, error) {
	return m.many(m.Called(ctx, q, companyID))
}

func (m *MockScheduledExportRepository) SoftDelete(ctx context.Context, q database.Querier, id, accountID uuid.UUID) error {
	return m.Called(ctx, q, id, accountID).Error(0)
}

func (m *MockScheduledExportRepository) AcquireDue(ctx context.Context, q database.Querier, now time.Time, limit int) ([]*domain.ScheduledExport, error) {
	return m.many(m.Called(ctx, q, now, limit))
}

func (m *MockScheduledExportRepository) MarkRun(ctx context.Context, q database.Querier, id uuid.UUID, ranAt, nextRunAt time.Time) error {
	return m.Called(ctx, q, id, ranAt, nextRunAt).Error(0)
}

type MockExportSource struct {
	mock.Mock
}

func (m *MockExportSource) Rows(ctx context.Context, q database.Querier, accountID, companyID uuid.UUID, kind domain.ExportKind) ([]string, [][]string, error) {
	args := m.Called(ctx, q, accountID, companyID, kind)
	var header []string
	var rows [][]string
	if args.Get(0) != nil {
		header = args.Get(0).([]string)
	}
	if args.Get(1) != nil {
		rows = args.Get(1).([][]string)
	}
	return header, rows, args.Error(2)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return m.Called(ctx, subject, data).Error(0)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportCSV(ctx context.Context, req domain.ExportRequestEvent) (string, int, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Int(1), args.Error(2)
}
