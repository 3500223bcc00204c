package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/calltrack/golang_services/internal/export_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database/dbtest"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPoller(t *testing.T) (*ExportPoller, pgxmock.PgxPoolIface, *MockScheduledExportRepository, *MockPublisher) {
	t.Helper()
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	schedules, publisher := new(MockScheduledExportRepository), new(MockPublisher)
	p := NewExportPoller(db, schedules, publisher, PollerConfig{BatchSize: 5}, testLogger())
	p.now = func() time.Time { return fixedNow }
	return p, db, schedules, publisher
}

func TestExportPoller_PollOnce(t *testing.T) {
	p, db, schedules, publisher := newPoller(t)
	ctx := context.Background()
	scheduledAt := fixedNow.Add(-10 * time.Minute)
	daily := &domain.ScheduledExport{ID: uuid.New(), CompanyID: uuid.New(), Kind: domain.KindContacts, Frequency: domain.FrequencyDaily, NextRunAt: scheduledAt}
	monthly := &domain.ScheduledExport{ID: uuid.New(), CompanyID: uuid.New(), Kind: domain.KindTransactions, Frequency: domain.FrequencyMonthly, NextRunAt: scheduledAt}

	db.ExpectBegin()
	schedules.On("AcquireDue", ctx, mock.Anything, fixedNow, 5).Return([]*domain.ScheduledExport{daily, monthly}, nil).Once()
	publisher.On("Publish", ctx, domain.SubjectExportRequested, mock.MatchedBy(func(b []byte) bool {
		var req domain.ExportRequestEvent
		return json.Unmarshal(b, &req) == nil && req.ScheduledExportID != nil && *req.ScheduledExportID == daily.ID
	})).Return(nil).Once()
	publisher.On("Publish", ctx, domain.SubjectExportRequested, mock.MatchedBy(func(b []byte) bool {
		var req domain.ExportRequestEvent
		return json.Unmarshal(b, &req) == nil && req.ScheduledExportID != nil && *req.ScheduledExportID == monthly.ID
	})).Return(errors.New("nats down")).Once()
	schedules.On("MarkRun", ctx, mock.Anything, daily.ID, fixedNow, scheduledAt.AddDate(0, 0, 1)).Return(nil).Once()
	dbtest.ExpectCommit(db)

	n, err := p.PollOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	schedules.AssertExpectations(t)
	schedules.AssertNotCalled(t, "MarkRun", mock.Anything, mock.Anything, monthly.ID, mock.Anything, mock.Anything)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestExportPoller_PollOnce_AcquireError(t *testing.T) {
	p, db, schedules, publisher := newPoller(t)
	ctx := context.Background()

	db.ExpectBegin()
	schedules.On("AcquireDue", ctx, mock.Anything, fixedNow, 5).Return(nil, errors.New("db gone")).Once()
	dbtest.ExpectRollback(db)

	n, err := p.PollOnce(ctx)
	assert.Error(t, err)
	assert.Zero(t, n)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, db.ExpectationsWereMet())
}
