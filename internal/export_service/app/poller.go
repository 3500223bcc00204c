package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/export_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/calltrack/golang_services/internal/platform/messagebroker"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PollerConfig struct {
	PollingInterval time.Duration
	BatchSize       int
}

// ExportPoller turns due scheduled exports into export requests and moves each schedule to its
// next run.
type ExportPoller struct {
	db        database.DB
	schedules domain.ScheduledExportRepository
	publisher messagebroker.Publisher
	config    PollerConfig
	now       func() time.Time
	logger    *slog.Logger
}

func NewExportPoller(db database.DB, schedules domain.ScheduledExportRepository, publisher messagebroker.Publisher, cfg PollerConfig, logger *slog.Logger) *ExportPoller {
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &ExportPoller{
		db:        db,
		schedules: schedules,
		publisher: publisher,
		config:    cfg,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With("component", "export_poller"),
	}
}

// PollOnce dispatches one batch and returns how many requests were published. A schedule whose
// request could not be published keeps its next_run_at and is retried on the next poll.
func (p *ExportPoller) PollOnce(ctx context.Context) (int, error) {
	now := p.now()
	dispatched := 0
	err := pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		due, err := p.schedules.AcquireDue(ctx, tx, now, p.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to acquire due exports: %w", err)
		}
		for _, e := range due {
			id := e.ID
			req := domain.ExportRequestEvent{
				RequestID:         uuid.New(),
				ScheduledExportID: &id,
				AccountID:         e.AccountID,
				CompanyID:         e.CompanyID,
				Kind:              e.Kind,
				RequestedAt:       now,
			}
			if err := messagebroker.PublishJSON(ctx, p.publisher, domain.SubjectExportRequested, req); err != nil {
				scheduledExportsDispatched.WithLabelValues("publish_error").Inc()
				p.logger.ErrorContext(ctx, "Failed to publish scheduled export", "scheduled_export_id", e.ID, "error", err)
				continue
			}
			if err := p.schedules.MarkRun(ctx, tx, e.ID, now, e.Frequency.NextAfter(e.NextRunAt, now)); err != nil {
				return err
			}
			scheduledExportsDispatched.WithLabelValues("success").Inc()
			dispatched++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if dispatched > 0 {
		p.logger.InfoContext(ctx, "Dispatched scheduled exports", "count", dispatched)
	}
	return dispatched, nil
}

// Run polls until ctx is cancelled.
func (p *ExportPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.config.PollingInterval)
	defer ticker.Stop()
	p.logger.InfoContext(ctx, "Export poller started", "interval", p.config.PollingInterval, "batch_size", p.config.BatchSize)
	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "Export poller stopping")
			return nil
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				p.logger.ErrorContext(ctx, "Export poll failed", "error", err)
			}
		}
	}
}
