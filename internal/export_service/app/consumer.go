package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/calltrack/golang_services/internal/export_service/domain"
	"github.com/calltrack/golang_services/internal/platform/messagebroker"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
)

// CSVExporter writes one export file.
type CSVExporter interface {
	ExportCSV(ctx context.Context, req domain.ExportRequestEvent) (filePath string, rows int, err error)
}

// ExportConsumer handles export requests delivered over NATS and reports the outcome on the
// completed and failed subjects.
type ExportConsumer struct {
	exporter   CSVExporter
	publisher  messagebroker.Publisher
	jobTimeout time.Duration
	logger     *slog.Logger
}

func NewExportConsumer(exporter CSVExporter, publisher messagebroker.Publisher, logger *slog.Logger) *ExportConsumer {
	return &ExportConsumer{
		exporter:   exporter,
		publisher:  publisher,
		jobTimeout: 5 * time.Minute,
		logger:     logger.With("component", "export_consumer"),
	}
}

// Handle runs one export request. Only a malformed payload is returned as an error; export
// failures are published as events.
func (c *ExportConsumer) Handle(ctx context.Context, subject string, data []byte) error {
	exportRequestsReceived.WithLabelValues(subject).Inc()

	var req domain.ExportRequestEvent
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding %s request: %w", subject, err)
	}
	log := c.logger.With("request_id", req.RequestID, "company_id", req.CompanyID, "kind", req.Kind)

	timer := prometheus.NewTimer(exportJobProcessingDurationHist.WithLabelValues(string(req.Kind)))
	filePath, rows, err := c.exporter.ExportCSV(ctx, req)
	timer.ObserveDuration()

	if err != nil {
		status := "error"
		if errors.Is(err, domain.ErrNoData) {
			status = "no_data"
		}
		exportJobsProcessedCounter.WithLabelValues(string(req.Kind), status).Inc()
		log.ErrorContext(ctx, "Export failed", "error", err)

		failed := domain.ExportFailedEvent{
			RequestID:    req.RequestID,
			AccountID:    req.AccountID,
			CompanyID:    req.CompanyID,
			Kind:         req.Kind,
			ErrorMessage: err.Error(),
		}
		// Fresh context: the job context may be what just expired.
		if pubErr := messagebroker.PublishJSON(context.Background(), c.publisher, domain.SubjectExportFailed, failed); pubErr != nil {
			log.ErrorContext(ctx, "Failed to publish export failed event", "error", pubErr)
		}
		return nil
	}

	exportJobsProcessedCounter.WithLabelValues(string(req.Kind), "success").Inc()
	completed := domain.ExportCompletedEvent{
		RequestID: req.RequestID,
		AccountID: req.AccountID,
		CompanyID: req.CompanyID,
		Kind:      req.Kind,
		FilePath:  filePath,
		FileName:  filepath.Base(filePath),
		Rows:      rows,
	}
	if pubErr := messagebroker.PublishJSON(context.Background(), c.publisher, domain.SubjectExportCompleted, completed); pubErr != nil {
		log.ErrorContext(ctx, "Failed to publish export completed event", "error", pubErr)
	}
	return nil
}

// MsgHandler adapts Handle to a NATS subscription.
func (c *ExportConsumer) MsgHandler() nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), c.jobTimeout)
		defer cancel()

		c.logger.InfoContext(ctx, "Received export request on NATS", "subject", msg.Subject, "data_len", len(msg.Data))
		if err := c.Handle(ctx, msg.Subject, msg.Data); err != nil {
			c.logger.ErrorContext(ctx, "Dropping export request", "subject", msg.Subject, "error", err)
		}
	}
}
