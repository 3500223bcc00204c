package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// ReleaseConsumer runs release jobs delivered over NATS.
type ReleaseConsumer struct {
	release    *ReleaseService
	jobTimeout time.Duration
	logger     *slog.Logger
}

func NewReleaseConsumer(release *ReleaseService, logger *slog.Logger) *ReleaseConsumer {
	return &ReleaseConsumer{
		release:    release,
		jobTimeout: 5 * time.Minute,
		logger:     logger.With("component", "release_consumer"),
	}
}

// Subjects lists what the consumer handles.
func (c *ReleaseConsumer) Subjects() []string {
	return []string{SubjectPoolRelease, SubjectKeywordPoolRelease, SubjectNumberRelease}
}

// Handle decodes and runs one job.
func (c *ReleaseConsumer) Handle(ctx context.Context, subject string, data []byte) error {
	switch subject {
	case SubjectPoolRelease, SubjectKeywordPoolRelease:
		var job PoolReleaseJob
		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("decoding %s job: %w", subject, err)
		}
		if subject == SubjectPoolRelease {
			return c.release.ProcessPoolRelease(ctx, job)
		}
		return c.release.ProcessKeywordPoolRelease(ctx, job)
	case SubjectNumberRelease:
		var job NumberReleaseJob
		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("decoding %s job: %w", subject, err)
		}
		return c.release.ProcessNumberRelease(ctx, job)
	default:
		return fmt.Errorf("unexpected subject %q", subject)
	}
}

// MsgHandler adapts Handle to a NATS subscription. Each job gets its own timeout.
func (c *ReleaseConsumer) MsgHandler() nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), c.jobTimeout)
		defer cancel()

		releaseJobsCounter.WithLabelValues(msg.Subject).Inc()
		c.logger.InfoContext(ctx, "Received release job", "subject", msg.Subject, "data_len", len(msg.Data))
		if err := c.Handle(ctx, msg.Subject, msg.Data); err != nil {
			c.logger.ErrorContext(ctx, "Release job failed; entity stays pending deletion", "subject", msg.Subject, "error", err)
		}
	}
}
