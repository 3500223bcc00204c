package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

const defaultIdempotencyPendingTimeout = 10 * time.Minute

// IdempotencyService makes provisioning requests safe to retry. The first request with a key runs;
// later ones get the stored response. A key left pending longer than pendingTimeout belongs to a
// request that died and may be reused.
type IdempotencyService struct {
	db             database.Querier
	repo           domain.IdempotencyRepository
	pendingTimeout time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

func NewIdempotencyService(db database.Querier, repo domain.IdempotencyRepository, pendingTimeout time.Duration, logger *slog.Logger) *IdempotencyService {
	if pendingTimeout <= 0 {
		pendingTimeout = defaultIdempotencyPendingTimeout
	}
	return &IdempotencyService{
		db:             db,
		repo:           repo,
		pendingTimeout: pendingTimeout,
		now:            func() time.Time { return time.Now().UTC() },
		logger:         logger.With("component", "idempotency"),
	}
}

// Outcome is a response that can be replayed.
type Outcome struct {
	StatusCode int
	Body       []byte
	Replayed   bool
}

// Do runs fn unless key was already used by this account. A failed fn frees the key again so the
// client can retry with it.
func (s *IdempotencyService) Do(ctx context.Context, accountID uuid.UUID, key, operation string, fn func() (int, any, error)) (*Outcome, error) {
	rec, created, err := s.repo.Reserve(ctx, s.db, accountID, key, operation, s.now().Add(-s.pendingTimeout))
	if err != nil {
		return nil, fmt.Errorf("reserving idempotency key: %w", err)
	}
	if !created {
		switch {
		case rec.Operation != operation:
			return nil, domain.ErrIdempotencyMismatch
		case rec.Status != domain.IdempotencyCompleted:
			return nil, domain.ErrIdempotencyInFlight
		}
		s.logger.InfoContext(ctx, "Replaying stored response", "account_id", accountID, "operation", operation)
		return &Outcome{StatusCode: rec.ResponseCode, Body: rec.ResponseBody, Replayed: true}, nil
	}

	code, v, err := fn()
	if err != nil {
		s.release(ctx, accountID, key)
		return nil, err
	}
	body, err := json.Marshal(v)
	if err != nil {
		s.release(ctx, accountID, key)
		return nil, fmt.Errorf("encoding idempotent response: %w", err)
	}
	if err := s.repo.Complete(ctx, s.db, accountID, key, code, body); err != nil {
		// The work is done; only the replay record is missing.
		s.logger.ErrorContext(ctx, "Failed to store idempotent response", "error", err, "account_id", accountID)
	}
	return &Outcome{StatusCode: code, Body: body}, nil
}

func (s *IdempotencyService) release(ctx context.Context, accountID uuid.UUID, key string) {
	if err := s.repo.Delete(ctx, s.db, accountID, key); err != nil {
		s.logger.ErrorContext(ctx, "Failed to free idempotency key", "error", err, "account_id", accountID)
	}
}
