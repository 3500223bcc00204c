package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotency-Replayed"
	maxIdempotencyKeyLength   = 255
)

// runIdempotent executes fn once per Idempotency-Key. Without the header fn runs directly.
// A replayed request receives the stored status and body byte for byte.
func runIdempotent(w http.ResponseWriter, r *http.Request, runner IdempotencyRunner, logger *slog.Logger, accountID uuid.UUID, operation string, fn func() (int, any, error)) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" || runner == nil {
		code, body, err := fn()
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondWithJSON(w, code, body)
		return
	}
	if len(key) > maxIdempotencyKeyLength {
		respondWithError(w, http.StatusBadRequest, "Idempotency-Key must be at most 255 characters")
		return
	}

	outcome, err := runner.Do(r.Context(), accountID, key, operation, fn)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	if outcome.Replayed {
		w.Header().Set(IdempotencyReplayedHeader, "true")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(outcome.StatusCode)
	if _, err := w.Write(outcome.Body); err != nil {
		logger.WarnContext(r.Context(), "Failed to write idempotent response", "error", err)
	}
}
