package domain

import (
	"time"

	"github.com/google/uuid"
)

type IdempotencyStatus string

const (
	IdempotencyPending   IdempotencyStatus = "pending"
	IdempotencyCompleted IdempotencyStatus = "completed"
)

// IdempotencyRecord remembers the outcome of a provisioning request keyed by the client's Idempotency-Key.
type IdempotencyRecord struct {
	AccountID    uuid.UUID
	Key          string
	Operation    string
	Status       IdempotencyStatus
	ResponseCode int
	ResponseBody []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
