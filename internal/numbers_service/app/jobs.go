package app

import "github.com/google/uuid"

// NATS subjects for release work that runs outside the request.
const (
	SubjectPoolRelease        = "numbers.pool.release"
	SubjectNumberRelease      = "numbers.number.release"
	SubjectKeywordPoolRelease = "keyword_pool.release"
)

// PoolReleaseJob asks the worker to release every member of a pending_deletion pool and then the
// pool itself. It is used for both pool kinds; the subject tells them apart.
type PoolReleaseJob struct {
	PoolID    uuid.UUID `json:"pool_id"`
	AccountID uuid.UUID `json:"account_id"`
	DeletedBy uuid.UUID `json:"deleted_by"`
}

// NumberReleaseJob retries the carrier release of a number left in pending_deletion.
type NumberReleaseJob struct {
	NumberID  uuid.UUID `json:"phone_number_id"`
	AccountID uuid.UUID `json:"account_id"`
	DeletedBy uuid.UUID `json:"deleted_by"`
}
