package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportKind names the data set an export writes.
type ExportKind string

const (
	KindPhoneNumbers ExportKind = "phone_numbers"
	KindContacts     ExportKind = "contacts"
	KindTransactions ExportKind = "transactions"
)

func (k ExportKind) Valid() bool {
	switch k {
	case KindPhoneNumbers, KindContacts, KindTransactions:
		return true
	}
	return false
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

func (f Frequency) step(t time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// NextAfter advances from a scheduled time until it lies after now. Runs missed while the
// worker was down are skipped, not replayed.
func (f Frequency) NextAfter(scheduled, now time.Time) time.Time {
	next := f.step(scheduled)
	for !next.After(now) {
		next = f.step(next)
	}
	return next
}

type ScheduledExport struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"account_id"`
	CompanyID uuid.UUID  `json:"company_id"`
	Name      string     `json:"name"`
	Kind      ExportKind `json:"kind"`
	Frequency Frequency  `json:"frequency"`
	NextRunAt time.Time  `json:"next_run_at"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}
