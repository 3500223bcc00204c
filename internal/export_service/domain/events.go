package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubjectExportRequested = "exports.requested"
	SubjectExportCompleted = "exports.completed"
	SubjectExportFailed    = "exports.failed"
)

// ExportRequestEvent asks the worker to write one CSV file. ScheduledExportID is set when the
// request comes from a schedule rather than the API.
type ExportRequestEvent struct {
	RequestID         uuid.UUID  `json:"request_id"`
	ScheduledExportID *uuid.UUID `json:"scheduled_export_id,omitempty"`
	AccountID         uuid.UUID  `json:"account_id"`
	CompanyID         uuid.UUID  `json:"company_id"`
	Kind              ExportKind `json:"kind"`
	RequestedAt       time.Time  `json:"requested_at"`
}

// ExportCompletedEvent is published once the file is on disk.
type ExportCompletedEvent struct {
	RequestID uuid.UUID  `json:"request_id"`
	AccountID uuid.UUID  `json:"account_id"`
	CompanyID uuid.UUID  `json:"company_id"`
	Kind      ExportKind `json:"kind"`
	FilePath  string     `json:"file_path"`
	FileName  string     `json:"file_name"`
	Rows      int        `json:"rows"`
}

type ExportFailedEvent struct {
	RequestID    uuid.UUID  `json:"request_id"`
	AccountID    uuid.UUID  `json:"account_id"`
	CompanyID    uuid.UUID  `json:"company_id"`
	Kind         ExportKind `json:"kind"`
	ErrorMessage string     `json:"error_message"`
}
