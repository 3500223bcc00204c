package domain

import "errors"

var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidExport = errors.New("invalid export")
	// ErrNoData means the export produced no rows and no file was written.
	ErrNoData = errors.New("no data to export")
)
