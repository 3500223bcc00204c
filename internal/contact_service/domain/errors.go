package domain

import "errors"

var (
	// ErrNotFound indicates that a requested contact or blocked number was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateEntry indicates the number is already present for the company.
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInvalidContact = errors.New("invalid contact")
)
