package domain

import "errors"

var (
	// ErrNotFound indicates that a requested account, company or user was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrAccessDenied indicates the caller's account does not own the resource.
	ErrAccessDenied = errors.New("access denied")
	// ErrDuplicateEntry indicates a unique constraint violation.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrCompanyInUse is returned when deleting a company that still owns active numbers or pools.
	ErrCompanyInUse = errors.New("company still has active phone numbers")
	// ErrInvalidCredentials is returned by Login for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenInvalid is returned for malformed, expired or wrongly signed tokens.
	ErrTokenInvalid = errors.New("token is invalid or expired")
)
