package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

// Account is the tenant root. Companies, numbers and billing all hang off an account.
type Account struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	DeletedAt *time.Time    `json:"-"`
}

// NewAccount creates an active account.
func NewAccount(id uuid.UUID, name string) *Account {
	now := time.Now().UTC()
	return &Account{ID: id, Name: name, Status: AccountStatusActive, CreatedAt: now, UpdatedAt: now}
}

// Company is a business unit inside an account; numbers and campaigns are company scoped.
type Company struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"account_id"`
	Name      string     `json:"name"`
	Industry  string     `json:"industry,omitempty"`
	Country   string     `json:"country"`
	Timezone  string     `json:"timezone"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
	DeletedBy *uuid.UUID `json:"-"`
}

// NewCompany creates a company with country/timezone defaults applied.
func NewCompany(id, accountID uuid.UUID, name, industry, country, timezone string) *Company {
	if country == "" {
		country = "US"
	}
	if timezone == "" {
		timezone = "UTC"
	}
	now := time.Now().UTC()
	return &Company{
		ID:        id,
		AccountID: accountID,
		Name:      name,
		Industry:  industry,
		Country:   country,
		Timezone:  timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Role of a user inside its account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is a login belonging to exactly one account.
type User struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthenticatedUser is the identity carried in request contexts after token validation.
type AuthenticatedUser struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
	Email     string
	Role      Role
}

// IsAdmin reports whether the user may perform account-level administration.
func (u AuthenticatedUser) IsAdmin() bool { return u.Role == RoleAdmin }
