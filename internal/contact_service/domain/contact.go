package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a caller known to a company. A number appears at most once per company.
type Contact struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   uuid.UUID  `json:"account_id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	CountryCode string     `json:"country_code"`
	Number      string     `json:"number"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Email       string     `json:"email,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Zip         string     `json:"zip,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

func (c *Contact) E164() string {
	return "+" + c.CountryCode + c.Number
}

// BlockedPhoneNumber rejects calls from a number. A nil CompanyID blocks it for every company
// of the account.
type BlockedPhoneNumber struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   uuid.UUID  `json:"account_id"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	CountryCode string     `json:"country_code"`
	Number      string     `json:"number"`
	Name        string     `json:"name,omitempty"`
	CallCount   int        `json:"call_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

func (b *BlockedPhoneNumber) E164() string {
	return "+" + b.CountryCode + b.Number
}

// AccountWide reports whether the block applies to all companies of the account.
func (b *BlockedPhoneNumber) AccountWide() bool {
	return b.CompanyID == nil
}
