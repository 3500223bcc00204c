package domain

import (
	"time"

	"github.com/google/uuid"
)

// PhoneNumberPool is a sized group of numbers sharing swap rules and forwarding.
type PhoneNumberPool struct {
	ID              uuid.UUID    `json:"id"`
	AccountID       uuid.UUID    `json:"account_id"`
	CompanyID       uuid.UUID    `json:"company_id"`
	CampaignID      *uuid.UUID   `json:"campaign_id,omitempty"`
	Name            string       `json:"name"`
	Size            int          `json:"size"`
	Type            NumberType   `json:"type"`
	Prefix          string       `json:"prefix,omitempty"`
	Country         string       `json:"country"`
	ForwardToNumber string       `json:"forward_to_number"`
	SwapRules       SwapRules    `json:"swap_rules"`
	Status          EntityStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	DeletedAt       *time.Time   `json:"-"`
	DeletedBy       *uuid.UUID   `json:"-"`
}

// KeywordTrackingPool rotates its numbers across website sessions.
type KeywordTrackingPool struct {
	ID              uuid.UUID     `json:"id"`
	AccountID       uuid.UUID     `json:"account_id"`
	CompanyID       uuid.UUID     `json:"company_id"`
	Name            string        `json:"name"`
	Size            int           `json:"size"`
	Type            NumberType    `json:"type"`
	Prefix          string        `json:"prefix,omitempty"`
	Country         string        `json:"country"`
	ForwardToNumber string        `json:"forward_to_number"`
	SwapRules       SwapRules     `json:"swap_rules"`
	SessionTTL      time.Duration `json:"-"`
	Status          EntityStatus  `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	DeletedAt       *time.Time    `json:"-"`
	DeletedBy       *uuid.UUID    `json:"-"`
}

// KeywordSession binds one visitor session to one pool number until it expires.
type KeywordSession struct {
	ID             uuid.UUID `json:"id"`
	PoolID         uuid.UUID `json:"keyword_tracking_pool_id"`
	PhoneNumberID  uuid.UUID `json:"phone_number_id"`
	SessionKey     string    `json:"session_key"`
	Source         string    `json:"source"`
	Medium         string    `json:"medium"`
	Campaign       string    `json:"campaign"`
	Content        string    `json:"content"`
	Keyword        string    `json:"keyword"`
	LandingURL     string    `json:"landing_url"`
	Referrer       string    `json:"referrer"`
	NumberFormat   string    `json:"number_format"`
	AssignedAt     time.Time `json:"assigned_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}
