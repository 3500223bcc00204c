package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attribution holds the marketing tags recorded against calls to a number.
type Attribution struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Source      string `json:"source"`
	Medium      string `json:"medium"`
	Campaign    string `json:"campaign"`
	Content     string `json:"content"`
}

// PhoneNumber is a number leased by a company.
type PhoneNumber struct {
	ID              uuid.UUID    `json:"id"`
	AccountID       uuid.UUID    `json:"account_id"`
	CompanyID       uuid.UUID    `json:"company_id"`
	PoolID          *uuid.UUID   `json:"phone_number_pool_id,omitempty"`
	KeywordPoolID   *uuid.UUID   `json:"keyword_tracking_pool_id,omitempty"`
	CampaignID      *uuid.UUID   `json:"campaign_id,omitempty"`
	CarrierSID      string       `json:"-"`
	CountryCode     string       `json:"country_code"`
	Number          string       `json:"number"`
	Type            NumberType   `json:"type"`
	Voice           bool         `json:"voice"`
	SMS             bool         `json:"sms"`
	MMS             bool         `json:"mms"`
	Name            string       `json:"name"`
	Attribution     Attribution  `json:"attribution"`
	ForwardToNumber string       `json:"forward_to_number,omitempty"`
	SwapRules       *SwapRules   `json:"swap_rules,omitempty"`
	Status          EntityStatus `json:"status"`
	PurchasedAt     time.Time    `json:"purchased_at"`
	DisabledAt      *time.Time   `json:"disabled_at,omitempty"`
	LastAssignedAt  *time.Time   `json:"-"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	DeletedAt       *time.Time   `json:"-"`
	DeletedBy       *uuid.UUID   `json:"-"`
}

// E164 returns the number in +<country><national> form.
func (p *PhoneNumber) E164() string {
	return "+" + p.CountryCode + p.Number
}

// IsPoolMember reports whether the number belongs to a regular or keyword pool.
func (p *PhoneNumber) IsPoolMember() bool {
	return p.PoolID != nil || p.KeywordPoolID != nil
}

// BankedPhoneNumber is a released number held for reuse by other accounts.
type BankedPhoneNumber struct {
	ID                  uuid.UUID  `json:"id"`
	ReleasedByAccountID uuid.UUID  `json:"released_by_account_id"`
	CarrierSID          string     `json:"carrier_sid"`
	CountryCode         string     `json:"country_code"`
	Number              string     `json:"number"`
	Country             string     `json:"country"`
	Type                NumberType `json:"type"`
	Voice               bool       `json:"voice"`
	SMS                 bool       `json:"sms"`
	MMS                 bool       `json:"mms"`
	ReleasedAt          time.Time  `json:"released_at"`
}

func (b *BankedPhoneNumber) E164() string {
	return "+" + b.CountryCode + b.Number
}

const nationalNumberLength = 10

// SplitE164 splits a carrier number into country code and national number. The last ten digits
// are the national number and whatever precedes them is the country code.
func SplitE164(e164 string) (countryCode, number string, err error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, e164)
	if len(digits) <= nationalNumberLength {
		return "", "", fmt.Errorf("%w: %q has no country code", ErrInvalidNumber, e164)
	}
	cut := len(digits) - nationalNumberLength
	return digits[:cut], digits[cut:], nil
}

// NumberFilter narrows ListNumbers.
type NumberFilter struct {
	PoolID     *uuid.UUID
	CampaignID *uuid.UUID
	Type       NumberType
	OrphanOnly bool
	Limit      int
	Offset     int
}
