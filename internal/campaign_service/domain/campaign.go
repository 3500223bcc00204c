package domain

import (
	"time"

	"github.com/google/uuid"
)

type CampaignType string

const (
	CampaignTypeWeb        CampaignType = "web"
	CampaignTypePrint      CampaignType = "print"
	CampaignTypeRadio      CampaignType = "radio"
	CampaignTypeTV         CampaignType = "tv"
	CampaignTypeBillboard  CampaignType = "billboard"
	CampaignTypeDirectMail CampaignType = "direct_mail"
	CampaignTypeOther      CampaignType = "other"
)

func (t CampaignType) Valid() bool {
	switch t {
	case CampaignTypeWeb, CampaignTypePrint, CampaignTypeRadio, CampaignTypeTV,
		CampaignTypeBillboard, CampaignTypeDirectMail, CampaignTypeOther:
		return true
	}
	return false
}

// UsesPool reports whether the campaign is tracked through a rotating pool. Offline campaigns
// use single numbers instead.
func (t CampaignType) UsesPool() bool { return t == CampaignTypeWeb }

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

type Campaign struct {
	ID        uuid.UUID    `json:"id"`
	AccountID uuid.UUID    `json:"account_id"`
	CompanyID uuid.UUID    `json:"company_id"`
	Name      string       `json:"name"`
	Type      CampaignType `json:"type"`
	Enabled   bool         `json:"enabled"`
	StartsAt  *time.Time   `json:"starts_at,omitempty"`
	EndsAt    *time.Time   `json:"ends_at,omitempty"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	DeletedAt *time.Time   `json:"-"`
	DeletedBy *uuid.UUID   `json:"-"`
}

// Running reports whether the campaign is enabled and inside its schedule at t.
func (c *Campaign) Running(t time.Time) bool {
	if !c.Enabled || c.Status != StatusActive {
		return false
	}
	if c.StartsAt != nil && t.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && !t.Before(*c.EndsAt) {
		return false
	}
	return true
}
