package domain

import "errors"

var (
	ErrNotFound = errors.New("campaign not found")
	// ErrInvalidCampaign covers missing names and unknown campaign types.
	ErrInvalidCampaign = errors.New("invalid campaign")
	// ErrWrongCampaignType is returned when a pool is attached to a non-web campaign or a single
	// number to a web campaign.
	ErrWrongCampaignType = errors.New("binding not allowed for this campaign type")
	// ErrCampaignHasPool is returned when a web campaign already has a pool.
	ErrCampaignHasPool = errors.New("campaign already has a phone number pool")
	// ErrAlreadyLinked is returned when the pool or number is bound to another campaign.
	ErrAlreadyLinked = errors.New("already linked to another campaign")
	// ErrNumberInPool is returned when a pool member is attached directly.
	ErrNumberInPool = errors.New("phone number belongs to a pool")
	// ErrCompanyMismatch is returned when binding a pool or number of another company.
	ErrCompanyMismatch = errors.New("campaign and resource belong to different companies")
	// ErrHasAttachments is returned when deleting or retyping a campaign that still has bindings.
	ErrHasAttachments = errors.New("campaign still has phone numbers attached")
)
