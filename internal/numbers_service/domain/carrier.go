package domain

import "context"

// SearchCriteria selects numbers on the carrier's live inventory.
type SearchCriteria struct {
	Country string
	Type    NumberType
	Prefix  string
	Limit   int
}

// AvailableNumber is a carrier search hit.
type AvailableNumber struct {
	E164  string
	Voice bool
	SMS   bool
	MMS   bool
}

// PurchaseRequest buys one number and points its webhooks at us.
type PurchaseRequest struct {
	E164         string
	VoiceURL     string
	SMSURL       string
	FriendlyName string
}

// PurchasedNumber is what the carrier returns after a purchase.
type PurchasedNumber struct {
	SID   string
	E164  string
	Voice bool
	SMS   bool
	MMS   bool
}

// Carrier is the telephony provider. It is injected into the provisioning services.
type Carrier interface {
	Name() string
	SearchAvailable(ctx context.Context, criteria SearchCriteria) ([]AvailableNumber, error)
	Purchase(ctx context.Context, req PurchaseRequest) (*PurchasedNumber, error)
	Release(ctx context.Context, sid string) error
}
