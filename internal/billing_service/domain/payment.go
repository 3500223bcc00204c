package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentIntentStatus mirrors the gateway's view of a top-up.
type PaymentIntentStatus string

const (
	PaymentIntentStatusPending        PaymentIntentStatus = "pending"
	PaymentIntentStatusRequiresAction PaymentIntentStatus = "requires_action"
	PaymentIntentStatusSucceeded      PaymentIntentStatus = "succeeded"
	PaymentIntentStatusFailed         PaymentIntentStatus = "failed"
)

// PaymentIntent is a request to top up an account's balance through the gateway.
type PaymentIntent struct {
	ID                     uuid.UUID           `json:"id"`
	AccountID              uuid.UUID           `json:"account_id"`
	Amount                 decimal.Decimal     `json:"amount"`
	Currency               string              `json:"currency"`
	Status                 PaymentIntentStatus `json:"status"`
	GatewayPaymentIntentID *string             `json:"gateway_payment_intent_id,omitempty"`
	GatewayClientSecret    *string             `json:"gateway_client_secret,omitempty"`
	ErrorMessage           *string             `json:"error_message,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// IsFinal reports whether the intent can no longer change state.
func (p *PaymentIntent) IsFinal() bool {
	return p.Status == PaymentIntentStatusSucceeded || p.Status == PaymentIntentStatusFailed
}

type CreateIntentRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Description string
}

type CreateIntentResponse struct {
	GatewayPaymentIntentID string
	ClientSecret           *string
	Status                 PaymentIntentStatus
	ErrorMessage           *string
}

// PaymentGatewayEvent is a verified, parsed webhook notification.
type PaymentGatewayEvent struct {
	GatewayPaymentIntentID string
	Status                 PaymentIntentStatus
	AmountReceived         decimal.Decimal
	Currency               string
	FailureReason          string
	OccurredAt             time.Time
}

// PaymentGatewayAdapter is the outbound port to the payment processor.
type PaymentGatewayAdapter interface {
	CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error)
	HandleWebhookEvent(ctx context.Context, rawPayload []byte, signature string) (*PaymentGatewayEvent, error)
}
