package paymentgateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// webhookPayload is the body the gateway posts to /webhooks/payments.
type webhookPayload struct {
	GatewayPaymentIntentID string          `json:"gateway_payment_intent_id"`
	Status                 string          `json:"status"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
	FailureReason          string          `json:"failure_reason,omitempty"`
	OccurredAt             *time.Time      `json:"occurred_at,omitempty"`
}

// MockPaymentGatewayAdapter stands in for a card processor. Intents are accepted locally and
// webhooks are authenticated with an HMAC-SHA256 signature over the raw body.
type MockPaymentGatewayAdapter struct {
	logger                *slog.Logger
	webhookSecret         []byte
	SimulateCreateFailure bool
}

func NewMockPaymentGatewayAdapter(logger *slog.Logger, webhookSecret string) *MockPaymentGatewayAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockPaymentGatewayAdapter{
		logger:        logger.With("adapter", "mock_payment_gateway"),
		webhookSecret: []byte(webhookSecret),
	}
}

func (m *MockPaymentGatewayAdapter) CreatePaymentIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.CreateIntentResponse, error) {
	m.logger.InfoContext(ctx, "CreatePaymentIntent called", "amount", req.Amount.String(), "currency", req.Currency, "account_id", req.AccountID)

	if m.SimulateCreateFailure {
		errMsg := "mock gateway simulated CreatePaymentIntent failure"
		return &domain.CreateIntentResponse{
			GatewayPaymentIntentID: "failed_pi_" + uuid.NewString(),
			Status:                 domain.PaymentIntentStatusFailed,
			ErrorMessage:           &errMsg,
		}, errors.New(errMsg)
	}

	clientSecret := "mock_client_secret_" + uuid.NewString()
	return &domain.CreateIntentResponse{
		GatewayPaymentIntentID: "mock_pi_" + uuid.NewString(),
		ClientSecret:           &clientSecret,
		Status:                 domain.PaymentIntentStatusRequiresAction,
	}, nil
}

// Sign returns the signature header value for payload. Used by tests and by trackctl to replay events.
func (m *MockPaymentGatewayAdapter) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, m.webhookSecret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *MockPaymentGatewayAdapter) HandleWebhookEvent(ctx context.Context, rawPayload []byte, signature string) (*domain.PaymentGatewayEvent, error) {
	expected, err := hex.DecodeString(m.Sign(rawPayload))
	if err != nil {
		return nil, err
	}
	given, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(expected, given) {
		m.logger.WarnContext(ctx, "Webhook signature mismatch", "payload_len", len(rawPayload))
		return nil, domain.ErrWebhookSignature
	}

	var p webhookPayload
	if err := json.Unmarshal(rawPayload, &p); err != nil {
		return nil, fmt.Errorf("decoding webhook payload: %w", err)
	}
	if p.GatewayPaymentIntentID == "" {
		return nil, errors.New("webhook payload missing gateway_payment_intent_id")
	}

	occurredAt := time.Now().UTC()
	if p.OccurredAt != nil {
		occurredAt = *p.OccurredAt
	}
	event := &domain.PaymentGatewayEvent{
		GatewayPaymentIntentID: p.GatewayPaymentIntentID,
		Status:                 domain.PaymentIntentStatus(p.Status),
		AmountReceived:         p.Amount,
		Currency:               p.Currency,
		FailureReason:          p.FailureReason,
		OccurredAt:             occurredAt,
	}
	m.logger.InfoContext(ctx, "Webhook event verified", "gateway_payment_intent_id", event.GatewayPaymentIntentID, "status", event.Status)
	return event, nil
}
