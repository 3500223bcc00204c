package paymentgateway

import (
	"context"
	"testing"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockPaymentGatewayAdapter_HandleWebhookEvent(t *testing.T) {
	adapter := NewMockPaymentGatewayAdapter(nil, "whsec")
	ctx := context.Background()
	payload := []byte(`{"gateway_payment_intent_id":"mock_pi_1","status":"succeeded","amount":"25.00","currency":"USD"}`)

	t.Run("valid signature", func(t *testing.T) {
		event, err := adapter.HandleWebhookEvent(ctx, payload, adapter.Sign(payload))
		require.NoError(t, err)
		assert.Equal(t, "mock_pi_1", event.GatewayPaymentIntentID)
		assert.Equal(t, domain.PaymentIntentStatusSucceeded, event.Status)
		assert.True(t, event.AmountReceived.Equal(decimal.NewFromInt(25)))
	})

	t.Run("tampered payload", func(t *testing.T) {
		sig := adapter.Sign(payload)
		tampered := []byte(`{"gateway_payment_intent_id":"mock_pi_1","status":"succeeded","amount":"2500.00","currency":"USD"}`)
		_, err := adapter.HandleWebhookEvent(ctx, tampered, sig)
		assert.ErrorIs(t, err, domain.ErrWebhookSignature)
	})

	t.Run("garbage signature", func(t *testing.T) {
		_, err := adapter.HandleWebhookEvent(ctx, payload, "zz-not-hex")
		assert.ErrorIs(t, err, domain.ErrWebhookSignature)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewMockPaymentGatewayAdapter(nil, "different")
		_, err := adapter.HandleWebhookEvent(ctx, payload, other.Sign(payload))
		assert.ErrorIs(t, err, domain.ErrWebhookSignature)
	})
}

func TestMockPaymentGatewayAdapter_CreatePaymentIntent(t *testing.T) {
	adapter := NewMockPaymentGatewayAdapter(nil, "whsec")
	resp, err := adapter.CreatePaymentIntent(context.Background(), domain.CreateIntentRequest{
		AccountID: uuid.New(), Amount: decimal.NewFromInt(10), Currency: "USD",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.GatewayPaymentIntentID, "mock_pi_")
	assert.Equal(t, domain.PaymentIntentStatusRequiresAction, resp.Status)

	adapter.SimulateCreateFailure = true
	resp, err = adapter.CreatePaymentIntent(context.Background(), domain.CreateIntentRequest{Amount: decimal.NewFromInt(10)})
	require.Error(t, err)
	assert.Equal(t, domain.PaymentIntentStatusFailed, resp.Status)
}
