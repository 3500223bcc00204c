package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
)

const (
	MaxRequestBodySize = 1 << 20
	SignatureHeader    = "X-Payment-Signature"
)

// PaymentWebhookProcessor is the part of the billing service the webhook needs.
type PaymentWebhookProcessor interface {
	HandlePaymentWebhook(ctx context.Context, rawPayload []byte, signature string) error
}

type WebhookHandler struct {
	processor PaymentWebhookProcessor
	logger    *slog.Logger
}

func NewWebhookHandler(processor PaymentWebhookProcessor, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger.With("component", "payment_webhook_handler"),
	}
}

// HandlePaymentWebhook receives gateway notifications. It is mounted without authentication;
// the signature header is the only credential.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		http.Error(w, "Missing signature", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	rawPayload, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		logger.ErrorContext(ctx, "Failed to read webhook body", "error", err)
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}

	err = h.processor.HandlePaymentWebhook(ctx, rawPayload, signature)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Payment webhook processed", "payload_size", len(rawPayload))
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, domain.ErrWebhookSignature):
		logger.WarnContext(ctx, "Rejected payment webhook", "remote_addr", r.RemoteAddr)
		http.Error(w, "Webhook signature verification failed", http.StatusBadRequest)
	case errors.Is(err, domain.ErrPaymentIntentNotFound):
		http.Error(w, "Payment intent not found", http.StatusNotFound)
	default:
		logger.ErrorContext(ctx, "Error processing payment webhook", "error", err)
		http.Error(w, "Internal server error processing webhook", http.StatusInternalServerError)
	}
}
