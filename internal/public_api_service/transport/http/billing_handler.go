package http

import (
	"log/slog"
	"net/http"

	"github.com/calltrack/golang_services/internal/public_api_service/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type BillingHandler struct {
	billing  BillingReader
	validate *validator.Validate
	logger   *slog.Logger
}

func NewBillingHandler(billing BillingReader, validate *validator.Validate, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{billing: billing, validate: validate, logger: logger.With("handler", "billing")}
}

func (h *BillingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/billing", h.GetBilling)
	r.Get("/billing/transactions", h.ListTransactions)
	r.With(middleware.RequireAdmin(h.logger)).Post("/billing/payment-intents", h.CreatePaymentIntent)
}

func (h *BillingHandler) GetBilling(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	billing, err := h.billing.GetBilling(r.Context(), user.AccountID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, billing)
}

func (h *BillingHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r, 50, 200)
	txns, total, err := h.billing.ListTransactions(r.Context(), user.AccountID, limit, offset)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: txns, Total: &total, Limit: limit, Offset: offset})
}

// CreatePaymentIntent starts a top-up. The balance is credited when the gateway webhook arrives.
func (h *BillingHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req PaymentIntentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}
	intent, err := h.billing.CreatePaymentIntent(r.Context(), user.AccountID, amount, req.Currency)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, intent)
}
