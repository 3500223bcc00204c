package http

import (
	"errors"
	"log/slog"
	"net/http"

	accountDomain "github.com/calltrack/golang_services/internal/account_service/domain"
	billingDomain "github.com/calltrack/golang_services/internal/billing_service/domain"
	campaignDomain "github.com/calltrack/golang_services/internal/campaign_service/domain"
	contactDomain "github.com/calltrack/golang_services/internal/contact_service/domain"
	exportDomain "github.com/calltrack/golang_services/internal/export_service/domain"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
)

// errorRule maps a domain error to a response. An empty message surfaces err.Error(), which
// carries the detail added with fmt.Errorf("%w: ...").
type errorRule struct {
	err     error
	status  int
	message string
}

var errorRules = []errorRule{
	{err: numbersDomain.ErrIdempotencyInFlight, status: http.StatusConflict},
	{err: numbersDomain.ErrIdempotencyMismatch, status: http.StatusUnprocessableEntity},
	{err: numbersDomain.ErrPurchaseFailed, status: http.StatusInternalServerError},

	{err: accountDomain.ErrInvalidCredentials, status: http.StatusUnauthorized},
	{err: accountDomain.ErrTokenInvalid, status: http.StatusUnauthorized},

	{err: numbersDomain.ErrNotFound, status: http.StatusNotFound, message: "Resource not found"},
	{err: accountDomain.ErrNotFound, status: http.StatusNotFound, message: "Resource not found"},
	{err: accountDomain.ErrAccessDenied, status: http.StatusNotFound, message: "Resource not found"},
	{err: billingDomain.ErrNotFound, status: http.StatusNotFound, message: "Billing record not found"},
	{err: billingDomain.ErrPaymentIntentNotFound, status: http.StatusNotFound},
	{err: campaignDomain.ErrNotFound, status: http.StatusNotFound, message: "Campaign not found"},
	{err: contactDomain.ErrNotFound, status: http.StatusNotFound, message: "Resource not found"},
	{err: exportDomain.ErrNotFound, status: http.StatusNotFound, message: "Scheduled export not found"},

	{err: numbersDomain.ErrInvalidSwapRules, status: http.StatusBadRequest},
	{err: numbersDomain.ErrInUse, status: http.StatusBadRequest},
	{err: numbersDomain.ErrInvalidTransition, status: http.StatusBadRequest},
	{err: numbersDomain.ErrNotActive, status: http.StatusBadRequest},
	{err: numbersDomain.ErrInvalidNumber, status: http.StatusBadRequest},
	{err: numbersDomain.ErrKeywordPoolExists, status: http.StatusBadRequest},
	{err: numbersDomain.ErrNoNumberAvailable, status: http.StatusBadRequest},
	{err: numbersDomain.ErrInvalidQuantity, status: http.StatusBadRequest},
	{err: numbersDomain.ErrSessionKeyRequired, status: http.StatusBadRequest},
	{err: billingDomain.ErrInsufficientBalance, status: http.StatusBadRequest, message: "Insufficient balance"},
	{err: billingDomain.ErrInvalidAmount, status: http.StatusBadRequest},
	{err: billingDomain.ErrUnknownPriceClass, status: http.StatusBadRequest},
	{err: billingDomain.ErrPaymentGateway, status: http.StatusBadGateway, message: "Payment gateway unavailable"},
	{err: accountDomain.ErrDuplicateEntry, status: http.StatusBadRequest, message: "A record with these details already exists"},
	{err: accountDomain.ErrCompanyInUse, status: http.StatusBadRequest},
	{err: campaignDomain.ErrInvalidCampaign, status: http.StatusBadRequest},
	{err: campaignDomain.ErrWrongCampaignType, status: http.StatusBadRequest},
	{err: campaignDomain.ErrCampaignHasPool, status: http.StatusBadRequest},
	{err: campaignDomain.ErrAlreadyLinked, status: http.StatusBadRequest},
	{err: campaignDomain.ErrNumberInPool, status: http.StatusBadRequest},
	{err: campaignDomain.ErrCompanyMismatch, status: http.StatusBadRequest},
	{err: campaignDomain.ErrHasAttachments, status: http.StatusBadRequest},
	{err: contactDomain.ErrDuplicateEntry, status: http.StatusBadRequest, message: "A record with these details already exists"},
	{err: contactDomain.ErrInvalidContact, status: http.StatusBadRequest},
	{err: exportDomain.ErrInvalidExport, status: http.StatusBadRequest},
	{err: exportDomain.ErrNoData, status: http.StatusBadRequest},
}

// classify finds the response for a known domain error.
func classify(err error) (int, string, bool) {
	var insufficient *numbersDomain.InsufficientNumbersError
	if errors.As(err, &insufficient) {
		return http.StatusBadRequest, insufficient.Error(), true
	}
	for _, rule := range errorRules {
		if errors.Is(err, rule.err) {
			if rule.message != "" {
				return rule.status, rule.message, true
			}
			return rule.status, err.Error(), true
		}
	}
	return 0, "", false
}

// writeServiceError answers with the mapped status. Unknown errors are logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, message, ok := classify(err)
	if !ok {
		logger.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chi_middleware.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
	}
	respondWithError(w, status, message)
}
