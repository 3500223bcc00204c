package http

import (
	"log/slog"
	"net/http"

	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// deleteStatus is 202 while carrier release is still pending.
func deleteStatus(status numbersDomain.EntityStatus) int {
	if status == numbersDomain.StatusPendingDeletion {
		return http.StatusAccepted
	}
	return http.StatusOK
}

type NumberHandler struct {
	numbers  NumberManager
	releaser Releaser
	idem     IdempotencyRunner
	validate *validator.Validate
	logger   *slog.Logger
}

func NewNumberHandler(numbers NumberManager, releaser Releaser, idem IdempotencyRunner, validate *validator.Validate, logger *slog.Logger) *NumberHandler {
	return &NumberHandler{
		numbers:  numbers,
		releaser: releaser,
		idem:     idem,
		validate: validate,
		logger:   logger.With("handler", "phone_numbers"),
	}
}

// RegisterCompanyRoutes mounts routes inside /companies/{companyID}.
func (h *NumberHandler) RegisterCompanyRoutes(r chi.Router) {
	r.Get("/phone-numbers", h.ListNumbers)
	r.Post("/phone-numbers", h.PurchaseNumbers)
}

func (h *NumberHandler) RegisterRoutes(r chi.Router) {
	r.Get("/phone-numbers/{id}", h.GetNumber)
	r.Put("/phone-numbers/{id}", h.UpdateNumber)
	r.Delete("/phone-numbers/{id}", h.DeleteNumber)
}

func (h *NumberHandler) ListNumbers(w http.ResponseWriter, r *http.Request) {
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r, 50, 200)
	filter := numbersDomain.NumberFilter{Limit: limit, Offset: offset}
	switch t := numbersDomain.NumberType(r.URL.Query().Get("type")); t {
	case "":
	case numbersDomain.NumberTypeLocal, numbersDomain.NumberTypeTollFree:
		filter.Type = t
	default:
		respondWithError(w, http.StatusBadRequest, "type must be one of [local toll_free]")
		return
	}
	filter.OrphanOnly = r.URL.Query().Get("orphan") == "true"

	numbers, err := h.numbers.ListNumbers(r.Context(), company.ID, filter)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: numbers, Limit: limit, Offset: offset})
}

// PurchaseNumbers acquires numbers for the company, bank first. Honors Idempotency-Key.
func (h *NumberHandler) PurchaseNumbers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	var req PurchaseNumbersRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	in := numbersApp.PurchaseInput{
		AccountID:       user.AccountID,
		CompanyID:       company.ID,
		Quantity:        req.Quantity,
		Type:            numbersDomain.NumberType(req.Type),
		Prefix:          req.Prefix,
		Country:         req.Country,
		Name:            req.Name,
		Attribution:     req.Attribution,
		ForwardToNumber: req.ForwardToNumber,
		SwapRules:       req.SwapRules,
	}
	runIdempotent(w, r, h.idem, h.logger, user.AccountID, "purchase_numbers", func() (int, any, error) {
		result, err := h.numbers.PurchaseNumbers(r.Context(), in)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, result, nil
	})
}

func (h *NumberHandler) GetNumber(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	n, err := h.numbers.GetNumber(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}

func (h *NumberHandler) UpdateNumber(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateNumberRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	n, err := h.numbers.UpdateNumber(r.Context(), user.AccountID, id, numbersApp.UpdateNumberInput{
		Name:            req.Name,
		Attribution:     req.Attribution,
		ForwardToNumber: req.ForwardToNumber,
		SwapRules:       req.SwapRules,
		Disabled:        req.Disabled,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}

func (h *NumberHandler) DeleteNumber(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	n, err := h.releaser.DeleteNumber(r.Context(), user.AccountID, id, user.UserID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, deleteStatus(n.Status), n)
}
