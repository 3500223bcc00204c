package http

import (
	"log/slog"
	"net/http"

	contactApp "github.com/calltrack/golang_services/internal/contact_service/app"
	"github.com/calltrack/golang_services/internal/public_api_service/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ContactHandler struct {
	contacts  ContactManager
	companies middleware.CompanyLookup
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewContactHandler(contacts ContactManager, companies middleware.CompanyLookup, validate *validator.Validate, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contacts:  contacts,
		companies: companies,
		validate:  validate,
		logger:    logger.With("handler", "contacts"),
	}
}

// RegisterCompanyRoutes mounts routes inside /companies/{companyID}.
func (h *ContactHandler) RegisterCompanyRoutes(r chi.Router) {
	r.Get("/contacts", h.ListContacts)
	r.Post("/contacts", h.CreateContact)
}

func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Get("/contacts/{id}", h.GetContact)
	r.Put("/contacts/{id}", h.UpdateContact)
	r.Delete("/contacts/{id}", h.DeleteContact)

	r.Get("/blocked-phone-numbers", h.ListBlockedNumbers)
	r.Post("/blocked-phone-numbers", h.BlockNumber)
	r.Delete("/blocked-phone-numbers/{id}", h.UnblockNumber)
}

func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r, 50, 500)
	contacts, err := h.contacts.ListContacts(r.Context(), company.ID, offset, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: contacts, Limit: limit, Offset: offset})
}

func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	var req ContactRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	c, err := h.contacts.CreateContact(r.Context(), user.AccountID, company.ID, contactApp.ContactInput(req))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.contacts.GetContact(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateContactRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	c, err := h.contacts.UpdateContact(r.Context(), user.AccountID, id, contactApp.ContactInput(req))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.contacts.DeleteContact(r.Context(), user.AccountID, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedCompany checks an optional company_id against the caller's account. It returns nil for
// account-wide requests.
func (h *ContactHandler) ownedCompany(w http.ResponseWriter, r *http.Request, accountID uuid.UUID, raw string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	companyID, err := uuid.Parse(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "company_id must be a UUID")
		return nil, false
	}
	if _, err := h.companies.GetCompany(r.Context(), accountID, companyID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return nil, false
	}
	return &companyID, true
}

func (h *ContactHandler) ListBlockedNumbers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := h.ownedCompany(w, r, user.AccountID, r.URL.Query().Get("company_id"))
	if !ok {
		return
	}
	blocked, err := h.contacts.ListBlockedNumbers(r.Context(), user.AccountID, companyID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: blocked})
}

func (h *ContactHandler) BlockNumber(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req BlockNumberRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	companyID, ok := h.ownedCompany(w, r, user.AccountID, req.CompanyID)
	if !ok {
		return
	}
	blocked, err := h.contacts.BlockNumber(r.Context(), user.AccountID, contactApp.BlockNumberInput{
		CompanyID: companyID,
		Number:    req.Number,
		Name:      req.Name,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, blocked)
}

func (h *ContactHandler) UnblockNumber(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.contacts.UnblockNumber(r.Context(), user.AccountID, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
