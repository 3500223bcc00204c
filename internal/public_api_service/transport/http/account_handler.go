package http

import (
	"log/slog"
	"net/http"

	accountApp "github.com/calltrack/golang_services/internal/account_service/app"
	"github.com/calltrack/golang_services/internal/public_api_service/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	auth     Authenticator
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAuthHandler(auth Authenticator, validate *validator.Validate, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, validate: validate, logger: logger.With("handler", "auth")}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	token, expiresAt, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, LoginResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}

// AccountHandler serves the caller's account and its companies.
type AccountHandler struct {
	accounts AccountManager
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAccountHandler(accounts AccountManager, validate *validator.Validate, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, validate: validate, logger: logger.With("handler", "account")}
}

func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/account", h.GetAccount)
	r.With(middleware.RequireAdmin(h.logger)).Put("/account", h.UpdateAccount)
	r.Get("/companies", h.ListCompanies)
	r.With(middleware.RequireAdmin(h.logger)).Post("/companies", h.CreateCompany)
}

// RegisterCompanyRoutes mounts routes inside /companies/{companyID}.
func (h *AccountHandler) RegisterCompanyRoutes(r chi.Router) {
	r.Get("/", h.GetCompany)
	r.With(middleware.RequireAdmin(h.logger)).Put("/", h.UpdateCompany)
	r.With(middleware.RequireAdmin(h.logger)).Delete("/", h.DeleteCompany)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	account, err := h.accounts.GetAccount(r.Context(), user.AccountID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	account, err := h.accounts.UpdateAccount(r.Context(), user.AccountID, req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r, 20, 100)
	companies, err := h.accounts.ListCompanies(r.Context(), user.AccountID, offset, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: companies, Limit: limit, Offset: offset})
}

func (h *AccountHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CompanyRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	company, err := h.accounts.CreateCompany(r.Context(), user.AccountID, accountApp.CompanyInput{
		Name:     req.Name,
		Industry: req.Industry,
		Country:  req.Country,
		Timezone: req.Timezone,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, company)
}

func (h *AccountHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, company)
}

func (h *AccountHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	var req UpdateCompanyRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	updated, err := h.accounts.UpdateCompany(r.Context(), user.AccountID, company.ID, accountApp.CompanyInput{
		Name:     req.Name,
		Industry: req.Industry,
		Country:  req.Country,
		Timezone: req.Timezone,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *AccountHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	if err := h.accounts.DeleteCompany(r.Context(), user.AccountID, company.ID, user.UserID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
