package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type KeywordPoolHandler struct {
	pools    KeywordPoolManager
	releaser Releaser
	idem     IdempotencyRunner
	validate *validator.Validate
	logger   *slog.Logger
}

func NewKeywordPoolHandler(pools KeywordPoolManager, releaser Releaser, idem IdempotencyRunner, validate *validator.Validate, logger *slog.Logger) *KeywordPoolHandler {
	return &KeywordPoolHandler{
		pools:    pools,
		releaser: releaser,
		idem:     idem,
		validate: validate,
		logger:   logger.With("handler", "keyword_tracking_pools"),
	}
}

// RegisterCompanyRoutes mounts routes inside /companies/{companyID}.
func (h *KeywordPoolHandler) RegisterCompanyRoutes(r chi.Router) {
	r.Get("/keyword-tracking-pools", h.ListPools)
	r.Post("/keyword-tracking-pools", h.CreatePool)
}

func (h *KeywordPoolHandler) RegisterRoutes(r chi.Router) {
	r.Route("/keyword-tracking-pools/{id}", func(r chi.Router) {
		r.Get("/", h.GetPool)
		r.Put("/", h.UpdatePool)
		r.Delete("/", h.DeletePool)
		r.Post("/numbers", h.AddNumbers)
		r.Post("/sessions", h.AssignSession)
		r.Get("/sessions", h.ListSessions)
		r.Post("/sessions/{sessionKey}/touch", h.TouchSession)
	})
}

func (h *KeywordPoolHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	pools, err := h.pools.ListKeywordPools(r.Context(), company.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: pools})
}

func (h *KeywordPoolHandler) CreatePool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	var req CreateKeywordPoolRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	in := numbersApp.CreateKeywordPoolInput{
		AccountID:       user.AccountID,
		CompanyID:       company.ID,
		Name:            req.Name,
		Size:            req.Size,
		Type:            numbersDomain.NumberType(req.Type),
		Prefix:          req.Prefix,
		Country:         req.Country,
		ForwardToNumber: req.ForwardToNumber,
		SwapRules:       req.SwapRules,
		SessionTTL:      time.Duration(req.SessionTTLMinutes) * time.Minute,
	}
	runIdempotent(w, r, h.idem, h.logger, user.AccountID, "create_keyword_pool", func() (int, any, error) {
		pool, result, err := h.pools.CreateKeywordPool(r.Context(), in)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, PoolResponse{Pool: pool, Acquisition: result}, nil
	})
}

func (h *KeywordPoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	pool, err := h.pools.GetKeywordPool(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pool)
}

func (h *KeywordPoolHandler) UpdatePool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateKeywordPoolRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	in := numbersApp.UpdateKeywordPoolInput{
		Name:            req.Name,
		ForwardToNumber: req.ForwardToNumber,
		SwapRules:       req.SwapRules,
	}
	if req.SessionTTLMinutes != nil {
		ttl := time.Duration(*req.SessionTTLMinutes) * time.Minute
		in.SessionTTL = &ttl
	}
	pool, err := h.pools.UpdateKeywordPool(r.Context(), user.AccountID, id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pool)
}

func (h *KeywordPoolHandler) DeletePool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	pool, err := h.releaser.DeleteKeywordPool(r.Context(), user.AccountID, id, user.UserID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, deleteStatus(pool.Status), pool)
}

func (h *KeywordPoolHandler) AddNumbers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req AddNumbersRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	runIdempotent(w, r, h.idem, h.logger, user.AccountID, "add_keyword_pool_numbers", func() (int, any, error) {
		result, err := h.pools.AddNumbers(r.Context(), user.AccountID, id, req.Quantity)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, result, nil
	})
}

// AssignSession hands a visitor a number. Repeat calls with the same session key are sticky.
func (h *KeywordPoolHandler) AssignSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req AssignSessionRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	assignment, err := h.pools.AssignSession(r.Context(), user.AccountID, id, numbersApp.SessionRequest{
		SessionKey: req.SessionKey,
		Visit: numbersDomain.Visit{
			LandingURL: req.LandingURL,
			Referrer:   req.Referrer,
			DeviceType: req.DeviceType,
			Browser:    req.Browser,
		},
		Source:   req.Source,
		Medium:   req.Medium,
		Campaign: req.Campaign,
		Content:  req.Content,
		Keyword:  req.Keyword,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	status := http.StatusCreated
	if assignment.Reused {
		status = http.StatusOK
	}
	respondWithJSON(w, status, assignment)
}

func (h *KeywordPoolHandler) TouchSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.pools.TouchSession(r.Context(), user.AccountID, id, chi.URLParam(r, "sessionKey")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *KeywordPoolHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	limit, _ := pagination(r, 100, 500)
	activeOnly := true
	if v, err := strconv.ParseBool(r.URL.Query().Get("active")); err == nil {
		activeOnly = v
	}
	sessions, err := h.pools.ListSessions(r.Context(), user.AccountID, id, activeOnly, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: sessions, Limit: limit})
}
