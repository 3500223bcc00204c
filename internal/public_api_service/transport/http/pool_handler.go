package http

import (
	"log/slog"
	"net/http"

	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type PoolHandler struct {
	pools    PoolManager
	releaser Releaser
	idem     IdempotencyRunner
	validate *validator.Validate
	logger   *slog.Logger
}

func NewPoolHandler(pools PoolManager, releaser Releaser, idem IdempotencyRunner, validate *validator.Validate, logger *slog.Logger) *PoolHandler {
	return &PoolHandler{
		pools:    pools,
		releaser: releaser,
		idem:     idem,
		validate: validate,
		logger:   logger.With("handler", "phone_number_pools"),
	}
}

// RegisterCompanyRoutes mounts routes inside /companies/{companyID}.
func (h *PoolHandler) RegisterCompanyRoutes(r chi.Router) {
	r.Get("/phone-number-pools", h.ListPools)
	r.Post("/phone-number-pools", h.CreatePool)
}

func (h *PoolHandler) RegisterRoutes(r chi.Router) {
	r.Route("/phone-number-pools/{id}", func(r chi.Router) {
		r.Get("/", h.GetPool)
		r.Put("/", h.UpdatePool)
		r.Delete("/", h.DeletePool)
		r.Get("/numbers", h.ListPoolNumbers)
		r.Post("/numbers", h.AddNumbers)
		r.Delete("/numbers/{numberID}", h.DetachNumber)
	})
}

func (h *PoolHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	pools, err := h.pools.ListPools(r.Context(), company.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: pools})
}

// CreatePool is all-or-nothing: a short acquisition fails the request and nothing is kept.
func (h *PoolHandler) CreatePool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	var req CreatePoolRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	in := numbersApp.CreatePoolInput{
		AccountID:       user.AccountID,
		CompanyID:       company.ID,
		Name:            req.Name,
		Size:            req.Size,
		Type:            numbersDomain.NumberType(req.Type),
		Prefix:          req.Prefix,
		Country:         req.Country,
		ForwardToNumber: req.ForwardToNumber,
		SwapRules:       req.SwapRules,
		Attribution:     req.Attribution,
	}
	runIdempotent(w, r, h.idem, h.logger, user.AccountID, "create_pool", func() (int, any, error) {
		pool, result, err := h.pools.CreatePool(r.Context(), in)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, PoolResponse{Pool: pool, Acquisition: result}, nil
	})
}

func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	pool, err := h.pools.GetPool(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pool)
}

func (h *PoolHandler) UpdatePool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdatePoolRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	pool, err := h.pools.UpdatePool(r.Context(), user.AccountID, id, numbersApp.UpdatePoolInput{
		Name:            req.Name,
		ForwardToNumber: req.ForwardToNumber,
		SwapRules:       req.SwapRules,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pool)
}

func (h *PoolHandler) DeletePool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	pool, err := h.releaser.DeletePool(r.Context(), user.AccountID, id, user.UserID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, deleteStatus(pool.Status), pool)
}

func (h *PoolHandler) ListPoolNumbers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	numbers, err := h.pools.ListPoolNumbers(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: numbers})
}

// AddNumbers grows a pool best-effort: whatever was obtained is kept and the shortfall reported.
func (h *PoolHandler) AddNumbers(w http.ResponseWriter, r *http.Request) {
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
	runIdempotent(w, r, h.idem, h.logger, user.AccountID, "add_pool_numbers", func() (int, any, error) {
		result, err := h.pools.AddNumbersToPool(r.Context(), user.AccountID, id, req.Quantity)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, result, nil
	})
}

func (h *PoolHandler) DetachNumber(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	numberID, ok := uuidParam(w, r, "numberID")
	if !ok {
		return
	}
	n, err := h.pools.DetachNumber(r.Context(), user.AccountID, id, numberID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}
