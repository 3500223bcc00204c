package http

import (
	"log/slog"
	"net/http"

	campaignApp "github.com/calltrack/golang_services/internal/campaign_service/app"
	campaignDomain "github.com/calltrack/golang_services/internal/campaign_service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CampaignHandler struct {
	campaigns CampaignManager
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewCampaignHandler(campaigns CampaignManager, validate *validator.Validate, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, validate: validate, logger: logger.With("handler", "campaigns")}
}

// RegisterCompanyRoutes mounts routes inside /companies/{companyID}.
func (h *CampaignHandler) RegisterCompanyRoutes(r chi.Router) {
	r.Get("/campaigns", h.ListCampaigns)
	r.Post("/campaigns", h.CreateCampaign)
}

func (h *CampaignHandler) RegisterRoutes(r chi.Router) {
	r.Route("/campaigns/{id}", func(r chi.Router) {
		r.Get("/", h.GetCampaign)
		r.Put("/", h.UpdateCampaign)
		r.Delete("/", h.DeleteCampaign)
		r.Post("/clone", h.CloneCampaign)
		r.Put("/pool", h.AttachPool)
		r.Delete("/pool", h.DetachPool)
		r.Get("/phone-numbers", h.ListNumbers)
		r.Put("/phone-numbers/{numberID}", h.AttachNumber)
		r.Delete("/phone-numbers/{numberID}", h.DetachNumber)
	})
}

func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	campaigns, err := h.campaigns.List(r.Context(), company.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: campaigns})
}

func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	var req CreateCampaignRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	c, err := h.campaigns.Create(r.Context(), campaignApp.CreateCampaignInput{
		AccountID: user.AccountID,
		CompanyID: company.ID,
		Name:      req.Name,
		Type:      campaignDomain.CampaignType(req.Type),
		Enabled:   enabled,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.campaigns.Get(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateCampaignRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	in := campaignApp.UpdateCampaignInput{
		Name:     req.Name,
		Enabled:  req.Enabled,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}
	if req.Type != nil {
		t := campaignDomain.CampaignType(*req.Type)
		in.Type = &t
	}
	c, err := h.campaigns.Update(r.Context(), user.AccountID, id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.campaigns.Delete(r.Context(), user.AccountID, id, user.UserID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignHandler) CloneCampaign(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.campaigns.Clone(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *CampaignHandler) AttachPool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req AttachPoolRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	pool, err := h.campaigns.AttachPool(r.Context(), user.AccountID, id, uuid.MustParse(req.PoolID))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pool)
}

func (h *CampaignHandler) DetachPool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.campaigns.DetachPool(r.Context(), user.AccountID, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignHandler) ListNumbers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	numbers, err := h.campaigns.ListNumbers(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: numbers})
}

func (h *CampaignHandler) AttachNumber(w http.ResponseWriter, r *http.Request) {
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
	n, err := h.campaigns.AttachNumber(r.Context(), user.AccountID, id, numberID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}

func (h *CampaignHandler) DetachNumber(w http.ResponseWriter, r *http.Request) {
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
	if err := h.campaigns.DetachNumber(r.Context(), user.AccountID, id, numberID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
