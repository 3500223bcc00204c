package http

import (
	"log/slog"
	"net/http"

	exportApp "github.com/calltrack/golang_services/internal/export_service/app"
	exportDomain "github.com/calltrack/golang_services/internal/export_service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type ExportHandler struct {
	exports  ExportManager
	validate *validator.Validate
	logger   *slog.Logger
}

func NewExportHandler(exports ExportManager, validate *validator.Validate, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{exports: exports, validate: validate, logger: logger.With("handler", "exports")}
}

// RegisterCompanyRoutes mounts routes inside /companies/{companyID}.
func (h *ExportHandler) RegisterCompanyRoutes(r chi.Router) {
	r.Get("/scheduled-exports", h.ListScheduledExports)
	r.Post("/scheduled-exports", h.CreateScheduledExport)
	r.Post("/exports", h.RequestExport)
}

func (h *ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/scheduled-exports/{id}", h.GetScheduledExport)
	r.Delete("/scheduled-exports/{id}", h.DeleteScheduledExport)
}

func (h *ExportHandler) ListScheduledExports(w http.ResponseWriter, r *http.Request) {
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	exports, err := h.exports.ListScheduledExports(r.Context(), company.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: exports})
}

func (h *ExportHandler) CreateScheduledExport(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	var req ScheduledExportRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	se, err := h.exports.CreateScheduledExport(r.Context(), exportApp.CreateScheduledExportInput{
		AccountID:  user.AccountID,
		CompanyID:  company.ID,
		Name:       req.Name,
		Kind:       exportDomain.ExportKind(req.Kind),
		Frequency:  exportDomain.Frequency(req.Frequency),
		FirstRunAt: req.FirstRunAt,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, se)
}

func (h *ExportHandler) GetScheduledExport(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	se, err := h.exports.GetScheduledExport(r.Context(), user.AccountID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, se)
}

func (h *ExportHandler) DeleteScheduledExport(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.exports.DeleteScheduledExport(r.Context(), user.AccountID, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestExport queues a one-off export; completion is announced on the message bus.
func (h *ExportHandler) RequestExport(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	company, ok := currentCompany(w, r)
	if !ok {
		return
	}
	var req ExportRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	event, err := h.exports.RequestExport(r.Context(), user.AccountID, company.ID, exportDomain.ExportKind(req.Kind))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, event)
}
