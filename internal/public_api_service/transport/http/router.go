package http

import (
	"log/slog"
	"net/http"

	"github.com/calltrack/golang_services/internal/public_api_service/middleware"
	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the resource handlers. Nil handlers are not mounted.
type Handlers struct {
	Auth           *AuthHandler
	Account        *AccountHandler
	Billing        *BillingHandler
	Numbers        *NumberHandler
	Pools          *PoolHandler
	KeywordPools   *KeywordPoolHandler
	Campaigns      *CampaignHandler
	Contacts       *ContactHandler
	Exports        *ExportHandler
	// PaymentWebhook is mounted outside /v1 without authentication.
	PaymentWebhook http.HandlerFunc
}

type companyRoutes interface {
	RegisterCompanyRoutes(r chi.Router)
}

type accountRoutes interface {
	RegisterRoutes(r chi.Router)
}

func (h Handlers) scoped() (account []accountRoutes, company []companyRoutes) {
	if h.Account != nil {
		account, company = append(account, h.Account), append(company, h.Account)
	}
	if h.Billing != nil {
		account = append(account, h.Billing)
	}
	if h.Numbers != nil {
		account, company = append(account, h.Numbers), append(company, h.Numbers)
	}
	if h.Pools != nil {
		account, company = append(account, h.Pools), append(company, h.Pools)
	}
	if h.KeywordPools != nil {
		account, company = append(account, h.KeywordPools), append(company, h.KeywordPools)
	}
	if h.Campaigns != nil {
		account, company = append(account, h.Campaigns), append(company, h.Campaigns)
	}
	if h.Contacts != nil {
		account, company = append(account, h.Contacts), append(company, h.Contacts)
	}
	if h.Exports != nil {
		account, company = append(account, h.Exports), append(company, h.Exports)
	}
	return account, company
}

// NewRouter builds the public API. Everything under /v1 except /v1/login requires a bearer
// token; routes under /v1/companies/{companyID} also require the company to belong to the
// caller's account.
func NewRouter(h Handlers, tokens middleware.TokenValidator, companies middleware.CompanyLookup, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chi_middleware.RequestID)
	r.Use(chi_middleware.RealIP)
	r.Use(AccessLogMiddleware(logger))
	r.Use(PrometheusMetricsMiddleware)
	r.Use(chi_middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.PaymentWebhook != nil {
		r.Post("/webhooks/payments", h.PaymentWebhook)
	}

	accountScoped, companyScoped := h.scoped()
	r.Route("/v1", func(r chi.Router) {
		if h.Auth != nil {
			r.Post("/login", h.Auth.Login)
		}
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(tokens, logger))
			for _, routes := range accountScoped {
				routes.RegisterRoutes(r)
			}
			r.Route("/companies/{companyID}", func(r chi.Router) {
				r.Use(middleware.CompanyOwnership(companies, logger))
				for _, routes := range companyScoped {
					routes.RegisterCompanyRoutes(r)
				}
			})
		})
	})
	return r
}
