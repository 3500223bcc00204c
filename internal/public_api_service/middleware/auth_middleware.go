package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	accountDomain "github.com/calltrack/golang_services/internal/account_service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	AuthenticatedUserContextKey = ContextKey("authenticatedUser")
	CompanyContextKey           = ContextKey("company")
)

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*accountDomain.AuthenticatedUser, error)
}

// CompanyLookup resolves a company inside the caller's account.
type CompanyLookup interface {
	GetCompany(ctx context.Context, accountID, companyID uuid.UUID) (*accountDomain.Company, error)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header and stores the
// authenticated user in the request context.
func AuthMiddleware(validator TokenValidator, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			user, err := validator.ValidateToken(r.Context(), strings.TrimSpace(tokenString))
			if err != nil {
				logger.WarnContext(r.Context(), "Token validation failed", "error", err)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AuthenticatedUserContextKey, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by AuthMiddleware.
func UserFromContext(ctx context.Context) (accountDomain.AuthenticatedUser, bool) {
	user, ok := ctx.Value(AuthenticatedUserContextKey).(accountDomain.AuthenticatedUser)
	return user, ok
}

// CompanyFromContext returns the company resolved by CompanyOwnership.
func CompanyFromContext(ctx context.Context) (*accountDomain.Company, bool) {
	company, ok := ctx.Value(CompanyContextKey).(*accountDomain.Company)
	return company, ok
}

// CompanyOwnership resolves the {companyID} URL parameter against the caller's account.
// A company owned by another account is reported as missing.
func CompanyOwnership(companies CompanyLookup, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				logger.ErrorContext(r.Context(), "AuthenticatedUser not found in context. AuthMiddleware must run first.")
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid company ID")
				return
			}

			company, err := companies.GetCompany(r.Context(), user.AccountID, companyID)
			if err != nil {
				if errors.Is(err, accountDomain.ErrNotFound) || errors.Is(err, accountDomain.ErrAccessDenied) {
					writeError(w, http.StatusNotFound, "Company not found")
					return
				}
				logger.ErrorContext(r.Context(), "Failed to resolve company", "error", err, "company_id", companyID)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), CompanyContextKey, company)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				logger.ErrorContext(r.Context(), "AuthenticatedUser not found in context. AuthMiddleware must run first.")
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !user.IsAdmin() {
				logger.WarnContext(r.Context(), "Permission denied", "user_id", user.UserID, "role", user.Role)
				writeError(w, http.StatusForbidden, "Forbidden: this action requires the admin role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
