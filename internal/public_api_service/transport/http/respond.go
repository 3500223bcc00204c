package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	accountDomain "github.com/calltrack/golang_services/internal/account_service/domain"
	"github.com/calltrack/golang_services/internal/public_api_service/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxRequestBodySize = 1 << 20

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// NewValidator returns the request validator. Field names in messages use the json tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage renders the first failed rule as a client facing sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request payload"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "e164":
		return fmt.Sprintf("%s must be an E.164 phone number", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", field)
	case "iso3166_1_alpha2":
		return fmt.Sprintf("%s must be a two letter country code", field)
	case "iso4217":
		return fmt.Sprintf("%s must be a currency code", field)
	case "timezone":
		return fmt.Sprintf("%s must be an IANA time zone", field)
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	case "uuid":
		return fmt.Sprintf("%s must be a UUID", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// decodeAndValidate reads a JSON body into dst. It writes the 400 response itself and
// reports false when the request cannot be used.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			respondWithError(w, http.StatusBadRequest, "Request body is empty")
		default:
			respondWithError(w, http.StatusBadRequest, decodeMessage(err))
		}
		return false
	}
	if err := v.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// decodeMessage keeps swap rule errors readable; they surface through UnmarshalJSON.
func decodeMessage(err error) string {
	if status, msg, ok := classify(err); ok && status == http.StatusBadRequest {
		return msg
	}
	return "Invalid request payload"
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser is only missing when a route is mounted outside the auth group.
func currentUser(w http.ResponseWriter, r *http.Request) (accountDomain.AuthenticatedUser, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	}
	return user, ok
}

func currentCompany(w http.ResponseWriter, r *http.Request) (*accountDomain.Company, bool) {
	company, ok := middleware.CompanyFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusNotFound, "Company not found")
	}
	return company, ok
}

// pagination reads limit/offset query parameters, clamping limit to [1, max].
func pagination(r *http.Request, def, max int) (limit, offset int) {
	limit, offset = def, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > max {
		limit = max
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
