package http

import (
	"time"

	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps collections. Total is set only where the service counts.
type ListResponse struct {
	Data   interface{} `json:"data"`
	Total  *int        `json:"total,omitempty"`
	Limit  int         `json:"limit,omitempty"`
	Offset int         `json:"offset,omitempty"`
}

// --- Auth and account ---

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UpdateAccountRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CompanyRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Industry string `json:"industry" validate:"max=100"`
	Country  string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

type UpdateCompanyRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Industry string `json:"industry" validate:"max=100"`
	Country  string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

// --- Billing ---

// PaymentIntentRequest carries the amount as a decimal string to avoid float rounding.
type PaymentIntentRequest struct {
	Amount   string `json:"amount" validate:"required,numeric"`
	Currency string `json:"currency" validate:"omitempty,iso4217"`
}

// --- Numbers and pools ---

type PurchaseNumbersRequest struct {
	Quantity        int                       `json:"quantity" validate:"required,min=1,max=100"`
	Type            string                    `json:"type" validate:"required,oneof=local toll_free"`
	Prefix          string                    `json:"prefix" validate:"omitempty,numeric,max=6"`
	Country         string                    `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Name            string                    `json:"name" validate:"max=100"`
	Attribution     numbersDomain.Attribution `json:"attribution"`
	ForwardToNumber string                    `json:"forward_to_number" validate:"omitempty,e164"`
	SwapRules       *numbersDomain.SwapRules  `json:"swap_rules"`
}

type UpdateNumberRequest struct {
	Name            *string                    `json:"name" validate:"omitempty,max=100"`
	Attribution     *numbersDomain.Attribution `json:"attribution"`
	ForwardToNumber *string                    `json:"forward_to_number" validate:"omitempty,e164"`
	SwapRules       *numbersDomain.SwapRules   `json:"swap_rules"`
	Disabled        *bool                      `json:"disabled"`
}

type CreatePoolRequest struct {
	Name            string                    `json:"name" validate:"required,max=100"`
	Size            int                       `json:"size" validate:"required,min=1,max=100"`
	Type            string                    `json:"type" validate:"required,oneof=local toll_free"`
	Prefix          string                    `json:"prefix" validate:"omitempty,numeric,max=6"`
	Country         string                    `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	ForwardToNumber string                    `json:"forward_to_number" validate:"required,e164"`
	SwapRules       *numbersDomain.SwapRules  `json:"swap_rules"`
	Attribution     numbersDomain.Attribution `json:"attribution"`
}

type UpdatePoolRequest struct {
	Name            *string                  `json:"name" validate:"omitempty,max=100"`
	ForwardToNumber *string                  `json:"forward_to_number" validate:"omitempty,e164"`
	SwapRules       *numbersDomain.SwapRules `json:"swap_rules"`
}

type AddNumbersRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=100"`
}

// PoolResponse is returned when a pool is created with its acquisition outcome.
type PoolResponse struct {
	Pool        interface{} `json:"pool"`
	Acquisition interface{} `json:"acquisition"`
}

type CreateKeywordPoolRequest struct {
	Name              string                   `json:"name" validate:"required,max=100"`
	Size              int                      `json:"size" validate:"required,min=1,max=100"`
	Type              string                   `json:"type" validate:"required,oneof=local toll_free"`
	Prefix            string                   `json:"prefix" validate:"omitempty,numeric,max=6"`
	Country           string                   `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	ForwardToNumber   string                   `json:"forward_to_number" validate:"required,e164"`
	SwapRules         *numbersDomain.SwapRules `json:"swap_rules"`
	SessionTTLMinutes int                      `json:"session_ttl_minutes" validate:"omitempty,min=5,max=1440"`
}

type UpdateKeywordPoolRequest struct {
	Name              *string                  `json:"name" validate:"omitempty,max=100"`
	ForwardToNumber   *string                  `json:"forward_to_number" validate:"omitempty,e164"`
	SwapRules         *numbersDomain.SwapRules `json:"swap_rules"`
	SessionTTLMinutes *int                     `json:"session_ttl_minutes" validate:"omitempty,min=5,max=1440"`
}

type AssignSessionRequest struct {
	SessionKey string `json:"session_key" validate:"required,max=255"`
	LandingURL string `json:"landing_url" validate:"omitempty,url"`
	Referrer   string `json:"referrer" validate:"max=2048"`
	DeviceType string `json:"device_type" validate:"omitempty,oneof=desktop mobile tablet"`
	Browser    string `json:"browser" validate:"max=50"`
	Source     string `json:"source" validate:"max=255"`
	Medium     string `json:"medium" validate:"max=255"`
	Campaign   string `json:"campaign" validate:"max=255"`
	Content    string `json:"content" validate:"max=255"`
	Keyword    string `json:"keyword" validate:"max=255"`
}

// --- Campaigns ---

type CreateCampaignRequest struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Type     string     `json:"type" validate:"required,oneof=web print radio tv billboard direct_mail other"`
	Enabled  *bool      `json:"enabled"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type UpdateCampaignRequest struct {
	Name     *string    `json:"name" validate:"omitempty,max=100"`
	Type     *string    `json:"type" validate:"omitempty,oneof=web print radio tv billboard direct_mail other"`
	Enabled  *bool      `json:"enabled"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type AttachPoolRequest struct {
	PoolID string `json:"phone_number_pool_id" validate:"required,uuid"`
}

// --- Contacts and blocked numbers ---

type ContactRequest struct {
	Number    string `json:"number" validate:"required,e164"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	Zip       string `json:"zip" validate:"max=20"`
}

type UpdateContactRequest struct {
	Number    string `json:"number" validate:"omitempty,e164"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	Zip       string `json:"zip" validate:"max=20"`
}

type BlockNumberRequest struct {
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
	Number    string `json:"number" validate:"required,e164"`
	Name      string `json:"name" validate:"max=100"`
}

// --- Exports ---

type ScheduledExportRequest struct {
	Name       string     `json:"name" validate:"required,max=100"`
	Kind       string     `json:"kind" validate:"required,oneof=phone_numbers contacts transactions"`
	Frequency  string     `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	FirstRunAt *time.Time `json:"first_run_at"`
}

type ExportRequest struct {
	Kind string `json:"kind" validate:"required,oneof=phone_numbers contacts transactions"`
}
