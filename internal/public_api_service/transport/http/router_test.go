package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountDomain "github.com/calltrack/golang_services/internal/account_service/domain"
	campaignApp "github.com/calltrack/golang_services/internal/campaign_service/app"
	campaignDomain "github.com/calltrack/golang_services/internal/campaign_service/domain"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	httptransport "github.com/calltrack/golang_services/internal/public_api_service/transport/http"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	auth := new(MockAuthenticator)
	expires := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	auth.On("Login", mock.Anything, "owner@example.com", "s3cret").Return("signed.jwt.token", expires, nil)
	auth.On("Login", mock.Anything, "owner@example.com", "wrong").Return("", time.Time{}, accountDomain.ErrInvalidCredentials)

	srv := newServer(httptransport.Handlers{Auth: httptransport.NewAuthHandler(auth, httptransport.NewValidator(), discardLogger())})

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/login", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		return rr
	}

	rr := login(`{"email":"owner@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp httptransport.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.True(t, expires.Equal(resp.ExpiresAt))

	rr = login(`{"email":"owner@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = login(`{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "email must be a valid email address", errorMessage(t, rr))
}

func TestRouter_RequiresToken(t *testing.T) {
	srv := newServer(httptransport.Handlers{
		Campaigns: httptransport.NewCampaignHandler(new(MockCampaignManager), httptransport.NewValidator(), discardLogger()),
	})

	req := httptest.NewRequest(http.MethodGet, companyPath("/campaigns"), nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, companyPath("/campaigns"), nil)
	req.Header.Set("Authorization", "Bearer someone-else")
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_HealthAndWebhook(t *testing.T) {
	called := false
	srv := newServer(httptransport.Handlers{
		PaymentWebhook: func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// No Authorization header: the webhook authenticates by signature.
	req = httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewBufferString(`{}`))
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
}

func TestCampaignBindingErrors(t *testing.T) {
	campaignID, poolID, numberID := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name       string
		setup      func(m *MockCampaignManager)
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name: "pool attach to web campaign",
			setup: func(m *MockCampaignManager) {
				m.On("AttachPool", mock.Anything, testUser.AccountID, campaignID, poolID).
					Return(&numbersDomain.PhoneNumberPool{ID: poolID, CampaignID: &campaignID, SwapRules: numbersDomain.DefaultSwapRules()}, nil)
			},
			method:     http.MethodPut,
			path:       "/v1/campaigns/" + campaignID.String() + "/pool",
			body:       map[string]string{"phone_number_pool_id": poolID.String()},
			wantStatus: http.StatusOK,
		},
		{
			name: "campaign already has a pool",
			setup: func(m *MockCampaignManager) {
				m.On("AttachPool", mock.Anything, testUser.AccountID, campaignID, poolID).Return(nil, campaignDomain.ErrCampaignHasPool)
			},
			method:     http.MethodPut,
			path:       "/v1/campaigns/" + campaignID.String() + "/pool",
			body:       map[string]string{"phone_number_pool_id": poolID.String()},
			wantStatus: http.StatusBadRequest,
			wantError:  campaignDomain.ErrCampaignHasPool.Error(),
		},
		{
			name:       "pool id must be a uuid",
			method:     http.MethodPut,
			path:       "/v1/campaigns/" + campaignID.String() + "/pool",
			body:       map[string]string{"phone_number_pool_id": "pool-1"},
			wantStatus: http.StatusBadRequest,
			wantError:  "phone_number_pool_id must be a UUID",
		},
		{
			name: "pool member cannot be attached directly",
			setup: func(m *MockCampaignManager) {
				m.On("AttachNumber", mock.Anything, testUser.AccountID, campaignID, numberID).Return(nil, campaignDomain.ErrNumberInPool)
			},
			method:     http.MethodPut,
			path:       "/v1/campaigns/" + campaignID.String() + "/phone-numbers/" + numberID.String(),
			wantStatus: http.StatusBadRequest,
			wantError:  campaignDomain.ErrNumberInPool.Error(),
		},
		{
			name: "delete refused while attached",
			setup: func(m *MockCampaignManager) {
				m.On("Delete", mock.Anything, testUser.AccountID, campaignID, testUser.UserID).Return(campaignDomain.ErrHasAttachments)
			},
			method:     http.MethodDelete,
			path:       "/v1/campaigns/" + campaignID.String(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "delete unknown campaign",
			setup: func(m *MockCampaignManager) {
				m.On("Delete", mock.Anything, testUser.AccountID, campaignID, testUser.UserID).Return(campaignDomain.ErrNotFound)
			},
			method:     http.MethodDelete,
			path:       "/v1/campaigns/" + campaignID.String(),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			campaigns := new(MockCampaignManager)
			if tt.setup != nil {
				tt.setup(campaigns)
			}
			srv := newServer(httptransport.Handlers{
				Campaigns: httptransport.NewCampaignHandler(campaigns, httptransport.NewValidator(), discardLogger()),
			})

			rr := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, rr))
			}
			campaigns.AssertExpectations(t)
		})
	}
}

func TestCreateCampaign_DefaultsToEnabled(t *testing.T) {
	campaigns := new(MockCampaignManager)
	campaigns.On("Create", mock.Anything, mock.MatchedBy(func(in campaignApp.CreateCampaignInput) bool {
		return in.Enabled && in.Type == campaignDomain.CampaignTypeRadio &&
			in.CompanyID == testCompany.ID && in.AccountID == testUser.AccountID
	})).Return(&campaignDomain.Campaign{ID: uuid.New(), Name: "Spring radio", Enabled: true}, nil)

	srv := newServer(httptransport.Handlers{
		Campaigns: httptransport.NewCampaignHandler(campaigns, httptransport.NewValidator(), discardLogger()),
	})
	rr := do(t, srv, http.MethodPost, companyPath("/campaigns"), map[string]any{"name": "Spring radio", "type": "radio"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	campaigns.AssertExpectations(t)

	rr = do(t, srv, http.MethodPost, companyPath("/campaigns"), map[string]any{"name": "Spring radio", "type": "podcast"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "type must be one of [web print radio tv billboard direct_mail other]", errorMessage(t, rr))
}
