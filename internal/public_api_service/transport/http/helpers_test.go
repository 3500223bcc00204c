package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	accountDomain "github.com/calltrack/golang_services/internal/account_service/domain"
	httptransport "github.com/calltrack/golang_services/internal/public_api_service/transport/http"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

var (
	testUser = accountDomain.AuthenticatedUser{
		UserID:    uuid.MustParse("0b1e8f0e-7f34-4a5e-9d8e-2d0c3b5f4a11"),
		AccountID: uuid.MustParse("5c2d9a41-1b7e-4c3a-8f6d-9e0a1b2c3d44"),
		Email:     "owner@example.com",
		Role:      accountDomain.RoleAdmin,
	}
	testCompany = &accountDomain.Company{
		ID:        uuid.MustParse("9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c66"),
		AccountID: uuid.MustParse("5c2d9a41-1b7e-4c3a-8f6d-9e0a1b2c3d44"),
		Name:      "Acme Plumbing",
		Country:   "US",
		Timezone:  "UTC",
	}
)

// stubTokens accepts testToken only.
type stubTokens struct{}

func (stubTokens) ValidateToken(_ context.Context, token string) (*accountDomain.AuthenticatedUser, error) {
	if token != testToken {
		return nil, accountDomain.ErrTokenInvalid
	}
	u := testUser
	return &u, nil
}

// stubCompanies knows testCompany only, and only for its own account.
type stubCompanies struct{}

func (stubCompanies) GetCompany(_ context.Context, accountID, companyID uuid.UUID) (*accountDomain.Company, error) {
	if companyID != testCompany.ID || accountID != testCompany.AccountID {
		return nil, accountDomain.ErrNotFound
	}
	c := *testCompany
	return &c, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(h httptransport.Handlers) http.Handler {
	return httptransport.NewRouter(h, stubTokens{}, stubCompanies{}, discardLogger())
}

// do sends an authenticated request; body may be nil, a string or any JSON-encodable value.
func do(t *testing.T, srv http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httptransport.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Error
}

func companyPath(suffix string) string {
	return "/v1/companies/" + testCompany.ID.String() + suffix
}
