package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	httptransport "github.com/calltrack/golang_services/internal/public_api_service/transport/http"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPoolServer(pools *MockPoolManager, releaser *MockReleaser) http.Handler {
	return newServer(httptransport.Handlers{
		Pools: httptransport.NewPoolHandler(pools, releaser, nil, httptransport.NewValidator(), discardLogger()),
	})
}

func TestCreatePool(t *testing.T) {
	body := map[string]any{
		"name":              "Paid search",
		"size":              3,
		"type":              "local",
		"forward_to_number": "+14155550100",
	}

	t.Run("returns pool and acquisition", func(t *testing.T) {
		pools := new(MockPoolManager)
		pool := &numbersDomain.PhoneNumberPool{ID: uuid.New(), Name: "Paid search", Size: 3, SwapRules: numbersDomain.DefaultSwapRules(), Status: numbersDomain.StatusActive}
		pools.On("CreatePool", mock.Anything, mock.MatchedBy(func(in numbersApp.CreatePoolInput) bool {
			return in.Size == 3 && in.CompanyID == testCompany.ID && in.SwapRules == nil
		})).Return(pool, &numbersApp.AcquireResult{Requested: 3, FromBank: 3}, nil)

		rr := do(t, newPoolServer(pools, new(MockReleaser)), http.MethodPost, companyPath("/phone-number-pools"), body)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var got struct {
			Pool        map[string]any           `json:"pool"`
			Acquisition numbersApp.AcquireResult `json:"acquisition"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, pool.ID.String(), got.Pool["id"])
		assert.Equal(t, 3, got.Acquisition.FromBank)
	})

	t.Run("shortfall fails the whole request", func(t *testing.T) {
		pools := new(MockPoolManager)
		pools.On("CreatePool", mock.Anything, mock.Anything).
			Return(nil, nil, &numbersDomain.InsufficientNumbersError{Requested: 3, Available: 1})

		rr := do(t, newPoolServer(pools, new(MockReleaser)), http.MethodPost, companyPath("/phone-number-pools"), body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, errorMessage(t, rr), "requested 3, available 1")
	})

	t.Run("forwarding number is required", func(t *testing.T) {
		rr := do(t, newPoolServer(new(MockPoolManager), new(MockReleaser)), http.MethodPost, companyPath("/phone-number-pools"),
			map[string]any{"name": "x", "size": 1, "type": "local"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "forward_to_number is required", errorMessage(t, rr))
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := do(t, newPoolServer(new(MockPoolManager), new(MockReleaser)), http.MethodPost, companyPath("/phone-number-pools"), `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request payload", errorMessage(t, rr))
	})
}

func TestAddNumbersToPool_ReportsShortfall(t *testing.T) {
	pools := new(MockPoolManager)
	poolID := uuid.New()
	pools.On("AddNumbersToPool", mock.Anything, testUser.AccountID, poolID, 4).
		Return(&numbersApp.AcquireResult{Requested: 4, Purchased: 2, Shortfall: 2, Warning: "only 2 of 4 numbers could be acquired"}, nil)

	rr := do(t, newPoolServer(pools, new(MockReleaser)), http.MethodPost, "/v1/phone-number-pools/"+poolID.String()+"/numbers", map[string]any{"quantity": 4})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got numbersApp.AcquireResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Shortfall)
	assert.NotEmpty(t, got.Warning)
}

func TestDeletePool_Queued(t *testing.T) {
	releaser := new(MockReleaser)
	poolID := uuid.New()
	releaser.On("DeletePool", mock.Anything, testUser.AccountID, poolID, testUser.UserID).
		Return(&numbersDomain.PhoneNumberPool{ID: poolID, Status: numbersDomain.StatusPendingDeletion, SwapRules: numbersDomain.DefaultSwapRules()}, nil)

	rr := do(t, newPoolServer(new(MockPoolManager), releaser), http.MethodDelete, "/v1/phone-number-pools/"+poolID.String(), nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestDetachPoolNumber(t *testing.T) {
	pools := new(MockPoolManager)
	poolID, numberID := uuid.New(), uuid.New()
	pools.On("DetachNumber", mock.Anything, testUser.AccountID, poolID, numberID).
		Return(&numbersDomain.PhoneNumber{ID: numberID}, nil)

	rr := do(t, newPoolServer(pools, new(MockReleaser)), http.MethodDelete,
		"/v1/phone-number-pools/"+poolID.String()+"/numbers/"+numberID.String(), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, newPoolServer(pools, new(MockReleaser)), http.MethodDelete,
		"/v1/phone-number-pools/"+poolID.String()+"/numbers/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
