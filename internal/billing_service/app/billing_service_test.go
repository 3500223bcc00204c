package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/calltrack/golang_services/internal/platform/database/dbtest"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockBillingRepository struct {
	mock.Mock
}

func (m *MockBillingRepository) Create(ctx context.Context, q database.Querier, b *domain.Billing) error {
	return m.Called(ctx, q, b).Error(0)
}

func (m *MockBillingRepository) Get(ctx context.Context, q database.Querier, accountID uuid.UUID) (*domain.Billing, error) {
	args := m.Called(ctx, q, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Billing), args.Error(1)
}

func (m *MockBillingRepository) GetForUpdate(ctx context.Context, q database.Querier, accountID uuid.UUID) (*domain.Billing, error) {
	args := m.Called(ctx, q, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Billing), args.Error(1)
}

func (m *MockBillingRepository) UpdateBalance(ctx context.Context, q database.Querier, accountID uuid.UUID, balance decimal.Decimal) error {
	return m.Called(ctx, q, accountID, balance).Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, q database.Querier, txn *domain.Transaction) error {
	return m.Called(ctx, q, txn).Error(0)
}

func (m *MockTransactionRepository) ListByAccountID(ctx context.Context, q database.Querier, accountID uuid.UUID, limit, offset int) ([]*domain.Transaction, int, error) {
	args := m.Called(ctx, q, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Transaction), args.Int(1), args.Error(2)
}

type MockPaymentIntentRepository struct {
	mock.Mock
}

func (m *MockPaymentIntentRepository) Create(ctx context.Context, q database.Querier, pi *domain.PaymentIntent) error {
	return m.Called(ctx, q, pi).Error(0)
}

func (m *MockPaymentIntentRepository) GetByGatewayIDForUpdate(ctx context.Context, q database.Querier, gatewayID string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, q, gatewayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *MockPaymentIntentRepository) Update(ctx context.Context, q database.Querier, pi *domain.PaymentIntent) error {
	return m.Called(ctx, q, pi).Error(0)
}

type MockPaymentGatewayAdapter struct {
	mock.Mock
}

func (m *MockPaymentGatewayAdapter) CreatePaymentIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.CreateIntentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateIntentResponse), args.Error(1)
}

func (m *MockPaymentGatewayAdapter) HandleWebhookEvent(ctx context.Context, rawPayload []byte, signature string) (*domain.PaymentGatewayEvent, error) {
	args := m.Called(ctx, rawPayload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentGatewayEvent), args.Error(1)
}

type billingFixture struct {
	svc     *BillingService
	pool    pgxmock.PgxPoolIface
	billing *MockBillingRepository
	txns    *MockTransactionRepository
	intents *MockPaymentIntentRepository
	gateway *MockPaymentGatewayAdapter
}

func newBillingFixture(t *testing.T) *billingFixture {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	f := &billingFixture{
		pool:    pool,
		billing: new(MockBillingRepository),
		txns:    new(MockTransactionRepository),
		intents: new(MockPaymentIntentRepository),
		gateway: new(MockPaymentGatewayAdapter),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewBillingService(pool, f.billing, f.txns, f.intents, f.gateway, "USD", logger)
	return f
}

func billingWithBalance(accountID uuid.UUID, balance int64) *domain.Billing {
	b := domain.NewBilling(accountID, "USD")
	b.Balance = decimal.NewFromInt(balance)
	return b
}

// --- Tests ---

func TestChargeForNumbers_SingleLedgerEntryForTotal(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	accountID := uuid.New()

	f.billing.On("GetForUpdate", ctx, f.pool, accountID).Return(billingWithBalance(accountID, 100), nil)
	f.txns.On("Create", ctx, f.pool, mock.MatchedBy(func(txn *domain.Transaction) bool {
		return txn.Type == domain.TransactionTypeNumberPurchase &&
			txn.Quantity == 5 &&
			txn.Amount.Equal(decimal.NewFromInt(-15)) &&
			txn.BalanceAfter.Equal(decimal.NewFromInt(85)) &&
			*txn.ReferenceID == "pool:1"
	})).Return(nil).Once()
	f.billing.On("UpdateBalance", ctx, f.pool, accountID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(85))
	})).Return(nil).Once()

	txn, err := f.svc.ChargeForNumbers(ctx, f.pool, accountID, domain.PriceClassLocal, 5, "pool:1")
	require.NoError(t, err)
	assert.True(t, txn.UnitPrice.Equal(decimal.NewFromInt(3)))
	f.txns.AssertExpectations(t)
	f.billing.AssertExpectations(t)
}

func TestChargeForNumbers_ZeroQuantityIsNoop(t *testing.T) {
	f := newBillingFixture(t)
	txn, err := f.svc.ChargeForNumbers(context.Background(), f.pool, uuid.New(), domain.PriceClassLocal, 0, "")
	require.NoError(t, err)
	assert.Nil(t, txn)
	f.billing.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestChargeForNumbers_InsufficientBalance(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	accountID := uuid.New()
	f.billing.On("GetForUpdate", ctx, f.pool, accountID).Return(billingWithBalance(accountID, 9), nil)

	_, err := f.svc.ChargeForNumbers(ctx, f.pool, accountID, domain.PriceClassTollFree, 2, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	f.txns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureSufficientBalance(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	accountID := uuid.New()
	f.billing.On("Get", ctx, f.pool, accountID).Return(billingWithBalance(accountID, 15), nil)

	assert.NoError(t, f.svc.EnsureSufficientBalance(ctx, f.pool, accountID, domain.PriceClassLocal, 5))
	assert.ErrorIs(t, f.svc.EnsureSufficientBalance(ctx, f.pool, accountID, domain.PriceClassLocal, 6), domain.ErrInsufficientBalance)
	assert.ErrorIs(t, f.svc.EnsureSufficientBalance(ctx, f.pool, accountID, domain.PriceClass("premium"), 1), domain.ErrUnknownPriceClass)
}

func TestCredit_RunsInOwnTransaction(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	accountID := uuid.New()

	f.pool.ExpectBegin()
	f.billing.On("GetForUpdate", ctx, mock.Anything, accountID).Return(billingWithBalance(accountID, 10), nil)
	f.txns.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	f.billing.On("UpdateBalance", ctx, mock.Anything, accountID, mock.Anything).Return(nil)
	dbtest.ExpectCommit(f.pool)

	txn, err := f.svc.Credit(ctx, accountID, decimal.NewFromInt(40), domain.TransactionTypeManualAdjustment, "goodwill", "")
	require.NoError(t, err)
	assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, txn.ReferenceID)
	assert.NoError(t, f.pool.ExpectationsWereMet())

	_, err = f.svc.Credit(ctx, accountID, decimal.NewFromInt(-1), domain.TransactionTypeManualAdjustment, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCredit_RollsBackOnLedgerFailure(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	accountID := uuid.New()

	f.pool.ExpectBegin()
	f.billing.On("GetForUpdate", ctx, mock.Anything, accountID).Return(billingWithBalance(accountID, 10), nil)
	f.txns.On("Create", ctx, mock.Anything, mock.Anything).Return(errors.New("insert failed"))
	dbtest.ExpectRollback(f.pool)

	_, err := f.svc.Credit(ctx, accountID, decimal.NewFromInt(5), domain.TransactionTypeRefund, "", "")
	require.Error(t, err)
	f.billing.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, f.pool.ExpectationsWereMet())
}

func TestCreatePaymentIntent(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("gateway accepts", func(t *testing.T) {
		f := newBillingFixture(t)
		secret := "cs_1"
		f.intents.On("Create", ctx, f.pool, mock.AnythingOfType("*domain.PaymentIntent")).Return(nil)
		f.gateway.On("CreatePaymentIntent", ctx, mock.AnythingOfType("domain.CreateIntentRequest")).
			Return(&domain.CreateIntentResponse{GatewayPaymentIntentID: "gw_1", ClientSecret: &secret, Status: domain.PaymentIntentStatusRequiresAction}, nil)
		f.intents.On("Update", ctx, f.pool, mock.MatchedBy(func(pi *domain.PaymentIntent) bool {
			return pi.Status == domain.PaymentIntentStatusRequiresAction && *pi.GatewayPaymentIntentID == "gw_1"
		})).Return(nil)

		pi, err := f.svc.CreatePaymentIntent(ctx, accountID, decimal.NewFromInt(25), "")
		require.NoError(t, err)
		assert.Equal(t, "USD", pi.Currency)
		assert.Equal(t, "cs_1", *pi.GatewayClientSecret)
	})

	t.Run("gateway fails", func(t *testing.T) {
		f := newBillingFixture(t)
		f.intents.On("Create", ctx, f.pool, mock.Anything).Return(nil)
		f.gateway.On("CreatePaymentIntent", ctx, mock.Anything).Return(nil, errors.New("card network down"))
		f.intents.On("Update", ctx, f.pool, mock.MatchedBy(func(pi *domain.PaymentIntent) bool {
			return pi.Status == domain.PaymentIntentStatusFailed && pi.ErrorMessage != nil
		})).Return(nil)

		pi, err := f.svc.CreatePaymentIntent(ctx, accountID, decimal.NewFromInt(25), "USD")
		assert.ErrorIs(t, err, domain.ErrPaymentGateway)
		require.NotNil(t, pi)
		assert.Equal(t, domain.PaymentIntentStatusFailed, pi.Status)
	})
}

func TestHandlePaymentWebhook(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	payload := []byte(`{}`)
	gwID := "gw_42"

	pendingIntent := func() *domain.PaymentIntent {
		return &domain.PaymentIntent{ID: uuid.New(), AccountID: accountID, Amount: decimal.NewFromInt(20),
			Currency: "USD", Status: domain.PaymentIntentStatusRequiresAction, GatewayPaymentIntentID: &gwID}
	}

	t.Run("succeeded credits balance", func(t *testing.T) {
		f := newBillingFixture(t)
		f.gateway.On("HandleWebhookEvent", ctx, payload, "sig").
			Return(&domain.PaymentGatewayEvent{GatewayPaymentIntentID: gwID, Status: domain.PaymentIntentStatusSucceeded}, nil)
		f.pool.ExpectBegin()
		f.intents.On("GetByGatewayIDForUpdate", ctx, mock.Anything, gwID).Return(pendingIntent(), nil)
		f.billing.On("GetForUpdate", ctx, mock.Anything, accountID).Return(billingWithBalance(accountID, 5), nil)
		f.txns.On("Create", ctx, mock.Anything, mock.MatchedBy(func(txn *domain.Transaction) bool {
			return txn.Type == domain.TransactionTypeCreditTopUp && txn.Amount.Equal(decimal.NewFromInt(20))
		})).Return(nil)
		f.billing.On("UpdateBalance", ctx, mock.Anything, accountID, mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(25))
		})).Return(nil)
		f.intents.On("Update", ctx, mock.Anything, mock.MatchedBy(func(pi *domain.PaymentIntent) bool {
			return pi.Status == domain.PaymentIntentStatusSucceeded
		})).Return(nil)
		dbtest.ExpectCommit(f.pool)

		require.NoError(t, f.svc.HandlePaymentWebhook(ctx, payload, "sig"))
		f.txns.AssertExpectations(t)
		assert.NoError(t, f.pool.ExpectationsWereMet())
	})

	t.Run("redelivery of finalised intent is a no-op", func(t *testing.T) {
		f := newBillingFixture(t)
		done := pendingIntent()
		done.Status = domain.PaymentIntentStatusSucceeded
		f.gateway.On("HandleWebhookEvent", ctx, payload, "sig").
			Return(&domain.PaymentGatewayEvent{GatewayPaymentIntentID: gwID, Status: domain.PaymentIntentStatusSucceeded}, nil)
		f.pool.ExpectBegin()
		f.intents.On("GetByGatewayIDForUpdate", ctx, mock.Anything, gwID).Return(done, nil)
		dbtest.ExpectCommit(f.pool)

		require.NoError(t, f.svc.HandlePaymentWebhook(ctx, payload, "sig"))
		f.txns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, f.pool.ExpectationsWereMet())
	})

	t.Run("bad signature never opens a transaction", func(t *testing.T) {
		f := newBillingFixture(t)
		f.gateway.On("HandleWebhookEvent", ctx, payload, "bad").Return(nil, domain.ErrWebhookSignature)

		err := f.svc.HandlePaymentWebhook(ctx, payload, "bad")
		assert.ErrorIs(t, err, domain.ErrWebhookSignature)
		assert.NoError(t, f.pool.ExpectationsWereMet())
	})

	t.Run("failed event records reason", func(t *testing.T) {
		f := newBillingFixture(t)
		f.gateway.On("HandleWebhookEvent", ctx, payload, "sig").
			Return(&domain.PaymentGatewayEvent{GatewayPaymentIntentID: gwID, Status: domain.PaymentIntentStatusFailed, FailureReason: "card_declined"}, nil)
		f.pool.ExpectBegin()
		f.intents.On("GetByGatewayIDForUpdate", ctx, mock.Anything, gwID).Return(pendingIntent(), nil)
		f.intents.On("Update", ctx, mock.Anything, mock.MatchedBy(func(pi *domain.PaymentIntent) bool {
			return pi.Status == domain.PaymentIntentStatusFailed && *pi.ErrorMessage == "card_declined"
		})).Return(nil)
		dbtest.ExpectCommit(f.pool)

		require.NoError(t, f.svc.HandlePaymentWebhook(ctx, payload, "sig"))
		assert.NoError(t, f.pool.ExpectationsWereMet())
	})
}
