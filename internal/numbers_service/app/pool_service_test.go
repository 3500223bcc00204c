package app

import (
	"context"
	"testing"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func activePool(accountID uuid.UUID) *domain.PhoneNumberPool {
	return &domain.PhoneNumberPool{
		ID:              uuid.New(),
		AccountID:       accountID,
		Name:            "Main",
		Size:            3,
		Type:            domain.NumberTypeLocal,
		Country:         "US",
		ForwardToNumber: "+15550000000",
		SwapRules:       domain.DefaultSwapRules(),
		Status:          domain.StatusActive,
	}
}

func TestUpdatePool_PropagatesForwardingAndRules(t *testing.T) {
	f := newNumbersFixture(t)
	svc := NewPoolService(f.db, f.pools, f.phones, f.provisioner, testLogger())
	ctx := context.Background()
	pool := activePool(f.accountID)
	forward := "+15559998888"
	rules := domain.DefaultSwapRules()
	rules.Targets = []domain.NumberFormat{"###.###.####"}

	f.db.ExpectBegin()
	f.pools.On("GetByIDForUpdate", ctx, mock.Anything, pool.ID, f.accountID).Return(pool, nil).Once()
	f.pools.On("Update", ctx, mock.Anything, pool).Return(nil).Once()
	f.phones.On("ApplyPoolConfig", ctx, mock.Anything, pool.ID, forward, rules).Return(int64(3), nil).Once()
	dbtest.ExpectCommit(f.db)

	got, err := svc.UpdatePool(ctx, f.accountID, pool.ID, UpdatePoolInput{ForwardToNumber: &forward, SwapRules: &rules})
	require.NoError(t, err)
	assert.Equal(t, forward, got.ForwardToNumber)
	assert.Equal(t, domain.NumberFormat("###.###.####"), got.SwapRules.DisplayFormat())
	f.assertMocks(t)
}

func TestUpdatePool_RenameDoesNotTouchMembers(t *testing.T) {
	f := newNumbersFixture(t)
	svc := NewPoolService(f.db, f.pools, f.phones, f.provisioner, testLogger())
	ctx := context.Background()
	pool := activePool(f.accountID)
	name := "Renamed"

	f.db.ExpectBegin()
	f.pools.On("GetByIDForUpdate", ctx, mock.Anything, pool.ID, f.accountID).Return(pool, nil).Once()
	f.pools.On("Update", ctx, mock.Anything, pool).Return(nil).Once()
	dbtest.ExpectCommit(f.db)

	got, err := svc.UpdatePool(ctx, f.accountID, pool.ID, UpdatePoolInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	f.phones.AssertNotCalled(t, "ApplyPoolConfig", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestUpdatePool_PendingPoolIsNotEditable(t *testing.T) {
	f := newNumbersFixture(t)
	svc := NewPoolService(f.db, f.pools, f.phones, f.provisioner, testLogger())
	ctx := context.Background()
	pool := activePool(f.accountID)
	pool.Status = domain.StatusPendingDeletion
	name := "x"

	f.db.ExpectBegin()
	f.pools.On("GetByIDForUpdate", ctx, mock.Anything, pool.ID, f.accountID).Return(pool, nil).Once()
	dbtest.ExpectRollback(f.db)

	_, err := svc.UpdatePool(ctx, f.accountID, pool.ID, UpdatePoolInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotActive)
	f.assertMocks(t)
}

func TestDetachNumber_KeepsPoolConfigAndShrinksPool(t *testing.T) {
	f := newNumbersFixture(t)
	svc := NewPoolService(f.db, f.pools, f.phones, f.provisioner, testLogger())
	ctx := context.Background()
	pool := activePool(f.accountID)
	n := activeNumber(f.accountID)
	n.PoolID = &pool.ID

	f.db.ExpectBegin()
	f.pools.On("GetByIDForUpdate", ctx, mock.Anything, pool.ID, f.accountID).Return(pool, nil).Once()
	f.phones.On("GetByIDForUpdate", ctx, mock.Anything, n.ID, f.accountID).Return(n, nil).Once()
	f.phones.On("Update", ctx, mock.Anything, n).Return(nil).Once()
	f.pools.On("Update", ctx, mock.Anything, mock.MatchedBy(func(p *domain.PhoneNumberPool) bool { return p.Size == 2 })).Return(nil).Once()
	dbtest.ExpectCommit(f.db)

	got, err := svc.DetachNumber(ctx, f.accountID, pool.ID, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PoolID)
	assert.Equal(t, pool.ForwardToNumber, got.ForwardToNumber)
	require.NotNil(t, got.SwapRules)
	assert.Equal(t, pool.SwapRules.Targets, got.SwapRules.Targets)
	f.assertMocks(t)
}

func TestDetachNumber_NumberFromAnotherPool(t *testing.T) {
	f := newNumbersFixture(t)
	svc := NewPoolService(f.db, f.pools, f.phones, f.provisioner, testLogger())
	ctx := context.Background()
	pool := activePool(f.accountID)
	other := uuid.New()
	n := activeNumber(f.accountID)
	n.PoolID = &other

	f.db.ExpectBegin()
	f.pools.On("GetByIDForUpdate", ctx, mock.Anything, pool.ID, f.accountID).Return(pool, nil).Once()
	f.phones.On("GetByIDForUpdate", ctx, mock.Anything, n.ID, f.accountID).Return(n, nil).Once()
	dbtest.ExpectRollback(f.db)

	_, err := svc.DetachNumber(ctx, f.accountID, pool.ID, n.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.phones.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestDetachNumber_RefusedWhilePoolPendingDeletion(t *testing.T) {
	f := newNumbersFixture(t)
	svc := NewPoolService(f.db, f.pools, f.phones, f.provisioner, testLogger())
	ctx := context.Background()
	pool := activePool(f.accountID)
	pool.Status = domain.StatusPendingDeletion
	n := activeNumber(f.accountID)
	n.PoolID = &pool.ID

	f.db.ExpectBegin()
	f.pools.On("GetByIDForUpdate", ctx, mock.Anything, pool.ID, f.accountID).Return(pool, nil).Once()
	dbtest.ExpectRollback(f.db)

	_, err := svc.DetachNumber(ctx, f.accountID, pool.ID, n.ID)
	assert.ErrorIs(t, err, domain.ErrNotActive)
	f.phones.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.phones.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.assertMocks(t)
}
