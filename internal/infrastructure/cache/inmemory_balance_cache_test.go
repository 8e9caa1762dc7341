package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBalanceCache_UserBalanceRoundTrip(t *testing.T) {
	c := NewInMemoryBalanceCache()
	ctx := context.Background()
	groupID, userID := uuid.New(), uuid.New()

	_, hit, err := c.GetUserBalance(ctx, groupID, userID)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetUserBalance(ctx, groupID, userID, decimal.NewFromFloat(42.50), time.Minute))

	balance, hit, err := c.GetUserBalance(ctx, groupID, userID)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, balance.Equal(decimal.NewFromFloat(42.50)))
}

func TestInMemoryBalanceCache_Expiry(t *testing.T) {
	c := NewInMemoryBalanceCache()
	ctx := context.Background()
	groupID, userID := uuid.New(), uuid.New()

	require.NoError(t, c.SetUserBalance(ctx, groupID, userID, decimal.NewFromInt(10), time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, hit, err := c.GetUserBalance(ctx, groupID, userID)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInMemoryBalanceCache_Delete(t *testing.T) {
	c := NewInMemoryBalanceCache()
	ctx := context.Background()
	groupID, userID := uuid.New(), uuid.New()

	require.NoError(t, c.SetUserBalance(ctx, groupID, userID, decimal.NewFromInt(5), time.Minute))
	require.NoError(t, c.DeleteUserBalance(ctx, groupID, userID))

	_, hit, err := c.GetUserBalance(ctx, groupID, userID)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInMemoryBalanceCache_GroupSnapshot(t *testing.T) {
	c := NewInMemoryBalanceCache()
	ctx := context.Background()
	groupID := uuid.New()
	snapshot := []ledger.MemberBalance{
		{UserID: uuid.New(), Balance: decimal.NewFromFloat(30.00)},
		{UserID: uuid.New(), Balance: decimal.NewFromFloat(-30.00)},
	}

	require.NoError(t, c.SetGroupBalances(ctx, groupID, snapshot, time.Minute))

	got, hit, err := c.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, snapshot, got)

	require.NoError(t, c.DeleteGroupBalances(ctx, groupID))
	_, hit, err = c.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestBalanceInvalidator_EvictsAllAffectedKeys(t *testing.T) {
	c := NewInMemoryBalanceCache()
	ctx := context.Background()
	groupID := uuid.New()
	a, b, untouched := uuid.New(), uuid.New(), uuid.New()

	for _, userID := range []uuid.UUID{a, b, untouched} {
		require.NoError(t, c.SetUserBalance(ctx, groupID, userID, decimal.NewFromInt(1), time.Minute))
	}
	require.NoError(t, c.SetGroupBalances(ctx, groupID, []ledger.MemberBalance{}, time.Minute))

	inv := NewBalanceInvalidator(c)
	require.NoError(t, inv.Invalidate(ctx, groupID, ledger.NewAffectedUsers(a, b)))

	_, hit, _ := c.GetUserBalance(ctx, groupID, a)
	assert.False(t, hit)
	_, hit, _ = c.GetUserBalance(ctx, groupID, b)
	assert.False(t, hit)

	// The group snapshot always goes; unrelated user entries stay.
	_, hit, _ = c.GetGroupBalances(ctx, groupID)
	assert.False(t, hit)
	_, hit, _ = c.GetUserBalance(ctx, groupID, untouched)
	assert.True(t, hit)
}

type failingCache struct {
	*InMemoryBalanceCache
	failUser uuid.UUID
}

func (f *failingCache) DeleteUserBalance(ctx context.Context, groupID, userID uuid.UUID) error {
	if userID == f.failUser {
		return assert.AnError
	}
	return f.InMemoryBalanceCache.DeleteUserBalance(ctx, groupID, userID)
}

func TestBalanceInvalidator_PartialFailureStillEvictsRest(t *testing.T) {
	inner := NewInMemoryBalanceCache()
	ctx := context.Background()
	groupID := uuid.New()
	failing, healthy := uuid.New(), uuid.New()

	require.NoError(t, inner.SetUserBalance(ctx, groupID, healthy, decimal.NewFromInt(1), time.Minute))
	require.NoError(t, inner.SetGroupBalances(ctx, groupID, []ledger.MemberBalance{}, time.Minute))

	inv := NewBalanceInvalidator(&failingCache{InMemoryBalanceCache: inner, failUser: failing})
	err := inv.Invalidate(ctx, groupID, ledger.NewAffectedUsers(failing, healthy))
	require.Error(t, err)

	// The failure on one key didn't stop the others.
	_, hit, _ := inner.GetUserBalance(ctx, groupID, healthy)
	assert.False(t, hit)
	_, hit, _ = inner.GetGroupBalances(ctx, groupID)
	assert.False(t, hit)
}
