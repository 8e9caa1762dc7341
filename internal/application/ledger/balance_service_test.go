package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/splitledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type balanceFixture struct {
	balances *MockBalanceRepository
	members  *MockMembershipOracle
	cache    *fakeCache
	service  *BalanceService
}

func newBalanceFixture() *balanceFixture {
	f := &balanceFixture{
		balances: new(MockBalanceRepository),
		members:  new(MockMembershipOracle),
		cache:    newFakeCache(),
	}
	f.service = NewBalanceService(f.balances, f.members, f.cache, 0, nil)
	return f
}

func TestBalanceService_GetUserGroupBalance_MissThenHit(t *testing.T) {
	f := newBalanceFixture()
	groupID, userID := uuid.New(), uuid.New()

	f.members.On("IsMember", mock.Anything, groupID, userID).Return(true, nil)
	f.balances.On("UserBalance", mock.Anything, groupID, userID).Return(decimal.NewFromFloat(60.00), nil).Once()

	first, err := f.service.GetUserGroupBalance(context.Background(), groupID, userID)
	require.NoError(t, err)
	assert.True(t, first.Balance.Equal(decimal.NewFromFloat(60.00)))
	assert.Equal(t, 1, f.cache.userMisses)

	// Second read is served from cache; the repository is not consulted again.
	second, err := f.service.GetUserGroupBalance(context.Background(), groupID, userID)
	require.NoError(t, err)
	assert.True(t, second.Balance.Equal(first.Balance))
	assert.Equal(t, 1, f.cache.userHits)
	f.balances.AssertNumberOfCalls(t, "UserBalance", 1)
}

func TestBalanceService_GetUserGroupBalance_NotMember(t *testing.T) {
	f := newBalanceFixture()
	groupID, userID := uuid.New(), uuid.New()
	f.members.On("IsMember", mock.Anything, groupID, userID).Return(false, nil)

	_, err := f.service.GetUserGroupBalance(context.Background(), groupID, userID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_MEMBER", domainErr.Code)
}

func TestBalanceService_GetUserGroupBalance_CacheFailureFallsThrough(t *testing.T) {
	f := newBalanceFixture()
	groupID, userID := uuid.New(), uuid.New()
	f.cache.err = errors.New("connection refused")

	f.members.On("IsMember", mock.Anything, groupID, userID).Return(true, nil)
	f.balances.On("UserBalance", mock.Anything, groupID, userID).Return(decimal.NewFromFloat(-12.50), nil)

	resp, err := f.service.GetUserGroupBalance(context.Background(), groupID, userID)
	require.NoError(t, err)
	assert.True(t, resp.Balance.Equal(decimal.NewFromFloat(-12.50)))
}

func TestBalanceService_GetUserGroupBalance_StorageFailure(t *testing.T) {
	f := newBalanceFixture()
	groupID, userID := uuid.New(), uuid.New()

	f.members.On("IsMember", mock.Anything, groupID, userID).Return(true, nil)
	f.balances.On("UserBalance", mock.Anything, groupID, userID).Return(decimal.Zero, errors.New("database gone"))

	_, err := f.service.GetUserGroupBalance(context.Background(), groupID, userID)
	assert.Error(t, err)
}

func TestBalanceService_GetGroupBalances(t *testing.T) {
	f := newBalanceFixture()
	groupID, requester := uuid.New(), uuid.New()
	snapshot := []ledger.MemberBalance{
		{UserID: requester, Balance: decimal.NewFromFloat(60.00)},
		{UserID: uuid.New(), Balance: decimal.NewFromFloat(-30.00)},
		{UserID: uuid.New(), Balance: decimal.NewFromFloat(-30.00)},
	}

	f.members.On("IsMember", mock.Anything, groupID, requester).Return(true, nil)
	f.balances.On("GroupBalances", mock.Anything, groupID).Return(snapshot, nil).Once()

	first, err := f.service.GetGroupBalances(context.Background(), groupID, requester)
	require.NoError(t, err)
	assert.Len(t, first.Balances, 3)
	assert.True(t, ledger.SumBalances(first.Balances).IsZero())

	// Identical result on the cached read.
	second, err := f.service.GetGroupBalances(context.Background(), groupID, requester)
	require.NoError(t, err)
	assert.Equal(t, first.Balances, second.Balances)
	f.balances.AssertNumberOfCalls(t, "GroupBalances", 1)
}

func TestBalanceService_GetSimplifiedBalances(t *testing.T) {
	f := newBalanceFixture()
	groupID, requester := uuid.New(), uuid.New()
	debtor := uuid.New()

	f.members.On("IsMember", mock.Anything, groupID, requester).Return(true, nil)
	f.balances.On("GroupBalances", mock.Anything, groupID).Return([]ledger.MemberBalance{
		{UserID: requester, Balance: decimal.NewFromFloat(30.00)},
		{UserID: debtor, Balance: decimal.NewFromFloat(-30.00)},
	}, nil)

	transfers, err := f.service.GetSimplifiedBalances(context.Background(), groupID, requester)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, debtor, transfers[0].From)
	assert.Equal(t, requester, transfers[0].To)
	assert.True(t, transfers[0].Amount.Equal(decimal.NewFromFloat(30.00)))
}

func TestBalanceService_CanLeave(t *testing.T) {
	f := newBalanceFixture()
	groupID := uuid.New()
	settled, indebted := uuid.New(), uuid.New()

	f.members.On("IsMember", mock.Anything, groupID, mock.Anything).Return(true, nil)
	f.balances.On("UserBalance", mock.Anything, groupID, settled).Return(decimal.NewFromFloat(0.005), nil)
	f.balances.On("UserBalance", mock.Anything, groupID, indebted).Return(decimal.NewFromFloat(-0.02), nil)

	ok, err := f.service.CanLeave(context.Background(), groupID, settled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.service.CanLeave(context.Background(), groupID, indebted)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBalanceService_CanLeave_BypassesCache(t *testing.T) {
	f := newBalanceFixture()
	groupID, userID := uuid.New(), uuid.New()

	// Even with a stale settled figure cached, the decision reads the ledger.
	require.NoError(t, f.cache.SetUserBalance(context.Background(), groupID, userID, decimal.Zero, 0))

	f.members.On("IsMember", mock.Anything, groupID, userID).Return(true, nil)
	f.balances.On("UserBalance", mock.Anything, groupID, userID).Return(decimal.NewFromFloat(-10.00), nil)

	ok, err := f.service.CanLeave(context.Background(), groupID, userID)
	require.NoError(t, err)
	assert.False(t, ok)
}
