package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/splitledger/backend/internal/domain/shared"
	"github.com/splitledger/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type settlementFixture struct {
	settlements *MockSettlementRepository
	balances    *MockBalanceRepository
	members     *MockMembershipOracle
	invalidator *MockInvalidator
	service     *SettlementService
}

func newSettlementFixture() *settlementFixture {
	f := &settlementFixture{
		settlements: new(MockSettlementRepository),
		balances:    new(MockBalanceRepository),
		members:     new(MockMembershipOracle),
		invalidator: new(MockInvalidator),
	}
	f.service = NewSettlementService(f.settlements, f.balances, f.members, f.invalidator, nil)
	return f
}

func testSettlement(t *testing.T, groupID, payer, payee uuid.UUID) *ledger.Settlement {
	t.Helper()
	settlement, err := ledger.NewSettlement(
		groupID, payer, payee,
		valueobject.NewMoneyINRFromFloat(30.00),
		"", time.Now(),
	)
	require.NoError(t, err)
	return settlement
}

func TestSettlementService_CreateSettlement(t *testing.T) {
	f := newSettlementFixture()
	groupID := uuid.New()
	payer, payee := uuid.New(), uuid.New()

	f.members.On("IsMember", mock.Anything, groupID, mock.Anything).Return(true, nil)
	f.balances.On("UserBalance", mock.Anything, groupID, payer).Return(decimal.NewFromFloat(-30.00), nil)
	f.settlements.On("Create", mock.Anything, mock.AnythingOfType("*ledger.Settlement")).Return(nil)
	f.invalidator.On("Invalidate", mock.Anything, groupID, mock.Anything).Return(nil)

	resp, err := f.service.CreateSettlement(context.Background(), CreateSettlementRequest{
		GroupID:   groupID,
		PaidBy:    payer,
		PaidTo:    payee,
		Amount:    decimal.NewFromFloat(30.00),
		CreatedBy: payer,
	})
	require.NoError(t, err)

	assert.Equal(t, payer, resp.PaidBy)
	assert.Equal(t, payee, resp.PaidTo)
	assert.True(t, resp.Amount.Equal(decimal.NewFromFloat(30.00)))

	// Eviction covers exactly the two parties.
	call := f.invalidator.Calls[0]
	affected := call.Arguments.Get(2).(ledger.AffectedUsers)
	assert.Len(t, affected, 2)
	assert.True(t, affected.Contains(payer))
	assert.True(t, affected.Contains(payee))
}

func TestSettlementService_CreateSettlement_SelfNotAllowed(t *testing.T) {
	f := newSettlementFixture()
	groupID := uuid.New()
	user := uuid.New()
	f.members.On("IsMember", mock.Anything, groupID, user).Return(true, nil)

	_, err := f.service.CreateSettlement(context.Background(), CreateSettlementRequest{
		GroupID:   groupID,
		PaidBy:    user,
		PaidTo:    user,
		Amount:    decimal.NewFromFloat(10.00),
		CreatedBy: user,
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION", domainErr.Code)
	f.settlements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSettlementService_CreateSettlement_PayeeNotMember(t *testing.T) {
	f := newSettlementFixture()
	groupID := uuid.New()
	payer, outsider := uuid.New(), uuid.New()

	f.members.On("IsMember", mock.Anything, groupID, payer).Return(true, nil)
	f.members.On("IsMember", mock.Anything, groupID, outsider).Return(false, nil)

	_, err := f.service.CreateSettlement(context.Background(), CreateSettlementRequest{
		GroupID:   groupID,
		PaidBy:    payer,
		PaidTo:    outsider,
		Amount:    decimal.NewFromFloat(10.00),
		CreatedBy: payer,
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_MEMBER", domainErr.Code)
}

func TestSettlementService_CreateSettlement_BalanceProbeFailureIgnored(t *testing.T) {
	f := newSettlementFixture()
	groupID := uuid.New()
	payer, payee := uuid.New(), uuid.New()

	f.members.On("IsMember", mock.Anything, groupID, mock.Anything).Return(true, nil)
	// The sanity warning is advisory; a failed probe must not block the write.
	f.balances.On("UserBalance", mock.Anything, groupID, payer).Return(decimal.Zero, errors.New("timeout"))
	f.settlements.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.invalidator.On("Invalidate", mock.Anything, groupID, mock.Anything).Return(nil)

	_, err := f.service.CreateSettlement(context.Background(), CreateSettlementRequest{
		GroupID:   groupID,
		PaidBy:    payer,
		PaidTo:    payee,
		Amount:    decimal.NewFromFloat(10.00),
		CreatedBy: payer,
	})
	assert.NoError(t, err)
}

func TestSettlementService_DeleteSettlement_ByParty(t *testing.T) {
	f := newSettlementFixture()
	groupID := uuid.New()
	payer, payee := uuid.New(), uuid.New()
	settlement := testSettlement(t, groupID, payer, payee)

	f.settlements.On("FindByID", mock.Anything, settlement.ID).Return(settlement, nil)
	f.settlements.On("Delete", mock.Anything, settlement.ID).Return(nil)
	f.invalidator.On("Invalidate", mock.Anything, groupID, mock.Anything).Return(nil)

	require.NoError(t, f.service.DeleteSettlement(context.Background(), settlement.ID, payee))
	f.settlements.AssertExpectations(t)
	f.members.AssertNotCalled(t, "IsAdmin", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementService_DeleteSettlement_ByAdmin(t *testing.T) {
	f := newSettlementFixture()
	groupID := uuid.New()
	admin := uuid.New()
	settlement := testSettlement(t, groupID, uuid.New(), uuid.New())

	f.settlements.On("FindByID", mock.Anything, settlement.ID).Return(settlement, nil)
	f.members.On("IsAdmin", mock.Anything, groupID, admin).Return(true, nil)
	f.settlements.On("Delete", mock.Anything, settlement.ID).Return(nil)
	f.invalidator.On("Invalidate", mock.Anything, groupID, mock.Anything).Return(nil)

	assert.NoError(t, f.service.DeleteSettlement(context.Background(), settlement.ID, admin))
}

func TestSettlementService_DeleteSettlement_Forbidden(t *testing.T) {
	f := newSettlementFixture()
	groupID := uuid.New()
	stranger := uuid.New()
	settlement := testSettlement(t, groupID, uuid.New(), uuid.New())

	f.settlements.On("FindByID", mock.Anything, settlement.ID).Return(settlement, nil)
	f.members.On("IsAdmin", mock.Anything, groupID, stranger).Return(false, nil)

	err := f.service.DeleteSettlement(context.Background(), settlement.ID, stranger)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	f.settlements.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
