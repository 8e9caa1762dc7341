package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/stretchr/testify/mock"
)

// MockExpenseRepository is a mock implementation of ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*ledger.Expense, error) {
	args := m.Called(ctx, groupID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *ledger.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Update(ctx context.Context, expense *ledger.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSettlementRepository is a mock implementation of SettlementRepository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*ledger.Settlement, error) {
	args := m.Called(ctx, groupID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) Create(ctx context.Context, settlement *ledger.Settlement) error {
	args := m.Called(ctx, settlement)
	return args.Error(0)
}

func (m *MockSettlementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGroupRepository is a mock implementation of GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Group), args.Error(1)
}

func (m *MockGroupRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Group), args.Error(1)
}

func (m *MockGroupRepository) Members(ctx context.Context, groupID uuid.UUID) ([]*ledger.Membership, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Membership), args.Error(1)
}

func (m *MockGroupRepository) Create(ctx context.Context, group *ledger.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) Update(ctx context.Context, group *ledger.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) AddMember(ctx context.Context, membership *ledger.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

// MockMembershipOracle is a mock implementation of MembershipOracle
type MockMembershipOracle struct {
	mock.Mock
}

func (m *MockMembershipOracle) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipOracle) IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) UserBalance(ctx context.Context, groupID, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBalanceRepository) GroupBalances(ctx context.Context, groupID uuid.UUID) ([]ledger.MemberBalance, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.MemberBalance), args.Error(1)
}

// MockInvalidator is a mock implementation of BalanceInvalidator
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, groupID uuid.UUID, users ledger.AffectedUsers) error {
	args := m.Called(ctx, groupID, users)
	return args.Error(0)
}

// fakeCache is an in-memory BalanceCache for exercising the read path.
// An injectable err simulates a broken backend.
type fakeCache struct {
	mu     sync.Mutex
	users  map[string]decimal.Decimal
	groups map[string][]ledger.MemberBalance
	err    error

	userHits, userMisses int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		users:  make(map[string]decimal.Decimal),
		groups: make(map[string][]ledger.MemberBalance),
	}
}

func userKey(groupID, userID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", groupID, userID)
}

func (c *fakeCache) GetUserBalance(ctx context.Context, groupID, userID uuid.UUID) (decimal.Decimal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return decimal.Zero, false, c.err
	}
	v, ok := c.users[userKey(groupID, userID)]
	if ok {
		c.userHits++
	} else {
		c.userMisses++
	}
	return v, ok, nil
}

func (c *fakeCache) SetUserBalance(ctx context.Context, groupID, userID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.users[userKey(groupID, userID)] = balance
	return nil
}

func (c *fakeCache) GetGroupBalances(ctx context.Context, groupID uuid.UUID) ([]ledger.MemberBalance, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.groups[groupID.String()]
	return v, ok, nil
}

func (c *fakeCache) SetGroupBalances(ctx context.Context, groupID uuid.UUID, balances []ledger.MemberBalance, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.groups[groupID.String()] = balances
	return nil
}

func (c *fakeCache) DeleteUserBalance(ctx context.Context, groupID, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	delete(c.users, userKey(groupID, userID))
	return nil
}

func (c *fakeCache) DeleteGroupBalances(ctx context.Context, groupID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	delete(c.groups, groupID.String())
	return nil
}
