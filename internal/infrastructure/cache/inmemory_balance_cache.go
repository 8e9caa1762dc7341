package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
)

// InMemoryBalanceCache implements BalanceCache using in-process storage.
// Useful for tests and single-instance deployments without Redis.
type InMemoryBalanceCache struct {
	users  sync.Map // map[string]*balanceEntry
	groups sync.Map // map[string]*snapshotEntry
}

type balanceEntry struct {
	balance   decimal.Decimal
	expiresAt time.Time
}

type snapshotEntry struct {
	balances  []ledger.MemberBalance
	expiresAt time.Time
}

func expired(expiresAt time.Time) bool {
	return !expiresAt.IsZero() && time.Now().After(expiresAt)
}

// NewInMemoryBalanceCache creates a new in-memory balance cache
func NewInMemoryBalanceCache() *InMemoryBalanceCache {
	return &InMemoryBalanceCache{}
}

// GetUserBalance retrieves a cached user balance; false means a miss
func (c *InMemoryBalanceCache) GetUserBalance(_ context.Context, groupID, userID uuid.UUID) (decimal.Decimal, bool, error) {
	key := userBalanceKey(groupID, userID)
	v, ok := c.users.Load(key)
	if !ok {
		return decimal.Zero, false, nil
	}
	entry := v.(*balanceEntry)
	if expired(entry.expiresAt) {
		c.users.Delete(key)
		return decimal.Zero, false, nil
	}
	return entry.balance, true, nil
}

// SetUserBalance caches a user balance; a zero ttl means no expiry
func (c *InMemoryBalanceCache) SetUserBalance(_ context.Context, groupID, userID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error {
	entry := &balanceEntry{balance: balance}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.users.Store(userBalanceKey(groupID, userID), entry)
	return nil
}

// GetGroupBalances retrieves a cached group snapshot; false means a miss
func (c *InMemoryBalanceCache) GetGroupBalances(_ context.Context, groupID uuid.UUID) ([]ledger.MemberBalance, bool, error) {
	key := groupBalancesKey(groupID)
	v, ok := c.groups.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := v.(*snapshotEntry)
	if expired(entry.expiresAt) {
		c.groups.Delete(key)
		return nil, false, nil
	}
	return entry.balances, true, nil
}

// SetGroupBalances caches a group snapshot; a zero ttl means no expiry
func (c *InMemoryBalanceCache) SetGroupBalances(_ context.Context, groupID uuid.UUID, balances []ledger.MemberBalance, ttl time.Duration) error {
	entry := &snapshotEntry{balances: balances}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.groups.Store(groupBalancesKey(groupID), entry)
	return nil
}

// DeleteUserBalance evicts a user's cached balance
func (c *InMemoryBalanceCache) DeleteUserBalance(_ context.Context, groupID, userID uuid.UUID) error {
	c.users.Delete(userBalanceKey(groupID, userID))
	return nil
}

// DeleteGroupBalances evicts a group's cached snapshot
func (c *InMemoryBalanceCache) DeleteGroupBalances(_ context.Context, groupID uuid.UUID) error {
	c.groups.Delete(groupBalancesKey(groupID))
	return nil
}

var _ ledger.BalanceCache = (*InMemoryBalanceCache)(nil)
