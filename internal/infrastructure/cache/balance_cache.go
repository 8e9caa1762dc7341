package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/splitledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RedisBalanceCache implements BalanceCache using Redis
type RedisBalanceCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisBalanceCacheOption is a functional option for configuring the cache
type RedisBalanceCacheOption func(*RedisBalanceCache)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		c.logger = logger
	}
}

// NewRedisBalanceCache creates a new Redis-based balance cache
func NewRedisBalanceCache(cfg config.RedisConfig, opts ...RedisBalanceCacheOption) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisBalanceCache{
		client:     client,
		ownsClient: true,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache, nil
}

// NewRedisBalanceCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisBalanceCacheWithClient(client *redis.Client, opts ...RedisBalanceCacheOption) *RedisBalanceCache {
	cache := &RedisBalanceCache{
		client:     client,
		ownsClient: false,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// userBalanceKey generates the cache key for a user's balance in a group
func userBalanceKey(groupID, userID uuid.UUID) string {
	return fmt.Sprintf("balance:user:%s:group:%s", userID, groupID)
}

// groupBalancesKey generates the cache key for a group's balance snapshot
func groupBalancesKey(groupID uuid.UUID) string {
	return fmt.Sprintf("balance:group:%s", groupID)
}

// GetUserBalance retrieves a cached user balance; false means a miss
func (c *RedisBalanceCache) GetUserBalance(ctx context.Context, groupID, userID uuid.UUID) (decimal.Decimal, bool, error) {
	key := userBalanceKey(groupID, userID)

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get balance from cache: %w", err)
	}

	balance, err := decimal.NewFromString(data)
	if err != nil {
		// Corrupted entry; drop it and treat as a miss.
		c.logger.Warn("Corrupted balance cache entry, deleting",
			zap.String("key", key),
			zap.Error(err))
		c.client.Del(ctx, key)
		return decimal.Zero, false, nil
	}
	return balance, true, nil
}

// SetUserBalance caches a user balance with the given TTL
func (c *RedisBalanceCache) SetUserBalance(ctx context.Context, groupID, userID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error {
	key := userBalanceKey(groupID, userID)
	if err := c.client.Set(ctx, key, balance.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to set balance in cache: %w", err)
	}
	return nil
}

// GetGroupBalances retrieves a cached group balance snapshot; false means a miss
func (c *RedisBalanceCache) GetGroupBalances(ctx context.Context, groupID uuid.UUID) ([]ledger.MemberBalance, bool, error) {
	key := groupBalancesKey(groupID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get group balances from cache: %w", err)
	}

	var balances []ledger.MemberBalance
	if err := json.Unmarshal(data, &balances); err != nil {
		c.logger.Warn("Corrupted group balance cache entry, deleting",
			zap.String("key", key),
			zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false, nil
	}
	return balances, true, nil
}

// SetGroupBalances caches a group balance snapshot with the given TTL
func (c *RedisBalanceCache) SetGroupBalances(ctx context.Context, groupID uuid.UUID, balances []ledger.MemberBalance, ttl time.Duration) error {
	data, err := json.Marshal(balances)
	if err != nil {
		return fmt.Errorf("failed to marshal group balances: %w", err)
	}
	if err := c.client.Set(ctx, groupBalancesKey(groupID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set group balances in cache: %w", err)
	}
	return nil
}

// DeleteUserBalance evicts a user's cached balance
func (c *RedisBalanceCache) DeleteUserBalance(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := c.client.Del(ctx, userBalanceKey(groupID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete balance from cache: %w", err)
	}
	return nil
}

// DeleteGroupBalances evicts a group's cached balance snapshot
func (c *RedisBalanceCache) DeleteGroupBalances(ctx context.Context, groupID uuid.UUID) error {
	if err := c.client.Del(ctx, groupBalancesKey(groupID)).Err(); err != nil {
		return fmt.Errorf("failed to delete group balances from cache: %w", err)
	}
	return nil
}

// Close closes the Redis client if this cache owns it
func (c *RedisBalanceCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ ledger.BalanceCache = (*RedisBalanceCache)(nil)
