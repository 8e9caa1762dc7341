package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/splitledger/backend/internal/domain/ledger"
	"go.uber.org/zap"
)

// BalanceInvalidator evicts cached balances for all users a ledger mutation
// touched, plus the group's aggregate snapshot. Eviction is best-effort per
// key: a failed delete doesn't stop the rest, and all failures are joined
// into the returned error for the caller to log and discard.
type BalanceInvalidator struct {
	cache  ledger.BalanceCache
	logger *zap.Logger
}

// BalanceInvalidatorOption is a functional option for configuring the invalidator
type BalanceInvalidatorOption func(*BalanceInvalidator)

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) BalanceInvalidatorOption {
	return func(i *BalanceInvalidator) {
		i.logger = logger
	}
}

// NewBalanceInvalidator creates a new BalanceInvalidator over the given cache
func NewBalanceInvalidator(cache ledger.BalanceCache, opts ...BalanceInvalidatorOption) *BalanceInvalidator {
	inv := &BalanceInvalidator{
		cache:  cache,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invalidate evicts the per-user entries for every affected user and the
// group snapshot entry. Entries a failed delete leaves behind still expire
// via TTL.
func (i *BalanceInvalidator) Invalidate(ctx context.Context, groupID uuid.UUID, users ledger.AffectedUsers) error {
	var errs []error

	for _, userID := range users.IDs() {
		if err := i.cache.DeleteUserBalance(ctx, groupID, userID); err != nil {
			i.logger.Warn("Failed to evict user balance",
				zap.String("group_id", groupID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			errs = append(errs, err)
		}
	}

	if err := i.cache.DeleteGroupBalances(ctx, groupID); err != nil {
		i.logger.Warn("Failed to evict group balances",
			zap.String("group_id", groupID.String()),
			zap.Error(err))
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

var _ ledger.BalanceInvalidator = (*BalanceInvalidator)(nil)
