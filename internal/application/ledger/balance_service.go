package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/splitledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultBalanceTTL bounds staleness for cache entries that eviction missed,
// for example when a process died between commit and invalidation.
const DefaultBalanceTTL = 300 * time.Second

// BalanceService serves balance reads through a write-through cache and
// derives settlement plans from them. Cache failures never fail a read:
// the lookup proceeds as if the cache were empty.
type BalanceService struct {
	balances ledger.BalanceRepository
	members  ledger.MembershipOracle
	cache    ledger.BalanceCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewBalanceService creates a new BalanceService. A zero ttl falls back to
// DefaultBalanceTTL.
func NewBalanceService(
	balances ledger.BalanceRepository,
	members ledger.MembershipOracle,
	cache ledger.BalanceCache,
	ttl time.Duration,
	logger *zap.Logger,
) *BalanceService {
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceService{
		balances: balances,
		members:  members,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// UserBalanceResponse is one user's net position in a group
type UserBalanceResponse struct {
	UserID  uuid.UUID       `json:"user_id"`
	GroupID uuid.UUID       `json:"group_id"`
	Balance decimal.Decimal `json:"balance"`
}

// GroupBalancesResponse is the full balance snapshot of a group
type GroupBalancesResponse struct {
	GroupID  uuid.UUID              `json:"group_id"`
	Balances []ledger.MemberBalance `json:"balances"`
}

// TransferResponse is one suggested payment in a settlement plan
type TransferResponse struct {
	From   uuid.UUID       `json:"from"`
	To     uuid.UUID       `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// GetUserGroupBalance returns the user's net balance in the group,
// cache-first with a write-through on miss.
func (s *BalanceService) GetUserGroupBalance(ctx context.Context, groupID, userID uuid.UUID) (*UserBalanceResponse, error) {
	ok, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("NOT_MEMBER", "User is not a member of this group")
	}

	if cached, hit, err := s.cache.GetUserBalance(ctx, groupID, userID); err != nil {
		s.logger.Warn("balance cache read failed",
			zap.String("group_id", groupID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
	} else if hit {
		return &UserBalanceResponse{UserID: userID, GroupID: groupID, Balance: cached}, nil
	}

	balance, err := s.balances.UserBalance(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetUserBalance(ctx, groupID, userID, balance, s.ttl); err != nil {
		s.logger.Warn("balance cache write failed",
			zap.String("group_id", groupID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	return &UserBalanceResponse{UserID: userID, GroupID: groupID, Balance: balance}, nil
}

// GetGroupBalances returns every member's net balance in one consistent
// snapshot, cache-first with a write-through on miss.
func (s *BalanceService) GetGroupBalances(ctx context.Context, groupID, requesterID uuid.UUID) (*GroupBalancesResponse, error) {
	ok, err := s.members.IsMember(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("NOT_MEMBER", "User is not a member of this group")
	}

	if cached, hit, err := s.cache.GetGroupBalances(ctx, groupID); err != nil {
		s.logger.Warn("balance cache read failed",
			zap.String("group_id", groupID.String()),
			zap.Error(err))
	} else if hit {
		return &GroupBalancesResponse{GroupID: groupID, Balances: cached}, nil
	}

	balances, err := s.balances.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetGroupBalances(ctx, groupID, balances, s.ttl); err != nil {
		s.logger.Warn("balance cache write failed",
			zap.String("group_id", groupID.String()),
			zap.Error(err))
	}

	return &GroupBalancesResponse{GroupID: groupID, Balances: balances}, nil
}

// GetSimplifiedBalances returns a settlement plan for the group: the
// transfers that would zero every member's balance.
func (s *BalanceService) GetSimplifiedBalances(ctx context.Context, groupID, requesterID uuid.UUID) ([]TransferResponse, error) {
	snapshot, err := s.GetGroupBalances(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}

	transfers := ledger.Simplify(snapshot.Balances)
	responses := make([]TransferResponse, len(transfers))
	for i, t := range transfers {
		responses[i] = TransferResponse{From: t.From, To: t.To, Amount: t.Amount}
	}
	return responses, nil
}

// CanLeave reports whether the user may leave the group: only with a
// settled balance. The check reads the ledger directly, a stale cached
// figure must not let someone walk out on a debt.
func (s *BalanceService) CanLeave(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	ok, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, shared.NewDomainError("NOT_MEMBER", "User is not a member of this group")
	}

	balance, err := s.balances.UserBalance(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return ledger.Settled(balance), nil
}
