package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupRepository defines data access for groups and their memberships
type GroupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Group, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Group, error)
	Members(ctx context.Context, groupID uuid.UUID) ([]*Membership, error)
	// Create persists the group and its creator's admin membership atomically
	Create(ctx context.Context, group *Group) error
	Update(ctx context.Context, group *Group) error
	AddMember(ctx context.Context, membership *Membership) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
}

// MembershipOracle answers membership and role questions. Implemented by the
// group repository; split out so services that only validate membership do
// not depend on the full group API.
type MembershipOracle interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// ExpenseRepository defines data access for expenses and their splits.
// Create and Update persist the expense and its splits in one transaction;
// Update replaces the split set wholesale.
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Expense, error)
	Create(ctx context.Context, expense *Expense) error
	Update(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettlementRepository defines data access for settlements
type SettlementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Settlement, error)
	FindByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Settlement, error)
	Create(ctx context.Context, settlement *Settlement) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BalanceRepository computes net balances from the ledger. Each method runs
// as a single statement so the figures it returns come from one consistent
// snapshot of the underlying rows.
type BalanceRepository interface {
	UserBalance(ctx context.Context, groupID, userID uuid.UUID) (decimal.Decimal, error)
	GroupBalances(ctx context.Context, groupID uuid.UUID) ([]MemberBalance, error)
}

// BalanceCache stores computed balances keyed by user and group. A false
// second return from Get means a miss. Implementations must treat their
// backend as optional: errors are returned for logging but callers proceed
// as if the lookup missed.
type BalanceCache interface {
	GetUserBalance(ctx context.Context, groupID, userID uuid.UUID) (decimal.Decimal, bool, error)
	SetUserBalance(ctx context.Context, groupID, userID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error
	GetGroupBalances(ctx context.Context, groupID uuid.UUID) ([]MemberBalance, bool, error)
	SetGroupBalances(ctx context.Context, groupID uuid.UUID, balances []MemberBalance, ttl time.Duration) error
	DeleteUserBalance(ctx context.Context, groupID, userID uuid.UUID) error
	DeleteGroupBalances(ctx context.Context, groupID uuid.UUID) error
}

// BalanceInvalidator evicts cached balances after a ledger mutation commits.
// Callers log the returned error and continue; eviction failure must never
// fail the write that triggered it.
type BalanceInvalidator interface {
	Invalidate(ctx context.Context, groupID uuid.UUID, users AffectedUsers) error
}
