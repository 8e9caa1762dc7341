package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormBalanceRepository implements BalanceRepository using GORM. Each query
// is a single statement, so the balance it returns is computed from one
// consistent snapshot of the ledger even under concurrent writes.
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// userBalanceQuery nets everything the user put in against everything they
// owe: expenses paid plus settlements paid, minus split shares owed, minus
// settlements received.
const userBalanceQuery = `
SELECT
	COALESCE((SELECT SUM(e.amount) FROM expenses e
		WHERE e.group_id = @group_id AND e.paid_by = @user_id), 0)
	+ COALESCE((SELECT SUM(s.amount) FROM settlements s
		WHERE s.group_id = @group_id AND s.paid_by = @user_id), 0)
	- COALESCE((SELECT SUM(es.amount) FROM expense_splits es
		JOIN expenses e ON e.id = es.expense_id
		WHERE e.group_id = @group_id AND es.user_id = @user_id), 0)
	- COALESCE((SELECT SUM(s.amount) FROM settlements s
		WHERE s.group_id = @group_id AND s.paid_to = @user_id), 0)
	AS balance`

const groupBalancesQuery = `
SELECT
	gm.user_id AS user_id,
	COALESCE(paid.total, 0) + COALESCE(settled_out.total, 0)
	- COALESCE(owed.total, 0) - COALESCE(settled_in.total, 0) AS balance
FROM group_members gm
LEFT JOIN (
	SELECT e.paid_by AS user_id, SUM(e.amount) AS total
	FROM expenses e WHERE e.group_id = @group_id GROUP BY e.paid_by
) paid ON paid.user_id = gm.user_id
LEFT JOIN (
	SELECT es.user_id AS user_id, SUM(es.amount) AS total
	FROM expense_splits es
	JOIN expenses e ON e.id = es.expense_id
	WHERE e.group_id = @group_id GROUP BY es.user_id
) owed ON owed.user_id = gm.user_id
LEFT JOIN (
	SELECT s.paid_by AS user_id, SUM(s.amount) AS total
	FROM settlements s WHERE s.group_id = @group_id GROUP BY s.paid_by
) settled_out ON settled_out.user_id = gm.user_id
LEFT JOIN (
	SELECT s.paid_to AS user_id, SUM(s.amount) AS total
	FROM settlements s WHERE s.group_id = @group_id GROUP BY s.paid_to
) settled_in ON settled_in.user_id = gm.user_id
WHERE gm.group_id = @group_id
ORDER BY gm.user_id ASC`

// UserBalance computes one member's net position in a single statement
func (r *GormBalanceRepository) UserBalance(ctx context.Context, groupID, userID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Balance decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Raw(userBalanceQuery,
			map[string]any{"group_id": groupID, "user_id": userID}).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Balance.Round(2), nil
}

// GroupBalances computes every member's net position in a single statement,
// ordered by user ID for deterministic output.
func (r *GormBalanceRepository) GroupBalances(ctx context.Context, groupID uuid.UUID) ([]ledger.MemberBalance, error) {
	var rows []struct {
		UserID  uuid.UUID
		Balance decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Raw(groupBalancesQuery, map[string]any{"group_id": groupID}).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]ledger.MemberBalance, len(rows))
	for i, row := range rows {
		balances[i] = ledger.MemberBalance{
			UserID:  row.UserID,
			Balance: row.Balance.Round(2),
		}
	}
	return balances, nil
}

var _ ledger.BalanceRepository = (*GormBalanceRepository)(nil)
