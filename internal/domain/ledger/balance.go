package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberBalance is a group member's net position. Positive means the group
// owes the member, negative means the member owes the group.
type MemberBalance struct {
	UserID  uuid.UUID       `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// IsSettled reports whether the balance is within one cent of zero
func (b MemberBalance) IsSettled() bool {
	return Settled(b.Balance)
}

// SumBalances adds up a slice of member balances. For a complete group
// snapshot the sum is zero within one cent of accumulated rounding.
func SumBalances(balances []MemberBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Balance)
	}
	return total
}
