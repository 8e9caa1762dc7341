package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer is one suggested payment in a simplified debt graph
type Transfer struct {
	From   uuid.UUID       `json:"from"`
	To     uuid.UUID       `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Simplify reduces a group's net balances to a minimal-ish set of transfers
// using a greedy largest-creditor / largest-debtor matching. It operates on
// net positions only, so the suggested payments settle everyone even though
// they need not follow the original debt edges. The output is deterministic
// for a given balance snapshot: ties on magnitude break toward the lower
// user ID. Participants within one cent of zero are skipped entirely, and no
// transfer smaller than one cent is emitted.
func Simplify(balances []MemberBalance) []Transfer {
	var creditors, debtors []MemberBalance
	for _, b := range balances {
		if b.IsSettled() {
			continue
		}
		if b.Balance.IsPositive() {
			creditors = append(creditors, b)
		} else {
			debtors = append(debtors, b)
		}
	}

	// Largest magnitude first, lowest user ID on ties.
	sort.Slice(creditors, func(i, j int) bool {
		if !creditors[i].Balance.Equal(creditors[j].Balance) {
			return creditors[i].Balance.GreaterThan(creditors[j].Balance)
		}
		return creditors[i].UserID.String() < creditors[j].UserID.String()
	})
	sort.Slice(debtors, func(i, j int) bool {
		if !debtors[i].Balance.Equal(debtors[j].Balance) {
			return debtors[i].Balance.LessThan(debtors[j].Balance)
		}
		return debtors[i].UserID.String() < debtors[j].UserID.String()
	})

	transfers := make([]Transfer, 0, len(creditors)+len(debtors))
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		credit := creditors[ci].Balance
		debt := debtors[di].Balance.Neg()

		amount := decimal.Min(credit, debt)
		if amount.GreaterThanOrEqual(Epsilon) {
			transfers = append(transfers, Transfer{
				From:   debtors[di].UserID,
				To:     creditors[ci].UserID,
				Amount: amount,
			})
		}

		creditors[ci].Balance = credit.Sub(amount)
		debtors[di].Balance = debtors[di].Balance.Add(amount)

		if Settled(creditors[ci].Balance) {
			ci++
		}
		if Settled(debtors[di].Balance) {
			di++
		}
	}
	return transfers
}
