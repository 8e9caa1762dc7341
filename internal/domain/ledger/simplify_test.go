package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balance(id uuid.UUID, amount float64) MemberBalance {
	return MemberBalance{UserID: id, Balance: decimal.NewFromFloat(amount)}
}

// orderedIDs returns n fresh UUIDs sorted ascending so tests can rely on
// a known ID order for tie-breaking.
func orderedIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if ids[j].String() < ids[i].String() {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	return ids
}

func TestSimplify_SingleCreditorTwoDebtors(t *testing.T) {
	ids := orderedIDs(3)
	a, b, c := ids[0], ids[1], ids[2]

	transfers := Simplify([]MemberBalance{
		balance(a, 60.00),
		balance(b, -30.00),
		balance(c, -30.00),
	})

	require.Len(t, transfers, 2)
	// Debtors tie at -30; the lower ID pays first.
	assert.Equal(t, b, transfers[0].From)
	assert.Equal(t, a, transfers[0].To)
	assert.True(t, transfers[0].Amount.Equal(decimal.NewFromFloat(30.00)))
	assert.Equal(t, c, transfers[1].From)
	assert.Equal(t, a, transfers[1].To)
	assert.True(t, transfers[1].Amount.Equal(decimal.NewFromFloat(30.00)))
}

func TestSimplify_AfterPartialSettlement(t *testing.T) {
	ids := orderedIDs(3)
	a, b, c := ids[0], ids[1], ids[2]

	transfers := Simplify([]MemberBalance{
		balance(a, 30.00),
		balance(b, 0.00),
		balance(c, -30.00),
	})

	require.Len(t, transfers, 1)
	assert.Equal(t, c, transfers[0].From)
	assert.Equal(t, a, transfers[0].To)
	assert.True(t, transfers[0].Amount.Equal(decimal.NewFromFloat(30.00)))
}

func TestSimplify_AllSettled(t *testing.T) {
	transfers := Simplify([]MemberBalance{
		balance(uuid.New(), 0.00),
		balance(uuid.New(), 0.005),
		balance(uuid.New(), -0.005),
	})
	assert.Empty(t, transfers)
}

func TestSimplify_Empty(t *testing.T) {
	assert.Empty(t, Simplify(nil))
}

func TestSimplify_ChainCollapses(t *testing.T) {
	// A owes B, B owes C: net positions collapse to a single A->C payment.
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	transfers := Simplify([]MemberBalance{
		balance(a, -10.00),
		balance(b, 0.00),
		balance(c, 10.00),
	})

	require.Len(t, transfers, 1)
	assert.Equal(t, a, transfers[0].From)
	assert.Equal(t, c, transfers[0].To)
	assert.True(t, transfers[0].Amount.Equal(decimal.NewFromFloat(10.00)))
}

func TestSimplify_MassBalance(t *testing.T) {
	ids := orderedIDs(6)
	balances := []MemberBalance{
		balance(ids[0], 120.50),
		balance(ids[1], 45.25),
		balance(ids[2], -80.00),
		balance(ids[3], -30.75),
		balance(ids[4], -55.00),
		balance(ids[5], 0.00),
	}

	transfers := Simplify(balances)

	paid := make(map[uuid.UUID]decimal.Decimal)
	received := make(map[uuid.UUID]decimal.Decimal)
	for _, tr := range transfers {
		assert.True(t, tr.Amount.GreaterThanOrEqual(Epsilon))
		paid[tr.From] = paid[tr.From].Add(tr.Amount)
		received[tr.To] = received[tr.To].Add(tr.Amount)
	}

	for _, b := range balances {
		net := received[b.UserID].Sub(paid[b.UserID])
		assert.True(t, net.Sub(b.Balance).Abs().LessThan(Epsilon),
			"user %s: transfers net %s, balance %s", b.UserID, net, b.Balance)
	}
}

func TestSimplify_Deterministic(t *testing.T) {
	ids := orderedIDs(4)
	snapshot := func() []MemberBalance {
		return []MemberBalance{
			balance(ids[0], 50.00),
			balance(ids[1], 50.00),
			balance(ids[2], -50.00),
			balance(ids[3], -50.00),
		}
	}

	first := Simplify(snapshot())
	second := Simplify(snapshot())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].From, second[i].From)
		assert.Equal(t, first[i].To, second[i].To)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
	// Tied magnitudes pair lowest IDs first.
	assert.Equal(t, ids[2], first[0].From)
	assert.Equal(t, ids[0], first[0].To)
}

func TestSimplify_InputNotMutated(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	balances := []MemberBalance{balance(a, 20.00), balance(b, -20.00)}

	Simplify(balances)

	assert.True(t, balances[0].Balance.Equal(decimal.NewFromFloat(20.00)))
	assert.True(t, balances[1].Balance.Equal(decimal.NewFromFloat(-20.00)))
}

func TestSumBalances(t *testing.T) {
	sum := SumBalances([]MemberBalance{
		balance(uuid.New(), 60.00),
		balance(uuid.New(), -30.00),
		balance(uuid.New(), -30.00),
	})
	assert.True(t, sum.IsZero())
}
