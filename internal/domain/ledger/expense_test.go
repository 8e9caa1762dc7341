package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func equalInputs(ids ...uuid.UUID) []SplitInput {
	inputs := make([]SplitInput, len(ids))
	for i, id := range ids {
		inputs[i] = SplitInput{UserID: id}
	}
	return inputs
}

func splitSum(splits []ExpenseSplit) decimal.Decimal {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	return total
}

func TestSplitType_IsValid(t *testing.T) {
	tests := []struct {
		splitType SplitType
		isValid   bool
	}{
		{SplitTypeEqual, true},
		{SplitTypeExact, true},
		{SplitTypePercentage, true},
		{SplitType("RANDOM"), false},
		{SplitType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.splitType), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.splitType.IsValid())
		})
	}
}

func TestNewExpense_Equal(t *testing.T) {
	groupID := uuid.New()
	payer := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	expense, err := NewExpense(
		groupID, payer,
		valueobject.NewMoneyINRFromFloat(90.00),
		"Dinner",
		SplitTypeEqual,
		equalInputs(a, b, c),
		time.Now(),
		payer,
	)
	require.NoError(t, err)

	assert.Equal(t, groupID, expense.GroupID)
	assert.Equal(t, SplitTypeEqual, expense.SplitType)
	require.Len(t, expense.Splits, 3)
	for _, s := range expense.Splits {
		assert.Equal(t, expense.ID, s.ExpenseID)
		assert.True(t, s.Amount.Equal(decimal.NewFromFloat(30.00)))
	}
}

func TestNewExpense_Validation(t *testing.T) {
	groupID := uuid.New()
	payer := uuid.New()
	inputs := equalInputs(payer)

	tests := []struct {
		name string
		fn   func() (*Expense, error)
	}{
		{"zero amount", func() (*Expense, error) {
			return NewExpense(groupID, payer, valueobject.Zero(valueobject.INR), "x", SplitTypeEqual, inputs, time.Now(), payer)
		}},
		{"negative amount", func() (*Expense, error) {
			return NewExpense(groupID, payer, valueobject.NewMoneyINRFromFloat(-5), "x", SplitTypeEqual, inputs, time.Now(), payer)
		}},
		{"nil group", func() (*Expense, error) {
			return NewExpense(uuid.Nil, payer, valueobject.NewMoneyINRFromFloat(10), "x", SplitTypeEqual, inputs, time.Now(), payer)
		}},
		{"invalid split type", func() (*Expense, error) {
			return NewExpense(groupID, payer, valueobject.NewMoneyINRFromFloat(10), "x", SplitType("BOGUS"), inputs, time.Now(), payer)
		}},
		{"no participants", func() (*Expense, error) {
			return NewExpense(groupID, payer, valueobject.NewMoneyINRFromFloat(10), "x", SplitTypeEqual, nil, time.Now(), payer)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.Error(t, err)
		})
	}
}

func TestComputeEqualSplits_SumIsExact(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		n      int
	}{
		{"90 over 3", 90.00, 3},
		{"100 over 3", 100.00, 3},
		{"0.01 over 3", 0.01, 3},
		{"7 over 2", 7.00, 2},
		{"99.99 over 7", 99.99, 7},
		{"1000 over 11", 1000.00, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]uuid.UUID, tt.n)
			for i := range ids {
				ids[i] = uuid.New()
			}
			amount := decimal.NewFromFloat(tt.amount)
			splits := computeEqualSplits(amount, ids)

			require.Len(t, splits, tt.n)
			assert.True(t, splitSum(splits).Equal(amount),
				"sum %s != amount %s", splitSum(splits), amount)
		})
	}
}

func TestComputeEqualSplits_RemainderToLowestID(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	amount := decimal.NewFromFloat(100.00)

	splits := computeEqualSplits(amount, ids)
	require.Len(t, splits, 3)

	lowest := ids[0]
	for _, id := range ids[1:] {
		if id.String() < lowest.String() {
			lowest = id
		}
	}

	for _, s := range splits {
		if s.UserID == lowest {
			assert.True(t, s.Amount.Equal(decimal.NewFromFloat(33.34)))
		} else {
			assert.True(t, s.Amount.Equal(decimal.NewFromFloat(33.33)))
		}
	}
}

func TestComputeEqualSplits_CallerOrderIndependent(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	amount := decimal.NewFromFloat(100.00)

	first := computeEqualSplits(amount, []uuid.UUID{a, b, c})
	second := computeEqualSplits(amount, []uuid.UUID{c, a, b})

	byUser := func(splits []ExpenseSplit) map[uuid.UUID]string {
		m := make(map[uuid.UUID]string)
		for _, s := range splits {
			m[s.UserID] = s.Amount.StringFixed(2)
		}
		return m
	}
	assert.Equal(t, byUser(first), byUser(second))
}

func TestResolveSplits_Exact(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	amount := decimal.NewFromFloat(100.00)

	splits, err := ResolveSplits(SplitTypeExact, amount, []SplitInput{
		{UserID: a, Amount: decimal.NewFromFloat(40.00)},
		{UserID: b, Amount: decimal.NewFromFloat(60.00)},
	})
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.True(t, splitSum(splits).Equal(amount))
}

func TestResolveSplits_ExactSumMismatch(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	// 40 + 59.99 = 99.99, a full cent short of 100: rejected
	_, err := ResolveSplits(SplitTypeExact, decimal.NewFromFloat(100.00), []SplitInput{
		{UserID: a, Amount: decimal.NewFromFloat(40.00)},
		{UserID: b, Amount: decimal.NewFromFloat(59.99)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must equal expense amount")
}

func TestResolveSplits_ExactWithinEpsilon(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	// 50 + 50 = 100, half a cent above 99.995: inside the tolerance
	_, err := ResolveSplits(SplitTypeExact, decimal.RequireFromString("99.995"), []SplitInput{
		{UserID: a, Amount: decimal.NewFromFloat(50.00)},
		{UserID: b, Amount: decimal.NewFromFloat(50.00)},
	})
	assert.NoError(t, err)
}

func TestResolveSplits_Percentage(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	amount := decimal.NewFromFloat(200.00)

	splits, err := ResolveSplits(SplitTypePercentage, amount, []SplitInput{
		{UserID: a, Percentage: pct(30)},
		{UserID: b, Percentage: pct(70)},
	})
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.True(t, splits[0].Amount.Equal(decimal.NewFromFloat(60.00)))
	assert.True(t, splits[1].Amount.Equal(decimal.NewFromFloat(140.00)))
}

func TestResolveSplits_PercentageSumMismatch(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	_, err := ResolveSplits(SplitTypePercentage, decimal.NewFromFloat(100.00), []SplitInput{
		{UserID: a, Percentage: pct(30)},
		{UserID: b, Percentage: pct(60)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100%")
}

func TestResolveSplits_PercentageInconsistentAmount(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	_, err := ResolveSplits(SplitTypePercentage, decimal.NewFromFloat(100.00), []SplitInput{
		{UserID: a, Percentage: pct(50), Amount: decimal.NewFromFloat(80.00)},
		{UserID: b, Percentage: pct(50)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doesn't match percentage")
}

func TestResolveSplits_PercentageMissing(t *testing.T) {
	_, err := ResolveSplits(SplitTypePercentage, decimal.NewFromFloat(100.00), []SplitInput{
		{UserID: uuid.New()},
	})
	assert.Error(t, err)
}

func TestResolveSplits_DuplicateParticipant(t *testing.T) {
	a := uuid.New()
	_, err := ResolveSplits(SplitTypeEqual, decimal.NewFromFloat(10.00), []SplitInput{
		{UserID: a},
		{UserID: a},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Duplicate participant")
}

func TestExpense_Replace(t *testing.T) {
	payer := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	expense, err := NewExpense(
		uuid.New(), payer,
		valueobject.NewMoneyINRFromFloat(90.00),
		"Dinner",
		SplitTypeEqual,
		equalInputs(a, b, c),
		time.Now(),
		payer,
	)
	require.NoError(t, err)

	err = expense.Replace(valueobject.NewMoneyINRFromFloat(120.00), SplitTypeExact, []SplitInput{
		{UserID: a, Amount: decimal.NewFromFloat(50.00)},
		{UserID: b, Amount: decimal.NewFromFloat(70.00)},
	})
	require.NoError(t, err)

	assert.Equal(t, SplitTypeExact, expense.SplitType)
	assert.True(t, expense.Amount.Equal(decimal.NewFromFloat(120.00)))
	require.Len(t, expense.Splits, 2)
	for _, s := range expense.Splits {
		assert.Equal(t, expense.ID, s.ExpenseID)
	}
}

func TestExpense_AffectedUsers(t *testing.T) {
	payer := uuid.New()
	a, b := uuid.New(), uuid.New()

	expense, err := NewExpense(
		uuid.New(), payer,
		valueobject.NewMoneyINRFromFloat(60.00),
		"Taxi",
		SplitTypeEqual,
		equalInputs(a, b),
		time.Now(),
		payer,
	)
	require.NoError(t, err)

	affected := expense.AffectedUsers()
	assert.Len(t, affected, 3)
	assert.True(t, affected.Contains(payer))
	assert.True(t, affected.Contains(a))
	assert.True(t, affected.Contains(b))
}
