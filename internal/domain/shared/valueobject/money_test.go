package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromFloat(99.90), INR)
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(99.90)))
	assert.Equal(t, INR, m.Currency())

	_, err = NewMoney(decimal.NewFromInt(1), Currency(""))
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyINRFromFloat(10.50)
	b := NewMoneyINRFromFloat(4.25)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(14.75)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromFloat(6.25)))

	usd, err := NewMoney(decimal.NewFromInt(1), USD)
	require.NoError(t, err)
	_, err = a.Add(usd)
	assert.Error(t, err)
}

func TestMoney_IsSettled(t *testing.T) {
	assert.True(t, Zero(INR).IsSettled())
	assert.True(t, NewMoneyINRFromFloat(0.005).IsSettled())
	assert.True(t, NewMoneyINRFromFloat(-0.005).IsSettled())
	assert.False(t, NewMoneyINRFromFloat(0.01).IsSettled())
	assert.False(t, NewMoneyINRFromFloat(-0.02).IsSettled())
}

func TestMoney_Round(t *testing.T) {
	m := NewMoneyINR(decimal.NewFromFloat(33.3333))
	assert.Equal(t, "33.33", m.Round().Amount().StringFixed(2))

	m = NewMoneyINR(decimal.NewFromFloat(0.005))
	assert.Equal(t, "0.01", m.Round().Amount().StringFixed(2))
}

func TestMoney_CalculatePercentage(t *testing.T) {
	m := NewMoneyINRFromFloat(200.00)
	share := m.CalculatePercentage(decimal.NewFromInt(30))
	assert.True(t, share.Amount().Equal(decimal.NewFromFloat(60.00)))
}

func TestMoney_EqualsWithinCent(t *testing.T) {
	a := NewMoneyINRFromFloat(100.00)
	b := NewMoneyINRFromFloat(99.995)
	c := NewMoneyINRFromFloat(99.98)

	assert.True(t, a.EqualsWithinCent(b))
	assert.False(t, a.EqualsWithinCent(c))
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyINRFromFloat(45.60)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}
