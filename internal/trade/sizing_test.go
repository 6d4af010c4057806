package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPercentageBuyFullFloors(t *testing.T) {
	cash, qty, ok := ApplyPercentage(100, SideBuy, dec("50000"), dec("1000.019"), decimal.Zero)
	require.True(t, ok)
	assert.Equal(t, "1000.01", cash)
	assert.Equal(t, "0.02000020", qty)
}

func TestApplyPercentageBuyPartialRounds(t *testing.T) {
	cash, _, ok := ApplyPercentage(50, SideBuy, dec("50000"), dec("1000.015"), decimal.Zero)
	require.True(t, ok)
	assert.Equal(t, "500.01", cash)

	cash, qty, ok := ApplyPercentage(25, SideBuy, dec("20000"), dec("1000"), decimal.Zero)
	require.True(t, ok)
	assert.Equal(t, "250.00", cash)
	assert.Equal(t, "0.01250000", qty)
}

func TestApplyPercentageSell(t *testing.T) {
	cash, qty, ok := ApplyPercentage(25, SideSell, dec("40000"), decimal.Zero, dec("1"))
	require.True(t, ok)
	assert.Equal(t, "0.25000000", qty)
	assert.Equal(t, "10000.00", cash)

	_, qty, ok = ApplyPercentage(100, SideSell, dec("40000"), decimal.Zero, dec("0.123456789"))
	require.True(t, ok)
	assert.Equal(t, "0.12345679", qty)
}

func TestApplyPercentageRejects(t *testing.T) {
	_, _, ok := ApplyPercentage(50, SideBuy, decimal.Zero, dec("100"), decimal.Zero)
	assert.False(t, ok, "zero price")

	_, _, ok = ApplyPercentage(33, SideBuy, dec("10"), dec("100"), decimal.Zero)
	assert.False(t, ok, "unsupported percentage")
}

func TestApplyPercentageFullBalanceFloorsToCents(t *testing.T) {
	cash, _, ok := ApplyPercentage(100, SideBuy, dec("50000"), dec("100.004"), decimal.Zero)
	require.True(t, ok)
	assert.Equal(t, "100.00", cash)

	cash, _, _ = ApplyPercentage(100, SideBuy, dec("50000"), dec("100.009"), decimal.Zero)
	assert.Equal(t, "100.00", cash, "floor, not round")
}
