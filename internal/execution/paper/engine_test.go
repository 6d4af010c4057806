package paper

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/tradedesk/internal/execution"
	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/internal/trade"
)

type fixedPrices map[string]decimal.Decimal

func (f fixedPrices) GetAssetPair(symbol string) (market.AssetPair, error) {
	base, quote, _ := market.ParseSymbol(symbol)
	p, ok := f[symbol]
	if !ok {
		return market.AssetPair{}, execution.ErrUnknownProduct
	}
	return market.AssetPair{Base: base, Quote: quote, Price: p}, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	l, err := OpenLedger(LedgerOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	require.NoError(t, l.Seed("USD", d("1000")))
	return NewEngine(l, fixedPrices{"BTC/USD": d("50000")}, cfg)
}

func TestEngineBuyThenSell(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	ctx := context.Background()

	resp, err := e.ExecuteTrade(ctx, execution.Request{
		Side: trade.SideBuy, CashTotal: d("100"), Quantity: d("0.002"), ProductID: "BTC/USD", Mode: trade.ModeInvestor,
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "0.002", resp.Order.FilledAmount.String())
	assert.Equal(t, "0.5", resp.Order.Fee.Decimal.String())

	usd, _ := e.Ledger().Balance("USD")
	btc, _ := e.Ledger().Balance("BTC")
	assert.Equal(t, "899.5", usd.String(), "buyer pays the fee in cash")
	assert.Equal(t, "0.002", btc.String(), "buyer keeps the full quantity")

	resp, err = e.ExecuteTrade(ctx, execution.Request{
		Side: trade.SideSell, Quantity: d("0.002"), ProductID: "BTC/USD", Mode: trade.ModeInvestor,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, "100", resp.Order.TotalValue.String())

	usd, _ = e.Ledger().Balance("USD")
	btc, _ = e.Ledger().Balance("BTC")
	assert.Equal(t, "999", usd.String())
	assert.True(t, btc.IsZero())

	orders, err := e.Ledger().Orders(0)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestEngineBuyToleranceClamps(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	resp, err := e.ExecuteTrade(context.Background(), execution.Request{
		Side: trade.SideBuy, CashTotal: d("1000.01"), ProductID: "BTC/USD",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, "995.02", resp.Order.TotalValue.String())
	assert.Equal(t, "4.9751", resp.Order.Fee.Decimal.String())

	usd, _ := e.Ledger().Balance("USD")
	assert.Equal(t, "0.0049", usd.String())
	assert.False(t, usd.IsNegative())
}

func TestEngineBuyChargesFeeOnTop(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	resp, err := e.ExecuteTrade(context.Background(), execution.Request{
		Side: trade.SideBuy, CashTotal: d("200"), ProductID: "BTC/USD", Mode: trade.ModeInvestor,
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "200", resp.Order.TotalValue.String())
	assert.Equal(t, "1", resp.Order.Fee.Decimal.String())
	assert.Equal(t, "0.004", resp.Order.FilledAmount.String())

	usd, _ := e.Ledger().Balance("USD")
	assert.Equal(t, "799", usd.String())
}

func TestEngineInsufficientIsRealFailure(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	resp, err := e.ExecuteTrade(context.Background(), execution.Request{
		Side: trade.SideBuy, CashTotal: d("5000"), ProductID: "BTC/USD", Mode: trade.ModeLearner,
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.False(t, resp.IsSimulatedFailure)
	assert.Equal(t, trade.ErrInsufficientBalance.Error(), resp.Message)

	usd, _ := e.Ledger().Balance("USD")
	assert.Equal(t, "1000", usd.String())
}

func TestEngineSimulatedFailureOnlyInLearnerMode(t *testing.T) {
	e := newEngine(t, Config{FailEvery: 1})
	req := execution.Request{Side: trade.SideBuy, CashTotal: d("10"), ProductID: "BTC/USD", Mode: trade.ModeLearner}

	resp, err := e.ExecuteTrade(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.True(t, resp.IsSimulatedFailure)
	assert.NotEmpty(t, resp.Message)

	usd, _ := e.Ledger().Balance("USD")
	assert.Equal(t, "1000", usd.String(), "simulated failures leave balances alone")

	req.Mode = trade.ModeInvestor
	resp, err = e.ExecuteTrade(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestEngineUnknownProduct(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	resp, err := e.ExecuteTrade(context.Background(), execution.Request{
		Side: trade.SideBuy, CashTotal: d("10"), ProductID: "DOGE/USD",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestLedgerSeedKeepsExisting(t *testing.T) {
	l, err := OpenLedger(LedgerOptions{Path: t.TempDir()})
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Seed("USD", d("10")))
	require.NoError(t, l.Seed("USD", d("99")))
	bal, err := l.Balances()
	require.NoError(t, err)
	assert.Equal(t, "10", bal["USD"].String())
}

func TestLedgerAccountBalances(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	require.NoError(t, e.Ledger().Seed("BTC", d("0.25")))

	bs, err := e.Ledger().AccountBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, "BTC", bs[0].Asset)
	assert.True(t, bs[1].Valid())
}
