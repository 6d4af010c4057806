package desk

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/tradedesk/internal/config"
	"github.com/zappabad/tradedesk/internal/trade"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paper.LedgerPath = ""
	cfg.History.Path = filepath.Join(dir, "history.db")
	return cfg
}

func TestDeskEmbeddedRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer d.Close()

	require.NotNil(t, d.Paper)
	assert.Equal(t, "10000", d.Account.GetBalance("USD").Available.String())

	ticket := trade.NewTicket("BTC", trade.SideBuy)
	pair, err := d.Market.GetAssetPair("BTC/USD")
	require.NoError(t, err)
	ticket.SelectAsset("BTC", pair.Price)
	ticket.SetCashAmount("100")

	settled, err := d.Submitter.Submit(context.Background(), trade.ModeInvestor, ticket)
	require.NoError(t, err)
	o := settled.Snapshot()
	require.Equal(t, trade.StatusCompleted, o.Status, o.FailureReason)
	assert.NotEqual(t, o.ClientID, o.ID)

	assert.Equal(t, "9899.5", d.Account.GetBalance("USD").Available.String())
	assert.True(t, d.Account.GetBalance("BTC").Available.IsPositive())

	orders := d.Account.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, o.ClientID, orders[0].ClientID)
	assert.Empty(t, ticket.Intent().CashAmount)
}

func TestDeskPracticeFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paper.FailEvery = 1
	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer d.Close()

	ticket := trade.NewTicket("ETH", trade.SideBuy)
	ticket.SelectAsset("ETH", cfg.Market.Pairs[1].Price)
	ticket.SetCashAmount("50")

	settled, err := d.Submitter.Submit(context.Background(), trade.ModeLearner, ticket)
	require.NoError(t, err)
	o := settled.Snapshot()
	assert.Equal(t, trade.StatusFailed, o.Status)
	assert.True(t, o.Simulated)
	assert.Equal(t, "50", ticket.Intent().CashAmount)
	assert.Equal(t, "10000", d.Account.GetBalance("USD").Available.String())
}
