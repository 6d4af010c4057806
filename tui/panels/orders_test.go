package panels

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/internal/trade"
	"github.com/zappabad/tradedesk/tui/styles"
)

func settledOrder(side trade.Side, status trade.Status, simulated bool, reason string) trade.Order {
	return trade.Order{
		ID:              "o-1",
		Side:            side,
		Asset:           "BTC",
		RequestedAmount: decimal.NewFromInt(100),
		FilledAmount:    decimal.RequireFromString("0.002"),
		Price:           decimal.NewFromInt(50000),
		Status:          status,
		Simulated:       simulated,
		FailureReason:   reason,
		CreatedAt:       time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestOrderStatusTextCompleted(t *testing.T) {
	text, style := OrderStatusText(settledOrder(trade.SideBuy, trade.StatusCompleted, false, ""), "USD")
	assert.Equal(t, "✓ Bought 0.00200000 BTC @ 50000.00 USD", text)
	assert.Equal(t, styles.BuyColor, style.GetForeground())
}

func TestOrderStatusTextSimulatedFailureIsEncouraging(t *testing.T) {
	text, style := OrderStatusText(settledOrder(trade.SideBuy, trade.StatusFailed, true, "Market moved too fast."), "USD")
	assert.Contains(t, text, "Practice run: Market moved too fast")
	assert.Contains(t, text, "have another go")
	assert.Equal(t, styles.AccentColor, style.GetForeground())
}

func TestOrderStatusTextRealFailureIsAlarming(t *testing.T) {
	text, style := OrderStatusText(settledOrder(trade.SideSell, trade.StatusFailed, false, "insufficient funds"), "USD")
	assert.Equal(t, "✗ Order failed: insufficient funds", text)
	assert.Equal(t, styles.SellColor, style.GetForeground())
}

func TestOrderStatusTextPending(t *testing.T) {
	o := settledOrder(trade.SideBuy, trade.StatusPending, false, "")
	text, _ := OrderStatusText(o, "USD")
	assert.Equal(t, "Buying BTC with 100.00 USD...", text)
}

func TestOrdersPanelHistory(t *testing.T) {
	p := NewOrdersPanel("USD")
	p.SetSize(100, 20)
	p.SetFocus(true)

	_, ok := p.Current()
	assert.False(t, ok)
	assert.Contains(t, p.View(), "No orders yet")

	p.SetHistory([]trade.Order{
		settledOrder(trade.SideBuy, trade.StatusCompleted, false, ""),
		settledOrder(trade.SideSell, trade.StatusFailed, true, "practice"),
	})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, p.selectedIndex)

	p.SetHistory(nil)
	assert.Equal(t, 0, p.selectedIndex)

	p.SetCurrent(settledOrder(trade.SideBuy, trade.StatusCompleted, false, ""))
	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "o-1", cur.ID)
}

func TestMarketsPanelSelection(t *testing.T) {
	p := NewMarketsPanel([]market.AssetPair{
		{Base: "BTC", Quote: "USD", Price: decimal.NewFromInt(50000)},
		{Base: "ETH", Quote: "USD", Price: decimal.NewFromInt(3000)},
	})
	p.SetFocus(true)

	p.UpdatePair(market.AssetPair{Base: "ETH", Quote: "USD", Price: decimal.NewFromInt(3100)})
	p.UpdatePair(market.AssetPair{Base: "DOGE", Quote: "USD", Price: decimal.NewFromInt(1)})

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	pair, ok := p.SelectedPair()
	require.True(t, ok)
	assert.Equal(t, "3100", pair.Price.String())

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	sel, ok := cmd().(PairSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "ETH", sel.Pair.Base)
}
