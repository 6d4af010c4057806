package paperserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/tradedesk/internal/account"
	"github.com/zappabad/tradedesk/internal/execution"
	"github.com/zappabad/tradedesk/internal/execution/httpexec"
	"github.com/zappabad/tradedesk/internal/execution/paper"
	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/internal/trade"
)

type staticPairs []market.AssetPair

func (s staticPairs) Pairs() []market.AssetPair { return s }

func (s staticPairs) GetAssetPair(symbol string) (market.AssetPair, error) {
	for _, p := range s {
		if p.Symbol() == symbol {
			return p, nil
		}
	}
	return market.AssetPair{}, execution.ErrUnknownProduct
}

func newServer(t *testing.T, cfg paper.Config) *httptest.Server {
	t.Helper()
	pairs := staticPairs{{Base: "BTC", Quote: "USD", Price: decimal.NewFromInt(50000)}}

	ledger, err := paper.OpenLedger(paper.LedgerOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	require.NoError(t, ledger.Seed("USD", decimal.NewFromInt(1000)))

	srv := httptest.NewServer(New(paper.NewEngine(ledger, pairs, cfg), pairs, Config{TickInterval: 10 * time.Millisecond}).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, paper.DefaultConfig())
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTradeThroughHTTPExecutor(t *testing.T) {
	srv := newServer(t, paper.DefaultConfig())
	client := httpexec.NewClient(httpexec.Config{BaseURL: srv.URL})

	resp, err := client.ExecuteTrade(context.Background(), execution.Request{
		Side: trade.SideBuy, CashTotal: decimal.NewFromInt(100), ProductID: "BTC/USD", Mode: trade.ModeInvestor,
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "0.002", resp.Order.FilledAmount.String())

	r, err := http.Get(srv.URL + "/api/v1/balances")
	require.NoError(t, err)
	defer r.Body.Close()
	var bal account.BalancesResponse
	require.NoError(t, json.NewDecoder(r.Body).Decode(&bal))
	require.Len(t, bal.Balances, 2)
	assert.Equal(t, "BTC", bal.Balances[0].Asset)
	assert.Equal(t, "899.5", bal.Balances[1].Available.String())

	r2, err := http.Get(srv.URL + "/api/v1/orders?limit=5")
	require.NoError(t, err)
	defer r2.Body.Close()
	var orders OrdersResponse
	require.NoError(t, json.NewDecoder(r2.Body).Decode(&orders))
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, resp.Order.ID, orders.Orders[0].ID)
}

func TestTradeSimulatedFailureIsRejection(t *testing.T) {
	srv := newServer(t, paper.Config{FailEvery: 1})
	client := httpexec.NewClient(httpexec.Config{BaseURL: srv.URL})

	resp, err := client.ExecuteTrade(context.Background(), execution.Request{
		Side: trade.SideBuy, CashTotal: decimal.NewFromInt(100), ProductID: "BTC/USD", Mode: trade.ModeLearner,
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.True(t, resp.IsSimulatedFailure)
}

func TestTradeBadJSON(t *testing.T) {
	srv := newServer(t, paper.DefaultConfig())
	r, err := http.Post(srv.URL+"/api/v1/trades", "application/json", bytes.NewBufferString(`{"side":"HOLD"}`))
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestOrdersBadLimit(t *testing.T) {
	srv := newServer(t, paper.DefaultConfig())
	r, err := http.Get(srv.URL + "/api/v1/orders?limit=x")
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestPricesWebSocket(t *testing.T) {
	srv := newServer(t, paper.DefaultConfig())
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/prices", nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var tick market.Tick
	require.NoError(t, conn.ReadJSON(&tick))
	assert.Equal(t, "BTC/USD", tick.Symbol)
	assert.Equal(t, "50000", tick.Price.String())
}
