package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/tradedesk/internal/trade"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tradedesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, trade.ModeLearner, cfg.Mode)
	assert.Equal(t, FeedRandomWalk, cfg.Market.Feed)
	assert.Len(t, cfg.Market.Pairs, 3)
	assert.Equal(t, "USD", cfg.Account.QuoteAsset)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
mode: investor
log:
  level: debug
  compress: false
market:
  feed: websocket
  ws_url: ws://localhost:8089/ws/prices
  interval: 250ms
  pairs:
    - {base: btc, quote: usd, price: "42000.5"}
execution:
  live_url: http://localhost:8089
  timeout: 10s
paper:
  starting_cash: "2500"
  fail_every: 3
account:
  refresh_interval: 15s
history:
  path: /tmp/h.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, trade.ModeInvestor, cfg.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Compress)
	assert.Equal(t, FeedWebSocket, cfg.Market.Feed)
	assert.Equal(t, 250*time.Millisecond, cfg.Market.Interval)
	require.Len(t, cfg.Market.Pairs, 1)
	assert.Equal(t, "BTC/USD", cfg.Market.Pairs[0].Symbol())
	assert.Equal(t, "42000.5", cfg.Market.Pairs[0].Price.String())
	assert.Equal(t, "http://localhost:8089", cfg.Execution.LiveURL)
	assert.Equal(t, 10*time.Second, cfg.Execution.Timeout)
	assert.Equal(t, "2500", cfg.Paper.StartingCash.String())
	assert.Equal(t, 3, cfg.Paper.FailEvery)
	assert.Equal(t, 15*time.Second, cfg.Account.RefreshInterval)
	assert.Equal(t, "/tmp/h.db", cfg.History.Path)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRADEDESK_MODE", "live")
	t.Setenv("TRADEDESK_LOG_LEVEL", "warn")
	t.Setenv("TRADEDESK_PRACTICE_URL", "http://paper:8089")
	t.Setenv("TRADEDESK_FAIL_EVERY", "2")

	cfg, err := Load(writeFile(t, "mode: learner\n"))
	require.NoError(t, err)
	assert.Equal(t, trade.ModeInvestor, cfg.Mode)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "http://paper:8089", cfg.Execution.PracticeURL)
	assert.Equal(t, 2, cfg.Paper.FailEvery)
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(writeFile(t, "mode: wizard\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "market:\n  feed: websocket\n"))
	assert.ErrorContains(t, err, "ws_url")

	_, err = Load(writeFile(t, "market:\n  pairs:\n    - {base: BTC, quote: EUR, price: \"1\"}\n"))
	assert.ErrorContains(t, err, "not quoted")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
