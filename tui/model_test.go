package tui

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/tradedesk/internal/config"
	"github.com/zappabad/tradedesk/internal/desk"
	"github.com/zappabad/tradedesk/internal/trade"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.Default()
	cfg.Paper.LedgerPath = ""
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	d, err := desk.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return NewModel(d)
}

func TestLatePendingEmissionDoesNotFreezeTicket(t *testing.T) {
	m := newTestModel(t)
	require.False(t, m.desk.Submitter.InFlight())

	m.Update(orderEventMsg{order: trade.Order{ClientID: "c-1", Status: trade.StatusPending}})
	assert.False(t, m.ticketPanel.InFlight())
}

func TestOrderResultUnfreezesTicket(t *testing.T) {
	m := newTestModel(t)
	m.ticketPanel.SetInFlight(true)

	m.Update(orderResultMsg{order: trade.Order{ClientID: "c-1", Status: trade.StatusCompleted}})
	assert.False(t, m.ticketPanel.InFlight())
}
