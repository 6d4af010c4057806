package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/tradedesk/internal/trade"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func settled(clientID string, at time.Time, status trade.Status) trade.Order {
	in := trade.Intent{Side: trade.SideBuy, BaseAsset: "BTC", CashAmount: "100.00", QuantityAmount: "0.00200000"}
	p := trade.NewPending(clientID, trade.ModeLearner, in, decimal.NewFromInt(50000), at)
	return p.Settle(trade.Fill{ID: "srv-" + clientID, Status: status, Message: "nope", Simulated: true}, at.Add(time.Second)).Snapshot()
}

func TestRecordAndRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, settled("a", t0, trade.StatusCompleted)))
	require.NoError(t, s.Record(ctx, settled("b", t0.Add(time.Minute), trade.StatusFailed)))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ClientID)
	assert.Equal(t, trade.StatusFailed, got[0].Status)
	assert.True(t, got[0].Simulated)
	assert.Equal(t, "nope", got[0].FailureReason)
	assert.Equal(t, "b", got[0].ID, "failed orders keep the local id")

	assert.Equal(t, "srv-a", got[1].ID)
	assert.Equal(t, trade.SideBuy, got[1].Side)
	assert.Equal(t, trade.ModeLearner, got[1].Mode)
	assert.True(t, got[1].RequestedAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "0.5", got[1].PlatformFee.String())
	require.NotNil(t, got[1].CompletedAt)
	assert.Equal(t, t0.Add(time.Second), *got[1].CompletedAt)
}

func TestRecordUpsertsByClientID(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, s.Record(ctx, settled("a", t0, trade.StatusFailed)))
	require.NoError(t, s.Record(ctx, settled("a", t0, trade.StatusCompleted)))

	got, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, trade.StatusCompleted, got[0].Status)
}

func TestRecordRejectsPending(t *testing.T) {
	s := openStore(t)
	p := trade.NewPending("x", trade.ModeInvestor, trade.Intent{Side: trade.SideBuy, CashAmount: "1"}, decimal.NewFromInt(1), time.Now())
	assert.ErrorIs(t, s.Record(context.Background(), p.Snapshot()), ErrNotTerminal)
}
