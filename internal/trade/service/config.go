package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/tradedesk/internal/trade"
)

// TradeHook replaces the executor call when set. A nil error completes the
// order for the requested quantity; an error fails it.
type TradeHook func(ctx context.Context, side trade.Side, asset string, quantity, cash decimal.Decimal) error

// Config holds configuration for the submitter.
type Config struct {
	// QuoteAsset is the cash asset every pair is quoted in.
	QuoteAsset string
	// ExecTimeout bounds the executor call. A deadline fails the order.
	ExecTimeout time.Duration
	// RefreshTimeout bounds each post-trade refresh.
	RefreshTimeout time.Duration
	// EventBuffer is the size of the emissions channel.
	EventBuffer int
	// DropEvents determines whether emissions drop on overflow.
	DropEvents bool
	// OnTrade, when set, is called instead of the executor.
	OnTrade TradeHook
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		QuoteAsset:     "USD",
		ExecTimeout:    30 * time.Second,
		RefreshTimeout: 5 * time.Second,
		EventBuffer:    64,
		DropEvents:     true,
	}
}
