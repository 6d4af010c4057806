package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/internal/market/feed"
)

func pairs() []market.AssetPair {
	return []market.AssetPair{
		{Base: "BTC", Quote: "USD", Price: decimal.NewFromInt(50000)},
		{Base: "ETH", Quote: "USD", Price: decimal.NewFromInt(3000)},
	}
}

func TestMarketServiceBasic(t *testing.T) {
	svc := NewMarketService(pairs(), nil, DefaultConfig())
	defer svc.Close()

	p, err := svc.GetAssetPair("BTC/USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Price.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected seed price 50000, got %s", p.Price)
	}

	svc.ApplyTick(market.Tick{Symbol: "BTC/USD", Price: decimal.NewFromInt(51000), Time: time.Now()})

	select {
	case ev := <-svc.Events():
		if ev.Pair.Symbol() != "BTC/USD" {
			t.Errorf("expected BTC/USD event, got %s", ev.Pair.Symbol())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pair event")
	}

	p, _ = svc.GetAssetPair("BTC/USD")
	if p.Change24h.String() != "2" {
		t.Errorf("expected change 2, got %s", p.Change24h)
	}

	if _, err := svc.GetAssetPair("DOGE/USD"); err != ErrUnknownPair {
		t.Errorf("expected ErrUnknownPair, got %v", err)
	}
}

func TestMarketServiceWithFeed(t *testing.T) {
	walk := feed.NewRandomWalk(pairs(), feed.RandomWalkConfig{Interval: time.Millisecond, Seed: 3})
	svc := NewMarketService(pairs(), walk, DefaultConfig())
	defer svc.Close()

	deadline := time.After(2 * time.Second)
	seen := 0
	for seen < 4 {
		select {
		case <-svc.Events():
			seen++
		case <-deadline:
			t.Fatalf("expected at least 4 events, got %d", seen)
		}
	}

	if got := len(svc.Pairs()); got != 2 {
		t.Errorf("expected 2 pairs, got %d", got)
	}
}

func TestMarketServiceDropsOnOverflow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PairEventBuffer = 1
	svc := NewMarketService(pairs(), nil, cfg)
	defer svc.Close()

	for i := 1; i <= 5; i++ {
		svc.ApplyTick(market.Tick{Symbol: "ETH/USD", Price: decimal.NewFromInt(int64(3000 + i))})
	}

	deadline := time.Now().Add(time.Second)
	for svc.DroppedEvents() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if svc.DroppedEvents() == 0 {
		t.Error("expected dropped events")
	}
}
