package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/tradedesk/internal/market"
)

var minPrice = decimal.RequireFromString("0.01")

// RandomWalkConfig configures a simulated price feed.
type RandomWalkConfig struct {
	// Interval between rounds of ticks.
	Interval time.Duration
	// Volatility is the standard deviation of each step, as a fraction of price.
	Volatility float64
	// Seed makes the walk reproducible.
	Seed int64
}

// DefaultRandomWalkConfig returns a Config with reasonable defaults.
func DefaultRandomWalkConfig() RandomWalkConfig {
	return RandomWalkConfig{
		Interval:   time.Second,
		Volatility: 0.002,
		Seed:       1,
	}
}

// RandomWalk emits a gaussian walk for each starting pair.
type RandomWalk struct {
	cfg    RandomWalkConfig
	prices map[string]decimal.Decimal
	order  []string
	rng    *rand.Rand
	now    func() time.Time
}

// NewRandomWalk creates a walk starting at the given pairs' prices.
func NewRandomWalk(start []market.AssetPair, cfg RandomWalkConfig) *RandomWalk {
	def := DefaultRandomWalkConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Volatility <= 0 {
		cfg.Volatility = def.Volatility
	}

	w := &RandomWalk{
		cfg:    cfg,
		prices: make(map[string]decimal.Decimal, len(start)),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		now:    time.Now,
	}
	for _, p := range start {
		if !p.Price.IsPositive() {
			continue
		}
		w.order = append(w.order, p.Symbol())
		w.prices[p.Symbol()] = p.Price
	}
	return w
}

// Step advances every symbol once and returns the new ticks.
func (w *RandomWalk) Step() []market.Tick {
	now := w.now()
	ticks := make([]market.Tick, 0, len(w.order))
	for _, sym := range w.order {
		move := decimal.NewFromFloat(1 + w.rng.NormFloat64()*w.cfg.Volatility)
		next := w.prices[sym].Mul(move).Round(2)
		if next.LessThan(minPrice) {
			next = minPrice
		}
		w.prices[sym] = next
		ticks = append(ticks, market.Tick{Symbol: sym, Price: next, Time: now})
	}
	return ticks
}

// Run emits the starting prices, then one step per interval.
func (w *RandomWalk) Run(ctx context.Context, out chan<- market.Tick) error {
	now := w.now()
	for _, sym := range w.order {
		select {
		case out <- market.Tick{Symbol: sym, Price: w.prices[sym], Time: now}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, t := range w.Step() {
				select {
				case out <- t:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
