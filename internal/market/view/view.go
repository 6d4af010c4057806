package view

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/zappabad/tradedesk/internal/market"
)

var hundred = decimal.NewFromInt(100)

// PairView holds the latest state of every configured pair.
// Readers always get copies.
type PairView struct {
	mu    sync.RWMutex
	order []string
	pairs map[string]market.AssetPair
	open  map[string]decimal.Decimal
}

// NewPairView creates a view seeded with pairs. Seed prices become the opening price.
func NewPairView(pairs []market.AssetPair) *PairView {
	v := &PairView{
		pairs: make(map[string]market.AssetPair, len(pairs)),
		open:  make(map[string]decimal.Decimal, len(pairs)),
	}
	for _, p := range pairs {
		sym := p.Symbol()
		if _, dup := v.pairs[sym]; dup {
			continue
		}
		v.order = append(v.order, sym)
		v.pairs[sym] = p
		if p.Price.IsPositive() {
			v.open[sym] = p.Price
		}
	}
	return v
}

// Apply records a tick. Ticks for unknown symbols or with non-positive prices are ignored.
func (v *PairView) Apply(t market.Tick) (market.AssetPair, bool) {
	if !t.Price.IsPositive() {
		return market.AssetPair{}, false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.pairs[t.Symbol]
	if !ok {
		return market.AssetPair{}, false
	}
	open, ok := v.open[t.Symbol]
	if !ok {
		open = t.Price
		v.open[t.Symbol] = open
	}

	p.Price = t.Price
	p.UpdatedAt = t.Time
	p.Change24h = t.Price.Sub(open).Div(open).Mul(hundred).Round(2)
	v.pairs[t.Symbol] = p
	return p, true
}

// Get returns the pair for symbol.
func (v *PairView) Get(symbol string) (market.AssetPair, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p, ok := v.pairs[symbol]
	return p, ok
}

// Snapshot returns all pairs in configuration order.
func (v *PairView) Snapshot() []market.AssetPair {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]market.AssetPair, 0, len(v.order))
	for _, sym := range v.order {
		out = append(out, v.pairs[sym])
	}
	return out
}
