package market

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetPair is a tradeable pair and its latest price.
type AssetPair struct {
	Base      string          `json:"base"`
	Quote     string          `json:"quote"`
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change_24h"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Symbol returns "BASE/QUOTE".
func (p AssetPair) Symbol() string {
	return p.Base + "/" + p.Quote
}

// ParseSymbol splits "BASE/QUOTE" (or "BASE-QUOTE").
func ParseSymbol(symbol string) (base, quote string, ok bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	sep := strings.IndexAny(symbol, "/-")
	if sep <= 0 || sep == len(symbol)-1 {
		return "", "", false
	}
	return symbol[:sep], symbol[sep+1:], true
}

// Tick is a single price update from a feed.
type Tick struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   time.Time       `json:"time"`
}

// Feed produces ticks until ctx is done. Run blocks.
type Feed interface {
	Run(ctx context.Context, out chan<- Tick) error
}
