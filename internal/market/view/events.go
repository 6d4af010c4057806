package view

import "github.com/zappabad/tradedesk/internal/market"

// PairEvent is published whenever a pair's price changes.
type PairEvent struct {
	Pair market.AssetPair
}
