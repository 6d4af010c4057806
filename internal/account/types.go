package account

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Balance is the holding of one asset. Available + Locked == Total.
type Balance struct {
	Asset     string          `json:"asset"`
	Total     decimal.Decimal `json:"total"`
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
}

// NewBalance returns a fully available balance.
func NewBalance(asset string, total decimal.Decimal) Balance {
	return Balance{Asset: asset, Total: total, Available: total, Locked: decimal.Zero}
}

// Valid reports whether the balance is internally consistent.
func (b Balance) Valid() bool {
	return !b.Available.IsNegative() && b.Available.Add(b.Locked).Equal(b.Total)
}

// BalancesResponse is the wire shape of a balance listing.
type BalancesResponse struct {
	Balances []Balance `json:"balances"`
}

// SortBalances orders balances by asset name.
func SortBalances(bs []Balance) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].Asset < bs[j].Asset })
}
