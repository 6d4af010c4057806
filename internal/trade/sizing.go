package trade

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ValidPercent reports whether pct is one of the offered shortcuts.
func ValidPercent(pct int) bool {
	switch pct {
	case 25, 50, 75, 100:
		return true
	}
	return false
}

// ApplyPercentage sizes a trade as pct of the relevant available balance.
//
// BUY sizes the cash leg from availableCash. At exactly 100% the cash is floored to
// cents so it can never exceed the literal balance; other shortcuts are a straight
// proportion shown at cents. SELL sizes the quantity leg from availableQuantity.
// The result flows through Sync so both legs stay consistent. ok is false (and the
// caller must leave its state unchanged) when price is not positive or pct is not
// an offered shortcut.
func ApplyPercentage(pct int, side Side, price, availableCash, availableQuantity decimal.Decimal) (cash, quantity string, ok bool) {
	if !price.IsPositive() || !ValidPercent(pct) {
		return "", "", false
	}
	frac := decimal.NewFromInt(int64(pct)).Div(hundred)

	switch side {
	case SideBuy:
		amount := availableCash.Mul(frac)
		var raw string
		if pct == 100 {
			raw = amount.RoundFloor(CashDecimals).StringFixed(CashDecimals)
		} else {
			raw = amount.StringFixed(CashDecimals)
		}
		cash, quantity = Sync(FieldCash, raw, price)
		return cash, quantity, true

	case SideSell:
		raw := availableQuantity.Mul(frac).StringFixed(QuantityDecimals)
		cash, quantity = Sync(FieldQuantity, raw, price)
		return cash, quantity, true
	}
	return "", "", false
}
