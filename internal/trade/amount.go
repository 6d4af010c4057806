package trade

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// CashDecimals is the display precision of the cash leg.
	CashDecimals = 2
	// QuantityDecimals is the display precision of the quantity leg.
	QuantityDecimals = 8
)

// ClampCash truncates raw cash input to at most two fractional digits.
// Extra digits are dropped, never rounded up. Anything that is not a plain
// decimal is returned as-is so the caller can decide how to treat it.
func ClampCash(raw string) string {
	raw = strings.TrimSpace(raw)
	if !plainAmount(raw) {
		return raw
	}
	dot := strings.IndexByte(raw, '.')
	if dot < 0 {
		return raw
	}
	if len(raw)-dot-1 > CashDecimals {
		return raw[:dot+1+CashDecimals]
	}
	return raw
}

// ParseAmount parses a non-negative plain decimal ("12", "12.5", ".5").
// Signs, exponents and anything else are not ok.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if !plainAmount(raw) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// plainAmount reports whether s is digits with at most one '.'.
func plainAmount(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// Sync is the single conversion between the cash and quantity legs.
// The driver field keeps the raw input (cash is clamped first); the other field
// is derived from it at price. When price is not positive or the driver does not
// parse, the derived field is empty rather than zero.
func Sync(driver Field, raw string, price decimal.Decimal) (cash, quantity string) {
	switch driver {
	case FieldCash:
		cash = ClampCash(raw)
		v, ok := ParseAmount(cash)
		if !ok || !price.IsPositive() {
			return cash, ""
		}
		return cash, v.Div(price).StringFixed(QuantityDecimals)

	case FieldQuantity:
		quantity = strings.TrimSpace(raw)
		v, ok := ParseAmount(quantity)
		if !ok || !price.IsPositive() {
			return "", quantity
		}
		return v.Mul(price).StringFixed(CashDecimals), quantity
	}
	return "", ""
}

// SyncFromCash derives the quantity leg from a cash input.
func SyncFromCash(raw string, price decimal.Decimal) (cash, quantity string) {
	return Sync(FieldCash, raw, price)
}

// SyncFromQuantity derives the cash leg from a quantity input.
func SyncFromQuantity(raw string, price decimal.Decimal) (cash, quantity string) {
	return Sync(FieldQuantity, raw, price)
}
