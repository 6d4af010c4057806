package trade

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Intent is a snapshot of what the user is about to trade.
type Intent struct {
	Side           Side
	BaseAsset      string
	CashAmount     string
	QuantityAmount string
	Driver         Field
}

// Cash parses the cash leg; empty parses as zero.
func (i Intent) Cash() decimal.Decimal {
	d, _ := ParseAmount(i.CashAmount)
	return d
}

// Quantity parses the quantity leg; empty parses as zero.
func (i Intent) Quantity() decimal.Decimal {
	d, _ := ParseAmount(i.QuantityAmount)
	return d
}

// Ticket holds the trade intent being edited and keeps both legs in sync with
// the latest price. All edits go through Sync.
// Ticket is safe for concurrent use so a renderer can read it while a submit runs.
type Ticket struct {
	mu     sync.RWMutex
	intent Intent
	price  decimal.Decimal
}

// NewTicket creates an empty ticket for asset.
func NewTicket(asset string, side Side) *Ticket {
	return &Ticket{intent: Intent{Side: side, BaseAsset: asset}}
}

// Intent returns a copy of the current intent.
func (t *Ticket) Intent() Intent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.intent
}

// Price returns the price the ticket was last synced against.
func (t *Ticket) Price() decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.price
}

// SetCashAmount makes cash the driver and derives quantity.
func (t *Ticket) SetCashAmount(raw string) (cash, quantity string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drive(FieldCash, raw)
}

// SetQuantityAmount makes quantity the driver and derives cash.
func (t *Ticket) SetQuantityAmount(raw string) (cash, quantity string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drive(FieldQuantity, raw)
}

func (t *Ticket) drive(field Field, raw string) (string, string) {
	cash, qty := Sync(field, raw, t.price)
	t.intent.CashAmount = cash
	t.intent.QuantityAmount = qty
	t.intent.Driver = field
	if cash == "" && qty == "" {
		t.intent.Driver = FieldNone
	}
	return cash, qty
}

// SetPrice updates the live price and re-derives the non-driving leg.
func (t *Ticket) SetPrice(price decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.price = price
	switch t.intent.Driver {
	case FieldCash:
		t.drive(FieldCash, t.intent.CashAmount)
	case FieldQuantity:
		t.drive(FieldQuantity, t.intent.QuantityAmount)
	}
}

// SetSide switches the trade side. Amounts are kept.
func (t *Ticket) SetSide(side Side) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.intent.Side = side
}

// SelectAsset switches the traded asset and resets both amounts, so no quantity
// carries over to the new asset's price.
func (t *Ticket) SelectAsset(asset string, price decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.intent.BaseAsset = asset
	t.price = price
	t.clear()
}

// ApplyPercentage sizes the ticket from the available balances.
// It returns false and leaves the ticket untouched when it cannot size.
func (t *Ticket) ApplyPercentage(pct int, availableCash, availableQuantity decimal.Decimal) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cash, qty, ok := ApplyPercentage(pct, t.intent.Side, t.price, availableCash, availableQuantity)
	if !ok {
		return false
	}
	t.intent.CashAmount = cash
	t.intent.QuantityAmount = qty
	if t.intent.Side == SideBuy {
		t.intent.Driver = FieldCash
	} else {
		t.intent.Driver = FieldQuantity
	}
	return true
}

// Validate runs the local gate against the given balances.
func (t *Ticket) Validate(cashBalance, quantityBalance decimal.Decimal) Validation {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.price.IsPositive() {
		return reject(ReasonNonPositivePrice)
	}
	return CanSubmit(t.intent.Side, t.intent.Cash(), t.intent.Quantity(), cashBalance, quantityBalance)
}

// Clear empties both amounts.
func (t *Ticket) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clear()
}

func (t *Ticket) clear() {
	t.intent.CashAmount = ""
	t.intent.QuantityAmount = ""
	t.intent.Driver = FieldNone
}
