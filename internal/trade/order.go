package trade

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the record of a single submitted trade.
// The core owns it from submit until it reaches a terminal status; after that it
// is handed to history and never mutated again.
type Order struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Side     Side   `json:"side"`
	Asset    string `json:"asset"`
	Mode     Mode   `json:"mode"`

	// RequestedAmount is cash for a buy and quantity for a sell.
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	FilledAmount    decimal.Decimal `json:"filled_amount"`
	Price           decimal.Decimal `json:"price"`
	TotalValue      decimal.Decimal `json:"total_value"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`

	Status        Status `json:"status"`
	Simulated     bool   `json:"simulated"`
	FailureReason string `json:"failure_reason,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// OrderState is either a Pending or a Settled order.
type OrderState interface {
	Snapshot() Order
	isOrderState()
}

// Pending is an optimistic local order shown before the backend answers.
// It is the only state with transitions.
type Pending struct {
	order    Order
	quantity decimal.Decimal
	cash     decimal.Decimal
}

func (Pending) isOrderState() {}

// Snapshot returns a copy of the order record.
func (p Pending) Snapshot() Order { return p.order }

// Quantity is the requested quantity leg.
func (p Pending) Quantity() decimal.Decimal { return p.quantity }

// CashTotal is the requested cash leg, before fee.
func (p Pending) CashTotal() decimal.Decimal { return p.cash }

// Settled is a terminal order. It has no transitions.
type Settled struct {
	order Order
}

func (Settled) isOrderState() {}

// Snapshot returns a copy of the order record.
func (s Settled) Snapshot() Order { return s.order }

// NewPending materializes the local order at submit time with zero filled amount
// and the current price, total and fee.
func NewPending(clientID string, mode Mode, intent Intent, price decimal.Decimal, now time.Time) Pending {
	cash, _ := ParseAmount(intent.CashAmount)
	qty, _ := ParseAmount(intent.QuantityAmount)

	requested := cash
	if intent.Side == SideSell {
		requested = qty
	}

	return Pending{
		order: Order{
			ID:              clientID,
			ClientID:        clientID,
			Side:            intent.Side,
			Asset:           intent.BaseAsset,
			Mode:            mode,
			RequestedAmount: requested,
			FilledAmount:    decimal.Zero,
			Price:           price,
			TotalValue:      cash,
			PlatformFee:     Fee(cash),
			Status:          StatusPending,
			CreatedAt:       now,
		},
		quantity: qty,
		cash:     cash,
	}
}

// Fill is what a backend reported about an order.
// Zero values mean "not reported" and leave the local placeholder in place.
type Fill struct {
	ID           string
	Status       Status
	FilledAmount decimal.Decimal
	Price        decimal.Decimal
	TotalValue   decimal.Decimal
	Fee          decimal.NullDecimal
	Simulated    bool
	Message      string
}

// Settle applies the backend report and moves the order to its terminal status.
// A non-terminal reported status is taken as COMPLETED. The server id replaces the
// local id only when the order completed.
func (p Pending) Settle(f Fill, now time.Time) Settled {
	o := p.order
	if !f.Status.IsTerminal() {
		f.Status = StatusCompleted
	}

	if f.FilledAmount.IsPositive() {
		o.FilledAmount = f.FilledAmount
	}
	if f.Price.IsPositive() {
		o.Price = f.Price
	}
	switch {
	case f.TotalValue.IsPositive():
		o.TotalValue = f.TotalValue
	case f.FilledAmount.IsPositive() && o.Side == SideSell:
		o.TotalValue = f.FilledAmount.Mul(o.Price).Round(CashDecimals)
	}
	if f.Fee.Valid {
		o.PlatformFee = f.Fee.Decimal
	} else {
		o.PlatformFee = Fee(o.TotalValue)
	}

	if f.Status == StatusCompleted && f.ID != "" {
		o.ID = f.ID
	}
	if f.Status != StatusCompleted {
		o.FailureReason = f.Message
	}
	o.Status = f.Status
	o.Simulated = f.Simulated && f.Status == StatusFailed
	o.CompletedAt = &now
	return Settled{order: o}
}

// Fail moves the order to FAILED. simulated must come from the backend.
func (p Pending) Fail(reason string, simulated bool, now time.Time) Settled {
	return p.Settle(Fill{Status: StatusFailed, Message: reason, Simulated: simulated}, now)
}

// Cancel moves the order to CANCELLED.
func (p Pending) Cancel(reason string, now time.Time) Settled {
	return p.Settle(Fill{Status: StatusCancelled, Message: reason}, now)
}

// IsPending reports whether st is a Pending order.
func IsPending(st OrderState) bool {
	_, ok := st.(Pending)
	return ok
}
