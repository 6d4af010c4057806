package execution

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/tradedesk/internal/trade"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrBadRequest     = errors.New("bad trade request")
)

// Request is a market order as sent to an execution backend.
// ProductID is the pair symbol, e.g. "BTC/USD".
type Request struct {
	Side      trade.Side      `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	CashTotal decimal.Decimal `json:"cash_total"`
	ProductID string          `json:"product_id"`
	Mode      trade.Mode      `json:"mode"`
}

// Validate checks the request shape. It does not check balances.
func (r Request) Validate() error {
	if r.ProductID == "" {
		return ErrUnknownProduct
	}
	if r.Side != trade.SideBuy && r.Side != trade.SideSell {
		return ErrBadRequest
	}
	if r.Side == trade.SideBuy && !r.CashTotal.IsPositive() {
		return ErrBadRequest
	}
	if r.Side == trade.SideSell && !r.Quantity.IsPositive() {
		return ErrBadRequest
	}
	return nil
}

// ExecutedOrder is the backend's view of a filled (or rejected) order.
type ExecutedOrder struct {
	ID           string              `json:"id"`
	ProductID    string              `json:"product_id,omitempty"`
	Side         trade.Side          `json:"side"`
	Status       string              `json:"status"`
	FilledAmount decimal.Decimal     `json:"filled_amount"`
	Price        decimal.Decimal     `json:"price"`
	TotalValue   decimal.Decimal     `json:"total_value"`
	Fee          decimal.NullDecimal `json:"fee"`
	ExecutedAt   time.Time           `json:"executed_at"`
}

// Response is the backend's answer. IsSimulatedFailure is set only by practice backends.
type Response struct {
	Success            bool           `json:"success"`
	Order              *ExecutedOrder `json:"order,omitempty"`
	IsSimulatedFailure bool           `json:"is_simulated_failure"`
	Message            string         `json:"message,omitempty"`
}

// Fill converts the response into the fields the order state machine consumes.
func (r Response) Fill() trade.Fill {
	f := trade.Fill{
		Status:    trade.StatusFailed,
		Simulated: r.IsSimulatedFailure,
		Message:   r.Message,
	}
	if r.Success {
		f.Status = trade.StatusCompleted
	}
	if r.Order != nil {
		if st, ok := trade.ParseStatus(r.Order.Status); ok && r.Success {
			f.Status = st
		}
		f.ID = r.Order.ID
		f.FilledAmount = r.Order.FilledAmount
		f.Price = r.Order.Price
		f.TotalValue = r.Order.TotalValue
		f.Fee = r.Order.Fee
	}
	if !r.Success && f.Message == "" {
		f.Message = "order rejected"
	}
	return f
}

// Executor runs a trade. A returned error is a transport failure; a rejected trade
// comes back as a Response with Success false.
type Executor interface {
	ExecuteTrade(ctx context.Context, req Request) (Response, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, req Request) (Response, error)

func (f ExecutorFunc) ExecuteTrade(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
