package paper

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/tradedesk/internal/execution"
	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/internal/trade"
)

// PriceSource supplies the fill price.
type PriceSource interface {
	GetAssetPair(symbol string) (market.AssetPair, error)
}

// Config holds configuration for the paper engine.
type Config struct {
	// FailEvery makes every Nth learner-mode trade a simulated failure. 0 disables.
	FailEvery int
	// FailureRate is the probability of a simulated failure on a learner-mode trade.
	FailureRate float64
	// Seed seeds FailureRate draws.
	Seed int64
	// SimulatedFailureMessage is reported with every simulated failure.
	SimulatedFailureMessage string
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Seed:                    1,
		SimulatedFailureMessage: "Practice scenario: the market moved before your order filled. Review and try again.",
	}
}

// Engine fills market orders at the current price against a Ledger.
type Engine struct {
	cfg    Config
	ledger *Ledger
	prices PriceSource
	log    *logrus.Entry

	mu      sync.Mutex
	rng     *rand.Rand
	learner int
	now     func() time.Time
}

// NewEngine creates a paper engine.
func NewEngine(ledger *Ledger, prices PriceSource, cfg Config) *Engine {
	if cfg.SimulatedFailureMessage == "" {
		cfg.SimulatedFailureMessage = DefaultConfig().SimulatedFailureMessage
	}
	return &Engine{
		cfg:    cfg,
		ledger: ledger,
		prices: prices,
		log:    logrus.WithField("component", "paper"),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		now:    time.Now,
	}
}

// Ledger returns the engine's ledger.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// ExecuteTrade implements execution.Executor.
func (e *Engine) ExecuteTrade(ctx context.Context, req execution.Request) (execution.Response, error) {
	if err := ctx.Err(); err != nil {
		return execution.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return reject(err.Error()), nil
	}

	base, quote, ok := market.ParseSymbol(req.ProductID)
	if !ok {
		return reject(execution.ErrUnknownProduct.Error()), nil
	}
	pair, err := e.prices.GetAssetPair(base + "/" + quote)
	if err != nil {
		return reject(err.Error()), nil
	}
	if !pair.Price.IsPositive() {
		return reject(trade.ErrNonPositivePrice.Error()), nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if req.Mode == trade.ModeLearner && e.simulateFailure() {
		e.log.WithFields(logrus.Fields{"product": req.ProductID, "side": req.Side}).Info("simulated failure")
		return execution.Response{IsSimulatedFailure: true, Message: e.cfg.SimulatedFailureMessage}, nil
	}

	order := execution.ExecutedOrder{
		ID:         uuid.NewString(),
		ProductID:  pair.Symbol(),
		Side:       req.Side,
		Status:     "FILLED",
		Price:      pair.Price,
		ExecutedAt: e.now(),
	}

	switch req.Side {
	case trade.SideBuy:
		err = e.buy(quote, base, req.CashTotal, &order)
	case trade.SideSell:
		err = e.sell(base, quote, req.Quantity, &order)
	}
	if errors.Is(err, ErrInsufficientFunds) {
		order.Status = "REJECTED"
		if rerr := e.ledger.RecordOrder(order); rerr != nil {
			e.log.WithError(rerr).Warn("record rejected order")
		}
		return reject(trade.ErrInsufficientBalance.Error()), nil
	}
	if err != nil {
		return execution.Response{}, err
	}

	e.log.WithFields(logrus.Fields{
		"id":      order.ID,
		"product": order.ProductID,
		"side":    order.Side,
		"filled":  order.FilledAmount.String(),
		"price":   order.Price.String(),
	}).Info("paper fill")
	return execution.Response{Success: true, Order: &order}, nil
}

func (e *Engine) buy(quote, base string, cash decimal.Decimal, order *execution.ExecutedOrder) error {
	bal, err := e.ledger.Balance(quote)
	if err != nil {
		return err
	}
	// The fee is charged on top of the cash total. A total the balance covers
	// within tolerance is shrunk until total plus fee fits.
	fee := trade.Fee(cash)
	if cash.Add(fee).GreaterThan(bal) && cash.LessThanOrEqual(bal.Add(trade.BuyTolerance)) {
		cash = bal.Div(decimal.NewFromInt(1).Add(trade.PlatformFeeRate)).RoundFloor(trade.CashDecimals)
		fee = trade.Fee(cash)
	}
	qty := cash.Div(order.Price).RoundFloor(trade.QuantityDecimals)

	order.FilledAmount = qty
	order.TotalValue = cash
	order.Fee = decimal.NewNullDecimal(fee)
	return e.ledger.Transfer(quote, cash.Add(fee), base, qty, *order)
}

func (e *Engine) sell(base, quote string, qty decimal.Decimal, order *execution.ExecutedOrder) error {
	cash := qty.Mul(order.Price).RoundFloor(trade.CashDecimals)
	fee := trade.Fee(cash)

	order.FilledAmount = qty
	order.TotalValue = cash
	order.Fee = decimal.NewNullDecimal(fee)
	return e.ledger.Transfer(base, qty, quote, trade.ReceiveAmount(trade.SideSell, qty, cash), *order)
}

// simulateFailure must be called with e.mu held.
func (e *Engine) simulateFailure() bool {
	e.learner++
	if e.cfg.FailEvery > 0 && e.learner%e.cfg.FailEvery == 0 {
		return true
	}
	return e.cfg.FailureRate > 0 && e.rng.Float64() < e.cfg.FailureRate
}

func reject(msg string) execution.Response {
	return execution.Response{Message: msg}
}
