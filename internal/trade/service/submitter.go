package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/tradedesk/internal/account"
	"github.com/zappabad/tradedesk/internal/execution"
	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/internal/trade"
)

var (
	ErrOrderInFlight = errors.New("an order is already pending")
	ErrNoExecutor    = errors.New("no executor for mode")
)

// BalanceReader reads cached balances.
type BalanceReader interface {
	GetBalance(asset string) account.Balance
}

// PairReader reads the latest pair price.
type PairReader interface {
	GetAssetPair(symbol string) (market.AssetPair, error)
}

// Deps are the submitter's collaborators. Refresher and Recorder may be nil.
type Deps struct {
	Balances  BalanceReader
	Pairs     PairReader
	Executors map[trade.Mode]execution.Executor
	Refresher Refresher
	Recorder  Recorder
}

// Submitter turns a ticket into an order and drives it to a terminal state.
// At most one order is pending at a time.
type Submitter struct {
	cfg        Config
	deps       Deps
	reconciler *Reconciler
	log        *logrus.Entry
	now        func() time.Time

	inFlight atomic.Bool

	mu      sync.RWMutex
	current trade.OrderState

	events        chan Emission
	droppedEvents atomic.Int64
}

// NewSubmitter creates a submitter.
func NewSubmitter(deps Deps, cfg Config) *Submitter {
	def := DefaultConfig()
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = def.QuoteAsset
	}
	if cfg.ExecTimeout <= 0 {
		cfg.ExecTimeout = def.ExecTimeout
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = def.RefreshTimeout
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}

	return &Submitter{
		cfg:        cfg,
		deps:       deps,
		reconciler: NewReconciler(deps.Recorder, deps.Refresher, cfg.RefreshTimeout),
		log:        logrus.WithField("component", "submitter"),
		now:        time.Now,
		events:     make(chan Emission, cfg.EventBuffer),
	}
}

// Submit validates the ticket, emits a pending order, executes it in mode and
// returns the terminal order after reconciliation.
//
// Only local problems are returned as errors: ErrOrderInFlight, or a
// *trade.ValidationError before anything is sent. Execution failures come back
// as a FAILED order.
func (s *Submitter) Submit(ctx context.Context, mode trade.Mode, t *trade.Ticket) (trade.Settled, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return trade.Settled{}, ErrOrderInFlight
	}
	defer s.inFlight.Store(false)

	intent := t.Intent()
	symbol := intent.BaseAsset + "/" + s.cfg.QuoteAsset

	pair, err := s.deps.Pairs.GetAssetPair(symbol)
	if err != nil || !pair.Price.IsPositive() {
		return trade.Settled{}, &trade.ValidationError{Side: intent.Side, Asset: intent.BaseAsset, Reason: trade.ReasonNonPositivePrice}
	}
	t.SetPrice(pair.Price)
	intent = t.Intent()

	cashBal := s.deps.Balances.GetBalance(s.cfg.QuoteAsset)
	qtyBal := s.deps.Balances.GetBalance(intent.BaseAsset)
	if v := t.Validate(cashBal.Available, qtyBal.Available); !v.OK {
		return trade.Settled{}, &trade.ValidationError{Side: intent.Side, Asset: intent.BaseAsset, Reason: v.Reason}
	}

	pending := trade.NewPending(uuid.NewString(), mode, intent, pair.Price, s.now())
	s.setCurrent(pending)
	s.emit(ctx, PendingEmission{Order: pending.Snapshot()})

	log := s.log.WithFields(logrus.Fields{
		"client_id": pending.Snapshot().ClientID,
		"mode":      mode,
		"side":      intent.Side,
		"symbol":    symbol,
	})
	log.Info("order pending")

	// Once pending, only the backend or ExecTimeout decides the outcome.
	sent := context.WithoutCancel(ctx)
	settled := s.execute(sent, mode, symbol, pending)
	o := settled.Snapshot()
	s.setCurrent(settled)
	s.emit(ctx, SettledEmission{Order: o})

	entry := log.WithFields(logrus.Fields{"id": o.ID, "status": o.Status})
	switch {
	case o.Status == trade.StatusCompleted:
		entry.Info("order completed")
	case o.Simulated:
		entry.WithField("reason", o.FailureReason).Info("practice order failed")
	default:
		entry.WithField("reason", o.FailureReason).Warn("order failed")
	}

	s.reconciler.Reconcile(sent, settled, t)
	return settled, nil
}

func (s *Submitter) execute(ctx context.Context, mode trade.Mode, symbol string, p trade.Pending) trade.Settled {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExecTimeout)
	defer cancel()

	o := p.Snapshot()
	if s.cfg.OnTrade != nil {
		if err := s.cfg.OnTrade(ctx, o.Side, o.Asset, p.Quantity(), p.CashTotal()); err != nil {
			return p.Fail(err.Error(), false, s.now())
		}
		return p.Settle(trade.Fill{Status: trade.StatusCompleted, FilledAmount: p.Quantity()}, s.now())
	}

	exec := s.deps.Executors[mode]
	if exec == nil {
		return p.Fail(ErrNoExecutor.Error(), false, s.now())
	}

	resp, err := exec.ExecuteTrade(ctx, execution.Request{
		Side:      o.Side,
		Quantity:  p.Quantity(),
		CashTotal: p.CashTotal(),
		ProductID: symbol,
		Mode:      mode,
	})
	if err != nil {
		return p.Fail(err.Error(), false, s.now())
	}
	return p.Settle(resp.Fill(), s.now())
}

func (s *Submitter) setCurrent(st trade.OrderState) {
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
}

func (s *Submitter) emit(ctx context.Context, e Emission) {
	if s.cfg.DropEvents {
		select {
		case s.events <- e:
		default:
			s.droppedEvents.Add(1)
		}
		return
	}
	select {
	case s.events <- e:
	case <-ctx.Done():
		s.droppedEvents.Add(1)
	}
}

// Current returns the latest order, or false before the first submit.
func (s *Submitter) Current() (trade.OrderState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// InFlight reports whether an order is pending.
func (s *Submitter) InFlight() bool {
	return s.inFlight.Load()
}

// Events returns the emissions channel.
func (s *Submitter) Events() <-chan Emission {
	return s.events
}

// DroppedEvents returns the count of dropped emissions.
func (s *Submitter) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}
