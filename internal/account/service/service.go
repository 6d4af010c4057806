package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/tradedesk/internal/account"
	"github.com/zappabad/tradedesk/internal/trade"
)

// BalanceSource loads the account's balances.
type BalanceSource interface {
	Balances(ctx context.Context) ([]account.Balance, error)
}

// BalanceSourceFunc adapts a function to BalanceSource.
type BalanceSourceFunc func(ctx context.Context) ([]account.Balance, error)

func (f BalanceSourceFunc) Balances(ctx context.Context) ([]account.Balance, error) { return f(ctx) }

// HistorySource loads recent orders, newest first.
type HistorySource interface {
	Recent(ctx context.Context, n int) ([]trade.Order, error)
}

// EventKind says what was refreshed.
type EventKind uint8

const (
	EventBalances EventKind = iota
	EventOrders
)

// Event is published after a successful refresh.
type Event struct {
	Kind EventKind
}

// AccountService caches balances and recent orders and refreshes them on demand.
type AccountService struct {
	cfg     Config
	src     BalanceSource
	history HistorySource
	log     *logrus.Entry

	mu       sync.RWMutex
	balances map[string]account.Balance
	orders   []trade.Order

	events        chan Event
	droppedEvents atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewAccountService creates the service. history may be nil.
func NewAccountService(src BalanceSource, history HistorySource, cfg Config) *AccountService {
	def := DefaultConfig()
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = def.RefreshTimeout
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}

	s := &AccountService{
		cfg:      cfg,
		src:      src,
		history:  history,
		log:      logrus.WithField("component", "account"),
		balances: make(map[string]account.Balance),
		events:   make(chan Event, cfg.EventBuffer),
		closed:   make(chan struct{}),
	}

	if cfg.RefreshInterval > 0 {
		s.wg.Add(1)
		go s.runRefresh()
	}
	return s
}

func (s *AccountService) runRefresh() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RefreshTimeout)
			if err := s.RefreshBalances(ctx); err != nil {
				s.log.WithError(err).Warn("periodic balance refresh failed")
			}
			cancel()
		}
	}
}

// RefreshBalances reloads balances from the source.
func (s *AccountService) RefreshBalances(ctx context.Context) error {
	bs, err := s.src.Balances(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]account.Balance, len(bs))
	for _, b := range bs {
		if !b.Valid() {
			s.log.WithField("asset", b.Asset).Warn("inconsistent balance from source")
		}
		next[b.Asset] = b
	}

	s.mu.Lock()
	s.balances = next
	s.mu.Unlock()

	s.publish(Event{Kind: EventBalances})
	return nil
}

// RefreshOrderHistory reloads recent orders. It is a no-op without a history source.
func (s *AccountService) RefreshOrderHistory(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	orders, err := s.history.Recent(ctx, s.cfg.HistoryLimit)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()

	s.publish(Event{Kind: EventOrders})
	return nil
}

func (s *AccountService) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.droppedEvents.Add(1)
	}
}

// GetBalance returns the cached balance of asset, zero if unknown.
func (s *AccountService) GetBalance(asset string) account.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.balances[asset]; ok {
		return b
	}
	return account.NewBalance(asset, decimal.Zero)
}

// Balances returns all cached balances sorted by asset.
func (s *AccountService) Balances() []account.Balance {
	s.mu.RLock()
	out := make([]account.Balance, 0, len(s.balances))
	for _, b := range s.balances {
		out = append(out, b)
	}
	s.mu.RUnlock()

	account.SortBalances(out)
	return out
}

// Orders returns a copy of the cached recent orders.
func (s *AccountService) Orders() []trade.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]trade.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Events returns the refresh events channel.
func (s *AccountService) Events() <-chan Event {
	return s.events
}

// DroppedEvents returns the count of dropped refresh events.
func (s *AccountService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops the refresh loop.
func (s *AccountService) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}
