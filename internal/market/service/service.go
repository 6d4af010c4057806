package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/zappabad/tradedesk/internal/market"
	marketview "github.com/zappabad/tradedesk/internal/market/view"
)

var ErrUnknownPair = errors.New("unknown asset pair")

// MarketService keeps the latest price of each configured pair, fed by a market.Feed.
type MarketService struct {
	cfg   Config
	feed  market.Feed
	pview *marketview.PairView
	log   *logrus.Entry

	ticks          chan market.Tick
	externalEvents chan marketview.PairEvent
	droppedEvents  atomic.Int64

	cancel    context.CancelFunc
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewMarketService creates a service for pairs and starts consuming feed.
// A nil feed leaves prices at their seed values.
func NewMarketService(pairs []market.AssetPair, feed market.Feed, cfg Config) *MarketService {
	def := DefaultConfig()
	if cfg.TickBuffer <= 0 {
		cfg.TickBuffer = def.TickBuffer
	}
	if cfg.PairEventBuffer <= 0 {
		cfg.PairEventBuffer = def.PairEventBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &MarketService{
		cfg:            cfg,
		feed:           feed,
		pview:          marketview.NewPairView(pairs),
		log:            logrus.WithField("component", "market"),
		ticks:          make(chan market.Tick, cfg.TickBuffer),
		externalEvents: make(chan marketview.PairEvent, cfg.PairEventBuffer),
		cancel:         cancel,
		closed:         make(chan struct{}),
	}

	if feed != nil {
		s.wg.Add(1)
		go s.runFeed(ctx)
	}
	s.wg.Add(1)
	go s.runApplier()

	return s
}

func (s *MarketService) runFeed(ctx context.Context) {
	defer s.wg.Done()
	if err := s.feed.Run(ctx, s.ticks); err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).Error("price feed stopped")
	}
}

func (s *MarketService) runApplier() {
	defer s.wg.Done()

	for {
		select {
		case <-s.closed:
			return
		case t := <-s.ticks:
			pair, ok := s.pview.Apply(t)
			if !ok {
				continue
			}
			s.publish(marketview.PairEvent{Pair: pair})
		}
	}
}

func (s *MarketService) publish(ev marketview.PairEvent) {
	if s.cfg.DropPairEvents {
		select {
		case s.externalEvents <- ev:
		default:
			s.droppedEvents.Add(1)
		}
		return
	}
	select {
	case s.externalEvents <- ev:
	case <-s.closed:
	}
}

// ApplyTick records a tick directly, bypassing the feed.
func (s *MarketService) ApplyTick(t market.Tick) {
	select {
	case s.ticks <- t:
	case <-s.closed:
	}
}

// GetAssetPair returns the latest state of symbol.
func (s *MarketService) GetAssetPair(symbol string) (market.AssetPair, error) {
	p, ok := s.pview.Get(symbol)
	if !ok {
		return market.AssetPair{}, ErrUnknownPair
	}
	return p, nil
}

// Pairs returns all pairs in configuration order.
func (s *MarketService) Pairs() []market.AssetPair {
	return s.pview.Snapshot()
}

// Events returns the pair events channel.
func (s *MarketService) Events() <-chan marketview.PairEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped pair events.
func (s *MarketService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops the feed and the applier.
func (s *MarketService) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.closed)
		s.wg.Wait()
		close(s.externalEvents)
	})
}
