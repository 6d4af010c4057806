package desk

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zappabad/tradedesk/internal/account/httpsource"
	accountservice "github.com/zappabad/tradedesk/internal/account/service"
	"github.com/zappabad/tradedesk/internal/config"
	"github.com/zappabad/tradedesk/internal/execution"
	"github.com/zappabad/tradedesk/internal/execution/httpexec"
	"github.com/zappabad/tradedesk/internal/execution/paper"
	"github.com/zappabad/tradedesk/internal/history"
	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/internal/market/feed"
	marketservice "github.com/zappabad/tradedesk/internal/market/service"
	"github.com/zappabad/tradedesk/internal/trade"
	tradeservice "github.com/zappabad/tradedesk/internal/trade/service"
)

// Desk owns all the client subsystems and manages their lifecycle.
type Desk struct {
	Market    *marketservice.MarketService
	Ledger    *paper.Ledger
	Paper     *paper.Engine
	Account   *accountservice.AccountService
	History   *history.Store
	Submitter *tradeservice.Submitter

	cfg *config.Config
	mu  sync.Mutex
}

// NewFeed builds the configured price feed.
func NewFeed(cfg config.MarketConfig) market.Feed {
	switch cfg.Feed {
	case config.FeedWebSocket:
		wcfg := feed.DefaultWebSocketConfig()
		wcfg.URL = cfg.WSURL
		return feed.NewWebSocket(wcfg, logrus.WithField("component", "market"))
	default:
		return feed.NewRandomWalk(cfg.Pairs, feed.RandomWalkConfig{
			Interval:   cfg.Interval,
			Volatility: cfg.Volatility,
			Seed:       cfg.Seed,
		})
	}
}

// OpenVenue opens the paper ledger, seeds the starting cash and builds the engine.
func OpenVenue(cfg *config.Config, prices paper.PriceSource) (*paper.Ledger, *paper.Engine, error) {
	ledger, err := paper.OpenLedger(paper.LedgerOptions{Path: cfg.Paper.LedgerPath})
	if err != nil {
		return nil, nil, err
	}
	if err := ledger.Seed(cfg.Account.QuoteAsset, cfg.Paper.StartingCash); err != nil {
		_ = ledger.Close()
		return nil, nil, fmt.Errorf("seed ledger: %w", err)
	}

	pcfg := paper.DefaultConfig()
	pcfg.FailEvery = cfg.Paper.FailEvery
	pcfg.FailureRate = cfg.Paper.FailureRate
	pcfg.Seed = cfg.Paper.Seed
	return ledger, paper.NewEngine(ledger, prices, pcfg), nil
}

// New builds a Desk from cfg. Modes without a venue URL trade against the embedded paper engine.
func New(ctx context.Context, cfg *config.Config) (*Desk, error) {
	d := &Desk{cfg: cfg}
	log := logrus.WithField("component", "desk")

	d.Market = marketservice.NewMarketService(cfg.Market.Pairs, NewFeed(cfg.Market), marketservice.DefaultConfig())

	needVenue := cfg.Execution.LiveURL == "" || cfg.Execution.PracticeURL == "" || cfg.Account.BalancesURL == ""
	if needVenue {
		ledger, engine, err := OpenVenue(cfg, d.Market)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Ledger, d.Paper = ledger, engine
	}

	executors := map[trade.Mode]execution.Executor{
		trade.ModeInvestor: d.executor(cfg.Execution.LiveURL),
		trade.ModeLearner:  d.executor(cfg.Execution.PracticeURL),
	}

	var src accountservice.BalanceSource
	if cfg.Account.BalancesURL != "" {
		src = httpsource.NewClient(cfg.Account.BalancesURL, cfg.Account.RefreshTimeout)
	} else {
		src = accountservice.BalanceSourceFunc(d.Ledger.AccountBalances)
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.History = store

	acfg := accountservice.DefaultConfig()
	acfg.RefreshInterval = cfg.Account.RefreshInterval
	acfg.RefreshTimeout = cfg.Account.RefreshTimeout
	acfg.HistoryLimit = cfg.History.Limit
	d.Account = accountservice.NewAccountService(src, store, acfg)

	scfg := tradeservice.DefaultConfig()
	scfg.QuoteAsset = cfg.Account.QuoteAsset
	scfg.ExecTimeout = cfg.Execution.Timeout
	scfg.RefreshTimeout = cfg.Account.RefreshTimeout
	d.Submitter = tradeservice.NewSubmitter(tradeservice.Deps{
		Balances:  d.Account,
		Pairs:     d.Market,
		Executors: executors,
		Refresher: d.Account,
		Recorder:  store,
	}, scfg)

	if err := d.Account.RefreshBalances(ctx); err != nil {
		log.WithError(err).Warn("initial balance refresh failed")
	}
	if err := d.Account.RefreshOrderHistory(ctx); err != nil {
		log.WithError(err).Warn("initial history refresh failed")
	}

	log.WithFields(logrus.Fields{
		"mode":     cfg.Mode,
		"pairs":    len(cfg.Market.Pairs),
		"embedded": needVenue,
	}).Info("desk ready")
	return d, nil
}

func (d *Desk) executor(url string) execution.Executor {
	if url == "" {
		return d.Paper
	}
	hcfg := httpexec.DefaultConfig()
	hcfg.BaseURL = url
	hcfg.Timeout = d.cfg.Execution.Timeout
	return httpexec.NewClient(hcfg)
}

// Mode returns the configured starting mode.
func (d *Desk) Mode() trade.Mode {
	return d.cfg.Mode
}

// QuoteAsset returns the cash asset.
func (d *Desk) QuoteAsset() string {
	return d.cfg.Account.QuoteAsset
}

// Close shuts down all subsystems in reverse dependency order.
func (d *Desk) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Account != nil {
		d.Account.Close()
	}
	if d.History != nil {
		if err := d.History.Close(); err != nil {
			logrus.WithError(err).Warn("close history")
		}
	}
	if d.Ledger != nil {
		if err := d.Ledger.Close(); err != nil {
			logrus.WithError(err).Warn("close ledger")
		}
	}
	if d.Market != nil {
		d.Market.Close()
	}
}
