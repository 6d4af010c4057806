package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/internal/trade"
	"github.com/zappabad/tradedesk/pkg/logger"
)

const envPrefix = "TRADEDESK_"

// FeedKind selects the price feed.
type FeedKind string

const (
	FeedRandomWalk FeedKind = "random"
	FeedWebSocket  FeedKind = "websocket"
)

// ConfigFile is the YAML layout.
type ConfigFile struct {
	Mode string `yaml:"mode"`
	Log  struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   *bool  `yaml:"compress"`
	} `yaml:"log"`
	Market struct {
		Feed       string        `yaml:"feed"`
		WSURL      string        `yaml:"ws_url"`
		Interval   time.Duration `yaml:"interval"`
		Volatility float64       `yaml:"volatility"`
		Seed       int64         `yaml:"seed"`
		Pairs      []struct {
			Base  string `yaml:"base"`
			Quote string `yaml:"quote"`
			Price string `yaml:"price"`
		} `yaml:"pairs"`
	} `yaml:"market"`
	Execution struct {
		LiveURL     string        `yaml:"live_url"`
		PracticeURL string        `yaml:"practice_url"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"execution"`
	Paper struct {
		LedgerPath   string  `yaml:"ledger_path"`
		StartingCash string  `yaml:"starting_cash"`
		FailureRate  float64 `yaml:"failure_rate"`
		FailEvery    int     `yaml:"fail_every"`
		Seed         int64   `yaml:"seed"`
	} `yaml:"paper"`
	Account struct {
		QuoteAsset      string        `yaml:"quote_asset"`
		BalancesURL     string        `yaml:"balances_url"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		RefreshTimeout  time.Duration `yaml:"refresh_timeout"`
	} `yaml:"account"`
	History struct {
		Path  string `yaml:"path"`
		Limit int    `yaml:"limit"`
	} `yaml:"history"`
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
}

// MarketConfig configures pairs and the price feed.
type MarketConfig struct {
	Feed       FeedKind
	WSURL      string
	Interval   time.Duration
	Volatility float64
	Seed       int64
	Pairs      []market.AssetPair
}

// ExecutionConfig points each mode at a venue. An empty URL uses the embedded paper engine.
type ExecutionConfig struct {
	LiveURL     string
	PracticeURL string
	Timeout     time.Duration
}

// PaperConfig configures the embedded practice venue.
type PaperConfig struct {
	LedgerPath   string
	StartingCash decimal.Decimal
	FailureRate  float64
	FailEvery    int
	Seed         int64
}

// AccountConfig configures balance refreshes.
type AccountConfig struct {
	QuoteAsset      string
	BalancesURL     string
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
}

// HistoryConfig configures the order journal.
type HistoryConfig struct {
	Path  string
	Limit int
}

// ServerConfig configures paperd.
type ServerConfig struct {
	Listen string
}

// Config is the normalized application configuration.
type Config struct {
	Mode      trade.Mode
	Log       logger.Config
	Market    MarketConfig
	Execution ExecutionConfig
	Paper     PaperConfig
	Account   AccountConfig
	History   HistoryConfig
	Server    ServerConfig
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Mode: trade.ModeLearner,
		Log:  logger.DefaultConfig(),
		Market: MarketConfig{
			Feed:       FeedRandomWalk,
			Interval:   time.Second,
			Volatility: 0.002,
			Seed:       1,
			Pairs: []market.AssetPair{
				{Base: "BTC", Quote: "USD", Price: decimal.NewFromInt(50000)},
				{Base: "ETH", Quote: "USD", Price: decimal.NewFromInt(3000)},
				{Base: "SOL", Quote: "USD", Price: decimal.NewFromInt(150)},
			},
		},
		Execution: ExecutionConfig{Timeout: 30 * time.Second},
		Paper: PaperConfig{
			LedgerPath:   "data/paper.badger",
			StartingCash: decimal.NewFromInt(10000),
			Seed:         1,
		},
		Account: AccountConfig{
			QuoteAsset:     "USD",
			RefreshTimeout: 5 * time.Second,
		},
		History: HistoryConfig{Path: "data/history.db", Limit: 50},
		Server:  ServerConfig{Listen: ":8089"},
	}
}

// Load reads .env (if present), then the YAML file at path (if any), then
// TRADEDESK_* environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var file *ConfigFile
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		file = &ConfigFile{}
		if err := yaml.Unmarshal(data, file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg, err := normalize(file)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func normalize(f *ConfigFile) (*Config, error) {
	cfg := Default()
	if f == nil {
		return cfg, nil
	}

	if f.Mode != "" {
		m, ok := trade.ParseMode(f.Mode)
		if !ok {
			return nil, fmt.Errorf("unknown mode %q", f.Mode)
		}
		cfg.Mode = m
	}

	setString(&cfg.Log.Level, f.Log.Level)
	setString(&cfg.Log.OutputFile, f.Log.File)
	setInt(&cfg.Log.MaxSize, f.Log.MaxSize)
	setInt(&cfg.Log.MaxBackups, f.Log.MaxBackups)
	setInt(&cfg.Log.MaxAge, f.Log.MaxAge)
	if f.Log.Compress != nil {
		cfg.Log.Compress = *f.Log.Compress
	}

	if f.Market.Feed != "" {
		cfg.Market.Feed = FeedKind(strings.ToLower(f.Market.Feed))
	}
	setString(&cfg.Market.WSURL, f.Market.WSURL)
	if f.Market.Interval > 0 {
		cfg.Market.Interval = f.Market.Interval
	}
	if f.Market.Volatility > 0 {
		cfg.Market.Volatility = f.Market.Volatility
	}
	if f.Market.Seed != 0 {
		cfg.Market.Seed = f.Market.Seed
	}
	if len(f.Market.Pairs) > 0 {
		cfg.Market.Pairs = nil
		for _, p := range f.Market.Pairs {
			pair := market.AssetPair{Base: strings.ToUpper(p.Base), Quote: strings.ToUpper(p.Quote)}
			if p.Price != "" {
				d, err := decimal.NewFromString(p.Price)
				if err != nil {
					return nil, fmt.Errorf("pair %s price: %w", pair.Symbol(), err)
				}
				pair.Price = d
			}
			cfg.Market.Pairs = append(cfg.Market.Pairs, pair)
		}
	}

	setString(&cfg.Execution.LiveURL, f.Execution.LiveURL)
	setString(&cfg.Execution.PracticeURL, f.Execution.PracticeURL)
	if f.Execution.Timeout > 0 {
		cfg.Execution.Timeout = f.Execution.Timeout
	}

	setString(&cfg.Paper.LedgerPath, f.Paper.LedgerPath)
	if f.Paper.StartingCash != "" {
		d, err := decimal.NewFromString(f.Paper.StartingCash)
		if err != nil {
			return nil, fmt.Errorf("paper starting_cash: %w", err)
		}
		cfg.Paper.StartingCash = d
	}
	cfg.Paper.FailureRate = f.Paper.FailureRate
	cfg.Paper.FailEvery = f.Paper.FailEvery
	if f.Paper.Seed != 0 {
		cfg.Paper.Seed = f.Paper.Seed
	}

	setString(&cfg.Account.QuoteAsset, strings.ToUpper(f.Account.QuoteAsset))
	setString(&cfg.Account.BalancesURL, f.Account.BalancesURL)
	if f.Account.RefreshInterval > 0 {
		cfg.Account.RefreshInterval = f.Account.RefreshInterval
	}
	if f.Account.RefreshTimeout > 0 {
		cfg.Account.RefreshTimeout = f.Account.RefreshTimeout
	}

	setString(&cfg.History.Path, f.History.Path)
	setInt(&cfg.History.Limit, f.History.Limit)
	setString(&cfg.Server.Listen, f.Server.Listen)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := getEnv("MODE"); v != "" {
		m, ok := trade.ParseMode(v)
		if !ok {
			return fmt.Errorf("%sMODE: unknown mode %q", envPrefix, v)
		}
		cfg.Mode = m
	}
	setString(&cfg.Log.Level, getEnv("LOG_LEVEL"))
	setString(&cfg.Log.OutputFile, getEnv("LOG_FILE"))
	setString(&cfg.Market.WSURL, getEnv("WS_URL"))
	setString(&cfg.Execution.LiveURL, getEnv("LIVE_URL"))
	setString(&cfg.Execution.PracticeURL, getEnv("PRACTICE_URL"))
	setString(&cfg.Account.BalancesURL, getEnv("BALANCES_URL"))
	setString(&cfg.Server.Listen, getEnv("LISTEN"))
	if v := getEnv("FAIL_EVERY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sFAIL_EVERY: %w", envPrefix, err)
		}
		cfg.Paper.FailEvery = n
	}
	return nil
}

// Validate checks the normalized configuration.
func (c *Config) Validate() error {
	switch c.Market.Feed {
	case FeedRandomWalk:
	case FeedWebSocket:
		if c.Market.WSURL == "" {
			return fmt.Errorf("market.ws_url is required for the websocket feed")
		}
	default:
		return fmt.Errorf("unknown market feed %q", c.Market.Feed)
	}
	if len(c.Market.Pairs) == 0 {
		return fmt.Errorf("at least one market pair is required")
	}
	for _, p := range c.Market.Pairs {
		if p.Base == "" || p.Quote == "" {
			return fmt.Errorf("market pair needs base and quote")
		}
		if p.Quote != c.Account.QuoteAsset {
			return fmt.Errorf("pair %s is not quoted in %s", p.Symbol(), c.Account.QuoteAsset)
		}
	}
	if c.Paper.FailureRate < 0 || c.Paper.FailureRate > 1 {
		return fmt.Errorf("paper.failure_rate must be within [0,1]")
	}
	if c.Paper.FailEvery < 0 {
		return fmt.Errorf("paper.fail_every must not be negative")
	}
	return nil
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
