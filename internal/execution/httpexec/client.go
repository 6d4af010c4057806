package httpexec

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/zappabad/tradedesk/internal/execution"
)

const tradesPath = "/api/v1/trades"

// Config configures the HTTP executor.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   15 * time.Second,
		UserAgent: "tradedesk",
	}
}

// Client posts trades to a remote execution venue. It never retries: a trade
// request that may have reached the venue is not safe to resend.
type Client struct {
	client *resty.Client
}

// NewClient creates an executor talking to cfg.BaseURL.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	c := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Content-Type", "application/json")
	return &Client{client: c}
}

// ExecuteTrade implements execution.Executor.
// A rejected trade is decoded from a 4xx body; anything else non-2xx is a transport error.
func (c *Client) ExecuteTrade(ctx context.Context, req execution.Request) (execution.Response, error) {
	var out execution.Response
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(tradesPath)
	if err != nil {
		return execution.Response{}, errors.Wrap(err, "execute trade")
	}

	switch {
	case resp.IsSuccess():
		return out, nil
	case resp.StatusCode() >= 400 && resp.StatusCode() < 500 && out.Message != "":
		out.Success = false
		return out, nil
	default:
		return execution.Response{}, errors.Errorf("http non-2xx: %s", resp.Status())
	}
}
