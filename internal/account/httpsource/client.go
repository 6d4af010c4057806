package httpsource

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/zappabad/tradedesk/internal/account"
)

const balancesPath = "/api/v1/balances"

// Client fetches balances from a remote venue.
type Client struct {
	client *resty.Client
}

// NewClient creates a balance source for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return &Client{client: c}
}

// Balances implements the account service's BalanceSource.
func (c *Client) Balances(ctx context.Context) ([]account.Balance, error) {
	var out account.BalancesResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(balancesPath)
	if err != nil {
		return nil, errors.Wrap(err, "fetch balances")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http non-2xx: %s", resp.Status())
	}
	return out.Balances, nil
}
