package httpsource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/tradedesk/internal/account"
)

func TestBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, balancesPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(account.BalancesResponse{Balances: []account.Balance{
			account.NewBalance("USD", decimal.NewFromInt(250)),
		}})
	}))
	defer srv.Close()

	bs, err := NewClient(srv.URL, 0).Balances(context.Background())
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, "USD", bs[0].Asset)
	assert.Equal(t, "250", bs[0].Available.String())
}

func TestBalancesNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Balances(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-2xx")
}
