package trade

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanSubmitBuy(t *testing.T) {
	tests := []struct {
		name    string
		cash    string
		balance string
		want    Reason
	}{
		{"within balance", "50", "100", ReasonNone},
		{"exact balance", "100", "100", ReasonNone},
		{"inside tolerance", "100.005", "100", ReasonNone},
		{"at tolerance", "100.01", "100", ReasonNone},
		{"over tolerance", "100.02", "100", ReasonInsufficientBalance},
		{"zero balance one cent", "0.01", "0", ReasonNone},
		{"zero balance", "5", "0", ReasonZeroBalance},
		{"empty", "0", "100", ReasonEmptyAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CanSubmit(SideBuy, dec(tt.cash), decimal.Zero, dec(tt.balance), decimal.Zero)
			assert.Equal(t, tt.want, v.Reason)
			assert.Equal(t, tt.want == ReasonNone, v.OK)
		})
	}
}

func TestCanSubmitSell(t *testing.T) {
	tests := []struct {
		name    string
		qty     string
		balance string
		want    Reason
	}{
		{"exact", "1", "1", ReasonNone},
		{"no tolerance", "1.00000001", "1", ReasonInsufficientBalance},
		{"zero balance", "0.1", "0", ReasonZeroBalance},
		{"empty", "0", "1", ReasonEmptyAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CanSubmit(SideSell, decimal.Zero, dec(tt.qty), decimal.Zero, dec(tt.balance))
			assert.Equal(t, tt.want, v.Reason)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Side: SideBuy, Asset: "BTC", Reason: ReasonInsufficientBalance}
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.Contains(t, err.Error(), "BUY BTC")
	assert.NoError(t, Validation{OK: true}.Err())
}
