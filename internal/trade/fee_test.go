package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFee(t *testing.T) {
	assert.Equal(t, "5.00", Fee(dec("1000")).StringFixed(2))
	assert.Equal(t, "0.50", Fee(dec("100")).StringFixed(2))
}

func TestReceiveAmount(t *testing.T) {
	assert.Equal(t, "995.00", ReceiveAmount(SideSell, dec("0.02"), dec("1000")).StringFixed(2))
	assert.True(t, ReceiveAmount(SideBuy, dec("0.02"), dec("1000")).Equal(dec("0.02")))
}
