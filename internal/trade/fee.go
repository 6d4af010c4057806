package trade

import "github.com/shopspring/decimal"

// PlatformFeeRate is the fixed platform fee, taken from the cash value of a trade.
var PlatformFeeRate = decimal.RequireFromString("0.005")

// Fee returns the platform fee for a trade of the given cash value.
func Fee(cashValue decimal.Decimal) decimal.Decimal {
	return cashValue.Mul(PlatformFeeRate)
}

// ReceiveAmount is what the user ends up with. A buyer receives the full quantity
// (the fee comes out of cash); a seller receives the cash value less the fee.
func ReceiveAmount(side Side, quantity, cashValue decimal.Decimal) decimal.Decimal {
	if side == SideSell {
		return cashValue.Sub(Fee(cashValue))
	}
	return quantity
}
