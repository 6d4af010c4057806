package trade

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount         = errors.New("amount required")
	ErrNonPositivePrice    = errors.New("price unavailable")
	ErrZeroBalance         = errors.New("no available balance")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// BuyTolerance absorbs display rounding on the cash leg of a buy.
var BuyTolerance = decimal.RequireFromString("0.01")

// Reason explains why a trade cannot be submitted.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonEmptyAmount
	ReasonNonPositivePrice
	ReasonZeroBalance
	ReasonInsufficientBalance
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "OK"
	case ReasonEmptyAmount:
		return "EMPTY_AMOUNT"
	case ReasonNonPositivePrice:
		return "NON_POSITIVE_PRICE"
	case ReasonZeroBalance:
		return "ZERO_BALANCE"
	case ReasonInsufficientBalance:
		return "INSUFFICIENT_BALANCE"
	default:
		return "UNKNOWN"
	}
}

// Err maps the reason to its sentinel error, or nil for ReasonNone.
func (r Reason) Err() error {
	switch r {
	case ReasonEmptyAmount:
		return ErrEmptyAmount
	case ReasonNonPositivePrice:
		return ErrNonPositivePrice
	case ReasonZeroBalance:
		return ErrZeroBalance
	case ReasonInsufficientBalance:
		return ErrInsufficientBalance
	}
	return nil
}

// Validation is the advisory result of a local balance check.
type Validation struct {
	OK     bool
	Reason Reason
}

// Err returns nil when the validation passed.
func (v Validation) Err() error {
	if v.OK {
		return nil
	}
	return v.Reason.Err()
}

func reject(r Reason) Validation { return Validation{Reason: r} }

// CanSubmit checks a proposed trade against the available balance of the leg being spent.
// A buy spends cash and is allowed up to cashBalance+BuyTolerance; a sell spends
// quantity and has no tolerance. The check is local only; the backend re-checks.
func CanSubmit(side Side, cashAmount, quantityAmount, cashBalance, quantityBalance decimal.Decimal) Validation {
	switch side {
	case SideBuy:
		if !cashAmount.IsPositive() {
			return reject(ReasonEmptyAmount)
		}
		if cashAmount.GreaterThan(cashBalance.Add(BuyTolerance)) {
			if !cashBalance.IsPositive() {
				return reject(ReasonZeroBalance)
			}
			return reject(ReasonInsufficientBalance)
		}
	case SideSell:
		if !quantityAmount.IsPositive() {
			return reject(ReasonEmptyAmount)
		}
		if quantityAmount.GreaterThan(quantityBalance) {
			if !quantityBalance.IsPositive() {
				return reject(ReasonZeroBalance)
			}
			return reject(ReasonInsufficientBalance)
		}
	default:
		return reject(ReasonEmptyAmount)
	}
	return Validation{OK: true}
}

// ValidationError is returned by the submitter when the local gate rejects a trade.
type ValidationError struct {
	Side   Side
	Asset  string
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s rejected: %v", e.Side, e.Asset, e.Reason.Err())
}

func (e *ValidationError) Unwrap() error { return e.Reason.Err() }
