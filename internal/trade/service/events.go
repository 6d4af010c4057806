package service

import "github.com/zappabad/tradedesk/internal/trade"

// Emission is published by the submitter. It is either a PendingEmission or a
// SettledEmission; every submit that reaches the backend emits one of each, in order.
type Emission interface {
	isEmission()
}

// PendingEmission carries the optimistic order before the backend answers.
type PendingEmission struct {
	Order trade.Order
}

// SettledEmission carries the terminal order.
type SettledEmission struct {
	Order trade.Order
}

func (PendingEmission) isEmission() {}
func (SettledEmission) isEmission() {}
