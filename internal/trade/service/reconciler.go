package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zappabad/tradedesk/internal/trade"
)

// Recorder journals terminal orders.
type Recorder interface {
	Record(ctx context.Context, o trade.Order) error
}

// Refresher reloads state that a trade changes.
type Refresher interface {
	RefreshBalances(ctx context.Context) error
	RefreshOrderHistory(ctx context.Context) error
}

// Reconciler runs the post-trade steps for a terminal order.
// Failures are logged and never change the order.
type Reconciler struct {
	recorder  Recorder
	refresher Refresher
	timeout   time.Duration
	log       *logrus.Entry
}

// NewReconciler creates a reconciler. Either dependency may be nil.
func NewReconciler(recorder Recorder, refresher Refresher, timeout time.Duration) *Reconciler {
	if timeout <= 0 {
		timeout = DefaultConfig().RefreshTimeout
	}
	return &Reconciler{
		recorder:  recorder,
		refresher: refresher,
		timeout:   timeout,
		log:       logrus.WithField("component", "reconciler"),
	}
}

// Reconcile records the order, refreshes balances, then order history, and
// clears the ticket if the order completed. Steps run in that order.
func (r *Reconciler) Reconcile(ctx context.Context, s trade.Settled, t *trade.Ticket) {
	o := s.Snapshot()
	log := r.log.WithFields(logrus.Fields{"order": o.ID, "status": o.Status})

	if r.recorder != nil {
		r.step(ctx, log, "record order", func(ctx context.Context) error { return r.recorder.Record(ctx, o) })
	}
	if r.refresher != nil {
		r.step(ctx, log, "refresh balances", r.refresher.RefreshBalances)
		r.step(ctx, log, "refresh order history", r.refresher.RefreshOrderHistory)
	}
	if o.Status == trade.StatusCompleted && t != nil {
		t.Clear()
	}
}

func (r *Reconciler) step(ctx context.Context, log *logrus.Entry, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.WithError(err).Warnf("%s failed", name)
	}
}
