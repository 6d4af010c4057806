package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/tradedesk/internal/market"
)

// WebSocketConfig configures a websocket price feed.
type WebSocketConfig struct {
	URL string
	// ReconnectMin and ReconnectMax bound the reconnect backoff.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	// ReadTimeout closes a silent connection.
	ReadTimeout time.Duration
}

// DefaultWebSocketConfig returns a Config with reasonable defaults.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		ReconnectMin: 500 * time.Millisecond,
		ReconnectMax: 30 * time.Second,
		ReadTimeout:  45 * time.Second,
	}
}

// WebSocket reads JSON ticks from a websocket and reconnects on error.
type WebSocket struct {
	cfg WebSocketConfig
	log *logrus.Entry
}

// NewWebSocket creates a websocket feed.
func NewWebSocket(cfg WebSocketConfig, log *logrus.Entry) *WebSocket {
	def := DefaultWebSocketConfig()
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = def.ReconnectMin
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = def.ReconnectMax
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &WebSocket{cfg: cfg, log: log.WithField("feed", "websocket")}
}

// Run connects and forwards ticks until ctx is done.
func (w *WebSocket) Run(ctx context.Context, out chan<- market.Tick) error {
	backoff := w.cfg.ReconnectMin
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		received, err := w.session(ctx, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if received {
			backoff = w.cfg.ReconnectMin
		}
		w.log.WithError(err).WithField("retry_in", backoff).Warn("price feed disconnected")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > w.cfg.ReconnectMax {
			backoff = w.cfg.ReconnectMax
		}
	}
}

func (w *WebSocket) session(ctx context.Context, out chan<- market.Tick) (bool, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.cfg.URL, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	w.log.WithField("url", w.cfg.URL).Info("price feed connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	received := false
	for {
		_ = conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return received, err
		}

		var t market.Tick
		if err := json.Unmarshal(msg, &t); err != nil {
			w.log.WithError(err).Debug("skip malformed tick")
			continue
		}
		if t.Symbol == "" || !t.Price.IsPositive() {
			continue
		}
		if t.Time.IsZero() {
			t.Time = time.Now()
		}
		received = true

		select {
		case out <- t:
		case <-ctx.Done():
			return received, ctx.Err()
		}
	}
}
