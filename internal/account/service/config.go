package service

import "time"

// Config holds configuration for the account service.
type Config struct {
	// RefreshInterval enables a periodic refresh when positive.
	RefreshInterval time.Duration
	// RefreshTimeout bounds each periodic refresh.
	RefreshTimeout time.Duration
	// HistoryLimit is how many recent orders are kept.
	HistoryLimit int
	// EventBuffer is the size of the events channel. Events drop on overflow.
	EventBuffer int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 0,
		RefreshTimeout:  5 * time.Second,
		HistoryLimit:    50,
		EventBuffer:     64,
	}
}
