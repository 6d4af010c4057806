package service

// Config holds configuration for the market service.
type Config struct {
	// TickBuffer is the size of the channel between the feed and the view.
	TickBuffer int
	// PairEventBuffer is the size of the pair events channel.
	PairEventBuffer int
	// DropPairEvents determines whether the pair events channel drops on overflow.
	DropPairEvents bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		TickBuffer:      256,
		PairEventBuffer: 1024,
		DropPairEvents:  true,
	}
}
