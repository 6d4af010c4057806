package trade

import "fmt"

// Side represents the trade side: buy or sell.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// ParseSide parses "BUY" or "SELL".
func ParseSide(s string) (Side, bool) {
	switch s {
	case "BUY", "buy":
		return SideBuy, true
	case "SELL", "sell":
		return SideSell, true
	default:
		return 0, false
	}
}

// Mode selects the execution path used by the submitter.
type Mode uint8

const (
	// ModeLearner is the practice path. Failures reported there may be simulated.
	ModeLearner Mode = iota
	// ModeInvestor is the live path.
	ModeInvestor
)

func (m Mode) String() string {
	switch m {
	case ModeLearner:
		return "LEARNER"
	case ModeInvestor:
		return "INVESTOR"
	default:
		return "UNKNOWN"
	}
}

// ParseMode parses "LEARNER" or "INVESTOR" (case-insensitive on the common spellings).
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "LEARNER", "learner", "practice":
		return ModeLearner, true
	case "INVESTOR", "investor", "live":
		return ModeInvestor, true
	default:
		return 0, false
	}
}

// Status is the lifecycle state of an order.
type Status uint8

const (
	StatusPending Status = iota
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus parses a status name as reported by an execution backend.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "PENDING":
		return StatusPending, true
	case "COMPLETED", "FILLED":
		return StatusCompleted, true
	case "FAILED", "REJECTED":
		return StatusFailed, true
	case "CANCELLED", "CANCELED":
		return StatusCancelled, true
	default:
		return 0, false
	}
}

// IsTerminal reports whether s is absorbing.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Field names the amount field of a ticket.
type Field uint8

const (
	FieldNone Field = iota
	FieldCash
	FieldQuantity
)

func (f Field) String() string {
	switch f {
	case FieldCash:
		return "CASH"
	case FieldQuantity:
		return "QUANTITY"
	default:
		return "NONE"
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, ok := ParseSide(string(b))
	if !ok {
		return fmt.Errorf("unknown side %q", b)
	}
	*s = v
	return nil
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, ok := ParseMode(string(b))
	if !ok {
		return fmt.Errorf("unknown mode %q", b)
	}
	*m = v
	return nil
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	v, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("unknown status %q", b)
	}
	*s = v
	return nil
}
