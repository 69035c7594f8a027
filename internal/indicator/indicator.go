package indicator

import "mira/internal/logging"

// State is what the user-facing light should currently show.
type State int

const (
	// Off means the assistant is idle.
	Off State = iota
	// Waiting means the assistant is waiting for activation.
	Waiting
	// Listening means a capture session is running.
	Listening
	// Processing means a command is being handled.
	Processing
)

func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case Waiting:
		return "waiting"
	case Listening:
		return "listening"
	case Processing:
		return "processing"
	default:
		return "unknown"
	}
}

// Indicator drives a physical or virtual status light. Implementations may
// fail; callers treat indicator errors as advisory and never abort on them.
type Indicator interface {
	Set(state State) error
}

// Nop returns an indicator that does nothing.
func Nop() Indicator { return nopIndicator{} }

type nopIndicator struct{}

func (nopIndicator) Set(State) error { return nil }

// LogIndicator mirrors state changes into a logger. Useful on hosts without
// a physical light and in tests.
type LogIndicator struct {
	logger logging.Logger
}

func NewLogIndicator(logger logging.Logger) *LogIndicator {
	return &LogIndicator{logger: logging.OrNop(logger)}
}

func (l *LogIndicator) Set(state State) error {
	l.logger.Debug("indicator: %s", state)
	return nil
}
