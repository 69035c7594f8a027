package activation

import "time"

// Button is a physical press source. Implementations deliver raw press
// timestamps on the channel; debouncing happens in the arbiter so bounced
// contacts never double-trigger a session.
type Button interface {
	// Presses returns the channel of press timestamps. The channel stays
	// open for the lifetime of the button.
	Presses() <-chan time.Time
}

// ChanButton is a Button backed by a plain channel. GPIO adapters push into
// it from their interrupt callback; tests push into it directly.
type ChanButton struct {
	ch chan time.Time
}

func NewChanButton() *ChanButton {
	return &ChanButton{ch: make(chan time.Time, 8)}
}

func (b *ChanButton) Presses() <-chan time.Time { return b.ch }

// Press records a press at the given time, dropping it if the buffer is full.
func (b *ChanButton) Press(at time.Time) {
	select {
	case b.ch <- at:
	default:
	}
}
