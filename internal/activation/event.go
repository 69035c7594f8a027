package activation

import "time"

// Kind says how a waiting session ended.
type Kind int

const (
	// KindButton means the hardware button was pressed.
	KindButton Kind = iota
	// KindWakeWord means a wake phrase was heard.
	KindWakeWord
	// KindAuto means no activation source is enabled, so the session
	// starts immediately.
	KindAuto
	// KindTimeout means the wait deadline passed without activation.
	KindTimeout
	// KindCancelled means the surrounding context was cancelled.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindWakeWord:
		return "wake_word"
	case KindAuto:
		return "auto"
	case KindTimeout:
		return "timeout"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event reports the outcome of one Await call.
type Event struct {
	Kind Kind
	// At is when the activation happened.
	At time.Time
	// Phrase is the recognized text for wake word activations.
	Phrase string
}

// Activated reports whether the event should start a capture session.
func (e Event) Activated() bool {
	return e.Kind == KindButton || e.Kind == KindWakeWord || e.Kind == KindAuto
}
