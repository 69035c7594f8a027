// Package speech defines the contract between the assistant core and the
// speech recognizer. The core never touches raw audio; it only consumes the
// recognizer's partial/final/no-speech signal frame by frame.
package speech

import "context"

// FrameKind classifies a single recognizer frame.
type FrameKind int

const (
	// FramePartial carries an in-progress hypothesis. Empty text means the
	// recognizer heard nothing new in this frame.
	FramePartial FrameKind = iota
	// FrameFinal carries a committed utterance boundary. Empty text means
	// the recognizer closed a segment without speech.
	FrameFinal
	// FrameNoSpeech is an explicit silent frame.
	FrameNoSpeech
)

// Frame is one recognizer result for one audio chunk.
type Frame struct {
	Kind FrameKind
	Text string
}

// Silent reports whether the frame contributes to the silence budget.
func (f Frame) Silent() bool {
	switch f.Kind {
	case FrameNoSpeech:
		return true
	case FramePartial, FrameFinal:
		return f.Text == ""
	default:
		return true
	}
}

// Source produces recognizer frames from the single capture device. There is
// exactly one logical microphone: callers must never read frames from two
// places at once.
//
// NextFrame blocks until a frame is available or ctx is done. FinalResult
// returns the recognizer's cumulative result for the current session. Reset
// reinitializes the recognizer for a fresh session at the given sample rate.
// Drain discards any frames buffered but not yet consumed, so a later
// session never reads stale audio.
type Source interface {
	NextFrame(ctx context.Context) (Frame, error)
	FinalResult() string
	Reset(sampleRate int) error
	Drain()
}
