package capture

import (
	"context"
	"time"

	"mira/internal/logging"
	"mira/internal/speech"
)

// EndReason says why a capture session stopped consuming frames.
type EndReason int

const (
	// EndSilence means the utterance completed naturally, either by a
	// finalized result or by the silence budget running out with text.
	EndSilence EndReason = iota
	// EndMaxDuration means the session hit its frame budget.
	EndMaxDuration
	// EndNoSpeech means the silence budget ran out with nothing said.
	EndNoSpeech
	// EndError means the source failed mid-capture.
	EndError
)

func (r EndReason) String() string {
	switch r {
	case EndSilence:
		return "silence"
	case EndMaxDuration:
		return "max_duration"
	case EndNoSpeech:
		return "no_speech"
	case EndError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is one finalized utterance. Text is empty for NoSpeech and Error
// outcomes.
type Result struct {
	Text    string
	EndedBy EndReason
	// Frames is how many frames were consumed before the session ended.
	Frames int
}

// Config sizes the silence and duration budgets. Budgets are kept in frame
// units: one frame covers ChunkSize/SampleRate seconds of audio.
type Config struct {
	SampleRate     int
	ChunkSize      int
	SilenceTimeout time.Duration
}

// Session turns a frame-by-frame utterance source into single finalized
// utterances. One Session serves many sequential captures; it is not safe
// for concurrent use.
type Session struct {
	cfg    Config
	source speech.Source
	logger logging.Logger
}

func NewSession(cfg Config, source speech.Source, logger logging.Logger) *Session {
	return &Session{cfg: cfg, source: source, logger: logging.OrNop(logger)}
}

// frameBudget converts a wall-clock duration into a whole frame count,
// never less than one frame.
func (s *Session) frameBudget(d time.Duration) int {
	frames := int(d.Seconds() * float64(s.cfg.SampleRate) / float64(s.cfg.ChunkSize))
	if frames < 1 {
		frames = 1
	}
	return frames
}

// Capture pulls frames until the utterance ends, the silence budget runs
// out, the max duration budget runs out, or the source fails. Buffered
// frames are always discarded before returning so the next session never
// consumes stale audio.
func (s *Session) Capture(ctx context.Context, maxDuration time.Duration) Result {
	defer s.source.Drain()

	if err := s.source.Reset(s.cfg.SampleRate); err != nil {
		s.logger.Error("capture: reset source: %v", err)
		return Result{EndedBy: EndError}
	}

	maxSilenceFrames := s.frameBudget(s.cfg.SilenceTimeout)
	maxFrames := s.frameBudget(maxDuration)

	silentFrames := 0
	frames := 0
	for {
		frame, err := s.source.NextFrame(ctx)
		if err != nil {
			s.logger.Error("capture: read frame: %v", err)
			return Result{EndedBy: EndError, Frames: frames}
		}
		frames++

		if frame.Kind == speech.FrameFinal && frame.Text != "" {
			// The source decided the utterance boundary itself.
			return Result{Text: frame.Text, EndedBy: EndSilence, Frames: frames}
		}

		if frame.Silent() {
			silentFrames++
		} else {
			silentFrames = 0
		}

		if silentFrames >= maxSilenceFrames {
			return s.finish(EndNoSpeech, frames)
		}
		if frames >= maxFrames {
			return s.finish(EndMaxDuration, frames)
		}
	}
}

// finish queries the source's cumulative result. Text found there counts as
// a natural completion for the silence path; the max duration path keeps
// its reason so the caller can warn the user about truncation.
func (s *Session) finish(budget EndReason, frames int) Result {
	text := s.source.FinalResult()
	switch {
	case budget == EndNoSpeech && text != "":
		return Result{Text: text, EndedBy: EndSilence, Frames: frames}
	default:
		return Result{Text: text, EndedBy: budget, Frames: frames}
	}
}
