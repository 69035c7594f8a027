package speech

import (
	"context"
	"sync"
)

// ScriptedSource replays a fixed frame sequence for development and tests.
// After the script is exhausted it keeps yielding silent frames. It records
// Reset and Drain calls so tests can assert session hygiene.
type ScriptedSource struct {
	mu     sync.Mutex
	frames []Frame
	pos    int
	final  string
	err    error
	errAt  int

	ResetCalls []int
	DrainCalls int
}

// NewScriptedSource builds a source that replays frames in order and reports
// final as the cumulative session result.
func NewScriptedSource(final string, frames ...Frame) *ScriptedSource {
	return &ScriptedSource{frames: frames, final: final, errAt: -1}
}

// FailAt makes the source return err instead of the frame at index i.
func (s *ScriptedSource) FailAt(i int, err error) *ScriptedSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errAt = i
	s.err = err
	return s
}

// NextFrame returns the next scripted frame, the scripted error, or a silent
// frame once the script runs out.
func (s *ScriptedSource) NextFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errAt >= 0 && s.pos == s.errAt {
		s.pos++
		return Frame{}, s.err
	}
	if s.pos < len(s.frames) {
		f := s.frames[s.pos]
		s.pos++
		return f, nil
	}
	s.pos++
	return Frame{Kind: FrameNoSpeech}, nil
}

// FinalResult returns the configured cumulative result.
func (s *ScriptedSource) FinalResult() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final
}

// Reset records the requested sample rate. The script keeps its position so
// sequential sessions consume successive frames.
func (s *ScriptedSource) Reset(sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ResetCalls = append(s.ResetCalls, sampleRate)
	return nil
}

// Rewind restarts the script from the first frame.
func (s *ScriptedSource) Rewind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
}

// Drain records the drain call.
func (s *ScriptedSource) Drain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DrainCalls++
}

// Consumed returns how many frames have been pulled so far.
func (s *ScriptedSource) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
