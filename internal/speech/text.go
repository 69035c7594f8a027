package speech

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"mira/internal/async"
	"mira/internal/logging"
)

// LineSource adapts a line-oriented reader, usually stdin, to the Source
// interface. Each typed line arrives as one finalized utterance; while the
// reader is quiet the source emits empty partial frames on a fixed cadence
// so silence budgets keep counting.
type LineSource struct {
	lines chan string

	mu   sync.Mutex
	last string
	pace time.Duration
}

func NewLineSource(r io.Reader, logger logging.Logger) *LineSource {
	s := &LineSource{
		lines: make(chan string, 16),
		pace:  250 * time.Millisecond,
	}
	async.Go(logging.OrNop(logger), "line-source", func() {
		defer close(s.lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				s.lines <- line
			}
		}
	})
	return s
}

func (s *LineSource) NextFrame(ctx context.Context) (Frame, error) {
	timer := time.NewTimer(s.pace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return Frame{}, io.EOF
		}
		s.mu.Lock()
		s.last = line
		s.mu.Unlock()
		return Frame{Kind: FrameFinal, Text: line}, nil
	case <-timer.C:
		return Frame{Kind: FramePartial}, nil
	}
}

func (s *LineSource) FinalResult() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *LineSource) Reset(int) error {
	s.mu.Lock()
	s.last = ""
	s.mu.Unlock()
	s.Drain()
	return nil
}

// Drain discards lines typed before the session started.
func (s *LineSource) Drain() {
	for {
		select {
		case _, ok := <-s.lines:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
