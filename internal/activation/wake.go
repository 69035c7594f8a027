package activation

import (
	"context"
	"strings"
	"time"

	"mira/internal/async"
	"mira/internal/logging"
	"mira/internal/speech"
)

// WakeWatcher listens on a speech source for any of the configured phrases.
// Matching considers finalized utterances only; partial hypotheses are too
// unstable to trigger on. Stop blocks until the watcher goroutine has fully
// released the source, so the capture session that follows never reads the
// microphone concurrently with the watcher.
type WakeWatcher struct {
	source  speech.Source
	phrases []string
	logger  logging.Logger

	hits   chan Event
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWakeWatcher(source speech.Source, phrases []string, logger logging.Logger) *WakeWatcher {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &WakeWatcher{
		source:  source,
		phrases: lowered,
		logger:  logging.OrNop(logger),
		hits:    make(chan Event, 1),
		done:    make(chan struct{}),
	}
}

// Hits delivers the single wake event the watcher fires before it
// terminates.
func (w *WakeWatcher) Hits() <-chan Event { return w.hits }

// Start launches the watcher goroutine.
func (w *WakeWatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	async.Go(w.logger, "wake-watcher", func() {
		defer close(w.done)
		w.run(ctx)
	})
}

// Stop cancels the watcher and waits for it to exit.
func (w *WakeWatcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *WakeWatcher) run(ctx context.Context) {
	defer w.source.Drain()
	for {
		frame, err := w.source.NextFrame(ctx)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.Warn("wake watcher: read frame: %v", err)
			}
			return
		}
		if frame.Kind != speech.FrameFinal || frame.Text == "" {
			continue
		}
		if phrase, ok := w.match(frame.Text); ok {
			w.logger.Info("wake phrase heard: %q", phrase)
			select {
			case w.hits <- Event{Kind: KindWakeWord, At: time.Now(), Phrase: phrase}:
			default:
			}
			// Single-shot: the watcher must release the source as soon
			// as it has fired so the capture session can take over.
			return
		}
	}
}

func (w *WakeWatcher) match(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, p := range w.phrases {
		if strings.Contains(lowered, p) {
			return p, true
		}
	}
	return "", false
}
