package activation

import (
	"context"
	"time"

	"mira/internal/indicator"
	"mira/internal/logging"
	"mira/internal/speech"
)

// Config controls which activation sources the arbiter races.
type Config struct {
	ButtonEnabled   bool
	WakeWordEnabled bool
	WakePhrases     []string
	// Debounce is the window after an accepted press in which further
	// presses are treated as contact bounce.
	Debounce time.Duration
	// PollInterval is how often the wait loop re-checks its sources.
	PollInterval time.Duration
}

// Arbiter waits for the next activation, racing the button against the wake
// word watcher. When both fire in the same poll window the button wins. When
// neither source is enabled every Await activates immediately.
type Arbiter struct {
	cfg       Config
	button    Button
	source    speech.Source
	indicator indicator.Indicator
	logger    logging.Logger

	lastPress time.Time
}

func New(cfg Config, button Button, source speech.Source, ind indicator.Indicator, logger logging.Logger) *Arbiter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if ind == nil {
		ind = indicator.Nop()
	}
	return &Arbiter{
		cfg:       cfg,
		button:    button,
		source:    source,
		indicator: ind,
		logger:    logging.OrNop(logger),
	}
}

// Await blocks until an activation source fires, the timeout passes, or ctx
// is cancelled. A timeout of zero means wait forever.
func (a *Arbiter) Await(ctx context.Context, timeout time.Duration) Event {
	buttonOn := a.cfg.ButtonEnabled && a.button != nil
	wakeOn := a.cfg.WakeWordEnabled && a.source != nil && len(a.cfg.WakePhrases) > 0

	if !buttonOn && !wakeOn {
		a.set(indicator.Listening)
		return Event{Kind: KindAuto, At: time.Now()}
	}

	a.set(indicator.Waiting)

	var presses <-chan time.Time
	if buttonOn {
		presses = a.button.Presses()
	}

	var wakeHits <-chan Event
	if wakeOn {
		watcher := NewWakeWatcher(a.source, a.cfg.WakePhrases, a.logger)
		watcher.Start(ctx)
		defer watcher.Stop()
		wakeHits = watcher.Hits()
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// Button is checked before the wake channel so a simultaneous
		// press and wake phrase resolve the same way every time.
		if presses != nil {
			if ev, ok := a.takePress(presses); ok {
				a.set(indicator.Listening)
				return ev
			}
		}
		if wakeHits != nil {
			select {
			case ev := <-wakeHits:
				a.set(indicator.Listening)
				return ev
			default:
			}
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			a.set(indicator.Off)
			return Event{Kind: KindTimeout, At: time.Now()}
		}
		select {
		case <-ctx.Done():
			a.set(indicator.Off)
			return Event{Kind: KindCancelled, At: time.Now()}
		case <-ticker.C:
		}
	}
}

// takePress drains pending presses, returning the first one outside the
// debounce window of the previously accepted press.
func (a *Arbiter) takePress(presses <-chan time.Time) (Event, bool) {
	for {
		select {
		case at := <-presses:
			if !a.lastPress.IsZero() && at.Sub(a.lastPress) < a.cfg.Debounce {
				a.logger.Debug("button bounce ignored (%s after last press)", at.Sub(a.lastPress))
				continue
			}
			a.lastPress = at
			return Event{Kind: KindButton, At: at}, true
		default:
			return Event{}, false
		}
	}
}

// set updates the indicator. Indicator failures are advisory; the session
// must not die because a light did.
func (a *Arbiter) set(state indicator.State) {
	if err := a.indicator.Set(state); err != nil {
		a.logger.Warn("indicator set %s: %v", state, err)
	}
}
