package reminders

import (
	"context"
	"fmt"
	"time"

	"mira/internal/logging"
)

// Notifier receives each due reminder as it fires, typically by speaking it.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, r Reminder) error

func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error { return f(ctx, r) }

// dueStore is the slice of Store the scheduler needs.
type dueStore interface {
	Add(ctx context.Context, text string, dueAt time.Time) (Reminder, error)
	PollDue(ctx context.Context, now time.Time) ([]Reminder, error)
}

// Scheduler owns reminder creation and the background delivery loop.
type Scheduler struct {
	store    dueStore
	notifier Notifier
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewScheduler(store dueStore, notifier Notifier, interval time.Duration, logger logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		interval: interval,
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

// Schedule parses a time expression out of raw and persists the reminder.
// ErrNoTimeExpression comes back verbatim so callers can phrase the failure
// for the user instead of treating it as an internal fault.
func (s *Scheduler) Schedule(ctx context.Context, raw string) (Reminder, error) {
	parsed, err := ParseTime(raw, s.now())
	if err != nil {
		return Reminder{}, err
	}
	r, err := s.store.Add(ctx, parsed.Text, parsed.DueAt)
	if err != nil {
		return Reminder{}, fmt.Errorf("schedule reminder: %w", err)
	}
	s.logger.Info("reminder %d scheduled for %s: %q", r.ID, r.DueAt.Format("02.01 15:04"), r.Text)
	return r, nil
}

// Run polls for due reminders on the configured interval until ctx is
// cancelled. Store and notifier failures are logged and never stop the
// loop; a reminder whose notification fails has already been marked and
// will not fire again. With a nil notifier Run only waits for ctx, leaving
// every reminder due.
func (s *Scheduler) Run(ctx context.Context) {
	if s.notifier == nil {
		// PollDue marks reminders notified, so polling without a notifier
		// would silently swallow them.
		s.logger.Warn("reminder delivery disabled: no notifier")
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.deliverDue(ctx)
		}
	}
}

func (s *Scheduler) deliverDue(ctx context.Context) {
	due, err := s.store.PollDue(ctx, s.now())
	if err != nil {
		s.logger.Error("reminder poll: %v", err)
		return
	}
	for _, r := range due {
		if err := s.notifier.Notify(ctx, r); err != nil {
			s.logger.Error("reminder %d notify: %v", r.ID, err)
		}
	}
}
