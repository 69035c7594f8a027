package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mira/internal/activation"
	"mira/internal/capture"
	"mira/internal/indicator"
	"mira/internal/logging"
	"mira/internal/observability"
	"mira/internal/reminders"
	"mira/internal/router"
)

// errShutdownRequested unwinds the session loop when the user says to stop.
var errShutdownRequested = errors.New("shutdown requested")

// App runs the assistant: a foreground session loop (await activation,
// capture an utterance, route it, speak the reply) and the background
// reminder loop, plus an optional metrics listener.
type App struct {
	Arbiter   *activation.Arbiter
	Capture   *capture.Session
	Router    *router.Router
	Scheduler *reminders.Scheduler
	Speaker   router.Speaker
	Indicator indicator.Indicator
	Metrics   *observability.Metrics
	Logger    logging.Logger

	// MaxUtterance bounds one capture session.
	MaxUtterance time.Duration
	// AwaitTimeout bounds one arbitration wait; zero waits forever.
	AwaitTimeout time.Duration
	// MetricsListen enables the /metrics endpoint when non-empty.
	MetricsListen string
	// Greeting, when set, is spoken once at startup.
	Greeting string
}

// Run blocks until ctx is cancelled or the user asks for shutdown.
func (a *App) Run(ctx context.Context) error {
	logger := logging.OrNop(a.Logger)

	g, ctx := errgroup.WithContext(ctx)

	if a.Scheduler != nil {
		g.Go(func() error {
			a.Scheduler.Run(ctx)
			return nil
		})
	}
	if a.Metrics != nil && a.MetricsListen != "" {
		g.Go(func() error {
			return a.Metrics.Serve(ctx, a.MetricsListen, logger)
		})
	}
	if a.Greeting != "" {
		a.speak(ctx, logger, a.Greeting)
	}
	g.Go(func() error {
		return a.sessionLoop(ctx, logger)
	})

	err := g.Wait()
	if errors.Is(err, errShutdownRequested) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) sessionLoop(ctx context.Context, logger logging.Logger) error {
	for {
		event := a.Arbiter.Await(ctx, a.AwaitTimeout)
		if a.Metrics != nil {
			a.Metrics.Activations.WithLabelValues(event.Kind.String()).Inc()
		}
		switch event.Kind {
		case activation.KindCancelled:
			return ctx.Err()
		case activation.KindTimeout:
			continue
		}

		session := uuid.NewString()[:8]
		logger.Info("[%s] session started by %s", session, event.Kind)

		started := time.Now()
		result := a.Capture.Capture(ctx, a.MaxUtterance)
		if a.Metrics != nil {
			a.Metrics.Captures.WithLabelValues(result.EndedBy.String()).Inc()
			a.Metrics.CaptureDuration.Observe(time.Since(started).Seconds())
		}

		switch result.EndedBy {
		case capture.EndError:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("[%s] capture failed, session dropped", session)
			a.speak(ctx, logger, "Я вас не расслышала")
			continue
		case capture.EndNoSpeech:
			logger.Info("[%s] nothing said", session)
			continue
		}

		logger.Info("[%s] heard: %q (%s, %d frames)", session, result.Text, result.EndedBy, result.Frames)

		a.setIndicator(logger, indicator.Processing)
		outcome := a.Router.Route(ctx, result.Text)
		a.setIndicator(logger, indicator.Off)
		if a.Metrics != nil {
			a.Metrics.Commands.WithLabelValues(outcome.Kind).Inc()
		}
		a.speak(ctx, logger, outcome.Reply)

		if outcome.Shutdown {
			logger.Info("[%s] shutdown requested", session)
			return errShutdownRequested
		}
	}
}

// setIndicator is advisory: a dead status light never stops a session.
func (a *App) setIndicator(logger logging.Logger, state indicator.State) {
	if a.Indicator == nil {
		return
	}
	if err := a.Indicator.Set(state); err != nil {
		logger.Warn("indicator set %s: %v", state, err)
	}
}

func (a *App) speak(ctx context.Context, logger logging.Logger, text string) {
	if a.Speaker == nil || text == "" {
		return
	}
	if err := a.Speaker.Speak(ctx, text); err != nil {
		logger.Error("speak: %v", err)
	}
}

// SpeakerNotifier announces due reminders through the speaker.
func SpeakerNotifier(speaker router.Speaker, metrics *observability.Metrics, logger logging.Logger) reminders.Notifier {
	logger = logging.OrNop(logger)
	return reminders.NotifierFunc(func(ctx context.Context, r reminders.Reminder) error {
		if metrics != nil {
			metrics.RemindersFired.Inc()
		}
		logger.Info("reminder %d due: %q", r.ID, r.Text)
		return speaker.Speak(ctx, "Напоминание: "+r.Text)
	})
}
