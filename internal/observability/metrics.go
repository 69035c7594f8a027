package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mira/internal/logging"
)

// Metrics holds the assistant's counters on an explicit registry so tests
// and multiple instances never collide on global state.
type Metrics struct {
	registry *prometheus.Registry

	Activations     *prometheus.CounterVec
	Captures        *prometheus.CounterVec
	CaptureDuration prometheus.Histogram
	Commands        *prometheus.CounterVec
	RemindersFired  prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Activations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mira_activations_total",
			Help: "Activation events by kind.",
		}, []string{"kind"}),
		Captures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mira_captures_total",
			Help: "Capture sessions by end reason.",
		}, []string{"ended_by"}),
		CaptureDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mira_capture_duration_seconds",
			Help:    "Wall-clock length of capture sessions.",
			Buckets: prometheus.DefBuckets,
		}),
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mira_commands_total",
			Help: "Routed commands by kind.",
		}, []string{"kind"}),
		RemindersFired: factory.NewCounter(prometheus.CounterOpts{
			Name: "mira_reminders_fired_total",
			Help: "Due reminders handed to the notifier.",
		}),
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger logging.Logger) error {
	logger = logging.OrNop(logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown: %v", err)
		}
	}()

	logger.Info("metrics listening on %s", addr)
	err := srv.ListenAndServe()
	<-done
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
