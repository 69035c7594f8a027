package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mira/internal/activation"
	"mira/internal/app"
	"mira/internal/capture"
	"mira/internal/config"
	"mira/internal/indicator"
	"mira/internal/information"
	"mira/internal/logging"
	"mira/internal/observability"
	"mira/internal/reminders"
	"mira/internal/router"
	"mira/internal/smarthome"
	"mira/internal/speech"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:     "mira",
		Short:   "Voice-activated home assistant",
		Version: version,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newRemindersCmd(&configPath))
	return root
}

func loadConfig(path string) (config.Config, error) {
	opts := []config.Option{config.WithEnv(os.LookupEnv)}
	if path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}
	return config.Load(opts...)
}

func newLogger(cfg config.Config) (logging.Logger, func(), error) {
	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.File == "" {
		return logging.NewConsoleLogger(level, os.Stderr), func() {}, nil
	}
	var console *os.File
	if cfg.Logging.Console {
		console = os.Stderr
	}
	logger, err := logging.NewFileLogger(cfg.Logging.File, level, console)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { logger.Close() }, nil
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger, closeLogger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	speaker := app.NewConsoleSpeaker()
	metrics := observability.NewMetrics()

	routerOpts := []router.Option{}

	var scheduler *reminders.Scheduler
	if cfg.Reminders.Enabled {
		store, err := reminders.OpenStore(cfg.Reminders.DatabasePath)
		if err != nil {
			return fmt.Errorf("open reminder store: %w", err)
		}
		defer store.Close()

		scheduler = reminders.NewScheduler(store,
			app.SpeakerNotifier(speaker, metrics, logger),
			cfg.Reminders.CheckInterval.Std(), logger)
		routerOpts = append(routerOpts, router.WithReminders(scheduler, store))
	}

	if cfg.SmartHome.Enabled {
		pub, err := smarthome.NewMQTTPublisher(smarthome.BrokerConfig{
			Broker:   cfg.SmartHome.Broker,
			ClientID: cfg.SmartHome.ClientID,
			Username: cfg.SmartHome.Username,
			Password: cfg.SmartHome.Password,
		}, logger)
		if err != nil {
			logger.Warn("smart home disabled: %v", err)
		} else {
			defer pub.Close()
			routerOpts = append(routerOpts,
				router.WithDevices(smarthome.NewController(pub, cfg.SmartHome.TopicPrefix, logger)))
		}
	}

	if cfg.Weather.Enabled && cfg.Weather.APIKey != "" {
		routerOpts = append(routerOpts,
			router.WithWeather(information.NewWeatherClient(cfg.Weather.APIKey, cfg.Weather.City)))
	}
	if cfg.News.Enabled && cfg.News.APIKey != "" {
		routerOpts = append(routerOpts,
			router.WithNews(information.NewNewsClient(cfg.News.APIKey, cfg.News.Country, cfg.News.MaxArticles)))
	}

	// Stdin stands in for the on-device recognizer: every typed line is one
	// finalized utterance.
	source := speech.NewLineSource(os.Stdin, logger)

	var button activation.Button
	if cfg.Activation.ButtonEnabled {
		button = activation.NewChanButton()
	}

	light := indicator.NewLogIndicator(logger)

	arbiter := activation.New(activation.Config{
		ButtonEnabled:   cfg.Activation.ButtonEnabled,
		WakeWordEnabled: cfg.WakeWord.Enabled,
		WakePhrases:     cfg.WakeWord.Phrases,
		Debounce:        cfg.Activation.Debounce.Std(),
		PollInterval:    cfg.Activation.PollInterval.Std(),
	}, button, source, light, logger)

	session := capture.NewSession(capture.Config{
		SampleRate:     cfg.Audio.SampleRate,
		ChunkSize:      cfg.Audio.ChunkSize,
		SilenceTimeout: cfg.Capture.SilenceTimeout.Std(),
	}, source, logger)

	a := &app.App{
		Arbiter:      arbiter,
		Capture:      session,
		Router:       router.New(logger, routerOpts...),
		Scheduler:    scheduler,
		Speaker:      speaker,
		Indicator:    light,
		Metrics:      metrics,
		Logger:       logger,
		MaxUtterance: cfg.Capture.MaxDuration.Std(),
		Greeting:     "Мира запущена и готова помогать",
	}
	if cfg.Metrics.Enabled {
		a.MetricsListen = cfg.Metrics.Listen
	}

	logger.Info("mira %s starting", version)
	return a.Run(ctx)
}

func newRemindersCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect the reminder store",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show pending reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := reminders.OpenStore(cfg.Reminders.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			upcoming, err := store.Upcoming(cmd.Context(), time.Now(), 50)
			if err != nil {
				return err
			}
			if len(upcoming) == 0 {
				fmt.Println("no pending reminders")
				return nil
			}
			bold := color.New(color.Bold)
			for _, r := range upcoming {
				bold.Printf("#%d %s", r.ID, r.DueAt.Format("02.01 15:04"))
				fmt.Printf("  %s\n", r.Text)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add [phrase]",
		Short: "Schedule a reminder from a phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := reminders.OpenStore(cfg.Reminders.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			scheduler := reminders.NewScheduler(store, nil, cfg.Reminders.CheckInterval.Std(), nil)
			r, err := scheduler.Schedule(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("reminder #%d at %s: %s\n", r.ID, r.DueAt.Format("02.01 15:04"), r.Text)
			return nil
		},
	}

	cmd.AddCommand(list, add)
	return cmd
}
