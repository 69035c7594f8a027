// Package config loads the assistant configuration from defaults, an
// optional YAML file, and environment overrides, in that precedence order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the fully-resolved runtime configuration.
type Config struct {
	Audio      AudioConfig      `yaml:"audio"`
	Activation ActivationConfig `yaml:"activation"`
	WakeWord   WakeWordConfig   `yaml:"wake_word"`
	Capture    CaptureConfig    `yaml:"capture"`
	Reminders  RemindersConfig  `yaml:"reminders"`
	SmartHome  SmartHomeConfig  `yaml:"smart_home"`
	Weather    WeatherConfig    `yaml:"weather"`
	News       NewsConfig       `yaml:"news"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AudioConfig describes the capture device geometry. The silence budget in
// the capture session is derived from SampleRate and ChunkSize.
// Duration reads YAML scalars like "200ms" or "3s". gopkg.in/yaml.v3 has no
// native time.Duration support.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	ChunkSize  int `yaml:"chunk_size"`
}

// ActivationConfig controls the hardware-button activation path.
type ActivationConfig struct {
	ButtonEnabled bool     `yaml:"button_enabled"`
	Debounce      Duration `yaml:"debounce"`
	PollInterval  Duration `yaml:"poll_interval"`
}

// WakeWordConfig controls the continuous-listen activation path.
type WakeWordConfig struct {
	Enabled bool     `yaml:"enabled"`
	Phrases []string `yaml:"phrases"`
}

// CaptureConfig bounds a single command capture session.
type CaptureConfig struct {
	SilenceTimeout Duration `yaml:"silence_timeout"`
	MaxDuration    Duration `yaml:"max_duration"`
}

// RemindersConfig controls the reminder store and its polling loop.
type RemindersConfig struct {
	Enabled       bool     `yaml:"enabled"`
	DatabasePath  string   `yaml:"database_path"`
	CheckInterval Duration `yaml:"check_interval"`
}

// SmartHomeConfig describes the MQTT bridge for switch commands.
type SmartHomeConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// WeatherConfig holds the OpenWeatherMap client settings.
type WeatherConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	City    string `yaml:"city"`
}

// NewsConfig holds the NewsAPI client settings.
type NewsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	APIKey      string `yaml:"api_key"`
	Country     string `yaml:"country"`
	MaxArticles int    `yaml:"max_articles"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig controls log file placement and verbosity.
type LoggingConfig struct {
	File    string `yaml:"file"`
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

type loadOptions struct {
	path      string
	envLookup func(string) (string, bool)
	readFile  func(string) ([]byte, error)
}

// Option customizes Load behavior.
type Option func(*loadOptions)

// WithConfigPath points Load at a specific YAML file. A missing file at an
// explicit path is an error; the default path is allowed to be absent.
func WithConfigPath(path string) Option {
	return func(o *loadOptions) { o.path = path }
}

// WithEnv overrides the environment lookup, primarily for tests.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(o *loadOptions) { o.envLookup = lookup }
}

// WithFileReader overrides file reading, primarily for tests.
func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(o *loadOptions) { o.readFile = read }
}

// DefaultPath is consulted when no explicit config path is given.
const DefaultPath = "config/mira.yaml"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 16000,
			ChunkSize:  4000,
		},
		Activation: ActivationConfig{
			ButtonEnabled: false,
			Debounce:      Duration(200 * time.Millisecond),
			PollInterval:  Duration(100 * time.Millisecond),
		},
		WakeWord: WakeWordConfig{
			Enabled: false,
			Phrases: nil,
		},
		Capture: CaptureConfig{
			SilenceTimeout: Duration(2 * time.Second),
			MaxDuration:    Duration(15 * time.Second),
		},
		Reminders: RemindersConfig{
			Enabled:       true,
			DatabasePath:  "data/reminders.db",
			CheckInterval: Duration(60 * time.Second),
		},
		SmartHome: SmartHomeConfig{
			Enabled:     false,
			Broker:      "tcp://localhost:1883",
			ClientID:    "mira",
			TopicPrefix: "home/devices",
		},
		Weather: WeatherConfig{
			Enabled: false,
			City:    "Moscow",
		},
		News: NewsConfig{
			Enabled:     false,
			Country:     "ru",
			MaxArticles: 5,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
		Logging: LoggingConfig{
			File:    "logs/mira.log",
			Level:   "info",
			Console: true,
		},
	}
}

// Load resolves the configuration: defaults, then the YAML file (if any),
// then environment overrides.
func Load(opts ...Option) (Config, error) {
	options := loadOptions{
		envLookup: os.LookupEnv,
		readFile:  os.ReadFile,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()

	path := options.path
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := options.readFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Default path is optional.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg, options.envLookup)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays secrets and other deploy-specific values from the
// environment. Env always wins over file values.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("MIRA_WEATHER_API_KEY"); ok {
		cfg.Weather.APIKey = v
	}
	if v, ok := lookup("MIRA_WEATHER_CITY"); ok {
		cfg.Weather.City = v
	}
	if v, ok := lookup("MIRA_NEWS_API_KEY"); ok {
		cfg.News.APIKey = v
	}
	if v, ok := lookup("MIRA_MQTT_BROKER"); ok {
		cfg.SmartHome.Broker = v
	}
	if v, ok := lookup("MIRA_MQTT_USERNAME"); ok {
		cfg.SmartHome.Username = v
	}
	if v, ok := lookup("MIRA_MQTT_PASSWORD"); ok {
		cfg.SmartHome.Password = v
	}
	if v, ok := lookup("MIRA_REMINDER_DB"); ok {
		cfg.Reminders.DatabasePath = v
	}
	if v, ok := lookup("MIRA_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := lookup("MIRA_METRICS_LISTEN"); ok {
		cfg.Metrics.Listen = v
		cfg.Metrics.Enabled = true
	}
	if v, ok := lookup("MIRA_SAMPLE_RATE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Audio.SampleRate = n
		}
	}
}

// Validate rejects configurations the runtime cannot operate with.
func (c Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("config: audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.ChunkSize <= 0 {
		return fmt.Errorf("config: audio.chunk_size must be positive, got %d", c.Audio.ChunkSize)
	}
	if c.Capture.SilenceTimeout <= 0 {
		return fmt.Errorf("config: capture.silence_timeout must be positive")
	}
	if c.Capture.MaxDuration <= 0 {
		return fmt.Errorf("config: capture.max_duration must be positive")
	}
	if c.Activation.PollInterval <= 0 {
		return fmt.Errorf("config: activation.poll_interval must be positive")
	}
	if c.Reminders.Enabled && c.Reminders.CheckInterval <= 0 {
		return fmt.Errorf("config: reminders.check_interval must be positive")
	}
	if c.WakeWord.Enabled && len(c.WakeWord.Phrases) == 0 {
		return fmt.Errorf("config: wake_word.enabled requires at least one phrase")
	}
	return nil
}
