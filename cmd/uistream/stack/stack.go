// Package stack assembles the serving components shared by the serve
// subcommands from resolved settings.
package stack

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/papercomputeco/uistream/api"
	"github.com/papercomputeco/uistream/pkg/config"
	"github.com/papercomputeco/uistream/pkg/credentials"
	"github.com/papercomputeco/uistream/pkg/eventstream"
	"github.com/papercomputeco/uistream/pkg/eventstream/kafka"
	"github.com/papercomputeco/uistream/pkg/eventstream/nop"
	"github.com/papercomputeco/uistream/pkg/llm"
	openaiprovider "github.com/papercomputeco/uistream/pkg/llm/provider/openai"
	"github.com/papercomputeco/uistream/pkg/logger"
	"github.com/papercomputeco/uistream/pkg/storage"
	"github.com/papercomputeco/uistream/pkg/storage/inmemory"
	"github.com/papercomputeco/uistream/pkg/storage/postgres"
	"github.com/papercomputeco/uistream/pkg/storage/sqlite"
	"github.com/papercomputeco/uistream/pkg/tools"
	"github.com/papercomputeco/uistream/pkg/tools/builtin"
	"github.com/papercomputeco/uistream/pkg/uistream"
	"github.com/papercomputeco/uistream/pkg/utils"
	"github.com/papercomputeco/uistream/server"
	"github.com/papercomputeco/uistream/server/worker"
)

// DotEnvFiles are loaded at serve start, first file first. Variables already
// set in the environment are never overridden.
var DotEnvFiles = []string{".env.local", ".env"}

// Settings are the resolved values of every serve option.
type Settings struct {
	Listen       string
	APIListen    string
	AllowOrigins string

	SystemPrompt string
	MaxFollowUps uint
	Temperature  *float64

	Model          string
	RequestTimeout time.Duration
	PaceDelay      time.Duration

	ToolTimeout    time.Duration
	WeatherLatency time.Duration

	SQLitePath  string
	PostgresDSN string

	KafkaBrokers []string
	KafkaTopic   string
}

// FromViper reads Settings from a viper instance initialized with
// config.InitViper and bound to the command's flags.
func FromViper(v *viper.Viper) (*Settings, error) {
	temp, err := config.AgentConfig{Temperature: v.GetString("agent.temperature")}.TemperatureValue()
	if err != nil {
		return nil, err
	}

	durations := map[string]*time.Duration{}
	s := &Settings{
		Listen:       v.GetString("server.listen"),
		APIListen:    v.GetString("api.listen"),
		AllowOrigins: v.GetString("server.allow_origins"),
		SystemPrompt: v.GetString("agent.system_prompt"),
		MaxFollowUps: v.GetUint("agent.max_follow_ups"),
		Temperature:  temp,
		Model:        v.GetString("llm.model"),
		SQLitePath:   v.GetString("storage.sqlite_path"),
		PostgresDSN:  v.GetString("storage.postgres_dsn"),
		KafkaBrokers: SplitList(v.GetString("eventstream.kafka_brokers")),
		KafkaTopic:   v.GetString("eventstream.kafka_topic"),
	}
	durations["llm.request_timeout"] = &s.RequestTimeout
	durations["stream.pace_delay"] = &s.PaceDelay
	durations["tools.timeout"] = &s.ToolTimeout
	durations["tools.weather_latency"] = &s.WeatherLatency

	for key, target := range durations {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid value for %s: must not be negative", key)
		}
		*target = d
	}

	if s.SystemPrompt == "" {
		s.SystemPrompt = builtin.SystemPrompt
	}

	return s, nil
}

// SplitList splits a comma separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TranslatorOptions returns the per-run translator options.
func (s *Settings) TranslatorOptions() []uistream.Option {
	opts := []uistream.Option{
		uistream.WithMaxFollowUps(int(s.MaxFollowUps)),
		uistream.WithPaceDelay(s.PaceDelay),
		uistream.WithRequestTimeout(s.RequestTimeout),
	}
	if s.Temperature != nil {
		opts = append(opts, uistream.WithTemperature(*s.Temperature))
	}
	return opts
}

// NewRegistry builds the built-in tool registry.
func (s *Settings) NewRegistry() (*tools.Registry, error) {
	return builtin.Registry(s.WeatherLatency)
}

// NewResolver resolves credentials from the environment, falling back to
// keys stored with "uistream auth".
func (s *Settings) NewResolver(configDir string) (*credentials.Resolver, error) {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	return &credentials.Resolver{Store: mgr, Model: s.Model}, nil
}

// NewStorageDriver opens the configured transcript store. PostgreSQL takes
// precedence over SQLite; with neither set transcripts stay in memory.
func (s *Settings) NewStorageDriver(ctx context.Context, log *slog.Logger) (storage.Driver, error) {
	switch {
	case s.PostgresDSN != "":
		driver, err := postgres.NewDriver(ctx, s.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return driver, nil
	case s.SQLitePath != "":
		driver, err := sqlite.NewDriver(ctx, s.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		log.Info("using SQLite storage", "path", s.SQLitePath)
		return driver, nil
	default:
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func (s *Settings) NewPublisher(log *slog.Logger) (eventstream.Publisher, error) {
	if len(s.KafkaBrokers) == 0 {
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: s.KafkaBrokers,
		Topic:   s.KafkaTopic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	log.Info("publishing transcript events",
		"brokers", strings.Join(s.KafkaBrokers, ","),
		"topic", s.KafkaTopic,
	)
	return publisher, nil
}

// NewModel opens an OpenAI-compatible streaming client for resolved
// credentials.
func NewModel(log *slog.Logger) func(*credentials.Resolved) (llm.Model, error) {
	return func(creds *credentials.Resolved) (llm.Model, error) {
		return openaiprovider.New(openaiprovider.Config{
			Provider:  creds.Provider,
			APIKey:    creds.APIKey,
			BaseURL:   creds.BaseURL,
			UserAgent: utils.UserAgent(),
			Logger:    log.With("provider", creds.Provider),
		})
	}
}

// LoadDotEnv loads files into the environment. Missing files are skipped.
func LoadDotEnv(log *slog.Logger, files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
		log.Debug("loaded environment file", "path", f)
	}
	return nil
}

// NewLogger builds the serve logger for component: pretty console output,
// plus JSON lines appended to logFile when set. The returned close func
// releases the file.
func NewLogger(debug bool, logFile, component string) (*slog.Logger, func() error, error) {
	console := logger.New(logger.WithDebug(debug), logger.WithPretty(true), logger.WithComponent(component))
	if logFile == "" {
		return console, func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(logger.WithDebug(debug), logger.WithJSON(true), logger.WithWriter(f), logger.WithComponent(component))
	return logger.Multi(console, file), f.Close, nil
}

// ServerConfig builds the chat server configuration.
func (s *Settings) ServerConfig(configDir string, log *slog.Logger) (server.Config, error) {
	resolver, err := s.NewResolver(configDir)
	if err != nil {
		return server.Config{}, err
	}

	registry, err := s.NewRegistry()
	if err != nil {
		return server.Config{}, fmt.Errorf("building tool registry: %w", err)
	}

	return server.Config{
		ListenAddr:        s.Listen,
		AllowOrigins:      s.AllowOrigins,
		SystemPrompt:      s.SystemPrompt,
		Resolver:          resolver,
		NewModel:          NewModel(log),
		Registry:          registry,
		ToolTimeout:       s.ToolTimeout,
		TranslatorOptions: s.TranslatorOptions(),
		Version:           utils.Version,
	}, nil
}

// APIConfig builds the transcript API server configuration. The MCP
// endpoint serves the same built-in tools as the chat server.
func (s *Settings) APIConfig() (api.Config, error) {
	registry, err := s.NewRegistry()
	if err != nil {
		return api.Config{}, fmt.Errorf("building tool registry: %w", err)
	}

	return api.Config{
		ListenAddr:  s.APIListen,
		Registry:    registry,
		ToolTimeout: s.ToolTimeout,
	}, nil
}

// NewPool starts the transcript worker pool.
func NewPool(driver storage.Driver, publisher eventstream.Publisher, log *slog.Logger) (*worker.Pool, error) {
	pool, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: publisher,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return pool, nil
}
