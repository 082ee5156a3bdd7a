package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent uistream configuration stored as config.toml
// in the .uistream/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Server      ServerConfig      `toml:"server"`
	API         APIConfig         `toml:"api"`
	Agent       AgentConfig       `toml:"agent"`
	LLM         LLMConfig         `toml:"llm"`
	Stream      StreamConfig      `toml:"stream"`
	Tools       ToolsConfig       `toml:"tools"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Client      ClientConfig      `toml:"client"`
}

// ServerConfig holds settings for the chat streaming server.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`

	// AllowOrigins is a comma separated CORS origin list.
	AllowOrigins string `toml:"allow_origins,omitempty"`
}

// APIConfig holds transcript API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// AgentConfig controls the agent loop.
type AgentConfig struct {
	// SystemPrompt replaces the built-in prompt when non-empty.
	SystemPrompt string `toml:"system_prompt,omitempty"`
	MaxFollowUps uint   `toml:"max_follow_ups,omitempty"`

	// Temperature is kept as text so that an unset value can be told apart
	// from an explicit 0.
	Temperature string `toml:"temperature,omitempty"`
}

// TemperatureValue parses Temperature. A nil result means the provider
// default applies.
func (a AgentConfig) TemperatureValue() (*float64, error) {
	if a.Temperature == "" {
		return nil, nil
	}
	t, err := strconv.ParseFloat(a.Temperature, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid value for agent.temperature: %w", err)
	}
	return &t, nil
}

// LLMConfig holds upstream model settings. Credentials are never stored here.
type LLMConfig struct {
	Model          string `toml:"model,omitempty"`
	RequestTimeout string `toml:"request_timeout,omitempty"`
}

// StreamConfig holds UI message stream settings.
type StreamConfig struct {
	PaceDelay string `toml:"pace_delay,omitempty"`
}

// ToolsConfig holds tool execution settings.
type ToolsConfig struct {
	Timeout        string `toml:"timeout,omitempty"`
	WeatherLatency string `toml:"weather_latency,omitempty"`
}

// StorageConfig selects the transcript store. Postgres wins when both are set;
// an empty config keeps transcripts in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig holds transcript event publishing settings.
type EventStreamConfig struct {
	// KafkaBrokers is a comma separated broker list. Empty disables publishing.
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to running
// servers (e.g. uistream chat). Values are full URLs (scheme + host + port).
type ClientConfig struct {
	ChatTarget string `toml:"chat_target,omitempty"`
	APITarget  string `toml:"api_target,omitempty"`
}
