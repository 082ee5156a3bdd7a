package config

import (
	"fmt"
	"strconv"
	"time"
)

// key is one user-facing dotted config key. The dotted name matches the TOML
// section layout and the viper key.
type key struct {
	name string
	get  func(c *Config) string
	set  func(c *Config, v string) error
}

func stringKey(name string, field func(c *Config) *string) key {
	return key{
		name: name,
		get:  func(c *Config) string { return *field(c) },
		set:  func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func durationKey(name string, field func(c *Config) *string) key {
	return key{
		name: name,
		get:  func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			if d < 0 {
				return fmt.Errorf("invalid value for %s: must not be negative", name)
			}
			*field(c) = v
			return nil
		},
	}
}

// keys lists every supported key in section order.
var keys = []key{
	stringKey("server.listen", func(c *Config) *string { return &c.Server.Listen }),
	stringKey("server.allow_origins", func(c *Config) *string { return &c.Server.AllowOrigins }),
	stringKey("api.listen", func(c *Config) *string { return &c.API.Listen }),
	stringKey("agent.system_prompt", func(c *Config) *string { return &c.Agent.SystemPrompt }),
	{
		name: "agent.max_follow_ups",
		get: func(c *Config) string {
			return strconv.FormatUint(uint64(c.Agent.MaxFollowUps), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for agent.max_follow_ups: %w", err)
			}
			c.Agent.MaxFollowUps = uint(n)
			return nil
		},
	},
	{
		name: "agent.temperature",
		get:  func(c *Config) string { return c.Agent.Temperature },
		set: func(c *Config, v string) error {
			if _, err := (AgentConfig{Temperature: v}).TemperatureValue(); err != nil {
				return err
			}
			c.Agent.Temperature = v
			return nil
		},
	},
	stringKey("llm.model", func(c *Config) *string { return &c.LLM.Model }),
	durationKey("llm.request_timeout", func(c *Config) *string { return &c.LLM.RequestTimeout }),
	durationKey("stream.pace_delay", func(c *Config) *string { return &c.Stream.PaceDelay }),
	durationKey("tools.timeout", func(c *Config) *string { return &c.Tools.Timeout }),
	durationKey("tools.weather_latency", func(c *Config) *string { return &c.Tools.WeatherLatency }),
	stringKey("storage.sqlite_path", func(c *Config) *string { return &c.Storage.SQLitePath }),
	stringKey("storage.postgres_dsn", func(c *Config) *string { return &c.Storage.PostgresDSN }),
	stringKey("eventstream.kafka_brokers", func(c *Config) *string { return &c.EventStream.KafkaBrokers }),
	stringKey("eventstream.kafka_topic", func(c *Config) *string { return &c.EventStream.KafkaTopic }),
	stringKey("client.chat_target", func(c *Config) *string { return &c.Client.ChatTarget }),
	stringKey("client.api_target", func(c *Config) *string { return &c.Client.APITarget }),
}

func lookupKey(name string) (key, bool) {
	for _, k := range keys {
		if k.name == name {
			return k, true
		}
	}
	return key{}, false
}

// ValidConfigKeys returns every supported key name in section order.
func ValidConfigKeys() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

// IsValidConfigKey reports whether name is a supported key.
func IsValidConfigKey(name string) bool {
	_, ok := lookupKey(name)
	return ok
}

// Validate checks every non-empty value the way Set would, so a hand-edited
// config.toml fails at load time instead of when the server starts.
func (c *Config) Validate() error {
	scratch := *c
	for _, k := range keys {
		v := k.get(c)
		if v == "" {
			continue
		}
		if err := k.set(&scratch, v); err != nil {
			return err
		}
	}
	return nil
}

// Value returns the value of the dotted key name and whether the key exists.
func (c *Config) Value(name string) (string, bool) {
	k, ok := lookupKey(name)
	if !ok {
		return "", false
	}
	return k.get(c), true
}
