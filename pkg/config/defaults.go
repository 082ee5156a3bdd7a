package config

const (
	defaultServerListen = ":8000"
	defaultAllowOrigins = "http://localhost:3000"
	defaultAPIListen    = ":8081"

	defaultMaxFollowUps   = 3
	defaultRequestTimeout = "2m"
	defaultPaceDelay      = "10ms"

	defaultToolTimeout    = "30s"
	defaultWeatherLatency = "1s"

	defaultKafkaTopic = "uistream.transcripts"

	defaultClientChatTarget = "http://localhost:8000"
	defaultClientAPITarget  = "http://localhost:8081"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen:       defaultServerListen,
			AllowOrigins: defaultAllowOrigins,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Agent: AgentConfig{
			MaxFollowUps: defaultMaxFollowUps,
		},
		LLM: LLMConfig{
			RequestTimeout: defaultRequestTimeout,
		},
		Stream: StreamConfig{
			PaceDelay: defaultPaceDelay,
		},
		Tools: ToolsConfig{
			Timeout:        defaultToolTimeout,
			WeatherLatency: defaultWeatherLatency,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		Client: ClientConfig{
			ChatTarget: defaultClientChatTarget,
			APITarget:  defaultClientAPITarget,
		},
	}
}
