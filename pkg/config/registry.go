package config

// Flags is the registry of every flag that maps to a config key.
var Flags = FlagSet{
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "Address for the chat server to listen on",
	},
	FlagAPIListen: {
		Name:        "api-listen",
		Shorthand:   "a",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	FlagAPIListenStandalone: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	FlagAllowOrigins: {
		Name:        "allow-origins",
		ViperKey:    "server.allow_origins",
		Description: "Comma separated CORS origins allowed to call the chat server",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "llm.model",
		Description: "Model id (default: the provider's default model)",
	},
	FlagMaxFollowUps: {
		Name:        "max-follow-ups",
		ViperKey:    "agent.max_follow_ups",
		Description: "Maximum model calls made after tool results",
	},
	FlagTemperature: {
		Name:        "temperature",
		ViperKey:    "agent.temperature",
		Description: "Sampling temperature (default: provider default)",
	},
	FlagRequestTimeout: {
		Name:        "request-timeout",
		ViperKey:    "llm.request_timeout",
		Description: "Timeout for each upstream model call",
	},
	FlagPaceDelay: {
		Name:        "pace-delay",
		ViperKey:    "stream.pace_delay",
		Description: "Delay between consecutive stream frames",
	},
	FlagToolTimeout: {
		Name:        "tool-timeout",
		ViperKey:    "tools.timeout",
		Description: "Timeout for each tool call",
	},
	FlagWeatherLatency: {
		Name:        "weather-latency",
		ViperKey:    "tools.weather_latency",
		Description: "Simulated latency of the getWeather tool",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to SQLite database (default: in-memory)",
	},
	FlagPostgres: {
		Name:        "postgres",
		ViperKey:    "storage.postgres_dsn",
		Description: "PostgreSQL connection string (takes precedence over --sqlite)",
	},
	FlagKafkaBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.kafka_brokers",
		Description: "Comma separated Kafka brokers for transcript events (default: disabled)",
	},
	FlagKafkaTopic: {
		Name:        "kafka-topic",
		ViperKey:    "eventstream.kafka_topic",
		Description: "Kafka topic for transcript events",
	},
	FlagChatTarget: {
		Name:        "chat-target",
		Shorthand:   "t",
		ViperKey:    "client.chat_target",
		Description: "Chat server URL",
	},
	FlagAPITarget: {
		Name:        "api-target",
		ViperKey:    "client.api_target",
		Description: "API server URL",
	},
}
