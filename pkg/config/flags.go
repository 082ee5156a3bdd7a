package config

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag describes a CLI flag backed by a config key. The same logical flag
// appears on several commands (--model on "serve" and "serve chat"), so
// commands look flags up by registry key instead of spelling them out.
type Flag struct {
	Name        string
	Shorthand   string
	ViperKey    string
	Description string
}

// FlagSet maps registry keys to flags.
type FlagSet map[string]Flag

// Registry keys for Flags.
const (
	FlagListen         = "listen"
	FlagAPIListen      = "api-listen"
	FlagAllowOrigins   = "allow-origins"
	FlagModel          = "model"
	FlagMaxFollowUps   = "max-follow-ups"
	FlagTemperature    = "temperature"
	FlagRequestTimeout = "request-timeout"
	FlagPaceDelay      = "pace-delay"
	FlagToolTimeout    = "tool-timeout"
	FlagWeatherLatency = "weather-latency"
	FlagSQLite         = "sqlite"
	FlagPostgres       = "postgres"
	FlagKafkaBrokers   = "kafka-brokers"
	FlagKafkaTopic     = "kafka-topic"
	FlagChatTarget     = "chat-target"
	FlagAPITarget      = "api-target"

	// The standalone api subcommand uses "listen" as the flag name
	// but binds to api.listen.
	FlagAPIListenStandalone = "api-listen-standalone"
)

// AddStringFlag registers the string flag named by registryKey, defaulting
// to the config default of its key. Unknown registry keys are ignored.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *string) {
	if f, ok := fs[registryKey]; ok {
		cmd.Flags().StringVarP(target, f.Name, f.Shorthand, configDefault(f.ViperKey), f.Description)
	}
}

// AddUintFlag is AddStringFlag for uint keys.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	f, ok := fs[registryKey]
	if !ok {
		return
	}
	def, _ := strconv.ParseUint(configDefault(f.ViperKey), 10, 0)
	cmd.Flags().UintVarP(target, f.Name, f.Shorthand, uint(def), f.Description)
}

// AddDurationFlag is AddStringFlag for duration keys. Durations are text in
// config.toml; a key without a default registers as zero.
func AddDurationFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *time.Duration) {
	f, ok := fs[registryKey]
	if !ok {
		return
	}
	def, _ := time.ParseDuration(configDefault(f.ViperKey))
	cmd.Flags().DurationVarP(target, f.Name, f.Shorthand, def, f.Description)
}

// BindRegisteredFlags binds flags already added to cmd into v, putting them
// on top of the env > config file > default chain. Call it in PreRunE after
// InitViper.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		f, ok := fs[registryKey]
		if !ok {
			continue
		}
		if pf := cmd.Flags().Lookup(f.Name); pf != nil {
			_ = v.BindPFlag(f.ViperKey, pf)
		}
	}
}

func configDefault(viperKey string) string {
	k, ok := lookupKey(viperKey)
	if !ok {
		return ""
	}
	return k.get(NewDefaultConfig())
}
